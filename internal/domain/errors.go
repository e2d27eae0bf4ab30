package domain

import "errors"

var (
	// ErrSessionNotFound is returned when a session id is unknown (never existed
	// or already cleaned up).
	ErrSessionNotFound = errors.New("battle session not found")
	// ErrPlayerNotInSession is returned when a player acts on a session they are
	// not part of.
	ErrPlayerNotInSession = errors.New("player not in session")
	// ErrAlreadyAnswered is returned on a second submission for the same round;
	// the first answer stands.
	ErrAlreadyAnswered = errors.New("already answered")
	// ErrRoundNotOpen is returned when an answer arrives outside a question window.
	ErrRoundNotOpen = errors.New("no question open")
	// ErrQuestionSourceUnavailable indicates the trivia provider failed; the
	// caller substitutes the builtin question set and never surfaces this to players.
	ErrQuestionSourceUnavailable = errors.New("question source unavailable")
)
