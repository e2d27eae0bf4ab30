package domain

// EventType names a server-to-client message on the battle socket.
type EventType string

const (
	EventMatchFound         EventType = "match_found"
	EventSessionState       EventType = "session_state"
	EventSessionStarting    EventType = "session_starting"
	EventSessionStarted     EventType = "session_started"
	EventNewQuestion        EventType = "new_question"
	EventAnswerResult       EventType = "answer_result"
	EventRoundResults       EventType = "round_results"
	EventTimeUp             EventType = "time_up"
	EventGameOver           EventType = "game_over"
	EventRematchRequested   EventType = "rematch_requested"
	EventRematchCreated     EventType = "rematch_created"
	EventPlayerDisconnected EventType = "player_disconnected"
	EventError              EventType = "error"
)

// Event is the envelope every outbound message travels in.
type Event struct {
	Type    EventType `json:"type"`
	Payload any       `json:"payload"`
}

// MatchFoundPayload is unicast to each paired player.
type MatchFoundPayload struct {
	SessionID string       `json:"sessionId"`
	Opponent  OpponentInfo `json:"opponent"`
	Message   string       `json:"message"`
}

// SessionStartingPayload announces the pre-game countdown.
type SessionStartingPayload struct {
	CountdownMs int64  `json:"countdownMs"`
	Message     string `json:"message"`
}

// NewQuestionPayload carries the question for a round. The question is always
// broadcast before the round timer is armed, so no player can be asked to
// answer a question they have not seen.
type NewQuestionPayload struct {
	Question    Question `json:"question"`
	Round       int      `json:"round"`
	TotalRounds int      `json:"totalRounds"`
}

// RematchRequestedPayload names who voted and who still has to.
type RematchRequestedPayload struct {
	PlayerID     string   `json:"playerId"`
	StillPending []string `json:"stillPending"`
}

// RematchCreatedPayload redirects both players to the fresh session.
type RematchCreatedPayload struct {
	NewSessionID string `json:"newSessionId"`
	Message      string `json:"message"`
}

// PlayerDisconnectedPayload tells the surviving player who dropped.
type PlayerDisconnectedPayload struct {
	PlayerID string `json:"playerId"`
}

// ErrorPayload is the generic error envelope.
type ErrorPayload struct {
	Message string `json:"message"`
}
