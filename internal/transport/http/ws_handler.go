package http

import (
	"encoding/json"
	"log"
	"net/http"

	"brain-brawl-service/internal/app"
	"brain-brawl-service/internal/domain"
	"github.com/gorilla/websocket"
)

// WSHandler speaks the battle protocol over a single websocket per player:
// inbound commands are dispatched to the BattleService, and everything the
// service emits for this player (unicast or session broadcast) flows back
// through one outbox channel so the connection has exactly one writer.
type WSHandler struct {
	service  *app.BattleService
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.BattleService) *WSHandler {
	return &WSHandler{
		service: service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type joinWaitingRoomPayload struct {
	Character string `json:"character"`
}

type joinSessionPayload struct {
	SessionID string `json:"sessionId"`
	Character string `json:"character"`
}

type submitAnswerPayload struct {
	SessionID       string `json:"sessionId"`
	Answer          string `json:"answer"`
	TimeRemainingMs int    `json:"timeRemainingMs"`
}

type rematchPayload struct {
	SessionID string `json:"sessionId"`
}

// ServeWS upgrades the request and runs the battle protocol until the client
// goes away. The player id arrives as a query parameter; dropping the socket
// is the disconnect event.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	playerID := r.URL.Query().Get("userId")
	if playerID == "" {
		http.Error(w, "missing userId", http.StatusBadRequest)
		return
	}
	character := r.URL.Query().Get("character")

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	outbox := make(chan domain.Event, 32)
	writerDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for ev := range outbox {
			if err := conn.WriteJSON(ev); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		}
	}()

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		h.dispatch(r, playerID, character, outbox, inbound)
	}

	h.service.Disconnect(playerID)
	close(outbox)
	<-writerDone
}

func (h *WSHandler) dispatch(r *http.Request, playerID, character string, outbox chan domain.Event, inbound inboundMessage) {
	ctx := r.Context()
	switch inbound.Type {
	case "join_waiting_room":
		var payload joinWaitingRoomPayload
		_ = json.Unmarshal(inbound.Payload, &payload)
		if payload.Character == "" {
			payload.Character = character
		}
		if err := h.service.JoinWaitingRoom(ctx, playerID, payload.Character, outbox); err != nil {
			push(outbox, errorEvent(err))
		}

	case "leave_waiting_room":
		h.service.LeaveWaitingRoom(playerID)

	case "join_session":
		var payload joinSessionPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			push(outbox, errorEvent(err))
			return
		}
		if payload.Character == "" {
			payload.Character = character
		}
		snapshot, err := h.service.JoinSession(ctx, payload.SessionID, playerID, payload.Character, outbox)
		if err != nil {
			push(outbox, errorEvent(err))
			return
		}
		push(outbox, domain.Event{Type: domain.EventSessionState, Payload: snapshot})

	case "submit_answer":
		var payload submitAnswerPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			push(outbox, errorEvent(err))
			return
		}
		// Accepted answers are replied to by the service itself, ahead of any
		// round results the submission triggers. Rejections travel back here
		// in the normal shape, with the error in its field, so a stale client
		// still gets a well-formed reply.
		result, err := h.service.SubmitAnswer(ctx, payload.SessionID, playerID, payload.Answer, payload.TimeRemainingMs)
		if err != nil {
			push(outbox, domain.Event{Type: domain.EventAnswerResult, Payload: result})
		}

	case "request_rematch":
		var payload rematchPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			push(outbox, errorEvent(err))
			return
		}
		if err := h.service.RequestRematch(ctx, payload.SessionID, playerID); err != nil {
			push(outbox, errorEvent(err))
		}

	default:
		push(outbox, domain.Event{Type: domain.EventError, Payload: domain.ErrorPayload{Message: "unsupported message type"}})
	}
}

func errorEvent(err error) domain.Event {
	return domain.Event{Type: domain.EventError, Payload: domain.ErrorPayload{Message: err.Error()}}
}

// push mirrors the session broadcast policy: drop the oldest event rather
// than block when the writer has fallen behind.
func push(ch chan domain.Event, ev domain.Event) {
	select {
	case ch <- ev:
	default:
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- ev:
		default:
		}
	}
}
