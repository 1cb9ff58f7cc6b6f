package http

import (
	"encoding/json"
	"log"
	"net/http"

	"cat-trivia-service/internal/app"
	"github.com/gorilla/websocket"
)

type WSHandler struct {
	service  *app.GameService
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.GameService) *WSHandler {
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

type outboundMessage struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

type wsError struct {
	Message string `json:"message"`
}

// ServeWS upgrades HTTP requests to websockets and plays an existing session over them.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("sessionId")
	if sessionID == "" {
		http.Error(w, "missing sessionId", http.StatusBadRequest)
		return
	}
	state, err := h.service.Get(r.Context(), sessionID)
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	send := make(chan outboundMessage, 16)
	writerDone := make(chan struct{})

	// single writer: gorilla connections do not support concurrent writes
	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		}
	}()

	send <- outboundMessage{Type: "questions", Payload: newGameView(state)}

	ctx := r.Context()
loop:
	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "answer":
			var payload answerPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				send <- outboundMessage{Type: "error", Payload: wsError{Message: "invalid answer payload"}}
				continue
			}
			res, err := h.service.RecordAnswer(ctx, sessionID, payload.QuestionIndex, payload.SelectedIndex)
			if err != nil {
				send <- outboundMessage{Type: "error", Payload: wsError{Message: err.Error()}}
				continue
			}
			send <- outboundMessage{Type: "answerResult", Payload: res}
		case "next":
			res, err := h.service.Advance(ctx, sessionID)
			if err != nil {
				send <- outboundMessage{Type: "error", Payload: wsError{Message: err.Error()}}
				continue
			}
			send <- outboundMessage{Type: "advanced", Payload: res}
		case "stop":
			res, err := h.service.Stop(ctx, sessionID)
			if err != nil {
				send <- outboundMessage{Type: "error", Payload: wsError{Message: err.Error()}}
				continue
			}
			send <- outboundMessage{Type: "stopped", Payload: res}
			break loop
		default:
			send <- outboundMessage{Type: "error", Payload: wsError{Message: "unsupported message type"}}
		}
	}

	close(send)
	<-writerDone
}
