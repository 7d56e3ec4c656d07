package ws

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	interviewService "github.com/wayfinder-labs/wayfinder/backend/internal/service/interview"
)

// Handler runs a live interview over a WebSocket connection: the client sends
// user turns, the server answers with TurnResults.
type Handler struct {
	svc      *interviewService.Service
	upgrader websocket.Upgrader
}

// New creates the WebSocket handler.
func New(svc *interviewService.Service) *Handler {
	return &Handler{
		svc: svc,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterRoutes wires the WebSocket route.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/ws/{sessionID}", h.handleWebSocket)
}

type inboundMessage struct {
	Message   string `json:"message"`
	Dimension string `json:"dimension,omitempty"`
}

type outboundMessage struct {
	Type      string                       `json:"type"`
	SessionID string                       `json:"sessionId,omitempty"`
	Turn      *interviewService.TurnResult `json:"turn,omitempty"`
	Error     string                       `json:"error,omitempty"`
	Timestamp int64                        `json:"timestamp"`
}

const (
	writeWait      = 10 * time.Second
	maxMessageSize = 64 * 1024
)

func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	if _, err := h.svc.GetSession(r.Context(), sessionID); err != nil {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[ws] upgrade failed for session=%s: %v", sessionID, err)
		return
	}
	defer conn.Close()

	conn.SetReadLimit(maxMessageSize)
	log.Printf("[ws] connection opened for session=%s", sessionID)

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("[ws] read error for session=%s: %v", sessionID, err)
			}
			return
		}

		result, err := h.svc.ProcessTurn(r.Context(), sessionID, inbound.Message, inbound.Dimension)
		if err != nil {
			h.writeMessage(conn, outboundMessage{
				Type:      "error",
				SessionID: sessionID,
				Error:     turnErrorText(err),
				Timestamp: time.Now().UnixMilli(),
			})
			continue
		}

		h.writeMessage(conn, outboundMessage{
			Type:      "turn",
			SessionID: sessionID,
			Turn:      &result,
			Timestamp: time.Now().UnixMilli(),
		})
	}
}

func (h *Handler) writeMessage(conn *websocket.Conn, msg outboundMessage) {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(msg); err != nil {
		log.Printf("[ws] write failed for session=%s: %v", msg.SessionID, err)
	}
}

func turnErrorText(err error) string {
	if errors.Is(err, interviewService.ErrSessionNotFound) {
		return "session not found"
	}
	return "turn could not be processed"
}
