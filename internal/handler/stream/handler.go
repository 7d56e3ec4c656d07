package stream

import (
	"context"
	"fmt"
	"log"
	"net/http"

	interviewService "github.com/wayfinder-labs/wayfinder/backend/internal/service/interview"
	"github.com/wayfinder-labs/wayfinder/backend/pkg/utils"
)

// Handler streams interview turns via Server-Sent Events.
type Handler struct {
	svc *interviewService.Service
}

// New creates a new stream handler.
func New(svc *interviewService.Service) *Handler {
	return &Handler{svc: svc}
}

// StreamResponse represents a streaming response chunk.
type StreamResponse struct {
	Event     string `json:"event"`
	SessionID string `json:"sessionId,omitempty"`
	Content   string `json:"content,omitempty"`
	Data      any    `json:"data,omitempty"`
	Finished  bool   `json:"finished,omitempty"`
	Error     string `json:"error,omitempty"`
}

// HandleStreamRequest processes one interview turn and streams the result.
func (h *Handler) HandleStreamRequest(ctx context.Context, w http.ResponseWriter, sessionID, userMessage, dimensionHint string) error {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return fmt.Errorf("streaming unsupported")
	}

	utils.SetupSSEHeaders(w)

	h.sendSSE(w, flusher, StreamResponse{
		Event:     "start",
		SessionID: sessionID,
	})

	result, err := h.svc.ProcessTurn(ctx, sessionID, userMessage, dimensionHint)
	if err != nil {
		h.sendSSEError(w, flusher, fmt.Sprintf("turn failed: %v", err))
		return err
	}

	h.sendSSE(w, flusher, StreamResponse{
		Event:     "message",
		SessionID: sessionID,
		Content:   result.Message,
		Data:      result,
	})

	h.sendSSE(w, flusher, StreamResponse{
		Event:     "progress",
		SessionID: sessionID,
		Data:      result.Progress,
	})

	h.sendSSE(w, flusher, StreamResponse{
		Event:     "end",
		SessionID: sessionID,
		Finished:  true,
	})

	log.Printf("[stream] completed turn for session=%s, dimension=%s", sessionID, result.Dimension)
	return nil
}

// sendSSE sends a Server-Sent Event.
func (h *Handler) sendSSE(w http.ResponseWriter, flusher http.Flusher, response StreamResponse) {
	utils.SendSSEChunk(w, flusher, response)
}

// sendSSEError sends an error via Server-Sent Events.
func (h *Handler) sendSSEError(w http.ResponseWriter, flusher http.Flusher, errorMsg string) {
	h.sendSSE(w, flusher, StreamResponse{
		Event: "error",
		Error: errorMsg,
	})
}
