package interview

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/wayfinder-labs/wayfinder/backend/internal/model/interview"
	interviewService "github.com/wayfinder-labs/wayfinder/backend/internal/service/interview"
)

// Handler exposes the interview engine over REST.
type Handler struct {
	svc *interviewService.Service
}

// New creates the interview handler.
func New(svc *interviewService.Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes wires the interview routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/dimensions", h.handleListDimensions)
	r.Post("/session", h.handleCreateSession)
	r.Post("/session/{sessionID}/turn", h.handleTurn)
	r.Get("/session/{sessionID}/progress", h.handleProgress)
	r.Get("/session/{sessionID}/transcript", h.handleTranscript)
	r.Post("/session/{sessionID}/synthesis", h.handleSynthesis)
}

// handleListDimensions returns the fixed assessment areas.
func (h *Handler) handleListDimensions(w http.ResponseWriter, _ *http.Request) {
	type entry struct {
		ID    interview.Dimension `json:"id"`
		Title string              `json:"title"`
	}
	dims := interview.AllDimensions()
	payload := make([]entry, 0, len(dims))
	for _, d := range dims {
		payload = append(payload, entry{ID: d, Title: d.Title()})
	}
	respondJSON(w, http.StatusOK, payload)
}

// handleCreateSession provisions a session and returns the opening turn.
func (h *Handler) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Name       string `json:"name"`
		Background string `json:"background"`
	}

	// An empty body is allowed; only malformed JSON is rejected.
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil && !errors.Is(err, io.EOF) {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session, err := h.svc.CreateSession(r.Context(), payload.Name, payload.Background)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to create session")
		return
	}

	opening, err := h.svc.ProcessTurn(r.Context(), session.ID, "", "")
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to open interview")
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{
		"session": session,
		"turn":    opening,
	})
}

// handleTurn processes one user message.
func (h *Handler) handleTurn(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	var payload struct {
		Message   string `json:"message"`
		Dimension string `json:"dimension"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.svc.ProcessTurn(r.Context(), sessionID, payload.Message, payload.Dimension)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// handleProgress reports derived completion state.
func (h *Handler) handleProgress(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	progress, err := h.svc.Progress(r.Context(), sessionID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, progress)
}

// handleTranscript returns the session's turns in order.
func (h *Handler) handleTranscript(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	turns, err := h.svc.Transcript(r.Context(), sessionID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, turns)
}

// handleSynthesis runs the synthesis stage when enough dimensions are done.
func (h *Handler) handleSynthesis(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	recommendation, err := h.svc.Synthesize(r.Context(), sessionID)
	if err != nil {
		if errors.Is(err, interviewService.ErrSynthesisNotReady) {
			respondError(w, http.StatusConflict, err.Error())
			return
		}
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, recommendation)
}

func respondServiceError(w http.ResponseWriter, err error) {
	if errors.Is(err, interviewService.ErrSessionNotFound) {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}
	respondError(w, http.StatusInternalServerError, err.Error())
}

// respondJSON sends a JSON response.
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

// respondError sends an error response.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
