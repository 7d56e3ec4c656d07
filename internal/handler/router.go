package handler

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	interviewHandler "github.com/wayfinder-labs/wayfinder/backend/internal/handler/interview"
	"github.com/wayfinder-labs/wayfinder/backend/internal/handler/stream"
	"github.com/wayfinder-labs/wayfinder/backend/internal/handler/ws"
	middlewarePkg "github.com/wayfinder-labs/wayfinder/backend/internal/middleware"
	interviewService "github.com/wayfinder-labs/wayfinder/backend/internal/service/interview"
	"github.com/wayfinder-labs/wayfinder/backend/pkg/utils"
)

// NewRouter wires HTTP routes to the interview engine.
func NewRouter(svc *interviewService.Service) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	restHandler := interviewHandler.New(svc)
	streamHandler := stream.New(svc)
	wsHandler := ws.New(svc)

	r.Route("/api", func(api chi.Router) {
		restHandler.RegisterRoutes(api)
		wsHandler.RegisterRoutes(api)

		api.Get("/stream/{sessionID}", func(w http.ResponseWriter, r *http.Request) {
			sessionID := chi.URLParam(r, "sessionID")
			userMessage := r.URL.Query().Get("message")
			dimensionHint := r.URL.Query().Get("dimension")

			if err := streamHandler.HandleStreamRequest(r.Context(), w, sessionID, userMessage, dimensionHint); err != nil {
				log.Printf("[stream] error handling request: %v", err)
				utils.RespondError(w, http.StatusInternalServerError, "streaming failed")
			}
		})
	})

	return r
}
