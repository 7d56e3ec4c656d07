package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/wayfinder-labs/wayfinder/backend/internal/config"
	"github.com/wayfinder-labs/wayfinder/backend/internal/content"
	"github.com/wayfinder-labs/wayfinder/backend/internal/dimension"
	"github.com/wayfinder-labs/wayfinder/backend/internal/handler"
	"github.com/wayfinder-labs/wayfinder/backend/internal/service/ai"
	"github.com/wayfinder-labs/wayfinder/backend/internal/service/interview"
	"github.com/wayfinder-labs/wayfinder/backend/internal/storage"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	decks, err := content.Load(cfg.Content.DecksPath)
	if err != nil {
		log.Fatalf("failed to load dimension decks: %v", err)
	}

	// Profile persistence. The interview keeps going on save failures; the
	// store only needs to exist.
	var store storage.Store
	if cfg.Storage.Path == "memory" {
		store = storage.NewMemoryStore()
		log.Println("profile persistence: in-memory only")
	} else {
		sqliteStore, err := storage.Open(cfg.Storage.Path)
		if err != nil {
			log.Fatalf("failed to open profile database: %v", err)
		}
		defer sqliteStore.Close()
		store = sqliteStore
		log.Printf("profile persistence: sqlite at %s", cfg.Storage.Path)
	}

	// Generative backend. Without credentials every call fails typed and the
	// deterministic deck content drives the whole interview.
	var generator ai.Generator = ai.Unavailable{}
	if cfg.AI.Enabled() {
		chatModel, err := cfg.AI.NewChatModel(ctx)
		if err != nil {
			log.Printf("warning: failed to initialize chat model: %v", err)
			log.Println("continuing with deterministic interview content only")
		} else {
			client, err := ai.NewClient(ctx, chatModel, ai.Options{Timeout: cfg.AI.RequestTimeout})
			if err != nil {
				log.Printf("warning: failed to initialize AI client: %v", err)
			} else {
				generator = client
				log.Println("AI client initialized successfully")
			}
		}
	} else {
		log.Println("ark credentials not configured, running with deterministic interview content")
	}

	registry, err := dimension.NewRegistry(generator, decks)
	if err != nil {
		log.Fatalf("failed to build dimension registry: %v", err)
	}

	interviewSvc := interview.NewService(registry, generator, store)
	router := handler.NewRouter(interviewSvc)

	startServer(ctx, cfg.Server, router)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("Wayfinder backend listening on %s", addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
