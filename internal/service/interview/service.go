// Package interview implements the conversation orchestration engine: session
// and turn ownership, the per-turn master router, progress gating, and the
// synthesis stage. The service is the sole writer of profiles; handlers only
// propose updates, and a turn's mutations commit atomically or not at all.
package interview

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wayfinder-labs/wayfinder/backend/internal/dimension"
	"github.com/wayfinder-labs/wayfinder/backend/internal/model/interview"
	"github.com/wayfinder-labs/wayfinder/backend/internal/service/ai"
	"github.com/wayfinder-labs/wayfinder/backend/internal/storage"
)

var ErrSessionNotFound = errors.New("session not found")

// TurnResult is what the presentation boundary receives for each turn.
type TurnResult struct {
	Message   string              `json:"message"`
	Dimension interview.Dimension `json:"dimension,omitempty"`
	Complete  bool                `json:"complete"`
	Progress  interview.Progress  `json:"progress"`
}

// Service owns all per-session state. Sessions are independent; each carries
// its own lock so turns within a session serialise while sessions proceed in
// parallel.
type Service struct {
	mu       sync.RWMutex
	sessions map[string]*sessionState

	registry *dimension.Registry
	gen      ai.Generator
	store    storage.Store
}

type sessionState struct {
	mu      sync.Mutex
	session interview.Session
	profile *interview.Profile
	turns   []interview.Turn
	current interview.Dimension // "" when no dimension is targeted
}

// NewService wires the orchestration engine. All dependencies are injected at
// process start; there are no package-level caches.
func NewService(registry *dimension.Registry, gen ai.Generator, store storage.Store) *Service {
	return &Service{
		sessions: make(map[string]*sessionState),
		registry: registry,
		gen:      gen,
		store:    store,
	}
}

// CreateSession provisions a session with a fresh twelve-record profile.
func (s *Service) CreateSession(ctx context.Context, name, background string) (interview.Session, error) {
	session := interview.Session{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
	}

	profile := interview.NewProfile()
	profile.Name = strings.TrimSpace(name)
	profile.Background = strings.TrimSpace(background)
	profile.CreatedAt = session.CreatedAt

	state := &sessionState{session: session, profile: profile}

	s.mu.Lock()
	s.sessions[session.ID] = state
	s.mu.Unlock()

	if err := s.store.Save(ctx, session.ID, profile); err != nil {
		log.Printf("[interview] initial profile save failed for session=%s, continuing in memory: %v", session.ID, err)
	}

	return session, nil
}

// GetSession retrieves session metadata.
func (s *Service) GetSession(ctx context.Context, sessionID string) (interview.Session, error) {
	state, err := s.lookup(ctx, sessionID)
	if err != nil {
		return interview.Session{}, err
	}
	return state.session, nil
}

// ProcessTurn runs one full Router→Handler→Adapter turn. The router works on
// a clone of the profile; nothing commits if the caller's context ended
// mid-turn, so a cancelled turn leaves the session exactly as it was.
func (s *Service) ProcessTurn(ctx context.Context, sessionID, message, dimensionHint string) (TurnResult, error) {
	state, err := s.lookup(ctx, sessionID)
	if err != nil {
		return TurnResult{}, err
	}

	state.mu.Lock()
	defer state.mu.Unlock()

	working := state.profile.Clone()
	outcome := s.route(ctx, working, state.current, message, dimensionHint)

	if ctxErr := ctx.Err(); ctxErr != nil {
		return TurnResult{}, ctxErr
	}

	now := time.Now().UTC()
	if trimmed := strings.TrimSpace(message); trimmed != "" {
		state.turns = append(state.turns, interview.Turn{
			ID:        uuid.NewString(),
			SessionID: sessionID,
			Role:      interview.RoleUser,
			Content:   trimmed,
			Dimension: outcome.result.Dimension,
			CreatedAt: now,
		})
	}
	state.turns = append(state.turns, interview.Turn{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Role:      interview.RoleAssistant,
		Content:   outcome.result.Message,
		Dimension: outcome.result.Dimension,
		CreatedAt: now,
	})

	state.profile = working
	state.current = outcome.nextTarget

	if outcome.mutated {
		if err := s.store.Save(ctx, sessionID, working); err != nil {
			log.Printf("[interview] profile save failed for session=%s, continuing in memory: %v", sessionID, err)
		}
	}

	return outcome.result, nil
}

// Transcript returns the session's turns in insertion order.
func (s *Service) Transcript(ctx context.Context, sessionID string) ([]interview.Turn, error) {
	state, err := s.lookup(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	state.mu.Lock()
	defer state.mu.Unlock()

	turns := make([]interview.Turn, len(state.turns))
	copy(turns, state.turns)
	return turns, nil
}

// Progress derives completion state from the profile on demand.
func (s *Service) Progress(ctx context.Context, sessionID string) (interview.Progress, error) {
	state, err := s.lookup(ctx, sessionID)
	if err != nil {
		return interview.Progress{}, err
	}

	state.mu.Lock()
	defer state.mu.Unlock()
	return interview.ComputeProgress(state.profile), nil
}

// lookup resolves a session, resuming it from the store when the process no
// longer holds it in memory.
func (s *Service) lookup(ctx context.Context, sessionID string) (*sessionState, error) {
	s.mu.RLock()
	state, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if ok {
		return state, nil
	}

	profile, found, err := s.store.Load(ctx, sessionID)
	if err != nil {
		log.Printf("[interview] profile load failed for session=%s: %v", sessionID, err)
		return nil, ErrSessionNotFound
	}
	if !found {
		return nil, ErrSessionNotFound
	}

	createdAt := profile.CreatedAt
	if createdAt.IsZero() {
		// Payload written before creation times were stored.
		createdAt = time.Now().UTC()
	}
	state = &sessionState{
		session: interview.Session{ID: sessionID, CreatedAt: createdAt},
		profile: profile,
	}

	s.mu.Lock()
	if existing, ok := s.sessions[sessionID]; ok {
		state = existing
	} else {
		s.sessions[sessionID] = state
	}
	s.mu.Unlock()

	return state, nil
}
