// Package storage persists profiles between turns. Persistence is best-effort
// relative to the in-memory session state: the interview service logs save
// failures and keeps going.
package storage

import (
	"context"
	"sync"

	"github.com/wayfinder-labs/wayfinder/backend/internal/model/interview"
)

// Store is the load/save collaborator the interview service depends on.
type Store interface {
	// Load returns the stored profile for sessionID, reporting absence
	// without error.
	Load(ctx context.Context, sessionID string) (*interview.Profile, bool, error)
	// Save upserts the profile for sessionID.
	Save(ctx context.Context, sessionID string, profile *interview.Profile) error
}

// MemoryStore keeps profiles in a mutex-guarded map. Used in tests and when
// no database path is configured.
type MemoryStore struct {
	mu       sync.RWMutex
	profiles map[string]*interview.Profile
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{profiles: make(map[string]*interview.Profile)}
}

// Load returns a copy of the stored profile.
func (s *MemoryStore) Load(_ context.Context, sessionID string) (*interview.Profile, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	profile, ok := s.profiles[sessionID]
	if !ok {
		return nil, false, nil
	}
	return profile.Clone(), true, nil
}

// Save stores a copy of the profile.
func (s *MemoryStore) Save(_ context.Context, sessionID string, profile *interview.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[sessionID] = profile.Clone()
	return nil
}
