// Package dimension implements the twelve interview handlers. Handlers are
// stateless: per-session counters and findings live in the profile's
// dimension records, and a handler only ever receives a snapshot of that
// state and proposes an update. The router applies or rejects proposals; a
// handler never mutates a profile.
package dimension

import (
	"context"
	"fmt"

	"github.com/wayfinder-labs/wayfinder/backend/internal/content"
	"github.com/wayfinder-labs/wayfinder/backend/internal/model/interview"
	"github.com/wayfinder-labs/wayfinder/backend/internal/service/ai"
)

// State is the handler's read-only view of one dimension record.
type State struct {
	Dimension interview.Dimension
	Turns     int
	Complete  bool
	Findings  map[string]any
}

// ProfileContext is the slice of profile the handlers may read.
type ProfileContext struct {
	Name       string
	Background string
}

// Update is a proposed change to the dimension record. Only the router
// applies it.
type Update struct {
	Findings map[string]any
	Summary  string
}

// Result is one handler turn: the response text, an optional proposed update,
// and whether the dimension finished on this turn.
type Result struct {
	Response string
	Update   *Update
	Complete bool
}

// Handler conducts the turn-by-turn interview for one dimension.
type Handler interface {
	Dimension() interview.Dimension
	Handle(ctx context.Context, st State, userMessage string, profile ProfileContext) Result
}

// Registry holds the fixed handler per dimension. Built once at startup and
// read-only afterwards; it is the only process-wide interview state.
type Registry struct {
	handlers map[interview.Dimension]Handler
}

// NewRegistry builds a handler for every dimension from its deck.
func NewRegistry(gen ai.Generator, decks *content.Set) (*Registry, error) {
	handlers := make(map[interview.Dimension]Handler, 12)
	for _, d := range interview.AllDimensions() {
		deck := decks.Deck(d)
		switch deck.Style {
		case content.StyleExchange:
			handlers[d] = &exchangeHandler{dim: d, deck: deck, gen: gen}
		case content.StyleCards:
			handlers[d] = &cardHandler{dim: d, deck: deck, gen: gen}
		default:
			return nil, fmt.Errorf("dimension %s: unsupported deck style %q", d, deck.Style)
		}
	}
	return &Registry{handlers: handlers}, nil
}

// Lookup returns the handler for d.
func (r *Registry) Lookup(d interview.Dimension) (Handler, bool) {
	h, ok := r.handlers[d]
	return h, ok
}

// completedAck is the neutral reply for a dimension that already finished.
// Re-entering a complete dimension is an idempotent no-op.
func completedAck(d interview.Dimension) Result {
	return Result{
		Response: fmt.Sprintf("We've already covered %s. Pick another area, or ask for your progress so far.", d.Title()),
		Complete: true,
	}
}
