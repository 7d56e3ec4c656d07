package dimension

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/wayfinder-labs/wayfinder/backend/internal/content"
	"github.com/wayfinder-labs/wayfinder/backend/internal/model/interview"
	"github.com/wayfinder-labs/wayfinder/backend/internal/service/ai"
)

// exchangeHandler runs a free-text interview: an opening question, backend
// generated follow-ups, and finalization on a fixed exchange count.
type exchangeHandler struct {
	dim  interview.Dimension
	deck content.Deck
	gen  ai.Generator
}

func (h *exchangeHandler) Dimension() interview.Dimension { return h.dim }

func (h *exchangeHandler) Handle(ctx context.Context, st State, userMessage string, profile ProfileContext) Result {
	if st.Complete {
		return completedAck(h.dim)
	}

	// The first call always opens, whatever the message contains.
	if st.Turns == 0 {
		return Result{Response: h.deck.Opening}
	}

	responses := append(priorResponses(st.Findings), strings.TrimSpace(userMessage))
	update := &Update{Findings: map[string]any{"responses": responses}}

	if st.Turns >= h.deck.FinalizeAfter()-1 {
		return h.finalize(ctx, profile, responses, update)
	}

	question := ""
	if text, err := h.gen.Generate(ctx, followupSystemPrompt, buildFollowupQuery(h.dim, profile, userMessage, st.Turns)); err == nil {
		question = strings.TrimSpace(text)
	} else {
		log.Printf("[dimension] %s follow-up generation failed, using deck fallback: %v", h.dim, err)
	}
	if question == "" {
		question = h.deck.Followups[(st.Turns-1)%len(h.deck.Followups)]
	}

	return Result{Response: question, Update: update}
}

// finalize must complete the dimension even on total backend failure, so the
// deck's default payload stands in whenever the structured call misbehaves.
func (h *exchangeHandler) finalize(ctx context.Context, profile ProfileContext, responses []string, update *Update) Result {
	payload := findingsPayload{}
	err := h.gen.GenerateStructured(ctx, findingsSystemPrompt, buildFindingsQuery(h.dim, profile, responses), &payload)
	if err != nil || !payload.valid() {
		if err != nil {
			log.Printf("[dimension] %s finalization fell back to deck defaults: %v", h.dim, err)
		}
		payload = defaultPayload(h.deck)
	}

	for k, v := range payload.Findings {
		update.Findings[k] = v
	}
	update.Summary = payload.Summary

	return Result{
		Response: fmt.Sprintf("Thanks - that completes %s. %s", h.dim.Title(), payload.Summary),
		Update:   update,
		Complete: true,
	}
}

func defaultPayload(deck content.Deck) findingsPayload {
	findings := make(map[string]any, len(deck.Defaults.Findings))
	for k, v := range deck.Defaults.Findings {
		findings[k] = v
	}
	return findingsPayload{Summary: deck.Defaults.Summary, Findings: findings}
}

func priorResponses(findings map[string]any) []string {
	raw, ok := findings["responses"]
	if !ok {
		return nil
	}
	switch typed := raw.(type) {
	case []string:
		return append([]string(nil), typed...)
	case []any:
		out := make([]string, 0, len(typed))
		for _, item := range typed {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
