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

// cardHandler runs a fixed deck of question cards, one per turn, and
// finalizes once every card has an answer.
type cardHandler struct {
	dim  interview.Dimension
	deck content.Deck
	gen  ai.Generator
}

func (h *cardHandler) Dimension() interview.Dimension { return h.dim }

func (h *cardHandler) Handle(ctx context.Context, st State, userMessage string, profile ProfileContext) Result {
	if st.Complete {
		return completedAck(h.dim)
	}

	cards := h.deck.Cards

	if st.Turns == 0 {
		return Result{Response: h.deck.Opening + "\n\n" + renderCard(cards[0])}
	}

	// The card answered on this turn is the one presented on the previous one.
	answered := st.Turns - 1
	if answered >= len(cards) {
		answered = len(cards) - 1
	}
	answers := priorAnswers(st.Findings)
	answers[cards[answered].Question] = strings.TrimSpace(userMessage)
	update := &Update{Findings: map[string]any{"answers": answers}}

	if st.Turns >= len(cards) {
		return h.finalize(ctx, profile, answers, update)
	}

	return Result{Response: renderCard(cards[st.Turns]), Update: update}
}

func (h *cardHandler) finalize(ctx context.Context, profile ProfileContext, answers map[string]string, update *Update) Result {
	payload := findingsPayload{}
	err := h.gen.GenerateStructured(ctx, findingsSystemPrompt, buildCardFindingsQuery(h.dim, profile, answers), &payload)
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
		Response: fmt.Sprintf("That's the last one for %s. %s", h.dim.Title(), payload.Summary),
		Update:   update,
		Complete: true,
	}
}

func renderCard(card content.Card) string {
	if len(card.Options) == 0 {
		return card.Question
	}
	return fmt.Sprintf("%s\nOptions: %s", card.Question, strings.Join(card.Options, ", "))
}

func priorAnswers(findings map[string]any) map[string]string {
	out := make(map[string]string)
	raw, ok := findings["answers"]
	if !ok {
		return out
	}
	switch typed := raw.(type) {
	case map[string]string:
		for k, v := range typed {
			out[k] = v
		}
	case map[string]any:
		for k, v := range typed {
			if s, ok := v.(string); ok {
				out[k] = s
			}
		}
	}
	return out
}
