package dimension

import (
	"context"
	"strings"
	"testing"

	"github.com/wayfinder-labs/wayfinder/backend/internal/content"
	"github.com/wayfinder-labs/wayfinder/backend/internal/model/interview"
	"github.com/wayfinder-labs/wayfinder/backend/internal/service/ai"
)

// scriptedGenerator returns fixed output, or a backend failure when broken.
type scriptedGenerator struct {
	text   string
	broken bool
}

func (g *scriptedGenerator) Generate(context.Context, string, string) (string, error) {
	if g.broken {
		return "", &ai.BackendError{Reason: ai.FailureTimeout}
	}
	return g.text, nil
}

func (g *scriptedGenerator) GenerateStructured(_ context.Context, _, _ string, out any) error {
	if g.broken {
		return &ai.BackendError{Reason: ai.FailureTimeout}
	}
	return ai.DecodeStructured(g.text, out)
}

func newRegistry(t *testing.T, gen ai.Generator) *Registry {
	t.Helper()
	decks, err := content.Default()
	if err != nil {
		t.Fatalf("load decks: %v", err)
	}
	registry, err := NewRegistry(gen, decks)
	if err != nil {
		t.Fatalf("build registry: %v", err)
	}
	return registry
}

func lookup(t *testing.T, r *Registry, d interview.Dimension) Handler {
	t.Helper()
	h, ok := r.Lookup(d)
	if !ok {
		t.Fatalf("no handler for %s", d)
	}
	return h
}

func TestRegistryCoversAllDimensions(t *testing.T) {
	registry := newRegistry(t, &scriptedGenerator{})
	for _, d := range interview.AllDimensions() {
		if _, ok := registry.Lookup(d); !ok {
			t.Fatalf("registry missing handler for %s", d)
		}
	}
}

func TestFirstCallAlwaysOpens(t *testing.T) {
	registry := newRegistry(t, &scriptedGenerator{broken: true})

	for _, d := range []interview.Dimension{interview.Personality, interview.Skills} {
		h := lookup(t, registry, d)
		res := h.Handle(context.Background(), State{Dimension: d}, "ignore this and open", ProfileContext{})
		if res.Complete {
			t.Fatalf("%s: first call must not complete", d)
		}
		if strings.TrimSpace(res.Response) == "" {
			t.Fatalf("%s: first call returned empty opening", d)
		}
	}
}

func TestExchangeFollowupUsesBackendText(t *testing.T) {
	registry := newRegistry(t, &scriptedGenerator{text: "What made that moment stand out?"})
	h := lookup(t, registry, interview.Personality)

	res := h.Handle(context.Background(), State{Dimension: interview.Personality, Turns: 1}, "I enjoy deep work", ProfileContext{Name: "Ada"})

	if res.Complete {
		t.Fatal("second exchange must not complete")
	}
	if res.Response != "What made that moment stand out?" {
		t.Fatalf("expected backend follow-up, got %q", res.Response)
	}
	if res.Update == nil {
		t.Fatal("exchange turns should propose recorded responses")
	}
}

func TestExchangeFollowupFallsBackOnFailure(t *testing.T) {
	registry := newRegistry(t, &scriptedGenerator{broken: true})
	h := lookup(t, registry, interview.Personality)

	res := h.Handle(context.Background(), State{Dimension: interview.Personality, Turns: 1}, "I enjoy deep work", ProfileContext{})

	if strings.TrimSpace(res.Response) == "" {
		t.Fatal("fallback follow-up must be non-empty")
	}
	if res.Complete {
		t.Fatal("fallback follow-up must not complete")
	}
}

func TestExchangeFinalizesOnThirdCall(t *testing.T) {
	registry := newRegistry(t, &scriptedGenerator{text: `{"summary": "calm and curious", "findings": {"traits": ["calm"]}}`})
	h := lookup(t, registry, interview.Personality)

	res := h.Handle(context.Background(), State{
		Dimension: interview.Personality,
		Turns:     2,
		Findings:  map[string]any{"responses": []string{"one", "two"}},
	}, "third answer", ProfileContext{})

	if !res.Complete {
		t.Fatal("third call must finalize")
	}
	if res.Update == nil || res.Update.Summary != "calm and curious" {
		t.Fatalf("expected backend summary in update, got %+v", res.Update)
	}
}

func TestFinalizationSurvivesMalformedBackendOutput(t *testing.T) {
	registry := newRegistry(t, &scriptedGenerator{text: "sorry, as a language model I cannot"})
	h := lookup(t, registry, interview.Personality)

	res := h.Handle(context.Background(), State{Dimension: interview.Personality, Turns: 2}, "third answer", ProfileContext{})

	if !res.Complete {
		t.Fatal("finalization must complete even on malformed backend output")
	}
	if res.Update == nil || res.Update.Summary == "" {
		t.Fatal("expected deterministic default payload")
	}
	if len(res.Update.Findings) == 0 {
		t.Fatal("default findings payload must be non-empty")
	}
}

func TestCardDeckWalksCardsThenFinalizes(t *testing.T) {
	registry := newRegistry(t, &scriptedGenerator{broken: true})
	h := lookup(t, registry, interview.LearningPreferences) // 3 cards

	ctx := context.Background()
	findings := map[string]any{}

	res := h.Handle(ctx, State{Dimension: interview.LearningPreferences, Turns: 0}, "", ProfileContext{})
	if res.Complete {
		t.Fatal("opening must not complete")
	}

	answers := []string{"documentation", "self-directed", "no feedback"}
	for i, answer := range answers {
		res = h.Handle(ctx, State{
			Dimension: interview.LearningPreferences,
			Turns:     i + 1,
			Findings:  findings,
		}, answer, ProfileContext{})
		if res.Update != nil {
			findings = res.Update.Findings
		}

		last := i == len(answers)-1
		if res.Complete != last {
			t.Fatalf("card %d: complete=%v, want %v", i+1, res.Complete, last)
		}
	}

	recorded, ok := findings["answers"].(map[string]string)
	if !ok || len(recorded) != 3 {
		t.Fatalf("expected 3 recorded answers, got %#v", findings["answers"])
	}
	if res.Update.Summary == "" {
		t.Fatal("card finalization must carry a summary even without the backend")
	}
}

func TestCompletedDimensionIsIdempotent(t *testing.T) {
	registry := newRegistry(t, &scriptedGenerator{text: "should never be used"})
	h := lookup(t, registry, interview.Personality)

	res := h.Handle(context.Background(), State{Dimension: interview.Personality, Turns: 3, Complete: true}, "more input", ProfileContext{})

	if !res.Complete {
		t.Fatal("completed dimension must still report complete")
	}
	if res.Update != nil {
		t.Fatal("completed dimension must not propose updates")
	}
	if strings.TrimSpace(res.Response) == "" {
		t.Fatal("completed dimension must return a neutral acknowledgement")
	}
}
