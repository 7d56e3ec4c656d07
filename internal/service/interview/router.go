package interview

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/wayfinder-labs/wayfinder/backend/internal/dimension"
	"github.com/wayfinder-labs/wayfinder/backend/internal/model/interview"
)

// intentConfidenceFloor is the minimum classifier confidence for switching
// dimensions off a free-text message. Below it the router answers itself.
const intentConfidenceFloor = 0.4

type routeOutcome struct {
	result     TurnResult
	nextTarget interview.Dimension
	mutated    bool
}

// route is the master router's per-turn state machine: keep the current
// incomplete target, honor a valid hint, open the first remaining dimension
// on an empty message, otherwise infer intent - and degrade to a router-level
// reply on anything unknown or unparseable. Routing errors never fail a turn.
func (s *Service) route(ctx context.Context, profile *interview.Profile, current interview.Dimension, message, hint string) routeOutcome {
	target := current
	if target != "" && profile.Record(target).Complete {
		target = ""
	}

	// A degraded reply must not untarget a dimension that is mid-interview;
	// the router keeps delegating until completion or an explicit switch.
	resume := target

	if hint != "" {
		d, ok := interview.ParseDimension(strings.TrimSpace(hint))
		if !ok {
			return s.routerReply(profile, fmt.Sprintf("I don't have an assessment called %q. ", hint), resume)
		}
		target = d
	}

	if target == "" {
		if strings.TrimSpace(message) == "" {
			target = firstRemaining(profile)
			if target == "" {
				return s.routerReply(profile, "", resume)
			}
		} else {
			inferred, ok := s.inferIntent(ctx, profile, message)
			if !ok {
				return s.routerReply(profile, "", resume)
			}
			target = inferred
		}
	}

	handler, ok := s.registry.Lookup(target)
	if !ok {
		// Stale identifier from an old client; degrade, never fail.
		log.Printf("[router] no handler for dimension %q, replying at router level", target)
		return s.routerReply(profile, "", resume)
	}

	rec := profile.Record(target)
	st := dimension.State{
		Dimension: target,
		Turns:     rec.Turns,
		Complete:  rec.Complete,
		Findings:  rec.Findings,
	}
	res := handler.Handle(ctx, st, message, dimension.ProfileContext{
		Name:       profile.Name,
		Background: profile.Background,
	})

	// The router is the only writer. Frozen records stay frozen: a handler
	// call on a complete dimension changes nothing.
	mutated := false
	if !rec.Complete {
		profile.RecordTurn(target)
		if res.Update != nil {
			profile.MergeFindings(target, res.Update.Findings)
		}
		if res.Complete {
			summary := ""
			if res.Update != nil {
				summary = res.Update.Summary
			}
			profile.MarkComplete(target, nil, summary, time.Now())
		}
		mutated = true
	}

	response := res.Response
	if res.Complete && mutated && EligibleForSynthesis(profile) {
		response += "\n\nEnough areas are complete now - ask for your recommendation whenever you're ready."
	}

	next := target
	if res.Complete {
		next = ""
	}

	return routeOutcome{
		result: TurnResult{
			Message:   response,
			Dimension: target,
			Complete:  res.Complete,
			Progress:  interview.ComputeProgress(profile),
		},
		nextTarget: next,
		mutated:    mutated,
	}
}

// routerReply produces the non-dimension response: remaining areas plus any
// unlocked actions. Deterministic, no backend involved. resume carries the
// in-progress target, if any, unchanged through the degraded turn.
func (s *Service) routerReply(profile *interview.Profile, lead string, resume interview.Dimension) routeOutcome {
	progress := interview.ComputeProgress(profile)

	var b strings.Builder
	b.WriteString(lead)
	if len(progress.Remaining) == 0 {
		b.WriteString("All twelve areas are complete - ask for your recommendation whenever you're ready.")
	} else {
		titles := make([]string, len(progress.Remaining))
		for i, d := range progress.Remaining {
			titles[i] = d.Title()
		}
		b.WriteString("We can pick up any of these areas next: ")
		b.WriteString(strings.Join(titles, ", "))
		b.WriteString(".")
		if EligibleForSynthesis(profile) {
			b.WriteString(" There's also enough complete for a full recommendation.")
		} else if EligibleForInsights(profile) {
			b.WriteString(" There's already enough for some early insights.")
		}
	}

	return routeOutcome{
		result:     TurnResult{Message: b.String(), Progress: progress},
		nextTarget: resume,
	}
}

type intentPayload struct {
	Dimension  string  `json:"dimension"`
	Confidence float32 `json:"confidence"`
}

const intentSystemPrompt = "You route messages in a career-guidance interview. " +
	"Decide which assessment area the user wants to talk about. " +
	"Return only a JSON object {\"dimension\": \"...\", \"confidence\": 0.0-1.0} where dimension is one of: " +
	"personality, interests, aspirations, skills, motivations_values, cognitive_abilities, " +
	"learning_preferences, physical_context, strengths_weaknesses, emotional_intelligence, " +
	"track_record, constraints - or \"none\" if no area fits."

// inferIntent asks the backend which dimension the message addresses. Any
// failure, unknown label, low confidence, or already-complete target reports
// not-actionable and the router answers itself.
func (s *Service) inferIntent(ctx context.Context, profile *interview.Profile, message string) (interview.Dimension, bool) {
	payload := intentPayload{}
	query := fmt.Sprintf("User message:\n%s", strings.TrimSpace(message))
	if err := s.gen.GenerateStructured(ctx, intentSystemPrompt, query, &payload); err != nil {
		log.Printf("[router] intent inference failed, replying at router level: %v", err)
		return "", false
	}

	d, ok := interview.ParseDimension(strings.ToLower(strings.TrimSpace(payload.Dimension)))
	if !ok || payload.Confidence < intentConfidenceFloor {
		return "", false
	}
	if profile.Record(d).Complete {
		return "", false
	}
	return d, true
}

func firstRemaining(profile *interview.Profile) interview.Dimension {
	for _, d := range interview.AllDimensions() {
		if rec := profile.Record(d); rec != nil && !rec.Complete {
			return d
		}
	}
	return ""
}
