package interview

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/wayfinder-labs/wayfinder/backend/internal/model/interview"
)

// ErrSynthesisNotReady is returned when fewer than the gate's worth of
// dimensions are complete.
var ErrSynthesisNotReady = errors.New("synthesis requires more completed dimensions")

// Recommendation aggregates every completed dimension's findings. When the
// backend cannot produce the narrative, Mechanical is set and the payload is
// built solely from the findings already in the profile.
type Recommendation struct {
	SessionID        string                         `json:"sessionId"`
	GeneratedAt      time.Time                      `json:"generatedAt"`
	Dimensions       []interview.Dimension          `json:"dimensions"`
	Summaries        map[interview.Dimension]string `json:"summaries"`
	CareerDirections []string                       `json:"careerDirections,omitempty"`
	ActionItems      []string                       `json:"actionItems,omitempty"`
	SkillGaps        []string                       `json:"skillGaps,omitempty"`
	Narrative        string                         `json:"narrative"`
	Mechanical       bool                           `json:"mechanical,omitempty"`
}

type synthesisPayload struct {
	CareerDirections []string `json:"career_directions"`
	ActionItems      []string `json:"action_items"`
	SkillGaps        []string `json:"skill_gaps"`
	Narrative        string   `json:"narrative"`
}

func (p *synthesisPayload) valid() bool {
	return strings.TrimSpace(p.Narrative) != "" && len(p.CareerDirections) > 0
}

const synthesisSystemPrompt = "You are a career counselor writing the final recommendation after a " +
	"twelve-area assessment interview. From the per-area findings, return only a JSON object with: " +
	"\"career_directions\" (array of strings), \"action_items\" (array of strings), " +
	"\"skill_gaps\" (array of strings), and \"narrative\" (a few sentences tying it together)."

// Synthesize aggregates all completed dimension records into one
// recommendation. Narrative aggregation runs through the backend; on any
// failure it degrades to mechanical aggregation rather than failing the call.
func (s *Service) Synthesize(ctx context.Context, sessionID string) (Recommendation, error) {
	state, err := s.lookup(ctx, sessionID)
	if err != nil {
		return Recommendation{}, err
	}

	state.mu.Lock()
	defer state.mu.Unlock()

	profile := state.profile
	if !EligibleForSynthesis(profile) {
		return Recommendation{}, ErrSynthesisNotReady
	}

	progress := interview.ComputeProgress(profile)
	rec := Recommendation{
		SessionID:   sessionID,
		GeneratedAt: time.Now().UTC(),
		Dimensions:  progress.Completed,
		Summaries:   make(map[interview.Dimension]string, len(progress.Completed)),
	}
	for _, d := range progress.Completed {
		rec.Summaries[d] = profile.Record(d).Summary
	}

	payload := synthesisPayload{}
	genErr := s.gen.GenerateStructured(ctx, synthesisSystemPrompt, buildSynthesisQuery(profile, progress.Completed), &payload)
	if genErr == nil && payload.valid() {
		rec.CareerDirections = payload.CareerDirections
		rec.ActionItems = payload.ActionItems
		rec.SkillGaps = payload.SkillGaps
		rec.Narrative = payload.Narrative
		return rec, nil
	}
	if genErr != nil {
		log.Printf("[synthesis] narrative aggregation unavailable for session=%s, using mechanical aggregation: %v", sessionID, genErr)
	}

	mechanicalRecommendation(&rec, profile, progress)
	return rec, nil
}

// mechanicalRecommendation fills the payload deterministically from stored
// findings. No backend call; this is the floor synthesis can never sink below.
func mechanicalRecommendation(rec *Recommendation, profile *interview.Profile, progress interview.Progress) {
	rec.Mechanical = true

	var b strings.Builder
	b.WriteString("Assessment summary across completed areas:\n")
	for _, d := range progress.Completed {
		summary := profile.Record(d).Summary
		if summary == "" {
			summary = "completed"
		}
		fmt.Fprintf(&b, "- %s: %s\n", d.Title(), summary)
	}
	rec.Narrative = strings.TrimRight(b.String(), "\n")

	if len(progress.Remaining) > 0 {
		titles := make([]string, len(progress.Remaining))
		for i, d := range progress.Remaining {
			titles[i] = d.Title()
		}
		rec.ActionItems = []string{
			fmt.Sprintf("Complete the remaining assessments for a fuller picture: %s.", strings.Join(titles, ", ")),
		}
	}
}

func buildSynthesisQuery(profile *interview.Profile, completed []interview.Dimension) string {
	var b strings.Builder
	if profile.Name != "" {
		fmt.Fprintf(&b, "Candidate: %s.\n", profile.Name)
	}
	if profile.Background != "" {
		fmt.Fprintf(&b, "Background: %s.\n", profile.Background)
	}
	b.WriteString("Per-area findings:\n")
	for _, d := range completed {
		record := profile.Record(d)
		fmt.Fprintf(&b, "%s: %s\n", d.Title(), record.Summary)
		if len(record.Findings) > 0 {
			if encoded, err := json.Marshal(record.Findings); err == nil {
				b.Write(encoded)
				b.WriteString("\n")
			}
		}
	}
	b.WriteString("Produce the JSON recommendation.")
	return b.String()
}
