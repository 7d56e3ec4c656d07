package dimension

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/wayfinder-labs/wayfinder/backend/internal/model/interview"
)

const followupSystemPrompt = "You are a warm, focused career-guidance interviewer. " +
	"Ask exactly one concise follow-up question that digs deeper into the current assessment area. " +
	"No preamble, no lists, just the question."

const findingsSystemPrompt = "You are a career-assessment analyst. " +
	"Return only a JSON object with two fields: \"summary\" (one or two sentences) and " +
	"\"findings\" (an object of structured observations). No text outside the JSON."

func buildFollowupQuery(d interview.Dimension, profile ProfileContext, userMessage string, exchange int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Assessment area: %s.\n", d.Title())
	if profile.Name != "" {
		fmt.Fprintf(&b, "Candidate: %s.\n", profile.Name)
	}
	if profile.Background != "" {
		fmt.Fprintf(&b, "Background: %s.\n", profile.Background)
	}
	fmt.Fprintf(&b, "This is follow-up %d.\n", exchange)
	fmt.Fprintf(&b, "Their latest answer:\n%s\n", strings.TrimSpace(userMessage))
	b.WriteString("Ask the next follow-up question.")
	return b.String()
}

func buildFindingsQuery(d interview.Dimension, profile ProfileContext, responses []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Assessment area: %s.\n", d.Title())
	if profile.Name != "" {
		fmt.Fprintf(&b, "Candidate: %s.\n", profile.Name)
	}
	b.WriteString("Their answers in order:\n")
	for i, resp := range responses {
		fmt.Fprintf(&b, "%d. %s\n", i+1, strings.TrimSpace(resp))
	}
	b.WriteString("Produce the JSON assessment.")
	return b.String()
}

func buildCardFindingsQuery(d interview.Dimension, profile ProfileContext, answers map[string]string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Assessment area: %s.\n", d.Title())
	if profile.Name != "" {
		fmt.Fprintf(&b, "Candidate: %s.\n", profile.Name)
	}
	b.WriteString("Question-and-answer pairs:\n")
	encoded, err := json.Marshal(answers)
	if err == nil {
		b.Write(encoded)
		b.WriteString("\n")
	}
	b.WriteString("Produce the JSON assessment.")
	return b.String()
}

// findingsPayload is the strict shape expected from the backend at
// finalization. Anything else is a malformed-output backend failure.
type findingsPayload struct {
	Summary  string         `json:"summary"`
	Findings map[string]any `json:"findings"`
}

func (p *findingsPayload) valid() bool {
	return strings.TrimSpace(p.Summary) != ""
}
