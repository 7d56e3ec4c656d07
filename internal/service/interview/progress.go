package interview

import "github.com/wayfinder-labs/wayfinder/backend/internal/model/interview"

// Policy gates, not structural invariants: how many completed dimensions
// unlock early insights and full synthesis. Both boundaries are inclusive.
const (
	insightsThreshold  = 3
	synthesisThreshold = 8
)

// EligibleForInsights reports whether early insights are unlocked.
func EligibleForInsights(p *interview.Profile) bool {
	return p.CompletedCount() >= insightsThreshold
}

// EligibleForSynthesis reports whether the synthesis stage may run.
func EligibleForSynthesis(p *interview.Profile) bool {
	return p.CompletedCount() >= synthesisThreshold
}
