package interview

import "time"

// DimensionRecord is the per-dimension sub-state of a Profile: how many turns
// the dimension has consumed, whether it finished, and the structured findings
// the handler proposed. Completion is one-way and the turn counter never
// decreases; both are enforced by the mutation helpers on Profile.
type DimensionRecord struct {
	Complete    bool           `json:"complete"`
	Turns       int            `json:"turns"`
	Findings    map[string]any `json:"findings,omitempty"`
	Summary     string         `json:"summary,omitempty"`
	CompletedAt *time.Time     `json:"completedAt,omitempty"`
}

// Profile is the accumulating user record. Records always holds exactly one
// entry per dimension; a not-started dimension is an empty record, never a
// missing key. CreatedAt is the owning session's creation time, carried here
// so a session resumed from storage keeps its original timestamp.
type Profile struct {
	Name       string                         `json:"name,omitempty"`
	Background string                         `json:"background,omitempty"`
	CreatedAt  time.Time                      `json:"createdAt"`
	Records    map[Dimension]*DimensionRecord `json:"records"`
}

// NewProfile constructs a profile with all twelve dimension records present.
func NewProfile() *Profile {
	p := &Profile{Records: make(map[Dimension]*DimensionRecord, len(allDimensions))}
	for _, d := range allDimensions {
		p.Records[d] = &DimensionRecord{}
	}
	return p
}

// Normalize restores any record missing from an externally stored payload and
// drops keys outside the closed dimension set. Load paths call this so a
// profile observed by the rest of the system always carries twelve keys.
func (p *Profile) Normalize() {
	if p.Records == nil {
		p.Records = make(map[Dimension]*DimensionRecord, len(allDimensions))
	}
	for key := range p.Records {
		if !key.Valid() {
			delete(p.Records, key)
		}
	}
	for _, d := range allDimensions {
		if p.Records[d] == nil {
			p.Records[d] = &DimensionRecord{}
		}
	}
}

// Clone returns a deep copy. Turn processing mutates a clone and commits it
// only when the whole turn succeeds, so a cancelled turn is never visible.
func (p *Profile) Clone() *Profile {
	out := &Profile{
		Name:       p.Name,
		Background: p.Background,
		CreatedAt:  p.CreatedAt,
		Records:    make(map[Dimension]*DimensionRecord, len(p.Records)),
	}
	for d, rec := range p.Records {
		copied := &DimensionRecord{
			Complete: rec.Complete,
			Turns:    rec.Turns,
			Summary:  rec.Summary,
		}
		if rec.Findings != nil {
			copied.Findings = cloneFindings(rec.Findings)
		}
		if rec.CompletedAt != nil {
			at := *rec.CompletedAt
			copied.CompletedAt = &at
		}
		out.Records[d] = copied
	}
	return out
}

// Record returns the record for d. Profiles built through NewProfile or
// Normalize always have it.
func (p *Profile) Record(d Dimension) *DimensionRecord {
	return p.Records[d]
}

// RecordTurn increments the turn counter for d. Completed dimensions are
// frozen, so the call is a no-op once Complete is set.
func (p *Profile) RecordTurn(d Dimension) {
	rec := p.Records[d]
	if rec == nil || rec.Complete {
		return
	}
	rec.Turns++
}

// MergeFindings folds proposed findings into the record without touching the
// completion state. Frozen records are left alone.
func (p *Profile) MergeFindings(d Dimension, findings map[string]any) {
	rec := p.Records[d]
	if rec == nil || rec.Complete || len(findings) == 0 {
		return
	}
	if rec.Findings == nil {
		rec.Findings = make(map[string]any, len(findings))
	}
	for k, v := range findings {
		rec.Findings[k] = v
	}
}

// MarkComplete freezes the record with its final findings and summary. It
// reports whether the transition happened; a second call is a no-op.
func (p *Profile) MarkComplete(d Dimension, findings map[string]any, summary string, at time.Time) bool {
	rec := p.Records[d]
	if rec == nil || rec.Complete {
		return false
	}
	p.MergeFindings(d, findings)
	rec.Complete = true
	rec.Summary = summary
	completedAt := at.UTC()
	rec.CompletedAt = &completedAt
	return true
}

// CompletedCount returns how many dimensions are complete.
func (p *Profile) CompletedCount() int {
	count := 0
	for _, d := range allDimensions {
		if rec := p.Records[d]; rec != nil && rec.Complete {
			count++
		}
	}
	return count
}

func cloneFindings(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		switch typed := v.(type) {
		case map[string]any:
			out[k] = cloneFindings(typed)
		case []any:
			copied := make([]any, len(typed))
			copy(copied, typed)
			out[k] = copied
		case []string:
			copied := make([]string, len(typed))
			copy(copied, typed)
			out[k] = copied
		default:
			out[k] = v
		}
	}
	return out
}
