package interview

import "math"

// Progress is derived from a profile on demand. It is never cached, so it
// cannot drift from the records' own completion flags.
type Progress struct {
	Completed []Dimension `json:"completed"`
	Remaining []Dimension `json:"remaining"`
	Percent   float64     `json:"percent"`
}

// ComputeProgress partitions the twelve dimensions by completion and reports
// the percentage complete, rounded to one decimal.
func ComputeProgress(p *Profile) Progress {
	progress := Progress{
		Completed: make([]Dimension, 0, len(allDimensions)),
		Remaining: make([]Dimension, 0, len(allDimensions)),
	}
	for _, d := range allDimensions {
		if rec := p.Records[d]; rec != nil && rec.Complete {
			progress.Completed = append(progress.Completed, d)
		} else {
			progress.Remaining = append(progress.Remaining, d)
		}
	}
	progress.Percent = roundPercent(len(progress.Completed), len(allDimensions))
	return progress
}

func roundPercent(completed, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(100*float64(completed)/float64(total)*10) / 10
}
