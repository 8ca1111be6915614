package regression

import "time"

// Verdict values for one compared (implementation, dataset, operation).
const (
	VerdictSignificant         = "significant"
	VerdictNotSignificant      = "not_significant"
	VerdictInsufficientSamples = "insufficient_samples"
)

// Direction of a significant change.
const (
	DirectionRegression  = "regression"
	DirectionImprovement = "improvement"
)

// Key identifies one comparable measurement across runs.
type Key struct {
	Implementation string `json:"implementation"`
	Dataset        string `json:"dataset"`
	OperationID    string `json:"operation_id"`
}

// Sample is the statistical summary of one measurement, either from the
// current run or from the persisted baseline.
type Sample struct {
	MeanNs            float64   `json:"mean_ns"`
	StddevNs          float64   `json:"stddev_ns"`
	SampleCount       int64     `json:"sample_count"`
	ReducedConfidence bool      `json:"reduced_confidence,omitempty"`
	RunAt             time.Time `json:"run_at,omitzero"`
}

// Comparison is the verdict for one key present in both the current run
// and the baseline.
type Comparison struct {
	Key
	PreviousMeanNs    float64 `json:"previous_mean_ns"`
	CurrentMeanNs     float64 `json:"current_mean_ns"`
	DeltaPct          float64 `json:"delta_pct"`
	Verdict           string  `json:"verdict"`
	Direction         string  `json:"direction,omitempty"`
	ReducedConfidence bool    `json:"reduced_confidence,omitempty"`
}

// Result is the full output of one detection pass. New and removed
// entries are informational; they are never regressions.
type Result struct {
	Comparisons []Comparison `json:"comparisons"`
	NewEntries  []Key        `json:"new_entries,omitempty"`
	Removed     []Key        `json:"removed_entries,omitempty"`
}

// Significant returns only the comparisons with a significant verdict.
func (r Result) Significant() []Comparison {
	var out []Comparison
	for _, c := range r.Comparisons {
		if c.Verdict == VerdictSignificant {
			out = append(out, c)
		}
	}
	return out
}

// Regressions returns the significant comparisons that got slower.
func (r Result) Regressions() []Comparison {
	var out []Comparison
	for _, c := range r.Comparisons {
		if c.Verdict == VerdictSignificant && c.Direction == DirectionRegression {
			out = append(out, c)
		}
	}
	return out
}
