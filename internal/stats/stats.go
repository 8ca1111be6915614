// Package stats validates and recomputes summary statistics for a
// single run's measurements. It performs no cross-run merging.
package stats

import (
	"math"

	"aasbench/internal/report"
)

// Throughput derives operations per second from a mean latency.
// Non-positive means yield 0 rather than Inf.
func Throughput(meanNs float64) float64 {
	if meanNs <= 0 {
		return 0
	}
	return math.Round(1e9/meanNs*100) / 100
}

// Consistent reports whether the summary statistics of one measurement
// are internally plausible: non-negative mean/median/stddev and
// min <= mean <= max.
func Consistent(m report.OperationMeasurement) bool {
	if m.MeanNs < 0 || m.MedianNs < 0 || m.StddevNs < 0 {
		return false
	}
	// min/max are optional in legacy reports; only enforce the ordering
	// when the adapter actually measured them.
	if m.MinNs != 0 || m.MaxNs != 0 {
		if m.MinNs > m.MeanNs || m.MeanNs > m.MaxNs {
			return false
		}
	}
	return true
}

// Apply recomputes throughput for every entry of the report and flags
// internally inconsistent entries as measurement_semantics_suspect.
// Suspect entries are kept, never discarded. Returns the number of
// entries flagged.
func Apply(r *report.Report) int {
	suspect := 0
	for dsName, ds := range r.Datasets {
		for opKey, m := range ds.Operations {
			m.ThroughputOpsPerSec = Throughput(m.MeanNs)
			if !Consistent(m) {
				m.Suspect = true
				suspect++
			}
			ds.Operations[opKey] = m
		}
		r.Datasets[dsName] = ds
	}
	return suspect
}
