// Package regression compares one run's statistics against the
// persisted baseline and produces significance verdicts.
package regression

import (
	"math"
	"sort"
)

// Config is the explicit detection policy. All thresholds are
// configurable; the defaults mirror the scheduled CI runs.
type Config struct {
	// MinSampleCount is the minimum effective sample count on BOTH
	// sides for a statistical verdict. Below it the comparison is
	// insufficient_samples, never an alert.
	MinSampleCount int64
	// MinDeltaPct is the minimum practical change, in percent, for a
	// statistically significant difference to be reported. Keeps
	// noise-level shifts on tiny absolute timings out of the output.
	MinDeltaPct float64
	// ZScore is the critical value of the significance test
	// (1.96 for 95% confidence).
	ZScore float64
}

// DefaultConfig returns the policy used by scheduled runs.
func DefaultConfig() Config {
	return Config{
		MinSampleCount: 5,
		MinDeltaPct:    10.0,
		ZScore:         1.96,
	}
}

// welchSE is the standard error of the difference of two means with
// unequal variances (Welch's approximation).
func welchSE(a, b Sample) float64 {
	return math.Sqrt(
		a.StddevNs*a.StddevNs/float64(a.SampleCount) +
			b.StddevNs*b.StddevNs/float64(b.SampleCount))
}

// Detect compares the current run against the baseline. Keys present on
// only one side are reported informationally in NewEntries / Removed.
func Detect(current, baseline map[Key]Sample, cfg Config) Result {
	var res Result

	for key, cur := range current {
		prev, ok := baseline[key]
		if !ok {
			res.NewEntries = append(res.NewEntries, key)
			continue
		}
		if c, ok := compare(key, prev, cur, cfg); ok {
			res.Comparisons = append(res.Comparisons, c)
		}
	}
	for key := range baseline {
		if _, ok := current[key]; !ok {
			res.Removed = append(res.Removed, key)
		}
	}

	sort.Slice(res.Comparisons, func(i, j int) bool { return lessKey(res.Comparisons[i].Key, res.Comparisons[j].Key) })
	sort.Slice(res.NewEntries, func(i, j int) bool { return lessKey(res.NewEntries[i], res.NewEntries[j]) })
	sort.Slice(res.Removed, func(i, j int) bool { return lessKey(res.Removed[i], res.Removed[j]) })
	return res
}

func lessKey(a, b Key) bool {
	if a.Implementation != b.Implementation {
		return a.Implementation < b.Implementation
	}
	if a.Dataset != b.Dataset {
		return a.Dataset < b.Dataset
	}
	return a.OperationID < b.OperationID
}

func compare(key Key, prev, cur Sample, cfg Config) (Comparison, bool) {
	// A baseline mean of zero has no meaningful relative delta.
	if prev.MeanNs <= 0 {
		return Comparison{}, false
	}

	c := Comparison{
		Key:               key,
		PreviousMeanNs:    prev.MeanNs,
		CurrentMeanNs:     cur.MeanNs,
		ReducedConfidence: prev.ReducedConfidence || cur.ReducedConfidence,
	}

	diff := cur.MeanNs - prev.MeanNs
	c.DeltaPct = diff / prev.MeanNs * 100.0

	if prev.SampleCount < cfg.MinSampleCount || cur.SampleCount < cfg.MinSampleCount {
		c.Verdict = VerdictInsufficientSamples
		return c, true
	}

	se := welchSE(prev, cur)
	statistically := false
	if se > 0 {
		statistically = math.Abs(diff) > cfg.ZScore*se
	} else {
		// Zero variance on both sides: any nonzero shift is real.
		statistically = diff != 0
	}

	if statistically && math.Abs(c.DeltaPct) >= cfg.MinDeltaPct {
		c.Verdict = VerdictSignificant
		if diff > 0 {
			c.Direction = DirectionRegression
		} else {
			c.Direction = DirectionImprovement
		}
	} else {
		c.Verdict = VerdictNotSignificant
	}
	return c, true
}
