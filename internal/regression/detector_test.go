package regression

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var key = Key{Implementation: "aas-core3-golang", Dataset: "wide", OperationID: "deserialize"}

func detectOne(t *testing.T, prev, cur Sample) Comparison {
	t.Helper()
	res := Detect(map[Key]Sample{key: cur}, map[Key]Sample{key: prev}, DefaultConfig())
	require.Len(t, res.Comparisons, 1)
	return res.Comparisons[0]
}

func TestSmallDeltaNotSignificant(t *testing.T) {
	// 5% delta is below the practical threshold even though the
	// statistical test alone would flag it.
	c := detectOne(t,
		Sample{MeanNs: 1_000_000, StddevNs: 50_000, SampleCount: 10},
		Sample{MeanNs: 1_050_000, StddevNs: 60_000, SampleCount: 10},
	)
	assert.Equal(t, VerdictNotSignificant, c.Verdict)
	assert.InDelta(t, 5.0, c.DeltaPct, 0.01)
	assert.Empty(t, c.Direction)
}

func TestLargeDeltaSignificant(t *testing.T) {
	c := detectOne(t,
		Sample{MeanNs: 1_000_000, StddevNs: 50_000, SampleCount: 10},
		Sample{MeanNs: 1_300_000, StddevNs: 60_000, SampleCount: 10},
	)
	assert.Equal(t, VerdictSignificant, c.Verdict)
	assert.Equal(t, DirectionRegression, c.Direction)
	assert.InDelta(t, 30.0, c.DeltaPct, 0.01)
}

func TestImprovementDirection(t *testing.T) {
	c := detectOne(t,
		Sample{MeanNs: 1_000_000, StddevNs: 50_000, SampleCount: 10},
		Sample{MeanNs: 700_000, StddevNs: 40_000, SampleCount: 10},
	)
	assert.Equal(t, VerdictSignificant, c.Verdict)
	assert.Equal(t, DirectionImprovement, c.Direction)
}

func TestInsufficientSamples(t *testing.T) {
	// sample_count 2 downgrades the verdict regardless of delta.
	c := detectOne(t,
		Sample{MeanNs: 1_000_000, StddevNs: 50_000, SampleCount: 10},
		Sample{MeanNs: 2_000_000, StddevNs: 60_000, SampleCount: 2},
	)
	assert.Equal(t, VerdictInsufficientSamples, c.Verdict)

	c = detectOne(t,
		Sample{MeanNs: 1_000_000, StddevNs: 50_000, SampleCount: 3},
		Sample{MeanNs: 2_000_000, StddevNs: 60_000, SampleCount: 100},
	)
	assert.Equal(t, VerdictInsufficientSamples, c.Verdict)
}

func TestHighVarianceNotSignificant(t *testing.T) {
	// 10% delta but the noise floor swallows it.
	c := detectOne(t,
		Sample{MeanNs: 100, StddevNs: 100, SampleCount: 10},
		Sample{MeanNs: 110, StddevNs: 100, SampleCount: 10},
	)
	assert.Equal(t, VerdictNotSignificant, c.Verdict)
}

func TestZeroBaselineMeanSkipped(t *testing.T) {
	res := Detect(
		map[Key]Sample{key: {MeanNs: 100, StddevNs: 1, SampleCount: 10}},
		map[Key]Sample{key: {MeanNs: 0, StddevNs: 0, SampleCount: 10}},
		DefaultConfig(),
	)
	assert.Empty(t, res.Comparisons)
}

func TestNewAndRemovedEntriesInformational(t *testing.T) {
	added := Key{Implementation: "basyx-rust", Dataset: "wide", OperationID: "serialize"}
	gone := Key{Implementation: "basyx-rust", Dataset: "wide", OperationID: "traverse"}

	res := Detect(
		map[Key]Sample{added: {MeanNs: 100, StddevNs: 1, SampleCount: 10}},
		map[Key]Sample{gone: {MeanNs: 100, StddevNs: 1, SampleCount: 10}},
		DefaultConfig(),
	)
	assert.Empty(t, res.Comparisons)
	assert.Equal(t, []Key{added}, res.NewEntries)
	assert.Equal(t, []Key{gone}, res.Removed)
}

func TestReducedConfidencePropagates(t *testing.T) {
	c := detectOne(t,
		Sample{MeanNs: 1_000_000, StddevNs: 50_000, SampleCount: 10, ReducedConfidence: true},
		Sample{MeanNs: 1_300_000, StddevNs: 60_000, SampleCount: 10},
	)
	assert.True(t, c.ReducedConfidence)
}

func TestResultFilters(t *testing.T) {
	res := Result{Comparisons: []Comparison{
		{Verdict: VerdictSignificant, Direction: DirectionRegression},
		{Verdict: VerdictSignificant, Direction: DirectionImprovement},
		{Verdict: VerdictNotSignificant},
	}}
	assert.Len(t, res.Significant(), 2)
	assert.Len(t, res.Regressions(), 1)
}
