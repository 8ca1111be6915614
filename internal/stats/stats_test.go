package stats

import (
	"testing"

	"aasbench/internal/report"

	"github.com/stretchr/testify/assert"
)

func TestThroughput(t *testing.T) {
	assert.Equal(t, 0.0, Throughput(0))
	assert.Equal(t, 0.0, Throughput(-5))
	assert.InDelta(t, 1000.0, Throughput(1e6), 0.01)
	assert.InDelta(t, 666666.67, Throughput(1500), 0.01)
}

func TestConsistent(t *testing.T) {
	ok := report.OperationMeasurement{MeanNs: 100, MedianNs: 95, StddevNs: 10, MinNs: 80, MaxNs: 150}
	assert.True(t, Consistent(ok))

	negStddev := ok
	negStddev.StddevNs = -1
	assert.False(t, Consistent(negStddev))

	meanBelowMin := ok
	meanBelowMin.MeanNs = 50
	assert.False(t, Consistent(meanBelowMin))

	meanAboveMax := ok
	meanAboveMax.MeanNs = 200
	assert.False(t, Consistent(meanAboveMax))

	// Legacy entries without min/max skip the ordering check.
	noRange := report.OperationMeasurement{MeanNs: 100, MedianNs: 95, StddevNs: 10}
	assert.True(t, Consistent(noRange))
}

func TestApplyFlagsButKeepsSuspectEntries(t *testing.T) {
	r := &report.Report{
		Datasets: map[string]report.Dataset{
			"wide": {Operations: map[string]report.OperationMeasurement{
				"deserialize": {MeanNs: 1e6, MinNs: 9e5, MaxNs: 1.2e6},
				"serialize":   {MeanNs: 100, MinNs: 200, MaxNs: 300}, // mean below min
			}},
		},
	}

	suspect := Apply(r)
	assert.Equal(t, 1, suspect)

	ops := r.Datasets["wide"].Operations
	assert.False(t, ops["deserialize"].Suspect)
	assert.InDelta(t, 1000.0, ops["deserialize"].ThroughputOpsPerSec, 0.01)

	// The broken entry is flagged, not dropped, and still gets a
	// recomputed throughput.
	assert.True(t, ops["serialize"].Suspect)
	assert.InDelta(t, 1e7, ops["serialize"].ThroughputOpsPerSec, 0.01)
}
