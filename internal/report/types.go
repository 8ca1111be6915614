package report

// Operation tracks. Every measurement belongs to exactly one track.
const (
	TrackCore       = "core"
	TrackCapability = "capability"
	TrackXML        = "xml"
	TrackAASX       = "aasx"
	TrackValidation = "validation"
)

// Failure states carried alongside every measurement so consumers can
// distinguish "slower" from "broken".
const (
	FailureOK        = "ok"
	FailureExecution = "execution_failed"
	FailureParse     = "parse_failed"
	FailureChecks    = "checks_failed"
)

// DefaultMeasurementSemantics is assumed when a legacy report does not
// state how its timings were measured.
const DefaultMeasurementSemantics = "mean_ns_per_operation"

// CanonicalSchemaVersion is the schema version normalized reports carry.
const CanonicalSchemaVersion = 2

// CoreDatasets and CoreOperations define the strict leaderboard tier:
// an implementation must cover the full cross product with ok
// measurements to be core-track eligible.
var CoreDatasets = []string{"wide", "deep", "mixed"}

var CoreOperations = []string{"deserialize", "validate", "traverse", "update", "serialize"}

// CanonicalOperationIDs is the closed set of operation identifiers the
// pipeline knows about. Unknown names are lower-cased and passed
// through, but they never join the core track.
var CanonicalOperationIDs = []string{
	"deserialize",
	"validate",
	"traverse",
	"update",
	"serialize",
	"deserialize_xml",
	"serialize_xml",
	"aasx_extract",
	"aasx_repackage",
}

// Memory holds per-operation memory metrics. Schema v1 adapters emit
// only the first three fields; v2 added the heap/GC counters.
type Memory struct {
	PeakRSSBytes    *int64   `json:"peak_rss_bytes"`
	AllocBytesPerOp *int64   `json:"alloc_bytes_per_op"`
	AllocCountPerOp *int64   `json:"alloc_count_per_op"`
	HeapUsedBytes   *int64   `json:"heap_used_bytes,omitempty"`
	GCPauseMs       *float64 `json:"gc_pause_ms,omitempty"`
	GCCount         *int64   `json:"gc_count,omitempty"`
	TracedPeakBytes *int64   `json:"traced_peak_bytes,omitempty"`
}

// RawReport is one adapter's submission exactly as decoded from
// report.json. Optional fields are pointers so the normalizer can tell
// "absent" from "zero" across schema versions.
type RawReport struct {
	SchemaVersion int                   `json:"schema_version"`
	SDKID         string                `json:"sdk_id"`
	Metadata      map[string]string     `json:"metadata"`
	Datasets      map[string]RawDataset `json:"datasets"`
}

// RawDataset is one dataset block of a raw report.
type RawDataset struct {
	FileSizeBytes *int64                  `json:"file_size_bytes"`
	ElementCount  *int64                  `json:"element_count"`
	Operations    map[string]RawOperation `json:"operations"`
}

// RawOperation is one operation measurement as emitted by an adapter.
// Schema v1 reports lack the identity and confidence fields entirely.
type RawOperation struct {
	OperationID          *string  `json:"operation_id"`
	OperationTrack       *string  `json:"operation_track"`
	SampleCount          *int64   `json:"sample_count"`
	MeasurementSemantics *string  `json:"measurement_semantics"`
	FailureState         *string  `json:"failure_state"`
	ReducedConfidence    bool     `json:"reduced_confidence,omitempty"`
	Iterations           int64    `json:"iterations"`
	MeanNs               float64  `json:"mean_ns"`
	MedianNs             float64  `json:"median_ns"`
	StddevNs             float64  `json:"stddev_ns"`
	MinNs                float64  `json:"min_ns"`
	MaxNs                float64  `json:"max_ns"`
	P75Ns                *float64 `json:"p75_ns"`
	P99Ns                *float64 `json:"p99_ns"`
	ThroughputOpsPerSec  float64  `json:"throughput_ops_per_sec"`
	Memory               Memory   `json:"memory"`
}

// Report is the canonical, fully populated form every raw report is
// migrated into. Only canonical reports flow through the rest of the
// pipeline.
type Report struct {
	SchemaVersion int                `json:"schema_version"`
	SDKID         string             `json:"sdk_id"`
	Metadata      map[string]string  `json:"metadata"`
	Datasets      map[string]Dataset `json:"datasets"`
}

// Dataset is one dataset block of a canonical report.
type Dataset struct {
	FileSizeBytes *int64                          `json:"file_size_bytes"`
	ElementCount  *int64                          `json:"element_count"`
	Operations    map[string]OperationMeasurement `json:"operations"`
}

// OperationMeasurement is one canonical operation entry. Every field is
// populated after normalization.
type OperationMeasurement struct {
	OperationID          string   `json:"operation_id"`
	OperationTrack       string   `json:"operation_track"`
	SampleCount          int64    `json:"sample_count"`
	MeasurementSemantics string   `json:"measurement_semantics"`
	FailureState         string   `json:"failure_state"`
	ReducedConfidence    bool     `json:"reduced_confidence,omitempty"`
	Suspect              bool     `json:"measurement_semantics_suspect,omitempty"`
	Iterations           int64    `json:"iterations"`
	MeanNs               float64  `json:"mean_ns"`
	MedianNs             float64  `json:"median_ns"`
	StddevNs             float64  `json:"stddev_ns"`
	MinNs                float64  `json:"min_ns"`
	MaxNs                float64  `json:"max_ns"`
	P75Ns                *float64 `json:"p75_ns"`
	P99Ns                *float64 `json:"p99_ns"`
	ThroughputOpsPerSec  float64  `json:"throughput_ops_per_sec"`
	Memory               Memory   `json:"memory"`
}

// EffectiveSampleCount returns the count the regression detector should
// feed into significance tests. Legacy entries that fell back to
// iterations keep their reduced-confidence marker.
func (m OperationMeasurement) EffectiveSampleCount() int64 {
	return m.SampleCount
}

// IsCoreDataset reports whether name is one of the strict-tier datasets.
func IsCoreDataset(name string) bool {
	for _, d := range CoreDatasets {
		if d == name {
			return true
		}
	}
	return false
}

// IsCoreOperation reports whether id is one of the five core operations.
func IsCoreOperation(id string) bool {
	for _, op := range CoreOperations {
		if op == id {
			return true
		}
	}
	return false
}
