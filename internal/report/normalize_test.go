package report

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalOperationID(t *testing.T) {
	cases := map[string]string{
		"deserialize":     "deserialize",
		"deserializeXml":  "deserialize_xml",
		"DeserializeXML":  "deserialize_xml",
		"deserializexml":  "deserialize_xml",
		"deserialize_xml": "deserialize_xml",
		"serializeXml":    "serialize_xml",
		"SERIALIZEXML":    "serialize_xml",
		"aasxExtract":     "aasx_extract",
		"AasxRepackage":   "aasx_repackage",
		"aasx-repackage":  "aasx_repackage",
		// Unrecognized names are snake_cased and passed through.
		"roundTrip":  "round_trip",
		"Traverse":   "traverse",
		"my-op":      "my_op",
		"parseJson5": "parse_json5",
	}
	for input, want := range cases {
		assert.Equal(t, want, CanonicalOperationID(input), "input %q", input)
	}
}

func TestCanonicalOperationIDIdempotent(t *testing.T) {
	for _, id := range CanonicalOperationIDs {
		assert.Equal(t, id, CanonicalOperationID(id))
	}
}

func TestNormalizeFillsDefaults(t *testing.T) {
	raw := &RawReport{
		SchemaVersion: 1,
		SDKID:         "aas-core3-python",
		Datasets: map[string]RawDataset{
			"wide": {
				Operations: map[string]RawOperation{
					"deserializeXml": {
						Iterations: 10,
						MeanNs:     100,
						StddevNs:   10,
					},
				},
			},
		},
	}

	norm, err := Normalize(raw, "")
	require.NoError(t, err)

	ops := norm.Datasets["wide"].Operations
	require.Contains(t, ops, "deserialize_xml")

	m := ops["deserialize_xml"]
	assert.Equal(t, "deserialize_xml", m.OperationID)
	assert.Equal(t, TrackXML, m.OperationTrack)
	assert.Equal(t, int64(10), m.SampleCount, "sample_count falls back to iterations")
	assert.True(t, m.ReducedConfidence)
	assert.Equal(t, DefaultMeasurementSemantics, m.MeasurementSemantics)
	assert.Equal(t, FailureOK, m.FailureState)
	assert.Equal(t, CanonicalSchemaVersion, norm.SchemaVersion)
}

func TestNormalizeKeepsExplicitFields(t *testing.T) {
	track := TrackCapability
	samples := int64(25)
	state := FailureChecks
	semantics := "median_ns_per_operation"

	raw := &RawReport{
		SchemaVersion: 2,
		SDKID:         "basyx-rust",
		Datasets: map[string]RawDataset{
			"wide": {
				Operations: map[string]RawOperation{
					"deserialize": {
						OperationTrack:       &track,
						SampleCount:          &samples,
						MeasurementSemantics: &semantics,
						FailureState:         &state,
						Iterations:           1000,
						MeanNs:               5000,
					},
				},
			},
		},
	}

	norm, err := Normalize(raw, "")
	require.NoError(t, err)

	m := norm.Datasets["wide"].Operations["deserialize"]
	assert.Equal(t, TrackCapability, m.OperationTrack)
	assert.Equal(t, int64(25), m.SampleCount)
	assert.False(t, m.ReducedConfidence)
	assert.Equal(t, semantics, m.MeasurementSemantics)
	assert.Equal(t, FailureChecks, m.FailureState)
}

func TestNormalizeWrapperStateOverridesDefault(t *testing.T) {
	ok := FailureOK
	raw := &RawReport{
		SDKID: "aas-core3-java",
		Datasets: map[string]RawDataset{
			"deep": {
				Operations: map[string]RawOperation{
					"serialize": {Iterations: 5, MeanNs: 10},
					"traverse":  {Iterations: 5, MeanNs: 10, FailureState: &ok},
				},
			},
		},
	}

	norm, err := Normalize(raw, FailureChecks)
	require.NoError(t, err)

	// Entries without their own state inherit the wrapper's verdict;
	// entries that state ok explicitly keep it.
	assert.Equal(t, FailureChecks, norm.Datasets["deep"].Operations["serialize"].FailureState)
	assert.Equal(t, FailureOK, norm.Datasets["deep"].Operations["traverse"].FailureState)
}

func TestNormalizeMissingIdentityFields(t *testing.T) {
	var schemaErr *SchemaError

	_, err := Normalize(&RawReport{Datasets: map[string]RawDataset{"wide": {}}}, "")
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, "sdk_id", schemaErr.Field)

	_, err = Normalize(&RawReport{SDKID: "x"}, "")
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, "datasets", schemaErr.Field)
}

func TestNormalizeIdempotent(t *testing.T) {
	raw := &RawReport{
		SchemaVersion: 1,
		SDKID:         "aas-core3-golang",
		Metadata:      map[string]string{"language": "go"},
		Datasets: map[string]RawDataset{
			"mixed": {
				Operations: map[string]RawOperation{
					"aasxExtract": {Iterations: 7, MeanNs: 42, MinNs: 40, MaxNs: 45},
				},
			},
		},
	}

	once, err := Normalize(raw, "")
	require.NoError(t, err)

	// Round-trip the canonical report through JSON and normalize again.
	data, err := json.Marshal(once)
	require.NoError(t, err)
	var reRaw RawReport
	require.NoError(t, json.Unmarshal(data, &reRaw))

	twice, err := Normalize(&reRaw, "")
	require.NoError(t, err)
	assert.Equal(t, once, twice)
}
