package report

import (
	"fmt"
	"regexp"
	"strings"
)

// SchemaError marks a report that cannot be identified at all. The
// pipeline drops such a report with a diagnostic; it never aborts the
// rest of the batch.
type SchemaError struct {
	SDKID string
	Field string
}

func (e *SchemaError) Error() string {
	id := e.SDKID
	if id == "" {
		id = "<unknown>"
	}
	return fmt.Sprintf("report %s: missing identity field %q", id, e.Field)
}

// denseAliases maps historical operation names, lower-cased with
// underscores and dashes stripped, to their canonical snake_case ids.
// This covers deserializeXml, DeserializeXML, aasxExtract and friends
// in any casing.
var denseAliases = map[string]string{
	"deserializexml": "deserialize_xml",
	"serializexml":   "serialize_xml",
	"aasxextract":    "aasx_extract",
	"aasxrepackage":  "aasx_repackage",
}

var camelBoundary = regexp.MustCompile(`([a-z0-9])([A-Z])`)

// CanonicalOperationID canonicalizes a raw operation name. Known legacy
// aliases map to their snake_case identifier; anything else is
// converted camelCase→snake_case, dashes become underscores, and the
// result is lower-cased and passed through unchanged.
func CanonicalOperationID(raw string) string {
	dense := strings.ToLower(strings.NewReplacer("_", "", "-", "").Replace(raw))
	if canonical, ok := denseAliases[dense]; ok {
		return canonical
	}
	snake := camelBoundary.ReplaceAllString(raw, "${1}_${2}")
	snake = strings.ReplaceAll(snake, "-", "_")
	return strings.ToLower(snake)
}

// Normalize migrates one raw report (schema version 1 or 2) into the
// canonical shape. wrapperState is the failure state the adapter runner
// observed for this implementation ("" when the adapter exited
// cleanly); it overrides the default for entries that do not state
// their own failure_state.
//
// Normalization is idempotent: feeding a canonical report back through
// yields the same record.
func Normalize(raw *RawReport, wrapperState string) (*Report, error) {
	if raw.SDKID == "" {
		return nil, &SchemaError{Field: "sdk_id"}
	}
	if len(raw.Datasets) == 0 {
		return nil, &SchemaError{SDKID: raw.SDKID, Field: "datasets"}
	}

	defaultState := FailureOK
	if wrapperState != "" {
		defaultState = wrapperState
	}

	out := &Report{
		SchemaVersion: CanonicalSchemaVersion,
		SDKID:         raw.SDKID,
		Metadata:      raw.Metadata,
		Datasets:      make(map[string]Dataset, len(raw.Datasets)),
	}
	if out.Metadata == nil {
		out.Metadata = map[string]string{}
	}

	for dsName, rawDS := range raw.Datasets {
		ds := Dataset{
			FileSizeBytes: rawDS.FileSizeBytes,
			ElementCount:  rawDS.ElementCount,
			Operations:    make(map[string]OperationMeasurement, len(rawDS.Operations)),
		}
		for opKey, rawOp := range rawDS.Operations {
			canonical := CanonicalOperationID(opKey)
			ds.Operations[canonical] = normalizeOperation(dsName, canonical, rawOp, defaultState)
		}
		out.Datasets[dsName] = ds
	}
	return out, nil
}

func normalizeOperation(dataset, canonical string, raw RawOperation, defaultState string) OperationMeasurement {
	m := OperationMeasurement{
		OperationID:          canonical,
		MeasurementSemantics: DefaultMeasurementSemantics,
		FailureState:         defaultState,
		ReducedConfidence:    raw.ReducedConfidence,
		Iterations:           raw.Iterations,
		MeanNs:               raw.MeanNs,
		MedianNs:             raw.MedianNs,
		StddevNs:             raw.StddevNs,
		MinNs:                raw.MinNs,
		MaxNs:                raw.MaxNs,
		P75Ns:                raw.P75Ns,
		P99Ns:                raw.P99Ns,
		ThroughputOpsPerSec:  raw.ThroughputOpsPerSec,
		Memory:               raw.Memory,
	}

	if raw.OperationTrack != nil && *raw.OperationTrack != "" {
		m.OperationTrack = *raw.OperationTrack
	} else {
		m.OperationTrack = Classify(dataset, canonical)
	}

	if raw.SampleCount != nil {
		m.SampleCount = *raw.SampleCount
	} else {
		// Legacy reports only carry iterations; the regression
		// detector treats the fallback with reduced confidence.
		m.SampleCount = raw.Iterations
		m.ReducedConfidence = true
	}

	if raw.MeasurementSemantics != nil && *raw.MeasurementSemantics != "" {
		m.MeasurementSemantics = *raw.MeasurementSemantics
	}
	if raw.FailureState != nil && *raw.FailureState != "" {
		m.FailureState = *raw.FailureState
	}
	return m
}
