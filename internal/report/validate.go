package report

import "fmt"

// ValidateRaw checks report integrity before the report is accepted
// into a batch. A non-empty problem list is treated the same as an
// execution failure for that one implementation.
//
// Structural checks apply to every schema version. The canonical-key
// and per-operation required-field checks only apply from schema
// version 2 on: v1 adapters emitted legacy alias keys and none of the
// v2 fields, and the normalizer canonicalizes and fills both.
func ValidateRaw(raw *RawReport) []string {
	var problems []string

	if len(raw.Datasets) == 0 {
		return []string{"report must contain at least one dataset"}
	}

	opCount := 0
	for dsName, ds := range raw.Datasets {
		if len(ds.Operations) == 0 {
			problems = append(problems, fmt.Sprintf("dataset %q has no operations", dsName))
			continue
		}
		for opKey, op := range ds.Operations {
			opCount++
			canonical := CanonicalOperationID(opKey)
			if raw.SchemaVersion >= 2 && opKey != canonical {
				problems = append(problems, fmt.Sprintf(
					"dataset %q contains non-canonical operation key %q (canonical: %q)",
					dsName, opKey, canonical))
			}
			if op.OperationID != nil && *op.OperationID != canonical {
				problems = append(problems, fmt.Sprintf(
					"dataset %q operation %q has mismatched operation_id=%q (expected %q)",
					dsName, opKey, *op.OperationID, canonical))
			}
			if raw.SchemaVersion >= 2 {
				problems = append(problems, missingRequiredFields(dsName, opKey, op)...)
			}
		}
	}

	if opCount == 0 {
		problems = append(problems, "report must contain at least one operation")
	}
	return problems
}

func missingRequiredFields(dsName, opKey string, op RawOperation) []string {
	var missing []string
	if op.OperationID == nil {
		missing = append(missing, "operation_id")
	}
	if op.OperationTrack == nil {
		missing = append(missing, "operation_track")
	}
	if op.SampleCount == nil {
		missing = append(missing, "sample_count")
	}
	if op.MeasurementSemantics == nil {
		missing = append(missing, "measurement_semantics")
	}
	if op.FailureState == nil {
		missing = append(missing, "failure_state")
	}
	if len(missing) == 0 {
		return nil
	}
	out := fmt.Sprintf("dataset %q operation %q missing required fields: ", dsName, opKey)
	for i, f := range missing {
		if i > 0 {
			out += ", "
		}
		out += f
	}
	return []string{out}
}
