package report

import "strings"

// ValidationDatasetPrefix marks datasets generated specifically to
// exercise validation rules (e.g. val_regex, val_cardinality).
const ValidationDatasetPrefix = "val_"

// Classify maps a (dataset, operation) pair to its track. It is a pure
// function: the normalizer uses it to fill missing operation_track
// fields and the eligibility resolver uses it to build the required
// core set. Rules are evaluated in order.
func Classify(dataset, operationID string) string {
	switch operationID {
	case "deserialize_xml", "serialize_xml":
		return TrackXML
	case "aasx_extract", "aasx_repackage":
		return TrackAASX
	}
	if strings.HasPrefix(dataset, ValidationDatasetPrefix) && operationID == "validate" {
		return TrackValidation
	}
	if IsCoreDataset(dataset) && IsCoreOperation(operationID) {
		return TrackCore
	}
	return TrackCapability
}
