package report

import "sort"

// MissingPair names one (dataset, operation) combination an
// implementation would need for core-track eligibility.
type MissingPair struct {
	Dataset   string `json:"dataset"`
	Operation string `json:"operation"`
}

// Eligibility is the core-track verdict for one implementation.
// Ineligible implementations keep their entries in capability views;
// they are never hidden.
type Eligibility struct {
	CoreTrackEligible bool          `json:"core_track_eligible"`
	Missing           []MissingPair `json:"missing,omitempty"`
}

// ResolveEligibility checks one normalized report against the required
// set {wide,deep,mixed} × the five core operations. A pair counts only
// when it is present, classified core, and measured with
// failure_state=ok.
func ResolveEligibility(r *Report) Eligibility {
	var missing []MissingPair
	for _, dsName := range CoreDatasets {
		ds, ok := r.Datasets[dsName]
		for _, op := range CoreOperations {
			if !ok {
				missing = append(missing, MissingPair{Dataset: dsName, Operation: op})
				continue
			}
			m, present := ds.Operations[op]
			if !present || m.OperationTrack != TrackCore || m.FailureState != FailureOK {
				missing = append(missing, MissingPair{Dataset: dsName, Operation: op})
			}
		}
	}
	sort.Slice(missing, func(i, j int) bool {
		if missing[i].Dataset != missing[j].Dataset {
			return missing[i].Dataset < missing[j].Dataset
		}
		return missing[i].Operation < missing[j].Operation
	})
	return Eligibility{CoreTrackEligible: len(missing) == 0, Missing: missing}
}

// Capabilities reports which tracks an implementation has at least one
// ok measurement in. The dashboard uses this to build capability views
// for implementations that miss core eligibility.
func Capabilities(r *Report) map[string]bool {
	caps := map[string]bool{
		TrackCore:       false,
		TrackCapability: false,
		TrackXML:        false,
		TrackAASX:       false,
		TrackValidation: false,
	}
	for _, ds := range r.Datasets {
		for _, m := range ds.Operations {
			if m.FailureState == FailureOK {
				caps[m.OperationTrack] = true
			}
		}
	}
	return caps
}
