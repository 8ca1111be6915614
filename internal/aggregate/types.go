package aggregate

import (
	"encoding/json"
	"time"

	"aasbench/internal/regression"
	"aasbench/internal/report"
)

// SDKEntry is one library implementation in the published artifact.
// Failed implementations keep their entry with a failure_state so the
// dashboard can distinguish "slower" from "broken".
type SDKEntry struct {
	ID           string             `json:"id"`
	Name         string             `json:"name"`
	FailureState string             `json:"failure_state"`
	Env          json.RawMessage    `json:"env,omitempty"`
	Pipeline     *report.Report     `json:"pipeline,omitempty"`
	Capabilities map[string]bool    `json:"capabilities,omitempty"`
	Eligibility  report.Eligibility `json:"eligibility"`
	Diagnostics  []string           `json:"diagnostics,omitempty"`
}

// ConformanceSummary is the server-tier conformance result document.
type ConformanceSummary struct {
	Passed       int                      `json:"passed"`
	Failed       int                      `json:"failed"`
	Total        int                      `json:"total"`
	FailureState string                   `json:"failure_state,omitempty"`
	Profiles     map[string]ProfileResult `json:"profiles,omitempty"`
}

// ProfileResult is the per-profile breakdown of a conformance run.
type ProfileResult struct {
	Passed int `json:"passed"`
	Failed int `json:"failed"`
}

// ServerBenchmarks carries the load-test summary documents verbatim;
// the dashboard renders them, this engine only attaches them.
type ServerBenchmarks struct {
	Scenarios json.RawMessage `json:"scenarios,omitempty"`
	CRUD      json.RawMessage `json:"crud,omitempty"`
}

// ServerEntry is one network-service implementation in the artifact.
type ServerEntry struct {
	ID           string              `json:"id"`
	Name         string              `json:"name"`
	FailureState string              `json:"failure_state"`
	Env          json.RawMessage     `json:"env,omitempty"`
	Conformance  *ConformanceSummary `json:"conformance,omitempty"`
	Benchmarks   *ServerBenchmarks   `json:"benchmarks,omitempty"`
	Diagnostics  []string            `json:"diagnostics,omitempty"`
}

// Provenance identifies the run that produced an artifact.
type Provenance struct {
	RunID          string `json:"run_id"`
	SourceRevision string `json:"source_revision,omitempty"`
	Runner         string `json:"runner_fingerprint,omitempty"`
}

// Result is the consolidated artifact published for the dashboard.
type Result struct {
	GeneratedAt      time.Time               `json:"generated_at"`
	Provenance       Provenance              `json:"provenance"`
	SDKBenchmarks    []SDKEntry              `json:"sdk_benchmarks"`
	ServerBenchmarks []ServerEntry           `json:"server_benchmarks"`
	Regressions      []regression.Comparison `json:"regressions"`
	NewEntries       []regression.Key        `json:"new_entries,omitempty"`
	RemovedEntries   []regression.Key        `json:"removed_entries,omitempty"`
	BaselineConflict bool                    `json:"baseline_conflict,omitempty"`
	Diagnostics      []string                `json:"diagnostics,omitempty"`
}

// FailureCount reports how many implementations did not finish cleanly.
// The run's exit status reflects the worst failure observed even though
// the artifact itself is still published.
func (r *Result) FailureCount() int {
	n := 0
	for _, e := range r.SDKBenchmarks {
		if e.FailureState != report.FailureOK {
			n++
		}
	}
	for _, e := range r.ServerBenchmarks {
		if e.FailureState != report.FailureOK {
			n++
		}
	}
	return n
}

// KnownImplementations is the id→display-name registry consulted when
// building entries (known-sdks.json).
type KnownImplementations struct {
	SDKBenchmarks    []KnownImplementation `json:"sdk_benchmarks"`
	ServerBenchmarks []KnownImplementation `json:"server_benchmarks"`
}

// KnownImplementation is one registry row.
type KnownImplementation struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// NameIndex flattens the registry into an id→name lookup.
func (k KnownImplementations) NameIndex() map[string]string {
	names := map[string]string{}
	for _, e := range append(k.SDKBenchmarks, k.ServerBenchmarks...) {
		if e.ID != "" {
			names[e.ID] = e.Name
		}
	}
	return names
}
