package aggregate

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"aasbench/internal/report"
)

// buildServerEntry ingests one server result directory. The
// conformance summary is the primary marker; k6 load summaries and
// env.json are attached verbatim for the dashboard. Returns false when
// the directory holds nothing usable.
func (p *Pipeline) buildServerEntry(dir, id string, names map[string]string) (ServerEntry, bool) {
	entry := ServerEntry{ID: id, Name: displayName(names, id, ""), FailureState: report.FailureOK}
	entry.Env = readRawJSON(filepath.Join(dir, "env.json"))

	usable := entry.Env != nil

	confPath := filepath.Join(dir, "conformance_summary.json")
	if data, err := os.ReadFile(confPath); err == nil {
		usable = true
		var conf ConformanceSummary
		if err := json.Unmarshal(data, &conf); err != nil {
			entry.FailureState = report.FailureParse
			entry.Diagnostics = append(entry.Diagnostics, fmt.Sprintf("conformance_summary.json malformed: %v", err))
		} else {
			entry.Conformance = &conf
			if conf.FailureState != "" && conf.FailureState != report.FailureOK {
				entry.FailureState = conf.FailureState
			}
		}
	}

	scenarios := readRawJSON(filepath.Join(dir, fmt.Sprintf("k6_summary_%s.json", id)))
	crud := readRawJSON(filepath.Join(dir, fmt.Sprintf("k6_crud_%s.json", id)))
	if scenarios != nil || crud != nil {
		usable = true
		entry.Benchmarks = &ServerBenchmarks{Scenarios: scenarios, CRUD: crud}
	}

	return entry, usable
}
