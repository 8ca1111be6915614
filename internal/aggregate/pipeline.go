// Package aggregate drives the batch pipeline: it walks a results
// directory of per-implementation artifacts, normalizes and classifies
// each report, runs regression detection against the persisted
// baseline, and merges everything into one published artifact.
package aggregate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"aasbench/internal/baseline"
	"aasbench/internal/regression"
	"aasbench/internal/report"
	"aasbench/internal/stats"
	"aasbench/internal/telemetry"
)

// Options configures one aggregation run.
type Options struct {
	ResultsDir    string
	KnownSDKsPath string
	// Scheduled marks a validated, scheduled run: the only kind allowed
	// to promote its results to the baseline. Ad hoc and smoke runs
	// compare but never write.
	Scheduled      bool
	RunID          string
	SourceRevision string
	Runner         string
	Detection      regression.Config
}

// Pipeline is the aggregation driver. The baseline store may be nil,
// in which case the run is aggregation-only.
type Pipeline struct {
	opts    Options
	store   baseline.Store
	metrics *telemetry.Metrics
}

// New builds a pipeline. metrics may be nil.
func New(opts Options, store baseline.Store, metrics *telemetry.Metrics) *Pipeline {
	if metrics == nil {
		metrics = telemetry.NewMetrics()
	}
	return &Pipeline{opts: opts, store: store, metrics: metrics}
}

// Run executes the whole pipeline. A returned error is systemic (no
// artifact could be produced at all); per-implementation failures are
// recorded inside the Result instead.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	defer func() { p.metrics.RunDuration.Observe(time.Since(start).Seconds()) }()

	entries, err := os.ReadDir(p.opts.ResultsDir)
	if err != nil {
		return nil, fmt.Errorf("results directory unreadable: %w", err)
	}

	names := p.loadNames()

	res := &Result{
		GeneratedAt: time.Now().UTC(),
		Provenance: Provenance{
			RunID:          p.opts.RunID,
			SourceRevision: p.opts.SourceRevision,
			Runner:         p.opts.Runner,
		},
		SDKBenchmarks:    []SDKEntry{},
		ServerBenchmarks: []ServerEntry{},
		Regressions:      []regression.Comparison{},
	}

	// Per-report normalization and classification are independent and
	// side effect free; one task per report. The group's derived context
	// is canceled once Wait returns, so the baseline stage below keeps
	// using the caller's ctx.
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dir := filepath.Join(p.opts.ResultsDir, entry.Name())
		id := entry.Name()
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if fileExists(filepath.Join(dir, "report.json")) {
				sdk := p.buildSDKEntry(dir, id, names)
				mu.Lock()
				res.SDKBenchmarks = append(res.SDKBenchmarks, sdk)
				mu.Unlock()
				p.metrics.ReportsProcessed.WithLabelValues("sdk").Inc()
				if sdk.FailureState != report.FailureOK {
					p.metrics.ReportFailures.WithLabelValues(sdk.FailureState).Inc()
				}
				return nil
			}
			// Everything else is treated as a server-tier directory;
			// conformance_summary.json is the primary marker, env/k6
			// data the fallback.
			srv, ok := p.buildServerEntry(dir, id, names)
			if !ok {
				mu.Lock()
				res.Diagnostics = append(res.Diagnostics,
					fmt.Sprintf("directory %q contains no usable result documents", id))
				mu.Unlock()
				return nil
			}
			mu.Lock()
			res.ServerBenchmarks = append(res.ServerBenchmarks, srv)
			mu.Unlock()
			p.metrics.ReportsProcessed.WithLabelValues("server").Inc()
			if srv.FailureState != report.FailureOK {
				p.metrics.ReportFailures.WithLabelValues(srv.FailureState).Inc()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(res.SDKBenchmarks, func(i, j int) bool { return res.SDKBenchmarks[i].ID < res.SDKBenchmarks[j].ID })
	sort.Slice(res.ServerBenchmarks, func(i, j int) bool { return res.ServerBenchmarks[i].ID < res.ServerBenchmarks[j].ID })
	sort.Strings(res.Diagnostics)

	if p.store != nil {
		if err := p.compareAndPromote(ctx, res); err != nil {
			return nil, err
		}
	}
	return res, nil
}

// loadNames reads the known-sdks registry; a missing or malformed file
// just means ids double as display names.
func (p *Pipeline) loadNames() map[string]string {
	if p.opts.KnownSDKsPath == "" {
		return map[string]string{}
	}
	data, err := os.ReadFile(p.opts.KnownSDKsPath)
	if err != nil {
		return map[string]string{}
	}
	var known KnownImplementations
	if err := json.Unmarshal(data, &known); err != nil {
		slog.Warn("known-sdks registry is malformed; using ids as names",
			"path", p.opts.KnownSDKsPath, "error", err)
		return map[string]string{}
	}
	return known.NameIndex()
}

func displayName(names map[string]string, id, fallback string) string {
	if name, ok := names[id]; ok && name != "" {
		return name
	}
	if fallback != "" {
		return fallback
	}
	return id
}

// buildSDKEntry ingests one SDK result directory. Any failure is
// recorded on the entry; it never propagates to the rest of the batch.
func (p *Pipeline) buildSDKEntry(dir, id string, names map[string]string) SDKEntry {
	entry := SDKEntry{ID: id, Name: displayName(names, id, ""), FailureState: report.FailureOK}
	entry.Env = readRawJSON(filepath.Join(dir, "env.json"))

	path := filepath.Join(dir, "report.json")
	data, err := os.ReadFile(path)
	if err != nil || len(data) == 0 {
		entry.FailureState = report.FailureExecution
		entry.Diagnostics = append(entry.Diagnostics, "report.json missing or empty")
		return entry
	}

	var raw report.RawReport
	if err := json.Unmarshal(data, &raw); err != nil {
		entry.FailureState = report.FailureParse
		entry.Diagnostics = append(entry.Diagnostics, fmt.Sprintf("report.json malformed: %v", err))
		return entry
	}

	// The validator gates acceptance; rejection isolates this one
	// implementation exactly like an execution failure would.
	if problems := report.ValidateRaw(&raw); len(problems) > 0 {
		entry.FailureState = report.FailureChecks
		entry.Diagnostics = append(entry.Diagnostics, problems...)
		return entry
	}

	if raw.SDKID == "" {
		raw.SDKID = id
	}
	norm, err := report.Normalize(&raw, "")
	if err != nil {
		var schemaErr *report.SchemaError
		if errors.As(err, &schemaErr) {
			entry.FailureState = report.FailureChecks
			entry.Diagnostics = append(entry.Diagnostics, schemaErr.Error())
			return entry
		}
		entry.FailureState = report.FailureParse
		entry.Diagnostics = append(entry.Diagnostics, err.Error())
		return entry
	}

	if suspect := stats.Apply(norm); suspect > 0 {
		entry.Diagnostics = append(entry.Diagnostics,
			fmt.Sprintf("%d entr(ies) flagged measurement_semantics_suspect", suspect))
	}

	entry.ID = norm.SDKID
	entry.Name = displayName(names, norm.SDKID, raw.Metadata["name"])
	entry.Pipeline = norm
	entry.Capabilities = report.Capabilities(norm)
	entry.Eligibility = report.ResolveEligibility(norm)
	return entry
}

// compareAndPromote runs regression detection and, on scheduled runs,
// promotes the current statistics to be the new baseline.
func (p *Pipeline) compareAndPromote(ctx context.Context, res *Result) error {
	snap, err := p.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("baseline load: %w", err)
	}

	current := CollectSamples(res)
	detection := regression.Detect(current, snap.Entries, p.opts.Detection)
	for _, c := range detection.Comparisons {
		p.metrics.Verdicts.WithLabelValues(c.Verdict).Inc()
	}
	res.Regressions = detection.Comparisons
	res.NewEntries = detection.NewEntries
	res.RemovedEntries = detection.Removed

	if !p.opts.Scheduled {
		return nil
	}
	// A run with any failed implementation must not become the new
	// comparison point: Replace swaps the whole baseline, and the failed
	// implementation contributes no samples, so promoting would erase
	// its existing rows.
	if n := res.FailureCount(); n > 0 {
		slog.Warn("baseline promotion skipped: run has failed implementations", "failures", n)
		return nil
	}

	err = p.store.Replace(ctx, p.opts.RunID, current, snap.Token)
	var conflict *baseline.ConflictError
	switch {
	case err == nil:
		p.metrics.BaselineWrites.WithLabelValues("ok").Inc()
	case errors.As(err, &conflict):
		// The run's own output stands; only the promotion is refused.
		p.metrics.BaselineWrites.WithLabelValues("conflict").Inc()
		res.BaselineConflict = true
		res.Diagnostics = append(res.Diagnostics, conflict.Error())
		slog.Error("baseline write refused", "error", conflict)
	default:
		p.metrics.BaselineWrites.WithLabelValues("error").Inc()
		return fmt.Errorf("baseline write: %w", err)
	}
	return nil
}

// CollectSamples extracts the comparable statistics of every ok SDK
// measurement in the artifact.
func CollectSamples(res *Result) map[regression.Key]regression.Sample {
	out := map[regression.Key]regression.Sample{}
	for _, sdk := range res.SDKBenchmarks {
		if sdk.Pipeline == nil {
			continue
		}
		for dsName, ds := range sdk.Pipeline.Datasets {
			for opID, m := range ds.Operations {
				if m.FailureState != report.FailureOK {
					continue
				}
				key := regression.Key{Implementation: sdk.ID, Dataset: dsName, OperationID: opID}
				out[key] = regression.Sample{
					MeanNs:            m.MeanNs,
					StddevNs:          m.StddevNs,
					SampleCount:       m.EffectiveSampleCount(),
					ReducedConfidence: m.ReducedConfidence,
				}
			}
		}
	}
	return out
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func readRawJSON(path string) json.RawMessage {
	data, err := os.ReadFile(path)
	if err != nil || len(data) == 0 || !json.Valid(data) {
		return nil
	}
	return json.RawMessage(data)
}
