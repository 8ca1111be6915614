package main

import (
	"fmt"
	"log/slog"
	"time"

	"aasbench/internal/aggregate"
	"aasbench/internal/baseline"
	"aasbench/internal/config"
	"aasbench/internal/notify"
	"aasbench/internal/regression"
	"aasbench/internal/telemetry"
	"aasbench/internal/ui"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var (
	aggResultsDir     string
	aggOutput         string
	aggScheduled      bool
	aggNoBaseline     bool
	aggRunID          string
	aggSourceRevision string
	aggRunner         string
)

// openStore allows mocking in tests.
var openStore = func(path, postgresDSN string) (baseline.Store, error) {
	if postgresDSN != "" {
		return baseline.NewPostgresStore(postgresDSN)
	}
	return baseline.NewSQLiteStore(path)
}

// newNotifier allows mocking in tests.
var newNotifier = func(settings config.Settings) notify.Notifier {
	if settings.SlackWebhookURL == "" {
		return notify.Nop{}
	}
	return notify.NewSlackNotifier(settings.SlackWebhookURL)
}

var aggregateCmd = &cobra.Command{
	Use:   "aggregate",
	Short: "Merge per-implementation results into one published artifact",
	Long: `Walks a results directory of per-implementation artifacts, normalizes
and classifies every benchmark report, compares the run against the
persisted baseline, and writes the consolidated result document.

A failing implementation never aborts the batch: its entry is recorded
with a failure_state and the run exits with code 2. Only systemic
failures (unreadable results directory, unwritable output) exit 1.
The baseline is promoted only on --scheduled runs.`,
	RunE: runAggregate,
}

func init() {
	rootCmd.AddCommand(aggregateCmd)

	aggregateCmd.Flags().StringVar(&aggResultsDir, "results-dir", "results", "Directory of per-implementation result directories")
	aggregateCmd.Flags().StringVar(&aggOutput, "output", "data/results.json", "Path of the published artifact")
	aggregateCmd.Flags().BoolVar(&aggScheduled, "scheduled", false, "Mark this run as scheduled (allowed to promote the baseline)")
	aggregateCmd.Flags().BoolVar(&aggNoBaseline, "no-baseline", false, "Skip baseline comparison and promotion entirely")
	aggregateCmd.Flags().StringVar(&aggRunID, "run-id", "", "Run identifier recorded in the artifact (default: UTC timestamp)")
	aggregateCmd.Flags().StringVar(&aggSourceRevision, "source-revision", "", "Source revision recorded in the artifact provenance")
	aggregateCmd.Flags().StringVar(&aggRunner, "runner", "", "Runner fingerprint recorded in the artifact provenance")

	aggregateCmd.Flags().Int64("min-samples", 0, "Minimum sample count for a statistical verdict")
	aggregateCmd.Flags().Float64("threshold", 0, "Practical significance threshold in percent")
	aggregateCmd.Flags().String("known-sdks", "", "Path to the known implementation registry")
	aggregateCmd.Flags().String("metrics-addr", "", "Address for the Prometheus metrics endpoint (empty disables it)")

	viper.BindPFlag("min_sample_count", aggregateCmd.Flags().Lookup("min-samples"))
	viper.BindPFlag("regression_threshold_pct", aggregateCmd.Flags().Lookup("threshold"))
	viper.BindPFlag("known_sdks", aggregateCmd.Flags().Lookup("known-sdks"))
	viper.BindPFlag("metrics_addr", aggregateCmd.Flags().Lookup("metrics-addr"))
}

func runAggregate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	settings := config.Current()

	metrics := telemetry.NewMetrics()
	if settings.MetricsAddr != "" {
		go func() {
			if err := metrics.Serve(settings.MetricsAddr); err != nil {
				slog.Warn("metrics endpoint stopped", "addr", settings.MetricsAddr, "error", err)
			}
		}()
	}

	var store baseline.Store
	if !aggNoBaseline {
		var err error
		store, err = openStore(settings.BaselinePath, settings.BaselinePostgresDSN)
		if err != nil {
			return fmt.Errorf("failed to open baseline store: %w", err)
		}
		defer store.Close()
	}

	runID := aggRunID
	if runID == "" {
		runID = time.Now().UTC().Format("20060102T150405Z")
	}

	pipeline := aggregate.New(aggregate.Options{
		ResultsDir:     aggResultsDir,
		KnownSDKsPath:  settings.KnownSDKsPath,
		Scheduled:      aggScheduled,
		RunID:          runID,
		SourceRevision: aggSourceRevision,
		Runner:         aggRunner,
		Detection:      detectionConfig(cmd.Flags(), settings),
	}, store, metrics)

	res, err := pipeline.Run(ctx)
	if err != nil {
		return err
	}

	if err := aggregate.WriteArtifact(aggOutput, res); err != nil {
		return err
	}
	slog.Info("artifact published",
		"path", aggOutput,
		"sdk_entries", len(res.SDKBenchmarks),
		"server_entries", len(res.ServerBenchmarks),
		"failures", res.FailureCount())

	comparison := regression.Result{
		Comparisons: res.Regressions,
		NewEntries:  res.NewEntries,
		Removed:     res.RemovedEntries,
	}
	ui.RenderRunSummary(cmd.OutOrStdout(),
		len(res.SDKBenchmarks), len(res.ServerBenchmarks), res.FailureCount(), comparison)

	if regs := comparison.Regressions(); len(regs) > 0 {
		msg := notify.RegressionMessage(runID, regs)
		if err := newNotifier(settings).Notify(ctx, msg); err != nil {
			slog.Warn("regression notification failed", "error", err)
		}
	}

	if res.FailureCount() > 0 {
		exit(2)
	}
	return nil
}

// detectionConfig derives the detector settings from configuration and
// the bound flags. An explicit zero (--threshold 0, --min-samples 0)
// disables that gate instead of falling back to the default.
func detectionConfig(flags *pflag.FlagSet, settings config.Settings) regression.Config {
	cfg := regression.DefaultConfig()
	if settings.MinSampleCount > 0 || flags.Changed("min-samples") {
		cfg.MinSampleCount = settings.MinSampleCount
	}
	if settings.RegressionThresholdPct > 0 || flags.Changed("threshold") {
		cfg.MinDeltaPct = settings.RegressionThresholdPct
	}
	return cfg
}
