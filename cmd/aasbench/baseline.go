package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"aasbench/internal/aggregate"
	"aasbench/internal/baseline"
	"aasbench/internal/config"
	"aasbench/internal/regression"

	"github.com/spf13/cobra"
)

var (
	promoteFrom  string
	promoteRunID string
	promoteForce bool
)

var baselineCmd = &cobra.Command{
	Use:   "baseline",
	Short: "Inspect and manage the persisted regression baseline",
}

var baselineShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the current baseline snapshot",
	RunE:  runBaselineShow,
}

var baselinePromoteCmd = &cobra.Command{
	Use:   "promote",
	Short: "Promote a published artifact to be the new baseline",
	Long: `Replaces the baseline with the statistics of a previously published
artifact. The write uses the store's concurrency token; a concurrent
promotion since the last load is refused unless --force is given.`,
	RunE: runBaselinePromote,
}

func init() {
	rootCmd.AddCommand(baselineCmd)
	baselineCmd.AddCommand(baselineShowCmd)
	baselineCmd.AddCommand(baselinePromoteCmd)

	baselinePromoteCmd.Flags().StringVar(&promoteFrom, "from", "data/results.json", "Published artifact to promote")
	baselinePromoteCmd.Flags().StringVar(&promoteRunID, "run-id", "", "Run identifier to record (default: the artifact's run id)")
	baselinePromoteCmd.Flags().BoolVar(&promoteForce, "force", false, "Overwrite even if the baseline changed concurrently")
}

func runBaselineShow(cmd *cobra.Command, args []string) error {
	settings := config.Current()
	store, err := openStore(settings.BaselinePath, settings.BaselinePostgresDSN)
	if err != nil {
		return fmt.Errorf("failed to open baseline store: %w", err)
	}
	defer store.Close()

	snap, err := store.Load(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to load baseline: %w", err)
	}

	if len(snap.Entries) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "Baseline is empty.")
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Baseline run: %s (%d entries)\n\n", snap.RunID, len(snap.Entries))

	keys := make([]regression.Key, 0, len(snap.Entries))
	for k := range snap.Entries {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if a.Implementation != b.Implementation {
			return a.Implementation < b.Implementation
		}
		if a.Dataset != b.Dataset {
			return a.Dataset < b.Dataset
		}
		return a.OperationID < b.OperationID
	})

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "IMPLEMENTATION\tDATASET\tOPERATION\tMEAN (ns)\tSTDDEV (ns)\tSAMPLES")
	for _, k := range keys {
		s := snap.Entries[k]
		fmt.Fprintf(w, "%s\t%s\t%s\t%.0f\t%.0f\t%d\n",
			k.Implementation, k.Dataset, k.OperationID, s.MeanNs, s.StddevNs, s.SampleCount)
	}
	return w.Flush()
}

func runBaselinePromote(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(promoteFrom)
	if err != nil {
		return fmt.Errorf("failed to read artifact %s: %w", promoteFrom, err)
	}
	var res aggregate.Result
	if err := json.Unmarshal(data, &res); err != nil {
		return fmt.Errorf("artifact %s is malformed: %w", promoteFrom, err)
	}

	samples := aggregate.CollectSamples(&res)
	if len(samples) == 0 {
		return fmt.Errorf("artifact %s contains no promotable measurements", promoteFrom)
	}

	runID := promoteRunID
	if runID == "" {
		runID = res.Provenance.RunID
	}

	settings := config.Current()
	store, err := openStore(settings.BaselinePath, settings.BaselinePostgresDSN)
	if err != nil {
		return fmt.Errorf("failed to open baseline store: %w", err)
	}
	defer store.Close()

	snap, err := store.Load(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to load baseline: %w", err)
	}

	err = store.Replace(cmd.Context(), runID, samples, snap.Token)
	var conflict *baseline.ConflictError
	if errors.As(err, &conflict) && promoteForce {
		// Reload the moved token and take the write anyway.
		if snap, err = store.Load(cmd.Context()); err != nil {
			return fmt.Errorf("failed to reload baseline: %w", err)
		}
		err = store.Replace(cmd.Context(), runID, samples, snap.Token)
	}
	if err != nil {
		return fmt.Errorf("baseline promotion refused: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Baseline promoted: run %s, %d entries\n", runID, len(samples))
	return nil
}
