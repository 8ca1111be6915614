package main

import (
	"encoding/json"
	"fmt"
	"os"

	"aasbench/internal/report"
	"aasbench/internal/ui"

	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <report.json>",
	Short: "Validate a benchmark report document",
	Long: `Checks a single benchmark report against the canonical schema:
well-formed JSON, canonical operation keys, and the required per-entry
fields of schema version 2. Exits 1 when the report is rejected.`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	path := args[0]
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	var raw report.RawReport
	if err := json.Unmarshal(data, &raw); err != nil {
		ui.RenderValidationProblems(cmd.OutOrStdout(), path,
			[]string{fmt.Sprintf("document is not valid JSON: %v", err)})
		exit(1)
		return nil
	}

	problems := report.ValidateRaw(&raw)
	ui.RenderValidationProblems(cmd.OutOrStdout(), path, problems)
	if len(problems) > 0 {
		exit(1)
	}
	return nil
}
