package main

import (
	"fmt"
	"os"

	"aasbench/internal/config"
	"aasbench/internal/telemetry"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var exit = os.Exit
var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "aasbench",
	Short: "Benchmark observatory aggregation engine",
	Long: `aasbench consolidates per-implementation benchmark artifacts into one
published result document. It normalizes report schemas, classifies
operations into tracks, derives core-track eligibility, detects
regressions against a persisted baseline, and publishes the merged
artifact for the dashboard.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "\n=== CRITICAL ERROR: Command Execution Panic ===\n")
			fmt.Fprintf(os.Stderr, "Error: %v\n", r)
			exit(1)
		}
	}()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		fmt.Fprintln(os.Stderr, "Run 'aasbench --help' for usage.")
		exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./aasbench.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose/debug logging")
	rootCmd.PersistentFlags().String("baseline", "", "Baseline SQLite database path")
	rootCmd.PersistentFlags().String("postgres-dsn", "", "Baseline Postgres DSN (overrides --baseline)")

	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	viper.BindPFlag("baseline.path", rootCmd.PersistentFlags().Lookup("baseline"))
	viper.BindPFlag("baseline.postgres_dsn", rootCmd.PersistentFlags().Lookup("postgres-dsn"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	config.Load(cfgFile)

	settings := config.Current()
	telemetry.InitLogger(settings.Verbose, settings.LogFile)
}
