package config

import (
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Settings is the typed view of the aggregator configuration.
type Settings struct {
	MinSampleCount         int64
	RegressionThresholdPct float64
	BaselinePath           string
	BaselinePostgresDSN    string
	KnownSDKsPath          string
	MetricsAddr            string
	SlackWebhookURL        string
	Verbose                bool
	LogFile                string
}

// Load initializes the configuration from file and environment
// variables. Flags bound by the CLI override both.
func Load(cfgFile string) {
	// explicit .env loading; a missing .env is fine
	_ = godotenv.Load()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName("aasbench")
	}

	viper.SetEnvPrefix("AASBENCH")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("min_sample_count", 5)
	viper.SetDefault("regression_threshold_pct", 10.0)
	viper.SetDefault("baseline.path", ".aasbench/baseline.db")
	viper.SetDefault("baseline.postgres_dsn", "")
	viper.SetDefault("known_sdks", "known-sdks.json")
	viper.SetDefault("metrics_addr", "")
	viper.SetDefault("notify.slack.webhook_url", "")
	viper.SetDefault("verbose", false)
	viper.SetDefault("log_file", "")

	// A missing config file is not an error; defaults and env cover it.
	_ = viper.ReadInConfig()
}

// Current snapshots the effective settings.
func Current() Settings {
	return Settings{
		MinSampleCount:         viper.GetInt64("min_sample_count"),
		RegressionThresholdPct: viper.GetFloat64("regression_threshold_pct"),
		BaselinePath:           viper.GetString("baseline.path"),
		BaselinePostgresDSN:    viper.GetString("baseline.postgres_dsn"),
		KnownSDKsPath:          viper.GetString("known_sdks"),
		MetricsAddr:            viper.GetString("metrics_addr"),
		SlackWebhookURL:        viper.GetString("notify.slack.webhook_url"),
		Verbose:                viper.GetBool("verbose"),
		LogFile:                viper.GetString("log_file"),
	}
}
