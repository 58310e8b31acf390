package main

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/jgoulah/pumplog/internal/config"
	"github.com/jgoulah/pumplog/internal/dashboard"
	"github.com/jgoulah/pumplog/internal/feed"
	"github.com/jgoulah/pumplog/internal/logger"
)

var (
	cfgFile   string
	tzName    string
	useSample bool
)

var rootCmd = &cobra.Command{
	Use:   "pumplog",
	Short: "Dashboard for a pumping log kept in a Google Sheet",
	Long: `pumplog reads pumping sessions from a Google Form response sheet and shows
today's sessions, daily totals for the last week and a time-of-day chart.
When the sheet cannot be read it falls back to generated sample data.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().StringVar(&tzName, "tz", "", "IANA timezone for day boundaries (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&useSample, "sample", false, "skip the feed and use generated sample data")
}

// getConfigPath returns the config file path
func getConfigPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	return config.DefaultConfigPath()
}

// loadConfig loads .env, the config file and environment overrides, then
// initializes the logger from the result
func loadConfig() (*config.Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	cfg, err := config.Load(getConfigPath())
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv()
	if tzName != "" {
		cfg.Timezone = tzName
	}

	if err := logger.InitLoggerWithConfig(cfg.Log.Level, cfg.Log.JSON); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newPipeline wires the feed client into a dashboard pipeline
func newPipeline(cfg *config.Config) (*dashboard.Pipeline, error) {
	loc, err := cfg.GetLocation()
	if err != nil {
		return nil, err
	}

	client := feed.NewClient(cfg.GetFeedURL(), cfg.GetTimeout())
	return dashboard.NewPipeline(client, dashboard.Options{
		Location:  loc,
		UseSample: useSample,
		Logger:    logger.Log,
	}), nil
}
