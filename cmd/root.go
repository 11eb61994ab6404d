// Package cmd implements the eventoo CLI commands.
package cmd

import (
	"fmt"
	"os"

	"github.com/theirongolddev/eventoo/internal/cli"
	"github.com/theirongolddev/eventoo/internal/config"
	"github.com/theirongolddev/eventoo/internal/logger"
	"github.com/theirongolddev/eventoo/internal/simulator"
	"github.com/theirongolddev/eventoo/internal/store"
	"github.com/theirongolddev/eventoo/internal/tui/theme"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	flagQuiet    bool
	flagDB       string
	flagSeed     int64
	flagLogLevel string
	flagEnvFile  string
)

// Shared state prepared by the root command before any subcommand runs.
var (
	appConfig config.Config
	appLog    *logrus.Logger
)

var rootCmd = &cobra.Command{
	Use:   "eventoo",
	Short: "Fundraising plans for group trips",
	Long: "Generate week-by-week fundraising plans for a group trip and simulate\n" +
		"how challenges, milestones and campaigns play out before departure.",
	SilenceUsage:      true,
	PersistentPreRunE: prepare,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress output")
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "SQLite plan database (default ~/.cache/eventoo/eventoo.db)")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "Simulation random seed (default from config)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&flagEnvFile, "env-file", ".env", "Dotenv file with EVENTOO_* overrides")
}

func prepare(cmd *cobra.Command, _ []string) error {
	if err := config.LoadDotEnv(flagEnvFile); err != nil {
		return err
	}
	cfg, err := config.Load()
	if err != nil {
		// A broken config file should not block the CLI.
		fmt.Fprintf(os.Stderr, "  Warning: %v (using defaults)\n", err)
		cfg = config.DefaultConfig()
		config.ApplyEnv(&cfg)
	}
	if flagDB != "" {
		cfg.General.DBPath = flagDB
	}
	if cmd.Flags().Changed("seed") {
		cfg.Simulation.Seed = flagSeed
	}
	if flagLogLevel != "" {
		cfg.Log.Level = flagLogLevel
	}
	if flagQuiet && flagLogLevel == "" {
		cfg.Log.Level = "error"
	}

	appConfig = cfg
	appLog = logger.New(cfg.Log.Level, cfg.Log.Format)
	theme.SetActive(cfg.Appearance.Theme)
	cli.UseTheme(theme.Active)
	return nil
}

// dbPath returns the configured plan database path.
func dbPath() string {
	if appConfig.General.DBPath != "" {
		return appConfig.General.DBPath
	}
	return store.DefaultPath()
}

func openStore() (*store.Store, error) {
	st, err := store.Open(dbPath())
	if err != nil {
		return nil, fmt.Errorf("opening plan database: %w", err)
	}
	return st, nil
}

// newSimulator builds a simulator from the loaded configuration.
func newSimulator() *simulator.Simulator {
	return simulator.New(
		simulator.WithTuning(appConfig.Simulation.Tuning()),
		simulator.WithRand(simulator.NewRand(appConfig.Simulation.Seed)),
		simulator.WithLogger(appLog),
	)
}
