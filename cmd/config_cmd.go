package cmd

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/theirongolddev/eventoo/internal/config"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	cfg := appConfig

	fmt.Printf("  Config file: %s\n", config.ConfigPath())
	if config.Exists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	fmt.Println("  [General]")
	dest := cfg.General.DefaultDestination
	if dest == "" {
		dest = "not set"
	}
	fmt.Printf("    Default destination: %s\n", dest)
	fmt.Printf("    Default group size:  %d\n", cfg.General.DefaultPeople)
	fmt.Printf("    Plan database:       %s\n", dbPath())
	fmt.Println()

	fmt.Println("  [Simulation]")
	fmt.Printf("    Seed:      %d\n", cfg.Simulation.Seed)
	fmt.Printf("    Tick step: %s\n", cfg.Simulation.Step())
	t := cfg.Simulation.Tuning()
	fmt.Printf("    Auto-start after:  %s\n", t.AutoStartAfter)
	fmt.Printf("    Campaign interval: %s\n", t.CampaignInterval)
	fmt.Printf("    Success threshold: %.0f%%\n", t.SuccessThreshold*100)
	fmt.Println()

	fmt.Println("  [Daemon]")
	fmt.Printf("    Address:  %s\n", cfg.Daemon.Addr)
	fmt.Printf("    Interval: %ds at %.0fx\n", cfg.Daemon.IntervalSeconds, cfg.Daemon.Speed)
	fmt.Printf("    Events buffer: %d\n", cfg.Daemon.EventsBuffer)
	if len(cfg.Daemon.CORSOrigins) > 0 {
		fmt.Printf("    CORS origins:  %s\n", strings.Join(cfg.Daemon.CORSOrigins, ", "))
	}
	fmt.Println()

	fmt.Println("  [Redis]")
	if cfg.Redis.Enabled {
		fmt.Printf("    URL:     %s\n", maskRedisURL(cfg.Redis.URL))
		fmt.Printf("    Channel: %s\n", cfg.Redis.Channel)
	} else {
		fmt.Println("    Disabled")
	}
	fmt.Println()

	fmt.Println("  [Log]")
	fmt.Printf("    Level:  %s\n", cfg.Log.Level)
	fmt.Printf("    Format: %s\n", cfg.Log.Format)
	fmt.Println()

	fmt.Println("  [Appearance]")
	fmt.Printf("    Theme: %s\n", cfg.Appearance.Theme)
	fmt.Println()

	fmt.Println("  Run `eventoo setup` to reconfigure.")
	return nil
}

// maskRedisURL hides the password in a redis:// URL.
func maskRedisURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return raw
	}
	if _, ok := u.User.Password(); ok {
		u.User = url.UserPassword(u.User.Username(), "xxxxx")
	}
	return u.String()
}
