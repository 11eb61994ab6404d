package cmd

import (
	"errors"
	"fmt"

	"github.com/theirongolddev/eventoo/internal/cli"
	"github.com/theirongolddev/eventoo/internal/config"
	"github.com/theirongolddev/eventoo/internal/tui"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "First-time setup wizard",
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(_ *cobra.Command, _ []string) error {
	cfg := appConfig

	fmt.Println()
	fmt.Println("  Welcome to eventoo!")
	fmt.Println()
	if st, err := openStore(); err == nil {
		if n, err := st.PlanCount(); err == nil && n > 0 {
			fmt.Printf("  Found %s saved plans in %s\n\n", cli.FormatNumber(int64(n)), dbPath())
		}
		_ = st.Close()
	}

	vals := tui.NewSetupValues(cfg)
	if err := tui.NewSetupForm(vals).Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			fmt.Println("  Setup cancelled, nothing saved.")
			return nil
		}
		return err
	}
	vals.Apply(&cfg)

	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Println()
	fmt.Printf("  Saved to %s\n", config.ConfigPath())
	fmt.Println("  Run `eventoo setup` anytime to reconfigure.")
	fmt.Println()

	return nil
}
