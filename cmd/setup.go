package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/focus/internal/prefs"
	"github.com/fakeyudi/focus/internal/storage"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Choose where sessions are stored and how many are kept",
	// Bypass the normal PersistentPreRunE so setup works before preferences exist.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSetup(cmd)
	},
}

// runSetup runs the interactive setup wizard and saves the result.
func runSetup(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()

	var existing *prefs.Prefs
	if prefs.Exists() {
		if p, err := prefs.Load(); err == nil {
			existing = p
		}
	}
	defaultRoot, err := storage.DefaultRoot()
	if err != nil {
		return err
	}

	p, err := prefs.RunSetup(cmd.InOrStdin(), out, existing, defaultRoot)
	if err != nil {
		return fmt.Errorf("setup cancelled: %w", err)
	}
	if err := prefs.Save(p); err != nil {
		return fmt.Errorf("saving preferences: %w", err)
	}
	fmt.Fprintln(out, "  ✓ Preferences saved.")
	fmt.Fprintln(out, "  Setup complete. Run 'focus start' to begin a session.")
	fmt.Fprintln(out)
	return nil
}

func init() {
	rootCmd.AddCommand(setupCmd)
}
