package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/focus/internal/prefs"
)

var limitCmd = &cobra.Command{
	Use:   "limit [n]",
	Short: "Show or change how many sessions are kept",
	Long: "Without an argument, prints the retention limit. With n, saves it to\n" +
		"preferences and immediately deletes the oldest sessions beyond it.",
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if len(args) == 0 {
			fmt.Fprintf(out, "Keeping the %d most recent sessions.\n", cfg.MaxSessions)
			return nil
		}

		n, err := strconv.Atoi(args[0])
		if err != nil || n <= 0 {
			return fmt.Errorf("limit must be a positive whole number, got %q", args[0])
		}
		st, err := openStorage(cmd)
		if err != nil {
			return err
		}
		before, _ := st.SessionIDs(nil)
		if err := st.SetMaxSessions(n); err != nil {
			return err
		}

		p := *activePrefs
		p.MaxSessions = n
		if err := prefs.Save(&p); err != nil {
			return fmt.Errorf("saving preferences: %w", err)
		}
		after, _ := st.SessionIDs(nil)

		fmt.Fprintf(out, "Keeping the %d most recent sessions.\n", n)
		if removed := len(before) - len(after); removed > 0 {
			fmt.Fprintf(out, "Removed %d old session(s).\n", removed)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(limitCmd)
}
