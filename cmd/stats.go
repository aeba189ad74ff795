package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statsJSON bool

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show storage statistics",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStorage(cmd)
		if err != nil {
			return err
		}
		stats, err := st.Stats()
		if err != nil {
			return fmt.Errorf("reading stats: %w", err)
		}

		out := cmd.OutOrStdout()
		if statsJSON {
			return writeJSON(out, stats)
		}
		orNone := func(s string) string {
			if s == "" {
				return "(none)"
			}
			return s
		}
		fmt.Fprintf(out, "Storage:        %s\n", st.Root())
		fmt.Fprintf(out, "Sessions:       %d (keeping %d)\n", stats.SessionCount, st.MaxSessions())
		fmt.Fprintf(out, "Log entries:    %d\n", stats.TotalLogEntries)
		fmt.Fprintf(out, "Oldest session: %s\n", orNone(stats.OldestSession))
		fmt.Fprintf(out, "Newest session: %s\n", orNone(stats.NewestSession))
		fmt.Fprintf(out, "Disk usage:     %s\n", formatBytes(stats.DiskUsage))
		return nil
	},
}

func init() {
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "print stats as JSON")
	rootCmd.AddCommand(statsCmd)
}
