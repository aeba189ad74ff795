package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/focus/internal/storage"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print session changes as they happen until interrupted",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStorage(cmd)
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Watching %s (Ctrl-C to stop)\n", st.Root())
		err = st.Watch(ctx, func(c storage.Change) {
			line := fmt.Sprintf("%s  %-8s %s", time.Now().Format("15:04:05"), c.Kind, c.SessionID)
			if c.Kind == storage.ChangeWritten {
				if s, err := st.GetSession(c.SessionID); err == nil && s != nil {
					state := "open"
					if !s.Open() {
						state = "ended"
					}
					line += fmt.Sprintf("  %d entries, %s", len(s.Logs), state)
				}
			}
			fmt.Fprintln(out, line)
		})
		return err
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
