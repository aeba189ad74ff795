package cmd

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/focus/internal/session"
)

var (
	logMeta []string
	logAt   string
)

var logCmd = &cobra.Command{
	Use:   "log <id> <status> <confidence>",
	Short: "Append an attention observation to a session",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, status := args[0], args[1]
		confidence, err := strconv.ParseFloat(args[2], 64)
		if err != nil {
			return fmt.Errorf("invalid confidence %q: %w", args[2], err)
		}
		meta, err := parseMeta(logMeta)
		if err != nil {
			return err
		}
		ts := time.Now().UnixMilli()
		if logAt != "" {
			if ts, err = parseTime(logAt, false); err != nil {
				return err
			}
		}

		st, err := openStorage(cmd)
		if err != nil {
			return err
		}
		ok, err := st.AddLogEntry(id, session.LogEntry{
			Timestamp:  ts,
			Status:     status,
			Confidence: confidence,
			Metadata:   meta,
		})
		if err != nil {
			return fmt.Errorf("logging to %s: %w", id, err)
		}
		if !ok {
			return fmt.Errorf("no session with id %s", id)
		}

		fmt.Fprintln(cmd.OutOrStdout(), "Logged.")
		return nil
	},
}

func init() {
	logCmd.Flags().StringArrayVarP(&logMeta, "meta", "m", nil, "attach metadata as key=value (repeatable)")
	logCmd.Flags().StringVar(&logAt, "at", "", "observation time (epoch ms, RFC 3339 or YYYY-MM-DD); default now")
	rootCmd.AddCommand(logCmd)
}
