package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/focus/internal/session"
)

var (
	startDuration float64
	startBreak    float64
	startGoal     string
	startTags     []string
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Begin a new focus session and print its id",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStorage(cmd)
		if err != nil {
			return err
		}

		s, err := st.StartSession(session.Config{
			Duration:      startDuration,
			BreakInterval: startBreak,
			Goal:          startGoal,
			Tags:          startTags,
		})
		if err != nil {
			return fmt.Errorf("starting session: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Session started: %s\n", s.ID)
		return nil
	},
}

func init() {
	startCmd.Flags().Float64Var(&startDuration, "duration", 0, "planned length in minutes")
	startCmd.Flags().Float64Var(&startBreak, "break", 0, "break interval in minutes")
	startCmd.Flags().StringVar(&startGoal, "goal", "", "what this session is for")
	startCmd.Flags().StringArrayVarP(&startTags, "tag", "t", nil, "tag the session (repeatable)")
	rootCmd.AddCommand(startCmd)
}
