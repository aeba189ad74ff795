package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var endCmd = &cobra.Command{
	Use:   "end <id>",
	Short: "Mark a session as ended",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStorage(cmd)
		if err != nil {
			return err
		}
		ok, err := st.EndSession(args[0])
		if err != nil {
			return fmt.Errorf("ending %s: %w", args[0], err)
		}
		if !ok {
			return fmt.Errorf("no session with id %s", args[0])
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Session ended.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(endCmd)
}
