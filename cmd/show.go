package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print a session record as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStorage(cmd)
		if err != nil {
			return err
		}
		s, err := st.GetSession(args[0])
		if err != nil {
			return err
		}
		if s == nil {
			return fmt.Errorf("no session with id %s", args[0])
		}
		return writeJSON(cmd.OutOrStdout(), s)
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
}
