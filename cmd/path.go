package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/focus/internal/prefs"
	"github.com/fakeyudi/focus/internal/storage"
)

var pathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show where sessions are stored",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if cfg.StoragePath == "" {
			root, err := storage.DefaultRoot()
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%s (default)\n", root)
			return nil
		}
		fmt.Fprintln(out, cfg.StoragePath)
		return nil
	},
}

var pathSetCmd = &cobra.Command{
	Use:   "set <dir>",
	Short: "Store sessions under dir from now on",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := filepath.Abs(args[0])
		if err != nil {
			return err
		}
		// Opening creates the layout and proves the directory is usable.
		cfg.StoragePath = dir
		if _, err := openStorage(cmd); err != nil {
			return err
		}
		return savePath(cmd, dir)
	},
}

var pathResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Go back to the default storage location",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return savePath(cmd, "")
	},
}

func savePath(cmd *cobra.Command, dir string) error {
	p := *activePrefs
	p.StoragePath = dir
	if err := prefs.Save(&p); err != nil {
		return fmt.Errorf("saving preferences: %w", err)
	}
	if dir == "" {
		fmt.Fprintln(cmd.OutOrStdout(), "Storage location reset to default.")
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "Storage location set to %s\n", dir)
	}
	return nil
}

func init() {
	pathCmd.AddCommand(pathSetCmd, pathResetCmd)
	rootCmd.AddCommand(pathCmd)
}
