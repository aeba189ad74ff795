package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/focus/internal/report"
	"github.com/fakeyudi/focus/internal/storage"
	"github.com/fakeyudi/focus/internal/tui"
)

var (
	viewPlain bool
	viewFile  string
)

var viewCmd = &cobra.Command{
	Use:   "view [id]",
	Short: "Browse a session, or an exported report with --file",
	Args: func(cmd *cobra.Command, args []string) error {
		if viewFile != "" {
			return cobra.NoArgs(cmd, args)
		}
		return cobra.ExactArgs(1)(cmd, args)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			r      *report.Report
			source string
			reload tui.ReloadFunc
		)
		if viewFile != "" {
			data, err := os.ReadFile(viewFile)
			if err != nil {
				if os.IsNotExist(err) {
					return fmt.Errorf("file not found: %s", viewFile)
				}
				return err
			}
			if r, err = report.Detect(data).Parse(data); err != nil {
				return err
			}
			source = filepath.Base(viewFile)
		} else {
			st, err := openStorage(cmd)
			if err != nil {
				return err
			}
			id := args[0]
			load := func() (*report.Report, error) { return loadReport(st, id) }
			if r, err = load(); err != nil {
				return err
			}
			source, reload = id, load
		}

		if viewPlain || !isInteractive() {
			data, err := (&report.MarkdownRenderer{OmitPayload: true}).Render(r)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		}
		return tui.Run(r, source, reload)
	},
}

// loadReport reads session id from st and summarizes it as of now.
func loadReport(st *storage.Storage, id string) (*report.Report, error) {
	s, err := st.GetSession(id)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, fmt.Errorf("no session with id %s", id)
	}
	return report.Build(s, time.Now()), nil
}

func init() {
	viewCmd.Flags().BoolVar(&viewPlain, "plain", false, "plain text output instead of TUI")
	viewCmd.Flags().StringVarP(&viewFile, "file", "f", "", "view an exported report instead of a stored session")
	rootCmd.AddCommand(viewCmd)
}
