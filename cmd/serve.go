package cmd

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/focus/internal/ipc"
	"github.com/fakeyudi/focus/internal/prefs"
	"github.com/fakeyudi/focus/internal/storage"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve storage requests as JSON lines on stdin/stdout",
	Long: "Reads one request per line, {\"id\", \"method\", \"params\"}, and writes one\n" +
		"reply per line carrying the request id and a {success, error, ...} envelope.\n" +
		"Methods: select-storage-path, set-max-sessions, get-storage-path,\n" +
		"start-session, add-log-entry, end-session, search-sessions,\n" +
		"get-storage-stats, get-session.",
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStorage(cmd)
		if err != nil {
			return err
		}
		logger, err := storageLogger(cmd)
		if err != nil {
			return err
		}

		h := ipc.NewHandler(st, cfg.StoragePath,
			ipc.WithLogger(log.New(logger.Writer(), "ipc: ", log.LstdFlags)),
			ipc.WithOpener(func(path string, maxSessions int) (*storage.Storage, error) {
				return storage.Open(path, storage.WithLogger(logger), storage.WithMaxSessions(maxSessions))
			}),
			ipc.WithPathSaver(func(path string) error {
				p := *activePrefs
				p.StoragePath = path
				if err := prefs.Save(&p); err != nil {
					return err
				}
				activePrefs = &p
				return nil
			}),
		)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()
		if err := h.Serve(ctx, cmd.InOrStdin(), cmd.OutOrStdout()); !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
