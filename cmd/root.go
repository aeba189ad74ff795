package cmd

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"github.com/fakeyudi/focus/internal/config"
	"github.com/fakeyudi/focus/internal/prefs"
	"github.com/fakeyudi/focus/internal/storage"
)

// cfg holds the merged configuration, populated in PersistentPreRunE.
var cfg config.Config

// activePrefs holds the loaded user preferences.
var activePrefs *prefs.Prefs

var (
	logFileFlag string
	quietFlag   bool

	// logSink is the open --log-file, closed after the command runs.
	logSink *os.File
)

// isInteractive reports whether stdin is a terminal. Tests replace it.
var isInteractive = func() bool {
	return term.IsTerminal(os.Stdin.Fd())
}

var rootCmd = &cobra.Command{
	Use:          "focus",
	Short:        "Record focus sessions and query their attention logs",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// First run: no preferences yet → offer the setup wizard, but only
		// when a person is at the keyboard. serve speaks JSON on stdin.
		if !prefs.Exists() && cmd.Name() != "serve" && isInteractive() {
			fmt.Fprintln(cmd.OutOrStdout())
			fmt.Fprintln(cmd.OutOrStdout(), "  Welcome to focus! Looks like this is your first time.")
			if err := runSetup(cmd); err != nil {
				return err
			}
		}

		p, err := prefs.Load()
		if err != nil {
			return fmt.Errorf("loading preferences: %w", err)
		}
		activePrefs = p

		global, err := config.LoadGlobal()
		if err != nil {
			return fmt.Errorf("loading global config: %w", err)
		}
		project, err := config.LoadProject()
		if err != nil {
			return fmt.Errorf("loading project config: %w", err)
		}
		cfg = activePrefs.Apply(config.Merge(global, project))
		if logFileFlag != "" {
			cfg.LogFile = logFileFlag
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return closeLogSink()
	},
}

// Execute runs the root command. Exits with code 1 on error.
func Execute() {
	err := rootCmd.Execute()
	closeLogSink()
	if err != nil {
		os.Exit(1)
	}
}

// GetConfig returns the merged configuration for use by subcommands.
func GetConfig() config.Config {
	return cfg
}

// storageLogger builds the logger storage diagnostics go to: --quiet
// discards them, a configured log file receives them, stderr otherwise.
func storageLogger(cmd *cobra.Command) (*log.Logger, error) {
	var w io.Writer = cmd.ErrOrStderr()
	switch {
	case quietFlag:
		w = io.Discard
	case cfg.LogFile != "":
		if logSink == nil {
			f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
			if err != nil {
				return nil, fmt.Errorf("opening log file: %w", err)
			}
			logSink = f
		}
		w = logSink
	}
	return log.New(w, "storage: ", log.LstdFlags), nil
}

func closeLogSink() error {
	if logSink == nil {
		return nil
	}
	err := logSink.Close()
	logSink = nil
	return err
}

// openStorage opens the configured storage root with the configured limit.
func openStorage(cmd *cobra.Command) (*storage.Storage, error) {
	logger, err := storageLogger(cmd)
	if err != nil {
		return nil, err
	}
	st, err := storage.Open(cfg.StoragePath,
		storage.WithLogger(logger),
		storage.WithMaxSessions(cfg.MaxSessions),
	)
	if err != nil {
		return nil, fmt.Errorf("opening storage: %w", err)
	}
	return st, nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logFileFlag, "log-file", "", "append storage diagnostics to this file")
	rootCmd.PersistentFlags().BoolVarP(&quietFlag, "quiet", "q", false, "discard storage diagnostics")
}
