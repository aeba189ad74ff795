package storage

import (
	"os"
	"path/filepath"
)

// DefaultRoot returns the default storage root:
// $XDG_DATA_HOME/focus/focus-data or ~/.local/share/focus/focus-data.
func DefaultRoot() (string, error) {
	base := os.Getenv("XDG_DATA_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(base, "focus", "focus-data"), nil
}
