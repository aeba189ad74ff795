// Package prefs manages the user's persisted focus preferences.
// Preferences live at ~/.config/focus/preferences.json. They record the
// storage location the user selected and the retention limit, and take
// precedence over config files on every command.
package prefs

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/fakeyudi/focus/internal/config"
)

// Prefs holds user-level choices made through `focus setup` or `focus path set`.
type Prefs struct {
	StoragePath string `json:"storagePath,omitempty"` // empty selects the default data dir
	MaxSessions int    `json:"maxSessions,omitempty"` // zero defers to config
}

func prefsPath() (string, error) {
	dir, err := config.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "preferences.json"), nil
}

// Exists reports whether a preferences file is present on disk.
func Exists() bool {
	p, err := prefsPath()
	if err != nil {
		return false
	}
	_, err = os.Stat(p)
	return err == nil
}

// Load reads preferences from disk. A missing file yields zero Prefs.
func Load() (*Prefs, error) {
	p, err := prefsPath()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Prefs{}, nil
		}
		return nil, err
	}
	var pr Prefs
	if err := json.Unmarshal(data, &pr); err != nil {
		return nil, fmt.Errorf("malformed preferences at %s: %w", p, err)
	}
	return &pr, nil
}

// Save writes preferences to disk, creating the config directory if needed.
func Save(pr *Prefs) error {
	p, err := prefsPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(pr, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(p, data, 0o644)
}

// Apply overlays preferences onto cfg.
func (pr *Prefs) Apply(cfg config.Config) config.Config {
	if pr == nil {
		return cfg
	}
	if pr.StoragePath != "" {
		cfg.StoragePath = pr.StoragePath
	}
	if pr.MaxSessions > 0 {
		cfg.MaxSessions = pr.MaxSessions
	}
	return cfg
}

// RunSetup runs the interactive setup wizard reading answers from in and
// writing prompts to out. If existing is non-nil its values are offered as
// defaults (edit mode). The result is not saved.
func RunSetup(in io.Reader, out io.Writer, existing *Prefs, defaultRoot string) (*Prefs, error) {
	r := bufio.NewReader(in)

	ask := func(prompt, defaultVal string) (string, error) {
		if defaultVal != "" {
			fmt.Fprintf(out, "%s [%s]: ", prompt, defaultVal)
		} else {
			fmt.Fprintf(out, "%s: ", prompt)
		}
		line, err := r.ReadString('\n')
		if err != nil && !(errors.Is(err, io.EOF) && line != "") {
			return "", err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			return defaultVal, nil
		}
		return line, nil
	}

	pr := &Prefs{MaxSessions: config.DefaultMaxSessions}
	if existing != nil {
		*pr = *existing
		if pr.MaxSessions <= 0 {
			pr.MaxSessions = config.DefaultMaxSessions
		}
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "  ┌─────────────────────────────────┐")
	fmt.Fprintln(out, "  │      focus: storage setup       │")
	fmt.Fprintln(out, "  └─────────────────────────────────┘")
	fmt.Fprintln(out)

	current := pr.StoragePath
	if current == "" {
		current = defaultRoot
	}
	path, err := ask("  Storage directory", current)
	if err != nil {
		return nil, err
	}
	if path == defaultRoot {
		pr.StoragePath = ""
	} else {
		abs, err := filepath.Abs(path)
		if err != nil {
			return nil, err
		}
		pr.StoragePath = abs
	}

	for {
		ans, err := ask("  Sessions to keep", strconv.Itoa(pr.MaxSessions))
		if err != nil {
			return nil, err
		}
		n, convErr := strconv.Atoi(ans)
		if convErr == nil && n > 0 {
			pr.MaxSessions = n
			break
		}
		fmt.Fprintln(out, "  Please enter a positive whole number.")
	}

	fmt.Fprintln(out)
	return pr, nil
}
