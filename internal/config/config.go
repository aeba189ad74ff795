package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
)

// DefaultMaxSessions mirrors the store's built-in retention limit.
const DefaultMaxSessions = 100

// Config holds all configurable focus settings.
type Config struct {
	StoragePath   string `json:"storage_path"`   // empty selects the default data dir
	MaxSessions   int    `json:"max_sessions"`   // retention limit
	LogFile       string `json:"log_file"`       // storage diagnostics; empty means stderr
	DefaultFormat string `json:"default_format"` // export format: "markdown" | "json"
	OutputDir     string `json:"output_dir"`     // export destination
}

// Defaults returns sensible default configuration values.
func Defaults() Config {
	return Config{
		MaxSessions:   DefaultMaxSessions,
		DefaultFormat: "markdown",
		OutputDir:     ".",
	}
}

// Dir returns the focus config directory, ~/.config/focus.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "focus"), nil
}

// LoadGlobal reads ~/.config/focus/config.json.
// Returns defaults if the file is absent.
func LoadGlobal() (*Config, error) {
	dir, err := Dir()
	if err != nil {
		return nil, err
	}
	return loadFile(filepath.Join(dir, "config.json"), true)
}

// LoadProject reads .focusconfig in the current working directory.
// Returns nil (no error) if the file is absent.
func LoadProject() (*Config, error) {
	return loadFile(".focusconfig", false)
}

// loadFile reads and parses a JSON config file at path.
// If returnDefaults is true, returns defaults when the file is absent.
// If returnDefaults is false, returns nil when the file is absent.
func loadFile(path string, returnDefaults bool) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if returnDefaults {
				d := Defaults()
				return &d, nil
			}
			return nil, nil
		}
		return nil, err
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	return &cfg, nil
}

// Merge combines global and project configs, with project taking precedence.
// Missing keys fall back to global, then defaults.
func Merge(global, project *Config) Config {
	result := Defaults()
	for _, layer := range []*Config{global, project} {
		if layer == nil {
			continue
		}
		if layer.StoragePath != "" {
			result.StoragePath = layer.StoragePath
		}
		if layer.MaxSessions > 0 {
			result.MaxSessions = layer.MaxSessions
		}
		if layer.LogFile != "" {
			result.LogFile = layer.LogFile
		}
		if layer.DefaultFormat != "" {
			result.DefaultFormat = layer.DefaultFormat
		}
		if layer.OutputDir != "" {
			result.OutputDir = layer.OutputDir
		}
	}
	return result
}

// ParseError is returned when a config file exists but cannot be parsed.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return "failed to parse config file " + e.Path + ": " + e.Err.Error()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
