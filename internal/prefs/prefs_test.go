package prefs

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fakeyudi/focus/internal/config"
)

func TestLoadMissingReturnsZero(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	if Exists() {
		t.Fatal("Exists() = true on a fresh home")
	}
	pr, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if *pr != (Prefs{}) {
		t.Errorf("Load = %+v, want zero", *pr)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	want := &Prefs{StoragePath: "/srv/focus", MaxSessions: 12}
	if err := Save(want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !Exists() {
		t.Fatal("Exists() = false after Save")
	}
	data, err := os.ReadFile(filepath.Join(home, ".config", "focus", "preferences.json"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"storagePath": "/srv/focus"`) {
		t.Errorf("preferences.json = %s", data)
	}

	got, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if *got != *want {
		t.Errorf("Load = %+v, want %+v", *got, *want)
	}
}

func TestLoadMalformed(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	dir := filepath.Join(home, ".config", "focus")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "preferences.json"), []byte("{"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(); err == nil {
		t.Fatal("expected error for malformed preferences")
	}
}

func TestApplyOverridesConfig(t *testing.T) {
	cfg := config.Defaults()
	cfg.StoragePath = "/from/config"

	got := (&Prefs{MaxSessions: 3}).Apply(cfg)
	if got.StoragePath != "/from/config" || got.MaxSessions != 3 {
		t.Errorf("Apply = %+v", got)
	}
	got = (&Prefs{StoragePath: "/chosen"}).Apply(cfg)
	if got.StoragePath != "/chosen" || got.MaxSessions != config.DefaultMaxSessions {
		t.Errorf("Apply = %+v", got)
	}
	var nilPrefs *Prefs
	if nilPrefs.Apply(cfg) != cfg {
		t.Error("nil Prefs should leave config unchanged")
	}
}

func TestRunSetupAcceptsDefaults(t *testing.T) {
	var out bytes.Buffer
	pr, err := RunSetup(strings.NewReader("\n\n"), &out, nil, "/default/root")
	if err != nil {
		t.Fatalf("RunSetup: %v", err)
	}
	if pr.StoragePath != "" || pr.MaxSessions != config.DefaultMaxSessions {
		t.Errorf("RunSetup = %+v, want default root and limit", *pr)
	}
	if !strings.Contains(out.String(), "[/default/root]") {
		t.Errorf("prompt did not offer default root: %q", out.String())
	}
}

func TestRunSetupRetriesInvalidLimit(t *testing.T) {
	dir := t.TempDir()
	var out bytes.Buffer
	in := strings.NewReader(dir + "\nzero\n-4\n25\n")
	pr, err := RunSetup(in, &out, &Prefs{MaxSessions: 7}, "/default/root")
	if err != nil {
		t.Fatalf("RunSetup: %v", err)
	}
	if pr.StoragePath != dir || pr.MaxSessions != 25 {
		t.Errorf("RunSetup = %+v", *pr)
	}
	if strings.Count(out.String(), "positive whole number") != 2 {
		t.Errorf("expected two retry messages, got %q", out.String())
	}
}

func TestRunSetupEOF(t *testing.T) {
	if _, err := RunSetup(strings.NewReader(""), &bytes.Buffer{}, nil, "/r"); err == nil {
		t.Fatal("expected error when input ends before answers")
	}
}
