package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func readLedgerFile(t *testing.T, path string) Metadata {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading ledger: %v", err)
	}
	var m Metadata
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("parsing ledger: %v", err)
	}
	return m
}

func TestLoadLedgerCreatesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), metadataFile)

	l, err := loadLedger(path, quietLogger())
	if err != nil {
		t.Fatalf("loadLedger: %v", err)
	}
	if got := l.Snapshot(); got != DefaultMetadata() {
		t.Errorf("Snapshot = %+v, want defaults", got)
	}
	if got := readLedgerFile(t, path); got.Version != "1.0" || got.SessionCount != 0 || got.TotalLogEntries != 0 {
		t.Errorf("persisted ledger = %+v, want defaults", got)
	}
}

func TestLoadLedgerResetsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), metadataFile)
	if err := os.WriteFile(path, []byte(`{"sessionCount": "many"`), 0o644); err != nil {
		t.Fatal(err)
	}

	l, err := loadLedger(path, quietLogger())
	if err != nil {
		t.Fatalf("loadLedger on corrupt file: %v", err)
	}
	if got := l.Snapshot(); got != DefaultMetadata() {
		t.Errorf("Snapshot = %+v, want defaults", got)
	}
	if got := readLedgerFile(t, path); got != DefaultMetadata() {
		t.Errorf("corrupt ledger was not rewritten: %+v", got)
	}
}

func TestLoadLedgerKeepsExistingValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), metadataFile)
	want := Metadata{LastSessionID: "b", SessionCount: 2, TotalLogEntries: 7, OldestSession: "a", Version: "1.0"}
	data, _ := json.Marshal(want)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	l, err := loadLedger(path, quietLogger())
	if err != nil {
		t.Fatalf("loadLedger: %v", err)
	}
	if got := l.Snapshot(); got != want {
		t.Errorf("Snapshot = %+v, want %+v", got, want)
	}
}

func TestLedgerUpdatePersistsWholeRecord(t *testing.T) {
	path := filepath.Join(t.TempDir(), metadataFile)
	l, err := loadLedger(path, quietLogger())
	if err != nil {
		t.Fatal(err)
	}

	if err := l.Update(func(m *Metadata) {
		m.SessionCount = 3
		m.OldestSession = "x"
	}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if err := l.Update(func(m *Metadata) { m.TotalLogEntries += 5 }); err != nil {
		t.Fatalf("Update: %v", err)
	}

	got := readLedgerFile(t, path)
	want := Metadata{SessionCount: 3, TotalLogEntries: 5, OldestSession: "x", Version: "1.0"}
	if got != want {
		t.Errorf("persisted = %+v, want %+v", got, want)
	}
	if l.size() == 0 {
		t.Error("size() = 0 for an existing ledger")
	}
}
