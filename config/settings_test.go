package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/fjacquet/Nano-Banana-MCP/model"
)

func writeTestRecord(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0o700); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, recordFileName), []byte(content), 0o600); err != nil {
		t.Fatalf("write record: %v", err)
	}
}

func TestResolveEnvironmentWinsOverRecord(t *testing.T) {
	dir := t.TempDir()
	// Record written first, env set afterwards: precedence must not
	// depend on recency.
	writeTestRecord(t, dir, `{"token": "record-key"}`)
	t.Setenv(EnvAPIKey, "env-key")

	r := newResolver(dir)
	cred, ok := r.Credential()
	if !ok {
		t.Fatal("expected an active credential")
	}
	if cred.Token() != "env-key" {
		t.Errorf("expected env credential to win, got %q", cred.Token())
	}
	if cred.Source() != SourceEnvironment {
		t.Errorf("expected source %q, got %q", SourceEnvironment, cred.Source())
	}
}

func TestResolveFallsBackToRecord(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(EnvAPIKey, "")
	writeTestRecord(t, dir, `{"token": "record-key"}`)

	r := newResolver(dir)
	cred, ok := r.Credential()
	if !ok {
		t.Fatal("expected an active credential from the record")
	}
	if cred.Token() != "record-key" {
		t.Errorf("expected record credential, got %q", cred.Token())
	}
	if cred.Source() != SourceRecord {
		t.Errorf("expected source %q, got %q", SourceRecord, cred.Source())
	}
}

func TestResolveUnconfigured(t *testing.T) {
	t.Setenv(EnvAPIKey, "")
	r := newResolver(t.TempDir())

	if _, ok := r.Credential(); ok {
		t.Error("expected no active credential")
	}
	status := r.Status()
	if status.Configured {
		t.Error("expected unconfigured status")
	}
}

func TestResolveRejectsUnknownRecordFields(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(EnvAPIKey, "")
	writeTestRecord(t, dir, `{"token": "abc", "extra": "nope"}`)

	if _, ok := newResolver(dir).Credential(); ok {
		t.Error("record with unknown fields must be rejected")
	}
}

func TestResolveRejectsEmptyRecordToken(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(EnvAPIKey, "")
	writeTestRecord(t, dir, `{"token": "   "}`)

	if _, ok := newResolver(dir).Credential(); ok {
		t.Error("record with a blank token must be rejected")
	}
}

func TestPersistWritesRecordAndActivates(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(EnvAPIKey, "")
	r := newResolver(dir)

	if err := r.Persist("new-key"); err != nil {
		t.Fatalf("persist: %v", err)
	}

	// Active immediately, without a re-read from disk.
	cred, ok := r.Credential()
	if !ok || cred.Token() != "new-key" {
		t.Fatalf("expected active credential 'new-key', got %q (ok=%v)", cred.Token(), ok)
	}
	if cred.Source() != SourceRecord {
		t.Errorf("expected source %q, got %q", SourceRecord, cred.Source())
	}

	// Written file is valid JSON with exactly the token field and 0600.
	path := filepath.Join(dir, recordFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read record: %v", err)
	}
	var rec map[string]string
	if err := json.Unmarshal(data, &rec); err != nil {
		t.Fatalf("record is not valid JSON: %v", err)
	}
	if rec["token"] != "new-key" {
		t.Errorf("expected token 'new-key', got %q", rec["token"])
	}
	if len(rec) != 1 {
		t.Errorf("record must contain only the token field, got %v", rec)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat record: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("expected permissions 0600, got %o", perm)
	}

	// No temp files left behind.
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("expected only the record file in %s, got %d entries", dir, len(entries))
	}
}

func TestPersistRejectsEmptyToken(t *testing.T) {
	r := newResolver(t.TempDir())

	err := r.Persist("   ")
	if err == nil {
		t.Fatal("expected error for empty token")
	}
	if !errors.Is(err, model.ErrInvalidInput) {
		t.Errorf("expected InvalidInput, got %v", err)
	}
	if _, statErr := os.Stat(filepath.Join(r.Dir(), recordFileName)); !os.IsNotExist(statErr) {
		t.Error("no record file should be written for an invalid token")
	}
}

func TestPersistOverwritesExistingRecord(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(EnvAPIKey, "")
	writeTestRecord(t, dir, `{"token": "old-key"}`)
	r := newResolver(dir)

	if err := r.Persist("replacement"); err != nil {
		t.Fatalf("persist: %v", err)
	}
	token, err := readRecord(filepath.Join(dir, recordFileName))
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if token != "replacement" {
		t.Errorf("expected 'replacement', got %q", token)
	}
}

func TestStatusDoesNotLeakToken(t *testing.T) {
	t.Setenv(EnvAPIKey, "super-secret")
	r := newResolver(t.TempDir())

	status := r.Status()
	if !status.Configured {
		t.Fatal("expected configured status")
	}
	if status.Source != SourceEnvironment {
		t.Errorf("expected source %q, got %q", SourceEnvironment, status.Source)
	}
}
