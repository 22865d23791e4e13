// Package config provides layered credential resolution and persistence.
//
// Information Hiding:
// - Resolution order (environment, then config record) fixed internally
// - Config record location and file permissions encapsulated
// - Token value never exposed through Status

package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fjacquet/Nano-Banana-MCP/model"
)

// EnvAPIKey is the environment variable carrying the credential token.
// It always takes precedence over the config record.
const EnvAPIKey = "GEMINI_API_KEY"

const (
	configDirName  = ".nanobanana"
	recordFileName = "config.json"
)

// Source labels where the active credential came from.
type Source string

const (
	SourceEnvironment Source = "environment"
	SourceRecord      Source = "config record"
)

// Credential is the secret token authorizing remote generation calls.
// The zero value is "unconfigured".
type Credential struct {
	token  string
	source Source
}

// Token returns the secret value. Callers must not log it.
func (c Credential) Token() string { return c.token }

// Source returns the label of where the credential was resolved from.
func (c Credential) Source() Source { return c.source }

// Active reports whether a credential is present.
func (c Credential) Active() bool { return c.token != "" }

// record is the persisted config file schema. The schema is closed:
// unknown fields are rejected on read.
type record struct {
	Token string `json:"token"`
}

// Status describes the resolver state for observability. It carries no
// token material.
type Status struct {
	Configured bool
	Source     Source
}

// Resolver holds the process-wide active credential. Resolution happens
// once at construction; afterwards the credential only changes through
// Persist. A mutex guards against pipelined tool invocations.
type Resolver struct {
	mu   sync.Mutex
	dir  string
	cred Credential
}

// NewResolver resolves the credential from the default layered sources.
// An unconfigured result is not an error; tools report NotConfigured
// when they actually need the credential.
func NewResolver() *Resolver {
	return newResolver(defaultDir())
}

func newResolver(dir string) *Resolver {
	r := &Resolver{dir: dir}
	r.cred = resolve(dir)
	return r
}

// defaultDir returns the per-user config directory. When the home
// directory cannot be determined, the record lives under the working
// directory so the server still functions.
func defaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return configDirName
	}
	return filepath.Join(home, configDirName)
}

// resolve applies the fixed precedence: environment variable first, then
// the config record. No network calls, no retries.
func resolve(dir string) Credential {
	if token := strings.TrimSpace(os.Getenv(EnvAPIKey)); token != "" {
		return Credential{token: token, source: SourceEnvironment}
	}
	if token, err := readRecord(filepath.Join(dir, recordFileName)); err == nil {
		return Credential{token: token, source: SourceRecord}
	}
	return Credential{}
}

// readRecord loads and validates the config record. Any unreadable or
// schema-invalid file counts as "absent".
func readRecord(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	var rec record
	if err := dec.Decode(&rec); err != nil {
		return "", fmt.Errorf("invalid config record: %w", err)
	}
	if strings.TrimSpace(rec.Token) == "" {
		return "", fmt.Errorf("config record has an empty token")
	}
	return rec.Token, nil
}

// Credential returns the active credential, if any.
func (r *Resolver) Credential() (Credential, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cred, r.cred.Active()
}

// Configured reports whether a credential is active.
func (r *Resolver) Configured() bool {
	_, ok := r.Credential()
	return ok
}

// Status reports resolver state without leaking the token.
func (r *Resolver) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Status{Configured: r.cred.Active(), Source: r.cred.source}
}

// Persist validates the token, writes the config record atomically with
// owner-only permissions, and makes the token the active in-memory
// credential immediately. No re-read from disk happens.
func (r *Resolver) Persist(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return model.InvalidInputf("token must be a non-empty string")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := writeRecord(r.dir, record{Token: token}); err != nil {
		return fmt.Errorf("failed to persist credential: %w", err)
	}
	r.cred = Credential{token: token, source: SourceRecord}
	return nil
}

// writeRecord replaces the config record as a whole file: the content is
// written to a temp file in the same directory and renamed over the
// target, so a crash never leaves a partially-written record.
func writeRecord(dir string, rec record) error {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(dir, recordFileName+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, filepath.Join(dir, recordFileName))
}

// Dir returns the directory holding the config record and the history
// database.
func (r *Resolver) Dir() string { return r.dir }
