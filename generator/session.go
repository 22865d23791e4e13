package generator

import "sync"

// Session tracks the last produced artifact for iterative editing. State
// lives for the process lifetime and is never persisted. One invocation
// is in flight at a time, but the mutex keeps a pipelined transport safe.
type Session struct {
	mu               sync.Mutex
	lastArtifactPath string
}

// NewSession creates an empty session.
func NewSession() *Session {
	return &Session{}
}

// LastArtifactPath returns the tracked artifact path, if any.
func (s *Session) LastArtifactPath() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastArtifactPath, s.lastArtifactPath != ""
}

// SetLastArtifact replaces the tracked artifact path. Called only after
// a generated image has been written to disk.
func (s *Session) SetLastArtifact(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastArtifactPath = path
}
