// Package model provides domain types shared across packages.
package model

import "time"

// LoadedImage is an image read from local disk, ready to be sent to the
// provider as an inline request part.
type LoadedImage struct {
	Path     string
	MimeType string
	Data     []byte
}

// PersistedImage is a generated artifact written to durable storage.
// The orchestrator retains only the path reference; the bytes belong to
// the filesystem once written.
type PersistedImage struct {
	FilePath string `json:"file_path"`
	MimeType string `json:"mime_type"`
}

// GenerationResult is the uniform outcome of one generation or edit call.
type GenerationResult struct {
	// NarrativeText is the provider's text parts concatenated in order.
	// May be empty.
	NarrativeText string

	// ProducedArtifacts lists every image written during this call, in
	// the order the provider returned them.
	ProducedArtifacts []PersistedImage

	// Warnings records non-fatal degradations, currently only skipped
	// reference images and failed history writes.
	Warnings []string
}

// LastImageInfo reports the session's tracked artifact. Absence of a prior
// image and a vanished file are informational states, never errors.
type LastImageInfo struct {
	Path      string
	Exists    bool
	SizeBytes int64
	ModTime   time.Time
}
