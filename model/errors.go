// Error taxonomy surfaced to protocol clients.
//
// Information Hiding:
// - Internal failure text never crosses the protocol boundary unclassified
// - Classification logic centralized in Classify
// - Callers match on sentinel kinds, not message text

package model

import (
	"errors"
	"fmt"
)

// Sentinel kinds for the closed error taxonomy. Every failure that reaches
// a protocol client wraps exactly one of these.
var (
	// ErrNotConfigured means no credential is active. Recoverable by
	// calling the configure operation.
	ErrNotConfigured = errors.New("not configured")

	// ErrInvalidInput means a malformed or out-of-range argument.
	ErrInvalidInput = errors.New("invalid input")

	// ErrGenerationFailed means the remote generation call itself failed
	// (network, quota, provider error). The cause is surfaced verbatim.
	ErrGenerationFailed = errors.New("generation failed")

	// ErrNoPriorImage means continue-editing was called before any
	// generation produced an artifact in this session.
	ErrNoPriorImage = errors.New("no prior image")

	// ErrStalePriorImage means the tracked last artifact no longer exists
	// on disk (moved or deleted externally).
	ErrStalePriorImage = errors.New("stale prior image")

	// ErrInternal is the catch-all for unclassified failures. The original
	// message is always preserved.
	ErrInternal = errors.New("internal error")
)

// ToolError pairs a taxonomy kind with a human-readable message.
type ToolError struct {
	Kind error
	Msg  string
}

func (e *ToolError) Error() string {
	if e == nil {
		return ""
	}
	if e.Msg == "" {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%s: %s", e.Kind.Error(), e.Msg)
}

func (e *ToolError) Unwrap() error { return e.Kind }

// NotConfiguredf creates a NotConfigured error.
func NotConfiguredf(format string, args ...any) error {
	return &ToolError{Kind: ErrNotConfigured, Msg: fmt.Sprintf(format, args...)}
}

// InvalidInputf creates an InvalidInput error.
func InvalidInputf(format string, args ...any) error {
	return &ToolError{Kind: ErrInvalidInput, Msg: fmt.Sprintf(format, args...)}
}

// GenerationFailedf creates a GenerationFailed error carrying the cause text.
func GenerationFailedf(format string, args ...any) error {
	return &ToolError{Kind: ErrGenerationFailed, Msg: fmt.Sprintf(format, args...)}
}

// NoPriorImagef creates a NoPriorImage error.
func NoPriorImagef(format string, args ...any) error {
	return &ToolError{Kind: ErrNoPriorImage, Msg: fmt.Sprintf(format, args...)}
}

// StalePriorImagef creates a StalePriorImage error.
func StalePriorImagef(format string, args ...any) error {
	return &ToolError{Kind: ErrStalePriorImage, Msg: fmt.Sprintf(format, args...)}
}

// Stable codes as seen by protocol clients.
const (
	CodeNotConfigured    = "NOT_CONFIGURED"
	CodeInvalidInput     = "INVALID_INPUT"
	CodeGenerationFailed = "GENERATION_FAILED"
	CodeNoPriorImage     = "NO_PRIOR_IMAGE"
	CodeStalePriorImage  = "STALE_PRIOR_IMAGE"
	CodeInternalError    = "INTERNAL_ERROR"
)

// Classify maps any error onto the closed taxonomy, returning the stable
// code and the message to show the caller. Unrecognized errors become
// InternalError with the original message preserved.
func Classify(err error) (code, message string) {
	switch {
	case errors.Is(err, ErrNotConfigured):
		return CodeNotConfigured, messageOf(err, "No API key is configured. Use configure_credential to set one.")
	case errors.Is(err, ErrInvalidInput):
		return CodeInvalidInput, messageOf(err, "invalid input")
	case errors.Is(err, ErrGenerationFailed):
		return CodeGenerationFailed, messageOf(err, "generation failed")
	case errors.Is(err, ErrNoPriorImage):
		return CodeNoPriorImage, messageOf(err, "no image has been generated in this session yet")
	case errors.Is(err, ErrStalePriorImage):
		return CodeStalePriorImage, messageOf(err, "the last generated image no longer exists on disk")
	default:
		return CodeInternalError, err.Error()
	}
}

// messageOf prefers the ToolError message over the bare sentinel text.
func messageOf(err error, fallback string) string {
	var te *ToolError
	if errors.As(err, &te) && te.Msg != "" {
		return te.Msg
	}
	return fallback
}
