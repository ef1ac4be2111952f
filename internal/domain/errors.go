package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidTown signals a blank town query.
	ErrInvalidTown = errors.New("town is required")
	// ErrLocationNotFound signals that no geocoding source resolved the town.
	ErrLocationNotFound = errors.New("location not found")

	// ErrAuth signals that the notice backend rejected our credentials.
	ErrAuth = errors.New("notice backend authentication failed")
	// ErrNetwork signals a transport failure talking to the notice backend.
	ErrNetwork = errors.New("notice backend unreachable")
	// ErrUpstream signals any other notice backend failure.
	ErrUpstream = errors.New("notice backend error")

	// ErrGenerationFailure signals that the text generation provider failed.
	ErrGenerationFailure = errors.New("summary generation failed")
	// ErrLockTimeout signals that the summary lock was not acquired in time.
	ErrLockTimeout = errors.New("summary lock wait timed out")
)

// ErrorKind classifies failures for callers and telemetry.
type ErrorKind string

// Failure kinds. The first three are notice backend classifications.
const (
	KindAuth              ErrorKind = "auth_error"
	KindNetwork           ErrorKind = "network_error"
	KindUpstream          ErrorKind = "upstream_error"
	KindGenerationFailure ErrorKind = "generation_failure"
	KindLockTimeout       ErrorKind = "lock_timeout"
	KindNotFound          ErrorKind = "not_found"
)

// UpstreamError carries a classified notice backend failure with the
// message shown to callers.
type UpstreamError struct {
	Kind    ErrorKind
	Status  int // HTTP status, 0 when no response was received
	Message string
}

func (e *UpstreamError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s (status %d): %s", e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap maps the kind onto its sentinel so callers can use errors.Is.
func (e *UpstreamError) Unwrap() error {
	switch e.Kind {
	case KindAuth:
		return ErrAuth
	case KindNetwork:
		return ErrNetwork
	default:
		return ErrUpstream
	}
}

// KindOf returns the failure kind for err. Unclassified errors are upstream errors.
func KindOf(err error) ErrorKind {
	var ue *UpstreamError
	if errors.As(err, &ue) {
		return ue.Kind
	}
	switch {
	case errors.Is(err, ErrAuth):
		return KindAuth
	case errors.Is(err, ErrNetwork):
		return KindNetwork
	case errors.Is(err, ErrGenerationFailure):
		return KindGenerationFailure
	case errors.Is(err, ErrLockTimeout):
		return KindLockTimeout
	case errors.Is(err, ErrLocationNotFound):
		return KindNotFound
	default:
		return KindUpstream
	}
}
