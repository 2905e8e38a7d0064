package services

import (
	"errors"
	"fmt"
)

// ErrMissingAPIKey is returned when neither the server nor the session
// supplied a provider API key for a call that needs one.
var ErrMissingAPIKey = errors.New("no provider API key configured")

// ErrStoreUnavailable is returned when the vector store never became
// reachable during startup readiness probing.
var ErrStoreUnavailable = errors.New("vector store unavailable")

// MissingSecretError reports a credential absent from both the deployment
// secrets file and the process environment.
type MissingSecretError struct {
	Key string
}

func (e *MissingSecretError) Error() string {
	return fmt.Sprintf("secret %q not found in secrets file or environment", e.Key)
}

// ErrorKind classifies which external call a ProviderError came from, so
// callers can decide display-vs-propagate policy per kind instead of each
// client hardcoding its own.
type ErrorKind string

const (
	KindTranscription ErrorKind = "transcription"
	KindEmbedding     ErrorKind = "embedding"
	KindStore         ErrorKind = "store"
)

// ProviderError wraps a failure from one of the external services.
type ProviderError struct {
	Kind ErrorKind
	Err  error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// IsKind reports whether err is a ProviderError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var pe *ProviderError
	return errors.As(err, &pe) && pe.Kind == kind
}
