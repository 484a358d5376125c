package ai

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrTimeout indicates the collaborator did not answer within the request ceiling.
	ErrTimeout = errors.New("ai: completion timed out")
	// ErrEmptyResponse indicates the collaborator answered without any text.
	ErrEmptyResponse = errors.New("ai: empty completion")
)

// ProviderError wraps a transport or API failure returned by a provider SDK.
type ProviderError struct {
	Provider   string
	StatusCode int
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s provider error (status %d): %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s provider error: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// Temporary reports whether retrying the same request may succeed.
func (e *ProviderError) Temporary() bool {
	if e.StatusCode == 0 {
		return true
	}
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= http.StatusInternalServerError
}
