package authclient

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrNoCredentials means the store holds no refresh token to fall back on.
	ErrNoCredentials = errors.New("no credentials available")
	// ErrRefreshRejected means the server refused the refresh token.
	ErrRefreshRejected = errors.New("token refresh rejected")
	// ErrMustReauthenticate is the terminal client state. The store has been
	// cleared and the caller should send the user back to login.
	ErrMustReauthenticate = errors.New("must re-authenticate")
)

// APIError is a non-2xx answer from an auth endpoint.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("auth api: status %d", e.StatusCode)
	}
	return fmt.Sprintf("auth api: status %d: %s", e.StatusCode, e.Message)
}

type reauthError struct {
	cause error
}

func mustReauthenticate(cause error) error {
	return &reauthError{cause: cause}
}

func (e *reauthError) Error() string {
	return ErrMustReauthenticate.Error() + ": " + e.cause.Error()
}

// Unwrap exposes both the terminal sentinel and the underlying cause to errors.Is.
func (e *reauthError) Unwrap() []error {
	return []error{ErrMustReauthenticate, e.cause}
}

// transientError marks failures that say nothing about the credentials
// themselves, such as an unreachable store or a timed out exchange.
type transientError struct {
	err error
}

func transient(err error) error {
	return &transientError{err: err}
}

func (e *transientError) Error() string { return e.err.Error() }

func (e *transientError) Unwrap() error { return e.err }

func isTransient(err error) bool {
	var te *transientError
	return errors.As(err, &te)
}
