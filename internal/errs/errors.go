// Package errs defines the closed set of sentinel errors shared across the
// service. Callers match them with errors.Is; wrapping preserves upstream
// detail for logs.
package errs

import "errors"

var (
	// Validation errors — caller-visible, never retried.
	ErrDuplicateEmail = errors.New("email already exists")
	ErrNoFilePayload  = errors.New("no file uploaded")

	// Authentication errors. The message is identical for unknown email and
	// wrong password so callers cannot enumerate accounts.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Repository-level errors.
	ErrNotFound    = errors.New("not found")
	ErrPersistence = errors.New("persistence error")

	// Upstream collaborator errors. Unavailable is transient (network error,
	// timeout) and eligible for retry; Rejected is a non-success status from
	// the remote service and is never retried.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	ErrUpstreamRejected    = errors.New("upstream rejected request")

	// ErrConfiguration reports missing required configuration, e.g. an empty
	// token signing secret.
	ErrConfiguration = errors.New("configuration error")
)
