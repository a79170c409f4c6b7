// Package moderr defines the sentinel errors shared across the moderation
// pipeline. Handlers map these onto HTTP statuses so callers can tell
// "you're not allowed" apart from "this no longer exists".
package moderr

import "errors"

var (
	// ErrUnauthenticated means the request carried no valid identity.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrNotAdmin means the caller is authenticated but their email is not
	// in the admin directory.
	ErrNotAdmin = errors.New("caller is not an admin")

	// ErrInvalidArgument means required input was missing or malformed.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNotFound means the referenced media record does not exist.
	ErrNotFound = errors.New("media record not found")

	// ErrInvalidState means the record's current state makes the requested
	// operation impossible (e.g. approving media with no quarantine object).
	ErrInvalidState = errors.New("operation not allowed in current state")

	// ErrStorage wraps object store failures that must abort the operation.
	ErrStorage = errors.New("object storage operation failed")
)
