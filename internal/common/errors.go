// Package common defines shared constants and sentinel errors used across
// the repository, service and transport layers. Callers should use errors.Is
// to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors.
	ErrorInternal   = errors.New("internal error")
	ErrorValidation = errors.New("validation error")
	ErrUpstream     = errors.New("upstream unavailable")

	// Credential check failed. Unknown email and wrong password share this
	// value so callers cannot tell them apart.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Bearer token is malformed, mis-signed or expired.
	ErrInvalidToken = errors.New("invalid token")

	// Umbrella surfaced at the API boundary for any failed authentication.
	ErrUnauthenticated = errors.New("unauthenticated")

	// Authenticated, but the role is not allowed for the operation.
	ErrForbidden = errors.New("forbidden")
)
