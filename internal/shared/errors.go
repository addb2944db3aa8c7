// Package shared contains sentinel errors and small utility helpers used
// across Confide components. Callers match the errors with errors.Is.
package shared

import "errors"

var (
	// Repository-level errors. Never surfaced to end callers verbatim;
	// services translate them to the uniform failures below.
	ErrorNotFound = errors.New("not found")

	// Generic service-level errors.
	ErrorInternal = errors.New("internal error")

	// Registration and login.
	ErrorValidation         = errors.New("validation error")
	ErrorDuplicateUsername  = errors.New("duplicate username")
	ErrorInvalidCredentials = errors.New("invalid credentials")

	// Federated login.
	ErrorProvider             = errors.New("identity provider error")
	ErrorAuthenticationFailed = errors.New("authentication failed")

	// Sessions and authorization. ErrorSessionInvalid covers malformed,
	// expired, revoked and dangling tokens alike.
	ErrorSessionInvalid = errors.New("session invalid")
	ErrorUnauthorized   = errors.New("unauthorized")
)
