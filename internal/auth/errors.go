package auth

import "errors"

// Verification failure classes. The HTTP layer treats revoked and
// blacklisted identically to a bad signature so that responses never
// reveal revocation state; the distinction exists for logs and tests.
var (
	// ErrInvalidToken covers signature, format and expiry failures.
	ErrInvalidToken = errors.New("invalid or expired token")

	// ErrTokenRevoked means the token decoded fine but its jti has no
	// allow-list record; it was revoked or the record expired.
	ErrTokenRevoked = errors.New("token not found in revocation store - may have been revoked")

	// ErrTokenBlacklisted means an explicit deny-list record exists for
	// the raw token.
	ErrTokenBlacklisted = errors.New("token has been blacklisted")

	// ErrNoCredentials signals that an authentication strategy found
	// nothing to act on; the orchestrator moves to the next strategy.
	ErrNoCredentials = errors.New("no credentials presented")

	// ErrMissingToken signals a bearer header whose token part is empty
	// or a literal "null"/"undefined" placeholder sent by broken clients.
	ErrMissingToken = errors.New("authentication token is missing")
)

// IsVerificationFailure reports whether err is an expected token
// verification failure rather than an infrastructure error.
func IsVerificationFailure(err error) bool {
	return errors.Is(err, ErrInvalidToken) ||
		errors.Is(err, ErrTokenRevoked) ||
		errors.Is(err, ErrTokenBlacklisted)
}
