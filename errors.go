package studyguard

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthorized rejects a request with no, invalid, or expired
	// credentials. Final for the request; the caller re-authenticates.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden rejects a valid credential with insufficient scope.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidCredentials rejects a login with a wrong identifier or
	// password.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserNotFound is returned by the store when no user matches.
	ErrUserNotFound = errors.New("user not found")
	// ErrOrgNotFound is returned by the store when no organization matches.
	ErrOrgNotFound = errors.New("organization not found")
	// ErrInvalidToken rejects a refresh token that fails verification or
	// has no live record.
	ErrInvalidToken = errors.New("invalid refresh token")
	// ErrConcurrentModification is the store's compare-and-swap failure.
	// Rotation maps it to [ErrInvalidToken] rather than retrying: a lost
	// race is treated as a used token, forcing re-authentication.
	ErrConcurrentModification = errors.New("concurrent modification")
	// ErrEngineNotReady is returned when the engine was not built.
	ErrEngineNotReady = errors.New("engine not initialized")
)

// ErrTokenReused flags a structurally valid refresh token presented
// after its record was already rotated away. It wraps [ErrInvalidToken]
// so boundary callers need only test for the broader sentinel.
var ErrTokenReused = fmt.Errorf("%w: reuse detected", ErrInvalidToken)
