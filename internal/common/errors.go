// Package common contains shared constants and sentinel errors used across
// the CodeCampus client. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Backend call outcomes (generic flow control).
	ErrUnauthorized = errors.New("unauthorized")
	ErrUnavailable  = errors.New("server unavailable")

	// Session lifecycle errors.
	ErrSessionPartial   = errors.New("partial session data")
	ErrNotSignedIn      = errors.New("not signed in")
	ErrSignInPending    = errors.New("sign-in already in progress")
	ErrSignInSuperseded = errors.New("sign-in superseded by a newer operation")

	// Validation errors.
	ErrInvalidTrack = errors.New("invalid coding track")
)
