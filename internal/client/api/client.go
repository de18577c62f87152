// Package api contains the client-side contract for talking to the
// CodeCampus backend and its HTTP implementation.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic contract (see the Client interface): the OAuth
//     code exchange, profile read/update for the current bearer token, and
//     a liveness probe.
//  2. A concrete REST implementation (see HTTPClient) that injects the
//     bearer token, unwraps the backend's response envelope, and maps
//     transport failures to sentinel errors.
//
// # Error Handling
//
// Common conditions are exposed as sentinel errors that callers can match
// with errors.Is: common.ErrUnauthorized for rejected credentials,
// common.ErrUnavailable for network failures and 5xx responses. Rejections
// the backend explains (envelope success=false, other 4xx) surface as *Error
// carrying the backend message.
//
// All operations accept context.Context and must honor cancellation/timeouts.
package api

import (
	"context"
	"fmt"

	"github.com/codecampus/campus-cli/internal/client/models"
)

// Client is the API contract consumed by the auth controller.
type Client interface {
	// ExchangeCode trades a Google OAuth authorization code for a session
	// token and the user record, creating the account on first sign-in.
	ExchangeCode(ctx context.Context, code string) (*models.AuthResult, error)

	// GetProfile returns the authoritative user record for the bearer token.
	GetProfile(ctx context.Context, token string) (*models.User, error)

	// UpdateProfile persists a partial profile mutation and returns the
	// updated authoritative record.
	UpdateProfile(ctx context.Context, token string, update *models.ProfileUpdate) (*models.User, error)

	// Ping checks backend liveness.
	Ping(ctx context.Context) error

	// Close releases underlying transport resources.
	Close() error
}

// Error is a rejection the backend explained: a success=false envelope or a
// client error status outside the unauthorized family.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend rejected request (status %d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("backend rejected request (status %d)", e.Status)
}
