// Package common contains shared constants and sentinel errors used across
// CodeCampus client components.
package common

// AuthorizationHeaderName is the HTTP header used to carry the bearer token
// on outbound authenticated requests.
const AuthorizationHeaderName = "Authorization"

// BearerPrefix is prepended to the token value in the Authorization header.
const BearerPrefix = "Bearer "

// Session store keys. Both are written together on sign-in and removed
// together on sign-out; one without the other is treated as corrupt.
const (
	SessionKeyToken = "auth_token"
	SessionKeyUser  = "user_data"
)
