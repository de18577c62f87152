// Package oauth implements the native-app side of the Google sign-in flow:
// building the consent URL and catching the authorization code on a one-shot
// loopback listener.
package oauth

import (
	"net/url"

	"github.com/google/uuid"
)

// googleAuthEndpoint is Google's OAuth 2.0 consent endpoint.
const googleAuthEndpoint = "https://accounts.google.com/o/oauth2/v2/auth"

// Scopes requested for sign-in. The backend only needs identity claims.
const scopes = "openid email profile"

// NewState returns a fresh unguessable state parameter for one consent round.
func NewState() string {
	return uuid.NewString()
}

// AuthURL builds the consent URL the user opens in a browser. redirectURI
// must match the loopback listener's callback address exactly.
func AuthURL(clientID, redirectURI, state string) string {
	v := url.Values{}
	v.Set("client_id", clientID)
	v.Set("redirect_uri", redirectURI)
	v.Set("response_type", "code")
	v.Set("scope", scopes)
	v.Set("state", state)
	return googleAuthEndpoint + "?" + v.Encode()
}
