package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/codecampus/campus-cli/internal/client/models"
	"github.com/codecampus/campus-cli/internal/common"
	"github.com/stretchr/testify/require"
)

// ---- helpers ----

func respond(t *testing.T, w http.ResponseWriter, status int, body string) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err := w.Write([]byte(body))
	require.NoError(t, err)
}

func newClient(t *testing.T, handler http.HandlerFunc) *HTTPClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewHTTPClient(srv.URL, 5*time.Second)
}

// ---- TESTS ----

func TestExchangeCodeSuccess(t *testing.T) {
	var gotBody map[string]string
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/google-oauth", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		respond(t, w, http.StatusOK, `{
			"success": true,
			"data": {
				"token": "T2",
				"is_new_user": true,
				"user": {"id": "u2", "email": "a@b.com", "role": "user"}
			}
		}`)
	})

	result, err := c.ExchangeCode(context.Background(), "code123")
	require.NoError(t, err)
	require.Equal(t, "code123", gotBody["code"])
	require.Equal(t, "T2", result.Token)
	require.True(t, result.IsNewUser)
	require.Equal(t, "u2", result.User.ID)
}

func TestExchangeCodeRejected(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		respond(t, w, http.StatusOK, `{"success": false, "message": "invalid authorization code"}`)
	})

	_, err := c.ExchangeCode(context.Background(), "bad")
	require.Error(t, err)

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, "invalid authorization code", apiErr.Message)
}

func TestExchangeCodeMissingToken(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		respond(t, w, http.StatusOK, `{"success": true, "data": {"user": {"id": "u1"}}}`)
	})

	_, err := c.ExchangeCode(context.Background(), "code")
	require.Error(t, err)
}

func TestGetProfileSendsBearerToken(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/profile", r.URL.Path)
		require.Equal(t, "Bearer T1", r.Header.Get("Authorization"))
		respond(t, w, http.StatusOK, `{"success": true, "data": {"id": "u1", "email": "a@b.com"}}`)
	})

	user, err := c.GetProfile(context.Background(), "T1")
	require.NoError(t, err)
	require.Equal(t, "u1", user.ID)
	require.Equal(t, "a@b.com", user.Email)
}

func TestGetProfileUnauthorized(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		respond(t, w, http.StatusUnauthorized, `{"success": false, "message": "token expired"}`)
	})

	_, err := c.GetProfile(context.Background(), "T_BAD")
	require.ErrorIs(t, err, common.ErrUnauthorized)
}

func TestGetProfileServerError(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		respond(t, w, http.StatusInternalServerError, `{"success": false}`)
	})

	_, err := c.GetProfile(context.Background(), "T1")
	require.ErrorIs(t, err, common.ErrUnavailable)
}

func TestNetworkFailureMapsToUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	c := NewHTTPClient(srv.URL, time.Second)
	srv.Close()

	_, err := c.GetProfile(context.Background(), "T1")
	require.ErrorIs(t, err, common.ErrUnavailable)
}

func TestUpdateProfileSendsPartialBody(t *testing.T) {
	var raw map[string]any
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		require.Equal(t, "/profile", r.URL.Path)
		require.Equal(t, "Bearer T1", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		respond(t, w, http.StatusOK, `{
			"success": true,
			"data": {"id": "u1", "profile": {"bio": "hi"}}
		}`)
	})

	bio := "hi"
	user, err := c.UpdateProfile(context.Background(), "T1", &models.ProfileUpdate{Bio: &bio})
	require.NoError(t, err)
	require.Equal(t, "hi", user.Profile.Bio)

	// Only the set field crosses the wire.
	require.Equal(t, map[string]any{"bio": "hi"}, raw)
}

func TestUpdateProfileRejectsInvalidTrackLocally(t *testing.T) {
	called := false
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) { called = true })

	bad := models.CodingTrack("quantum")
	_, err := c.UpdateProfile(context.Background(), "T1", &models.ProfileUpdate{CodingTrack: &bad})
	require.ErrorIs(t, err, common.ErrInvalidTrack)
	require.False(t, called, "invalid update must not reach the backend")
}

func TestPing(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/health", r.URL.Path)
		respond(t, w, http.StatusOK, `{"success": true}`)
	})
	require.NoError(t, c.Ping(context.Background()))
}

func TestContextCancellation(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		respond(t, w, http.StatusOK, `{"success": true, "data": {}}`)
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := c.GetProfile(ctx, "T1")
	require.Error(t, err)
}
