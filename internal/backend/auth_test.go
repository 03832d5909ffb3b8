package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	apperrors "staffhub/pkg/errors"
)

func newIdentityServer(t *testing.T, handler http.HandlerFunc) *AuthAPI {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewAuthAPI(srv.URL, "anon-key", "service-key", srv.Client(), zap.NewNop())
}

func TestAuthAPI_SignInWithPassword(t *testing.T) {
	api := newIdentityServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/v1/token", r.URL.Path)
		assert.Equal(t, "password", r.URL.Query().Get("grant_type"))
		assert.Equal(t, "anon-key", r.Header.Get("apikey"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "ana@acme.cl", body["email"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"at","refresh_token":"rt","token_type":"bearer","expires_in":3600,
			"user":{"id":"2b6c9a3e-1111-4f2a-9d2e-2a3b4c5d6e7f","email":"ana@acme.cl","app_metadata":{"role":"admin"}}}`))
	})

	session, err := api.SignInWithPassword(context.Background(), "ana@acme.cl", "secret")
	require.NoError(t, err)
	assert.Equal(t, "at", session.AccessToken)
	require.NotNil(t, session.User)
	assert.Equal(t, "admin", session.User.AppRole())
}

func TestAuthAPI_InvalidGrant(t *testing.T) {
	api := newIdentityServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"invalid_grant","error_description":"Invalid login credentials"}`))
	})

	_, err := api.SignInWithPassword(context.Background(), "ana@acme.cl", "wrong")
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	assert.Equal(t, http.StatusUnauthorized, apperrors.StatusCode(err))
}

func TestAuthAPI_UnauthorizedOutsidePasswordGrant(t *testing.T) {
	api := newIdentityServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/auth/v1/token" && r.URL.Query().Get("grant_type") == "password" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_grant","error_description":"Invalid login credentials"}`))
			return
		}
		if r.URL.Path == "/auth/v1/token" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_grant","error_description":"Invalid Refresh Token"}`))
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"msg":"invalid JWT"}`))
	})

	_, err := api.GetUser(context.Background(), "expired")
	assert.NotErrorIs(t, err, apperrors.ErrInvalidCredentials)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	assert.Equal(t, apperrors.KindUnauthorized, apperrors.KindOf(err))

	_, err = api.RefreshSession(context.Background(), "stale")
	assert.NotErrorIs(t, err, apperrors.ErrInvalidCredentials)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	err = api.SignOut(context.Background(), "expired")
	assert.Equal(t, apperrors.KindUnauthorized, apperrors.KindOf(err))

	_, err = api.SignInWithPassword(context.Background(), "ana@acme.cl", "wrong")
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestAuthAPI_RejectedServiceKey(t *testing.T) {
	api := newIdentityServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"msg":"Invalid API key"}`))
	})

	_, err := api.ListUsers(context.Background(), 1, 50)
	assert.NotErrorIs(t, err, apperrors.ErrInvalidCredentials)
	assert.Equal(t, apperrors.KindConfiguration, apperrors.KindOf(err))
}

func TestAuthAPI_UpstreamFailure(t *testing.T) {
	api := newIdentityServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := api.GetUser(context.Background(), "token")
	assert.Equal(t, apperrors.KindUpstream, apperrors.KindOf(err))
}

func TestAuthAPI_AdminUsesServiceKey(t *testing.T) {
	api := newIdentityServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/v1/admin/users", r.URL.Path)
		assert.Equal(t, "service-key", r.Header.Get("apikey"))
		assert.Equal(t, "Bearer service-key", r.Header.Get("Authorization"))
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		_, _ = w.Write([]byte(`{"users":[{"id":"u1","email":"a@acme.cl"},{"id":"u2","email":"b@acme.cl"}]}`))
	})

	users, err := api.ListUsers(context.Background(), 2, 50)
	require.NoError(t, err)
	assert.Len(t, users, 2)
}

func TestAuthAPI_AdminWithoutServiceKey(t *testing.T) {
	api := NewAuthAPI("http://127.0.0.1:1", "anon-key", "", nil, zap.NewNop())

	err := api.DeleteUser(context.Background(), "u1")
	assert.Equal(t, apperrors.KindConfiguration, apperrors.KindOf(err))
}

func TestAuthAPI_DeleteUnknownUser(t *testing.T) {
	api := newIdentityServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"msg":"User not found"}`))
	})

	err := api.DeleteUser(context.Background(), "missing")
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
}

func TestAuthAPI_NotConfigured(t *testing.T) {
	api := NewAuthAPI("", "", "", nil, zap.NewNop())

	assert.False(t, api.Available())
	_, err := api.SignInWithPassword(context.Background(), "a@b.cl", "x")
	assert.ErrorIs(t, err, apperrors.ErrBackendUnavailable)
}
