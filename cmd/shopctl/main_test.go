package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/storefront/pkg/authclient"
)

func newStorefront(t *testing.T) *httptest.Server {
	t.Helper()
	sign := func(claims jwt.MapClaims) string {
		s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("cli-test"))
		require.NoError(t, err)
		return s
	}
	access := sign(jwt.MapClaims{"id": "u1", "exp": time.Now().Add(time.Hour).Unix()})
	refresh := sign(jwt.MapClaims{"id": "u1", "type": "refresh", "exp": time.Now().Add(time.Hour).Unix()})

	mux := http.NewServeMux()
	mux.HandleFunc("/api/user/login", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"user":         map[string]string{"id": "u1", "name": "Ada", "email": "ada@example.com"},
			"token":        access,
			"refreshToken": refresh,
			"expiresIn":    "1d",
		})
	})
	mux.HandleFunc("/api/user/profile", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+access {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"user":{"name":"Ada"}}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestRun_SessionLifecycle(t *testing.T) {
	ctx := context.Background()
	srv := newStorefront(t)
	base := []string{"-api", srv.URL, "-session", filepath.Join(t.TempDir(), "s.db")}
	cmd := func(args ...string) (string, error) {
		var out bytes.Buffer
		err := run(ctx, append(append([]string{}, base...), args...), &out)
		return out.String(), err
	}

	out, err := cmd("login", "-email", "ada@example.com", "-password", "pw")
	require.NoError(t, err)
	assert.Contains(t, out, "signed in as Ada <ada@example.com>")

	out, err = cmd("get", "/api/user/profile")
	require.NoError(t, err)
	assert.Contains(t, out, "200 OK")
	assert.Contains(t, out, `"name":"Ada"`)

	out, err = cmd("logout")
	require.NoError(t, err)
	assert.Contains(t, out, "logged out")

	_, err = cmd("get", "/api/user/profile")
	assert.ErrorIs(t, err, authclient.ErrMustReauthenticate)
}

func TestRun_BadInvocation(t *testing.T) {
	session := filepath.Join(t.TempDir(), "s.db")
	var out bytes.Buffer

	assert.Error(t, run(context.Background(), nil, &out))
	assert.ErrorContains(t, run(context.Background(), []string{"-session", session, "dance"}, &out), "unknown command")
	assert.ErrorContains(t, run(context.Background(), []string{"-session", session, "get"}, &out), "exactly one PATH")
}
