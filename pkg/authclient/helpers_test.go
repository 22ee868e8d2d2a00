package authclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

func fixedClock() time.Time { return epoch }

var tokenSeq atomic.Int64

// signToken mints a token the way the server does, unique per call.
func signToken(t *testing.T, exp time.Time, refresh bool) string {
	t.Helper()
	claims := jwt.MapClaims{
		"id":  "user-1",
		"iat": exp.Add(-time.Hour).Unix(),
		"exp": exp.Unix(),
		"jti": fmt.Sprint(tokenSeq.Add(1)),
	}
	if refresh {
		claims["type"] = "refresh"
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("client-test"))
	require.NoError(t, err)
	return signed
}

// fakeAPI accepts access tokens it has issued and refresh tokens marked valid.
type fakeAPI struct {
	t   *testing.T
	srv *httptest.Server

	mu             sync.Mutex
	accepted       map[string]bool
	refreshable    map[string]bool
	refreshCalls   int
	protectedCalls int
	authHeaders    []string
	bodies         []string
	alwaysDeny     bool
	protectedCode  int
	refreshGate    chan struct{}
	refreshStarted chan struct{}
}

func newFakeAPI(t *testing.T) *fakeAPI {
	t.Helper()
	f := &fakeAPI{
		t:           t,
		accepted:    map[string]bool{},
		refreshable: map[string]bool{},
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/api/user/refresh", f.handleRefresh)
	mux.HandleFunc("/api/user/login", f.handleLogin)
	mux.HandleFunc("/api/orders", f.handleProtected)
	f.srv = httptest.NewServer(mux)
	t.Cleanup(f.srv.Close)
	return f
}

// issue returns a pair the fake will honour.
func (f *fakeAPI) issue(accessExp time.Time) Pair {
	pair := Pair{
		AccessToken:  signToken(f.t, accessExp, false),
		RefreshToken: signToken(f.t, accessExp.Add(7*24*time.Hour), true),
	}
	f.mu.Lock()
	f.accepted[pair.AccessToken] = true
	f.refreshable[pair.RefreshToken] = true
	f.mu.Unlock()
	return pair
}

func (f *fakeAPI) counts() (refresh, protected int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.refreshCalls, f.protectedCalls
}

// update mutates the fake's behaviour under its lock.
func (f *fakeAPI) update(fn func(f *fakeAPI)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(f)
}

func (f *fakeAPI) seen() (headers, bodies []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.authHeaders...), append([]string(nil), f.bodies...)
}

func (f *fakeAPI) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var body struct {
		RefreshToken string `json:"refreshToken"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)

	f.mu.Lock()
	f.refreshCalls++
	gate, started := f.refreshGate, f.refreshStarted
	ok := f.refreshable[body.RefreshToken]
	f.mu.Unlock()

	if started != nil {
		select {
		case started <- struct{}{}:
		default:
		}
	}
	if gate != nil {
		<-gate
	}

	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid refresh token")
		return
	}
	pair := f.issue(epoch.Add(24 * time.Hour))
	writeJSON(w, http.StatusOK, map[string]string{
		"message":      "Token refreshed successfully",
		"token":        pair.AccessToken,
		"refreshToken": pair.RefreshToken,
		"expiresIn":    "1d",
	})
}

func (f *fakeAPI) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)
	if body.Password != "secret-pass" {
		writeError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}
	pair := f.issue(epoch.Add(24 * time.Hour))
	writeJSON(w, http.StatusOK, map[string]any{
		"message":      "Login successful",
		"user":         map[string]string{"id": "user-1", "name": "Ada", "email": body.Email},
		"token":        pair.AccessToken,
		"refreshToken": pair.RefreshToken,
		"expiresIn":    "1d",
	})
}

func (f *fakeAPI) handleProtected(w http.ResponseWriter, r *http.Request) {
	header := r.Header.Get("Authorization")
	raw, _ := io.ReadAll(r.Body)

	f.mu.Lock()
	f.protectedCalls++
	f.authHeaders = append(f.authHeaders, header)
	f.bodies = append(f.bodies, string(raw))
	ok := !f.alwaysDeny && f.accepted[strings.TrimPrefix(header, "Bearer ")]
	code := f.protectedCode
	f.mu.Unlock()

	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid or expired token")
		return
	}
	if code != 0 {
		writeError(w, code, "business failure")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": map[string]string{"code": "UNAUTHORIZED", "message": message}})
}
