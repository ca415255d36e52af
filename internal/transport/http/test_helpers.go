package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/messagely/server/internal/auth"
	"github.com/messagely/server/internal/config"
	"github.com/messagely/server/internal/directory"
	"github.com/messagely/server/internal/ledger"
	"github.com/messagely/server/internal/log"
	"github.com/messagely/server/internal/store"
	"github.com/messagely/server/internal/store/sqlite"
)

// testEnv bundles a fully wired server over an in-memory store.
type testEnv struct {
	handler     *httptest.Server
	store       store.Store
	authService *auth.Service
}

// newTestEnv creates a server backed by an in-memory SQLite store. Bcrypt
// runs at minimum cost to keep the suite fast.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	st, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	issuer := auth.NewTokenIssuer(&auth.JWTConfig{
		Secret:   []byte("test-secret"),
		Issuer:   "test",
		Audience: "test",
		TTL:      time.Hour,
	})
	dir := directory.New(st, auth.NewBcryptHasher(bcrypt.MinCost))
	led := ledger.New(st)
	authService := auth.NewService(dir, issuer)

	cfg := config.Default()
	server := NewServer(authService, dir, led, &cfg, log.Discard())

	ts := httptest.NewServer(server.Handler)
	t.Cleanup(ts.Close)

	return &testEnv{
		handler:     ts,
		store:       st,
		authService: authService,
	}
}

// do performs a request against the test server and returns the recorder.
// An empty token leaves the Authorization header unset.
func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, e.handler.URL+path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp := httptest.NewRecorder()
	e.handler.Config.Handler.ServeHTTP(resp, req)
	return resp
}

// registerUser registers a user through the auth service and returns a
// session token.
func (e *testEnv) registerUser(t *testing.T, username string) string {
	t.Helper()

	token, err := e.authService.Register(context.Background(), directory.RegisterParams{
		Username:  username,
		Password:  "password123",
		FirstName: "First-" + username,
		LastName:  "Last-" + username,
		Phone:     "+1000000",
	})
	if err != nil {
		t.Fatalf("failed to register %s: %v", username, err)
	}
	return token
}

// decodeJSON unmarshals a response body into v.
func decodeJSON(t *testing.T, resp *httptest.ResponseRecorder, v any) {
	t.Helper()

	if err := json.Unmarshal(resp.Body.Bytes(), v); err != nil {
		t.Fatalf("failed to unmarshal response %q: %v", resp.Body.String(), err)
	}
}
