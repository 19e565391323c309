package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/joshcord99/stoxai/internal/handler"
	"github.com/joshcord99/stoxai/internal/ratelimit"
	"github.com/joshcord99/stoxai/internal/repository/sqlite"
	"github.com/joshcord99/stoxai/internal/service"
)

const testJWTSecret = "test-secret-for-handler-tests-0123456789"

type testEnv struct {
	srv    *httptest.Server
	tokens *service.TokenService
	auth   *service.AuthService
}

func newTestServices(t *testing.T) handler.Services {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := sqlite.New(dbPath)
	if err != nil {
		t.Fatalf("New DB: %v", err)
	}
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	tokens := service.NewTokenService(testJWTSecret, service.DefaultTokenTTL)
	return handler.Services{
		Tokens:   tokens,
		Auth:     service.NewAuthService(db.Users(), tokens, 4),
		Accounts: service.NewAccountService(db.Users()),
		Chat:     service.NewChatService(db.Users(), nil, time.Second),
	}
}

func newTestServer(t *testing.T, limiter ratelimit.Limiter) *testEnv {
	t.Helper()
	s := newTestServices(t)
	s.AuthLimiter = limiter

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, s)

	srv := httptest.NewServer(handler.SecurityHeaders(handler.CORS("*", mux)))
	t.Cleanup(srv.Close)
	return &testEnv{srv: srv, tokens: s.Tokens, auth: s.Auth}
}

// do sends a JSON request and decodes the JSON response into a generic map.
func (e *testEnv) do(t *testing.T, method, path, token string, body any) (int, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, e.srv.URL+path, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	var out map[string]any
	if resp.ContentLength != 0 {
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			t.Fatalf("%s %s: decode body: %v", method, path, err)
		}
	}
	return resp.StatusCode, out
}

func (e *testEnv) register(t *testing.T, email, password string) string {
	t.Helper()
	status, body := e.do(t, http.MethodPost, "/auth/register", "", map[string]any{
		"email":    email,
		"password": password,
	})
	if status != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d (%v)", status, body)
	}
	token, _ := body["access_token"].(string)
	if token == "" {
		t.Fatal("register: expected access_token")
	}
	return token
}

func wantError(t *testing.T, status int, body map[string]any, wantStatus int, wantCode string) {
	t.Helper()
	if status != wantStatus {
		t.Fatalf("expected status %d, got %d (%v)", wantStatus, status, body)
	}
	if body["success"] != false {
		t.Fatalf("expected success=false, got %v", body["success"])
	}
	if body["code"] != wantCode {
		t.Fatalf("expected code %s, got %v", wantCode, body["code"])
	}
	if msg, _ := body["error"].(string); msg == "" {
		t.Fatal("expected non-empty error message")
	}
}

func toStrings(v any) []string {
	raw, _ := v.([]any)
	out := make([]string, len(raw))
	for i, x := range raw {
		out[i], _ = x.(string)
	}
	return out
}
