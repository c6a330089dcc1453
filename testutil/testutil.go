package testutil

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/mbolis/quick-forms/config"
	"github.com/mbolis/quick-forms/database"
	"github.com/mbolis/quick-forms/httpx"
)

// OpenDB opens a throwaway sqlite database with all migrations applied.
func OpenDB(t *testing.T) *sql.DB {
	t.Helper()

	cfg := config.Config{DBUrl: filepath.Join(t.TempDir(), "qforms_test.sqlite")}
	db, err := database.Open(cfg)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// CreateUser registers an owner account for tests.
func CreateUser(t *testing.T, db *sql.DB, username, password string) {
	t.Helper()

	err := httpx.RegisterUser(db, username, password)
	if err != nil {
		t.Fatalf("failed to create test user %q: %v", username, err)
	}
}

// StaticIP is an IPLookup stub always resolving to a fixed address.
type StaticIP string

func (s StaticIP) PublicIP(context.Context) (string, error) {
	return string(s), nil
}

// DownIP is an IPLookup stub simulating an unreachable lookup service.
type DownIP struct{}

func (DownIP) PublicIP(context.Context) (string, error) {
	return "", errors.New("lookup service down")
}

// MakeRequest creates an HTTP test request with an optional JSON body.
func MakeRequest(method, path string, body any, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code.
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct.
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("failed to decode JSON response: %v", err)
	}
}
