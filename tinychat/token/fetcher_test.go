package token

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestNewFetcher(t *testing.T) {
	f := NewFetcher("")

	if f.baseURL != DefaultBaseURL {
		t.Errorf("Expected baseURL %s, got %s", DefaultBaseURL, f.baseURL)
	}
	if f.resultPath != DefaultResultPath {
		t.Errorf("Expected result path %s, got %s", DefaultResultPath, f.resultPath)
	}
	if f.httpClient == nil || f.httpClient.Timeout != DefaultTimeout {
		t.Error("Expected HTTP client with default timeout")
	}

	f = NewFetcher("http://example.com/token/", WithResultPath("data.token"))
	if f.baseURL != "http://example.com/token" {
		t.Errorf("Expected trailing slash to be trimmed, got %s", f.baseURL)
	}
	if f.resultPath != "data.token" {
		t.Errorf("Expected result path data.token, got %s", f.resultPath)
	}
}

func TestFetch(t *testing.T) {
	var gotPath, gotMethod string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		gotMethod = r.Method
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"result":"abc123"}`))
	}))
	defer server.Close()

	f := NewFetcher(server.URL + "/api/v1.0/room/token")
	tok, err := f.Fetch(context.Background(), "lobby")
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	if tok != "abc123" {
		t.Errorf("Expected token abc123, got %s", tok)
	}
	if gotMethod != http.MethodGet {
		t.Errorf("Expected GET, got %s", gotMethod)
	}
	if gotPath != "/api/v1.0/room/token/lobby" {
		t.Errorf("Unexpected request path %s", gotPath)
	}
}

func TestFetchEscapesRoom(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		w.Write([]byte(`{"result":"t"}`))
	}))
	defer server.Close()

	if _, err := NewFetcher(server.URL).Fetch(context.Background(), "a b?c"); err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if gotPath != "/a%20b%3Fc" {
		t.Errorf("Expected escaped room in path, got %s", gotPath)
	}
}

func TestFetchNestedResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{"token":"nested"}}`))
	}))
	defer server.Close()

	tok, err := NewFetcher(server.URL, WithResultPath("data.token")).Fetch(context.Background(), "room")
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if tok != "nested" {
		t.Errorf("Expected nested, got %s", tok)
	}
}

func TestFetchFailures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		noRes  bool
	}{
		{"server error", http.StatusInternalServerError, `{"result":"x"}`, false},
		{"not found", http.StatusNotFound, `{}`, false},
		{"malformed body", http.StatusOK, `{"result":`, false},
		{"html body", http.StatusOK, `<html></html>`, false},
		{"missing result", http.StatusOK, `{"error":"no room"}`, true},
		{"numeric result", http.StatusOK, `{"result":42}`, true},
		{"null result", http.StatusOK, `{"result":null}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := NewFetcher(server.URL).Fetch(context.Background(), "room")
			if !errors.Is(err, ErrFetch) {
				t.Fatalf("Expected ErrFetch, got %v", err)
			}
			if tt.noRes && !errors.Is(err, ErrNoResult) {
				t.Errorf("Expected ErrNoResult, got %v", err)
			}
		})
	}
}

func TestFetchUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	f := NewFetcher(url, WithHTTPClient(&http.Client{Timeout: time.Second}))
	if _, err := f.Fetch(context.Background(), "room"); !errors.Is(err, ErrFetch) {
		t.Errorf("Expected ErrFetch for closed server, got %v", err)
	}
}

func TestFetchSingleAttempt(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	NewFetcher(server.URL).Fetch(context.Background(), "room")
	if calls != 1 {
		t.Errorf("Expected exactly one request, got %d", calls)
	}
}
