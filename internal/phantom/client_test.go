package phantom

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"prospector-engine/internal/domain"
)

func TestClient_Launch(t *testing.T) {
	var gotKey, gotPath string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("X-Phantombuster-Key-1")
		gotPath = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"data":{"containerId":"cont-9"}}`))
	}))
	defer srv.Close()

	c := New(Config{APIKey: "k1", AgentID: "agent-1", BaseURL: srv.URL})
	id, err := c.Launch(context.Background(), "https://example.com/search")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "cont-9" {
		t.Fatalf("got container id %q", id)
	}
	if gotKey != "k1" {
		t.Fatalf("missing API key header, got %q", gotKey)
	}
	if gotPath != "/agents/launch" {
		t.Fatalf("got path %q", gotPath)
	}
	if gotBody["id"] != "agent-1" {
		t.Fatalf("agent id not in payload: %v", gotBody)
	}
	arg, _ := gotBody["argument"].(map[string]any)
	if arg["searchUrl"] != "https://example.com/search" {
		t.Fatalf("search url not in payload: %v", gotBody)
	}
}

func TestClient_LaunchPreservesStatusCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "12")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := New(Config{APIKey: "k", AgentID: "a", BaseURL: srv.URL})
	_, err := c.Launch(context.Background(), "u")
	var httpErr *domain.HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("expected HTTPError, got %v", err)
	}
	if httpErr.StatusCode != 429 {
		t.Fatalf("got status %d", httpErr.StatusCode)
	}
	if httpErr.RetryAfter.Seconds() != 12 {
		t.Fatalf("got retry-after %s", httpErr.RetryAfter)
	}
}

func TestClient_LaunchUnrecognizedShape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c := New(Config{APIKey: "k", AgentID: "a", BaseURL: srv.URL})
	_, err := c.Launch(context.Background(), "u")
	if !errors.Is(err, ErrUnrecognizedShape) {
		t.Fatalf("expected ErrUnrecognizedShape, got %v", err)
	}
}

func TestClient_FetchOutput(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("id") != "cont-1" {
			t.Errorf("got id %q", r.URL.Query().Get("id"))
		}
		w.Write([]byte(`{"status":"finished","resultObject":[{"url":"a"}]}`))
	}))
	defer srv.Close()

	c := New(Config{APIKey: "k", AgentID: "a", BaseURL: srv.URL})
	out := c.FetchOutput(context.Background(), "cont-1")
	if out.Err != nil {
		t.Fatalf("unexpected error: %v", out.Err)
	}
	if out.Status != domain.StatusFinished {
		t.Fatalf("got status %s", out.Status)
	}
	if string(out.Result) != `[{"url":"a"}]` {
		t.Fatalf("result not verbatim: %s", out.Result)
	}
}

func TestClient_FetchOutputTransportFailureIsSynthetic(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	c := New(Config{APIKey: "k", AgentID: "a", BaseURL: srv.URL})
	out := c.FetchOutput(context.Background(), "cont-1")
	if out.Err == nil {
		t.Fatal("expected a transport error")
	}
	if out.Status != domain.StatusError {
		t.Fatalf("transport failure must report error status, got %s", out.Status)
	}
}
