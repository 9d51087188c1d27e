package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestDefaultClient_UserAgent(t *testing.T) {
	var gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := DefaultClient()
	_, _ = client.GetBody(context.Background(), server.URL)

	if gotUA != "discovery" {
		t.Errorf("default User-Agent = %q, want %q", gotUA, "discovery")
	}
}

func TestClient_WithUserAgent(t *testing.T) {
	var gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := DefaultClient().WithUserAgent("custom-agent/2.0")
	_, _ = client.GetBody(context.Background(), server.URL)

	if gotUA != "custom-agent/2.0" {
		t.Errorf("User-Agent = %q, want %q", gotUA, "custom-agent/2.0")
	}
}

func TestClient_Head_UserAgent(t *testing.T) {
	var gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := DefaultClient().WithUserAgent("head-test/1.0")
	_, _, _ = client.Head(context.Background(), server.URL)

	if gotUA != "head-test/1.0" {
		t.Errorf("Head User-Agent = %q, want %q", gotUA, "head-test/1.0")
	}
}

func TestGetJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"name":"lodash","version":"4.17.21"}`))
	}))
	defer server.Close()

	var got struct {
		Name    string `json:"name"`
		Version string `json:"version"`
	}
	client := DefaultClient()
	if err := client.GetJSON(context.Background(), server.URL, &got); err != nil {
		t.Fatalf("GetJSON failed: %v", err)
	}

	if got.Name != "lodash" {
		t.Errorf("name = %q, want %q", got.Name, "lodash")
	}
	if got.Version != "4.17.21" {
		t.Errorf("version = %q, want %q", got.Version, "4.17.21")
	}
}

func TestGetJSON_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	var got map[string]any
	err := DefaultClient().GetJSON(context.Background(), server.URL, &got)
	if err == nil {
		t.Fatal("expected error for 404 response")
	}

	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("error = %T, want *HTTPError", err)
	}
	if !httpErr.IsNotFound() {
		t.Errorf("IsNotFound() = false, want true for status %d", httpErr.StatusCode)
	}
}

func TestGetJSON_NoRetryOnNotFound(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	var got map[string]any
	client := NewClient(WithBaseDelay(10 * time.Millisecond))
	_ = client.GetJSON(context.Background(), server.URL, &got)

	if attempts != 1 {
		t.Errorf("attempts = %d, want 1 (404 must not retry)", attempts)
	}
}

func TestGetJSON_RetryOnServerError(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	var got map[string]any
	client := NewClient(WithBaseDelay(10 * time.Millisecond))
	if err := client.GetJSON(context.Background(), server.URL, &got); err != nil {
		t.Fatalf("GetJSON failed: %v", err)
	}

	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestGetJSON_RetryOnRateLimit(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 2 {
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	var got map[string]any
	client := NewClient(WithBaseDelay(10 * time.Millisecond))
	if err := client.GetJSON(context.Background(), server.URL, &got); err != nil {
		t.Fatalf("GetJSON failed: %v", err)
	}

	if attempts != 2 {
		t.Errorf("attempts = %d, want 2", attempts)
	}
}

func TestGetJSON_MaxRetries(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	var got map[string]any
	client := NewClient(WithMaxRetries(2), WithBaseDelay(10*time.Millisecond))
	err := client.GetJSON(context.Background(), server.URL, &got)
	if err == nil {
		t.Fatal("expected error after max retries")
	}

	// Initial attempt + 2 retries = 3 total
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestGetJSON_MalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"name": "broken`))
	}))
	defer server.Close()

	var got map[string]any
	if err := DefaultClient().GetJSON(context.Background(), server.URL, &got); err == nil {
		t.Fatal("expected decode error for malformed JSON")
	}
}

func TestGetJSON_ContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(100 * time.Millisecond)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	var got map[string]any
	if err := DefaultClient().GetJSON(ctx, server.URL, &got); err == nil {
		t.Error("expected error on context cancellation")
	}
}

func TestHead(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodHead {
			t.Errorf("Method = %s, want HEAD", r.Method)
		}
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Header().Set("Content-Length", "12345")
	}))
	defer server.Close()

	size, contentType, err := DefaultClient().Head(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Head failed: %v", err)
	}

	if size != 12345 {
		t.Errorf("size = %d, want 12345", size)
	}
	if contentType != "application/octet-stream" {
		t.Errorf("contentType = %q, want %q", contentType, "application/octet-stream")
	}
}

func TestBuildURLs(t *testing.T) {
	urls := &BaseURLs{
		RegistryFn: func(name, version string) string {
			return "https://www.npmjs.com/package/" + name
		},
		DownloadFn: func(name, version string) string {
			if version == "" {
				return ""
			}
			return "https://registry.npmjs.org/" + name + "/-/" + name + "-" + version + ".tgz"
		},
	}

	got := BuildURLs(urls, "lodash", "4.17.21")
	if got["registry"] != "https://www.npmjs.com/package/lodash" {
		t.Errorf("registry = %q", got["registry"])
	}
	if got["download"] != "https://registry.npmjs.org/lodash/-/lodash-4.17.21.tgz" {
		t.Errorf("download = %q", got["download"])
	}
	if got["purl"] != "pkg:npm/lodash" {
		t.Errorf("purl = %q, want default pkg:npm form", got["purl"])
	}
	if _, ok := got["docs"]; ok {
		t.Error("docs should be omitted when the builder returns empty")
	}
}
