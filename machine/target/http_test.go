package target

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

func TestHTTPTarget_Get(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	tgt, err := NewHTTP(server.URL)
	if err != nil {
		t.Fatalf("NewHTTP failed: %v", err)
	}
	defer tgt.Close()

	res, err := tgt.Get(context.Background(), "/health")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if res.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", res.StatusCode)
	}
	if res.Body != "ok" {
		t.Errorf("body = %q, want %q", res.Body, "ok")
	}
	if got := res.Header.Get("Content-Type"); got != "text/plain" {
		t.Errorf("Content-Type = %q", got)
	}
}

func TestHTTPTarget_PostForm(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method", http.StatusMethodNotAllowed)
			return
		}
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.Write([]byte("user=" + r.PostForm.Get("user")))
	}))
	defer server.Close()

	tgt, err := NewHTTP(server.URL)
	if err != nil {
		t.Fatalf("NewHTTP failed: %v", err)
	}
	defer tgt.Close()

	res, err := tgt.PostForm(context.Background(), "/login", url.Values{"user": {"alice"}})
	if err != nil {
		t.Fatalf("PostForm failed: %v", err)
	}
	if res.Body != "user=alice" {
		t.Errorf("body = %q, want %q", res.Body, "user=alice")
	}
}

func TestHTTPTarget_CookiesPersistAcrossRequests(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/login":
			http.SetCookie(w, &http.Cookie{Name: "session", Value: "s3cret"})
		case "/me":
			c, err := r.Cookie("session")
			if err != nil || c.Value != "s3cret" {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			w.Write([]byte("hello"))
		}
	}))
	defer server.Close()

	tgt, err := NewHTTP(server.URL)
	if err != nil {
		t.Fatalf("NewHTTP failed: %v", err)
	}
	defer tgt.Close()

	ctx := context.Background()
	if _, err := tgt.Get(ctx, "/login"); err != nil {
		t.Fatalf("login Get failed: %v", err)
	}
	res, err := tgt.Get(ctx, "/me")
	if err != nil {
		t.Fatalf("me Get failed: %v", err)
	}
	if res.StatusCode != http.StatusOK {
		t.Errorf("session cookie not carried: status = %d", res.StatusCode)
	}
}

func TestHTTPTarget_CookiesIsolatedBetweenTargets(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := r.Cookie("session"); err == nil {
			http.Error(w, "leaked", http.StatusTeapot)
			return
		}
		http.SetCookie(w, &http.Cookie{Name: "session", Value: "s3cret"})
	}))
	defer server.Close()

	ctx := context.Background()
	factory := HTTPFactory(server.URL)

	for i := 0; i < 2; i++ {
		handle, err := factory(ctx)
		if err != nil {
			t.Fatalf("factory failed: %v", err)
		}
		tgt := handle.(*HTTPTarget)
		res, err := tgt.Get(ctx, "/")
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if res.StatusCode == http.StatusTeapot {
			t.Fatalf("target %d saw another target's session cookie", i)
		}
		tgt.Close()
	}
}

func TestHTTPTarget_ResolvesRelativePaths(t *testing.T) {
	var seen string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.URL.String()
	}))
	defer server.Close()

	tgt, err := NewHTTP(server.URL + "/app/")
	if err != nil {
		t.Fatalf("NewHTTP failed: %v", err)
	}
	defer tgt.Close()

	if _, err := tgt.Get(context.Background(), "status?verbose=1"); err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !strings.HasPrefix(seen, "/app/status") || !strings.Contains(seen, "verbose=1") {
		t.Errorf("request URL = %q, want /app/status with query", seen)
	}
}

func TestHTTPTarget_InvalidBaseURL(t *testing.T) {
	if _, err := NewHTTP("://bad"); err == nil {
		t.Error("NewHTTP should reject an unparsable base URL")
	}
}
