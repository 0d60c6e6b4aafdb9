package blobstore

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestMemory_CreateGetRevoke(t *testing.T) {
	m := NewMemory("")

	url, err := m.Create([]byte("abc"), "image/png")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if !strings.HasPrefix(url, DefaultPrefix) {
		t.Errorf("url = %q, want prefix %q", url, DefaultPrefix)
	}
	if m.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", m.Len())
	}

	data, mediaType, err := m.Get(url)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if string(data) != "abc" || mediaType != "image/png" {
		t.Errorf("Get() = %q, %q", data, mediaType)
	}

	m.Revoke(url)
	if m.Len() != 0 {
		t.Errorf("Len() after Revoke = %d, want 0", m.Len())
	}
	if _, _, err := m.Get(url); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() after Revoke error = %v, want ErrNotFound", err)
	}

	// Revoking twice is harmless.
	m.Revoke(url)
}

func TestMemory_URLsAreUnique(t *testing.T) {
	m := NewMemory("/blob/")
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		url, err := m.Create(nil, "")
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if seen[url] {
			t.Fatalf("duplicate url %q", url)
		}
		seen[url] = true
	}
}

func TestMemory_ServeHTTP(t *testing.T) {
	m := NewMemory("/blob/")
	url, err := m.Create([]byte("<body></body>"), "text/html")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	rec := httptest.NewRecorder()
	m.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, url, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/html" {
		t.Errorf("Content-Type = %q, want text/html", ct)
	}
	if rec.Body.String() != "<body></body>" {
		t.Errorf("body = %q", rec.Body.String())
	}

	m.Revoke(url)
	rec = httptest.NewRecorder()
	m.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, url, nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status after revoke = %d, want 404", rec.Code)
	}

	rec = httptest.NewRecorder()
	m.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, url, nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("POST status = %d, want 405", rec.Code)
	}
}
