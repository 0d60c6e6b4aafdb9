// Package blobstore hands out revocable URLs for in-memory binary data.
//
// A URL stays resolvable until it is revoked. Callers that create URLs own
// them and must revoke each one exactly once to release the data.
package blobstore

import (
	"errors"
	"net/http"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// DefaultPrefix is the URL prefix used when none is configured.
const DefaultPrefix = "blob:"

// ErrNotFound is returned when a URL is unknown or already revoked.
var ErrNotFound = errors.New("blobstore: url not found")

// Store creates and revokes blob URLs.
type Store interface {
	Create(data []byte, mediaType string) (string, error)
	Revoke(url string)
}

type blob struct {
	data      []byte
	mediaType string
}

// Memory is a Store keeping blobs in process memory.
// It is safe for concurrent use.
type Memory struct {
	mu     sync.RWMutex
	prefix string
	blobs  map[string]blob
}

// NewMemory creates an empty store whose URLs start with prefix.
// An empty prefix selects DefaultPrefix.
func NewMemory(prefix string) *Memory {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Memory{
		prefix: prefix,
		blobs:  make(map[string]blob),
	}
}

// Create registers data under a new URL.
func (m *Memory) Create(data []byte, mediaType string) (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	url := m.prefix + id.String()

	m.mu.Lock()
	m.blobs[url] = blob{data: data, mediaType: mediaType}
	m.mu.Unlock()
	return url, nil
}

// Revoke releases the data behind url. Unknown URLs are ignored.
func (m *Memory) Revoke(url string) {
	m.mu.Lock()
	delete(m.blobs, url)
	m.mu.Unlock()
}

// Get returns the data and media type registered under url.
func (m *Memory) Get(url string) ([]byte, string, error) {
	m.mu.RLock()
	b, ok := m.blobs[url]
	m.mu.RUnlock()
	if !ok {
		return nil, "", ErrNotFound
	}
	return b.data, b.mediaType, nil
}

// Len reports how many URLs are live.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.blobs)
}

// ServeHTTP serves a blob whose URL equals the request path.
// It is only useful when the store prefix is a path such as "/blob/".
func (m *Memory) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if !strings.HasPrefix(r.URL.Path, m.prefix) {
		http.NotFound(w, r)
		return
	}

	data, mediaType, err := m.Get(r.URL.Path)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	if mediaType != "" {
		w.Header().Set("Content-Type", mediaType)
	}
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodGet {
		_, _ = w.Write(data)
	}
}
