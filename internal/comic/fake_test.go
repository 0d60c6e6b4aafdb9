package comic

import (
	"context"
	"sync"

	"github.com/yuanying/comicbook/internal/archive"
	"github.com/yuanying/comicbook/internal/blobstore"
)

// fakeSource is an in-memory archive.Source that counts loads.
type fakeSource struct {
	names      []string
	blobs      map[string][]byte
	comment    string
	commentErr error
	loadErr    map[string]error

	// started, if set, receives the name of every load before it blocks on release.
	started chan string
	release chan struct{}

	mu    sync.Mutex
	loads map[string]int
}

func newFakeSource(blobs map[string][]byte, names ...string) *fakeSource {
	return &fakeSource{
		names:   names,
		blobs:   blobs,
		loadErr: make(map[string]error),
		loads:   make(map[string]int),
	}
}

func (s *fakeSource) Entries() []archive.Entry {
	entries := make([]archive.Entry, len(s.names))
	for i, n := range s.names {
		entries[i] = archive.Entry{Name: n}
	}
	return entries
}

func (s *fakeSource) LoadBlob(ctx context.Context, name string) ([]byte, error) {
	s.mu.Lock()
	s.loads[name]++
	s.mu.Unlock()

	if s.started != nil {
		s.started <- name
	}
	if s.release != nil {
		select {
		case <-s.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if err := s.loadErr[name]; err != nil {
		return nil, err
	}
	data, ok := s.blobs[name]
	if !ok {
		return nil, archive.ErrFileNotFound
	}
	return data, nil
}

func (s *fakeSource) Size(name string) int64 {
	return int64(len(s.blobs[name]))
}

func (s *fakeSource) Comment(ctx context.Context) (string, error) {
	return s.comment, s.commentErr
}

func (s *fakeSource) loadCount(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loads[name]
}

type fakeFile string

func (f fakeFile) DisplayName() string { return string(f) }

// countingStore wraps a memory store and counts acquisitions.
type countingStore struct {
	*blobstore.Memory

	mu      sync.Mutex
	creates int
}

func newCountingStore() *countingStore {
	return &countingStore{Memory: blobstore.NewMemory("")}
}

func (s *countingStore) Create(data []byte, mediaType string) (string, error) {
	s.mu.Lock()
	s.creates++
	s.mu.Unlock()
	return s.Memory.Create(data, mediaType)
}

func (s *countingStore) createCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.creates
}
