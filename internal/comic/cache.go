package comic

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/yuanying/comicbook/internal/blobstore"
)

// pageMediaType is the media type of the synthesized page wrapper.
const pageMediaType = "text/html"

// Loader returns the raw bytes of a named archive entry.
type Loader func(ctx context.Context, name string) ([]byte, error)

// ResourceCache lazily turns archive entries into displayable page URLs.
//
// Each loaded entry owns two blob URLs: one for the image bytes and one for
// a single-image HTML page embedding it. The page URL is what Load returns.
// Both are revoked by Unload or Destroy.
//
// Concurrent Load calls for the same name share one load. A caller whose
// context ends stops waiting, but the shared load runs to completion.
type ResourceCache struct {
	load   Loader
	store  blobstore.Store
	logger *slog.Logger
	group  singleflight.Group

	mu     sync.Mutex
	pages  map[string]string   // name -> page URL
	urls   map[string][]string // name -> [image URL, page URL]
	closed bool
}

// NewResourceCache creates a cache that reads entries with load and
// registers their URLs in store.
func NewResourceCache(load Loader, store blobstore.Store, logger *slog.Logger) *ResourceCache {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &ResourceCache{
		load:   load,
		store:  store,
		logger: logger,
		pages:  make(map[string]string),
		urls:   make(map[string][]string),
	}
}

// Load returns the page URL for name, loading the entry on first use.
func (c *ResourceCache) Load(ctx context.Context, name string) (string, error) {
	if page, ok, err := c.lookup(name); err != nil || ok {
		return page, err
	}

	// The shared load outlives any single caller; each caller waits on its own ctx.
	flight := context.WithoutCancel(ctx)
	ch := c.group.DoChan(name, func() (any, error) {
		return c.materialize(flight, name)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		if res.Shared {
			c.logger.Debug("shared in-flight page load", "name", name)
		}
		return res.Val.(string), nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// lookup reports a cached page URL. It fails once the cache is destroyed.
func (c *ResourceCache) lookup(name string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return "", false, ErrClosed
	}
	page, ok := c.pages[name]
	return page, ok, nil
}

func (c *ResourceCache) materialize(ctx context.Context, name string) (string, error) {
	// A previous flight may have published between lookup and Do.
	if page, ok, err := c.lookup(name); err != nil || ok {
		return page, err
	}

	data, err := c.load(ctx, name)
	if err != nil {
		return "", fmt.Errorf("load %s: %w", name, err)
	}

	src, err := c.store.Create(data, MediaTypeOf(name))
	if err != nil {
		return "", fmt.Errorf("register image %s: %w", name, err)
	}
	page, err := c.store.Create([]byte(pageHTML(src)), pageMediaType)
	if err != nil {
		c.store.Revoke(src)
		return "", fmt.Errorf("register page %s: %w", name, err)
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		c.store.Revoke(src)
		c.store.Revoke(page)
		return "", ErrClosed
	}
	c.urls[name] = []string{src, page}
	c.pages[name] = page
	c.mu.Unlock()

	c.logger.Debug("loaded page", "name", name, "bytes", len(data), "page", page)
	return page, nil
}

// Unload revokes the URLs held for name. It is a no-op if name is not loaded.
func (c *ResourceCache) Unload(name string) {
	c.mu.Lock()
	urls, ok := c.urls[name]
	delete(c.urls, name)
	delete(c.pages, name)
	c.mu.Unlock()

	if !ok {
		return
	}
	for _, url := range urls {
		c.store.Revoke(url)
	}
	c.logger.Debug("unloaded page", "name", name)
}

// Destroy revokes every URL still held and closes the cache.
// Later calls do nothing.
func (c *ResourceCache) Destroy() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	held := c.urls
	c.urls = make(map[string][]string)
	c.pages = make(map[string]string)
	c.mu.Unlock()

	revoked := 0
	for _, urls := range held {
		for _, url := range urls {
			c.store.Revoke(url)
			revoked++
		}
	}
	c.logger.Debug("destroyed page cache", "pages", len(held), "revoked", revoked)
}

// pageHTML wraps an image URL in a margin-free single-image page.
func pageHTML(src string) string {
	return `<body style="margin: 0"><img src="` + html.EscapeString(src) + `">`
}
