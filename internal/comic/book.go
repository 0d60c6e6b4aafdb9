package comic

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/PuerkitoBio/goquery"

	"github.com/yuanying/comicbook/internal/archive"
	"github.com/yuanying/comicbook/internal/blobstore"
)

const (
	// LayoutPrePaginated declares fixed-size pages, one image per page.
	LayoutPrePaginated = "pre-paginated"

	// NotFound is returned by ResolveHref for unknown hrefs.
	NotFound = -1
)

// Options configures Open.
type Options struct {
	// Store receives the page URLs. Defaults to a new in-memory store.
	Store blobstore.Store
	// Logger receives debug events. Defaults to discarding output.
	Logger *slog.Logger
}

// Rendition holds layout hints for the viewer.
type Rendition struct {
	Layout string `json:"layout" yaml:"layout"`
}

// TOCItem is one table of contents entry.
type TOCItem struct {
	Label string `json:"label" yaml:"label"`
	Href  string `json:"href" yaml:"href"`
}

// Section is one page of the book.
type Section struct {
	ID   string
	Size int64

	load   func(ctx context.Context) (string, error)
	unload func()
}

// Load returns the URL of a displayable page for this section.
func (s Section) Load(ctx context.Context) (string, error) {
	return s.load(ctx)
}

// Unload releases the resources behind the section's page.
func (s Section) Unload() {
	s.unload()
}

// Book is a paginated view of an image archive.
type Book struct {
	Metadata       Metadata
	MetadataSource MetadataSource
	Sections       []Section
	TOC            []TOCItem
	Rendition      Rendition

	src         archive.Source
	files       []string
	cache       *ResourceCache
	destroyOnce sync.Once
}

// Open builds a Book from an archive.
// It returns ErrNoImages if the archive contains no supported images.
func Open(ctx context.Context, src archive.Source, file archive.File, opts Options) (*Book, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	store := opts.Store
	if store == nil {
		store = blobstore.NewMemory("")
	}

	files, err := ImageFiles(src.Entries())
	if err != nil {
		return nil, err
	}

	comment, err := src.Comment(ctx)
	if err != nil {
		logger.Debug("archive comment unavailable", "error", err)
		comment = ""
	}
	md := ExtractMetadata(comment, file.DisplayName())

	cache := NewResourceCache(src.LoadBlob, store, logger)
	book := assemble(src, files, cache, md)

	logger.Debug("opened book", "title", book.Metadata.Title, "pages", len(files), "metadata", md.Source)
	return book, nil
}

func assemble(src archive.Source, files []string, cache *ResourceCache, md MetadataResult) *Book {
	book := &Book{
		Metadata:       md.Metadata,
		MetadataSource: md.Source,
		Sections:       make([]Section, len(files)),
		TOC:            make([]TOCItem, len(files)),
		Rendition:      Rendition{Layout: LayoutPrePaginated},
		src:            src,
		files:          files,
		cache:          cache,
	}

	for i, name := range files {
		book.Sections[i] = Section{
			ID:     name,
			Size:   src.Size(name),
			load:   func(ctx context.Context) (string, error) { return cache.Load(ctx, name) },
			unload: func() { cache.Unload(name) },
		}
		book.TOC[i] = TOCItem{Label: name, Href: name}
	}

	return book
}

// Cover returns the raw bytes of the first page.
// It reads the archive on every call and leaves the page cache untouched.
func (b *Book) Cover(ctx context.Context) ([]byte, error) {
	return b.src.LoadBlob(ctx, b.files[0])
}

// ResolveHref returns the index of the section whose ID is href, or NotFound.
func (b *Book) ResolveHref(href string) int {
	return slices.IndexFunc(b.Sections, func(s Section) bool { return s.ID == href })
}

// SplitTOCHref splits a TOC href into path and fragment.
// Pages have no fragments, so the fragment is always empty.
func (b *Book) SplitTOCHref(href string) (string, string) {
	return href, ""
}

// TOCFragment returns the root element of a parsed page document.
func (b *Book) TOCFragment(doc *goquery.Document) *goquery.Selection {
	if doc == nil {
		return nil
	}
	return doc.Children()
}

// Destroy releases every page resource the book still holds.
// It is safe to call more than once.
func (b *Book) Destroy() {
	b.destroyOnce.Do(b.cache.Destroy)
}
