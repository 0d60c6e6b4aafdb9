package archive

import (
	"context"
	"errors"
)

// ErrFileNotFound is returned when a requested entry is not in the archive.
var ErrFileNotFound = errors.New("file not found in archive")

// Entry is a single named item listed by an archive.
type Entry struct {
	Name string
}

// Source is the capability set a page-image archive must provide.
// Any backend (zip, rar, directory) satisfying it can be turned into a book.
type Source interface {
	// Entries lists the archive's entries in container order.
	Entries() []Entry
	// LoadBlob returns the decompressed bytes of the named entry.
	LoadBlob(ctx context.Context, name string) ([]byte, error)
	// Size returns the uncompressed byte count of the named entry.
	Size(name string) int64
	// Comment returns the archive-level comment, possibly empty.
	Comment(ctx context.Context) (string, error)
}

// File is the external handle the archive was opened from.
type File interface {
	DisplayName() string
}
