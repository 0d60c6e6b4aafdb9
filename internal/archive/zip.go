package archive

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zip"
)

// defaultMaxEntrySize caps the decompressed size of a single entry.
const defaultMaxEntrySize int64 = 256 * 1024 * 1024

// Zip provides access to the contents of a CBZ (zip) archive.
type Zip struct {
	zipReader    *zip.ReadCloser
	path         string
	entries      []Entry
	files        map[string]*zip.File
	maxEntrySize int64
}

// OpenZip opens a zip archive for reading.
func OpenZip(path string) (*Zip, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}

	z := &Zip{
		zipReader:    zr,
		path:         path,
		files:        make(map[string]*zip.File, len(zr.File)),
		maxEntrySize: defaultMaxEntrySize,
	}

	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		name := normalizePath(f.Name)
		if _, dup := z.files[name]; dup {
			continue
		}
		z.files[name] = f
		z.entries = append(z.entries, Entry{Name: name})
	}

	return z, nil
}

// Close closes the underlying zip reader.
func (z *Zip) Close() error {
	return z.zipReader.Close()
}

// DisplayName returns the archive's base file name.
func (z *Zip) DisplayName() string {
	return filepath.Base(z.path)
}

// Entries returns the non-directory entries in central directory order.
func (z *Zip) Entries() []Entry {
	out := make([]Entry, len(z.entries))
	copy(out, z.entries)
	return out
}

// Size returns the uncompressed size of the named entry, or 0 if unknown.
func (z *Zip) Size(name string) int64 {
	f, ok := z.files[normalizePath(name)]
	if !ok {
		return 0
	}
	return int64(f.UncompressedSize64)
}

// Comment returns the zip archive comment.
func (z *Zip) Comment(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return z.zipReader.Comment, nil
}

// LoadBlob reads the contents of a file from the archive.
func (z *Zip) LoadBlob(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	name = normalizePath(name)
	f, ok := z.files[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrFileNotFound, name)
	}

	if f.UncompressedSize64 > uint64(z.maxEntrySize) {
		return nil, fmt.Errorf("entry %s too large: %d bytes (max %d)", name, f.UncompressedSize64, z.maxEntrySize)
	}

	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", name, err)
	}
	defer rc.Close()

	// Read one byte past the limit; the declared size may be forged.
	data, err := io.ReadAll(io.LimitReader(rc, z.maxEntrySize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", name, err)
	}
	if int64(len(data)) > z.maxEntrySize {
		return nil, fmt.Errorf("entry %s exceeds size limit (%d bytes)", name, z.maxEntrySize)
	}

	return data, nil
}

// normalizePath normalizes file paths (removes ./ prefix)
func normalizePath(path string) string {
	return strings.TrimPrefix(path, "./")
}
