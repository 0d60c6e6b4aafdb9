package comic

import (
	"sort"
	"strings"

	"github.com/yuanying/comicbook/internal/archive"
)

// imageExtensions lists the page extensions a book accepts, matched case-sensitively.
var imageExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".bmp", ".webp", ".svg", ".jxl", ".avif"}

var extensionMediaTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".bmp":  "image/bmp",
	".webp": "image/webp",
	".svg":  "image/svg+xml",
	".jxl":  "image/jxl",
	".avif": "image/avif",
}

// ImageFiles returns the names of image entries sorted lexicographically.
// It returns ErrNoImages if the archive has none.
func ImageFiles(entries []archive.Entry) ([]string, error) {
	files := make([]string, 0, len(entries))
	for _, e := range entries {
		if isImageFile(e.Name) {
			files = append(files, e.Name)
		}
	}
	if len(files) == 0 {
		return nil, ErrNoImages
	}
	sort.Strings(files)
	return files, nil
}

// MediaTypeOf returns the media type implied by an image file name,
// or an empty string for unsupported names.
func MediaTypeOf(name string) string {
	for _, ext := range imageExtensions {
		if strings.HasSuffix(name, ext) {
			return extensionMediaTypes[ext]
		}
	}
	return ""
}

func isImageFile(name string) bool {
	for _, ext := range imageExtensions {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}
