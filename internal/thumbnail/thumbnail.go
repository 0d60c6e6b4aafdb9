package thumbnail

import (
	"bytes"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
)

const (
	defaultMaxWidth    = 600
	defaultJPEGQuality = 85
	defaultMaxPixels   = 100 * 1000 * 1000 // 100 megapixels
)

// Options controls thumbnail generation. Zero values select defaults.
type Options struct {
	MaxWidth    int
	JPEGQuality int
	MaxPixels   int
}

// Thumbnail is an encoded JPEG thumbnail.
type Thumbnail struct {
	Data   []byte
	Width  int
	Height int
}

func (o Options) withDefaults() Options {
	if o.MaxWidth <= 0 {
		o.MaxWidth = defaultMaxWidth
	}
	if o.JPEGQuality <= 0 {
		o.JPEGQuality = defaultJPEGQuality
	}
	if o.JPEGQuality > 100 {
		o.JPEGQuality = 100
	}
	if o.MaxPixels <= 0 {
		o.MaxPixels = defaultMaxPixels
	}
	return o
}

// Make decodes a page image and re-encodes it as a JPEG no wider than MaxWidth.
// Narrower images keep their size.
func Make(input []byte, opts Options) (Thumbnail, error) {
	opts = opts.withDefaults()

	cfg, _, err := image.DecodeConfig(bytes.NewReader(input))
	if err != nil {
		return Thumbnail{}, fmt.Errorf("image decode failed: %w", err)
	}
	pixels := uint64(cfg.Width) * uint64(cfg.Height)
	if pixels > uint64(opts.MaxPixels) {
		return Thumbnail{}, fmt.Errorf("image too large to decode: %dx%d (%d pixels)", cfg.Width, cfg.Height, pixels)
	}

	src, err := imaging.Decode(bytes.NewReader(input), imaging.AutoOrientation(true))
	if err != nil {
		return Thumbnail{}, fmt.Errorf("image decode failed: %w", err)
	}

	processed := src
	if src.Bounds().Dx() > opts.MaxWidth {
		processed = imaging.Resize(src, opts.MaxWidth, 0, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, processed, imaging.JPEG, imaging.JPEGQuality(opts.JPEGQuality)); err != nil {
		return Thumbnail{}, fmt.Errorf("jpeg encode failed: %w", err)
	}

	return Thumbnail{
		Data:   buf.Bytes(),
		Width:  processed.Bounds().Dx(),
		Height: processed.Bounds().Dy(),
	}, nil
}
