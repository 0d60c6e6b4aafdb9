package thumbnail

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"golang.org/x/image/bmp"
)

func TestMake_ResizeOverMaxWidth(t *testing.T) {
	data := mustEncodePNG(t, makeSolidNRGBA(1200, 800, color.NRGBA{R: 20, G: 50, B: 200, A: 255}))

	out, err := Make(data, Options{MaxWidth: 600})
	if err != nil {
		t.Fatalf("Make() error = %v", err)
	}
	if out.Width != 600 || out.Height != 400 {
		t.Fatalf("got %dx%d, want 600x400", out.Width, out.Height)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(out.Data))
	if err != nil {
		t.Fatalf("DecodeConfig() error = %v", err)
	}
	if format != "jpeg" {
		t.Errorf("format = %q, want jpeg", format)
	}
	if cfg.Width != 600 || cfg.Height != 400 {
		t.Errorf("encoded %dx%d, want 600x400", cfg.Width, cfg.Height)
	}
}

func TestMake_NoResizeUnderMaxWidth(t *testing.T) {
	data := mustEncodePNG(t, makeSolidNRGBA(500, 300, color.NRGBA{R: 100, G: 120, B: 140, A: 255}))

	out, err := Make(data, Options{MaxWidth: 600})
	if err != nil {
		t.Fatalf("Make() error = %v", err)
	}
	if out.Width != 500 || out.Height != 300 {
		t.Fatalf("got %dx%d, want 500x300", out.Width, out.Height)
	}
}

func TestMake_DecodesBMP(t *testing.T) {
	var buf bytes.Buffer
	if err := bmp.Encode(&buf, makeSolidNRGBA(40, 20, color.NRGBA{R: 1, G: 2, B: 3, A: 255})); err != nil {
		t.Fatalf("bmp.Encode() error = %v", err)
	}

	out, err := Make(buf.Bytes(), Options{})
	if err != nil {
		t.Fatalf("Make() error = %v", err)
	}
	if out.Width != 40 || out.Height != 20 {
		t.Errorf("got %dx%d, want 40x20", out.Width, out.Height)
	}
}

func TestMake_RejectsOversizedImage(t *testing.T) {
	data := mustEncodeJPEG(t, makeSolidNRGBA(200, 200, color.NRGBA{A: 255}), 80)

	if _, err := Make(data, Options{MaxPixels: 1000}); err == nil {
		t.Fatal("Make() expected pixel limit error")
	}
}

func TestMake_InvalidData(t *testing.T) {
	if _, err := Make([]byte("<svg/>"), Options{}); err == nil {
		t.Fatal("Make() expected decode error")
	}
}

func makeSolidNRGBA(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func mustEncodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode() error = %v", err)
	}
	return buf.Bytes()
}

func mustEncodeJPEG(t *testing.T, img image.Image, quality int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		t.Fatalf("jpeg.Encode() error = %v", err)
	}
	return buf.Bytes()
}
