package screenshot

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"
)

// pngBytes renders a small gradient so resizing has real pixel data to chew on.
func pngBytes(t *testing.T, width, height int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode fixture: %v", err)
	}
	return buf.Bytes()
}

func TestProcessSmallImage(t *testing.T) {
	src := pngBytes(t, 64, 48)

	got, err := Process(bytes.NewReader(src))
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	raw, err := base64.StdEncoding.DecodeString(got.Base64)
	if err != nil {
		t.Fatalf("Base64 payload does not decode: %v", err)
	}
	if len(raw) != got.Size {
		t.Errorf("Size = %d, want %d", got.Size, len(raw))
	}
	if len(got.SHA256) != 64 {
		t.Errorf("len(SHA256) = %d, want 64 hex chars", len(got.SHA256))
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("stored payload does not decode: %v", err)
	}
	if format != "jpeg" {
		t.Errorf("stored format = %q, want jpeg", format)
	}
	if cfg.Width != 64 || cfg.Height != 48 {
		t.Errorf("stored dimensions = %dx%d, want 64x48", cfg.Width, cfg.Height)
	}
}

func TestProcessResizesWideImage(t *testing.T) {
	src := pngBytes(t, 2560, 1440)

	got, err := Process(bytes.NewReader(src))
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	raw, err := base64.StdEncoding.DecodeString(got.Base64)
	if err != nil {
		t.Fatalf("Base64 payload does not decode: %v", err)
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("stored payload does not decode: %v", err)
	}
	if cfg.Width != maxWidth {
		t.Errorf("stored width = %d, want %d", cfg.Width, maxWidth)
	}
	// Aspect ratio preserved: 2560x1440 halves to 1280x720.
	if cfg.Height != 720 {
		t.Errorf("stored height = %d, want 720", cfg.Height)
	}
}

func TestProcessDeterministicFingerprint(t *testing.T) {
	src := pngBytes(t, 100, 80)

	first, err := Process(bytes.NewReader(src))
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	second, err := Process(bytes.NewReader(src))
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if first.SHA256 != second.SHA256 {
		t.Errorf("fingerprints differ for identical input: %s vs %s", first.SHA256, second.SHA256)
	}

	other, err := Process(bytes.NewReader(pngBytes(t, 100, 81)))
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if other.SHA256 == first.SHA256 {
		t.Error("fingerprints collide for different inputs")
	}
}

func TestProcessRejectsGarbage(t *testing.T) {
	_, err := Process(strings.NewReader("definitely not an image"))
	if err == nil {
		t.Fatal("Process() error = nil, want decode error")
	}
}
