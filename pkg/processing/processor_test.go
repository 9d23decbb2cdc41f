package processing

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	xwebp "golang.org/x/image/webp"

	"github.com/menta2k/webp-converter/pkg/types"
)

// createTestImage creates an opaque image with a bright block in the center
func createTestImage(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if x > width/3 && x < 2*width/3 && y > height/3 && y < 2*height/3 {
				img.Set(x, y, color.RGBA{255, 255, 255, 255})
			} else {
				img.Set(x, y, color.RGBA{64, 64, 64, 255})
			}
		}
	}
	return img
}

func writePNG(t *testing.T, dir, name string, img image.Image) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode %s: %v", path, err)
	}
	return path
}

func TestNewProcessor(t *testing.T) {
	p := NewProcessor()
	if p == nil {
		t.Fatal("NewProcessor() returned nil")
	}
	if p.Background != color.White {
		t.Error("Expected a white background")
	}
}

func TestLoadImageFlattensAlpha(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 20, 10))
	img.SetNRGBA(5, 5, color.NRGBA{255, 0, 0, 255})
	path := writePNG(t, t.TempDir(), "alpha.png", img)

	loaded, err := NewProcessor().LoadImage(path)
	if err != nil {
		t.Fatalf("LoadImage failed: %v", err)
	}
	if loaded.Bounds().Dx() != 20 || loaded.Bounds().Dy() != 10 {
		t.Fatalf("Unexpected bounds %v", loaded.Bounds())
	}

	r, g, b, a := loaded.At(0, 0).RGBA()
	if r != 0xffff || g != 0xffff || b != 0xffff || a != 0xffff {
		t.Errorf("Expected transparent pixel to become white, got %v", loaded.At(0, 0))
	}
	r, g, b, _ = loaded.At(5, 5).RGBA()
	if r != 0xffff || g != 0 || b != 0 {
		t.Errorf("Expected opaque pixel to stay red, got %v", loaded.At(5, 5))
	}
}

func TestFlattenKeepsOpaqueImages(t *testing.T) {
	img := createTestImage(8, 8)
	if Flatten(img, color.White) != image.Image(img) {
		t.Error("Expected an opaque image to be returned unchanged")
	}
}

func TestLoadImageErrors(t *testing.T) {
	dir := t.TempDir()
	p := NewProcessor()

	if _, err := p.LoadImage(filepath.Join(dir, "missing.png")); err == nil {
		t.Error("Expected an error for a missing file")
	}

	bogus := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(bogus, []byte("not an image"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := p.LoadImage(bogus); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("Expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestDimensions(t *testing.T) {
	path := writePNG(t, t.TempDir(), "dims.png", createTestImage(64, 48))

	size, err := NewProcessor().Dimensions(path)
	if err != nil {
		t.Fatalf("Dimensions failed: %v", err)
	}
	if size != (types.Size{Width: 64, Height: 48}) {
		t.Errorf("Expected 64x48, got %v", size)
	}
}

func TestCrop(t *testing.T) {
	p := NewProcessor()
	img := createTestImage(100, 80)

	tests := []struct {
		name  string
		rect  types.Rect
		wantW int
		wantH int
	}{
		{"inside", types.Rect{X: 10, Y: 10, Width: 50, Height: 40}, 50, 40},
		{"clipped", types.Rect{X: 80, Y: 60, Width: 50, Height: 50}, 20, 20},
		{"full", types.Rect{Width: 100, Height: 80}, 100, 80},
	}
	for _, tt := range tests {
		out, err := p.Crop(img, tt.rect)
		if err != nil {
			t.Errorf("%s: crop failed: %v", tt.name, err)
			continue
		}
		if out.Bounds().Dx() != tt.wantW || out.Bounds().Dy() != tt.wantH {
			t.Errorf("%s: expected %dx%d, got %v", tt.name, tt.wantW, tt.wantH, out.Bounds())
		}
	}

	if _, err := p.Crop(img, types.Rect{X: 200, Y: 200, Width: 10, Height: 10}); !errors.Is(err, ErrEmptyCrop) {
		t.Errorf("Expected ErrEmptyCrop, got %v", err)
	}
}

func TestCropPixels(t *testing.T) {
	img := createTestImage(90, 90)
	out, err := NewProcessor().Crop(img, types.Rect{X: 40, Y: 40, Width: 10, Height: 10})
	if err != nil {
		t.Fatalf("crop failed: %v", err)
	}
	r, _, _, _ := out.At(0, 0).RGBA()
	if r != 0xffff {
		t.Errorf("Expected the crop to come from the bright center, got %v", out.At(0, 0))
	}
}

func TestEncode(t *testing.T) {
	p := NewProcessor()
	img := createTestImage(40, 30)

	for _, opts := range []EncodeOptions{{Quality: 75}, {Quality: 0}, {Lossless: true}} {
		var buf bytes.Buffer
		if err := p.Encode(&buf, img, opts); err != nil {
			t.Fatalf("Encode(%+v) failed: %v", opts, err)
		}
		cfg, err := xwebp.DecodeConfig(bytes.NewReader(buf.Bytes()))
		if err != nil {
			t.Fatalf("Encode(%+v) produced invalid WebP: %v", opts, err)
		}
		if cfg.Width != 40 || cfg.Height != 30 {
			t.Errorf("Encode(%+v): expected 40x30, got %dx%d", opts, cfg.Width, cfg.Height)
		}
	}
}

func TestSaveWebP(t *testing.T) {
	p := NewProcessor()
	path := filepath.Join(t.TempDir(), "out.webp")

	n, err := p.SaveWebP(createTestImage(32, 32), path, EncodeOptions{Quality: 85})
	if err != nil {
		t.Fatalf("SaveWebP failed: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("output missing: %v", err)
	}
	if info.Size() != n {
		t.Errorf("Reported %d bytes, file has %d", n, info.Size())
	}

	loaded, err := p.LoadImage(path)
	if err != nil {
		t.Fatalf("failed to read back WebP: %v", err)
	}
	if loaded.Bounds().Dx() != 32 {
		t.Errorf("Expected width 32, got %d", loaded.Bounds().Dx())
	}
}

func TestSaveWebPBadPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "out.webp")
	if _, err := NewProcessor().SaveWebP(createTestImage(8, 8), path, EncodeOptions{}); err == nil {
		t.Error("Expected an error for a missing directory")
	}
}

func TestEstimateSize(t *testing.T) {
	p := NewProcessor()
	img := createTestImage(120, 90)

	low, err := p.EstimateSize(img, EncodeOptions{Quality: 10})
	if err != nil {
		t.Fatalf("EstimateSize failed: %v", err)
	}
	if low <= 0 {
		t.Errorf("Expected a positive size, got %d", low)
	}
}

func TestThumbnail(t *testing.T) {
	p := NewProcessor()

	thumb := p.Thumbnail(createTestImage(400, 200), 100, 100)
	if thumb.Bounds().Dx() != 100 || thumb.Bounds().Dy() != 50 {
		t.Errorf("Expected 100x50, got %v", thumb.Bounds())
	}

	small := createTestImage(50, 50)
	if p.Thumbnail(small, 100, 100) != image.Image(small) {
		t.Error("Expected small images to be returned unchanged")
	}
}

func TestPrepareImageForModel(t *testing.T) {
	b64, err := NewProcessor().PrepareImageForModel(createTestImage(300, 150), 100, 80)
	if err != nil {
		t.Fatalf("PrepareImageForModel failed: %v", err)
	}
	data, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		t.Fatalf("invalid base64: %v", err)
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("invalid JPEG: %v", err)
	}
	if cfg.Width != 100 || cfg.Height != 50 {
		t.Errorf("Expected 100x50, got %dx%d", cfg.Width, cfg.Height)
	}
}

func BenchmarkEncode(b *testing.B) {
	p := NewProcessor()
	img := createTestImage(640, 480)
	var buf bytes.Buffer
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		buf.Reset()
		p.Encode(&buf, img, EncodeOptions{Quality: 75})
	}
}
