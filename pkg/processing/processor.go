package processing

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/HugoSmits86/nativewebp"
	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	_ "github.com/ftrvxmtrx/tga"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/menta2k/webp-converter/pkg/types"
)

var (
	// ErrUnsupportedFormat is returned when no registered decoder accepts a file
	ErrUnsupportedFormat = errors.New("image: unsupported format")
	// ErrEmptyCrop is returned when a crop rectangle has no overlap with the image
	ErrEmptyCrop = errors.New("image: empty crop rectangle")
)

// DefaultQuality is the lossy WebP quality used when none is given
const DefaultQuality = 75

// EncodeOptions controls WebP output
type EncodeOptions struct {
	Quality  int
	Lossless bool
}

func (o EncodeOptions) quality() float32 {
	if o.Quality <= 0 || o.Quality > 100 {
		return DefaultQuality
	}
	return float32(o.Quality)
}

// Processor handles image loading, cropping and WebP encoding
type Processor struct {
	// Background fills transparent pixels before encoding
	Background color.Color
}

// NewProcessor creates a new image processor that flattens onto white
func NewProcessor() *Processor {
	return &Processor{Background: color.White}
}

// LoadImage loads an image from a file path, applies EXIF orientation and
// flattens transparency onto the background
func (p *Processor) LoadImage(path string) (image.Image, error) {
	img, err := p.decode(path)
	if err != nil {
		return nil, err
	}
	return Flatten(img, p.Background), nil
}

func (p *Processor) decode(path string) (image.Image, error) {
	// Try imaging.Open (registered decoders)
	if img, err := imaging.Open(path, imaging.AutoOrientation(true)); err == nil {
		return img, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	// Fallback: explicit WebP decode for files the x/image decoder rejects
	if strings.EqualFold(filepath.Ext(path), ".webp") {
		if img, err := webp.Decode(f); err == nil {
			return img, nil
		}
	}
	return nil, fmt.Errorf("%s: %w", path, ErrUnsupportedFormat)
}

// Dimensions reads the pixel size of an image file from its header
func (p *Processor) Dimensions(path string) (types.Size, error) {
	f, err := os.Open(path)
	if err != nil {
		return types.Size{}, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err == nil {
		return types.Size{Width: cfg.Width, Height: cfg.Height}, nil
	}

	// Header not understood: fall back to a full decode
	img, err := p.decode(path)
	if err != nil {
		return types.Size{}, err
	}
	b := img.Bounds()
	return types.Size{Width: b.Dx(), Height: b.Dy()}, nil
}

// Flatten composites img over a solid background. Opaque images are returned as is.
func Flatten(img image.Image, bg color.Color) image.Image {
	if o, ok := img.(interface{ Opaque() bool }); ok && o.Opaque() {
		return img
	}
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Over)
	return dst
}

// Crop cuts the image-space rectangle out of img. The rectangle is clipped
// to the image bounds first.
func (p *Processor) Crop(img image.Image, r types.Rect) (image.Image, error) {
	bounds := img.Bounds()
	rect := r.Image().Add(bounds.Min).Intersect(bounds)
	if rect.Empty() {
		return nil, fmt.Errorf("crop %v: %w", r, ErrEmptyCrop)
	}
	return imaging.Crop(img, rect), nil
}

// Encode writes img as WebP. Lossless output uses the pure Go encoder.
func (p *Processor) Encode(w io.Writer, img image.Image, opts EncodeOptions) error {
	if opts.Lossless {
		if err := nativewebp.Encode(w, img, nil); err != nil {
			return fmt.Errorf("webp lossless encode: %w", err)
		}
		return nil
	}
	if err := webp.Encode(w, img, &webp.Options{Quality: opts.quality()}); err != nil {
		return fmt.Errorf("webp encode: %w", err)
	}
	return nil
}

// SaveWebP encodes img to path and returns the written size in bytes
func (p *Processor) SaveWebP(img image.Image, path string, opts EncodeOptions) (int64, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("failed to create %s: %w", path, err)
	}

	cw := &countingWriter{w: f}
	if err := p.Encode(cw, img, opts); err != nil {
		f.Close()
		os.Remove(path)
		return 0, err
	}
	if err := f.Close(); err != nil {
		return 0, fmt.Errorf("failed to write %s: %w", path, err)
	}
	return cw.n, nil
}

// EstimateSize encodes img in memory and returns the WebP size in bytes
func (p *Processor) EstimateSize(img image.Image, opts EncodeOptions) (int, error) {
	var buf bytes.Buffer
	if err := p.Encode(&buf, img, opts); err != nil {
		return 0, err
	}
	return buf.Len(), nil
}

// Thumbnail scales img down to fit within maxW x maxH, preserving aspect ratio
func (p *Processor) Thumbnail(img image.Image, maxW, maxH int) image.Image {
	b := img.Bounds()
	if b.Dx() <= maxW && b.Dy() <= maxH {
		return img
	}
	return imaging.Fit(img, maxW, maxH, imaging.Lanczos)
}

// PrepareImageForModel converts an image to base64 JPEG for sending to vision models
func (p *Processor) PrepareImageForModel(img image.Image, maxDim int, quality int) (string, error) {
	if maxDim > 0 {
		img = p.Thumbnail(img, maxDim, maxDim)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return "", fmt.Errorf("jpeg encode: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(b []byte) (int, error) {
	n, err := c.w.Write(b)
	c.n += int64(n)
	return n, err
}
