package cropper

import (
	"image"
	"math"

	"github.com/menta2k/webp-converter/pkg/types"
)

// viewportFill leaves a 5% margin around the fitted image
const viewportFill = 0.95

// ViewTransform maps image space onto the preview area:
// view = image*Scale + Offset. Conversions truncate toward zero.
type ViewTransform struct {
	Scale   float64
	OffsetX int
	OffsetY int
}

// Identity is the 1:1 transform used before an image or viewport is known
var Identity = ViewTransform{Scale: 1}

// NewViewTransform fits an image into a viewport preserving its aspect ratio
// and centers it.
func NewViewTransform(img types.Size, viewportW, viewportH int) ViewTransform {
	if img.Width <= 0 || img.Height <= 0 || viewportW <= 0 || viewportH <= 0 {
		return Identity
	}

	scaleW := float64(viewportW) / float64(img.Width)
	scaleH := float64(viewportH) / float64(img.Height)
	scale := math.Min(scaleW, scaleH) * viewportFill

	scaledW := int(float64(img.Width) * scale)
	scaledH := int(float64(img.Height) * scale)

	return ViewTransform{
		Scale:   scale,
		OffsetX: (viewportW - scaledW) / 2,
		OffsetY: (viewportH - scaledH) / 2,
	}
}

// ToView converts an image-space point to view space
func (t ViewTransform) ToView(x, y int) image.Point {
	return image.Point{
		X: int(float64(x)*t.Scale + float64(t.OffsetX)),
		Y: int(float64(y)*t.Scale + float64(t.OffsetY)),
	}
}

// ToImage converts a view-space point to image space
func (t ViewTransform) ToImage(p image.Point) (int, int) {
	return int(float64(p.X-t.OffsetX) / t.Scale), int(float64(p.Y-t.OffsetY) / t.Scale)
}

// Length scales an image-space length to view space
func (t ViewTransform) Length(n int) int {
	return int(float64(n) * t.Scale)
}

// Delta scales a view-space distance back to image space
func (t ViewTransform) Delta(d int) int {
	return int(float64(d) / t.Scale)
}

// RectToView projects an image-space rectangle into view space
func (t ViewTransform) RectToView(r types.Rect) image.Rectangle {
	tl := t.ToView(r.X, r.Y)
	return image.Rectangle{
		Min: tl,
		Max: image.Pt(tl.X+t.Length(r.Width), tl.Y+t.Length(r.Height)),
	}
}
