// Package vision finds the visually busiest part of a photo without a model.
// It places automatic crops when no vision server is configured.
package vision

import (
	"image"
	"math"

	"github.com/disintegration/imaging"

	"github.com/menta2k/webp-converter/pkg/types"
)

// Config holds the saliency weights and the analysis resolution
type Config struct {
	// AnalysisSize is the longest side of the downscaled working copy
	AnalysisSize int
	// EdgeWeight scales local luminance gradients
	EdgeWeight float64
	// ContrastWeight scales the distance from the mean luminance
	ContrastWeight float64
	// MinSubjectRatio is the smallest subject window as a share of each side
	MinSubjectRatio float64
	// Margin pads a detected subject on each side, as a share of its size
	Margin float64
}

// DefaultConfig returns the weights used by New
func DefaultConfig() Config {
	return Config{
		AnalysisSize:    192,
		EdgeWeight:      0.7,
		ContrastWeight:  0.3,
		MinSubjectRatio: 0.2,
		Margin:          0.15,
	}
}

// Detector scores image regions by edge density and contrast
type Detector struct {
	config Config
}

// New creates a Detector with default configuration
func New() *Detector {
	return NewWithConfig(DefaultConfig())
}

// NewWithConfig creates a Detector with custom configuration
func NewWithConfig(config Config) *Detector {
	if config.AnalysisSize < 16 {
		config.AnalysisSize = 16
	}
	return &Detector{config: config}
}

// Region is a scored rectangle in source pixels
type Region struct {
	types.Rect
	Score float64
}

// Map is a saliency map over a downscaled copy of an image. Sums are kept
// as a summed-area table so any window costs four lookups.
type Map struct {
	Width, Height int
	// Scale converts map pixels to source pixels
	Scale float64

	sat []float64
}

// Sum returns the saliency inside the window at (x, y) of size w x h, in map pixels
func (m *Map) Sum(x, y, w, h int) float64 {
	stride := m.Width + 1
	x2, y2 := x+w, y+h
	return m.sat[y2*stride+x2] - m.sat[y*stride+x2] - m.sat[y2*stride+x] + m.sat[y*stride+x]
}

// Saliency builds the saliency map of img
func (d *Detector) Saliency(img image.Image) *Map {
	b := img.Bounds()
	n := d.config.AnalysisSize
	var work *image.NRGBA
	if b.Dx() > n || b.Dy() > n {
		work = imaging.Fit(img, n, n, imaging.Box)
	} else {
		work = imaging.Clone(img)
	}
	w, h := work.Bounds().Dx(), work.Bounds().Dy()

	lum := make([]float64, w*h)
	var mean float64
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := work.PixOffset(x, y)
			p := work.Pix[i : i+4 : i+4]
			a := float64(p[3]) / 255
			l := (0.299*float64(p[0]) + 0.587*float64(p[1]) + 0.114*float64(p[2])) / 255 * a
			lum[y*w+x] = l
			mean += l
		}
	}
	if len(lum) > 0 {
		mean /= float64(len(lum))
	}

	stride := w + 1
	sat := make([]float64, stride*(h+1))
	for y := 0; y < h; y++ {
		var row float64
		for x := 0; x < w; x++ {
			l := lum[y*w+x]
			var edge float64
			if x > 0 && x < w-1 && y > 0 && y < h-1 {
				edge = (math.Abs(l-lum[y*w+x-1]) + math.Abs(l-lum[y*w+x+1]) +
					math.Abs(l-lum[(y-1)*w+x]) + math.Abs(l-lum[(y+1)*w+x])) / 4
			}
			row += d.config.EdgeWeight*edge + d.config.ContrastWeight*math.Abs(l-mean)
			sat[(y+1)*stride+x+1] = sat[y*stride+x+1] + row
		}
	}

	scale := 1.0
	if w > 0 {
		scale = float64(b.Dx()) / float64(w)
	}
	return &Map{Width: w, Height: h, Scale: scale, sat: sat}
}

// FindSubject returns the window with the highest saliency density. Windows
// range from MinSubjectRatio of each side up to half of it.
func (d *Detector) FindSubject(img image.Image) Region {
	m := d.Saliency(img)
	size := imageSize(img)
	if m.Width == 0 || m.Height == 0 {
		return Region{Rect: types.Rect{Width: size.Width, Height: size.Height}}
	}

	best := Region{Score: -1}
	for _, frac := range []float64{d.config.MinSubjectRatio, 0.3, 0.4, 0.5} {
		ww := max(1, int(float64(m.Width)*frac))
		wh := max(1, int(float64(m.Height)*frac))
		step := max(1, min(ww, wh)/8)
		for y := 0; y+wh <= m.Height; y += step {
			for x := 0; x+ww <= m.Width; x += step {
				density := m.Sum(x, y, ww, wh) / float64(ww*wh)
				if density > best.Score {
					best = Region{Rect: types.Rect{X: x, Y: y, Width: ww, Height: wh}, Score: density}
				}
			}
		}
	}
	best.Rect = toSource(best.Rect, m.Scale, size)
	return best
}

// SubjectCrop returns the subject window padded by Margin and clamped to the image
func (d *Detector) SubjectCrop(img image.Image) types.Rect {
	r := d.FindSubject(img).Rect
	size := imageSize(img)
	padX := int(float64(r.Width) * d.config.Margin)
	padY := int(float64(r.Height) * d.config.Margin)

	x1 := max(r.X-padX, 0)
	y1 := max(r.Y-padY, 0)
	x2 := min(r.X+r.Width+padX, size.Width)
	y2 := min(r.Y+r.Height+padY, size.Height)
	return types.Rect{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}
}

// BestCrop returns the largest crop of the given width/height ratio,
// positioned over the most salient part of img. Ties keep the position
// closest to the center.
func (d *Detector) BestCrop(img image.Image, ratio float64) types.Rect {
	size := imageSize(img)
	if ratio <= 0 || size.Width == 0 || size.Height == 0 {
		return types.Rect{Width: size.Width, Height: size.Height}
	}

	cw, ch := size.Width, int(math.Round(float64(size.Width)/ratio))
	if ch > size.Height {
		cw, ch = int(math.Round(float64(size.Height)*ratio)), size.Height
	}
	cw, ch = max(cw, 1), max(ch, 1)

	m := d.Saliency(img)
	mw := min(max(int(float64(cw)/m.Scale), 1), m.Width)
	mh := min(max(int(float64(ch)/m.Scale), 1), m.Height)

	cx, cy := float64(m.Width-mw)/2, float64(m.Height-mh)/2
	bestX, bestY := int(cx), int(cy)
	bestSum, bestDist := -1.0, math.MaxFloat64
	for y := 0; y+mh <= m.Height; y++ {
		for x := 0; x+mw <= m.Width; x++ {
			sum := m.Sum(x, y, mw, mh)
			dist := math.Hypot(float64(x)-cx, float64(y)-cy)
			if sum > bestSum+1e-9 || (math.Abs(sum-bestSum) <= 1e-9 && dist < bestDist) {
				bestX, bestY, bestSum, bestDist = x, y, sum, dist
			}
		}
	}

	x := min(int(float64(bestX)*m.Scale), size.Width-cw)
	y := min(int(float64(bestY)*m.Scale), size.Height-ch)
	return types.Rect{X: max(x, 0), Y: max(y, 0), Width: cw, Height: ch}
}

func imageSize(img image.Image) types.Size {
	b := img.Bounds()
	return types.Size{Width: b.Dx(), Height: b.Dy()}
}

// toSource maps a rectangle in map pixels back into the source image
func toSource(r types.Rect, scale float64, size types.Size) types.Rect {
	x := min(int(float64(r.X)*scale), size.Width-1)
	y := min(int(float64(r.Y)*scale), size.Height-1)
	w := min(int(math.Ceil(float64(r.Width)*scale)), size.Width-x)
	h := min(int(math.Ceil(float64(r.Height)*scale)), size.Height-y)
	return types.Rect{X: max(x, 0), Y: max(y, 0), Width: max(w, 1), Height: max(h, 1)}
}
