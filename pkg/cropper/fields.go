package cropper

import (
	"strconv"
	"strings"

	"github.com/menta2k/webp-converter/pkg/types"
)

// minFieldValue is the smallest value a size field forwards to the engine
const minFieldValue = 10

// Axis names the size field being edited
type Axis int

const (
	AxisWidth Axis = iota
	AxisHeight
)

// ParseDimension validates the text of a size field. Text that is not a
// whole number, or is below the field minimum, is not forwarded.
func ParseDimension(text string) (int, bool) {
	v, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil || v < minFieldValue {
		return 0, false
	}
	return v, true
}

// LinkedSize computes the size to request when one field is edited. With
// linked set, the other dimension follows the current selection's ratio.
// Both values are capped by the image.
func LinkedSize(current types.Rect, axis Axis, value int, img types.Size, linked bool) (int, int) {
	w, h := current.Width, current.Height

	switch axis {
	case AxisWidth:
		w = min(value, img.Width)
		if linked && current.Width > 0 {
			h = int(float64(w) * float64(current.Height) / float64(current.Width))
			h = min(h, img.Height)
		}
	case AxisHeight:
		h = min(value, img.Height)
		if linked && current.Height > 0 {
			w = int(float64(h) * float64(current.Width) / float64(current.Height))
			w = min(w, img.Width)
		}
	}
	return w, h
}
