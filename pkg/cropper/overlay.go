package cropper

import "image"

// ShadeBands returns the four view-space areas of the image outside the
// selection (top, bottom, left, right) that the preview dims.
func (e *Engine) ShadeBands() [4]image.Rectangle {
	img := e.ImageViewRect()
	sel := e.ViewRect()
	return [4]image.Rectangle{
		image.Rect(img.Min.X, img.Min.Y, img.Max.X, sel.Min.Y),
		image.Rect(img.Min.X, sel.Max.Y, img.Max.X, img.Max.Y),
		image.Rect(img.Min.X, sel.Min.Y, sel.Min.X, sel.Max.Y),
		image.Rect(sel.Max.X, sel.Min.Y, img.Max.X, sel.Max.Y),
	}
}

// HandleMarkers returns the eight handle squares to paint, centered on the
// corners and edge midpoints of the view-space selection.
func (e *Engine) HandleMarkers() map[HandleKind]image.Rectangle {
	r := e.ViewRect()
	hs := e.config.HandleSize
	half := hs / 2
	cx := (r.Min.X + r.Max.X) / 2
	cy := (r.Min.Y + r.Max.Y) / 2

	square := func(x, y int) image.Rectangle {
		return image.Rect(x-half, y-half, x-half+hs, y-half+hs)
	}
	return map[HandleKind]image.Rectangle{
		HandleTopLeft:     square(r.Min.X, r.Min.Y),
		HandleTop:         square(cx, r.Min.Y),
		HandleTopRight:    square(r.Max.X, r.Min.Y),
		HandleRight:       square(r.Max.X, cy),
		HandleBottomRight: square(r.Max.X, r.Max.Y),
		HandleBottom:      square(cx, r.Max.Y),
		HandleBottomLeft:  square(r.Min.X, r.Max.Y),
		HandleLeft:        square(r.Min.X, cy),
	}
}
