package cropper

import "image"

// HandleKind identifies one of the nine interactive zones of the selection
type HandleKind int

const (
	HandleNone HandleKind = iota
	HandleTopLeft
	HandleTop
	HandleTopRight
	HandleRight
	HandleBottomRight
	HandleBottom
	HandleBottomLeft
	HandleLeft
	HandleMove
)

var handleNames = [...]string{
	HandleNone:        "none",
	HandleTopLeft:     "top-left",
	HandleTop:         "top",
	HandleTopRight:    "top-right",
	HandleRight:       "right",
	HandleBottomRight: "bottom-right",
	HandleBottom:      "bottom",
	HandleBottomLeft:  "bottom-left",
	HandleLeft:        "left",
	HandleMove:        "move",
}

func (h HandleKind) String() string {
	if h < 0 || int(h) >= len(handleNames) {
		return "unknown"
	}
	return handleNames[h]
}

// IsCorner reports whether h resizes two edges at once
func (h HandleKind) IsCorner() bool {
	switch h {
	case HandleTopLeft, HandleTopRight, HandleBottomRight, HandleBottomLeft:
		return true
	}
	return false
}

// IsEdge reports whether h resizes a single edge
func (h HandleKind) IsEdge() bool {
	switch h {
	case HandleTop, HandleRight, HandleBottom, HandleLeft:
		return true
	}
	return false
}

// Resizes reports whether dragging h changes the rectangle's size
func (h HandleKind) Resizes() bool {
	return h.IsCorner() || h.IsEdge()
}

// CursorShape is the pointer hint shown over a handle
type CursorShape int

const (
	CursorArrow CursorShape = iota
	CursorSizeFDiag
	CursorSizeBDiag
	CursorSizeVertical
	CursorSizeHorizontal
	CursorSizeAll
)

func (c CursorShape) String() string {
	switch c {
	case CursorSizeFDiag:
		return "size-fdiag"
	case CursorSizeBDiag:
		return "size-bdiag"
	case CursorSizeVertical:
		return "size-ver"
	case CursorSizeHorizontal:
		return "size-hor"
	case CursorSizeAll:
		return "size-all"
	}
	return "arrow"
}

// CursorFor maps a handle to its cursor hint
func CursorFor(h HandleKind) CursorShape {
	switch h {
	case HandleTopLeft, HandleBottomRight:
		return CursorSizeFDiag
	case HandleTopRight, HandleBottomLeft:
		return CursorSizeBDiag
	case HandleTop, HandleBottom:
		return CursorSizeVertical
	case HandleLeft, HandleRight:
		return CursorSizeHorizontal
	case HandleMove:
		return CursorSizeAll
	}
	return CursorArrow
}

// zone builds a rectangle from origin and extent without normalizing it,
// so a negative extent yields an empty zone. That happens to the edge bands
// of a selection shorter than two handles; the normalized band would lie
// inside the corner boxes, which hitTest checks first, so no point changes
// its result.
func zone(x, y, w, h int) image.Rectangle {
	return image.Rectangle{Min: image.Pt(x, y), Max: image.Pt(x+w, y+h)}
}

// hitTest classifies p against the view-space selection r using handles of
// size hs. Corners are tested before edges because the edge bands stop where
// the corner boxes begin.
func hitTest(r image.Rectangle, hs int, p image.Point) HandleKind {
	w, h := r.Dx(), r.Dy()
	left, top := r.Min.X, r.Min.Y
	right, bottom := left+w-1, top+h-1
	span := hs * 2

	corners := []struct {
		kind HandleKind
		x, y int
	}{
		{HandleTopLeft, left, top},
		{HandleTopRight, right, top},
		{HandleBottomRight, right, bottom},
		{HandleBottomLeft, left, bottom},
	}
	for _, c := range corners {
		if p.In(zone(c.x-hs, c.y-hs, span, span)) {
			return c.kind
		}
	}

	edges := []struct {
		kind HandleKind
		z    image.Rectangle
	}{
		{HandleTop, zone(left+hs, top-hs, w-span, span)},
		{HandleRight, zone(right-hs, top+hs, span, h-span)},
		{HandleBottom, zone(left+hs, bottom-hs, w-span, span)},
		{HandleLeft, zone(left-hs, top+hs, span, h-span)},
	}
	for _, e := range edges {
		if p.In(e.z) {
			return e.kind
		}
	}

	if p.In(zone(left, top, w, h)) {
		return HandleMove
	}
	return HandleNone
}

// resizeRule says how a drag delta feeds each field of the start rectangle:
// x += X*dx, width += W*dx, y += Y*dy, height += H*dy.
type resizeRule struct {
	X, W, Y, H int
}

var resizeRules = map[HandleKind]resizeRule{
	HandleMove:        {X: 1, Y: 1},
	HandleTopLeft:     {X: 1, W: -1, Y: 1, H: -1},
	HandleTop:         {Y: 1, H: -1},
	HandleTopRight:    {W: 1, Y: 1, H: -1},
	HandleRight:       {W: 1},
	HandleBottomRight: {W: 1, H: 1},
	HandleBottom:      {H: 1},
	HandleBottomLeft:  {X: 1, W: -1, H: 1},
	HandleLeft:        {X: 1, W: -1},
}
