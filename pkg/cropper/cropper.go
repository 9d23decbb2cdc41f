package cropper

import (
	"image"

	"github.com/menta2k/webp-converter/pkg/types"
)

// Defaults for the selection engine
const (
	DefaultMinCropSize = 50
	DefaultHandleSize  = 10
)

// Config holds the engine constants
type Config struct {
	// MinCropSize is the smallest width or height a drag may produce, in image pixels
	MinCropSize int
	// HandleSize is the half-extent of a handle hit box, in view pixels
	HandleSize int
}

// DefaultConfig returns the engine defaults
func DefaultConfig() Config {
	return Config{
		MinCropSize: DefaultMinCropSize,
		HandleSize:  DefaultHandleSize,
	}
}

// Engine owns the crop selection of one image: the rectangle in image space,
// the mapping onto the preview, the aspect lock and the active drag.
// It is not safe for concurrent use.
type Engine struct {
	config Config

	image    types.Size
	loaded   bool
	viewport types.Size
	view     ViewTransform

	rect  types.Rect
	ratio AspectRatio

	drag     HandleKind
	dragFrom image.Point
	dragRect types.Rect

	onChange func()
}

// New creates an Engine with default configuration
func New() *Engine {
	return NewWithConfig(DefaultConfig())
}

// NewWithConfig creates an Engine with custom configuration.
// Non-positive values fall back to the defaults.
func NewWithConfig(config Config) *Engine {
	if config.MinCropSize <= 0 {
		config.MinCropSize = DefaultMinCropSize
	}
	if config.HandleSize <= 0 {
		config.HandleSize = DefaultHandleSize
	}
	return &Engine{
		config: config,
		view:   Identity,
		ratio:  Free,
	}
}

// OnChange registers the callback fired after every rectangle mutation
func (e *Engine) OnChange(fn func()) {
	e.onChange = fn
}

func (e *Engine) notify() {
	if e.onChange != nil {
		e.onChange()
	}
}

// Config returns the engine constants
func (e *Engine) Config() Config {
	return e.config
}

// SetImage starts a new session for an image of the given size. The
// selection covers the whole image and no change notification is sent.
func (e *Engine) SetImage(width, height int) {
	e.image = types.Size{Width: width, Height: height}
	e.loaded = width > 0 && height > 0
	e.rect = types.Rect{Width: width, Height: height}
	e.drag = HandleNone
	e.updateView()
}

// Loaded reports whether an image has been set
func (e *Engine) Loaded() bool {
	return e.loaded
}

// ImageSize returns the size of the current image
func (e *Engine) ImageSize() types.Size {
	return e.image
}

// SetViewportSize recomputes the view mapping for a resized preview area.
// The image-space rectangle is unchanged.
func (e *Engine) SetViewportSize(width, height int) {
	e.viewport = types.Size{Width: width, Height: height}
	e.updateView()
}

func (e *Engine) updateView() {
	if !e.loaded {
		return
	}
	e.view = NewViewTransform(e.image, e.viewport.Width, e.viewport.Height)
}

// View returns the current view mapping
func (e *Engine) View() ViewTransform {
	return e.view
}

// ImageToView converts an image-space point to view space
func (e *Engine) ImageToView(x, y int) image.Point {
	return e.view.ToView(x, y)
}

// ViewToImage converts a view-space point to image space
func (e *Engine) ViewToImage(p image.Point) (int, int) {
	return e.view.ToImage(p)
}

// Rect returns the selection in image space
func (e *Engine) Rect() types.Rect {
	return e.rect
}

// ViewRect returns the selection projected to view space
func (e *Engine) ViewRect() image.Rectangle {
	return e.view.RectToView(e.rect)
}

// ImageViewRect returns the area the scaled image occupies in view space
func (e *Engine) ImageViewRect() image.Rectangle {
	return e.view.RectToView(types.Rect{Width: e.image.Width, Height: e.image.Height})
}

// AspectRatio returns the active aspect lock
func (e *Engine) AspectRatio() AspectRatio {
	return e.ratio
}

// HitTest returns the handle under a view-space point
func (e *Engine) HitTest(p image.Point) HandleKind {
	if !e.loaded {
		return HandleNone
	}
	return hitTest(e.ViewRect(), e.config.HandleSize, p)
}

// Cursor returns the cursor hint for a view-space point. While dragging the
// active handle's cursor is kept.
func (e *Engine) Cursor(p image.Point) CursorShape {
	if e.drag != HandleNone {
		return CursorFor(e.drag)
	}
	return CursorFor(e.HitTest(p))
}

// ActiveHandle returns the handle being dragged, or HandleNone
func (e *Engine) ActiveHandle() HandleKind {
	return e.drag
}

// Dragging reports whether a drag gesture is in progress
func (e *Engine) Dragging() bool {
	return e.drag != HandleNone
}

// BeginDrag starts a gesture at a view-space point. Nothing happens when the
// point is outside every handle zone.
func (e *Engine) BeginDrag(p image.Point) {
	e.drag = e.HitTest(p)
	e.dragFrom = p
	e.dragRect = e.rect
}

// UpdateDrag applies the pointer position to the rectangle captured at
// BeginDrag. A resize that would shrink a dimension below the minimum is
// discarded for this event.
func (e *Engine) UpdateDrag(p image.Point) {
	if e.drag == HandleNone {
		return
	}

	dx := e.view.Delta(p.X - e.dragFrom.X)
	dy := e.view.Delta(p.Y - e.dragFrom.Y)

	if next, ok := e.applyRule(e.dragRect, dx, dy); ok {
		e.rect = next
	}

	if e.drag.Resizes() && !e.ratio.IsFree() {
		e.lockFromWidth()
	}

	e.constrain()
	e.notify()
}

// applyRule moves or resizes start by the delta according to the active handle
func (e *Engine) applyRule(start types.Rect, dx, dy int) (types.Rect, bool) {
	rule := resizeRules[e.drag]
	next := types.Rect{
		X:      start.X + rule.X*dx,
		Y:      start.Y + rule.Y*dy,
		Width:  start.Width + rule.W*dx,
		Height: start.Height + rule.H*dy,
	}
	minSize := e.config.MinCropSize
	if rule.W != 0 && next.Width < minSize {
		return start, false
	}
	if rule.H != 0 && next.Height < minSize {
		return start, false
	}
	return next, true
}

// EndDrag finishes the gesture
func (e *Engine) EndDrag() {
	e.drag = HandleNone
}

// SetAspectRatio locks the selection to a ratio, or unlocks it with Free.
// A new lock is applied immediately around the selection's center.
func (e *Engine) SetAspectRatio(ratio AspectRatio) {
	if ratio.IsFree() {
		e.ratio = Free
		return
	}
	e.ratio = ratio
	if !e.loaded {
		return
	}
	e.projectRatio()
	e.constrain()
	e.notify()
}

// LockCurrentRatio locks the selection to its own reduced width:height
func (e *Engine) LockCurrentRatio() AspectRatio {
	if e.rect.Empty() {
		return e.ratio
	}
	ratio := Ratio(e.rect.Width, e.rect.Height).Reduce()
	e.SetAspectRatio(ratio)
	return ratio
}

// projectRatio shrinks the too-long side so the selection matches the ratio,
// keeping its center.
func (e *Engine) projectRatio() {
	target := e.ratio.Value()
	current := 1.0
	if e.rect.Height > 0 {
		current = float64(e.rect.Width) / float64(e.rect.Height)
	}

	cx, cy := e.rect.Center()
	w, h := e.rect.Width, e.rect.Height
	if current > target {
		w = int(float64(h) * target)
	} else {
		h = int(float64(w) / target)
	}

	e.rect = types.Rect{X: cx - w/2, Y: cy - h/2, Width: w, Height: h}
}

// lockFromWidth derives the height from the width after a resize. The result
// is fitted inside the image first so the boundary clamp cannot break the
// ratio; the minimum size wins over the exact width.
func (e *Engine) lockFromWidth() {
	target := e.ratio.Value()
	w := e.rect.Width
	if e.loaded && w > e.image.Width {
		w = e.image.Width
	}
	h := int(float64(w) / target)
	if e.loaded && h > e.image.Height {
		h = e.image.Height
		w = int(float64(h) * target)
	}
	if h < e.config.MinCropSize {
		h = e.config.MinCropSize
		w = int(float64(h) * target)
	}
	e.rect.Width, e.rect.Height = w, h
}

// SetExplicitSize resizes the selection from numeric input, keeping its
// center. Values are limited to [MinCropSize, image dimension].
func (e *Engine) SetExplicitSize(width, height int) {
	if !e.loaded {
		return
	}

	width = clampInt(width, e.config.MinCropSize, e.image.Width)
	height = clampInt(height, e.config.MinCropSize, e.image.Height)

	cx, cy := e.rect.Center()
	e.rect = types.Rect{X: cx - width/2, Y: cy - height/2, Width: width, Height: height}

	e.constrain()
	e.notify()
}

// SetRect replaces the selection, for example with a suggested crop.
// The active aspect lock is re-applied around the rectangle's center.
func (e *Engine) SetRect(r types.Rect) {
	if !e.loaded {
		return
	}
	e.rect = r
	if !e.ratio.IsFree() {
		e.projectRatio()
	}
	e.constrain()
	e.notify()
}

// Reset selects the whole image. The aspect lock is left as it is.
func (e *Engine) Reset() {
	if !e.loaded {
		return
	}
	e.rect = types.Rect{Width: e.image.Width, Height: e.image.Height}
	e.notify()
}

// constrain keeps the selection inside the image: size first, then the
// top-left floor, then a shift back from the far edges, then the floor again.
func (e *Engine) constrain() {
	if !e.loaded {
		return
	}
	r := &e.rect

	r.Width = clampInt(r.Width, e.config.MinCropSize, e.image.Width)
	r.Height = clampInt(r.Height, e.config.MinCropSize, e.image.Height)

	r.X = max(0, r.X)
	r.Y = max(0, r.Y)

	if r.X+r.Width > e.image.Width {
		r.X = e.image.Width - r.Width
	}
	if r.Y+r.Height > e.image.Height {
		r.Y = e.image.Height - r.Height
	}

	r.X = max(0, r.X)
	r.Y = max(0, r.Y)
}

// clampInt raises v to lo, then caps it at hi. hi wins when hi < lo.
func clampInt(v, lo, hi int) int {
	return min(max(v, lo), hi)
}
