// Package cropview provides the interactive crop preview: a fyne widget that
// paints a cropper.Engine selection over the image and feeds it pointer events.
package cropview

import (
	"image"
	"image/color"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"github.com/menta2k/webp-converter/pkg/cropper"
	"github.com/menta2k/webp-converter/pkg/types"
)

var (
	backgroundColor = color.NRGBA{R: 0x2b, G: 0x2b, B: 0x2b, A: 0xff}
	shadeColor      = color.NRGBA{A: 0x80}
	borderColor     = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	handleColor     = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	handleStroke    = color.NRGBA{R: 0x33, G: 0x33, B: 0x33, A: 0xff}
)

// CropView shows an image with a movable, resizable crop selection.
// All geometry lives in the engine; the widget only translates events.
type CropView struct {
	widget.BaseWidget

	engine *cropper.Engine
	img    image.Image

	pressed bool
	hover   image.Point

	onChanged func(types.Rect)
}

var (
	_ fyne.Draggable     = (*CropView)(nil)
	_ desktop.Mouseable  = (*CropView)(nil)
	_ desktop.Hoverable  = (*CropView)(nil)
	_ desktop.Cursorable = (*CropView)(nil)
)

// New creates a view for img driven by engine. The engine session is
// started for the image size.
func New(engine *cropper.Engine, img image.Image) *CropView {
	v := &CropView{engine: engine}
	v.ExtendBaseWidget(v)
	engine.OnChange(v.changed)
	v.SetImage(img)
	return v
}

// Engine returns the selection engine
func (v *CropView) Engine() *cropper.Engine {
	return v.engine
}

// SetOnChanged registers a callback fired with the image-space selection
// after every change
func (v *CropView) SetOnChanged(fn func(types.Rect)) {
	v.onChanged = fn
}

// SetImage replaces the displayed image and selects all of it
func (v *CropView) SetImage(img image.Image) {
	v.img = img
	if img != nil {
		b := img.Bounds()
		v.engine.SetImage(b.Dx(), b.Dy())
	} else {
		v.engine.SetImage(0, 0)
	}
	v.Refresh()
}

func (v *CropView) changed() {
	v.Refresh()
	if v.onChanged != nil {
		v.onChanged(v.engine.Rect())
	}
}

// CreateRenderer implements fyne.Widget
func (v *CropView) CreateRenderer() fyne.WidgetRenderer {
	r := &cropViewRenderer{
		view:       v,
		background: fynecanvas.NewRectangle(backgroundColor),
		image:      fynecanvas.NewImageFromImage(v.img),
		border:     fynecanvas.NewRectangle(color.Transparent),
		handles:    make(map[cropper.HandleKind]*fynecanvas.Rectangle),
	}
	r.image.FillMode = fynecanvas.ImageFillStretch
	r.border.StrokeColor = borderColor
	r.border.StrokeWidth = 2

	r.objects = []fyne.CanvasObject{r.background, r.image}
	for i := range r.shades {
		r.shades[i] = fynecanvas.NewRectangle(shadeColor)
		r.objects = append(r.objects, r.shades[i])
	}
	r.objects = append(r.objects, r.border)
	for _, kind := range handleKinds {
		h := fynecanvas.NewRectangle(handleColor)
		h.StrokeColor = handleStroke
		h.StrokeWidth = 1
		r.handles[kind] = h
		r.objects = append(r.objects, h)
	}
	return r
}

// MinSize keeps room for a usable preview
func (v *CropView) MinSize() fyne.Size {
	return fyne.NewSize(320, 240)
}

// MouseDown starts a gesture at the pressed handle
func (v *CropView) MouseDown(ev *desktop.MouseEvent) {
	if ev.Button != desktop.MouseButtonPrimary {
		return
	}
	v.pressed = true
	v.engine.BeginDrag(toPoint(ev.Position))
}

// MouseUp ends a gesture that never turned into a drag
func (v *CropView) MouseUp(ev *desktop.MouseEvent) {
	v.endDrag()
}

// Dragged moves or resizes the selection
func (v *CropView) Dragged(ev *fyne.DragEvent) {
	if !v.pressed {
		// Touch input has no MouseDown: the gesture started one delta ago
		v.pressed = true
		start := ev.Position.Subtract(ev.Dragged)
		v.engine.BeginDrag(toPoint(start))
	}
	v.hover = toPoint(ev.Position)
	v.engine.UpdateDrag(v.hover)
}

// DragEnd finishes the gesture
func (v *CropView) DragEnd() {
	v.endDrag()
}

func (v *CropView) endDrag() {
	v.pressed = false
	v.engine.EndDrag()
}

// MouseIn implements desktop.Hoverable
func (v *CropView) MouseIn(ev *desktop.MouseEvent) {
	v.hover = toPoint(ev.Position)
}

// MouseMoved tracks the pointer for the cursor hint
func (v *CropView) MouseMoved(ev *desktop.MouseEvent) {
	v.hover = toPoint(ev.Position)
}

// MouseOut implements desktop.Hoverable
func (v *CropView) MouseOut() {
	v.hover = image.Pt(-1, -1)
}

// Cursor returns the pointer shape for the handle under the mouse
func (v *CropView) Cursor() desktop.Cursor {
	return desktopCursor(v.engine.Cursor(v.hover))
}

// desktopCursor maps an engine hint to the closest fyne cursor. fyne has no
// diagonal resize cursors, corners use the crosshair.
func desktopCursor(shape cropper.CursorShape) desktop.Cursor {
	switch shape {
	case cropper.CursorSizeFDiag, cropper.CursorSizeBDiag:
		return desktop.CrosshairCursor
	case cropper.CursorSizeVertical:
		return desktop.VResizeCursor
	case cropper.CursorSizeHorizontal:
		return desktop.HResizeCursor
	case cropper.CursorSizeAll:
		return desktop.PointerCursor
	}
	return desktop.DefaultCursor
}

func toPoint(p fyne.Position) image.Point {
	return image.Pt(int(p.X), int(p.Y))
}

var handleKinds = []cropper.HandleKind{
	cropper.HandleTopLeft, cropper.HandleTop, cropper.HandleTopRight, cropper.HandleRight,
	cropper.HandleBottomRight, cropper.HandleBottom, cropper.HandleBottomLeft, cropper.HandleLeft,
}

type cropViewRenderer struct {
	view       *CropView
	background *fynecanvas.Rectangle
	image      *fynecanvas.Image
	shades     [4]*fynecanvas.Rectangle
	border     *fynecanvas.Rectangle
	handles    map[cropper.HandleKind]*fynecanvas.Rectangle
	objects    []fyne.CanvasObject
}

func (r *cropViewRenderer) Layout(size fyne.Size) {
	r.background.Resize(size)
	r.view.engine.SetViewportSize(int(size.Width), int(size.Height))
	r.arrange()
}

// arrange positions every overlay object from the engine's view geometry
func (r *cropViewRenderer) arrange() {
	e := r.view.engine
	if !e.Loaded() {
		for _, o := range r.objects[1:] {
			o.Hide()
		}
		return
	}

	place(r.image, e.ImageViewRect())
	for i, band := range e.ShadeBands() {
		place(r.shades[i], band)
	}
	place(r.border, e.ViewRect())
	for kind, marker := range e.HandleMarkers() {
		place(r.handles[kind], marker)
	}
}

func place(o fyne.CanvasObject, rect image.Rectangle) {
	if rect.Empty() {
		o.Hide()
		return
	}
	o.Move(fyne.NewPos(float32(rect.Min.X), float32(rect.Min.Y)))
	o.Resize(fyne.NewSize(float32(rect.Dx()), float32(rect.Dy())))
	o.Show()
}

func (r *cropViewRenderer) MinSize() fyne.Size {
	return r.view.MinSize()
}

func (r *cropViewRenderer) Refresh() {
	r.image.Image = r.view.img
	r.arrange()
	for _, o := range r.objects {
		o.Refresh()
	}
}

func (r *cropViewRenderer) Objects() []fyne.CanvasObject {
	return r.objects
}

func (r *cropViewRenderer) Destroy() {}
