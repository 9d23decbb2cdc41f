// Package dialogs provides the crop and rename dialogs of the desktop app.
package dialogs

import (
	"fmt"
	"image"
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"

	"github.com/menta2k/webp-converter/pkg/cropper"
	"github.com/menta2k/webp-converter/pkg/types"
	"github.com/menta2k/webp-converter/ui/cropview"
)

// CropDialog edits the crop of one image: a ratio preset, width and height
// fields that can be linked, and the interactive preview.
type CropDialog struct {
	title  string
	window fyne.Window
	engine *cropper.Engine
	img    image.Image

	view        *cropview.CropView
	ratioSelect *widget.Select
	widthEntry  *widget.Entry
	heightEntry *widget.Entry
	linkCheck   *widget.Check
	infoLabel   *widget.Label

	// updating suppresses field callbacks while fields follow the selection
	updating bool

	onApply func(types.Rect)
}

// NewCropDialog creates a crop dialog for img. engine carries the starting
// selection; onApply receives the image-space rectangle on Apply.
func NewCropDialog(title string, engine *cropper.Engine, img image.Image, window fyne.Window, onApply func(types.Rect)) *CropDialog {
	return &CropDialog{
		title:   title,
		window:  window,
		engine:  engine,
		img:     img,
		onApply: onApply,
	}
}

// Show displays the dialog.
func (d *CropDialog) Show() {
	content := d.createContent()

	dlg := dialog.NewCustomConfirm(
		"Crop: "+d.title,
		"Apply",
		"Cancel",
		content,
		func(apply bool) {
			if apply {
				d.apply()
			}
		},
		d.window,
	)
	dlg.Resize(fyne.NewSize(1100, 800))
	dlg.Show()
}

func (d *CropDialog) createContent() fyne.CanvasObject {
	// Keep the selection the caller prepared; the view starts a fresh session
	start := d.engine.Rect()
	resume := d.engine.Loaded()

	d.view = cropview.New(d.engine, d.img)
	if resume {
		d.engine.SetRect(start)
	}
	d.view.SetOnChanged(d.onCropChanged)

	d.ratioSelect = widget.NewSelect(cropper.PresetNames(), d.onRatioChanged)
	d.ratioSelect.Selected = cropper.Free.Name

	d.widthEntry = widget.NewEntry()
	d.widthEntry.OnChanged = d.onWidthChanged
	d.heightEntry = widget.NewEntry()
	d.heightEntry.OnChanged = d.onHeightChanged

	d.linkCheck = widget.NewCheck("Link proportions", d.onLinkToggled)
	d.infoLabel = widget.NewLabel("")

	fieldSize := fyne.NewSize(80, d.widthEntry.MinSize().Height)
	top := container.NewHBox(
		widget.NewLabel("Ratio:"), d.ratioSelect,
		widget.NewLabel("Width:"), container.NewGridWrap(fieldSize, d.widthEntry), widget.NewLabel("px"),
		d.linkCheck,
		widget.NewLabel("Height:"), container.NewGridWrap(fieldSize, d.heightEntry), widget.NewLabel("px"),
	)
	bottom := container.NewHBox(
		d.infoLabel,
		layout.NewSpacer(),
		widget.NewButton("Reset", d.reset),
	)

	d.onCropChanged(d.engine.Rect())
	return container.NewBorder(top, bottom, nil, nil, d.view)
}

// onCropChanged mirrors the selection into the size fields
func (d *CropDialog) onCropChanged(r types.Rect) {
	if d.updating {
		return
	}
	d.updating = true
	d.widthEntry.SetText(strconv.Itoa(r.Width))
	d.heightEntry.SetText(strconv.Itoa(r.Height))
	d.infoLabel.SetText(cropInfo(d.engine.ImageSize(), r))
	d.updating = false
}

func (d *CropDialog) onRatioChanged(name string) {
	ratio, _ := cropper.PresetByName(name)
	d.engine.SetAspectRatio(ratio)
	d.linkCheck.SetChecked(!ratio.IsFree())
}

// onLinkToggled locks the selection's own ratio when no preset is chosen,
// and drops any lock when unchecked
func (d *CropDialog) onLinkToggled(checked bool) {
	if checked {
		if d.ratioSelect.Selected == cropper.Free.Name {
			d.engine.LockCurrentRatio()
		}
		return
	}
	d.engine.SetAspectRatio(cropper.Free)
	d.ratioSelect.SetSelected(cropper.Free.Name)
}

func (d *CropDialog) onWidthChanged(text string) {
	d.onSizeChanged(cropper.AxisWidth, text)
}

func (d *CropDialog) onHeightChanged(text string) {
	d.onSizeChanged(cropper.AxisHeight, text)
}

func (d *CropDialog) onSizeChanged(axis cropper.Axis, text string) {
	if d.updating {
		return
	}
	value, ok := cropper.ParseDimension(text)
	if !ok {
		return
	}

	linked := d.linkCheck.Checked
	w, h := cropper.LinkedSize(d.engine.Rect(), axis, value, d.engine.ImageSize(), linked)
	if linked {
		d.updating = true
		if axis == cropper.AxisWidth {
			d.heightEntry.SetText(strconv.Itoa(h))
		} else {
			d.widthEntry.SetText(strconv.Itoa(w))
		}
		d.updating = false
	}
	d.engine.SetExplicitSize(w, h)
}

func (d *CropDialog) reset() {
	d.ratioSelect.SetSelected(cropper.Free.Name)
	d.linkCheck.SetChecked(false)
	d.engine.SetAspectRatio(cropper.Free)
	d.engine.Reset()
}

func (d *CropDialog) apply() {
	if d.onApply != nil {
		d.onApply(d.engine.Rect())
	}
}

func cropInfo(img types.Size, r types.Rect) string {
	return fmt.Sprintf("Original: %s px  |  Crop: %d×%d px  |  Position: (%d, %d)",
		img, r.Width, r.Height, r.X, r.Y)
}
