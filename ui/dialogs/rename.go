package dialogs

import (
	"errors"
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"

	"github.com/menta2k/webp-converter/pkg/naming"
)

// RenameDialog collects keywords and previews the names generated for
// every queued file.
type RenameDialog struct {
	count    int
	window   fyne.Window
	generate func(text string) (naming.Summary, error)

	keywordsEntry *widget.Entry
	statsLabel    *widget.Label
	previewList   *widget.List
	applyButton   *widget.Button
	dlg           dialog.Dialog

	initial string
	lines   []string
	summary naming.Summary
	valid   bool

	onApply func(names []string)
}

// NewRenameDialog creates a rename dialog for count files. generate turns
// the keyword text into names; onApply receives them on Apply.
func NewRenameDialog(count int, generate func(string) (naming.Summary, error), window fyne.Window, onApply func([]string)) *RenameDialog {
	return &RenameDialog{
		count:    count,
		window:   window,
		generate: generate,
		onApply:  onApply,
	}
}

// SetKeywords pre-fills the keyword field, e.g. with suggested keywords
func (d *RenameDialog) SetKeywords(text string) {
	d.initial = text
}

// Show displays the dialog.
func (d *RenameDialog) Show() {
	d.dlg = dialog.NewCustomWithoutButtons("Rename all", d.createContent(), d.window)
	d.dlg.Resize(fyne.NewSize(520, 460))
	d.dlg.Show()
	d.window.Canvas().Focus(d.keywordsEntry)
}

func (d *RenameDialog) createContent() fyne.CanvasObject {
	info := widget.NewLabel(fmt.Sprintf(
		"Enter keywords separated by spaces.\n%d unique names will be generated from them.", d.count))

	d.keywordsEntry = widget.NewEntry()
	d.keywordsEntry.SetPlaceHolder("e.g. december turkey")
	d.keywordsEntry.OnChanged = d.onKeywordsChanged

	d.statsLabel = widget.NewLabel("")
	d.previewList = widget.NewList(
		func() int { return len(d.lines) },
		func() fyne.CanvasObject { return widget.NewLabel("") },
		func(id widget.ListItemID, o fyne.CanvasObject) {
			o.(*widget.Label).SetText(d.lines[id])
		},
	)

	cancel := widget.NewButton("Cancel", d.close)
	d.applyButton = widget.NewButton("Apply", d.apply)
	d.applyButton.Importance = widget.HighImportance
	d.applyButton.Disable()

	top := container.NewVBox(
		info,
		widget.NewForm(widget.NewFormItem("Keywords", d.keywordsEntry)),
		d.statsLabel,
		widget.NewLabel("Name preview"),
	)
	buttons := container.NewHBox(layout.NewSpacer(), cancel, d.applyButton)

	if d.initial != "" {
		d.keywordsEntry.SetText(d.initial)
		d.onKeywordsChanged(d.initial)
	}
	return container.NewBorder(top, buttons, nil, nil, d.previewList)
}

func (d *RenameDialog) onKeywordsChanged(text string) {
	summary, err := d.generate(text)
	d.summary = summary
	d.valid = err == nil

	switch {
	case errors.Is(err, naming.ErrTooFewKeywords):
		d.statsLabel.SetText("Enter at least 2 words")
		d.lines = nil
	case err != nil:
		d.statsLabel.SetText(err.Error())
		d.lines = nil
	default:
		d.statsLabel.SetText(summary.Status())
		d.lines = previewLines(summary)
	}

	if d.valid {
		d.applyButton.Enable()
	} else {
		d.applyButton.Disable()
	}
	d.previewList.Refresh()
}

// previewLines numbers the preview names and adds a line for the rest
func previewLines(s naming.Summary) []string {
	lines := make([]string, 0, len(s.Preview)+1)
	for i, name := range s.Preview {
		lines = append(lines, fmt.Sprintf("%d. %s.webp", i+1, name))
	}
	if s.Remaining > 0 {
		lines = append(lines, fmt.Sprintf("... and %d more", s.Remaining))
	}
	return lines
}

func (d *RenameDialog) apply() {
	if !d.valid {
		return
	}
	if d.onApply != nil {
		d.onApply(d.summary.Names)
	}
	d.close()
}

func (d *RenameDialog) close() {
	if d.dlg != nil {
		d.dlg.Hide()
	}
}
