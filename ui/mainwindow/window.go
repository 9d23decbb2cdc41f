// Package mainwindow is the desktop front end: the file queue, the preview
// of the selected file, quality settings and the conversion controls.
package mainwindow

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log"
	"net/url"
	"os"
	"strings"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"

	webpconverter "github.com/menta2k/webp-converter"
	"github.com/menta2k/webp-converter/internal/config"
	"github.com/menta2k/webp-converter/internal/utils"
	"github.com/menta2k/webp-converter/pkg/batch"
	"github.com/menta2k/webp-converter/pkg/cropper"
	"github.com/menta2k/webp-converter/pkg/types"
	"github.com/menta2k/webp-converter/ui/dialogs"
)

const (
	appTitle      = "WebP Converter"
	previewWidth  = 380
	previewHeight = 300
)

// MainWindow owns the converter queue for the lifetime of the app
type MainWindow struct {
	app          fyne.App
	window       fyne.Window
	conv         *webpconverter.Converter
	settingsPath string
	vision       bool

	list           *widget.List
	previewImage   *canvas.Image
	previewName    *widget.Label
	previewDetails *widget.Label
	presetSelect   *widget.Select
	qualitySlider  *widget.Slider
	qualityLabel   *widget.Label
	progress       *widget.ProgressBar
	statusLabel    *widget.Label

	convertButton *widget.Button
	cancelButton  *widget.Button
	suggestButton *widget.Button
	queueButtons  []*widget.Button

	// mu guards the fields shared with background jobs
	mu       sync.Mutex
	selected int
	keywords string
	busy     bool

	cancel context.CancelFunc
	done   chan struct{}
}

// New builds the main window. vision enables the suggestion button; the
// converter must already have a vision client in that case.
func New(app fyne.App, conv *webpconverter.Converter, settingsPath string, vision bool) *MainWindow {
	mw := &MainWindow{
		app:          app,
		conv:         conv,
		settingsPath: settingsPath,
		vision:       vision,
		selected:     -1,
	}
	mw.window = app.NewWindow(appTitle)
	mw.window.SetContent(mw.createContent())
	mw.window.Resize(fyne.NewSize(1100, 700))
	mw.window.SetOnDropped(mw.onDropped)
	mw.window.SetCloseIntercept(mw.onClose)
	mw.updateStatus()
	return mw
}

// Window returns the fyne window
func (mw *MainWindow) Window() fyne.Window {
	return mw.window
}

// ShowAndRun shows the window and runs the app event loop
func (mw *MainWindow) ShowAndRun() {
	mw.window.ShowAndRun()
}

func (mw *MainWindow) createContent() fyne.CanvasObject {
	mw.list = widget.NewList(
		func() int { return mw.conv.Len() },
		func() fyne.CanvasObject { return widget.NewLabel("") },
		func(id widget.ListItemID, o fyne.CanvasObject) {
			item, err := mw.conv.Item(id)
			if err != nil {
				return
			}
			o.(*widget.Label).SetText(itemText(item))
		},
	)
	mw.list.OnSelected = mw.onSelected
	mw.list.OnUnselected = func(widget.ListItemID) { mw.onSelected(-1) }

	addFiles := widget.NewButton("Add files", mw.showAddFiles)
	addFolder := widget.NewButton("Add folder", mw.showAddFolder)
	remove := widget.NewButton("Remove", mw.removeSelected)
	clearAll := widget.NewButton("Clear", mw.clearQueue)
	crop := widget.NewButton("Crop", mw.showCrop)
	autoCrop := widget.NewButton("Auto crop", mw.autoCropSelected)
	rename := widget.NewButton("Rename all", mw.showRename)
	mw.suggestButton = widget.NewButton("Suggest", mw.suggestSelected)
	if !mw.vision {
		mw.suggestButton.Hide()
	}
	mw.queueButtons = []*widget.Button{addFiles, addFolder, remove, clearAll, crop, autoCrop, rename, mw.suggestButton}

	toolbar := container.NewHBox(addFiles, addFolder, remove, clearAll, widget.NewSeparator(), crop, autoCrop, rename, mw.suggestButton)
	hint := widget.NewLabel("Drop images or folders onto the window")
	left := container.NewBorder(toolbar, hint, nil, nil, mw.list)

	mw.previewImage = canvas.NewImageFromImage(nil)
	mw.previewImage.FillMode = canvas.ImageFillContain
	mw.previewImage.SetMinSize(fyne.NewSize(previewWidth, previewHeight))
	mw.previewName = widget.NewLabel("")
	mw.previewName.TextStyle = fyne.TextStyle{Bold: true}
	mw.previewDetails = widget.NewLabel("Select a file to preview")
	right := container.NewVBox(mw.previewImage, mw.previewName, mw.previewDetails)

	split := container.NewHSplit(left, right)
	split.Offset = 0.62

	cfg := mw.conv.Config()
	mw.presetSelect = widget.NewSelect(append(cfg.PresetNames(), config.PresetCustom), mw.onPresetChanged)
	mw.qualityLabel = widget.NewLabel("")
	mw.qualitySlider = widget.NewSlider(1, 100)
	mw.qualitySlider.Step = 1
	mw.qualitySlider.OnChanged = mw.onQualityChanged
	mw.qualitySlider.Value = float64(mw.conv.Quality())
	mw.onQualityChanged(mw.qualitySlider.Value)

	mw.progress = widget.NewProgressBar()
	mw.statusLabel = widget.NewLabel("")

	mw.convertButton = widget.NewButton("Convert", mw.startConvert)
	mw.convertButton.Importance = widget.HighImportance
	mw.cancelButton = widget.NewButton("Cancel", mw.cancelConvert)
	mw.cancelButton.Disable()
	openOutput := widget.NewButton("Open output folder", mw.openOutputDir)

	quality := container.NewBorder(nil, nil,
		container.NewHBox(widget.NewLabel("Quality:"), mw.presetSelect),
		mw.qualityLabel,
		mw.qualitySlider,
	)
	controls := container.NewBorder(nil, nil, mw.statusLabel,
		container.NewHBox(openOutput, mw.cancelButton, mw.convertButton),
		mw.progress,
	)
	bottom := container.NewVBox(widget.NewSeparator(), quality, controls)

	return container.NewBorder(nil, bottom, nil, nil, split)
}

// AddPaths queues files and folders and reports files that could not be read
func (mw *MainWindow) AddPaths(paths []string) {
	if mw.isBusy() {
		return
	}
	added, err := mw.conv.AddFiles(paths)
	if added > 0 {
		log.Printf("Queued %d files", added)
	}
	mw.list.Refresh()
	mw.updateStatus()
	if err != nil {
		log.Printf("Add files: %v", err)
		dialog.ShowError(err, mw.window)
	}
}

func (mw *MainWindow) onDropped(_ fyne.Position, uris []fyne.URI) {
	paths := make([]string, 0, len(uris))
	for _, u := range uris {
		if u.Scheme() == "file" {
			paths = append(paths, u.Path())
		}
	}
	mw.AddPaths(paths)
}

func (mw *MainWindow) showAddFiles() {
	d := dialog.NewFileOpen(func(r fyne.URIReadCloser, err error) {
		if err != nil {
			dialog.ShowError(err, mw.window)
			return
		}
		if r == nil {
			return
		}
		path := r.URI().Path()
		r.Close()
		mw.AddPaths([]string{path})
	}, mw.window)

	exts := make([]string, 0, 2*len(utils.InputExtensions))
	for _, ext := range utils.InputExtensions {
		exts = append(exts, "."+ext, "."+strings.ToUpper(ext))
	}
	d.SetFilter(storage.NewExtensionFileFilter(exts))
	d.Show()
}

func (mw *MainWindow) showAddFolder() {
	dialog.ShowFolderOpen(func(dir fyne.ListableURI, err error) {
		if err != nil {
			dialog.ShowError(err, mw.window)
			return
		}
		if dir == nil {
			return
		}
		mw.AddPaths([]string{dir.Path()})
	}, mw.window)
}

func (mw *MainWindow) removeSelected() {
	index := mw.selectedIndex()
	if mw.isBusy() || index < 0 {
		return
	}
	mw.conv.Remove(index)
	mw.list.UnselectAll()
	mw.onSelected(-1)
	mw.list.Refresh()
	mw.updateStatus()
}

func (mw *MainWindow) clearQueue() {
	if mw.isBusy() {
		return
	}
	mw.conv.Clear()
	mw.setKeywords("")
	mw.list.UnselectAll()
	mw.onSelected(-1)
	mw.list.Refresh()
	mw.updateStatus()
}

func (mw *MainWindow) onSelected(id widget.ListItemID) {
	mw.mu.Lock()
	mw.selected = id
	mw.mu.Unlock()
	mw.showPreview()
}

// showPreview renders the selected item as it will be converted
func (mw *MainWindow) showPreview() {
	index := mw.selectedIndex()
	item, err := mw.conv.Item(index)
	if err != nil {
		mw.previewImage.Image = nil
		mw.previewImage.Refresh()
		mw.previewName.SetText("")
		mw.previewDetails.SetText("Select a file to preview")
		return
	}

	var img image.Image
	if img, err = mw.conv.Preview(index, previewWidth, previewHeight); err != nil {
		log.Printf("Preview %s: %v", item.Filename(), err)
	}
	mw.previewImage.Image = img
	mw.previewImage.Refresh()

	mw.previewName.SetText(item.DisplayName())
	sourceBytes := int64(-1)
	if info, err := os.Stat(item.Path); err == nil {
		sourceBytes = info.Size()
	}
	mw.previewDetails.SetText(itemDetails(item, sourceBytes))
}

func (mw *MainWindow) onPresetChanged(name string) {
	if !mw.conv.SetPreset(name) {
		return
	}
	mw.qualitySlider.Value = float64(mw.conv.Quality())
	mw.qualitySlider.Refresh()
	mw.qualityLabel.SetText(fmt.Sprintf("%d", mw.conv.Quality()))
}

func (mw *MainWindow) onQualityChanged(value float64) {
	preset := mw.conv.SetQuality(int(value))
	mw.qualityLabel.SetText(fmt.Sprintf("%d", mw.conv.Quality()))
	if mw.presetSelect.Selected != preset {
		mw.presetSelect.SetSelected(preset)
	}
}

func (mw *MainWindow) showCrop() {
	if mw.isBusy() {
		return
	}
	index := mw.selectedIndex()
	item, err := mw.conv.Item(index)
	if err != nil {
		dialog.ShowInformation("Crop", "Select a file to crop", mw.window)
		return
	}
	engine, err := mw.conv.CropSession(index)
	if err != nil {
		dialog.ShowError(err, mw.window)
		return
	}
	img, err := mw.conv.Source(index)
	if err != nil {
		dialog.ShowError(fmt.Errorf("failed to load %s: %w", item.Filename(), err), mw.window)
		return
	}

	dialogs.NewCropDialog(item.Filename(), engine, img, mw.window, func(r types.Rect) {
		if err := mw.conv.ApplyCrop(index, r); err != nil {
			dialog.ShowError(err, mw.window)
			return
		}
		mw.list.RefreshItem(index)
		if mw.selectedIndex() == index {
			mw.showPreview()
		}
	}).Show()
}

// autoCropSelected frames the subject of the selected file
func (mw *MainWindow) autoCropSelected() {
	if mw.isBusy() {
		return
	}
	index := mw.selectedIndex()
	if _, err := mw.conv.Item(index); err != nil {
		dialog.ShowInformation("Auto crop", "Select a file to crop", mw.window)
		return
	}
	if _, err := mw.conv.AutoCrop(index, cropper.Free); err != nil {
		dialog.ShowError(err, mw.window)
		return
	}
	mw.list.RefreshItem(index)
	mw.showPreview()
}

func (mw *MainWindow) showRename() {
	if mw.isBusy() {
		return
	}
	if mw.conv.Len() == 0 {
		dialog.ShowInformation("Rename all", "Add files first", mw.window)
		return
	}
	d := dialogs.NewRenameDialog(mw.conv.Len(), mw.conv.PreviewRename, mw.window, func(names []string) {
		mw.conv.ApplyNames(names)
		mw.list.Refresh()
		mw.showPreview()
		log.Printf("Assigned %d names", len(names))
	})
	d.SetKeywords(mw.suggestedKeywords())
	d.Show()
}

// suggestSelected asks the vision model about the selected file and stores
// the suggested crop. The keywords pre-fill the next rename.
func (mw *MainWindow) suggestSelected() {
	if mw.isBusy() {
		return
	}
	index := mw.selectedIndex()
	if _, err := mw.conv.Item(index); err != nil {
		dialog.ShowInformation("Suggest", "Select a file first", mw.window)
		return
	}

	ctx := mw.begin()
	mw.statusLabel.SetText("Asking the vision model...")
	go func() {
		defer mw.end()
		s, err := mw.conv.Suggest(ctx, index)
		if err != nil {
			log.Printf("Suggest: %v", err)
			dialog.ShowError(err, mw.window)
			return
		}
		if _, err := mw.conv.ApplySuggestion(index, s, cropper.Free); err != nil {
			dialog.ShowError(err, mw.window)
			return
		}
		mw.setKeywords(strings.Join(s.Keywords, " "))
		mw.list.RefreshItem(index)
		if mw.selectedIndex() == index {
			mw.showPreview()
		}
	}()
}

func (mw *MainWindow) startConvert() {
	if mw.isBusy() {
		return
	}
	if mw.conv.Len() == 0 {
		dialog.ShowInformation("Convert", "Add files first", mw.window)
		return
	}
	if err := mw.conv.SaveSettings(mw.settingsPath); err != nil {
		log.Printf("Failed to save settings: %v", err)
	}

	ctx := mw.begin()
	mw.progress.SetValue(0)
	mw.cancelButton.Enable()
	go func() {
		defer mw.end()
		_, err := mw.conv.Convert(ctx, mw.onEvent)
		_, done, failed := mw.conv.Counts()
		switch {
		case errors.Is(err, webpconverter.ErrNothingToConvert):
			dialog.ShowInformation("Convert", "All files are already converted", mw.window)
		case errors.Is(err, batch.ErrCancelled):
			dialog.ShowInformation("Convert", "Conversion cancelled. "+finishedText(done, failed), mw.window)
		case err != nil:
			dialog.ShowError(err, mw.window)
		default:
			dialog.ShowInformation("Convert", finishedText(done, failed), mw.window)
		}
	}()
}

func (mw *MainWindow) onEvent(e batch.Event) {
	if e.Total > 0 {
		mw.progress.Max = float64(e.Total)
	}
	mw.progress.SetValue(float64(e.Completed))
	if e.Index < 0 {
		return
	}
	if e.Kind == batch.EventError {
		log.Printf("Convert: %v", e.Err)
	}
	mw.list.RefreshItem(e.Index)
	if e.Index == mw.selectedIndex() && e.Kind != batch.EventProcessing {
		mw.showPreview()
	}
	mw.updateStatus()
}

func (mw *MainWindow) cancelConvert() {
	if mw.cancel != nil {
		mw.cancel()
	}
}

// begin marks the window busy and returns the context of the background job
func (mw *MainWindow) begin() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	mw.cancel = cancel
	mw.done = make(chan struct{})
	mw.setBusy(true)
	return ctx
}

func (mw *MainWindow) end() {
	mw.cancel()
	mw.setBusy(false)
	mw.cancelButton.Disable()
	mw.updateStatus()
	close(mw.done)
}

func (mw *MainWindow) isBusy() bool {
	mw.mu.Lock()
	defer mw.mu.Unlock()
	return mw.busy
}

func (mw *MainWindow) selectedIndex() int {
	mw.mu.Lock()
	defer mw.mu.Unlock()
	return mw.selected
}

func (mw *MainWindow) setKeywords(text string) {
	mw.mu.Lock()
	mw.keywords = text
	mw.mu.Unlock()
}

// suggestedKeywords returns the keywords of the last suggestion
func (mw *MainWindow) suggestedKeywords() string {
	mw.mu.Lock()
	defer mw.mu.Unlock()
	return mw.keywords
}

// setBusy locks the queue while a background job reads it
func (mw *MainWindow) setBusy(busy bool) {
	mw.mu.Lock()
	mw.busy = busy
	mw.mu.Unlock()
	for _, b := range append(mw.queueButtons, mw.convertButton) {
		if busy {
			b.Disable()
		} else {
			b.Enable()
		}
	}
}

func (mw *MainWindow) updateStatus() {
	mw.statusLabel.SetText(statusText(mw.conv.Counts()))
}

func (mw *MainWindow) openOutputDir() {
	dir := mw.conv.OutputDir()
	if err := utils.EnsureDir(dir); err != nil {
		dialog.ShowError(err, mw.window)
		return
	}
	u, err := url.Parse(storage.NewFileURI(dir).String())
	if err != nil {
		dialog.ShowError(err, mw.window)
		return
	}
	if err := mw.app.OpenURL(u); err != nil {
		dialog.ShowError(err, mw.window)
	}
}

// onClose stops a running job, waits for in-flight files and saves settings
func (mw *MainWindow) onClose() {
	if mw.isBusy() {
		mw.cancel()
		<-mw.done
	}
	if err := mw.conv.SaveSettings(mw.settingsPath); err != nil {
		log.Printf("Failed to save settings: %v", err)
	}
	mw.window.Close()
}
