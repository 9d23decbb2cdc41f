// Package webpconverter converts photos to WebP with an optional manual crop
// and keyword-based batch renaming.
//
// Basic usage:
//
//	package main
//
//	import (
//		"context"
//		"fmt"
//		"log"
//
//		webpconverter "github.com/menta2k/webp-converter"
//		"github.com/menta2k/webp-converter/pkg/batch"
//		"github.com/menta2k/webp-converter/pkg/cropper"
//	)
//
//	func main() {
//		conv := webpconverter.New()
//
//		// Queue files and directories
//		if _, err := conv.AddFiles([]string{"photos/"}); err != nil {
//			log.Print(err)
//		}
//
//		// Crop the first image to a square around its center
//		session, err := conv.CropSession(0)
//		if err != nil {
//			log.Fatal(err)
//		}
//		session.SetAspectRatio(cropper.Square)
//		conv.ApplyCrop(0, session.Rect())
//
//		// Name every output from a handful of keywords
//		if _, err := conv.RenameAll("sea sunset beach"); err != nil {
//			log.Fatal(err)
//		}
//
//		// Convert
//		_, err = conv.Convert(context.Background(), func(e batch.Event) {
//			fmt.Printf("[%d/%d] %s\n", e.Completed, e.Total, e.Kind)
//		})
//		if err != nil {
//			log.Fatal(err)
//		}
//	}
//
// The package consists of these components:
//
// 1. Cropper (pkg/cropper): crop selection geometry for an interactive preview
// 2. Naming (pkg/naming): unique file names from keywords and built-in modifiers
// 3. Processing (pkg/processing): image loading, cropping and WebP encoding
// 4. Batch (pkg/batch): the conversion worker pool with progress events
// 5. Detection (pkg/detection): optional keyword and crop suggestions from a vision model
// 6. Vision (pkg/vision): saliency-based automatic crops that need no model
package webpconverter

import (
	"context"
	"errors"
	"fmt"
	"image"
	"path/filepath"
	"sort"
	"strings"

	"github.com/menta2k/webp-converter/internal/config"
	"github.com/menta2k/webp-converter/internal/utils"
	"github.com/menta2k/webp-converter/pkg/batch"
	"github.com/menta2k/webp-converter/pkg/client"
	"github.com/menta2k/webp-converter/pkg/cropper"
	"github.com/menta2k/webp-converter/pkg/detection"
	"github.com/menta2k/webp-converter/pkg/llamacpp"
	"github.com/menta2k/webp-converter/pkg/naming"
	"github.com/menta2k/webp-converter/pkg/ollama"
	"github.com/menta2k/webp-converter/pkg/processing"
	"github.com/menta2k/webp-converter/pkg/types"
	"github.com/menta2k/webp-converter/pkg/vision"
)

// Version of the converter library
const Version = "1.0.0"

var (
	// ErrNoItems is returned when an operation needs a non-empty queue
	ErrNoItems = errors.New("no files in the queue")
	// ErrNothingToConvert is returned when every queued file is already converted
	ErrNothingToConvert = errors.New("all files are already converted")
	// ErrNoVision is returned by Suggest when no vision backend is enabled
	ErrNoVision = errors.New("vision suggestions are not enabled")
	// ErrIndex is returned for a queue index out of range
	ErrIndex = errors.New("queue index out of range")
)

// Converter holds the conversion queue and the settings applied to it.
// It is not safe for concurrent use; Convert updates queued items in place.
type Converter struct {
	config    *config.Config
	processor *processing.Processor
	metrics   *batch.Metrics
	suggester *detection.Suggester
	detector  *vision.Detector

	items []*types.ImageItem
}

// New creates a new Converter with default configuration
func New() *Converter {
	return NewWithConfig(config.Default())
}

// NewWithConfig creates a new Converter with custom configuration
func NewWithConfig(cfg *config.Config) *Converter {
	if cfg == nil {
		cfg = config.Default()
	}
	return &Converter{
		config:    cfg,
		processor: processing.NewProcessor(),
		detector:  vision.New(),
	}
}

// Config returns the active configuration
func (c *Converter) Config() *config.Config {
	return c.config
}

// SetMetrics attaches conversion metrics to later Convert calls
func (c *Converter) SetMetrics(m *batch.Metrics) {
	c.metrics = m
}

// LoadSettings replaces the configuration with the file at path. A missing
// file leaves the defaults in place.
func (c *Converter) LoadSettings(path string) error {
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid settings in %s: %w", path, err)
	}
	c.config = cfg
	return nil
}

// SaveSettings writes the configuration to path
func (c *Converter) SaveSettings(path string) error {
	return c.config.SaveToFile(path)
}

// Quality returns the WebP quality used by Convert
func (c *Converter) Quality() int {
	return c.config.Quality
}

// SetQuality sets the WebP quality, clamped to 1..100, and returns the
// matching preset name or config.PresetCustom
func (c *Converter) SetQuality(quality int) string {
	c.config.Quality = min(max(quality, 1), 100)
	return c.config.PresetName(c.config.Quality)
}

// SetPreset selects a quality preset by name
func (c *Converter) SetPreset(name string) bool {
	q, ok := c.config.QualityPresets[name]
	if !ok {
		return false
	}
	c.config.Quality = q
	return true
}

// OutputDir returns the expanded output directory
func (c *Converter) OutputDir() string {
	return utils.ExpandHome(c.config.OutputDir)
}

// AddFiles queues image files. Directories are walked and paths that are
// already queued are skipped. Files whose size cannot be read are reported
// in the returned error; the others are still queued.
func (c *Converter) AddFiles(paths []string) (int, error) {
	files, err := utils.ExpandInputs(paths)
	if err != nil {
		return 0, err
	}

	queued := make(map[string]struct{}, len(c.items))
	for _, item := range c.items {
		queued[item.Path] = struct{}{}
	}

	added := 0
	var errs []error
	for _, f := range files {
		path := filepath.Clean(f)
		if _, ok := queued[path]; ok {
			continue
		}
		size, err := c.processor.Dimensions(path)
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to load %s: %w", filepath.Base(path), err))
			continue
		}
		c.items = append(c.items, &types.ImageItem{
			Path:         path,
			OriginalSize: size,
			Status:       types.StatusPending,
		})
		queued[path] = struct{}{}
		added++
	}
	return added, errors.Join(errs...)
}

// Items returns the queued items in order
func (c *Converter) Items() []*types.ImageItem {
	return append([]*types.ImageItem(nil), c.items...)
}

// Len returns the number of queued items
func (c *Converter) Len() int {
	return len(c.items)
}

// Item returns the queued item at index
func (c *Converter) Item(index int) (*types.ImageItem, error) {
	if index < 0 || index >= len(c.items) {
		return nil, fmt.Errorf("%w: %d", ErrIndex, index)
	}
	return c.items[index], nil
}

// Counts returns the number of queued, converted and failed items
func (c *Converter) Counts() (total, done, failed int) {
	for _, item := range c.items {
		switch item.Status {
		case types.StatusDone:
			done++
		case types.StatusError:
			failed++
		}
	}
	return len(c.items), done, failed
}

// Remove drops the items at the given indices. Invalid indices are ignored.
func (c *Converter) Remove(indices ...int) {
	sorted := append([]int(nil), indices...)
	sort.Sort(sort.Reverse(sort.IntSlice(sorted)))
	last := -1
	for _, i := range sorted {
		if i == last || i < 0 || i >= len(c.items) {
			continue
		}
		c.items = append(c.items[:i], c.items[i+1:]...)
		last = i
	}
}

// Clear empties the queue
func (c *Converter) Clear() {
	c.items = nil
}

// CropSession returns a crop engine for the item at index, holding the
// item's current crop or the whole image
func (c *Converter) CropSession(index int) (*cropper.Engine, error) {
	item, err := c.Item(index)
	if err != nil {
		return nil, err
	}

	engine := cropper.NewWithConfig(cropper.Config{
		MinCropSize: c.config.Cropper.MinCropSize,
		HandleSize:  c.config.Cropper.HandleSize,
	})
	engine.SetImage(item.OriginalSize.Width, item.OriginalSize.Height)
	if item.Crop != nil {
		engine.SetRect(*item.Crop)
	}
	return engine, nil
}

// ApplyCrop stores a crop for the item at index. A rectangle without area
// is ignored.
func (c *Converter) ApplyCrop(index int, r types.Rect) error {
	item, err := c.Item(index)
	if err != nil {
		return err
	}
	if r.Empty() {
		return nil
	}
	item.Crop = &r
	return nil
}

// ClearCrop removes the crop of the item at index
func (c *Converter) ClearCrop(index int) error {
	item, err := c.Item(index)
	if err != nil {
		return err
	}
	item.Crop = nil
	return nil
}

// PreviewRename generates one name per queued item without assigning them
func (c *Converter) PreviewRename(text string) (naming.Summary, error) {
	if len(c.items) == 0 {
		return naming.Summary{}, ErrNoItems
	}
	if len(c.items) > c.config.Naming.MaxNames {
		return naming.Summary{}, fmt.Errorf("cannot name %d files, the limit is %d", len(c.items), c.config.Naming.MaxNames)
	}

	words := naming.ParseKeywords(text)
	if limit := c.config.Naming.MaxKeywords; limit > 0 && len(words) > limit {
		words = words[:limit]
	}
	return naming.Summarize(strings.Join(words, " "), len(c.items), c.config.Naming.PreviewNames)
}

// RenameAll generates names from keywords and assigns them in queue order
func (c *Converter) RenameAll(text string) (naming.Summary, error) {
	summary, err := c.PreviewRename(text)
	if err != nil {
		return summary, err
	}
	c.ApplyNames(summary.Names)
	return summary, nil
}

// ApplyNames assigns output names in queue order. Items past the end of
// names keep their current name.
func (c *Converter) ApplyNames(names []string) {
	for i, item := range c.items {
		if i >= len(names) {
			break
		}
		item.OutputName = names[i]
	}
}

// Convert writes every pending or failed item to the output directory.
// onEvent receives progress one event at a time; it may be nil.
func (c *Converter) Convert(ctx context.Context, onEvent func(batch.Event)) ([]batch.Result, error) {
	if len(c.items) == 0 {
		return nil, ErrNoItems
	}
	if len(batch.Pending(c.items)) == 0 {
		return nil, ErrNothingToConvert
	}

	runner := batch.NewRunner(c.processor, batch.Config{
		OutputDir: c.OutputDir(),
		Quality:   c.config.Quality,
		Lossless:  c.config.Lossless,
		Workers:   c.config.Workers,
	})
	runner.SetMetrics(c.metrics)
	return runner.Run(ctx, c.items, onEvent)
}

// load reads the item's source image, cropped when cropped is set
func (c *Converter) load(index int, cropped bool) (image.Image, error) {
	item, err := c.Item(index)
	if err != nil {
		return nil, err
	}
	img, err := c.processor.LoadImage(item.Path)
	if err != nil {
		return nil, err
	}
	if cropped && item.Crop != nil {
		return c.processor.Crop(img, *item.Crop)
	}
	return img, nil
}

// Source loads the uncropped source image of the item at index
func (c *Converter) Source(index int) (image.Image, error) {
	return c.load(index, false)
}

// Preview returns the item as it will be converted, scaled to fit maxW x maxH
func (c *Converter) Preview(index, maxW, maxH int) (image.Image, error) {
	img, err := c.load(index, true)
	if err != nil {
		return nil, err
	}
	return c.processor.Thumbnail(img, maxW, maxH), nil
}

// EstimateSize returns the encoded size in bytes of the item at the current quality
func (c *Converter) EstimateSize(index int) (int, error) {
	img, err := c.load(index, true)
	if err != nil {
		return 0, err
	}
	return c.processor.EstimateSize(img, processing.EncodeOptions{
		Quality:  c.config.Quality,
		Lossless: c.config.Lossless,
	})
}

// NewVisionClient creates the client for the configured vision backend
func NewVisionClient(cfg config.VisionConfig) (client.VisionClient, error) {
	switch cfg.Backend {
	case "", "ollama":
		return ollama.NewClient(cfg.URL)
	case "llamacpp":
		return llamacpp.NewClient(cfg.URL)
	}
	return nil, fmt.Errorf("unknown vision backend %q", cfg.Backend)
}

// EnableSuggestions connects to the configured vision backend
func (c *Converter) EnableSuggestions() error {
	vc, err := NewVisionClient(c.config.Vision)
	if err != nil {
		return fmt.Errorf("failed to create vision client: %w", err)
	}
	c.SetVisionClient(vc)
	return nil
}

// SetVisionClient enables suggestions through vc
func (c *Converter) SetVisionClient(vc client.VisionClient) {
	cfg := detection.DefaultConfig()
	cfg.Model = c.config.Vision.Model
	c.suggester = detection.NewSuggester(vc, c.processor, cfg)
}

// Suggest asks the vision model for keywords and a crop for the item at index
func (c *Converter) Suggest(ctx context.Context, index int) (*types.Suggestion, error) {
	if c.suggester == nil {
		return nil, ErrNoVision
	}
	img, err := c.load(index, false)
	if err != nil {
		return nil, err
	}
	return c.suggester.Suggest(ctx, img)
}

// Describe asks the vision model for a short description of the item. It
// checks that the model accepts images before a long suggestion run.
func (c *Converter) Describe(ctx context.Context, index int) (string, error) {
	if c.suggester == nil {
		return "", ErrNoVision
	}
	img, err := c.load(index, false)
	if err != nil {
		return "", err
	}
	return c.suggester.TestVision(ctx, img)
}

// ApplySuggestion stores the suggested crop fitted to ratio and clamped to
// the image, and returns the stored rectangle
func (c *Converter) ApplySuggestion(index int, s *types.Suggestion, ratio cropper.AspectRatio) (types.Rect, error) {
	engine, err := c.CropSession(index)
	if err != nil {
		return types.Rect{}, err
	}
	engine.SetAspectRatio(ratio)
	engine.SetRect(s.Crop)

	r := engine.Rect()
	return r, c.ApplyCrop(index, r)
}

// AutoCrop stores a crop over the most salient part of the item without a
// vision model. A free ratio frames the detected subject; any other ratio
// gets the largest crop of that shape.
func (c *Converter) AutoCrop(index int, ratio cropper.AspectRatio) (types.Rect, error) {
	img, err := c.load(index, false)
	if err != nil {
		return types.Rect{}, err
	}

	var r types.Rect
	if ratio.IsFree() {
		r = c.detector.SubjectCrop(img)
	} else {
		r = c.detector.BestCrop(img, ratio.Value())
	}
	return c.ApplySuggestion(index, &types.Suggestion{Crop: r}, ratio)
}

// GetVersion returns the library version
func GetVersion() string {
	return Version
}
