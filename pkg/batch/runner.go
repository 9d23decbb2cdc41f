package batch

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"
	"sync/atomic"
	"time"

	"github.com/menta2k/webp-converter/internal/utils"
	"github.com/menta2k/webp-converter/pkg/processing"
	"github.com/menta2k/webp-converter/pkg/types"
)

// OutputExt is the extension of every converted file
const OutputExt = ".webp"

// ErrCancelled is returned by Run when the context ends before every item was converted
var ErrCancelled = errors.New("batch: conversion cancelled")

// Codec loads, crops and writes images for the runner
type Codec interface {
	LoadImage(path string) (image.Image, error)
	Crop(img image.Image, r types.Rect) (image.Image, error)
	SaveWebP(img image.Image, path string, opts processing.EncodeOptions) (int64, error)
}

// Config holds the shared settings for a batch run
type Config struct {
	OutputDir string
	Quality   int
	Lossless  bool
	Workers   int
}

// EventKind says what happened to an item
type EventKind int

const (
	EventProcessing EventKind = iota
	EventDone
	EventError
	EventFinished
)

func (k EventKind) String() string {
	switch k {
	case EventProcessing:
		return "processing"
	case EventDone:
		return "done"
	case EventError:
		return "error"
	case EventFinished:
		return "finished"
	}
	return "unknown"
}

// Event reports progress of a run. Index points into the slice given to Run;
// it is -1 for EventFinished.
type Event struct {
	Kind      EventKind
	Index     int
	Path      string
	SizeKB    float64
	Err       error
	Completed int
	Total     int
}

// Result holds the outcome of converting one item
type Result struct {
	Index   int
	Path    string
	SizeKB  float64
	Success bool
	Error   string
}

// Runner converts queued items to WebP with a pool of workers
type Runner struct {
	codec   Codec
	config  Config
	metrics *Metrics

	mu       sync.Mutex
	reserved map[string]struct{}
}

// NewRunner creates a runner writing into config.OutputDir
func NewRunner(codec Codec, config Config) *Runner {
	if config.Workers <= 0 {
		config.Workers = 1
	}
	return &Runner{
		codec:    codec,
		config:   config,
		reserved: make(map[string]struct{}),
	}
}

// SetMetrics attaches conversion metrics
func (r *Runner) SetMetrics(m *Metrics) {
	r.metrics = m
}

// Pending returns the indices of the items a run will convert: pending and failed ones
func Pending(items []*types.ImageItem) []int {
	var out []int
	for i, item := range items {
		if item.Status.Convertible() {
			out = append(out, i)
		}
	}
	return out
}

// Run converts every pending or failed item. Item fields are updated in place
// and each change is announced through onEvent before the next event is
// delivered; onEvent is never called concurrently. Cancelling ctx stops the
// run before the next item and Run returns ErrCancelled.
func (r *Runner) Run(ctx context.Context, items []*types.ImageItem, onEvent func(Event)) ([]Result, error) {
	if err := utils.EnsureDir(r.config.OutputDir); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	indices := Pending(items)
	total := len(indices)
	results := make([]Result, total)
	attempted := make([]bool, total)
	var completed atomic.Int64

	var eventMu sync.Mutex
	emit := func(e Event) {
		if onEvent == nil {
			return
		}
		eventMu.Lock()
		defer eventMu.Unlock()
		e.Total = total
		onEvent(e)
	}

	workers := min(r.config.Workers, max(total, 1))
	jobs := make(chan int, workers*2)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for pos := range jobs {
				if ctx.Err() != nil {
					continue
				}
				attempted[pos] = true
				results[pos] = r.processItem(indices[pos], items[indices[pos]], emit, &completed)
			}
		}()
	}

send:
	for pos := range indices {
		select {
		case <-ctx.Done():
			break send
		case jobs <- pos:
		}
	}
	close(jobs)
	wg.Wait()

	var out []Result
	skipped := 0
	for pos, ok := range attempted {
		if ok {
			out = append(out, results[pos])
		} else {
			skipped++
		}
	}
	r.metrics.cancelled(skipped)

	emit(Event{Kind: EventFinished, Index: -1, Completed: int(completed.Load())})

	if err := ctx.Err(); err != nil && skipped > 0 {
		return out, fmt.Errorf("%w: %d of %d items skipped: %v", ErrCancelled, skipped, total, err)
	}
	return out, nil
}

func (r *Runner) processItem(index int, item *types.ImageItem, emit func(Event), completed *atomic.Int64) Result {
	start := time.Now()
	item.Status = types.StatusProcessing
	item.Error = ""
	emit(Event{Kind: EventProcessing, Index: index, Completed: int(completed.Load())})

	path, size, err := r.convert(item)
	r.metrics.observe(start, size, err)
	n := int(completed.Add(1))

	if err != nil {
		item.Status = types.StatusError
		item.Error = err.Error()
		emit(Event{Kind: EventError, Index: index, Err: err, Completed: n})
		return Result{Index: index, Error: err.Error()}
	}

	sizeKB := float64(size) / 1024
	item.Status = types.StatusDone
	item.OutputPath = path
	item.OutputSizeKB = sizeKB
	emit(Event{Kind: EventDone, Index: index, Path: path, SizeKB: sizeKB, Completed: n})
	return Result{Index: index, Path: path, SizeKB: sizeKB, Success: true}
}

func (r *Runner) convert(item *types.ImageItem) (string, int64, error) {
	img, err := r.codec.LoadImage(item.Path)
	if err != nil {
		return "", 0, fmt.Errorf("load %s: %w", item.Filename(), err)
	}

	if item.Crop != nil && !item.Crop.Empty() {
		img, err = r.codec.Crop(img, *item.Crop)
		if err != nil {
			return "", 0, fmt.Errorf("crop %s: %w", item.Filename(), err)
		}
	}

	path := r.reserve(item.BaseName())
	opts := processing.EncodeOptions{Quality: r.config.Quality, Lossless: r.config.Lossless}
	size, err := r.codec.SaveWebP(img, path, opts)
	if err != nil {
		r.release(path)
		return "", 0, fmt.Errorf("save %s: %w", item.Filename(), err)
	}
	return path, size, nil
}

// reserve picks the output path for base, numbering it past files on disk
// and paths already handed to other workers
func (r *Runner) reserve(base string) string {
	base = utils.SanitizeFilename(base)
	if base == "" {
		base = "image"
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	path := utils.UniqueOutputPath(r.config.OutputDir, base, OutputExt, func(p string) bool {
		_, taken := r.reserved[p]
		return taken
	})
	r.reserved[path] = struct{}{}
	return path
}

func (r *Runner) release(path string) {
	r.mu.Lock()
	delete(r.reserved, path)
	r.mu.Unlock()
}
