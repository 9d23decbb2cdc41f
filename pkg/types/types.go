package types

import (
	"fmt"
	"image"
	"path/filepath"
	"strings"
)

// Rect is a rectangle in image space (original pixel coordinates)
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Right returns the exclusive right edge
func (r Rect) Right() int { return r.X + r.Width }

// Bottom returns the exclusive bottom edge
func (r Rect) Bottom() int { return r.Y + r.Height }

// Center returns the integer center of the rectangle
func (r Rect) Center() (int, int) {
	return r.X + r.Width/2, r.Y + r.Height/2
}

// Empty reports whether the rectangle has no area
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Image converts to an image.Rectangle
func (r Rect) Image() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

func (r Rect) String() string {
	return fmt.Sprintf("%dx%d@%d,%d", r.Width, r.Height, r.X, r.Y)
}

// Size is a width/height pair in pixels
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

func (s Size) String() string {
	return fmt.Sprintf("%d×%d", s.Width, s.Height)
}

// Status is the conversion state of a queued item
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusDone       Status = "done"
	StatusError      Status = "error"
)

// Convertible reports whether an item in this state is picked up by a conversion run
func (s Status) Convertible() bool {
	return s == StatusPending || s == StatusError
}

// ImageItem is one source image in the conversion queue
type ImageItem struct {
	Path         string  `json:"path"`
	OriginalSize Size    `json:"original_size"`
	Crop         *Rect   `json:"crop,omitempty"`
	Status       Status  `json:"status"`
	OutputPath   string  `json:"output_path,omitempty"`
	OutputSizeKB float64 `json:"output_size_kb,omitempty"`
	OutputName   string  `json:"output_name,omitempty"`
	Error        string  `json:"error,omitempty"`
}

// Filename returns the base name of the source file
func (i *ImageItem) Filename() string {
	return filepath.Base(i.Path)
}

// Stem returns the base name without extension
func (i *ImageItem) Stem() string {
	name := i.Filename()
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// BaseName is the stem used for the output file: the custom name if one was assigned
func (i *ImageItem) BaseName() string {
	if i.OutputName != "" {
		return i.OutputName
	}
	return i.Stem()
}

// DisplayName is the custom output name with extension, or the source filename
func (i *ImageItem) DisplayName() string {
	if i.OutputName != "" {
		return i.OutputName + ".webp"
	}
	return i.Filename()
}

// DimensionsString reports the crop size when set, the original size otherwise
func (i *ImageItem) DimensionsString() string {
	if i.Crop != nil {
		return Size{Width: i.Crop.Width, Height: i.Crop.Height}.String()
	}
	return i.OriginalSize.String()
}

// Box represents a normalized bounding box with coordinates in [0,1] range
type Box struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Primary represents the primary subject detected in an image
type Primary struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
	Box        Box     `json:"box"`
}

// AnalysisResult is the parsed answer of a vision model
type AnalysisResult struct {
	Primary  Primary  `json:"primary"`
	Keywords []string `json:"keywords"`
}

// Suggestion is a starting point for cropping and naming derived from a model answer
type Suggestion struct {
	Keywords []string `json:"keywords"`
	Crop     Rect     `json:"crop"`
	Label    string   `json:"label"`
}
