package detection

import (
	"context"
	"fmt"
	"image"
	"math"
	"regexp"
	"strings"

	"github.com/menta2k/webp-converter/pkg/client"
	"github.com/menta2k/webp-converter/pkg/types"
)

// DefaultPrompt asks the model for the subject box and filename keywords
const DefaultPrompt = `You help name and crop photos for a website.

Return JSON only:
{
  "primary": {
    "label": "string",
    "confidence": 0.0,
    "box": {"x": 0.0, "y": 0.0, "w": 0.0, "h": 0.0}
  },
  "keywords": ["word1", "word2", "word3"]
}

RULES
- Coordinates are normalized to [0,1] (NOT pixels); x,y is the top-left corner.
- The box tightly covers the visually dominant subject.
- keywords: 2 to 5 lowercase single words useful in a file name, most specific first, no duplicates.
- If there is no clear subject, use label "none" and the box {"x":0.25,"y":0.25,"w":0.5,"h":0.5}.
- JSON only. No markdown, no code fences, no comments, no trailing commas.`

// DefaultMaxKeywords limits the keywords kept from a model answer
const DefaultMaxKeywords = 5

// ImageEncoder turns an image into base64 for the model
type ImageEncoder interface {
	PrepareImageForModel(img image.Image, maxDim int, quality int) (string, error)
}

// Config tunes the suggester
type Config struct {
	Model       string
	Prompt      string
	MaxKeywords int
	// MaxDim is the longest side of the image sent to the model
	MaxDim int
	// MinConfidence below which the box is ignored and the whole image is suggested
	MinConfidence float64
}

// DefaultConfig returns the suggester defaults
func DefaultConfig() Config {
	return Config{
		Prompt:        DefaultPrompt,
		MaxKeywords:   DefaultMaxKeywords,
		MaxDim:        1024,
		MinConfidence: 0.3,
	}
}

// Suggester asks a vision model for naming keywords and a starting crop
type Suggester struct {
	client  client.VisionClient
	encoder ImageEncoder
	config  Config
}

// NewSuggester creates a suggester. Zero config fields take their defaults.
func NewSuggester(c client.VisionClient, encoder ImageEncoder, config Config) *Suggester {
	def := DefaultConfig()
	if config.Prompt == "" {
		config.Prompt = def.Prompt
	}
	if config.MaxKeywords <= 0 {
		config.MaxKeywords = def.MaxKeywords
	}
	if config.MaxDim <= 0 {
		config.MaxDim = def.MaxDim
	}
	return &Suggester{client: c, encoder: encoder, config: config}
}

// Suggest analyzes img and returns keywords and an image-space crop
func (s *Suggester) Suggest(ctx context.Context, img image.Image) (*types.Suggestion, error) {
	b64, err := s.encoder.PrepareImageForModel(img, s.config.MaxDim, 85)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare image: %w", err)
	}

	result, err := s.client.AnalyzeImage(ctx, s.config.Model, s.config.Prompt, b64)
	if err != nil {
		return nil, fmt.Errorf("vision request failed: %w", err)
	}

	b := img.Bounds()
	size := types.Size{Width: b.Dx(), Height: b.Dy()}

	crop := types.Rect{Width: size.Width, Height: size.Height}
	label := strings.ToLower(strings.TrimSpace(result.Primary.Label))
	if label != "none" && result.Primary.Confidence >= s.config.MinConfidence {
		crop = BoxToRect(NormalizeBox(result.Primary.Box), size)
	}

	keywords := result.Keywords
	if len(keywords) == 0 && label != "" && label != "none" {
		keywords = strings.Fields(label)
	}

	return &types.Suggestion{
		Keywords: NormalizeKeywords(keywords, s.config.MaxKeywords),
		Crop:     crop,
		Label:    label,
	}, nil
}

// TestVision checks that the model can see images at all
func (s *Suggester) TestVision(ctx context.Context, img image.Image) (string, error) {
	b64, err := s.encoder.PrepareImageForModel(img, s.config.MaxDim, 85)
	if err != nil {
		return "", fmt.Errorf("failed to prepare image: %w", err)
	}
	return s.client.SimpleQuery(ctx, s.config.Model, "What do you see in this image? Describe it briefly.", b64)
}

// NormalizeBox clamps a box to [0,1] and keeps it inside the unit square
func NormalizeBox(b types.Box) types.Box {
	x := clamp(b.X, 0, 1)
	y := clamp(b.Y, 0, 1)
	return types.Box{
		X: x,
		Y: y,
		W: clamp(b.W, 0, 1-x),
		H: clamp(b.H, 0, 1-y),
	}
}

// BoxToRect converts a normalized box to an image-space rectangle.
// An empty box maps to the whole image.
func BoxToRect(b types.Box, size types.Size) types.Rect {
	fw, fh := float64(size.Width), float64(size.Height)
	x0 := int(math.Round(b.X * fw))
	y0 := int(math.Round(b.Y * fh))
	x1 := int(math.Round((b.X + b.W) * fw))
	y1 := int(math.Round((b.Y + b.H) * fh))

	r := types.Rect{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
	if r.Empty() {
		return types.Rect{Width: size.Width, Height: size.Height}
	}
	return r
}

var nonWord = regexp.MustCompile(`[^a-z0-9]+`)

// NormalizeKeywords lowercases keywords, splits them into single words, strips
// punctuation, drops duplicates and keeps at most limit words
func NormalizeKeywords(keywords []string, limit int) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, limit)
	for _, k := range keywords {
		for _, w := range strings.Fields(nonWord.ReplaceAllString(strings.ToLower(k), " ")) {
			if _, ok := seen[w]; ok {
				continue
			}
			seen[w] = struct{}{}
			out = append(out, w)
			if len(out) == limit {
				return out
			}
		}
	}
	return out
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
