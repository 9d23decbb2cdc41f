package detection

import (
	"context"
	"errors"
	"image"
	"reflect"
	"testing"

	"github.com/menta2k/webp-converter/pkg/processing"
	"github.com/menta2k/webp-converter/pkg/types"
)

// fakeClient returns a canned answer
type fakeClient struct {
	result *types.AnalysisResult
	err    error
	model  string
	prompt string
}

func (f *fakeClient) SimpleQuery(ctx context.Context, model, prompt, imgB64 string) (string, error) {
	return "a test pattern", f.err
}

func (f *fakeClient) AnalyzeImage(ctx context.Context, model, prompt, imgB64 string) (*types.AnalysisResult, error) {
	f.model, f.prompt = model, prompt
	if imgB64 == "" {
		return nil, errors.New("no image")
	}
	return f.result, f.err
}

func TestSuggest(t *testing.T) {
	fc := &fakeClient{result: &types.AnalysisResult{
		Primary:  types.Primary{Label: "Boat", Confidence: 0.9, Box: types.Box{X: 0.25, Y: 0.5, W: 0.5, H: 0.25}},
		Keywords: []string{"Sail Boat", "harbor!", "boat"},
	}}
	s := NewSuggester(fc, processing.NewProcessor(), Config{Model: "llava"})

	img := image.NewRGBA(image.Rect(0, 0, 400, 200))
	got, err := s.Suggest(context.Background(), img)
	if err != nil {
		t.Fatalf("Suggest failed: %v", err)
	}

	if fc.model != "llava" || fc.prompt != DefaultPrompt {
		t.Errorf("Unexpected request model=%q", fc.model)
	}
	want := types.Rect{X: 100, Y: 100, Width: 200, Height: 50}
	if got.Crop != want {
		t.Errorf("Expected crop %v, got %v", want, got.Crop)
	}
	if !reflect.DeepEqual(got.Keywords, []string{"sail", "boat", "harbor"}) {
		t.Errorf("Unexpected keywords %v", got.Keywords)
	}
	if got.Label != "boat" {
		t.Errorf("Expected label boat, got %q", got.Label)
	}
}

func TestSuggestLowConfidence(t *testing.T) {
	fc := &fakeClient{result: &types.AnalysisResult{
		Primary: types.Primary{Label: "cat", Confidence: 0.1, Box: types.Box{X: 0.1, Y: 0.1, W: 0.2, H: 0.2}},
	}}
	s := NewSuggester(fc, processing.NewProcessor(), Config{MinConfidence: 0.5})

	got, err := s.Suggest(context.Background(), image.NewRGBA(image.Rect(0, 0, 100, 100)))
	if err != nil {
		t.Fatalf("Suggest failed: %v", err)
	}
	if got.Crop != (types.Rect{Width: 100, Height: 100}) {
		t.Errorf("Expected the whole image, got %v", got.Crop)
	}
	if !reflect.DeepEqual(got.Keywords, []string{"cat"}) {
		t.Errorf("Expected the label as keyword, got %v", got.Keywords)
	}
}

func TestSuggestError(t *testing.T) {
	fc := &fakeClient{err: errors.New("connection refused")}
	s := NewSuggester(fc, processing.NewProcessor(), Config{})
	if _, err := s.Suggest(context.Background(), image.NewRGBA(image.Rect(0, 0, 10, 10))); err == nil {
		t.Error("Expected the client error to be returned")
	}
}

func TestTestVision(t *testing.T) {
	s := NewSuggester(&fakeClient{}, processing.NewProcessor(), Config{})
	text, err := s.TestVision(context.Background(), image.NewRGBA(image.Rect(0, 0, 10, 10)))
	if err != nil || text == "" {
		t.Errorf("Unexpected reply %q, %v", text, err)
	}
}

func TestNormalizeBox(t *testing.T) {
	got := NormalizeBox(types.Box{X: -0.2, Y: 0.8, W: 1.5, H: 0.5})
	want := types.Box{X: 0, Y: 0.8, W: 1, H: 0.2}
	if got.X != want.X || got.W != want.W || got.Y != want.Y {
		t.Errorf("Expected %+v, got %+v", want, got)
	}
	if got.H < 0.199 || got.H > 0.201 {
		t.Errorf("Expected height about 0.2, got %f", got.H)
	}
}

func TestBoxToRect(t *testing.T) {
	size := types.Size{Width: 1000, Height: 500}
	if got := BoxToRect(types.Box{X: 0.1, Y: 0.2, W: 0.5, H: 0.5}, size); got != (types.Rect{X: 100, Y: 100, Width: 500, Height: 250}) {
		t.Errorf("Unexpected rect %v", got)
	}
	if got := BoxToRect(types.Box{}, size); got != (types.Rect{Width: 1000, Height: 500}) {
		t.Errorf("Expected the whole image for an empty box, got %v", got)
	}
}

func TestNormalizeKeywords(t *testing.T) {
	got := NormalizeKeywords([]string{"  Red-Car ", "red", "CITY street", "night", "rain", "fog"}, 5)
	want := []string{"red", "car", "city", "street", "night"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}
