package mainwindow

import (
	"math"
	"strings"
	"testing"

	"github.com/menta2k/webp-converter/pkg/types"
)

func TestItemText(t *testing.T) {
	tests := []struct {
		name string
		item types.ImageItem
		want string
	}{
		{
			name: "pending",
			item: types.ImageItem{Path: "/p/a.jpg", OriginalSize: types.Size{Width: 800, Height: 600}, Status: types.StatusPending},
			want: "○ a.jpg (800×600)",
		},
		{
			name: "renamed and cropped",
			item: types.ImageItem{
				Path:         "/p/a.jpg",
				OriginalSize: types.Size{Width: 800, Height: 600},
				Crop:         &types.Rect{Width: 400, Height: 300},
				OutputName:   "sea-sun",
				Status:       types.StatusProcessing,
			},
			want: "◐ sea-sun.webp ← a.jpg [cropped] (400×300)",
		},
		{
			name: "done",
			item: types.ImageItem{Path: "/p/a.jpg", OriginalSize: types.Size{Width: 10, Height: 10}, Status: types.StatusDone, OutputSizeKB: 12.34},
			want: "● a.jpg (10×10) → 12.3 KB",
		},
		{
			name: "unknown status",
			item: types.ImageItem{Path: "/p/a.jpg", OriginalSize: types.Size{Width: 10, Height: 10}},
			want: "○ a.jpg (10×10)",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := itemText(&tt.item); got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestItemDetails(t *testing.T) {
	item := &types.ImageItem{Path: "/p/a.jpg", OriginalSize: types.Size{Width: 800, Height: 600}, Status: types.StatusPending}
	if got := itemDetails(item, -1); got != "Size: 800×600 px\nFile: —" {
		t.Errorf("Unexpected details %q", got)
	}

	item.Crop = &types.Rect{Width: 200, Height: 100}
	if got := itemDetails(item, 2048); !strings.HasSuffix(got, "Crop: 200×100 px") || !strings.Contains(got, "2.0 KB") {
		t.Errorf("Unexpected details %q", got)
	}

	item.Status = types.StatusDone
	item.OutputSizeKB = 1
	if got := itemDetails(item, 4096); !strings.HasSuffix(got, "WebP: 1.0 KB (−75%)") {
		t.Errorf("Unexpected details %q", got)
	}

	item.Status = types.StatusError
	item.Error = "boom"
	if got := itemDetails(item, 4096); !strings.HasSuffix(got, "Error: boom") {
		t.Errorf("Unexpected details %q", got)
	}
}

func TestSaving(t *testing.T) {
	if got := saving(2048, 0.5); math.Abs(got-75) > 1e-9 {
		t.Errorf("Expected 75%%, got %v", got)
	}
	if got := saving(0, 1); got != 0 {
		t.Errorf("Expected 0 for an unknown source size, got %v", got)
	}
}

func TestStatusText(t *testing.T) {
	tests := []struct {
		total, done, failed int
		want                string
	}{
		{0, 0, 0, ""},
		{3, 1, 0, "Files: 3, done: 1"},
		{3, 1, 2, "Files: 3, done: 1, failed: 2"},
	}
	for _, tt := range tests {
		if got := statusText(tt.total, tt.done, tt.failed); got != tt.want {
			t.Errorf("statusText(%d, %d, %d) = %q, expected %q", tt.total, tt.done, tt.failed, got, tt.want)
		}
	}

	if got := finishedText(4, 0); got != "Converted 4 files" {
		t.Errorf("Unexpected %q", got)
	}
	if got := finishedText(3, 1); got != "Done: 3, errors: 1" {
		t.Errorf("Unexpected %q", got)
	}
}
