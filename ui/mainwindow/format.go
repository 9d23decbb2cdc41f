package mainwindow

import (
	"fmt"

	"github.com/menta2k/webp-converter/internal/utils"
	"github.com/menta2k/webp-converter/pkg/types"
)

var statusMarks = map[types.Status]string{
	types.StatusPending:    "○",
	types.StatusProcessing: "◐",
	types.StatusDone:       "●",
	types.StatusError:      "✕",
}

// itemText renders one queue row: status, name, crop flag, size and result
func itemText(item *types.ImageItem) string {
	mark, ok := statusMarks[item.Status]
	if !ok {
		mark = statusMarks[types.StatusPending]
	}

	name := item.Filename()
	if item.OutputName != "" {
		name = fmt.Sprintf("%s ← %s", item.DisplayName(), item.Filename())
	}

	cropped := ""
	if item.Crop != nil {
		cropped = " [cropped]"
	}

	result := ""
	if item.OutputSizeKB > 0 {
		result = fmt.Sprintf(" → %.1f KB", item.OutputSizeKB)
	}

	return fmt.Sprintf("%s %s%s (%s)%s", mark, name, cropped, item.DimensionsString(), result)
}

// itemDetails describes the selected item under the preview
func itemDetails(item *types.ImageItem, sourceBytes int64) string {
	source := "—"
	if sourceBytes >= 0 {
		source = utils.FormatFileSize(sourceBytes)
	}
	text := fmt.Sprintf("Size: %s px\nFile: %s", item.OriginalSize, source)

	switch {
	case item.Status == types.StatusDone && item.OutputSizeKB > 0:
		text += fmt.Sprintf("\nWebP: %.1f KB", item.OutputSizeKB)
		if sourceBytes > 0 {
			text += fmt.Sprintf(" (−%.0f%%)", saving(sourceBytes, item.OutputSizeKB))
		}
	case item.Status == types.StatusError:
		text += "\nError: " + item.Error
	case item.Crop != nil:
		text += fmt.Sprintf("\nCrop: %d×%d px", item.Crop.Width, item.Crop.Height)
	}
	return text
}

// saving returns how much smaller the output is than the source, in percent
func saving(sourceBytes int64, outputKB float64) float64 {
	if sourceBytes <= 0 {
		return 0
	}
	sourceKB := float64(sourceBytes) / 1024
	return (sourceKB - outputKB) / sourceKB * 100
}

// statusText summarizes the queue for the status bar
func statusText(total, done, failed int) string {
	if total == 0 {
		return ""
	}
	if failed > 0 {
		return fmt.Sprintf("Files: %d, done: %d, failed: %d", total, done, failed)
	}
	return fmt.Sprintf("Files: %d, done: %d", total, done)
}

// finishedText is the message shown when a run ends
func finishedText(done, failed int) string {
	if failed > 0 {
		return fmt.Sprintf("Done: %d, errors: %d", done, failed)
	}
	return fmt.Sprintf("Converted %d files", done)
}
