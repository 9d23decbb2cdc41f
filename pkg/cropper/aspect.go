package cropper

import "fmt"

// AspectRatio is a width:height constraint. The zero value means free.
type AspectRatio struct {
	Width  int
	Height int
	Name   string
}

// Aspect ratio presets offered by the crop dialog
var (
	Free     = AspectRatio{0, 0, "Free"}
	Cover    = AspectRatio{8, 5, "Cover 8:5"}
	Wide     = AspectRatio{16, 9, "Wide 16:9"}
	Standard = AspectRatio{4, 3, "Standard 4:3"}
	Square   = AspectRatio{1, 1, "Square 1:1"}
	Portrait = AspectRatio{3, 4, "Portrait 3:4"}
	Story    = AspectRatio{9, 16, "Portrait 9:16"}
)

// Presets returns the aspect ratio presets in display order
func Presets() []AspectRatio {
	return []AspectRatio{Free, Cover, Wide, Standard, Square, Portrait, Story}
}

// PresetNames returns the display names of Presets
func PresetNames() []string {
	presets := Presets()
	names := make([]string, len(presets))
	for i, p := range presets {
		names[i] = p.Name
	}
	return names
}

// PresetByName looks up a preset by its display name
func PresetByName(name string) (AspectRatio, bool) {
	for _, p := range Presets() {
		if p.Name == name {
			return p, true
		}
	}
	return Free, false
}

// Ratio returns a fixed ratio with a generated name
func Ratio(w, h int) AspectRatio {
	if w <= 0 || h <= 0 {
		return Free
	}
	return AspectRatio{Width: w, Height: h, Name: fmt.Sprintf("%d:%d", w, h)}
}

// IsFree reports whether the ratio imposes no constraint
func (a AspectRatio) IsFree() bool {
	return a.Width <= 0 || a.Height <= 0
}

// Value returns width/height as a float, or 0 when free
func (a AspectRatio) Value() float64 {
	if a.IsFree() {
		return 0
	}
	return float64(a.Width) / float64(a.Height)
}

// Reduce divides both terms by their greatest common divisor
func (a AspectRatio) Reduce() AspectRatio {
	if a.IsFree() {
		return Free
	}
	g := gcd(a.Width, a.Height)
	return Ratio(a.Width/g, a.Height/g)
}

func (a AspectRatio) String() string {
	if a.IsFree() {
		return "free"
	}
	return fmt.Sprintf("%d:%d", a.Width, a.Height)
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}
