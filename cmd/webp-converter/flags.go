package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/menta2k/webp-converter/pkg/cropper"
	"github.com/menta2k/webp-converter/pkg/types"
)

// parseAspect accepts a preset name ("Square 1:1"), a short name ("square")
// or a W:H pair ("16:9")
func parseAspect(s string) (cropper.AspectRatio, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return cropper.Free, nil
	}
	if r, ok := cropper.PresetByName(s); ok {
		return r, nil
	}
	for _, p := range cropper.Presets() {
		if short, _, _ := strings.Cut(p.Name, " "); strings.EqualFold(short, s) {
			return p, nil
		}
	}

	w, h, ok := strings.Cut(s, ":")
	if !ok {
		return cropper.Free, fmt.Errorf("invalid aspect ratio %q (use W:H or a preset name)", s)
	}
	wi, err1 := strconv.Atoi(strings.TrimSpace(w))
	hi, err2 := strconv.Atoi(strings.TrimSpace(h))
	if err1 != nil || err2 != nil || wi <= 0 || hi <= 0 {
		return cropper.Free, fmt.Errorf("invalid aspect ratio %q (use W:H or a preset name)", s)
	}
	return cropper.Ratio(wi, hi), nil
}

// parseCrop accepts "x,y,w,h" in source pixels
func parseCrop(s string) (*types.Rect, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return nil, fmt.Errorf("invalid crop %q (use x,y,w,h)", s)
	}
	var v [4]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("invalid crop %q: %w", s, err)
		}
		v[i] = n
	}
	r := types.Rect{X: v[0], Y: v[1], Width: v[2], Height: v[3]}
	if r.Empty() || r.X < 0 || r.Y < 0 {
		return nil, fmt.Errorf("invalid crop %q: empty or negative", s)
	}
	return &r, nil
}
