package client

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/menta2k/webp-converter/pkg/types"
)

var (
	reBlockComment = regexp.MustCompile(`(?s)/\*.*?\*/`)
	reLineComment  = regexp.MustCompile(`(?m)//.*$`)
	reTrailing     = regexp.MustCompile(`,(\s*[}\]])`)
)

// FallbackBox is the centered box used when a model answer has no usable subject
var FallbackBox = types.Box{X: 0.25, Y: 0.25, W: 0.5, H: 0.5}

// Fallback returns the answer used when the model reply cannot be parsed
func Fallback(label string) *types.AnalysisResult {
	return &types.AnalysisResult{
		Primary: types.Primary{
			Label:      label,
			Confidence: 0,
			Box:        FallbackBox,
		},
	}
}

// ParseAnalysisResult parses a model reply into an AnalysisResult. Replies
// that are not JSON produce a low-confidence fallback instead of an error.
func ParseAnalysisResult(raw string) *types.AnalysisResult {
	raw = SanitizeModelJSON(raw)
	if !strings.HasPrefix(raw, "{") {
		return Fallback("none")
	}

	var result types.AnalysisResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return Fallback("parse error")
	}

	if result.Primary.Box.W <= 0 || result.Primary.Box.H <= 0 {
		result.Primary.Box = FallbackBox
	}
	return &result
}

// SanitizeModelJSON removes code fences, comments and trailing commas and keeps
// the outermost {...}
func SanitizeModelJSON(raw string) string {
	raw = strings.TrimSpace(raw)

	// Strip triple-backtick fences if present
	if strings.HasPrefix(raw, "```") {
		if i := strings.Index(raw, "\n"); i >= 0 {
			raw = raw[i+1:]
		}
		if j := strings.LastIndex(raw, "```"); j >= 0 {
			raw = raw[:j]
		}
	}
	raw = strings.Trim(strings.TrimSpace(raw), "`")

	raw = reBlockComment.ReplaceAllString(raw, "")
	raw = reLineComment.ReplaceAllString(raw, "")
	raw = reTrailing.ReplaceAllString(raw, "$1")

	if start := strings.Index(raw, "{"); start >= 0 {
		if end := strings.LastIndex(raw, "}"); end > start {
			raw = raw[start : end+1]
		}
	}
	return strings.TrimSpace(raw)
}
