package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/menta2k/webp-converter/internal/utils"
)

// Config holds the application configuration. It is stored as settings.json.
type Config struct {
	Quality        int            `json:"quality"`
	QualityPresets map[string]int `json:"quality_presets,omitempty"`
	Lossless       bool           `json:"lossless"`
	OutputDir      string         `json:"output_dir"`
	Workers        int            `json:"workers"`
	Cropper        CropperConfig  `json:"cropper"`
	Naming         NamingConfig   `json:"naming"`
	Vision         VisionConfig   `json:"vision"`
}

// CropperConfig holds the crop selection constants
type CropperConfig struct {
	MinCropSize int `json:"min_crop_size"`
	HandleSize  int `json:"handle_size"`
}

// NamingConfig holds the rename-all limits
type NamingConfig struct {
	PreviewNames int `json:"preview_names"`
	MaxKeywords  int `json:"max_keywords"`
	MaxNames     int `json:"max_names"`
}

// VisionConfig selects the optional model backend used for suggestions
type VisionConfig struct {
	Backend string `json:"backend"`
	URL     string `json:"url"`
	Model   string `json:"model"`
}

// Quality preset names
const (
	PresetSEO      = "SEO (70)"
	PresetBalanced = "Balanced (75)"
	PresetHigh     = "High (85)"
	PresetCustom   = "Custom"
)

// DefaultQualityPresets returns the built-in quality presets
func DefaultQualityPresets() map[string]int {
	return map[string]int{
		PresetSEO:      70,
		PresetBalanced: 75,
		PresetHigh:     85,
	}
}

// Default returns a configuration with default values
func Default() *Config {
	return &Config{
		Quality:        75,
		QualityPresets: DefaultQualityPresets(),
		OutputDir:      "~/WebP_Output",
		Workers:        1,
		Cropper: CropperConfig{
			MinCropSize: 50,
			HandleSize:  10,
		},
		Naming: NamingConfig{
			PreviewNames: 20,
			MaxKeywords:  6,
			MaxNames:     10000,
		},
		Vision: VisionConfig{
			Backend: "ollama",
			URL:     "http://localhost:11434",
			Model:   "qwen2.5vl:7b",
		},
	}
}

// LoadFromFile loads configuration from a JSON file. Keys missing from the
// file keep their default values.
func LoadFromFile(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := Default()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// Load reads the file at path, or returns defaults when it does not exist
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil
	}
	return LoadFromFile(path)
}

// SaveToFile saves configuration to a JSON file
func (c *Config) SaveToFile(filename string) error {
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Quality < 1 || c.Quality > 100 {
		return fmt.Errorf("quality must be between 1 and 100")
	}

	for name, q := range c.QualityPresets {
		if q < 1 || q > 100 {
			return fmt.Errorf("quality_presets[%q] must be between 1 and 100", name)
		}
	}

	if c.OutputDir == "" {
		return fmt.Errorf("output_dir cannot be empty")
	}

	if c.Workers < 1 {
		return fmt.Errorf("workers must be positive")
	}

	if c.Cropper.MinCropSize < 1 {
		return fmt.Errorf("cropper.min_crop_size must be positive")
	}

	if c.Cropper.HandleSize < 1 {
		return fmt.Errorf("cropper.handle_size must be positive")
	}

	if c.Naming.MaxKeywords < 2 {
		return fmt.Errorf("naming.max_keywords must be at least 2")
	}

	if c.Naming.MaxNames < 1 {
		return fmt.Errorf("naming.max_names must be positive")
	}

	switch c.Vision.Backend {
	case "", "ollama", "llamacpp":
	default:
		return fmt.Errorf("vision.backend must be ollama or llamacpp, got %q", c.Vision.Backend)
	}

	return nil
}

// PresetName returns the name of the preset matching quality, or PresetCustom
func (c *Config) PresetName(quality int) string {
	for _, name := range c.PresetNames() {
		if c.QualityPresets[name] == quality {
			return name
		}
	}
	return PresetCustom
}

// PresetNames returns the quality preset names ordered by quality
func (c *Config) PresetNames() []string {
	names := make([]string, 0, len(c.QualityPresets))
	for name := range c.QualityPresets {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		qi, qj := c.QualityPresets[names[i]], c.QualityPresets[names[j]]
		if qi != qj {
			return qi < qj
		}
		return names[i] < names[j]
	})
	return names
}

// GetConfigPath returns the default configuration file path
func GetConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./settings.json"
	}
	return filepath.Join(home, ".config", "webp-converter", "settings.json")
}

// Flags holds CLI flag values that override config file settings
type Flags struct {
	OutputDir   string
	Quality     int
	Lossless    bool
	Workers     int
	VisionURL   string
	VisionModel string
}

// Resolve applies CLI overrides and expands the output directory.
// Flags take priority when non-zero/non-empty.
func (c *Config) Resolve(flags Flags) {
	if flags.OutputDir != "" {
		c.OutputDir = flags.OutputDir
	}
	if flags.Quality > 0 {
		c.Quality = flags.Quality
	}
	if flags.Lossless {
		c.Lossless = true
	}
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}
	if flags.VisionURL != "" {
		c.Vision.URL = flags.VisionURL
	}
	if flags.VisionModel != "" {
		c.Vision.Model = flags.VisionModel
	}

	if c.OutputDir == "" {
		c.OutputDir = Default().OutputDir
	}
	c.OutputDir = utils.ExpandHome(c.OutputDir)

	if c.Workers <= 0 {
		c.Workers = 1
	}
	if len(c.QualityPresets) == 0 {
		c.QualityPresets = DefaultQualityPresets()
	}
}
