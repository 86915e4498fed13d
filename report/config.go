package report

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/wudi/tourreport/images"
	"github.com/wudi/tourreport/layout"
	"github.com/wudi/tourreport/writer"
)

// Config is the file form of the report settings.
type Config struct {
	Paper      string        `yaml:"paper"`
	FontSize   float64       `yaml:"font_size"`
	LineHeight float64       `yaml:"line_height"`
	Margins    MarginsConfig `yaml:"margins"`
	Images     ImagesConfig  `yaml:"images"`
	Output     OutputConfig  `yaml:"output"`
}

type MarginsConfig struct {
	Top    float64 `yaml:"top"`
	Bottom float64 `yaml:"bottom"`
	Left   float64 `yaml:"left"`
	Right  float64 `yaml:"right"`
}

type ImagesConfig struct {
	MaxWidth  float64 `yaml:"max_width"`
	MaxHeight float64 `yaml:"max_height"`
	MaxPixels int     `yaml:"max_pixels"`
}

type OutputConfig struct {
	Compress      bool   `yaml:"compress"`
	Deterministic bool   `yaml:"deterministic"`
	Producer      string `yaml:"producer"`
	Author        string `yaml:"author"`
}

// DefaultConfig returns the settings used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Paper:      layout.A4.Name,
		FontSize:   10,
		LineHeight: 1.4,
		Margins:    MarginsConfig{Top: 50, Bottom: 50, Left: 50, Right: 50},
		Images: ImagesConfig{
			MaxWidth:  400,
			MaxHeight: 300,
			MaxPixels: images.DefaultMaxPixels,
		},
		Output: OutputConfig{Compress: true, Producer: writer.DefaultProducer},
	}
}

// LoadConfig reads a YAML file on top of the defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig decodes YAML on top of the defaults. Missing keys keep their
// default value.
func ParseConfig(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

var ErrInvalidConfig = errors.New("invalid report config")

// Validate rejects settings that cannot produce a page.
func (c *Config) Validate() error {
	if _, ok := layout.LookupPaperSize(c.Paper); !ok {
		return fmt.Errorf("%w: unknown paper %q", ErrInvalidConfig, c.Paper)
	}
	if c.FontSize <= 0 || c.LineHeight <= 0 {
		return fmt.Errorf("%w: font_size and line_height must be positive", ErrInvalidConfig)
	}
	m := c.Margins
	if m.Top < 0 || m.Bottom < 0 || m.Left < 0 || m.Right < 0 {
		return fmt.Errorf("%w: negative margin", ErrInvalidConfig)
	}
	if c.Images.MaxWidth <= 0 || c.Images.MaxHeight <= 0 || c.Images.MaxPixels <= 0 {
		return fmt.Errorf("%w: image limits must be positive", ErrInvalidConfig)
	}
	return nil
}

// Options converts the config into Service options.
func (c *Config) Options() []Option {
	paper, _ := layout.LookupPaperSize(c.Paper)
	wc := writer.DefaultConfig()
	wc.Compress = c.Output.Compress
	wc.Deterministic = c.Output.Deterministic
	wc.Producer = c.Output.Producer
	wc.Author = c.Output.Author
	return []Option{
		WithLayoutOptions(
			layout.WithPaperSize(paper),
			layout.WithFontSize(c.FontSize),
			layout.WithLineHeight(c.LineHeight),
			layout.WithMargins(layout.Margins(c.Margins)),
			layout.WithMaxImageBox(c.Images.MaxWidth, c.Images.MaxHeight),
		),
		WithImageLoader(images.FileLoader{MaxPixels: c.Images.MaxPixels}),
		WithWriterConfig(wc),
	}
}
