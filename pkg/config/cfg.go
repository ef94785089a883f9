// Package config loads the program configuration: an embedded YAML template
// with defaults, optionally overlaid by a user file.
package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/rupor-github/gencfg"
	"gopkg.in/yaml.v3"

	"regionflow/pkg/text"
)

//go:embed config.yaml.tmpl
var ConfigTmpl []byte

type MeasurerBackend string

const (
	MeasurerBox     MeasurerBackend = "box"
	MeasurerBrowser MeasurerBackend = "browser"
)

type (
	ViewportConfig struct {
		Width  float64 `yaml:"width" validate:"gt=0"`
		Height float64 `yaml:"height" validate:"gt=0"`
	}

	FontsConfig struct {
		Regular    string `yaml:"regular,omitempty" validate:"omitempty,file"`
		Bold       string `yaml:"bold,omitempty" validate:"omitempty,file"`
		Italic     string `yaml:"italic,omitempty" validate:"omitempty,file"`
		BoldItalic string `yaml:"bold_italic,omitempty" validate:"omitempty,file"`
		Monospace  string `yaml:"monospace,omitempty" validate:"omitempty,file"`
		MonoBold   string `yaml:"mono_bold,omitempty" validate:"omitempty,file"`
	}

	LayoutConfig struct {
		OverflowTolerance float64     `yaml:"overflow_tolerance" validate:"gte=0"`
		ResizeDebounceMS  int         `yaml:"resize_debounce_ms" validate:"gte=0"`
		Fonts             FontsConfig `yaml:"fonts"`
		// Non zero replaces font outlines with a fixed advance per rune.
		FixedAdvance float64 `yaml:"fixed_advance" validate:"gte=0"`
	}

	FlowConfig struct {
		Prefixes []string `yaml:"prefixes"`
	}

	MeasurerConfig struct {
		Backend   MeasurerBackend `yaml:"backend" validate:"oneof=box browser"`
		ExecPath  string          `yaml:"exec_path,omitempty"`
		TimeoutMS int             `yaml:"timeout_ms" validate:"gte=0"`
	}

	FetchConfig struct {
		TimeoutMS   int `yaml:"timeout_ms" validate:"gte=0"`
		Concurrency int `yaml:"concurrency" validate:"gte=0"`
	}

	Config struct {
		Version  int            `yaml:"version" validate:"eq=1"`
		Viewport ViewportConfig `yaml:"viewport"`
		Layout   LayoutConfig   `yaml:"layout"`
		Flow     FlowConfig     `yaml:"flow"`
		Measurer MeasurerConfig `yaml:"measurer"`
		Fetch    FetchConfig    `yaml:"fetch"`
		Logging  LoggingConfig  `yaml:"logging"`
	}
)

func (c *LayoutConfig) ResizeDebounce() time.Duration {
	return time.Duration(c.ResizeDebounceMS) * time.Millisecond
}

// FontConfig returns the font files in the form text measurement wants.
func (c *LayoutConfig) FontConfig() text.FontConfig {
	return text.FontConfig{
		Regular:    c.Fonts.Regular,
		Bold:       c.Fonts.Bold,
		Italic:     c.Fonts.Italic,
		BoldItalic: c.Fonts.BoldItalic,
		Monospace:  c.Fonts.Monospace,
		MonoBold:   c.Fonts.MonoBold,
	}
}

func (c *MeasurerConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutMS) * time.Millisecond
}

func (c *FetchConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutMS) * time.Millisecond
}

func unmarshalConfig(data []byte, cfg *Config, process bool) (*Config, error) {
	// We want to use only fields we defined so we cannot use yaml.Unmarshal directly here
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration data: %w", err)
	}
	if process {
		if err := gencfg.Sanitize(cfg); err != nil {
			return nil, fmt.Errorf("failed to sanitize configuration: %w", err)
		}
		if err := gencfg.Validate(cfg); err != nil {
			return nil, fmt.Errorf("failed to validate configuration: %w", err)
		}
		if cfg.Measurer.Backend == MeasurerBrowser && cfg.Layout.FixedAdvance > 0 {
			return nil, errors.New("fixed_advance cannot be used with the browser measurer")
		}
	}
	return cfg, nil
}

// LoadConfiguration reads the configuration from the file at the given path,
// superimposes its values on top of expanded configuration template to
// provide sane defaults and performs validation.
func LoadConfiguration(path string, options ...func(*gencfg.ProcessingOptions)) (*Config, error) {
	haveFile := len(path) > 0

	data, err := gencfg.Process(ConfigTmpl, options...)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	cfg, err := unmarshalConfig(data, &Config{}, !haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	if !haveFile {
		return cfg, nil
	}

	data, err = os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file: %w", err)
	}
	data, err = gencfg.Process(data, options...)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration file: %w", err)
	}
	if cfg, err = unmarshalConfig(data, cfg, true); err != nil {
		return nil, fmt.Errorf("failed to process configuration file: %w", err)
	}
	return cfg, nil
}

// Prepare returns expanded configuration template to be used as a default.
func Prepare() ([]byte, error) {
	return gencfg.Process(ConfigTmpl)
}

// Dump dumps configuration to a byte slice.
func Dump(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal configuration: %w", err)
	}
	return data, nil
}
