// Package config loads server and CLI settings from defaults, an optional
// config file and RECIPE_DETECT_* environment variables.
package config

import (
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/viper"

	"github.com/ironsheep/recipe-detect-mcp/internal/detection"
	"github.com/ironsheep/recipe-detect-mcp/internal/imaging"
)

// EnvPrefix prefixes every environment override, e.g.
// RECIPE_DETECT_DETECTOR_CONFIDENCE=0.5.
const EnvPrefix = "RECIPE_DETECT"

// Detector backends.
const (
	BackendReplay = "replay"
	BackendOCR    = "ocr"
)

// Config is the complete configuration.
type Config struct {
	Log      LogConfig      `mapstructure:"log"`
	Detector DetectorConfig `mapstructure:"detector"`
	Enhance  EnhanceConfig  `mapstructure:"enhance"`
	Pipeline PipelineConfig `mapstructure:"pipeline"`
}

// LogConfig controls logger construction.
type LogConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

// DetectorConfig selects and tunes the detection backend.
type DetectorConfig struct {
	Backend     string  `mapstructure:"backend"`
	Confidence  float64 `mapstructure:"confidence"`
	IoU         float64 `mapstructure:"iou"`
	Labels      string  `mapstructure:"labels"`
	ReplayFile  string  `mapstructure:"replay_file"`
	OCRLanguage string  `mapstructure:"ocr_language"`
	Tessdata    string  `mapstructure:"tessdata"`
	Serialize   bool    `mapstructure:"serialize"`
}

// EnhanceConfig holds the enhancement policy.
type EnhanceConfig struct {
	MinBrightness float64 `mapstructure:"min_brightness"`
	MinContrast   float64 `mapstructure:"min_contrast"`
	ClipLimit     float64 `mapstructure:"clip_limit"`
	TileGrid      int     `mapstructure:"tile_grid"`
}

// PipelineConfig bounds request execution.
type PipelineConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
	Workers int           `mapstructure:"workers"`
}

// SetDefaults registers the default value of every key.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", false)

	v.SetDefault("detector.backend", BackendReplay)
	v.SetDefault("detector.confidence", detection.DefaultConfidence)
	v.SetDefault("detector.iou", detection.DefaultIoU)
	v.SetDefault("detector.labels", "")
	v.SetDefault("detector.replay_file", "")
	v.SetDefault("detector.ocr_language", "eng")
	v.SetDefault("detector.tessdata", "")
	v.SetDefault("detector.serialize", true)

	v.SetDefault("enhance.min_brightness", imaging.DefaultMinBrightness)
	v.SetDefault("enhance.min_contrast", imaging.DefaultMinContrast)
	v.SetDefault("enhance.clip_limit", imaging.DefaultClipLimit)
	v.SetDefault("enhance.tile_grid", imaging.DefaultTileGrid)

	v.SetDefault("pipeline.timeout", 30*time.Second)
	v.SetDefault("pipeline.workers", 4)
}

// NewViper returns a viper instance with defaults and environment binding.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	SetDefaults(v)
	return v
}

// Load reads configuration. path may be empty, in which case only defaults
// and environment variables apply. The result is validated.
func Load(path string) (*Config, error) {
	v := NewViper()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "failed to read config file %s", path)
		}
	}
	return LoadWithViper(v)
}

// LoadWithViper unmarshals and validates the configuration held by v.
func LoadWithViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	cfg.Detector.Backend = strings.ToLower(strings.TrimSpace(cfg.Detector.Backend))
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects out-of-range values.
func (c *Config) Validate() error {
	switch c.Detector.Backend {
	case BackendReplay, BackendOCR:
	default:
		return errors.Newf("unknown detector.backend %q (want %q or %q)",
			c.Detector.Backend, BackendReplay, BackendOCR)
	}
	if c.Detector.Confidence < 0 || c.Detector.Confidence > 1 {
		return errors.Newf("detector.confidence must be in [0,1], got %v", c.Detector.Confidence)
	}
	if c.Detector.IoU < 0 || c.Detector.IoU > 1 {
		return errors.Newf("detector.iou must be in [0,1], got %v", c.Detector.IoU)
	}
	if c.Enhance.MinBrightness < 0 || c.Enhance.MinBrightness > 255 {
		return errors.Newf("enhance.min_brightness must be in [0,255], got %v", c.Enhance.MinBrightness)
	}
	if c.Enhance.MinContrast < 0 || c.Enhance.MinContrast > 255 {
		return errors.Newf("enhance.min_contrast must be in [0,255], got %v", c.Enhance.MinContrast)
	}
	if c.Enhance.ClipLimit < 0 {
		return errors.Newf("enhance.clip_limit must not be negative (0 disables clipping), got %v", c.Enhance.ClipLimit)
	}
	if c.Enhance.TileGrid < 1 || c.Enhance.TileGrid > 64 {
		return errors.Newf("enhance.tile_grid must be in [1,64], got %d", c.Enhance.TileGrid)
	}
	if c.Pipeline.Timeout < 0 {
		return errors.Newf("pipeline.timeout must not be negative, got %v", c.Pipeline.Timeout)
	}
	if c.Pipeline.Workers < 1 {
		return errors.Newf("pipeline.workers must be at least 1, got %d", c.Pipeline.Workers)
	}
	return nil
}

// EnhancePolicy returns the configured enhancement policy.
func (c *Config) EnhancePolicy() imaging.EnhancePolicy {
	return imaging.EnhancePolicy{
		MinBrightness: c.Enhance.MinBrightness,
		MinContrast:   c.Enhance.MinContrast,
		ClipLimit:     c.Enhance.ClipLimit,
		TileGrid:      c.Enhance.TileGrid,
	}
}

// DetectorOptions returns the configured detector thresholds.
func (c *Config) DetectorOptions() detection.Options {
	return detection.Options{
		Confidence: c.Detector.Confidence,
		IoU:        c.Detector.IoU,
	}
}
