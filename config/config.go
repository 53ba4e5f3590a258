// Package config provides configuration loading and validation for the pipeline.
package config

import (
	_ "embed"
	"image/color"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all pipeline configuration parameters.
type Config struct {
	Detection DetectionConfig `yaml:"detection"`
	Locator   LocatorConfig   `yaml:"locator"`
	Tracker   TrackerConfig   `yaml:"tracker"`
	Particles ParticlesConfig `yaml:"particles"`
	Sparkle   SparkleConfig   `yaml:"sparkle"`
	Circle    CircleConfig    `yaml:"circle"`
	Debug     DebugConfig     `yaml:"debug"`
	Output    OutputConfig    `yaml:"output"`
}

// DetectionConfig holds frame preprocessing parameters.
type DetectionConfig struct {
	Threshold int     `yaml:"threshold"` // Binary threshold, 0..255
	Downscale float64 `yaml:"downscale"` // Scale factor applied before thresholding, (0, 1]
}

// LocatorConfig holds k-means parameters.
type LocatorConfig struct {
	NObjects int     `yaml:"n_objects"`
	MaxIter  int     `yaml:"max_iter"`
	Epsilon  float64 `yaml:"epsilon"`
	Attempts int     `yaml:"attempts"`
	Seed     uint64  `yaml:"seed"`
}

// TrackerConfig holds track continuity parameters.
type TrackerConfig struct {
	Enabled     bool    `yaml:"enabled"`
	Solver      string  `yaml:"solver"`       // hungarian | greedy
	MaxDistance float64 `yaml:"max_distance"` // Gate in relative units, non-positive disables it
	MaxSkip     int     `yaml:"max_skip"`
	MaxHistory  int     `yaml:"max_history"`
	Prediction  bool    `yaml:"prediction"`
}

// ParticlesConfig holds particle system parameters.
type ParticlesConfig struct {
	MaxAge       int    `yaml:"max_age"`
	Blend        string `yaml:"blend"`
	Interpolator string `yaml:"interpolator"`
	Seed         uint64 `yaml:"seed"` // Seed for cosmetic per-spawn variation
}

// SparkleConfig holds parameters of image-textured particles.
type SparkleConfig struct {
	SizeMean      float64 `yaml:"size_mean"`
	SizeStdDev    float64 `yaml:"size_stddev"`
	Opacity       float64 `yaml:"opacity"`
	SizeRate      float64 `yaml:"size_rate"`
	AlphaRate     float64 `yaml:"alpha_rate"`
	TrailVelocity bool    `yaml:"trail_velocity"` // Give particles velocity of the track they were spawned from
	VelocityDecay float64 `yaml:"velocity_decay"`
}

// CircleConfig holds parameters of disc particles.
type CircleConfig struct {
	Radius   int     `yaml:"radius"`
	Color    RGB     `yaml:"color"`
	Diameter float64 `yaml:"diameter"`
	Opacity  float64 `yaml:"opacity"`
}

// DebugConfig holds parameters of debug dots drawn at detected centers.
type DebugConfig struct {
	DotRadius int `yaml:"dot_radius"`
	Color     RGB `yaml:"color"`
}

// OutputConfig holds output buffer parameters.
type OutputConfig struct {
	Scale float64 `yaml:"scale"`
}

// RGB is opaque color written as [r, g, b] in YAML.
type RGB [3]uint8

// RGBA converts to color.RGBA
func (c RGB) RGBA() color.RGBA {
	return color.RGBA{R: c[0], G: c[1], B: c[2], A: 255}
}

// Default returns embedded default configuration.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(errors.Wrap(err, "embedded defaults are broken"))
	}
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// Empty path means defaults only.
func Load(path string) (*Config, error) {
	// Start with embedded defaults
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, errors.Wrap(err, "parsing embedded defaults")
	}

	// Load user config if provided
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrap(err, "reading config file")
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrap(err, "parsing config file")
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	return cfg, nil
}

// Validate reports the first contract violation found in configuration.
func (c *Config) Validate() error {
	if c.Detection.Threshold < 0 || c.Detection.Threshold > 255 {
		return errors.Errorf("detection.threshold must be within 0..255, got %d", c.Detection.Threshold)
	}
	if c.Detection.Downscale <= 0 || c.Detection.Downscale > 1 {
		return errors.Errorf("detection.downscale must be within (0, 1], got %v", c.Detection.Downscale)
	}
	if c.Locator.NObjects < 1 {
		return errors.Errorf("locator.n_objects must be at least 1, got %d", c.Locator.NObjects)
	}
	if c.Locator.MaxIter < 1 {
		return errors.Errorf("locator.max_iter must be at least 1, got %d", c.Locator.MaxIter)
	}
	if c.Locator.Epsilon < 0 {
		return errors.Errorf("locator.epsilon must be non-negative, got %v", c.Locator.Epsilon)
	}
	if c.Locator.Attempts < 1 {
		return errors.Errorf("locator.attempts must be at least 1, got %d", c.Locator.Attempts)
	}
	switch c.Tracker.Solver {
	case "hungarian", "greedy":
	default:
		return errors.Errorf("tracker.solver must be 'hungarian' or 'greedy', got '%s'", c.Tracker.Solver)
	}
	if c.Tracker.MaxSkip < 0 {
		return errors.Errorf("tracker.max_skip must be non-negative, got %d", c.Tracker.MaxSkip)
	}
	if c.Tracker.MaxHistory < 1 {
		return errors.Errorf("tracker.max_history must be at least 1, got %d", c.Tracker.MaxHistory)
	}
	if c.Particles.MaxAge < 0 {
		return errors.Errorf("particles.max_age must be non-negative, got %d", c.Particles.MaxAge)
	}
	switch c.Particles.Blend {
	case "over", "additive":
	default:
		return errors.Errorf("particles.blend must be 'over' or 'additive', got '%s'", c.Particles.Blend)
	}
	switch c.Particles.Interpolator {
	case "nearest", "approx-bilinear", "bilinear", "catmull-rom":
	default:
		return errors.Errorf("particles.interpolator is unknown: '%s'", c.Particles.Interpolator)
	}
	if c.Sparkle.SizeMean < 0 || c.Sparkle.SizeStdDev < 0 {
		return errors.Errorf("sparkle size parameters must be non-negative, got mean %v and stddev %v", c.Sparkle.SizeMean, c.Sparkle.SizeStdDev)
	}
	if c.Sparkle.Opacity < 0 || c.Circle.Opacity < 0 {
		return errors.New("particle opacity must be non-negative")
	}
	if c.Circle.Diameter < 0 {
		return errors.Errorf("circle.diameter must be non-negative, got %v", c.Circle.Diameter)
	}
	if c.Output.Scale <= 0 {
		return errors.Errorf("output.scale must be positive, got %v", c.Output.Scale)
	}
	return nil
}
