package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Eye selection values.
const (
	EyeLeft  = "left"
	EyeRight = "right"
)

// MaxConfigFileBytes caps the accepted config file size; a calibration
// run config is a handful of scalars, never megabytes.
const MaxConfigFileBytes = 1 << 20

// BoundsConfig supplies known physical screen bounds in plane-local
// coordinates (input units, scaled by to_meters). When present, the
// bounds are not derived from the calibration samples.
type BoundsConfig struct {
	Left   float64 `yaml:"left"`
	Right  float64 `yaml:"right"`
	Top    float64 `yaml:"top"`
	Bottom float64 `yaml:"bottom"`
}

// VerifyConfig controls the optional post-fit angle verification.
// xx/xy and yx/yy give the direction in (longitude, latitude) space
// that the display's X and Y axes are expected to map to.
type VerifyConfig struct {
	Enabled         bool    `yaml:"enabled"`
	MaxAngleDiffDeg float64 `yaml:"max_angle_diff_deg"`
	XX              float64 `yaml:"xx"`
	XY              float64 `yaml:"xy"`
	YX              float64 `yaml:"yx"`
	YY              float64 `yaml:"yy"`
}

// Config aggregates all run configuration.
type Config struct {
	Eye          string        `yaml:"eye"`           // "left" or "right"
	Depth        float64       `yaml:"depth"`         // distance to the virtual screen, in input units
	ToMeters     float64       `yaml:"to_meters"`     // scale from input units to meters
	FieldAngles  bool          `yaml:"field_angles"`  // angles are independent view-relative field angles
	ScreenBounds *BoundsConfig `yaml:"screen_bounds,omitempty"` // optional; nil = compute from samples
	Verify       VerifyConfig  `yaml:"verify"`
	DebugLevel   int           `yaml:"debug_level"` // 0-3 (0=off, 1=info, 2=verbose, 3=trace)
}

// Default returns the configuration used when no file is given.
// The defaults match the measurement rigs this tool grew up with:
// field angles, a screen two units away, bounds derived from the data.
func Default() *Config {
	return &Config{
		Eye:         EyeLeft,
		Depth:       2.0,
		ToMeters:    1.0,
		FieldAngles: true,
		Verify: VerifyConfig{
			MaxAngleDiffDeg: 2.0,
			XX:              1.0,
			YY:              1.0,
		},
	}
}

// ValidateConfigPath rejects config paths outside a configs/ directory
// or without a .yaml extension, so a stray argument cannot make the
// tool read arbitrary files as YAML.
func ValidateConfigPath(path string) error {
	if path == "" {
		return fmt.Errorf("config path is empty")
	}
	if filepath.Ext(path) != ".yaml" {
		return fmt.Errorf("config file must have a .yaml extension: %s", path)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve config path: %w", err)
	}
	if filepath.Base(filepath.Dir(abs)) != "configs" {
		return fmt.Errorf("config file must live in a configs/ directory: %s", path)
	}
	return nil
}

// Load reads a YAML file and returns the configuration.
// Omitted fields keep the Default() values; present fields are
// validated.
func Load(path string) (*Config, error) {
	if err := ValidateConfigPath(path); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	if len(data) > MaxConfigFileBytes {
		return nil, fmt.Errorf("config file exceeds %d bytes", MaxConfigFileBytes)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("unmarshal yaml: %w", err)
	}

	// Basic validation
	if cfg.Eye != EyeLeft && cfg.Eye != EyeRight {
		return nil, fmt.Errorf("eye must be %q or %q, got %q", EyeLeft, EyeRight, cfg.Eye)
	}
	if !isFinite(cfg.Depth) || cfg.Depth <= 0 {
		return nil, fmt.Errorf("depth must be a finite value > 0, got %g", cfg.Depth)
	}
	if !isFinite(cfg.ToMeters) || cfg.ToMeters <= 0 {
		return nil, fmt.Errorf("to_meters must be a finite value > 0, got %g", cfg.ToMeters)
	}
	if b := cfg.ScreenBounds; b != nil {
		if !isFinite(b.Left) || !isFinite(b.Right) || !isFinite(b.Top) || !isFinite(b.Bottom) {
			return nil, fmt.Errorf("screen_bounds values must be finite, got %+v", *b)
		}
		if b.Left >= b.Right {
			return nil, fmt.Errorf("screen_bounds: left (%g) must be < right (%g)", b.Left, b.Right)
		}
		if b.Bottom >= b.Top {
			return nil, fmt.Errorf("screen_bounds: bottom (%g) must be < top (%g)", b.Bottom, b.Top)
		}
	}
	if !isFinite(cfg.Verify.MaxAngleDiffDeg) || cfg.Verify.MaxAngleDiffDeg < 0 {
		return nil, fmt.Errorf("verify.max_angle_diff_deg must be a finite value >= 0, got %g", cfg.Verify.MaxAngleDiffDeg)
	}
	if cfg.Verify.MaxAngleDiffDeg == 0 {
		cfg.Verify.MaxAngleDiffDeg = 2.0 // reasonable default
	}
	if !isFinite(cfg.Verify.XX) || !isFinite(cfg.Verify.XY) || !isFinite(cfg.Verify.YX) || !isFinite(cfg.Verify.YY) {
		return nil, fmt.Errorf("verify axis basis values must be finite, got %+v", cfg.Verify)
	}
	if cfg.Verify.XX == 0 && cfg.Verify.XY == 0 {
		return nil, fmt.Errorf("verify: (xx, xy) must not be the zero vector")
	}
	if cfg.Verify.YX == 0 && cfg.Verify.YY == 0 {
		return nil, fmt.Errorf("verify: (yx, yy) must not be the zero vector")
	}
	if cfg.DebugLevel < 0 || cfg.DebugLevel > 3 {
		return nil, fmt.Errorf("debug_level must be between 0 and 3, got %d", cfg.DebugLevel)
	}

	return cfg, nil
}

// UseRightEye reports whether the run describes the right eye.
func (c *Config) UseRightEye() bool {
	return c.Eye == EyeRight
}

// UseFieldAngles reports whether latitude/longitude are independent
// view-relative field angles rather than spherical coordinates.
func (c *Config) UseFieldAngles() bool {
	return c.FieldAngles
}

// DepthMeters returns the screen distance in meters.
func (c *Config) DepthMeters() float64 {
	return c.Depth * c.ToMeters
}

// ComputeScreenBounds reports whether the screen bounds are derived
// from the calibration samples (no supplied bounds).
func (c *Config) ComputeScreenBounds() bool {
	return c.ScreenBounds == nil
}

// VerifyEnabled reports whether post-fit angle verification runs.
func (c *Config) VerifyEnabled() bool {
	return c.Verify.Enabled
}

// MaxAngleDiffDeg returns the verification tolerance in degrees.
func (c *Config) MaxAngleDiffDeg() float64 {
	return c.Verify.MaxAngleDiffDeg
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
