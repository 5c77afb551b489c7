// Package galaxy generates the procedural spiral galaxy point cloud.
package galaxy

import (
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/s0oraj/roadmapgalaxy/internal/errors"
)

// Default palette, matching the web build of the roadmap galaxy.
const (
	DefaultInsideHex  = "#ffab4d"
	DefaultOutsideHex = "#3b7bcc"
	DefaultDustHex    = "#4a2d05"
)

// Tunable generation constants.
const (
	// BulgeFraction is the share of every tier's budget spent on the bulge.
	BulgeFraction = 0.35

	// DustProbability is the per-particle chance of a dust-colored arm particle.
	DustProbability = 0.3

	// NoiseXZ and NoiseY scale arm scatter; Y is flatter to keep a thin disk.
	NoiseXZ = 0.1
	NoiseY  = 0.05
)

// GeometryConfig holds the immutable generation parameters.
type GeometryConfig struct {
	ParticleCountHint int     // Upper bound for any tier budget
	Radius            float64 // Outer radius of the disk
	Branches          int     // Number of spiral arms
	Spin              float64 // Arm twist factor (radians per unit radius)
	RandomnessPower   float64 // >= 1; higher clusters arm particles tighter
	BulgeSize         float64 // Fraction of Radius occupied by the bulge, in (0,1)
	CoreIntensity     float64 // Brightness multiplier for bulge color
	ArmWidth          float64 // Multiplier on arm scatter (1 = NoiseXZ/NoiseY as is)

	InsideColor  colorful.Color
	OutsideColor colorful.Color
	DustColor    colorful.Color

	DustLanes    bool // Inject dust-colored particles into arms
	DustNearOnly bool // Only inject dust for near tiers
}

// DefaultConfig returns the galaxy used by the roadmap landing scene.
func DefaultConfig() GeometryConfig {
	inside, _ := colorful.Hex(DefaultInsideHex)
	outside, _ := colorful.Hex(DefaultOutsideHex)
	dust, _ := colorful.Hex(DefaultDustHex)

	return GeometryConfig{
		ParticleCountHint: 500000,
		Radius:            20,
		Branches:          5,
		Spin:              1.5,
		RandomnessPower:   2.05,
		BulgeSize:         0.25,
		CoreIntensity:     2.5,
		ArmWidth:          0.3,
		InsideColor:       inside,
		OutsideColor:      outside,
		DustColor:         dust,
		DustLanes:         true,
		DustNearOnly:      true,
	}
}

// ParseColor parses a "#rrggbb" color stop.
func ParseColor(hex string) (colorful.Color, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return colorful.Color{}, errors.WrapConfiguration("invalid color "+hex, err)
	}
	return c, nil
}

// BulgeRadius returns the radius of the central bulge.
func (c GeometryConfig) BulgeRadius() float64 {
	return c.Radius * c.BulgeSize
}

// Validate reports the first contract violation in c.
func (c GeometryConfig) Validate() error {
	if c.ParticleCountHint <= 0 {
		return errors.Configurationf("particle count hint must be positive, got %d", c.ParticleCountHint)
	}
	if !(c.Radius > 0) || math.IsInf(c.Radius, 0) {
		return errors.Configurationf("radius must be positive and finite, got %v", c.Radius)
	}
	if c.Branches < 1 {
		return errors.Configurationf("branches must be at least 1, got %d", c.Branches)
	}
	if !(c.BulgeSize > 0 && c.BulgeSize < 1) {
		return errors.Configurationf("bulge size must be in (0,1), got %v", c.BulgeSize)
	}
	if !(c.RandomnessPower >= 1) || math.IsInf(c.RandomnessPower, 0) {
		return errors.Configurationf("randomness power must be >= 1, got %v", c.RandomnessPower)
	}
	if !(c.CoreIntensity > 0) || math.IsInf(c.CoreIntensity, 0) {
		return errors.Configurationf("core intensity must be positive, got %v", c.CoreIntensity)
	}
	if math.IsNaN(c.Spin) || math.IsInf(c.Spin, 0) {
		return errors.Configurationf("spin must be finite, got %v", c.Spin)
	}
	if !(c.ArmWidth >= 0) || math.IsInf(c.ArmWidth, 0) {
		return errors.Configurationf("arm width must be non-negative, got %v", c.ArmWidth)
	}

	stops := []struct {
		name string
		c    colorful.Color
	}{
		{"inside", c.InsideColor},
		{"outside", c.OutsideColor},
		{"dust", c.DustColor},
	}
	for _, s := range stops {
		if !inUnitRange(s.c.R) || !inUnitRange(s.c.G) || !inUnitRange(s.c.B) {
			return errors.Configurationf("%s color %v has channels outside [0,1]", s.name, s.c)
		}
	}

	return nil
}

func inUnitRange(v float64) bool {
	return v >= 0 && v <= 1
}
