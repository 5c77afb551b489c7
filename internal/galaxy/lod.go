package galaxy

import (
	"math"

	"github.com/s0oraj/roadmapgalaxy/internal/errors"
)

// NearDistance is the camera distance under which a tier counts as near-field
// (dust lanes are only drawn there by default).
const NearDistance = 20.0

// LODTier is one level-of-detail step.
type LODTier struct {
	Distance      float64 // Inclusive upper bound of applicability
	ParticleCount int     // Exact particle budget
	BaseSize      float64 // Base point size
}

// Near reports whether the tier is a near-field tier.
func (t LODTier) Near() bool {
	return t.Distance < NearDistance
}

// DefaultTiers returns the tier table in ascending distance order.
func DefaultTiers() []LODTier {
	return []LODTier{
		{Distance: 5, ParticleCount: 500000, BaseSize: 0.006},  // closest
		{Distance: 15, ParticleCount: 200000, BaseSize: 0.008}, // mid-range
		{Distance: 30, ParticleCount: 100000, BaseSize: 0.012}, // far
		{Distance: 50, ParticleCount: 50000, BaseSize: 0.018},  // ultra far
	}
}

// Selector maps a continuous distance to a tier. It is immutable after
// construction and safe for concurrent use.
type Selector struct {
	tiers []LODTier
}

// NewSelector validates and copies tiers.
func NewSelector(tiers []LODTier) (*Selector, error) {
	if len(tiers) == 0 {
		return nil, errors.Configurationf("at least one LOD tier is required")
	}
	for i, t := range tiers {
		if t.ParticleCount <= 0 {
			return nil, errors.Configurationf("tier %d: particle count must be positive, got %d", i, t.ParticleCount)
		}
		if t.BaseSize < 0 || math.IsNaN(t.BaseSize) {
			return nil, errors.Configurationf("tier %d: base size must be non-negative, got %v", i, t.BaseSize)
		}
		if i > 0 && !(t.Distance > tiers[i-1].Distance) {
			return nil, errors.Configurationf("tier %d: distances must be strictly ascending", i)
		}
	}

	cp := make([]LODTier, len(tiers))
	copy(cp, tiers)
	return &Selector{tiers: cp}, nil
}

// Tiers returns a copy of the tier table.
func (s *Selector) Tiers() []LODTier {
	cp := make([]LODTier, len(s.tiers))
	copy(cp, s.tiers)
	return cp
}

// Coarsest returns the last tier.
func (s *Selector) Coarsest() LODTier {
	return s.tiers[len(s.tiers)-1]
}

// MaxParticleCount returns the largest budget in the table.
func (s *Selector) MaxParticleCount() int {
	max := 0
	for _, t := range s.tiers {
		if t.ParticleCount > max {
			max = t.ParticleCount
		}
	}
	return max
}

// Select returns the first tier whose threshold is >= distance, or the
// coarsest tier when none matches. It never fails.
func (s *Selector) Select(distance float64) LODTier {
	tier, _ := s.Resolve(distance)
	return tier
}

// Resolve is Select with an ExhaustedLOD error for non-finite input.
// The returned tier is always usable.
func (s *Selector) Resolve(distance float64) (LODTier, error) {
	if math.IsNaN(distance) || math.IsInf(distance, 0) {
		return s.Coarsest(), errors.ExhaustedLOD(distance)
	}
	for _, t := range s.tiers {
		if distance <= t.Distance {
			return t, nil
		}
	}
	return s.Coarsest(), nil
}

// Index returns the position of tier in the table, or -1.
func (s *Selector) Index(tier LODTier) int {
	for i, t := range s.tiers {
		if t == tier {
			return i
		}
	}
	return -1
}
