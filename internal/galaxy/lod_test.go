package galaxy

import (
	"math"
	"testing"

	apperr "github.com/s0oraj/roadmapgalaxy/internal/errors"
)

func TestSelect(t *testing.T) {
	sel, err := NewSelector(DefaultTiers())
	if err != nil {
		t.Fatalf("NewSelector() error = %v", err)
	}

	tests := []struct {
		name      string
		distance  float64
		wantCount int
	}{
		{"very close", 0, 500000},
		{"inside first", 3.2, 500000},
		{"exactly first threshold", 5, 500000},
		{"just past first", 5.0001, 200000},
		{"exactly second threshold", 15, 200000},
		{"far", 29.9, 100000},
		{"exactly last threshold", 50, 50000},
		{"beyond last", 80, 50000},
		{"negative", -4, 500000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sel.Select(tt.distance)
			if got.ParticleCount != tt.wantCount {
				t.Errorf("Select(%v).ParticleCount = %d, want %d", tt.distance, got.ParticleCount, tt.wantCount)
			}
		})
	}
}

func TestResolveNonFinite(t *testing.T) {
	sel, err := NewSelector(DefaultTiers())
	if err != nil {
		t.Fatalf("NewSelector() error = %v", err)
	}

	for _, d := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		tier, err := sel.Resolve(d)
		if !apperr.IsExhaustedLOD(err) {
			t.Errorf("Resolve(%v) error = %v, want exhausted_lod", d, err)
		}
		if tier != sel.Coarsest() {
			t.Errorf("Resolve(%v) = %+v, want coarsest %+v", d, tier, sel.Coarsest())
		}
		if got := sel.Select(d); got != sel.Coarsest() {
			t.Errorf("Select(%v) = %+v, want coarsest", d, got)
		}
	}
}

func TestNewSelectorValidation(t *testing.T) {
	tests := []struct {
		name  string
		tiers []LODTier
	}{
		{"empty", nil},
		{"zero count", []LODTier{{Distance: 5, ParticleCount: 0, BaseSize: 0.01}}},
		{"negative size", []LODTier{{Distance: 5, ParticleCount: 10, BaseSize: -1}}},
		{"not ascending", []LODTier{
			{Distance: 10, ParticleCount: 10, BaseSize: 0.01},
			{Distance: 10, ParticleCount: 5, BaseSize: 0.01},
		}},
		{"descending", []LODTier{
			{Distance: 10, ParticleCount: 10, BaseSize: 0.01},
			{Distance: 5, ParticleCount: 5, BaseSize: 0.01},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sel, err := NewSelector(tt.tiers)
			if !apperr.IsConfiguration(err) {
				t.Errorf("NewSelector() error = %v, want configuration error", err)
			}
			if sel != nil {
				t.Error("expected nil selector")
			}
		})
	}
}

func TestSelectorCopiesTiers(t *testing.T) {
	tiers := DefaultTiers()
	sel, err := NewSelector(tiers)
	if err != nil {
		t.Fatalf("NewSelector() error = %v", err)
	}

	tiers[0].ParticleCount = 1
	if got := sel.Select(1).ParticleCount; got != 500000 {
		t.Errorf("selector saw caller mutation: count = %d", got)
	}

	out := sel.Tiers()
	out[0].ParticleCount = 2
	if got := sel.Select(1).ParticleCount; got != 500000 {
		t.Errorf("selector saw Tiers() mutation: count = %d", got)
	}
}

func TestSelectorHelpers(t *testing.T) {
	sel, err := NewSelector(DefaultTiers())
	if err != nil {
		t.Fatalf("NewSelector() error = %v", err)
	}

	if got := sel.MaxParticleCount(); got != 500000 {
		t.Errorf("MaxParticleCount() = %d, want 500000", got)
	}
	if got := sel.Index(sel.Select(20)); got != 2 {
		t.Errorf("Index(Select(20)) = %d, want 2", got)
	}
	if got := sel.Index(LODTier{Distance: 1}); got != -1 {
		t.Errorf("Index(unknown) = %d, want -1", got)
	}
}

func TestTierNear(t *testing.T) {
	for _, tier := range DefaultTiers() {
		want := tier.Distance < NearDistance
		if got := tier.Near(); got != want {
			t.Errorf("tier %v Near() = %v, want %v", tier.Distance, got, want)
		}
	}
}
