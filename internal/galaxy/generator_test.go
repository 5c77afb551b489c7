package galaxy

import (
	"context"
	"errors"
	"math"
	"testing"

	apperr "github.com/s0oraj/roadmapgalaxy/internal/errors"
)

func exampleConfig() GeometryConfig {
	cfg := DefaultConfig()
	cfg.Radius = 20
	cfg.Branches = 5
	cfg.BulgeSize = 0.25
	cfg.Spin = 1.5
	cfg.RandomnessPower = 2.05
	return cfg
}

func TestGenerateExampleScenario(t *testing.T) {
	cfg := exampleConfig()
	tier := LODTier{Distance: 30, ParticleCount: 100000, BaseSize: 0.012}

	b, err := NewGenerator().Generate(cfg, tier, NewSeededSource(7))
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if b.Count != 100000 {
		t.Errorf("Count = %d, want 100000", b.Count)
	}
	if b.BulgeCount != 35000 {
		t.Errorf("BulgeCount = %d, want 35000", b.BulgeCount)
	}
	if !b.Consistent() {
		t.Errorf("inconsistent lengths: positions=%d colors=%d sizes=%d",
			len(b.Positions), len(b.Colors), len(b.Sizes))
	}

	maxBulge := cfg.Radius * cfg.BulgeSize
	for i := 0; i < b.BulgeCount; i++ {
		x, y, z := b.Position(i)
		r := math.Sqrt(float64(x)*float64(x) + float64(y)*float64(y) + float64(z)*float64(z))
		if r > maxBulge+1e-4 {
			t.Fatalf("bulge particle %d at radius %v, want <= %v", i, r, maxBulge)
		}
	}
}

func TestGenerateWritesEveryIndex(t *testing.T) {
	tests := []struct {
		name     string
		count    int
		branches int
	}{
		{"even split", 1000, 5},
		{"remainder absorbed by last arm", 103, 5},
		{"single branch", 57, 1},
		{"more branches than arm particles", 3, 7},
		{"single particle", 1, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := exampleConfig()
			cfg.Branches = tt.branches
			tier := LODTier{Distance: 10, ParticleCount: tt.count, BaseSize: 0.01}

			b, err := NewGenerator().Generate(cfg, tier, NewSeededSource(1))
			if err != nil {
				t.Fatalf("Generate() error = %v", err)
			}
			if b.Count != tt.count {
				t.Errorf("Count = %d, want %d", b.Count, tt.count)
			}
			if !b.Consistent() {
				t.Fatal("buffers are inconsistent")
			}
			// Every written particle has a strictly positive size.
			for i, s := range b.Sizes {
				if !(s > 0) {
					t.Fatalf("size[%d] = %v, index was never written", i, s)
				}
			}
		})
	}
}

func TestGenerateDeterministic(t *testing.T) {
	cfg := exampleConfig()
	tier := DefaultTiers()[1]

	a, err := NewGenerator().Generate(cfg, tier, NewSeededSource(42))
	if err != nil {
		t.Fatalf("first Generate() error = %v", err)
	}
	b, err := NewGenerator().Generate(cfg, tier, NewSeededSource(42))
	if err != nil {
		t.Fatalf("second Generate() error = %v", err)
	}

	check := func(name string, x, y []float32) {
		if len(x) != len(y) {
			t.Fatalf("%s length %d != %d", name, len(x), len(y))
		}
		for i := range x {
			if math.Float32bits(x[i]) != math.Float32bits(y[i]) {
				t.Fatalf("%s[%d] differs: %v vs %v", name, i, x[i], y[i])
			}
		}
	}
	check("positions", a.Positions, b.Positions)
	check("colors", a.Colors, b.Colors)
	check("sizes", a.Sizes, b.Sizes)
}

func TestGenerateSizeRanges(t *testing.T) {
	cfg := exampleConfig()
	tier := LODTier{Distance: 30, ParticleCount: 5000, BaseSize: 0.01}

	b, err := NewGenerator().Generate(cfg, tier, NewSeededSource(3))
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	const eps = 1e-6
	for i := 0; i < b.BulgeCount; i++ {
		s := float64(b.Sizes[i])
		if s < 0.005-eps || s > 0.010+eps {
			t.Fatalf("bulge size[%d] = %v, want in [0.005, 0.010]", i, s)
		}
	}
	for i := b.BulgeCount; i < b.Count; i++ {
		s := float64(b.Sizes[i])
		if s < 0.008-eps || s > 0.012+eps {
			t.Fatalf("arm size[%d] = %v, want in [0.008, 0.012]", i, s)
		}
	}
}

func TestGenerateBulgeColorIsNotClamped(t *testing.T) {
	cfg := exampleConfig()
	tier := LODTier{Distance: 30, ParticleCount: 2000, BaseSize: 0.01}

	b, err := NewGenerator().Generate(cfg, tier, NewSeededSource(9))
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	over := false
	for i := 0; i < b.BulgeCount; i++ {
		r, _, _ := b.Color(i)
		if r > 1 {
			over = true
			break
		}
	}
	if !over {
		t.Error("expected bulge core colors above 1 with core intensity 2.5")
	}
}

func TestGenerateDustLanesNearOnly(t *testing.T) {
	cfg := exampleConfig()
	dustR := float32(cfg.DustColor.R)
	dustG := float32(cfg.DustColor.G)
	dustB := float32(cfg.DustColor.B)

	countDust := func(b *Buffers) int {
		n := 0
		for i := b.BulgeCount; i < b.Count; i++ {
			r, g, bl := b.Color(i)
			if r == dustR && g == dustG && bl == dustB {
				n++
			}
		}
		return n
	}

	near := LODTier{Distance: 15, ParticleCount: 4000, BaseSize: 0.008}
	far := LODTier{Distance: 30, ParticleCount: 4000, BaseSize: 0.012}

	nb, err := NewGenerator().Generate(cfg, near, NewSeededSource(5))
	if err != nil {
		t.Fatalf("near Generate() error = %v", err)
	}
	fb, err := NewGenerator().Generate(cfg, far, NewSeededSource(5))
	if err != nil {
		t.Fatalf("far Generate() error = %v", err)
	}

	nearDust := countDust(nb)
	frac := float64(nearDust) / float64(nb.ArmCount())
	if frac < 0.2 || frac > 0.4 {
		t.Errorf("near dust fraction = %.3f, want around %.1f", frac, DustProbability)
	}
	if got := countDust(fb); got != 0 {
		t.Errorf("far tier dust particles = %d, want 0", got)
	}

	cfg.DustNearOnly = false
	ab, err := NewGenerator().Generate(cfg, far, NewSeededSource(5))
	if err != nil {
		t.Fatalf("unconditional Generate() error = %v", err)
	}
	if countDust(ab) == 0 {
		t.Error("expected dust on far tier when DustNearOnly is false")
	}
}

func TestGenerateInvalidConfig(t *testing.T) {
	tier := LODTier{Distance: 10, ParticleCount: 100, BaseSize: 0.01}

	tests := []struct {
		name   string
		mutate func(*GeometryConfig)
	}{
		{"zero branches", func(c *GeometryConfig) { c.Branches = 0 }},
		{"zero radius", func(c *GeometryConfig) { c.Radius = 0 }},
		{"negative radius", func(c *GeometryConfig) { c.Radius = -3 }},
		{"NaN radius", func(c *GeometryConfig) { c.Radius = math.NaN() }},
		{"bulge size zero", func(c *GeometryConfig) { c.BulgeSize = 0 }},
		{"bulge size one", func(c *GeometryConfig) { c.BulgeSize = 1 }},
		{"randomness below one", func(c *GeometryConfig) { c.RandomnessPower = 0.5 }},
		{"hint below tier", func(c *GeometryConfig) { c.ParticleCountHint = 10 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := exampleConfig()
			tt.mutate(&cfg)

			b, err := NewGenerator().Generate(cfg, tier, NewSeededSource(1))
			if err == nil {
				t.Fatal("expected configuration error")
			}
			if !apperr.IsConfiguration(err) {
				t.Errorf("error type = %q, want configuration", apperr.GetType(err))
			}
			if b != nil {
				t.Error("expected nil buffers on error")
			}
		})
	}
}

func TestGenerateCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	b, err := NewGenerator().GenerateContext(ctx, exampleConfig(), DefaultTiers()[3], NewSeededSource(1))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
	if b != nil {
		t.Error("expected nil buffers when cancelled")
	}
}

func TestGenerateBulgeUniformOnSphere(t *testing.T) {
	cfg := exampleConfig()
	tier := LODTier{Distance: 30, ParticleCount: 100000, BaseSize: 0.012}

	b, err := NewGenerator().Generate(cfg, tier, NewSeededSource(11))
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	// Uniform directions put cos(polar) uniform in [-1,1], so 10% of points
	// lie within the caps |y|/r > 0.9. Sampling the polar angle linearly
	// would put about 29% there.
	var polar, total int
	for i := 0; i < b.BulgeCount; i++ {
		x, y, z := b.Position(i)
		r := math.Sqrt(float64(x)*float64(x) + float64(y)*float64(y) + float64(z)*float64(z))
		if r < 1e-6 {
			continue
		}
		total++
		if math.Abs(float64(y))/r > 0.9 {
			polar++
		}
	}

	frac := float64(polar) / float64(total)
	if frac < 0.085 || frac > 0.115 {
		t.Errorf("pole fraction = %.4f, want about 0.1", frac)
	}
}

func TestGenerateArmGeometry(t *testing.T) {
	cfg := exampleConfig()
	cfg.ArmWidth = 0
	cfg.DustLanes = false
	tier := LODTier{Distance: 30, ParticleCount: 1000, BaseSize: 0.01}

	b, err := NewGenerator().Generate(cfg, tier, NewSeededSource(2))
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	// 1000 particles: 350 bulge, 650 arm, 130 per branch.
	const perArm = 130
	inner := cfg.Radius * cfg.BulgeSize
	step := (cfg.Radius - inner) / perArm

	for a := 0; a < cfg.Branches; a++ {
		branchAngle := float64(a) / float64(cfg.Branches) * 2 * math.Pi
		for i := 0; i < perArm; i++ {
			idx := b.BulgeCount + a*perArm + i
			x, y, z := b.Position(idx)

			wantR := inner + float64(i)*step
			wantAngle := branchAngle + wantR*cfg.Spin

			gotR := math.Hypot(float64(x), float64(z))
			if math.Abs(gotR-wantR) > 1e-4 {
				t.Fatalf("arm %d step %d: radius = %v, want %v", a, i, gotR, wantR)
			}
			if y != 0 {
				t.Fatalf("arm %d step %d: y = %v, want 0 without scatter", a, i, y)
			}
			gotAngle := math.Atan2(float64(z), float64(x))
			if d := math.Abs(math.Remainder(gotAngle-wantAngle, 2*math.Pi)); d > 1e-4 {
				t.Fatalf("arm %d step %d: angle = %v, want %v", a, i, gotAngle, wantAngle)
			}
		}
	}
}

func TestGenerateArmColorBlend(t *testing.T) {
	cfg := exampleConfig()
	cfg.DustLanes = false
	tier := LODTier{Distance: 30, ParticleCount: 1000, BaseSize: 0.01}

	b, err := NewGenerator().Generate(cfg, tier, NewSeededSource(4))
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	const perArm = 130
	tests := []struct {
		name string
		step int
	}{
		{"first", 0},
		{"quarter", perArm / 4},
		{"last", perArm - 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			want := cfg.InsideColor.BlendRgb(cfg.OutsideColor, math.Sqrt(float64(tt.step)/perArm))
			for a := 0; a < cfg.Branches; a++ {
				r, g, bl := b.Color(b.BulgeCount + a*perArm + tt.step)
				if math.Abs(float64(r)-want.R) > 1e-6 ||
					math.Abs(float64(g)-want.G) > 1e-6 ||
					math.Abs(float64(bl)-want.B) > 1e-6 {
					t.Errorf("arm %d color = (%v, %v, %v), want %v", a, r, g, bl, want)
				}
			}
		})
	}

	// The first step of every arm is exactly the inside color.
	r, g, bl := b.Color(b.BulgeCount)
	if r != float32(cfg.InsideColor.R) || g != float32(cfg.InsideColor.G) || bl != float32(cfg.InsideColor.B) {
		t.Errorf("first arm color = (%v, %v, %v), want inside %v", r, g, bl, cfg.InsideColor)
	}
}

func TestDefaultConfigArmWidth(t *testing.T) {
	if got := DefaultConfig().ArmWidth; got != 0.3 {
		t.Errorf("DefaultConfig().ArmWidth = %v, want 0.3", got)
	}
}
