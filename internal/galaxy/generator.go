package galaxy

import (
	"context"
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/s0oraj/roadmapgalaxy/internal/errors"
)

// cancelCheckInterval is how many particles are written between context checks.
const cancelCheckInterval = 4096

// Generator turns a GeometryConfig and a tier into Buffers.
type Generator struct{}

// NewGenerator creates a generator.
func NewGenerator() *Generator {
	return &Generator{}
}

// Generate builds a fresh set of buffers. It never returns partially
// written buffers: on error the result is nil.
func (g *Generator) Generate(cfg GeometryConfig, tier LODTier, rng RandomSource) (*Buffers, error) {
	return g.GenerateContext(context.Background(), cfg, tier, rng)
}

// GenerateContext is Generate with cancellation, used when a newer LOD
// request supersedes this one.
func (g *Generator) GenerateContext(ctx context.Context, cfg GeometryConfig, tier LODTier, rng RandomSource) (*Buffers, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if tier.ParticleCount <= 0 {
		return nil, errors.Configurationf("tier particle count must be positive, got %d", tier.ParticleCount)
	}
	if tier.ParticleCount > cfg.ParticleCountHint {
		return nil, errors.Configurationf("tier budget %d exceeds particle count hint %d",
			tier.ParticleCount, cfg.ParticleCountHint)
	}
	if rng == nil {
		return nil, errors.Configurationf("random source is required")
	}

	count := tier.ParticleCount
	bulgeCount := int(math.Floor(float64(count) * BulgeFraction))

	b := &Buffers{
		Positions:  make([]float32, count*3),
		Colors:     make([]float32, count*3),
		Sizes:      make([]float32, count),
		Count:      count,
		Tier:       tier,
		BulgeCount: bulgeCount,
	}

	w := &writer{b: b}

	if err := g.writeBulge(ctx, w, cfg, tier, rng, bulgeCount); err != nil {
		return nil, err
	}
	if err := g.writeArms(ctx, w, cfg, tier, rng, count-bulgeCount); err != nil {
		return nil, err
	}

	if w.next != count {
		return nil, errors.Internalf("generation wrote %d of %d particles", w.next, count)
	}

	return b, nil
}

// writeBulge fills the central sphere. Radii are squared-uniform so density
// rises toward the center; directions are uniform on the sphere.
func (g *Generator) writeBulge(ctx context.Context, w *writer, cfg GeometryConfig, tier LODTier, rng RandomSource, n int) error {
	bulgeR := cfg.BulgeRadius()

	for i := 0; i < n; i++ {
		if i%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}

		u := rng.Float64()
		r := u * u * bulgeR

		azimuth := rng.Float64() * 2 * math.Pi
		polar := math.Acos(2*rng.Float64() - 1)

		sinPolar := math.Sin(polar)
		x := r * sinPolar * math.Cos(azimuth)
		y := r * math.Cos(polar)
		z := r * sinPolar * math.Sin(azimuth)

		// Not clamped: the renderer saturates colors.
		intensity := (1 - r/bulgeR) * cfg.CoreIntensity
		col := colorful.Color{
			R: cfg.InsideColor.R * intensity,
			G: cfg.InsideColor.G * intensity,
			B: cfg.InsideColor.B * intensity,
		}

		size := tier.BaseSize * (0.5 + 0.5*rng.Float64())

		w.put(x, y, z, col, size)
	}
	return nil
}

// writeArms walks each branch outward from the bulge edge to the rim.
func (g *Generator) writeArms(ctx context.Context, w *writer, cfg GeometryConfig, tier LODTier, rng RandomSource, armCount int) error {
	inner := cfg.BulgeRadius()
	span := cfg.Radius - inner
	perArm := armCount / cfg.Branches
	remainder := armCount % cfg.Branches

	dust := cfg.DustLanes && (!cfg.DustNearOnly || tier.Near())

	written := 0
	for a := 0; a < cfg.Branches; a++ {
		n := perArm
		if a == cfg.Branches-1 {
			n += remainder
		}
		if n == 0 {
			continue
		}

		branchAngle := float64(a) / float64(cfg.Branches) * 2 * math.Pi
		step := span / float64(n)

		for i := 0; i < n; i++ {
			if written%cancelCheckInterval == 0 {
				if err := ctx.Err(); err != nil {
					return err
				}
			}
			written++

			armRadius := inner + float64(i)*step
			rotation := branchAngle + armRadius*cfg.Spin

			nx := scatter(rng, cfg.RandomnessPower) * armRadius * NoiseXZ * cfg.ArmWidth
			ny := scatter(rng, cfg.RandomnessPower) * armRadius * NoiseY * cfg.ArmWidth
			nz := scatter(rng, cfg.RandomnessPower) * armRadius * NoiseXZ * cfg.ArmWidth

			x := math.Cos(rotation)*armRadius + nx
			y := ny
			z := math.Sin(rotation)*armRadius + nz

			var col colorful.Color
			if dust && rng.Float64() < DustProbability {
				col = cfg.DustColor
			} else {
				t := float64(i) / float64(n)
				col = cfg.InsideColor.BlendRgb(cfg.OutsideColor, math.Sqrt(t))
			}

			size := tier.BaseSize * (0.8 + 0.4*rng.Float64())

			w.put(x, y, z, col, size)
		}
	}
	return nil
}

// scatter returns a signed offset with magnitude pow(u, power).
func scatter(rng RandomSource, power float64) float64 {
	mag := math.Pow(rng.Float64(), power)
	if rng.Float64() < 0.5 {
		return -mag
	}
	return mag
}

// writer hands out particle indices sequentially so every index is written
// exactly once.
type writer struct {
	b    *Buffers
	next int
}

func (w *writer) put(x, y, z float64, c colorful.Color, size float64) {
	i := w.next
	i3 := i * 3

	w.b.Positions[i3] = float32(x)
	w.b.Positions[i3+1] = float32(y)
	w.b.Positions[i3+2] = float32(z)

	w.b.Colors[i3] = float32(c.R)
	w.b.Colors[i3+1] = float32(c.G)
	w.b.Colors[i3+2] = float32(c.B)

	w.b.Sizes[i] = float32(size)

	w.next++
}
