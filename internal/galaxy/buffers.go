package galaxy

import "math"

// Buffers holds the parallel per-particle attribute arrays handed to the
// renderer. Positions and Colors hold 3 values per particle, Sizes one.
// A Buffers value is never edited after Generate returns it.
type Buffers struct {
	Positions []float32
	Colors    []float32
	Sizes     []float32
	Count     int

	Tier       LODTier
	BulgeCount int
}

// ArmCount returns the number of arm particles.
func (b *Buffers) ArmCount() int {
	return b.Count - b.BulgeCount
}

// Position returns the position of particle i.
func (b *Buffers) Position(i int) (x, y, z float32) {
	i3 := i * 3
	return b.Positions[i3], b.Positions[i3+1], b.Positions[i3+2]
}

// Color returns the color of particle i.
func (b *Buffers) Color(i int) (r, g, bl float32) {
	i3 := i * 3
	return b.Colors[i3], b.Colors[i3+1], b.Colors[i3+2]
}

// Consistent reports whether the three arrays agree with Count.
func (b *Buffers) Consistent() bool {
	return len(b.Positions) == b.Count*3 &&
		len(b.Colors) == b.Count*3 &&
		len(b.Sizes) == b.Count
}

// Bounds is an axis-aligned box around the point cloud.
type Bounds struct {
	Min [3]float32 `json:"min"`
	Max [3]float32 `json:"max"`
}

// Bounds computes the bounding box of all positions.
func (b *Buffers) Bounds() Bounds {
	if b.Count == 0 {
		return Bounds{}
	}
	bounds := Bounds{
		Min: [3]float32{math.MaxFloat32, math.MaxFloat32, math.MaxFloat32},
		Max: [3]float32{-math.MaxFloat32, -math.MaxFloat32, -math.MaxFloat32},
	}
	for i := 0; i < len(b.Positions); i += 3 {
		for axis := 0; axis < 3; axis++ {
			v := b.Positions[i+axis]
			if v < bounds.Min[axis] {
				bounds.Min[axis] = v
			}
			if v > bounds.Max[axis] {
				bounds.Max[axis] = v
			}
		}
	}
	return bounds
}
