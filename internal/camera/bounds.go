package camera

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Default distance bounds applied to the camera every tick.
const (
	DefaultMinDistance = 2.0
	DefaultMaxDistance = 100.0
)

// ClampDistance rescales pos so its distance from the origin lies in
// [min, max], preserving direction. A position at the origin has no
// direction and is moved to (0, 0, min).
func ClampDistance(pos r3.Vec, min, max float64) r3.Vec {
	d := r3.Norm(pos)
	switch {
	case d == 0:
		return r3.Vec{Z: min}
	case math.IsNaN(d) || math.IsInf(d, 0):
		// Nothing sensible to preserve.
		return r3.Vec{Z: max}
	case d < min:
		return r3.Scale(min/d, pos)
	case d > max:
		return r3.Scale(max/d, pos)
	default:
		return pos
	}
}
