// Package camera provides the camera path math, the free orbit rig and the
// transition controller that flies the camera into a target.
package camera

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// DefaultArcHeight is how far the path midpoint is raised above the straight
// line between start and target.
const DefaultArcHeight = 2.0

// Midpoint returns the raised control point of the flight arc.
func Midpoint(start, target r3.Vec, arcHeight float64) r3.Vec {
	mid := lerp(start, target, 0.5)
	mid.Y += arcHeight
	return mid
}

// PositionAt evaluates the quadratic Bézier {start, midpoint, target} at
// progress using de Casteljau's method.
//
// Progress is clamped to [0,1]. The endpoints are returned exactly:
//   - progress <= 0 returns start
//   - progress >= 1 returns target
func PositionAt(start, target r3.Vec, progress, arcHeight float64) r3.Vec {
	// NaN fails both comparisons below, so treat it as the start.
	if !(progress > 0) {
		return start
	}
	if progress >= 1 {
		return target
	}

	mid := Midpoint(start, target, arcHeight)
	p1 := lerp(start, mid, progress)
	p2 := lerp(mid, target, progress)
	return lerp(p1, p2, progress)
}

// lerp uses the a*(1-t) + b*t form, which is exact at both ends.
func lerp(a, b r3.Vec, t float64) r3.Vec {
	return r3.Add(r3.Scale(1-t, a), r3.Scale(t, b))
}

// Distance returns the Euclidean distance between a and b.
func Distance(a, b r3.Vec) float64 {
	return r3.Norm(r3.Sub(a, b))
}
