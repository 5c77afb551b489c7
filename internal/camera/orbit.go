package camera

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Polar angle limits for the free orbit, measured from +Y. The camera can
// never look at the disk exactly edge-on from above or below.
const (
	MinPolar = math.Pi / 4
	MaxPolar = 3 * math.Pi / 4
)

// Orbit is a free orbit rig around the origin in spherical coordinates.
// It has no pan; zoom changes the radius within the distance bounds.
type Orbit struct {
	radius  float64
	azimuth float64 // around Y, 0 = +Z
	polar   float64 // from +Y

	minDistance float64
	maxDistance float64
}

// NewOrbit creates an orbit passing through position.
func NewOrbit(position r3.Vec) *Orbit {
	o := &Orbit{
		minDistance: DefaultMinDistance,
		maxDistance: DefaultMaxDistance,
	}
	o.SetFromPosition(position)
	return o
}

// SetDistanceLimits changes the zoom bounds and re-clamps the radius.
func (o *Orbit) SetDistanceLimits(min, max float64) {
	o.minDistance = min
	o.maxDistance = max
	o.radius = clamp(o.radius, min, max)
}

// SetFromPosition re-centers the orbit on an arbitrary camera position,
// e.g. after a flight is reset.
func (o *Orbit) SetFromPosition(p r3.Vec) {
	p = ClampDistance(p, o.minDistance, o.maxDistance)
	o.radius = r3.Norm(p)
	o.azimuth = math.Atan2(p.X, p.Z)
	o.polar = clamp(math.Acos(clamp(p.Y/o.radius, -1, 1)), MinPolar, MaxPolar)
}

// Rotate moves the camera around the origin. dPolar is clamped to the
// polar limits.
func (o *Orbit) Rotate(dAzimuth, dPolar float64) {
	o.azimuth = math.Mod(o.azimuth+dAzimuth, 2*math.Pi)
	o.polar = clamp(o.polar+dPolar, MinPolar, MaxPolar)
}

// Zoom scales the orbit radius by factor (< 1 moves closer).
func (o *Orbit) Zoom(factor float64) {
	if !(factor > 0) {
		return
	}
	o.radius = clamp(o.radius*factor, o.minDistance, o.maxDistance)
}

// Radius returns the current distance from the origin.
func (o *Orbit) Radius() float64 { return o.radius }

// Polar returns the current polar angle in radians.
func (o *Orbit) Polar() float64 { return o.polar }

// Position returns the camera position in world space.
func (o *Orbit) Position() r3.Vec {
	sinP, cosP := math.Sincos(o.polar)
	sinA, cosA := math.Sincos(o.azimuth)
	return r3.Vec{
		X: o.radius * sinP * sinA,
		Y: o.radius * cosP,
		Z: o.radius * sinP * cosA,
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
