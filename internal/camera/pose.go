package camera

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// worldUp is the +Y axis; the galaxy disk lies in the XZ plane.
var worldUp = r3.Vec{X: 0, Y: 1, Z: 0}

// Pose is a camera position plus the point it looks at.
type Pose struct {
	Position r3.Vec
	Target   r3.Vec

	// Orthonormal view basis. Forward is zero when Position == Target.
	Forward r3.Vec
	Right   r3.Vec
	Up      r3.Vec
}

// LookAt builds a pose at pos facing target.
func LookAt(pos, target r3.Vec) Pose {
	p := Pose{Position: pos, Target: target}

	dir := r3.Sub(target, pos)
	if r3.Norm(dir) == 0 {
		return p
	}
	p.Forward = r3.Unit(dir)

	right := r3.Cross(p.Forward, worldUp)
	if r3.Norm(right) < 1e-9 {
		// Looking straight up or down; pick any horizontal right vector.
		right = r3.Vec{X: 1}
	}
	p.Right = r3.Unit(right)
	p.Up = r3.Cross(p.Right, p.Forward)

	return p
}

// Valid reports whether the pose has a usable view direction.
func (p Pose) Valid() bool {
	return r3.Norm(p.Forward) > 0
}

// DistanceToOrigin returns |Position|.
func (p Pose) DistanceToOrigin() float64 {
	return r3.Norm(p.Position)
}

// ToView transforms a world point into camera space: x right, y up and
// z the depth along Forward.
func (p Pose) ToView(world r3.Vec) r3.Vec {
	rel := r3.Sub(world, p.Position)
	return r3.Vec{
		X: r3.Dot(rel, p.Right),
		Y: r3.Dot(rel, p.Up),
		Z: r3.Dot(rel, p.Forward),
	}
}

// RotateY rotates v about the Y axis by angle radians.
func RotateY(v r3.Vec, angle float64) r3.Vec {
	s, c := math.Sincos(angle)
	return r3.Vec{
		X: v.X*c + v.Z*s,
		Y: v.Y,
		Z: -v.X*s + v.Z*c,
	}
}
