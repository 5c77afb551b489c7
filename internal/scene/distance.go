package scene

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/s0oraj/roadmapgalaxy/internal/camera"
)

// DistanceReporter applies the distance bounds to the camera and reports
// its distance to the origin, which is the LOD input.
type DistanceReporter struct {
	min, max float64
	last     float64
}

// NewDistanceReporter creates a reporter clamping to [min, max].
func NewDistanceReporter(min, max float64) *DistanceReporter {
	return &DistanceReporter{min: min, max: max}
}

// Report clamps pos and returns the clamped position with its distance.
func (r *DistanceReporter) Report(pos r3.Vec) (r3.Vec, float64) {
	clamped := camera.ClampDistance(pos, r.min, r.max)
	r.last = r3.Norm(clamped)
	return clamped, r.last
}

// Last returns the most recently reported distance.
func (r *DistanceReporter) Last() float64 {
	return r.last
}
