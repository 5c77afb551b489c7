package camera

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func TestPositionAtEndpointsExact(t *testing.T) {
	pairs := []struct {
		name          string
		start, target r3.Vec
	}{
		{"scenario", r3.Vec{X: 0, Y: 3, Z: 10}, r3.Vec{X: 6.67, Y: 0.2, Z: 4}},
		{"awkward decimals", r3.Vec{X: 0.1, Y: 0.2, Z: 0.3}, r3.Vec{X: -7.77, Y: 1e-7, Z: 123.456}},
		{"same point", r3.Vec{X: 1, Y: 1, Z: 1}, r3.Vec{X: 1, Y: 1, Z: 1}},
		{"negative", r3.Vec{X: -50, Y: -3, Z: -0.001}, r3.Vec{X: 3, Y: 99, Z: -42}},
	}

	for _, tt := range pairs {
		t.Run(tt.name, func(t *testing.T) {
			for _, arc := range []float64{0, DefaultArcHeight, -5} {
				if got := PositionAt(tt.start, tt.target, 0, arc); got != tt.start {
					t.Errorf("PositionAt(0) = %v, want %v", got, tt.start)
				}
				if got := PositionAt(tt.start, tt.target, 1, arc); got != tt.target {
					t.Errorf("PositionAt(1) = %v, want %v", got, tt.target)
				}
			}
		})
	}
}

func TestPositionAtClampsProgress(t *testing.T) {
	start := r3.Vec{X: 0, Y: 3, Z: 10}
	target := r3.Vec{X: 6.67, Y: 0.2, Z: 4}

	if got := PositionAt(start, target, -0.5, 2); got != start {
		t.Errorf("PositionAt(-0.5) = %v, want start", got)
	}
	if got := PositionAt(start, target, 1.7, 2); got != target {
		t.Errorf("PositionAt(1.7) = %v, want target", got)
	}
	if got := PositionAt(start, target, math.NaN(), 2); got != start {
		t.Errorf("PositionAt(NaN) = %v, want start", got)
	}
}

func TestPositionAtArc(t *testing.T) {
	start := r3.Vec{X: 0, Y: 0, Z: 10}
	target := r3.Vec{X: 0, Y: 0, Z: 0}

	// Quadratic Bézier at 0.5 is 0.25*start + 0.5*mid + 0.25*target.
	got := PositionAt(start, target, 0.5, 2)
	want := r3.Vec{X: 0, Y: 1, Z: 5}
	if Distance(got, want) > 1e-12 {
		t.Errorf("PositionAt(0.5) = %v, want %v", got, want)
	}

	flat := PositionAt(start, target, 0.5, 0)
	if flat.Y != 0 {
		t.Errorf("flat arc Y = %v, want 0", flat.Y)
	}
}

func TestMidpoint(t *testing.T) {
	got := Midpoint(r3.Vec{X: 2, Y: 2, Z: 2}, r3.Vec{X: 4, Y: 0, Z: -2}, 2)
	want := r3.Vec{X: 3, Y: 3, Z: 0}
	if got != want {
		t.Errorf("Midpoint() = %v, want %v", got, want)
	}
}

func TestClampDistance(t *testing.T) {
	tests := []struct {
		name    string
		pos     r3.Vec
		want    float64
		keepDir bool
	}{
		{"inside", r3.Vec{X: 3, Y: 4}, 5, true},
		{"too close", r3.Vec{X: 0.3, Y: 0.4}, 2, true},
		{"too far", r3.Vec{X: 300, Y: 400}, 100, true},
		{"on min bound", r3.Vec{Z: 2}, 2, true},
		{"origin", r3.Vec{}, 2, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClampDistance(tt.pos, DefaultMinDistance, DefaultMaxDistance)
			if d := r3.Norm(got); math.Abs(d-tt.want) > 1e-9 {
				t.Errorf("|ClampDistance()| = %v, want %v", d, tt.want)
			}
			if tt.keepDir {
				a, b := r3.Unit(tt.pos), r3.Unit(got)
				if Distance(a, b) > 1e-9 {
					t.Errorf("direction changed: %v -> %v", a, b)
				}
			}
		})
	}
}

func TestLookAt(t *testing.T) {
	p := LookAt(r3.Vec{Z: 10}, r3.Vec{})
	if !p.Valid() {
		t.Fatal("expected valid pose")
	}
	if want := (r3.Vec{Z: -1}); Distance(p.Forward, want) > 1e-12 {
		t.Errorf("Forward = %v, want %v", p.Forward, want)
	}
	if p.Up.Y <= 0 {
		t.Errorf("Up = %v, want positive Y", p.Up)
	}

	// The origin sits straight ahead at depth 10.
	v := p.ToView(r3.Vec{})
	if math.Abs(v.Z-10) > 1e-12 || math.Abs(v.X) > 1e-12 || math.Abs(v.Y) > 1e-12 {
		t.Errorf("ToView(origin) = %v, want (0,0,10)", v)
	}

	if LookAt(r3.Vec{X: 1}, r3.Vec{X: 1}).Valid() {
		t.Error("degenerate pose should be invalid")
	}

	// Straight down still yields a usable basis.
	down := LookAt(r3.Vec{Y: 10}, r3.Vec{})
	if r3.Norm(down.Right) == 0 || r3.Norm(down.Up) == 0 {
		t.Errorf("vertical pose basis = %v / %v", down.Right, down.Up)
	}
}

func TestRotateY(t *testing.T) {
	got := RotateY(r3.Vec{X: 1}, math.Pi/2)
	want := r3.Vec{Z: -1}
	if Distance(got, want) > 1e-12 {
		t.Errorf("RotateY() = %v, want %v", got, want)
	}
}
