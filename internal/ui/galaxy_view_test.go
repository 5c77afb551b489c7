package ui

import (
	"math"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/s0oraj/roadmapgalaxy/internal/camera"
	"github.com/s0oraj/roadmapgalaxy/internal/scene"
	"github.com/s0oraj/roadmapgalaxy/internal/state"
)

func TestProject(t *testing.T) {
	pose := camera.LookAt(r3.Vec{Z: 10}, r3.Vec{})

	tests := []struct {
		name   string
		point  r3.Vec
		wantX  int
		wantY  int
		wantOK bool
	}{
		{"origin is centered", r3.Vec{}, 40, 10, true},
		{"right of center", r3.Vec{X: 2}, -1, 10, true},
		{"above center", r3.Vec{Y: 2}, 40, -1, true},
		{"behind camera", r3.Vec{Z: 20}, 0, 0, false},
		{"at camera", r3.Vec{Z: 10}, 0, 0, false},
		{"far off to the side", r3.Vec{X: 500}, 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, y, _, ok := project(pose, tt.point, 80, 20)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			switch {
			case tt.wantX >= 0 && x != tt.wantX:
				t.Errorf("x = %d, want %d", x, tt.wantX)
			case tt.wantX < 0 && x <= 40:
				t.Errorf("x = %d, want right of center", x)
			}
			switch {
			case tt.wantY >= 0 && y != tt.wantY:
				t.Errorf("y = %d, want %d", y, tt.wantY)
			case tt.wantY < 0 && y >= 10:
				t.Errorf("y = %d, want above center", y)
			}
		})
	}
}

func TestProjectDepth(t *testing.T) {
	pose := camera.LookAt(r3.Vec{Z: 10}, r3.Vec{})
	_, _, depth, ok := project(pose, r3.Vec{Z: 4}, 80, 20)
	if !ok {
		t.Fatal("expected point in view")
	}
	if math.Abs(depth-6) > 1e-9 {
		t.Errorf("depth = %v, want 6", depth)
	}
}

func TestStarGlyph(t *testing.T) {
	tests := []struct {
		v    float64
		want rune
	}{
		{2.5, '✶'},
		{1.0, '∗'},
		{0.6, '•'},
		{0.3, '·'},
		{0.1, '˙'},
		{0.01, ' '},
	}

	for _, tt := range tests {
		if got := starGlyph(tt.v); got != tt.want {
			t.Errorf("starGlyph(%v) = %q, want %q", tt.v, got, tt.want)
		}
	}
}

func TestRenderProgressBar(t *testing.T) {
	tests := []struct {
		name       string
		progress   float64
		wantFilled int
	}{
		{"empty", 0, 0},
		{"half", 0.5, 10},
		{"full", 1, 20},
		{"over", 1.5, 20},
		{"negative", -0.2, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bar := renderProgressBar(tt.progress, 20)
			if !strings.HasPrefix(bar, "[") || !strings.HasSuffix(bar, "]") {
				t.Errorf("bar should have brackets, got %q", bar)
			}
			if n := strings.Count(bar, "█"); n != tt.wantFilled {
				t.Errorf("filled count = %d, want %d", n, tt.wantFilled)
			}
			if n := strings.Count(bar, "█") + strings.Count(bar, "░"); n != 20 {
				t.Errorf("bar width = %d, want 20", n)
			}
		})
	}
}

func TestGalaxyViewSpin(t *testing.T) {
	m := NewGalaxyViewModel(100, 0.1, r3.Vec{}, "Level 1")

	m = m.Advance().Advance()
	if math.Abs(m.Spin()-0.2) > 1e-12 {
		t.Errorf("Spin() = %v, want 0.2", m.Spin())
	}

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'p'}})
	m = m.Advance()
	if math.Abs(m.Spin()-0.2) > 1e-12 {
		t.Errorf("Spin() while paused = %v, want 0.2", m.Spin())
	}
}

func TestGalaxyViewWithoutBuffers(t *testing.T) {
	pose := camera.LookAt(r3.Vec{Y: 3, Z: 10}, r3.Vec{})
	m := NewGalaxyViewModel(100, 0, r3.Vec{X: 6.67, Y: 0.2, Z: 4}, "Level 1").
		SetSize(100, 32).
		UpdateData(state.Snapshot{}, scene.Frame{Pose: pose, Distance: pose.DistanceToOrigin()})

	view := m.View()
	if !strings.Contains(view, "generating galaxy...") {
		t.Error("expected generating placeholder")
	}
	if !strings.Contains(view, "waiting for first build") {
		t.Error("expected HUD to report no tier yet")
	}
}

func TestGradientColor(t *testing.T) {
	first := gradientColor(0, 0, 10, 1)
	last := gradientColor(9, 0, 10, 1)
	if first == last {
		t.Errorf("gradient endpoints both %s", first)
	}
	if len(first) != 7 || first[0] != '#' {
		t.Errorf("gradientColor() = %q, want #rrggbb", first)
	}
	// Past the end clamps to the last stop.
	if got := gradientColor(20, 0, 10, 1); got != last {
		t.Errorf("gradientColor(past end) = %s, want %s", got, last)
	}
}
