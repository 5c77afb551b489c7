package ui

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/s0oraj/roadmapgalaxy/internal/camera"
	"github.com/s0oraj/roadmapgalaxy/internal/scene"
	"github.com/s0oraj/roadmapgalaxy/internal/state"
)

const (
	fieldOfView = 75 * math.Pi / 180
	nearPlane   = 0.05
	aspectY     = 0.5 // terminal cells are roughly twice as tall as wide

	galaxyHUDLines = 3

	// nearTarget is the camera-to-target distance under which the target
	// star is highlighted.
	nearTarget = 3.0
)

type cellKind int

const (
	cellEmpty cellKind = iota
	cellStar
	cellTarget
	cellLabel
)

type cell struct {
	kind      cellKind
	glyph     rune
	color     colorful.Color
	intensity float64
	hits      int
}

// GalaxyViewModel draws the particle buffers as a projected star field.
type GalaxyViewModel struct {
	width  int
	height int

	maxPoints    int
	spinPerFrame float64
	target       r3.Vec
	targetLabel  string

	spin      float64
	paused    bool
	showLabel bool

	snapshot state.Snapshot
	frame    scene.Frame
}

// NewGalaxyViewModel creates the galaxy view. At most maxPoints particles
// are projected per frame.
func NewGalaxyViewModel(maxPoints int, spinPerFrame float64, target r3.Vec, label string) GalaxyViewModel {
	return GalaxyViewModel{
		maxPoints:    maxPoints,
		spinPerFrame: spinPerFrame,
		target:       target,
		targetLabel:  label,
		showLabel:    true,
	}
}

// SetSize updates the view dimensions.
func (m GalaxyViewModel) SetSize(width, height int) GalaxyViewModel {
	m.width = width
	m.height = height
	return m
}

// UpdateData stores the latest state snapshot and camera frame.
func (m GalaxyViewModel) UpdateData(snap state.Snapshot, frame scene.Frame) GalaxyViewModel {
	m.snapshot = snap
	m.frame = frame
	return m
}

// Advance steps the galaxy spin by one frame. The buffers are untouched;
// the rotation is applied at projection time.
func (m GalaxyViewModel) Advance() GalaxyViewModel {
	if !m.paused {
		m.spin = math.Mod(m.spin+m.spinPerFrame, 2*math.Pi)
	}
	return m
}

// Spin returns the accumulated rotation about Y in radians.
func (m GalaxyViewModel) Spin() float64 { return m.spin }

// ShowLabel reports whether the target label is drawn.
func (m GalaxyViewModel) ShowLabel() bool { return m.showLabel }

// Update handles view-local keys.
func (m GalaxyViewModel) Update(msg tea.Msg) (GalaxyViewModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "l":
			m.showLabel = !m.showLabel
		case "p":
			m.paused = !m.paused
		}
	}
	return m, nil
}

// View renders the canvas with the HUD below it.
func (m GalaxyViewModel) View() string {
	canvasHeight := m.height - galaxyHUDLines - 1
	if m.width < 40 || canvasHeight < 8 {
		return "Terminal too small for galaxy view"
	}

	grid := m.buildCanvas(m.width, canvasHeight)
	canvas := renderGrid(grid)
	hud := m.renderHUD()

	return lipgloss.JoinVertical(lipgloss.Left, canvas, hud)
}

// project maps a world point to a canvas cell. ok is false for points
// behind the near plane or outside the canvas.
func project(pose camera.Pose, p r3.Vec, width, height int) (x, y int, depth float64, ok bool) {
	v := pose.ToView(p)
	if v.Z <= nearPlane {
		return 0, 0, 0, false
	}

	// Vertical field of view; a column is about half as wide as a row is tall.
	focal := float64(height) / 2 / math.Tan(fieldOfView/2)
	fx := float64(width)/2 + v.X/v.Z*focal/aspectY
	fy := float64(height)/2 - v.Y/v.Z*focal

	x, y = int(math.Floor(fx)), int(math.Floor(fy))
	if x < 0 || x >= width || y < 0 || y >= height {
		return 0, 0, 0, false
	}
	return x, y, v.Z, true
}

func (m GalaxyViewModel) buildCanvas(width, height int) [][]cell {
	grid := make([][]cell, height)
	for i := range grid {
		grid[i] = make([]cell, width)
	}

	pose := m.frame.Pose
	if !pose.Valid() {
		return grid
	}

	b := m.snapshot.Buffers
	if b == nil || !b.Consistent() {
		writeText(grid, width/2-10, height/2, "generating galaxy...")
		return grid
	}

	stride := 1
	if m.maxPoints > 0 && b.Count > m.maxPoints {
		stride = (b.Count + m.maxPoints - 1) / m.maxPoints
	}

	for i := 0; i < b.Count; i += stride {
		px, py, pz := b.Position(i)
		world := camera.RotateY(r3.Vec{X: float64(px), Y: float64(py), Z: float64(pz)}, m.spin)

		x, y, depth, ok := project(pose, world, width, height)
		if !ok {
			continue
		}

		r, g, bl := b.Color(i)
		c := colorful.Color{R: float64(r), G: float64(g), B: float64(bl)}
		intensity := brightness(c) / (1 + depth*0.03)

		dst := &grid[y][x]
		dst.kind = cellStar
		dst.hits++
		if intensity > dst.intensity {
			dst.intensity = intensity
			dst.color = c
		}
	}

	for y := range grid {
		for x := range grid[y] {
			c := &grid[y][x]
			if c.kind != cellStar {
				continue
			}
			c.glyph = starGlyph(c.intensity * (1 + 0.25*math.Log2(float64(c.hits))))
			if c.glyph == ' ' {
				c.kind = cellEmpty
			}
		}
	}

	m.drawTarget(grid, pose, width, height)
	return grid
}

func (m GalaxyViewModel) drawTarget(grid [][]cell, pose camera.Pose, width, height int) {
	x, y, _, ok := project(pose, m.target, width, height)
	if !ok {
		return
	}

	grid[y][x] = cell{kind: cellTarget, glyph: '✦', intensity: 1}
	if camera.Distance(pose.Position, m.target) < nearTarget {
		grid[y][x].intensity = 2
	}

	if !m.showLabel || m.targetLabel == "" {
		return
	}
	for i, r := range []rune(m.targetLabel) {
		lx := x + 2 + i
		if lx >= width {
			break
		}
		grid[y][lx] = cell{kind: cellLabel, glyph: r}
	}
}

func writeText(grid [][]cell, x, y int, text string) {
	if y < 0 || y >= len(grid) {
		return
	}
	if x < 0 {
		x = 0
	}
	for i, r := range []rune(text) {
		if x+i >= len(grid[y]) {
			return
		}
		grid[y][x+i] = cell{kind: cellLabel, glyph: r}
	}
}

// brightness is the largest channel; bulge colors may exceed 1.
func brightness(c colorful.Color) float64 {
	return math.Max(c.R, math.Max(c.G, c.B))
}

// starGlyph picks a glyph by intensity.
func starGlyph(v float64) rune {
	switch {
	case v >= 1.4:
		return '✶'
	case v >= 0.9:
		return '∗'
	case v >= 0.55:
		return '•'
	case v >= 0.25:
		return '·'
	case v >= 0.08:
		return '˙'
	default:
		return ' '
	}
}

func renderGrid(grid [][]cell) string {
	var b strings.Builder

	targetStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#FFD166"))
	focusStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("229")).Bold(true)
	labelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("249"))

	styles := make(map[string]lipgloss.Style)

	for y, row := range grid {
		for _, c := range row {
			switch c.kind {
			case cellEmpty:
				b.WriteRune(' ')
			case cellTarget:
				if c.intensity > 1 {
					b.WriteString(focusStyle.Render(string(c.glyph)))
				} else {
					b.WriteString(targetStyle.Render(string(c.glyph)))
				}
			case cellLabel:
				b.WriteString(labelStyle.Render(string(c.glyph)))
			default:
				hex := c.color.Clamped().Hex()
				style, ok := styles[hex]
				if !ok {
					style = lipgloss.NewStyle().Foreground(lipgloss.Color(hex))
					styles[hex] = style
				}
				b.WriteString(style.Render(string(c.glyph)))
			}
		}
		if y < len(grid)-1 {
			b.WriteRune('\n')
		}
	}

	return b.String()
}

func (m GalaxyViewModel) renderHUD() string {
	var b strings.Builder

	headerStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	labelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	valueStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#E84A27"))

	snap := m.snapshot
	tier := snap.Tier()

	// Line 1: target + camera
	b.WriteString(headerStyle.Render("✦ " + m.targetLabel))
	b.WriteString("  ")
	b.WriteString(labelStyle.Render("Distance: "))
	b.WriteString(valueStyle.Render(fmt.Sprintf("%.2f", m.frame.Distance)))
	b.WriteString("  ")
	b.WriteString(labelStyle.Render("To target: "))
	b.WriteString(valueStyle.Render(fmt.Sprintf("%.2f", camera.Distance(m.frame.Pose.Position, m.target))))
	b.WriteString("  ")
	b.WriteString(labelStyle.Render("Flight: "))
	b.WriteString(valueStyle.Render(m.frame.Phase.String()))
	b.WriteString(" ")
	b.WriteString(renderProgressBar(m.frame.Progress, 20))
	b.WriteString("\n")

	// Line 2: LOD + regeneration
	if tier.ParticleCount > 0 {
		b.WriteString(labelStyle.Render("LOD: "))
		b.WriteString(valueStyle.Render(fmt.Sprintf("≤%g → %d particles", tier.Distance, tier.ParticleCount)))
		b.WriteString("  ")
		b.WriteString(labelStyle.Render("Gen: "))
		b.WriteString(valueStyle.Render(fmt.Sprintf("#%d", snap.Generation)))
		b.WriteString(dimStyle.Render(fmt.Sprintf(" (%s, %d builds)", snap.RegenDuration.Round(time.Millisecond), snap.RegenCount)))
	} else {
		b.WriteString(dimStyle.Render("LOD: waiting for first build"))
	}
	if snap.LastError != nil {
		b.WriteString("  ")
		b.WriteString(errStyle.Render("last build failed: " + snap.LastError.Error()))
	}
	b.WriteString("\n")

	// Line 3: most recent event + view toggles
	if len(snap.Events) > 0 {
		e := snap.Events[len(snap.Events)-1]
		b.WriteString(dimStyle.Render(fmt.Sprintf("%s %s", e.Timestamp.Format("15:04:05"), e.Type)))
		if e.Detail != "" {
			b.WriteString(dimStyle.Render(": " + e.Detail))
		}
		b.WriteString("  ")
	}
	spin := "on"
	if m.paused {
		spin = "off"
	}
	label := "off"
	if m.showLabel {
		label = "on"
	}
	b.WriteString(dimStyle.Render("Spin:"))
	b.WriteString(valueStyle.Render(spin))
	b.WriteString("  ")
	b.WriteString(dimStyle.Render("Label:"))
	b.WriteString(valueStyle.Render(label))

	return b.String()
}

func renderProgressBar(progress float64, width int) string {
	filled := int(progress * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}

	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	style := lipgloss.NewStyle().Foreground(lipgloss.Color("#9D4EDD"))
	return "[" + style.Render(bar) + "]"
}
