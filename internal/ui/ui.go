// Package ui provides the terminal user interface using Bubble Tea.
package ui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/s0oraj/roadmapgalaxy/internal/config"
	"github.com/s0oraj/roadmapgalaxy/internal/navstore"
	"github.com/s0oraj/roadmapgalaxy/internal/scene"
	"github.com/s0oraj/roadmapgalaxy/internal/state"
	"github.com/s0oraj/roadmapgalaxy/internal/version"
)

// ViewMode represents the current UI view.
type ViewMode int

const (
	ViewGalaxy ViewMode = iota
	ViewLevel
)

const (
	orbitStep = 0.08 // radians per arrow press
	polarStep = 0.05
	zoomStep  = 1.1

	// header (logo + tabs) and footer lines around the content
	chromeLines = 8
)

// Msg types for Bubble Tea
type (
	// AnimTickMsg advances the scene by one frame.
	AnimTickMsg time.Time

	// navLoadedMsg carries the persisted navigation state read at startup.
	navLoadedMsg struct {
		state navstore.State
		err   error
	}

	// navSavedMsg reports the result of a navigation store write.
	navSavedMsg struct {
		state navstore.State
		err   error
	}
)

// Deps are the collaborators the UI drives.
type Deps struct {
	Scene  *scene.Scene
	State  *state.Manager
	Store  navstore.Store
	UI     config.UIConfig
	Logger *slog.Logger
}

// Model is the root Bubble Tea model.
type Model struct {
	// Dependencies
	scene  *scene.Scene
	state  *state.Manager
	store  navstore.Store
	cfg    config.UIConfig
	logger *slog.Logger

	// UI state
	viewMode  ViewMode
	width     int
	height    int
	ready     bool
	statusMsg string
	animTick  int

	// Sub-models
	galaxy GalaxyViewModel
	level  LevelViewModel

	snapshot state.Snapshot
	frame    scene.Frame
}

// New creates a new root UI model.
func New(deps Deps) Model {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return Model{
		scene:    deps.Scene,
		state:    deps.State,
		store:    deps.Store,
		cfg:      deps.UI,
		logger:   logger.With("component", "ui"),
		viewMode: ViewGalaxy,
		galaxy:   NewGalaxyViewModel(deps.UI.MaxPoints, deps.UI.SpinPerFrame, deps.Scene.Target(), deps.UI.TargetLabel),
		level:    NewLevelViewModel(),
		frame:    scene.Frame{Pose: deps.Scene.Pose(), Distance: deps.Scene.Distance(), Phase: deps.Scene.Phase()},
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		animTickCmd(m.cfg.FrameInterval),
		loadNavCmd(m.store),
	)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}

		switch m.viewMode {
		case ViewGalaxy:
			cmds = append(cmds, m.updateGalaxyKeys(msg))
		case ViewLevel:
			if msg.String() == "esc" {
				cmds = append(cmds, m.returnToGalaxy())
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true

		contentHeight := msg.Height - chromeLines
		m.galaxy = m.galaxy.SetSize(msg.Width, contentHeight)
		m.level = m.level.SetSize(msg.Width, contentHeight)

	case AnimTickMsg:
		cmds = append(cmds, animTickCmd(m.cfg.FrameInterval))
		m.animTick++
		m.level = m.level.SetAnimTick(m.animTick)

		// The camera only runs while the galaxy is on screen.
		if m.viewMode == ViewGalaxy {
			m.frame = m.scene.Tick(time.Time(msg))
			m.galaxy = m.galaxy.Advance()
			if m.frame.Completed {
				cmds = append(cmds, m.enterLevel())
			}
		}
		m.snapshot = m.state.Snapshot()
		m.galaxy = m.galaxy.UpdateData(m.snapshot, m.frame)

	case navLoadedMsg:
		if msg.err != nil {
			m.logger.Warn("Navigation state unavailable", "operation", "load_nav", "error", msg.err)
			m.statusMsg = "navigation state unavailable: " + msg.err.Error()
			break
		}
		switch {
		case msg.state.CurrentScene == navstore.SceneRoadmap && msg.state.SelectedLevel > 0:
			m.viewMode = ViewLevel
			m.level = m.level.SetLevel(msg.state.SelectedLevel, m.levelLabel(msg.state.SelectedLevel))
		case msg.state.IsTransitioning:
			// A previous run quit mid-flight; flights are not resumed.
			cmds = append(cmds, saveNavCmd(m.store, navstore.DefaultState()))
		}

	case navSavedMsg:
		if msg.err != nil {
			m.logger.Warn("Navigation state not saved", "operation", "save_nav",
				"scene", msg.state.CurrentScene, "error", msg.err)
			m.statusMsg = "navigation state not saved: " + msg.err.Error()
		}
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) updateGalaxyKeys(msg tea.KeyMsg) tea.Cmd {
	var cmd tea.Cmd

	switch msg.String() {
	case "left":
		m.orbit(m.scene.Rotate(-orbitStep, 0))
	case "right":
		m.orbit(m.scene.Rotate(orbitStep, 0))
	case "up":
		m.orbit(m.scene.Rotate(0, -polarStep))
	case "down":
		m.orbit(m.scene.Rotate(0, polarStep))
	case "+", "=":
		m.orbit(m.scene.Zoom(1 / zoomStep))
	case "-", "_":
		m.orbit(m.scene.Zoom(zoomStep))

	case "enter", " ":
		if err := m.scene.SelectTarget(); err != nil {
			m.statusMsg = "flight already under way"
			return nil
		}
		m.statusMsg = ""
		cmd = saveNavCmd(m.store, navstore.State{
			CurrentScene:    navstore.SceneGalaxy,
			IsTransitioning: true,
		})

	case "r":
		m.scene.Reset()
		m.statusMsg = ""

	default:
		m.galaxy, cmd = m.galaxy.Update(msg)
	}

	return cmd
}

func (m *Model) orbit(accepted bool) {
	if accepted {
		m.statusMsg = ""
	} else {
		m.statusMsg = "camera controls locked during flight"
	}
}

// enterLevel switches to the roadmap screen after the flight lands.
func (m *Model) enterLevel() tea.Cmd {
	m.viewMode = ViewLevel
	m.level = m.level.SetLevel(m.cfg.TargetLevel, m.cfg.TargetLabel)
	m.statusMsg = ""
	m.state.AddEvent(state.Event{Type: state.EventSceneChanged, Detail: string(navstore.SceneRoadmap)})

	return saveNavCmd(m.store, navstore.State{
		CurrentScene:  navstore.SceneRoadmap,
		SelectedLevel: m.cfg.TargetLevel,
	})
}

// returnToGalaxy puts the camera back on its start orbit, ready for
// another flight.
func (m *Model) returnToGalaxy() tea.Cmd {
	m.scene.Reset()
	m.viewMode = ViewGalaxy
	m.level = m.level.SetLevel(0, "")
	m.statusMsg = ""
	m.state.AddEvent(state.Event{Type: state.EventSceneChanged, Detail: string(navstore.SceneGalaxy)})

	return saveNavCmd(m.store, navstore.DefaultState())
}

func (m Model) levelLabel(level int) string {
	if level == m.cfg.TargetLevel && m.cfg.TargetLabel != "" {
		return m.cfg.TargetLabel
	}
	return fmt.Sprintf("Level %d", level)
}

// ActiveView returns the view on screen.
func (m Model) ActiveView() ViewMode { return m.viewMode }

// StatusMessage returns the footer status line, if any.
func (m Model) StatusMessage() string { return m.statusMsg }

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	var content string
	switch m.viewMode {
	case ViewGalaxy:
		content = m.galaxy.View()
	case ViewLevel:
		content = m.level.View()
	}

	return m.renderFrame(content)
}

func (m Model) renderFrame(content string) string {
	header := m.renderHeader()
	footer := m.renderFooter()

	return header + "\n" + content + "\n" + footer
}

func (m Model) renderHeader() string {
	return m.renderLogo() + m.renderTabs()
}

func (m Model) renderLogo() string {
	logo := "  R O A D M A P  ·  G A L A X Y"

	var b strings.Builder
	b.WriteString("\n")

	runes := []rune(logo)
	for col, r := range runes {
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(gradientColor(col, 0, len(runes), 1))).Bold(true)
		b.WriteString(style.Render(string(r)))
	}
	b.WriteString("\n")

	muted := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))
	b.WriteString(muted.Render("  Procedural spiral galaxy · terminal flight"))
	b.WriteString("\n")
	b.WriteString(muted.Render(fmt.Sprintf("  v%s", version.Version)))
	b.WriteString("\n\n")

	return b.String()
}

// logoStops run blue -> purple -> magenta -> pink.
var logoStops = []colorful.Color{
	hexColor("#3B82F6"),
	hexColor("#8B5CF6"),
	hexColor("#D946EF"),
	hexColor("#EC4899"),
}

func hexColor(s string) colorful.Color {
	c, err := colorful.Hex(s)
	if err != nil {
		return colorful.Color{R: 1, G: 1, B: 1}
	}
	return c
}

// gradientColor returns a hex color for a position in the logo gradient.
// Horizontal position picks the hue; lower rows fade toward black.
func gradientColor(col, row, width, height int) string {
	x := 0.0
	if width > 1 {
		x = float64(col) / float64(width-1)
	}
	if x > 1 {
		x = 1
	}

	seg := x * float64(len(logoStops)-1)
	i := int(seg)
	if i >= len(logoStops)-1 {
		i = len(logoStops) - 2
	}
	c := logoStops[i].BlendLuv(logoStops[i+1], seg-float64(i))

	if height > 1 {
		c = c.BlendRgb(colorful.Color{}, float64(row)/float64(height)*0.5)
	}
	return c.Clamped().Hex()
}

func (m Model) renderTabs() string {
	tabs := []string{"Galaxy", m.levelTab()}
	activeStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#9D4EDD")).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))

	var parts []string
	for i, tab := range tabs {
		if ViewMode(i) == m.viewMode {
			parts = append(parts, activeStyle.Render("▶ "+tab))
		} else {
			parts = append(parts, dimStyle.Render("  "+tab))
		}
	}
	return "  " + strings.Join(parts, "  ")
}

func (m Model) levelTab() string {
	if m.level.Level() > 0 {
		return m.levelLabel(m.level.Level())
	}
	return "Roadmap"
}

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

func (m Model) renderFooter() string {
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))
	errorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#E84A27"))
	accentStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#7B2CBF"))

	spinner := spinnerFrames[(m.animTick/3)%len(spinnerFrames)]

	var status string
	switch {
	case m.snapshot.LastError != nil && m.snapshot.Buffers == nil:
		status = errorStyle.Render("ERROR: " + m.snapshot.LastError.Error())
	case m.snapshot.Buffers == nil:
		status = accentStyle.Render(spinner) + " " + m.renderShimmerText("Generating galaxy...")
	default:
		status = accentStyle.Render(spinner) + dimStyle.Render(fmt.Sprintf(" %d particles", m.snapshot.Buffers.Count))
		if m.snapshot.RegenDuration > 0 {
			status += dimStyle.Render(" (" + m.snapshot.RegenDuration.Round(time.Millisecond).String() + ")")
		}
	}

	var help string
	switch m.viewMode {
	case ViewLevel:
		help = dimStyle.Render("esc: back to galaxy | q: quit")
	default:
		help = dimStyle.Render("arrows: orbit | +/-: zoom | enter: fly to target | r: reset | l: label | p: spin | q: quit")
	}

	footer := "  " + status + "  " + dimStyle.Render("|") + "  " + help

	if m.statusMsg != "" {
		footer += "\n  " + dimStyle.Render(m.statusMsg)
	}

	return footer
}

// renderShimmerText renders text with a subtle moving shine effect.
func (m Model) renderShimmerText(text string) string {
	runes := []rune(text)
	textLen := len(runes)
	if textLen == 0 {
		return ""
	}

	pos := (m.animTick / 2) % (textLen + 8)

	var result strings.Builder
	for i, r := range runes {
		dist := i - pos + 4
		if dist < 0 {
			dist = -dist
		}

		var hex string
		switch {
		case dist <= 1:
			hex = "#B4A0DC"
		case dist <= 3:
			hex = "#8C78B4"
		case dist <= 5:
			hex = "#6E5A96"
		default:
			hex = "#504678"
		}

		style := lipgloss.NewStyle().Foreground(lipgloss.Color(hex))
		result.WriteString(style.Render(string(r)))
	}

	return result.String()
}

func animTickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return AnimTickMsg(t)
	})
}

func loadNavCmd(store navstore.Store) tea.Cmd {
	if store == nil {
		return nil
	}
	return func() tea.Msg {
		st, err := store.Load(context.Background())
		return navLoadedMsg{state: st, err: err}
	}
}

func saveNavCmd(store navstore.Store, st navstore.State) tea.Cmd {
	if store == nil {
		return nil
	}
	return func() tea.Msg {
		return navSavedMsg{state: st, err: store.Save(context.Background(), st)}
	}
}
