package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// LevelViewModel is the roadmap screen shown after the flight lands.
type LevelViewModel struct {
	width  int
	height int

	level    int
	label    string
	animTick int
}

// NewLevelViewModel creates an empty level view.
func NewLevelViewModel() LevelViewModel {
	return LevelViewModel{}
}

// SetSize updates the view dimensions.
func (m LevelViewModel) SetSize(width, height int) LevelViewModel {
	m.width = width
	m.height = height
	return m
}

// SetLevel selects the level being shown.
func (m LevelViewModel) SetLevel(level int, label string) LevelViewModel {
	m.level = level
	m.label = label
	return m
}

// SetAnimTick updates the animation counter for the title glow.
func (m LevelViewModel) SetAnimTick(tick int) LevelViewModel {
	m.animTick = tick
	return m
}

// Level returns the selected level, 0 when none.
func (m LevelViewModel) Level() int { return m.level }

// View renders the level card centered in the content area.
func (m LevelViewModel) View() string {
	if m.width < 30 || m.height < 8 {
		return "Terminal too small for level view"
	}

	label := m.label
	if label == "" {
		label = fmt.Sprintf("Level %d", m.level)
	}

	titleStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(glowColor(m.animTick))).Bold(true)
	textStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))

	var b strings.Builder
	b.WriteString(titleStyle.Render("✦ " + label))
	b.WriteString("\n\n")
	b.WriteString(textStyle.Render("Roadmap"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("level %d selected", m.level)))
	b.WriteString("\n\n")
	b.WriteString(dimStyle.Render("esc: back to galaxy"))

	card := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#7B2CBF")).
		Padding(1, 4).
		Render(b.String())

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, card)
}

// glowColor pulses between two purples.
func glowColor(tick int) string {
	phase := tick % 40
	if phase > 20 {
		phase = 40 - phase
	}
	return gradientColor(phase, 0, 20, 1)
}
