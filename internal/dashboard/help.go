package dashboard

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// HelpBinding describes one key binding shown in the help overlay.
type HelpBinding struct {
	Key  string
	Desc string
}

var helpBindings = []HelpBinding{
	{"q / ctrl+c", "Quit"},
	{"r", "Refresh now"},
	{"/", "Filter nodes by name"},
	{"i", "Cycle poll interval"},
	{"s", "Cycle sort order"},
	{"up / k", "Previous node"},
	{"down / j", "Next node"},
	{"home / end", "First / last node"},
	{"enter", "Node detail"},
	{"esc", "Back / clear filter"},
	{"?", "Toggle this help"},
}

var (
	helpBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorAccentDim).
			Background(ColorSurfaceBg).
			Padding(1, 3)

	helpTitleStyle = lipgloss.NewStyle().
			Foreground(ColorAccent).
			Bold(true).
			MarginBottom(1)

	helpKeyStyle = lipgloss.NewStyle().
			Foreground(ColorAccentDim).
			Bold(true).
			Width(14)

	helpDescStyle = lipgloss.NewStyle().
			Foreground(ColorTextSecondary)
)

// renderHelpOverlay centers the key binding reference over the current
// view.
func (m Model) renderHelpOverlay(_ string) string {
	var b strings.Builder
	b.WriteString(helpTitleStyle.Render("Keys"))
	b.WriteString("\n")
	for i, binding := range helpBindings {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(helpKeyStyle.Render(binding.Key))
		b.WriteString(helpDescStyle.Render(binding.Desc))
	}

	box := helpBoxStyle.Render(b.String())

	width := m.width
	height := m.height
	if width <= 0 || height <= 0 {
		return box
	}

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box,
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(ColorDarkBg),
	)
}
