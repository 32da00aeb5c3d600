package dashboard

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/skyrmion/antop/internal/store"
)

// Dashboard color palette - neon synthwave
const (
	// Background colors
	ColorDarkBg    = lipgloss.Color("#0A0A0F") // Deep void
	ColorSurfaceBg = lipgloss.Color("#12121A") // Dark surface
	ColorBorder    = lipgloss.Color("#2A2A4A") // Glass border (purple tint)

	// Semantic colors for metrics
	ColorHealthy  = lipgloss.Color("#39FF14") // Neon green
	ColorWarning  = lipgloss.Color("#FFAA00") // Electric amber
	ColorCritical = lipgloss.Color("#FF0055") // Hot red-pink

	// Text colors
	ColorTextPrimary   = lipgloss.Color("#FFFFFF") // Pure white
	ColorTextSecondary = lipgloss.Color("#B4B4D0") // Lavender gray
	ColorTextMuted     = lipgloss.Color("#6B6B8D") // Purple-gray

	// Accent colors
	ColorAccent    = lipgloss.Color("#FF2E97") // Neon pink
	ColorAccentDim = lipgloss.Color("#BF40FF") // Neon purple

	// Traffic direction colors, shared between the summary rows, the
	// table sparklines, and the detail charts.
	ColorRx = lipgloss.Color("#00FFFF") // Neon cyan
	ColorTx = ColorAccent
)

// Thresholds for metric severity levels
const (
	WarningThreshold  = 70.0
	CriticalThreshold = 90.0
)

// Base styles for the dashboard
var (
	HeaderStyle = lipgloss.NewStyle().
			Foreground(ColorTextPrimary).
			Background(ColorSurfaceBg).
			Bold(true).
			Padding(0, 1)

	FooterStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted).
			Padding(0, 1)

	TableHeaderStyle = lipgloss.NewStyle().
				Foreground(ColorAccentDim).
				Bold(true)

	// Text styles
	NodeNameStyle = lipgloss.NewStyle().
			Foreground(ColorTextPrimary).
			Bold(true)

	LabelStyle = lipgloss.NewStyle().
			Foreground(ColorTextSecondary)

	ValueStyle = lipgloss.NewStyle().
			Foreground(ColorTextPrimary)

	SelectedMarkerStyle = lipgloss.NewStyle().
				Foreground(ColorAccent).
				Bold(true)

	RxStyle = lipgloss.NewStyle().Foreground(ColorRx)
	TxStyle = lipgloss.NewStyle().Foreground(ColorTx)

	// Status indicator styles
	StatusDiscoveredStyle  = lipgloss.NewStyle().Foreground(ColorTextSecondary)
	StatusRunningStyle     = lipgloss.NewStyle().Foreground(ColorHealthy)
	StatusUnreachableStyle = lipgloss.NewStyle().Foreground(ColorWarning)
	StatusErrorStyle       = lipgloss.NewStyle().Foreground(ColorCritical)
)

// Status indicator characters
const (
	GlyphDiscovered  = "◐" // Half-filled: found on disk, not yet polled
	GlyphRunning     = "◉" // Filled target: answering polls
	GlyphUnreachable = "◌" // Dashed circle: endpoint not responding
	GlyphError       = "✗" // Bad response or no usable address
)

// StatusGlyph returns the indicator character for a node status.
func StatusGlyph(s store.Status) string {
	switch s {
	case store.StatusDiscovered:
		return GlyphDiscovered
	case store.StatusRunning:
		return GlyphRunning
	case store.StatusUnreachable:
		return GlyphUnreachable
	case store.StatusError:
		return GlyphError
	default:
		return GlyphDiscovered
	}
}

// StatusStyle returns the indicator style for a node status.
func StatusStyle(s store.Status) lipgloss.Style {
	switch s {
	case store.StatusRunning:
		return StatusRunningStyle
	case store.StatusUnreachable:
		return StatusUnreachableStyle
	case store.StatusError:
		return StatusErrorStyle
	default:
		return StatusDiscoveredStyle
	}
}

// MetricColor returns the appropriate color for a percentage-based metric.
// Uses threshold-based coloring: green < 70%, yellow 70-90%, red > 90%.
func MetricColor(percent float64) lipgloss.Color {
	return MetricColorWithThresholds(percent, int(WarningThreshold), int(CriticalThreshold))
}

// MetricColorWithThresholds returns the appropriate color for a percentage-based
// metric using the provided warning and critical threshold values.
func MetricColorWithThresholds(percent float64, warning, critical int) lipgloss.Color {
	switch {
	case percent >= float64(critical):
		return ColorCritical
	case percent >= float64(warning):
		return ColorWarning
	default:
		return ColorHealthy
	}
}

// MetricStyle returns a style with the appropriate foreground color for the metric.
func MetricStyle(percent float64) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(MetricColor(percent))
}

// ProgressBar renders a progress bar with the given width and percentage.
// Uses bracketless style with threshold-based coloring.
func ProgressBar(width int, percent float64) string {
	if width < 1 {
		width = 1
	}

	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}

	filled := int(percent / 100.0 * float64(width))
	if filled > width {
		filled = width
	}

	bar := ""
	for i := 0; i < width; i++ {
		if i < filled {
			bar += "▰"
		} else {
			bar += "▱"
		}
	}

	barStyle := lipgloss.NewStyle().Foreground(MetricColor(percent))

	return barStyle.Render(bar)
}
