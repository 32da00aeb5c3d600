package dashboard

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/skyrmion/antop/internal/format"
	"github.com/skyrmion/antop/internal/metrics"
	"github.com/skyrmion/antop/internal/store"
)

var (
	detailContainerStyle = lipgloss.NewStyle().Padding(0, 2)

	detailSectionStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(ColorBorder).
				Padding(0, 1).
				MarginBottom(1)

	detailTitleStyle = lipgloss.NewStyle().
				Foreground(ColorAccentDim).
				Bold(true)
)

// renderDetailView renders the single-node screen: a fixed header and
// footer around a scrollable section list.
func (m Model) renderDetailView() string {
	n, ok := m.SelectedNode()
	if !ok {
		return LabelStyle.Render("\n  No node selected. Press esc to go back.")
	}

	header := m.renderDetailHeader(n)

	var body string
	if m.viewportReady {
		body = m.detailViewport.View()
	} else {
		body = m.detailContent(n)
	}

	footer := FooterStyle.Render("esc back | j/k scroll | r refresh | q quit")
	return header + "\n" + body + "\n" + footer
}

func (m Model) renderDetailHeader(n store.NodeView) string {
	name := lipgloss.NewStyle().Foreground(ColorAccent).Bold(true).Render(n.ID)

	statusText := n.Status.String()
	if n.Status == store.StatusError && n.Reason != "" {
		statusText += " (" + n.Reason + ")"
	}
	status := StatusStyle(n.Status).Render(StatusGlyph(n.Status) + " " + statusText)

	line := " " + name + "  " + status
	if n.Addr != "" {
		line += LabelStyle.Render("  " + n.Addr)
	}
	return line + "\n"
}

// updateDetailContent refreshes the viewport content for the selected
// node. Called whenever new data lands while the detail view is open.
func (m *Model) updateDetailContent() {
	n, ok := m.SelectedNode()
	if !ok {
		return
	}
	if m.viewportReady {
		m.detailViewport.SetContent(m.detailContent(n))
	}
}

// detailContent renders the metric sections for one node.
func (m Model) detailContent(n store.NodeView) string {
	width := m.width - 6
	if width < 40 {
		width = 40
	}

	sections := []string{m.renderNodeSection(n, width)}
	if n.Latest == nil {
		sections = append(sections, detailSectionStyle.Width(width).Render(
			LabelStyle.Render("Waiting for the first successful poll...")))
	} else {
		sections = append(sections,
			m.renderResourceSection(n, width),
			m.renderNetworkSection(n, width),
			m.renderBandwidthSection(n, width),
			m.renderStoreSection(n, width),
			m.renderErrorSection(n, width),
		)
	}
	return detailContainerStyle.Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

func (m Model) renderNodeSection(n store.NodeView, width int) string {
	addr := n.Addr
	if addr == "" {
		addr = "not announced yet"
	}

	lines := []string{
		detailRow("Address", addr),
		detailRow("Directory", n.Root),
		detailRow("Uptime", format.Uptime(n.Latest.Uptime())),
		detailRow("Failures", strconv.Itoa(n.ConsecutiveFailures)),
	}
	if n.LastError != "" {
		lines = append(lines, LabelStyle.Render(padRight("Last error", 12))+
			StatusErrorStyle.Render(n.LastError))
	}
	return detailSection("Node", width, lines...)
}

func (m Model) renderResourceSection(n store.NodeView, width int) string {
	memLine := detailRow("Memory", format.MegaBytes(n.Latest.MemoryMB()))

	cpu, ok := n.Latest.CPUPercent()
	cpuLine := LabelStyle.Render(padRight("CPU", 12))
	if ok {
		cpuLine += ProgressBar(20, cpu) + " " + MetricStyle(cpu).Render(format.Percent(cpu, true))
	} else {
		cpuLine += ValueStyle.Render(format.Missing)
	}
	return detailSection("Resources", width, memLine, cpuLine)
}

func (m Model) renderNetworkSection(n store.NodeView, width int) string {
	return detailSection("Network", width,
		detailRow("Peers", format.Count(n.Latest.Peers())),
		detailRow("Routing", format.Count(n.Latest.RoutingPeers())),
		detailRow("Est. size", netEstimate(n.Latest.NetworkSize())),
	)
}

func (m Model) renderBandwidthSection(n store.NodeView, width int) string {
	inTotal, inOK := n.Latest.BandwidthIn()
	outTotal, outOK := n.Latest.BandwidthOut()

	chartWidth := width - 8
	if chartWidth < 16 {
		chartWidth = 16
	}

	lines := []string{
		LabelStyle.Render(padRight("In", 12)) +
			ValueStyle.Render(format.Bytes(inTotal, inOK)) + "  " +
			RxStyle.Render(format.Speed(n.RxRate, true)),
	}
	if len(n.RxHistory) > 1 {
		lines = append(lines, BrailleSparkline(n.RxHistory, chartWidth, 2, ColorRx))
	}
	lines = append(lines,
		LabelStyle.Render(padRight("Out", 12))+
			ValueStyle.Render(format.Bytes(outTotal, outOK))+"  "+
			TxStyle.Render(format.Speed(n.TxRate, true)))
	if len(n.TxHistory) > 1 {
		lines = append(lines, BrailleSparkline(n.TxHistory, chartWidth, 2, ColorTx))
	}
	lines = append(lines, LabelStyle.Render(fmt.Sprintf("last %d samples", len(n.RxHistory))))

	return detailSection("Bandwidth", width, lines...)
}

func (m Model) renderStoreSection(n store.NodeView, width int) string {
	return detailSection("Store", width,
		detailRow("Records", format.Count(n.Latest.Records())),
		detailRow("Rewards", format.Attos(n.Latest.Rewards())),
	)
}

func (m Model) renderErrorSection(n store.NodeView, width int) string {
	row := func(label, metric string) string {
		v, ok := n.Latest.Get(metric)
		out := format.Count(v, ok)
		if ok && v > 0 {
			return LabelStyle.Render(padRight(label, 12)) + StatusErrorStyle.Render(out)
		}
		return detailRow(label, out)
	}

	return detailSection("Errors", width,
		row("Put", metrics.MetricPutErrors),
		row("Conn in", metrics.MetricConnErrorsIn),
		row("Conn out", metrics.MetricConnErrorsOut),
		row("Kad", metrics.MetricKadErrors),
		detailRow("Total", format.Count(n.Latest.TotalErrors())),
	)
}

// detailSection wraps titled lines in a bordered box.
func detailSection(title string, width int, lines ...string) string {
	content := detailTitleStyle.Render(title) + "\n" + strings.Join(lines, "\n")
	return detailSectionStyle.Width(width).Render(content)
}

// detailRow renders an aligned label/value pair.
func detailRow(label, value string) string {
	return LabelStyle.Render(padRight(label, 12)) + ValueStyle.Render(value)
}
