package dashboard

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/skyrmion/antop/internal/format"
	"github.com/skyrmion/antop/internal/store"
)

// Table column widths. Rate columns grow by the sparkline width in the
// standard and wide layouts.
const (
	colNode    = 14
	colUptime  = 12
	colMem     = 8
	colCPU     = 7
	colPeers   = 5
	colRouting = 7
	colRecs    = 7
	colRwds    = 8
	colErr     = 5
	colRate    = 9
	colStatus  = 13
)

// tableColumn couples a header title with the cell renderer for that
// column, so headers and cells cannot drift apart.
type tableColumn struct {
	title string
	width int
	left  bool
	cell  func(n store.NodeView) string
}

// columns assembles the column set for the current layout. Wider
// terminals get more columns and inline sparklines.
func (m Model) columns() []tableColumn {
	layout := m.LayoutMode()

	cols := []tableColumn{
		{title: "Node", width: colNode, left: true, cell: cellNode},
	}
	if layout >= LayoutCompact {
		cols = append(cols, tableColumn{title: "Uptime", width: colUptime, cell: cellUptime})
	}
	if layout >= LayoutStandard {
		cols = append(cols, tableColumn{title: "Mem", width: colMem, cell: cellMem})
	}
	cols = append(cols, tableColumn{title: "CPU", width: colCPU, cell: cellCPU})
	if layout >= LayoutCompact {
		cols = append(cols, tableColumn{title: "Peers", width: colPeers, cell: cellPeers})
	}
	if layout >= LayoutWide {
		cols = append(cols, tableColumn{title: "Routing", width: colRouting, cell: cellRouting})
	}
	if layout >= LayoutStandard {
		cols = append(cols, tableColumn{title: "Recs", width: colRecs, cell: cellRecords})
	}
	if layout >= LayoutWide {
		cols = append(cols, tableColumn{title: "Rwds", width: colRwds, cell: cellRewards})
	}
	if layout >= LayoutStandard {
		cols = append(cols, tableColumn{title: "Err", width: colErr, cell: cellErrors})
	}

	sparkWidth := 0
	switch layout {
	case LayoutStandard:
		sparkWidth = 8
	case LayoutWide:
		sparkWidth = 14
	}
	cols = append(cols,
		tableColumn{title: "Rx", width: rateColWidth(sparkWidth), cell: func(n store.NodeView) string {
			return rateCell(n.RxHistory, n.RxRate, n.Latest != nil, sparkWidth, ColorRx, RxStyle)
		}},
		tableColumn{title: "Tx", width: rateColWidth(sparkWidth), cell: func(n store.NodeView) string {
			return rateCell(n.TxHistory, n.TxRate, n.Latest != nil, sparkWidth, ColorTx, TxStyle)
		}},
		tableColumn{title: "Status", width: colStatus, left: true, cell: cellStatus},
	)
	return cols
}

func rateColWidth(sparkWidth int) int {
	if sparkWidth <= 0 {
		return colRate
	}
	return sparkWidth + 1 + colRate
}

func cellNode(n store.NodeView) string {
	return truncateWithEllipsis(n.ID, colNode)
}

func cellUptime(n store.NodeView) string {
	return format.Uptime(n.Latest.Uptime())
}

func cellMem(n store.NodeView) string {
	return format.MegaBytes(n.Latest.MemoryMB())
}

func cellCPU(n store.NodeView) string {
	v, ok := n.Latest.CPUPercent()
	out := format.Percent(v, ok)
	if !ok {
		return out
	}
	return MetricStyle(v).Render(out)
}

func cellPeers(n store.NodeView) string {
	return format.Count(n.Latest.Peers())
}

func cellRouting(n store.NodeView) string {
	return format.Count(n.Latest.RoutingPeers())
}

func cellRecords(n store.NodeView) string {
	return format.Count(n.Latest.Records())
}

func cellRewards(n store.NodeView) string {
	return format.Attos(n.Latest.Rewards())
}

func cellErrors(n store.NodeView) string {
	v, ok := n.Latest.TotalErrors()
	out := format.Count(v, ok)
	if ok && v > 0 {
		return StatusErrorStyle.Render(out)
	}
	return out
}

func cellStatus(n store.NodeView) string {
	return StatusStyle(n.Status).Render(StatusGlyph(n.Status) + " " + n.Status.String())
}

// rateCell renders a traffic rate, optionally prefixed with a sparkline
// of its recent history.
func rateCell(history []float64, rate float64, hasData bool, sparkWidth int, color lipgloss.Color, style lipgloss.Style) string {
	out := style.Render(format.Speed(rate, hasData))
	if sparkWidth <= 0 {
		return out
	}
	spark := StyledSparkline(history, sparkWidth, color)
	if spark == "" {
		spark = strings.Repeat(" ", sparkWidth)
	}
	return spark + " " + padLeft(out, colRate)
}

// renderFleet renders the main fleet screen.
func (m Model) renderFleet() string {
	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderTitleBar(),
		m.renderSummary(),
		m.renderTable(),
		m.renderFooter(),
	)
}

// renderTitleBar renders the top status line.
func (m Model) renderTitleBar() string {
	s := m.snapshot

	brand := lipgloss.NewStyle().Foreground(ColorAccent).Bold(true).Render("antop")

	parts := []string{
		fmt.Sprintf("%d nodes", s.Total()),
		StatusRunningStyle.Render(fmt.Sprintf("%d running", s.Running)),
	}
	if s.Unreachable > 0 {
		parts = append(parts, StatusUnreachableStyle.Render(fmt.Sprintf("%d unreachable", s.Unreachable)))
	}
	if s.Errored > 0 {
		parts = append(parts, StatusErrorStyle.Render(fmt.Sprintf("%d errored", s.Errored)))
	}
	parts = append(parts, "every "+formatInterval(m.interval))
	if secs := m.SecondsSincePoll(); secs < 0 {
		parts = append(parts, "waiting for first poll")
	} else {
		parts = append(parts, fmt.Sprintf("updated %ds ago", secs))
	}

	sep := LabelStyle.Render(" | ")
	return " " + brand + sep + strings.Join(parts, sep)
}

func formatInterval(d time.Duration) string {
	return strconv.Itoa(int(d.Seconds())) + "s"
}

// renderSummary renders the fleet-wide aggregate block under the title.
func (m Model) renderSummary() string {
	s := m.snapshot
	hasData := s.Running > 0

	if m.LayoutMode() == LayoutMinimal {
		in := RxStyle.Render("In " + format.Speed(s.RxRate, hasData))
		out := TxStyle.Render("Out " + format.Speed(s.TxRate, hasData))
		return " " + in + "  " + out
	}

	return lipgloss.JoinHorizontal(lipgloss.Top,
		" ", m.renderGauges(), "   ", m.renderTraffic(hasData), "   ", m.renderCounts(hasData),
	)
}

// renderGauges renders the CPU and storage gauges. The CPU bar shows the
// fleet average so it stays on a 0-100 scale however many nodes run; the
// label keeps the raw sum.
func (m Model) renderGauges() string {
	s := m.snapshot

	running := s.Running
	if running < 1 {
		running = 1
	}
	cpuLine := LabelStyle.Render(padRight("CPU", 6)) +
		GradientBar(14, s.CPUPercent/float64(running)) + " " +
		ValueStyle.Render(format.Percent(s.CPUPercent, s.Running > 0))

	var storePct float64
	if s.StorageAllocated > 0 {
		storePct = float64(s.StorageUsed) / float64(s.StorageAllocated) * 100
	}
	storeLine := LabelStyle.Render(padRight("Store", 6)) +
		GradientBar(14, storePct) + " " +
		ValueStyle.Render(format.Bytes(float64(s.StorageUsed), true)+" / "+format.Bytes(float64(s.StorageAllocated), true))

	return cpuLine + "\n" + storeLine
}

// renderTraffic renders the fleet In/Out rows with totals, history and
// current rates.
func (m Model) renderTraffic(hasData bool) string {
	s := m.snapshot

	sparkW := 0
	switch m.LayoutMode() {
	case LayoutStandard:
		sparkW = 12
	case LayoutWide:
		sparkW = 20
	}

	in := trafficLine("In", s.TotalIn, s.FleetRxHistory, s.RxRate, sparkW, ColorRx, RxStyle, hasData)
	out := trafficLine("Out", s.TotalOut, s.FleetTxHistory, s.TxRate, sparkW, ColorTx, TxStyle, hasData)
	return in + "\n" + out
}

func trafficLine(label string, total float64, history []float64, rate float64, sparkW int, color lipgloss.Color, style lipgloss.Style, hasData bool) string {
	line := LabelStyle.Render(padRight(label, 4)) +
		padLeft(ValueStyle.Render(format.Bytes(total, hasData)), 9)
	if sparkW > 0 {
		spark := StyledSparkline(history, sparkW, color)
		if spark == "" {
			spark = strings.Repeat(" ", sparkW)
		}
		line += " " + spark
	}
	return line + " " + padLeft(style.Render(format.Speed(rate, hasData)), colRate)
}

// renderCounts renders fleet record, peer, reward and network-size totals.
func (m Model) renderCounts(hasData bool) string {
	s := m.snapshot

	line1 := LabelStyle.Render("Recs ") +
		padLeft(ValueStyle.Render(format.Count(s.Records, hasData)), 8) +
		LabelStyle.Render("  Peers ") +
		ValueStyle.Render(format.Count(s.Peers, hasData))
	line2 := LabelStyle.Render("Rwds ") +
		padLeft(ValueStyle.Render(format.Attos(s.Rewards, hasData)), 8) +
		LabelStyle.Render("  Net ") +
		ValueStyle.Render(netEstimate(s.NetworkSize, hasData))
	return line1 + "\n" + line2
}

// netEstimate marks the network size as approximate; nodes report an
// estimate, and the fleet value is the largest one seen this poll.
func netEstimate(v float64, ok bool) string {
	if !ok {
		return format.Missing
	}
	return "~" + format.Count(v, true)
}

// renderTable renders the header row plus one row per visible node.
func (m Model) renderTable() string {
	cols := m.columns()

	var b strings.Builder
	b.WriteString("  ")
	headers := make([]string, len(cols))
	for i, c := range cols {
		headers[i] = padCell(TableHeaderStyle.Render(c.title), c.width, c.left)
	}
	b.WriteString(strings.Join(headers, " "))
	b.WriteString("\n")

	if len(m.rows) == 0 {
		if m.filter != "" {
			b.WriteString(LabelStyle.Render(fmt.Sprintf("  No nodes match filter %q", m.filter)))
		} else {
			b.WriteString(LabelStyle.Render("  No nodes discovered yet under " + m.cfg.Nodes.Path))
		}
		return b.String()
	}

	start, end := m.rowWindow()
	for i := start; i < end; i++ {
		if i > start {
			b.WriteString("\n")
		}
		if i == m.selected {
			b.WriteString(SelectedMarkerStyle.Render("▸") + " ")
		} else {
			b.WriteString("  ")
		}

		cells := make([]string, len(cols))
		for j, c := range cols {
			cells[j] = padCell(c.cell(m.rows[i]), c.width, c.left)
		}
		b.WriteString(strings.Join(cells, " "))
	}

	if hidden := len(m.rows) - (end - start); hidden > 0 {
		b.WriteString("\n")
		b.WriteString(LabelStyle.Render(fmt.Sprintf("  … %d more", hidden)))
	}
	return b.String()
}

// rowWindow returns the half-open row range to draw, keeping the
// selection near the middle when the fleet overflows the terminal.
func (m Model) rowWindow() (int, int) {
	maxRows := m.maxVisibleRows()
	if maxRows <= 0 || len(m.rows) <= maxRows {
		return 0, len(m.rows)
	}

	start := m.selected - maxRows/2
	if start < 0 {
		start = 0
	}
	end := start + maxRows
	if end > len(m.rows) {
		end = len(m.rows)
		start = end - maxRows
	}
	return start, end
}

// maxVisibleRows estimates how many table rows fit under the chrome.
func (m Model) maxVisibleRows() int {
	if m.height <= 0 {
		// No WindowSizeMsg yet.
		return len(m.rows)
	}

	reserved := 7
	if m.LayoutMode() == LayoutMinimal {
		reserved = 5
	}
	rows := m.height - reserved
	if rows < 3 {
		rows = 3
	}
	return rows
}

// renderFooter renders the key hints, or the filter prompt while one is
// being typed.
func (m Model) renderFooter() string {
	if m.filtering {
		return FooterStyle.Render(fmt.Sprintf("filter: %s▌  (enter keep, esc clear)", m.filter))
	}

	hints := fmt.Sprintf("q quit | r refresh | / filter | i interval %s | s sort %s | enter detail | ? help",
		formatInterval(m.interval), m.sortOrder)
	if len(m.rows) > 0 {
		hints += fmt.Sprintf(" | %d/%d", m.selected+1, len(m.rows))
	}
	if m.filter != "" {
		hints += " | filter: " + m.filter
	}

	out := FooterStyle.Render(hints)
	if m.discoverErr != "" {
		out += "\n" + StatusUnreachableStyle.Render(" discovery: "+m.discoverErr)
	}
	return out
}

// padCell pads styled content to a column width. lipgloss.Width ignores
// the ANSI escapes, so styled and plain cells line up.
func padCell(s string, width int, left bool) string {
	if left {
		return padRight(s, width)
	}
	return padLeft(s, width)
}

func padLeft(s string, width int) string {
	if gap := width - lipgloss.Width(s); gap > 0 {
		return strings.Repeat(" ", gap) + s
	}
	return s
}

func padRight(s string, width int) string {
	if gap := width - lipgloss.Width(s); gap > 0 {
		return s + strings.Repeat(" ", gap)
	}
	return s
}

// truncateWithEllipsis shortens s to at most maxLen runes.
func truncateWithEllipsis(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 1 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-1]) + "…"
}
