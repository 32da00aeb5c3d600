package dashboard

import (
	tea "github.com/charmbracelet/bubbletea"
)

// SortOrder determines how fleet rows are ordered in the table.
type SortOrder int

const (
	SortByName SortOrder = iota
	SortByRxRate
	SortByTxRate
	SortByStatus
)

// String returns the short label shown in the footer.
func (s SortOrder) String() string {
	switch s {
	case SortByName:
		return "name"
	case SortByRxRate:
		return "rx"
	case SortByTxRate:
		return "tx"
	case SortByStatus:
		return "status"
	default:
		return "name"
	}
}

// Next cycles to the next sort order.
func (s SortOrder) Next() SortOrder {
	return (s + 1) % 4
}

// ViewMode determines which screen the dashboard is showing.
type ViewMode int

const (
	ViewFleet ViewMode = iota
	ViewDetail
)

// Key bindings.
const (
	KeyQuit          = "q"
	KeyQuitAlt       = "ctrl+c"
	KeyRefresh       = "r"
	KeyFilter        = "/"
	KeyCycleInterval = "i"
	KeyCycleSort     = "s"
	KeySelectPrev    = "up"
	KeySelectPrevK   = "k"
	KeySelectNext    = "down"
	KeySelectNextJ   = "j"
	KeySelectFirst   = "home"
	KeySelectLast    = "end"
	KeyExpand        = "enter"
	KeyCollapse      = "esc"
	KeyToggleHelp    = "?"
)

// HandleKeyMsg processes a key press and returns whether it was handled
// plus any command to run.
func (m *Model) HandleKeyMsg(msg tea.KeyMsg) (bool, tea.Cmd) {
	if m.filtering {
		return m.handleFilterKey(msg)
	}

	key := msg.String()

	// Help toggle works from any view.
	if key == KeyToggleHelp {
		m.showHelp = !m.showHelp
		return true, nil
	}
	if m.showHelp && key == KeyCollapse {
		m.showHelp = false
		return true, nil
	}

	if m.viewMode == ViewDetail {
		switch key {
		case KeyCollapse:
			m.viewMode = ViewFleet
			return true, nil
		case KeyQuit, KeyQuitAlt:
			// Fall through to the main handler.
		case KeyRefresh:
			// Fall through so refresh works from the detail view too.
		default:
			var cmd tea.Cmd
			m.detailViewport, cmd = m.detailViewport.Update(msg)
			return true, cmd
		}
	}

	switch key {
	case KeyQuit, KeyQuitAlt:
		m.quitting = true
		m.shutdown()
		return true, tea.Quit

	case KeyRefresh:
		return true, tea.Batch(m.discoverCmd(), m.startPoll())

	case KeyFilter:
		m.filtering = true
		return true, nil

	case KeyCycleInterval:
		m.cycleInterval()
		return true, m.tickCmd()

	case KeyCycleSort:
		m.sortOrder = m.sortOrder.Next()
		m.rebuildRows()
		return true, nil

	case KeySelectPrev, KeySelectPrevK:
		if m.selected > 0 {
			m.selected--
		}
		return true, nil

	case KeySelectNext, KeySelectNextJ:
		if m.selected < len(m.rows)-1 {
			m.selected++
		}
		return true, nil

	case KeySelectFirst:
		m.selected = 0
		return true, nil

	case KeySelectLast:
		if len(m.rows) > 0 {
			m.selected = len(m.rows) - 1
		}
		return true, nil

	case KeyExpand:
		if m.viewMode == ViewFleet && len(m.rows) > 0 {
			m.viewMode = ViewDetail
			m.updateDetailContent()
		}
		return true, nil

	case KeyCollapse:
		if m.filter != "" {
			m.setFilter("")
		} else if m.viewMode == ViewDetail {
			m.viewMode = ViewFleet
		}
		return true, nil
	}

	return false, nil
}

// handleFilterKey processes key presses while the filter prompt is active.
func (m *Model) handleFilterKey(msg tea.KeyMsg) (bool, tea.Cmd) {
	switch msg.String() {
	case KeyCollapse:
		m.filtering = false
		m.setFilter("")
	case KeyExpand:
		m.filtering = false
	case "backspace":
		if m.filter != "" {
			r := []rune(m.filter)
			m.setFilter(string(r[:len(r)-1]))
		}
	case KeyQuitAlt:
		m.quitting = true
		m.shutdown()
		return true, tea.Quit
	default:
		if msg.Type == tea.KeyRunes {
			m.setFilter(m.filter + string(msg.Runes))
		}
	}
	return true, nil
}

// setFilter updates the filter text and rebuilds the visible rows.
func (m *Model) setFilter(v string) {
	m.filter = v
	m.rebuildRows()
}
