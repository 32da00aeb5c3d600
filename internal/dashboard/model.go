// Package dashboard implements the interactive fleet dashboard. It follows
// the Elm architecture: a Model value holds all state, Update consumes
// messages from timers and background workers, and View renders the current
// fleet snapshot. The store is only ever touched from Update, so it needs
// no locking.
package dashboard

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/skyrmion/antop/internal/config"
	"github.com/skyrmion/antop/internal/discover"
	"github.com/skyrmion/antop/internal/logger"
	"github.com/skyrmion/antop/internal/metrics"
	"github.com/skyrmion/antop/internal/storage"
	"github.com/skyrmion/antop/internal/store"
	"github.com/skyrmion/antop/internal/watch"
)

// DiscoverInterval is how often the node directories are rescanned for
// added or removed nodes, independent of the metrics poll cadence.
const DiscoverInterval = 60 * time.Second

// LayoutMode determines how much detail fits in the current terminal width.
type LayoutMode int

const (
	LayoutMinimal LayoutMode = iota
	LayoutCompact
	LayoutStandard
	LayoutWide
)

// Width breakpoints for layout modes.
const (
	BreakpointCompact  = 80
	BreakpointStandard = 120
	BreakpointWide     = 160
)

// Model is the Bubble Tea model for the dashboard.
type Model struct {
	cfg      *config.Config
	store    *store.Store
	resolver *discover.Resolver
	fetcher  *metrics.Fetcher
	watcher  *watch.Watcher
	log      logger.Logger

	ctx    context.Context
	cancel context.CancelFunc

	snapshot store.FleetSnapshot
	rows     []store.NodeView

	interval time.Duration
	tickGen  int

	width  int
	height int

	selected  int
	sortOrder SortOrder
	viewMode  ViewMode
	showHelp  bool
	filtering bool
	filter    string
	quitting  bool

	results  <-chan metrics.Result
	polling  bool
	lastPoll time.Time

	discoverErr string

	detailViewport viewport.Model
	viewportReady  bool
}

// tickMsg drives the metrics poll. The generation guards against stale
// tick chains after the interval is changed at runtime.
type tickMsg struct {
	gen int
}

// discoverTickMsg drives the periodic node rescan.
type discoverTickMsg time.Time

// pollStartedMsg hands the result channel of a freshly started poll back
// to Update.
type pollStartedMsg struct {
	results <-chan metrics.Result
}

// resultMsg carries one node's poll outcome.
type resultMsg metrics.Result

// pollDoneMsg signals that every node of the current poll has reported.
type pollDoneMsg struct{}

// discoveredMsg carries the outcome of a node directory scan.
type discoveredMsg struct {
	endpoints []discover.Endpoint
	err       error
}

// storageMsg carries the total bytes used across all record stores.
type storageMsg int64

// watchMsg signals a filesystem change under the node directories.
type watchMsg struct{}

// watchClosedMsg signals that the filesystem watcher has shut down.
type watchClosedMsg struct{}

// New creates a dashboard model. The watcher may be nil, in which case
// discovery relies on the periodic rescan alone.
func New(cfg *config.Config, w *watch.Watcher, log logger.Logger) Model {
	if log == nil {
		log = logger.Noop()
	}

	ctx, cancel := context.WithCancel(context.Background())
	st := store.New(cfg.History.Size, log)

	return Model{
		cfg:      cfg,
		store:    st,
		resolver: discover.NewResolver(log),
		fetcher:  metrics.NewFetcher(fetchTimeout(cfg.Poll.Interval), log),
		watcher:  w,
		log:      log,
		ctx:      ctx,
		cancel:   cancel,
		snapshot: st.Snapshot(),
		interval: cfg.Poll.Interval,
	}
}

// fetchTimeout derives the per-node HTTP timeout from the poll interval.
// The timeout must stay below the interval so a hung node cannot push one
// poll cycle into the next.
func fetchTimeout(interval time.Duration) time.Duration {
	if interval <= 0 {
		return metrics.DefaultTimeout
	}
	t := interval * 8 / 10
	if t > metrics.DefaultTimeout {
		t = metrics.DefaultTimeout
	}
	return t
}

// Init starts the poll and discovery timers and kicks off the first scan.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.tickCmd(),
		m.discoverTickCmd(),
		m.discoverCmd(),
		m.waitForWatch(),
	)
}

// Update handles incoming messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		handled, cmd := m.HandleKeyMsg(msg)
		if handled {
			return m, cmd
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeViewport()
		if m.viewMode == ViewDetail {
			m.updateDetailContent()
		}

	case tickMsg:
		if msg.gen != m.tickGen {
			// A leftover tick from before an interval change.
			return m, nil
		}
		return m, tea.Batch(m.tickCmd(), m.startPoll())

	case discoverTickMsg:
		return m, tea.Batch(m.discoverTickCmd(), m.discoverCmd())

	case discoveredMsg:
		return m, m.applyDiscovery(msg)

	case pollStartedMsg:
		m.results = msg.results
		return m, waitForResult(m.results)

	case resultMsg:
		m.applyResult(metrics.Result(msg))
		if m.viewMode == ViewDetail {
			m.updateDetailContent()
		}
		return m, waitForResult(m.results)

	case pollDoneMsg:
		m.polling = false
		m.results = nil
		m.store.PushFleetRates()
		m.refreshSnapshot()
		if m.viewMode == ViewDetail {
			m.updateDetailContent()
		}

	case storageMsg:
		m.store.SetStorageUsed(int64(msg))
		m.refreshSnapshot()

	case watchMsg:
		return m, tea.Batch(m.discoverCmd(), m.waitForWatch())

	case watchClosedMsg:
		// The watcher is gone; the periodic rescan keeps discovery alive.
	}

	return m, nil
}

// View renders the dashboard.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var view string
	if m.viewMode == ViewDetail {
		view = m.renderDetailView()
	} else {
		view = m.renderFleet()
	}

	if m.showHelp {
		return m.renderHelpOverlay(view)
	}
	return view
}

// tickCmd schedules the next poll tick for the current generation.
func (m Model) tickCmd() tea.Cmd {
	gen := m.tickGen
	return tea.Tick(m.interval, func(time.Time) tea.Msg {
		return tickMsg{gen: gen}
	})
}

// discoverTickCmd schedules the next periodic rescan.
func (m Model) discoverTickCmd() tea.Cmd {
	return tea.Tick(DiscoverInterval, func(t time.Time) tea.Msg {
		return discoverTickMsg(t)
	})
}

// discoverCmd scans the node directories in the background.
func (m Model) discoverCmd() tea.Cmd {
	resolver := m.resolver
	nodeGlob := m.cfg.NodeGlob()
	logGlob := m.cfg.LogOverrideGlob()
	return func() tea.Msg {
		endpoints, err := resolver.Resolve(nodeGlob, logGlob)
		return discoveredMsg{endpoints: endpoints, err: err}
	}
}

// startPoll begins a poll sweep unless one is already in flight. It must
// be called from Update so the polling flag lands on the live model.
func (m *Model) startPoll() tea.Cmd {
	if m.polling || m.store.Len() == 0 {
		return nil
	}
	m.polling = true
	return m.pollCmd()
}

// pollCmd fans out metric fetches to every known endpoint. The endpoint
// list is captured here, on the Update goroutine, so the closure never
// touches the store.
func (m Model) pollCmd() tea.Cmd {
	endpoints := m.store.Endpoints()
	fetcher := m.fetcher
	ctx := m.ctx
	return func() tea.Msg {
		return pollStartedMsg{results: fetcher.FetchAll(ctx, endpoints)}
	}
}

// waitForResult delivers the next poll result, or pollDoneMsg once the
// channel is drained.
func waitForResult(results <-chan metrics.Result) tea.Cmd {
	return func() tea.Msg {
		res, ok := <-results
		if !ok {
			return pollDoneMsg{}
		}
		return resultMsg(res)
	}
}

// scanStorageCmd sums record store sizes in the background.
func (m Model) scanStorageCmd() tea.Cmd {
	endpoints := m.store.Endpoints()
	roots := make([]string, 0, len(endpoints))
	for _, ep := range endpoints {
		roots = append(roots, ep.Root)
	}
	return func() tea.Msg {
		return storageMsg(storage.UsedBytes(roots))
	}
}

// waitForWatch delivers the next filesystem event, if a watcher is running.
func (m Model) waitForWatch() tea.Cmd {
	if m.watcher == nil {
		return nil
	}
	events := m.watcher.Events()
	return func() tea.Msg {
		if _, ok := <-events; !ok {
			return watchClosedMsg{}
		}
		return watchMsg{}
	}
}

// applyResult records one node's poll outcome in the store.
func (m *Model) applyResult(res metrics.Result) {
	if res.Err != nil {
		m.store.ApplyFailure(res.Endpoint.ID, res.Err)
	} else {
		m.store.ApplySuccess(res.Endpoint.ID, res.Sample)
	}
	m.lastPoll = time.Now()
	m.refreshSnapshot()
}

// applyDiscovery reconciles the store against a scan result. A failed
// scan keeps the previous fleet on screen rather than tearing it down.
func (m *Model) applyDiscovery(msg discoveredMsg) tea.Cmd {
	if msg.err != nil {
		m.discoverErr = msg.err.Error()
		m.log.Warn("discovery failed: %v", msg.err)
		return nil
	}
	m.discoverErr = ""

	added, removed := m.store.Reconcile(msg.endpoints)
	if len(added) > 0 || len(removed) > 0 {
		m.log.Info("fleet changed: %d added, %d removed", len(added), len(removed))
	}
	m.refreshSnapshot()

	cmds := []tea.Cmd{m.scanStorageCmd()}
	if len(added) > 0 || len(removed) > 0 || m.lastPoll.IsZero() {
		// Poll new arrivals right away instead of waiting out the tick.
		cmds = append(cmds, m.startPoll())
	}
	return tea.Batch(cmds...)
}

// cycleInterval advances the poll interval to the next allowed value and
// invalidates the running tick chain.
func (m *Model) cycleInterval() {
	next := config.AllowedIntervals[0]
	for i, d := range config.AllowedIntervals {
		if d == m.interval {
			next = config.AllowedIntervals[(i+1)%len(config.AllowedIntervals)]
			break
		}
	}
	m.interval = next
	m.fetcher = metrics.NewFetcher(fetchTimeout(next), m.log)
	m.tickGen++
	m.log.Info("poll interval set to %s", next)
}

// shutdown releases background resources before quitting.
func (m *Model) shutdown() {
	m.cancel()
	if m.watcher != nil {
		if err := m.watcher.Close(); err != nil {
			m.log.Debug("watcher close: %v", err)
		}
	}
}

// resizeViewport sizes the detail viewport to the terminal, reserving
// room for the detail header and footer.
func (m *Model) resizeViewport() {
	if m.width <= 0 || m.height <= 0 {
		return
	}

	const headerHeight = 3
	const footerHeight = 2
	vh := m.height - headerHeight - footerHeight
	if vh < 1 {
		vh = 1
	}

	if !m.viewportReady {
		m.detailViewport = viewport.New(m.width, vh)
		m.detailViewport.YPosition = headerHeight
		m.viewportReady = true
	} else {
		m.detailViewport.Width = m.width
		m.detailViewport.Height = vh
	}
}

// refreshSnapshot pulls a fresh snapshot from the store and rebuilds the
// visible rows.
func (m *Model) refreshSnapshot() {
	m.snapshot = m.store.Snapshot()
	m.rebuildRows()
}

// rebuildRows applies the filter and sort order to the snapshot, keeping
// the selection on the same node where possible.
func (m *Model) rebuildRows() {
	selectedID := m.SelectedID()

	rows := make([]store.NodeView, 0, len(m.snapshot.Nodes))
	needle := strings.ToLower(m.filter)
	for _, n := range m.snapshot.Nodes {
		if needle != "" && !strings.Contains(strings.ToLower(n.ID), needle) {
			continue
		}
		rows = append(rows, n)
	}
	sortNodes(rows, m.sortOrder)
	m.rows = rows

	m.selected = 0
	if selectedID != "" {
		for i, n := range rows {
			if n.ID == selectedID {
				m.selected = i
				break
			}
		}
	}
}

// sortNodes orders rows in place. Name order needs no work because
// snapshots arrive sorted by ID.
func sortNodes(rows []store.NodeView, order SortOrder) {
	switch order {
	case SortByRxRate:
		sort.SliceStable(rows, func(i, j int) bool {
			return rows[i].RxRate > rows[j].RxRate
		})
	case SortByTxRate:
		sort.SliceStable(rows, func(i, j int) bool {
			return rows[i].TxRate > rows[j].TxRate
		})
	case SortByStatus:
		sort.SliceStable(rows, func(i, j int) bool {
			return statusRank(rows[i].Status) < statusRank(rows[j].Status)
		})
	}
}

// statusRank orders statuses so the ones needing attention sort first.
func statusRank(s store.Status) int {
	switch s {
	case store.StatusError:
		return 0
	case store.StatusUnreachable:
		return 1
	case store.StatusRunning:
		return 2
	case store.StatusDiscovered:
		return 3
	default:
		return 4
	}
}

// SelectedID returns the ID of the selected row, or "" when no rows are
// visible.
func (m Model) SelectedID() string {
	if m.selected >= 0 && m.selected < len(m.rows) {
		return m.rows[m.selected].ID
	}
	return ""
}

// SelectedNode returns the selected row's view.
func (m Model) SelectedNode() (store.NodeView, bool) {
	if m.selected >= 0 && m.selected < len(m.rows) {
		return m.rows[m.selected], true
	}
	return store.NodeView{}, false
}

// LayoutMode picks the densest layout that fits the terminal width.
func (m Model) LayoutMode() LayoutMode {
	switch {
	case m.width >= BreakpointWide:
		return LayoutWide
	case m.width >= BreakpointStandard:
		return LayoutStandard
	case m.width >= BreakpointCompact:
		return LayoutCompact
	default:
		return LayoutMinimal
	}
}

// SecondsSincePoll returns whole seconds since the last poll result, or
// -1 before the first one lands.
func (m Model) SecondsSincePoll() int {
	if m.lastPoll.IsZero() {
		return -1
	}
	return int(time.Since(m.lastPoll).Seconds())
}
