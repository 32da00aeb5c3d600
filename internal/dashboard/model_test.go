package dashboard

import (
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skyrmion/antop/internal/discover"
	"github.com/skyrmion/antop/internal/metrics"
	"github.com/skyrmion/antop/internal/store"
)

func TestNewModelDefaults(t *testing.T) {
	m := newTestModel()

	assert.Equal(t, 2*time.Second, m.interval)
	assert.Equal(t, ViewFleet, m.viewMode)
	assert.Equal(t, SortByName, m.sortOrder)
	assert.Empty(t, m.rows)
	assert.False(t, m.polling)
	assert.NotNil(t, m.Init())
}

func TestFetchTimeout(t *testing.T) {
	assert.Equal(t, 800*time.Millisecond, fetchTimeout(time.Second))
	assert.Equal(t, 1600*time.Millisecond, fetchTimeout(2*time.Second))
	assert.Equal(t, metrics.DefaultTimeout, fetchTimeout(5*time.Second))
	assert.Equal(t, metrics.DefaultTimeout, fetchTimeout(60*time.Second))
	assert.Equal(t, metrics.DefaultTimeout, fetchTimeout(0))
}

func TestWindowSizeUpdate(t *testing.T) {
	m := newTestModel()

	updated, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m = updated.(Model)

	assert.Equal(t, 120, m.width)
	assert.Equal(t, 40, m.height)
	assert.True(t, m.viewportReady)
}

func TestStaleTickDropped(t *testing.T) {
	m := newTestModel()
	seedFleet(&m, "node-1")
	m.tickGen = 3

	updated, cmd := m.Update(tickMsg{gen: 2})
	m = updated.(Model)

	assert.Nil(t, cmd)
	assert.False(t, m.polling)
}

func TestTickStartsPoll(t *testing.T) {
	m := newTestModel()
	seedFleet(&m, "node-1")

	updated, cmd := m.Update(tickMsg{gen: 0})
	m = updated.(Model)

	assert.NotNil(t, cmd)
	assert.True(t, m.polling)

	// A second tick while the sweep is still running must not stack
	// another one on top.
	updated, _ = m.Update(tickMsg{gen: 0})
	m = updated.(Model)
	assert.True(t, m.polling)
}

func TestTickWithEmptyFleetSkipsPoll(t *testing.T) {
	m := newTestModel()

	updated, cmd := m.Update(tickMsg{gen: 0})
	m = updated.(Model)

	assert.NotNil(t, cmd, "the tick chain keeps running")
	assert.False(t, m.polling)
}

func TestPollLifecycle(t *testing.T) {
	m := newTestModel()
	seedFleet(&m, "node-1")

	ch := make(chan metrics.Result, 1)
	ch <- metrics.Result{
		Endpoint: discover.Endpoint{ID: "node-1"},
		Sample: metrics.RawSample{
			Values: map[string]float64{
				metrics.MetricUptime:      120,
				metrics.MetricBandwidthIn: 4096,
			},
			CapturedAt: time.Now(),
		},
	}
	close(ch)

	m.polling = true
	updated, cmd := m.Update(pollStartedMsg{results: ch})
	m = updated.(Model)
	require.NotNil(t, cmd)

	msg := cmd()
	res, ok := msg.(resultMsg)
	require.True(t, ok)
	assert.Equal(t, "node-1", res.Endpoint.ID)

	updated, cmd = m.Update(res)
	m = updated.(Model)
	require.NotNil(t, cmd)
	require.Len(t, m.rows, 1)
	assert.Equal(t, store.StatusRunning, m.rows[0].Status)

	msg = cmd()
	require.IsType(t, pollDoneMsg{}, msg)

	updated, _ = m.Update(msg)
	m = updated.(Model)
	assert.False(t, m.polling)
	assert.Len(t, m.snapshot.FleetRxHistory, 1)
}

func TestPollFailureMarksUnreachable(t *testing.T) {
	m := newTestModel()
	seedFleet(&m, "node-1")

	updated, _ := m.Update(resultMsg{
		Endpoint: discover.Endpoint{ID: "node-1"},
		Err:      errors.New("connection refused"),
	})
	m = updated.(Model)

	require.Len(t, m.rows, 1)
	assert.Equal(t, store.StatusUnreachable, m.rows[0].Status)
	assert.Equal(t, 1, m.rows[0].ConsecutiveFailures)
}

func TestApplyDiscovery(t *testing.T) {
	m := newTestModel()

	updated, cmd := m.Update(discoveredMsg{endpoints: []discover.Endpoint{
		{ID: "node-1", Addr: "127.0.0.1:12500", Root: "/var/antnode/node-1"},
		{ID: "node-2", Addr: "127.0.0.1:12501", Root: "/var/antnode/node-2"},
	}})
	m = updated.(Model)

	assert.NotNil(t, cmd)
	assert.Len(t, m.rows, 2)
	assert.Empty(t, m.discoverErr)
	assert.True(t, m.polling, "new nodes are polled right away")
}

func TestDiscoveryErrorKeepsFleet(t *testing.T) {
	m := newTestModel()
	seedFleet(&m, "node-1")

	updated, cmd := m.Update(discoveredMsg{err: errors.New("bad pattern")})
	m = updated.(Model)

	assert.Nil(t, cmd)
	assert.Equal(t, "bad pattern", m.discoverErr)
	assert.Len(t, m.rows, 1, "a failed scan leaves the known fleet alone")
}

func TestStorageMsg(t *testing.T) {
	m := newTestModel()
	seedFleet(&m, "node-1")

	updated, _ := m.Update(storageMsg(1 << 30))
	m = updated.(Model)

	assert.Equal(t, int64(1<<30), m.snapshot.StorageUsed)
}

func TestSortNodes(t *testing.T) {
	rows := []store.NodeView{
		{ID: "a", RxRate: 10, TxRate: 1, Status: store.StatusRunning},
		{ID: "b", RxRate: 30, TxRate: 2, Status: store.StatusError},
		{ID: "c", RxRate: 20, TxRate: 3, Status: store.StatusUnreachable},
	}

	sortNodes(rows, SortByRxRate)
	assert.Equal(t, []string{"b", "c", "a"}, rowIDs(rows))

	sortNodes(rows, SortByTxRate)
	assert.Equal(t, []string{"c", "b", "a"}, rowIDs(rows))

	sortNodes(rows, SortByStatus)
	assert.Equal(t, []string{"b", "c", "a"}, rowIDs(rows))
}

func rowIDs(rows []store.NodeView) []string {
	ids := make([]string, 0, len(rows))
	for _, n := range rows {
		ids = append(ids, n.ID)
	}
	return ids
}

func TestRebuildRowsKeepsSelection(t *testing.T) {
	m := newTestModel()
	seedFleet(&m, "alpha", "beta", "gamma")

	m.selected = 1
	m.setFilter("a")
	require.Len(t, m.rows, 3, "every seeded name contains an a")
	assert.Equal(t, "beta", m.SelectedID())

	m.setFilter("gam")
	require.Len(t, m.rows, 1)
	assert.Equal(t, "gamma", m.SelectedID(), "selection falls back to the first match")
}

func TestSecondsSincePoll(t *testing.T) {
	m := newTestModel()
	assert.Equal(t, -1, m.SecondsSincePoll())

	m.lastPoll = time.Now().Add(-3 * time.Second)
	assert.GreaterOrEqual(t, m.SecondsSincePoll(), 3)
}
