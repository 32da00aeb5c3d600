package cli

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skyrmion/antop/internal/config"
	"github.com/skyrmion/antop/internal/metrics"
	"github.com/skyrmion/antop/internal/store"
)

const listTestExposition = `ant_node_uptime 3600
ant_networking_process_memory_used_mb 150.5
ant_networking_process_cpu_usage_percentage 2.5
ant_networking_connected_peers 25
ant_networking_records_stored 1234
libp2p_bandwidth_bytes_total{direction="Inbound",protocol="/ant/1.0"} 1000000
libp2p_bandwidth_bytes_total{direction="Outbound",protocol="/ant/1.0"} 500000
`

// writeNodeDir lays out <root>/<id>/logs/antnode.log announcing addr.
func writeNodeDir(t *testing.T, root, id, addr string) {
	t.Helper()
	logsDir := filepath.Join(root, id, "logs")
	require.NoError(t, os.MkdirAll(logsDir, 0755))
	line := "Metrics server on " + addr + "\n"
	require.NoError(t, os.WriteFile(filepath.Join(logsDir, "antnode.log"), []byte(line), 0644))
}

func TestListCommand(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(listTestExposition))
	}))
	t.Cleanup(srv.Close)
	healthyAddr := strings.TrimPrefix(srv.URL, "http://")

	// A second server closed immediately gives a port that refuses connections
	dead := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	deadAddr := strings.TrimPrefix(dead.URL, "http://")
	dead.Close()

	root := t.TempDir()
	writeNodeDir(t, root, "antnode1", healthyAddr)
	writeNodeDir(t, root, "antnode2", deadAddr)

	cfg := config.DefaultConfig()
	cfg.Nodes.Path = filepath.Join(root, "*")

	var buf bytes.Buffer
	require.NoError(t, listCommand(&buf, cfg))

	out := buf.String()
	assert.Contains(t, out, "antnode1")
	assert.Contains(t, out, "running")
	assert.Contains(t, out, "01:00:00")
	assert.Contains(t, out, "150.5MB")
	assert.Contains(t, out, "2.50%")
	assert.Contains(t, out, "1,234")
	assert.Contains(t, out, "1.0 MB")

	assert.Contains(t, out, "antnode2")
	assert.Contains(t, out, "unreachable")

	assert.Contains(t, out, "2 nodes, 1 running, 1 unreachable, 0 errored")
}

func TestListCommandNoNodes(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Nodes.Path = filepath.Join(t.TempDir(), "*")

	var buf bytes.Buffer
	require.NoError(t, listCommand(&buf, cfg))

	assert.Contains(t, buf.String(), "No nodes found under")
}

func TestRenderNodeTable(t *testing.T) {
	now := time.Now()
	snap := store.FleetSnapshot{
		Nodes: []store.NodeView{
			{
				ID:     "antnode1",
				Status: store.StatusRunning,
				Latest: &metrics.RawSample{
					Values: map[string]float64{
						metrics.MetricUptime:       90061, // 1d 01:01:01
						metrics.MetricMemoryMB:     150.5,
						metrics.MetricCPUPercent:   2.5,
						metrics.MetricPeers:        25,
						metrics.MetricRecords:      1234,
						metrics.MetricRewards:      42,
						metrics.MetricBandwidthIn:  1000000,
						metrics.MetricBandwidthOut: 500000,
					},
					CapturedAt: now,
				},
			},
			{
				ID:     "antnode2",
				Status: store.StatusDiscovered,
			},
		},
		Running:    1,
		Discovered: 1,
	}

	var buf bytes.Buffer
	renderNodeTable(&buf, snap)
	out := buf.String()

	assert.Contains(t, out, "Node")
	assert.Contains(t, out, "Status")
	assert.Contains(t, out, "Rewards")

	assert.Contains(t, out, "antnode1")
	assert.Contains(t, out, "1d 01:01:01")
	assert.Contains(t, out, "150.5MB")
	assert.Contains(t, out, "2.50%")
	assert.Contains(t, out, "1,234")
	assert.Contains(t, out, "1.0 MB")
	assert.Contains(t, out, "500 kB")

	// The never-polled node renders placeholders, not zeros
	assert.Contains(t, out, "antnode2")
	assert.Contains(t, out, "discovered")
	assert.Contains(t, out, "-")

	assert.Contains(t, out, "2 nodes, 1 running, 0 unreachable, 0 errored")
}

func TestRenderNodeTableErrorReason(t *testing.T) {
	snap := store.FleetSnapshot{
		Nodes: []store.NodeView{
			{
				ID:     "antnode1",
				Status: store.StatusError,
				Reason: "bad response",
			},
		},
		Errored: 1,
	}

	var buf bytes.Buffer
	renderNodeTable(&buf, snap)

	assert.Contains(t, buf.String(), "error (bad response)")
}
