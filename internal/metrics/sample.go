// Package metrics fetches and parses the plain-text metrics antnode exposes
// over HTTP.
package metrics

import "time"

// Metric names exposed by antnode. Exact-match metrics keep their wire name;
// labeled and summed families are stored under the derived keys below.
const (
	MetricUptime       = "ant_node_uptime"
	MetricMemoryMB     = "ant_networking_process_memory_used_mb"
	MetricCPUPercent   = "ant_networking_process_cpu_usage_percentage"
	MetricPeers        = "ant_networking_connected_peers"
	MetricRoutingPeers = "ant_networking_peers_in_routing_table"
	MetricNetworkSize  = "ant_networking_estimated_network_size"
	MetricRecords      = "ant_networking_records_stored"
	MetricPutErrors    = "ant_node_put_record_err_total"
	MetricRewards      = "ant_node_current_reward_wallet_balance"

	// Derived from libp2p_bandwidth_bytes_total lines by direction label.
	MetricBandwidthIn  = "bandwidth_inbound_bytes"
	MetricBandwidthOut = "bandwidth_outbound_bytes"

	// Sums over every line of the corresponding libp2p error family.
	MetricConnErrorsIn  = "incoming_connection_errors"
	MetricConnErrorsOut = "outgoing_connection_errors"
	MetricKadErrors     = "kad_get_closest_peers_errors"
)

// RawSample is the flat name -> value mapping parsed from one successful
// poll, plus the capture timestamp. Immutable once created.
type RawSample struct {
	Values     map[string]float64
	CapturedAt time.Time
}

// Get looks up a metric by name. The second return reports presence, so
// callers can distinguish a reported zero from a missing metric.
func (s *RawSample) Get(name string) (float64, bool) {
	if s == nil {
		return 0, false
	}
	v, ok := s.Values[name]
	return v, ok
}

func (s *RawSample) Uptime() (float64, bool)       { return s.Get(MetricUptime) }
func (s *RawSample) MemoryMB() (float64, bool)     { return s.Get(MetricMemoryMB) }
func (s *RawSample) CPUPercent() (float64, bool)   { return s.Get(MetricCPUPercent) }
func (s *RawSample) Peers() (float64, bool)        { return s.Get(MetricPeers) }
func (s *RawSample) RoutingPeers() (float64, bool) { return s.Get(MetricRoutingPeers) }
func (s *RawSample) NetworkSize() (float64, bool)  { return s.Get(MetricNetworkSize) }
func (s *RawSample) Records() (float64, bool)      { return s.Get(MetricRecords) }
func (s *RawSample) Rewards() (float64, bool)      { return s.Get(MetricRewards) }
func (s *RawSample) BandwidthIn() (float64, bool)  { return s.Get(MetricBandwidthIn) }
func (s *RawSample) BandwidthOut() (float64, bool) { return s.Get(MetricBandwidthOut) }

// TotalErrors sums the four error families. Present when at least one family
// was reported.
func (s *RawSample) TotalErrors() (float64, bool) {
	var total float64
	any := false
	for _, name := range []string{MetricPutErrors, MetricConnErrorsIn, MetricConnErrorsOut, MetricKadErrors} {
		if v, ok := s.Get(name); ok {
			total += v
			any = true
		}
	}
	return total, any
}
