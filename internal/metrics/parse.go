package metrics

import (
	"bufio"
	"strconv"
	"strings"
	"time"
)

// exactNames are metrics whose wire name is stored verbatim.
var exactNames = map[string]bool{
	MetricUptime:       true,
	MetricMemoryMB:     true,
	MetricCPUPercent:   true,
	MetricPeers:        true,
	MetricRoutingPeers: true,
	MetricNetworkSize:  true,
	MetricRecords:      true,
	MetricPutErrors:    true,
	MetricRewards:      true,
}

// summedFamilies accumulate across every line sharing the prefix. libp2p
// reports these per error kind, the dashboard wants one number.
var summedFamilies = map[string]string{
	"libp2p_swarm_connections_incoming_error_total":         MetricConnErrorsIn,
	"libp2p_swarm_outgoing_connection_error_total":          MetricConnErrorsOut,
	"libp2p_kad_query_result_get_closest_peers_error_total": MetricKadErrors,
}

const bandwidthFamily = "libp2p_bandwidth_bytes_total"

// Parse converts the line-oriented metrics body into a RawSample captured at
// the given time. Comment and blank lines are skipped; a line's value is its
// last whitespace-separated field; malformed values skip only that line.
// Unknown metric names are retained under their bare name (label block
// stripped) so new node versions surface without a parser change.
func Parse(body string, capturedAt time.Time) *RawSample {
	sample := &RawSample{
		Values:     make(map[string]float64),
		CapturedAt: capturedAt,
	}

	sums := make(map[string]float64)
	seenFamily := make(map[string]bool)

	scanner := bufio.NewScanner(strings.NewReader(body))
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}

		name := fields[0]
		value, err := strconv.ParseFloat(fields[len(fields)-1], 64)
		if err != nil {
			continue
		}

		switch {
		case exactNames[name]:
			sample.Values[name] = value

		case strings.HasPrefix(name, bandwidthFamily):
			if strings.Contains(line, `direction="Inbound"`) {
				sample.Values[MetricBandwidthIn] = value
			} else if strings.Contains(line, `direction="Outbound"`) {
				sample.Values[MetricBandwidthOut] = value
			}

		case familyKey(name) != "":
			key := familyKey(name)
			sums[key] += value
			seenFamily[key] = true

		default:
			sample.Values[bareName(name)] = value
		}
	}

	// A family that reported only zeros is still present; absence means the
	// node never exposed it.
	for key := range seenFamily {
		sample.Values[key] = sums[key]
	}

	return sample
}

// familyKey maps a metric name to its summed-family key, or "".
func familyKey(name string) string {
	for prefix, key := range summedFamilies {
		if strings.HasPrefix(name, prefix) {
			return key
		}
	}
	return ""
}

// bareName strips a trailing {label="..."} block from a metric name.
func bareName(name string) string {
	if i := strings.IndexByte(name, '{'); i >= 0 {
		return name[:i]
	}
	return name
}
