// Package format renders metric values for terminal display.
// Absent values render as "-" so the dashboard never shows misleading zeros
// for nodes that have not reported yet.
package format

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
)

// Missing is rendered for metrics a node has not reported.
const Missing = "-"

// Bytes formats a byte count as a human-readable decimal size (KB, MB, GB).
func Bytes(v float64, ok bool) string {
	if !ok || v < 0 {
		return Missing
	}
	return humanize.Bytes(uint64(v))
}

// Speed formats a bytes-per-second rate, e.g. "1.2 MB/s".
func Speed(bps float64, ok bool) string {
	if !ok || bps < 0 {
		return Missing
	}
	return humanize.Bytes(uint64(bps)) + "/s"
}

// Count formats a whole-number metric with thousands separators.
func Count(v float64, ok bool) string {
	if !ok {
		return Missing
	}
	return humanize.Comma(int64(v))
}

// Float formats a value with fixed precision.
func Float(v float64, ok bool, precision int) string {
	if !ok {
		return Missing
	}
	return fmt.Sprintf("%.*f", precision, v)
}

// Percent formats a percentage with two decimal places.
func Percent(v float64, ok bool) string {
	if !ok {
		return Missing
	}
	return fmt.Sprintf("%.2f%%", v)
}

// MegaBytes formats a value already expressed in MB.
func MegaBytes(v float64, ok bool) string {
	if !ok {
		return Missing
	}
	return fmt.Sprintf("%.1fMB", v)
}

// Attos formats a wallet balance reported in attos, where one whole token
// is 1e18 attos. Balances of at least a thousandth of a token render in
// tokens; smaller balances keep an SI-prefixed atto count so young nodes
// do not all display as zero.
func Attos(v float64, ok bool) string {
	if !ok || v < 0 {
		return Missing
	}
	if v == 0 {
		return "0"
	}
	const attosPerToken = 1e18
	if v >= attosPerToken/1000 {
		return fmt.Sprintf("%.3f", v/attosPerToken)
	}
	// SIWithDigits joins value and unit with a space; with no unit that
	// leaves a trailing space on prefixless values.
	return strings.TrimSpace(humanize.SIWithDigits(v, 1, ""))
}

// Uptime formats seconds as "Nd HH:MM:SS", dropping the day part under 24h.
func Uptime(seconds float64, ok bool) string {
	if !ok || seconds < 0 {
		return Missing
	}
	s := uint64(seconds)
	days := s / (24 * 3600)
	hours := (s % (24 * 3600)) / 3600
	minutes := (s % 3600) / 60
	secs := s % 60
	if days > 0 {
		return fmt.Sprintf("%dd %02d:%02d:%02d", days, hours, minutes, secs)
	}
	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, secs)
}
