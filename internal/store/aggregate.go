package store

import (
	"sort"
	"time"

	"github.com/skyrmion/antop/internal/metrics"
	"github.com/skyrmion/antop/internal/storage"
)

// NodeView is an immutable per-node snapshot handed to the presentation
// layer. History slices are fresh copies; the Latest sample pointer is
// shared because samples are never mutated after parsing.
type NodeView struct {
	ID     string
	Addr   string
	Root   string
	Status Status
	Reason string

	Latest *metrics.RawSample

	RxRate    float64
	TxRate    float64
	RxHistory []float64
	TxHistory []float64

	ConsecutiveFailures int
	LastError           string
}

// FleetSnapshot is a point-in-time aggregation over every tracked node.
// Rate sums cover Running nodes only: an unreachable node's frozen rate
// describes the past, not current throughput. Cumulative totals cover
// every node that has ever answered, so a blip does not make the fleet's
// lifetime transfer counters jump around.
type FleetSnapshot struct {
	TakenAt time.Time

	Nodes []NodeView

	Discovered  int
	Running     int
	Unreachable int
	Errored     int

	RxRate float64
	TxRate float64

	TotalIn     float64
	TotalOut    float64
	Records     float64
	Peers       float64
	CPUPercent  float64
	Rewards     float64
	NetworkSize float64

	StorageUsed      int64
	StorageAllocated int64

	FleetRxHistory []float64
	FleetTxHistory []float64
}

// Total returns the number of tracked nodes regardless of status.
func (f FleetSnapshot) Total() int {
	return len(f.Nodes)
}

// PushFleetRates appends the current Running-only rate sums to the
// fleet-wide history. Called once per completed poll tick, never per
// render, so redraw frequency cannot distort the fleet sparkline.
func (s *Store) PushFleetRates() {
	rx, tx := s.runningRates()
	s.fleetRx.push(rx)
	s.fleetTx.push(tx)
}

func (s *Store) runningRates() (rx, tx float64) {
	for _, rec := range s.nodes {
		if rec.Status != StatusRunning {
			continue
		}
		rx += rec.RxRate
		tx += rec.TxRate
	}
	return rx, tx
}

// Snapshot builds an immutable fleet view in one O(n) pass, sorted by
// node identity.
func (s *Store) Snapshot() FleetSnapshot {
	snap := FleetSnapshot{
		TakenAt:          time.Now(),
		Nodes:            make([]NodeView, 0, len(s.nodes)),
		StorageUsed:      s.storageUsed,
		StorageAllocated: storage.AllocatedBytes(len(s.nodes)),
		FleetRxHistory:   s.fleetRx.all(),
		FleetTxHistory:   s.fleetTx.all(),
	}

	for _, rec := range s.nodes {
		switch rec.Status {
		case StatusDiscovered:
			snap.Discovered++
		case StatusRunning:
			snap.Running++
			snap.RxRate += rec.RxRate
			snap.TxRate += rec.TxRate
		case StatusUnreachable:
			snap.Unreachable++
		case StatusError:
			snap.Errored++
		}

		if rec.Latest != nil {
			if v, ok := rec.Latest.BandwidthIn(); ok {
				snap.TotalIn += v
			}
			if v, ok := rec.Latest.BandwidthOut(); ok {
				snap.TotalOut += v
			}
			if v, ok := rec.Latest.Records(); ok {
				snap.Records += v
			}
			if v, ok := rec.Latest.Peers(); ok {
				snap.Peers += v
			}
			if v, ok := rec.Latest.CPUPercent(); ok {
				snap.CPUPercent += v
			}
			if v, ok := rec.Latest.Rewards(); ok {
				snap.Rewards += v
			}
			// Every node estimates the size of the whole network, so
			// the estimates are compared, not summed.
			if v, ok := rec.Latest.NetworkSize(); ok && v > snap.NetworkSize {
				snap.NetworkSize = v
			}
		}

		snap.Nodes = append(snap.Nodes, NodeView{
			ID:                  rec.ID,
			Addr:                rec.Addr,
			Root:                rec.Root,
			Status:              rec.Status,
			Reason:              rec.Reason,
			Latest:              rec.Latest,
			RxRate:              rec.RxRate,
			TxRate:              rec.TxRate,
			RxHistory:           rec.rxHist.all(),
			TxHistory:           rec.txHist.all(),
			ConsecutiveFailures: rec.ConsecutiveFailures,
			LastError:           rec.LastError,
		})
	}

	sort.Slice(snap.Nodes, func(i, j int) bool { return snap.Nodes[i].ID < snap.Nodes[j].ID })
	return snap
}
