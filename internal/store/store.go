// Package store owns all mutable node state: per-node status and samples,
// rate derivation, bounded history, and fleet-wide aggregation. A single
// Store instance is owned by the dashboard's update loop; it is not safe
// for concurrent use and consumers only ever see immutable snapshots.
package store

import (
	"errors"
	"sort"

	"github.com/skyrmion/antop/internal/discover"
	apperrors "github.com/skyrmion/antop/internal/errors"
	"github.com/skyrmion/antop/internal/logger"
	"github.com/skyrmion/antop/internal/metrics"
)

// Status describes what the poller currently knows about a node.
type Status int

const (
	// StatusDiscovered means the node is listed but has never answered a poll.
	StatusDiscovered Status = iota
	// StatusRunning means the most recent poll succeeded.
	StatusRunning
	// StatusUnreachable means the most recent poll failed to connect.
	StatusUnreachable
	// StatusError means the node answered with garbage or has no usable
	// metrics address; Reason carries the detail.
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusDiscovered:
		return "discovered"
	case StatusRunning:
		return "running"
	case StatusUnreachable:
		return "unreachable"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// addressMissThreshold is how many consecutive address-missing polls a
// node gets before it is flagged as errored rather than still starting up.
const addressMissThreshold = 3

// maxConsecutiveFailures caps the failure counter. Beyond this the exact
// number carries no extra signal and the display shows a saturated count.
const maxConsecutiveFailures = 99

// record is the store's private per-node state. Consumers get NodeView
// copies via Snapshot, never the record itself.
type record struct {
	ID     string
	Addr   string
	Root   string
	Status Status
	Reason string

	Latest   *metrics.RawSample
	Previous *metrics.RawSample

	RxRate float64
	TxRate float64
	rxHist *ring
	txHist *ring

	ConsecutiveFailures int
	LastError           string
}

// Store tracks every discovered node and derives rates and history from
// their samples.
type Store struct {
	nodes    map[string]*record
	histSize int

	fleetRx *ring
	fleetTx *ring

	storageUsed int64

	log logger.Logger
}

// New creates an empty store. histSize bounds every history series; a
// non-positive value falls back to DefaultHistorySize.
func New(histSize int, log logger.Logger) *Store {
	if histSize <= 0 {
		histSize = DefaultHistorySize
	}
	if log == nil {
		log = logger.Noop()
	}
	return &Store{
		nodes:    make(map[string]*record),
		histSize: histSize,
		fleetRx:  newRing(histSize),
		fleetTx:  newRing(histSize),
		log:      log,
	}
}

// Len returns the number of tracked nodes.
func (s *Store) Len() int {
	return len(s.nodes)
}

// Reconcile folds a fresh discovery pass into the store. New identities
// are inserted as Discovered. Identities absent from the pass are removed
// outright, history included: a node that vanished from the filesystem
// was decommissioned, not lost. Surviving identities take the fresh
// address and root but keep their status, samples, and history, so a
// node restarting under a new port does not lose its sparkline.
// Reconciling the same endpoints twice is a no-op.
func (s *Store) Reconcile(endpoints []discover.Endpoint) (added, removed []string) {
	seen := make(map[string]bool, len(endpoints))

	for _, ep := range endpoints {
		seen[ep.ID] = true

		if rec, ok := s.nodes[ep.ID]; ok {
			if rec.Addr != ep.Addr {
				s.log.Debug("node %s address %q -> %q", ep.ID, rec.Addr, ep.Addr)
			}
			rec.Addr = ep.Addr
			rec.Root = ep.Root
			continue
		}

		s.nodes[ep.ID] = &record{
			ID:     ep.ID,
			Addr:   ep.Addr,
			Root:   ep.Root,
			Status: StatusDiscovered,
			rxHist: newRing(s.histSize),
			txHist: newRing(s.histSize),
		}
		added = append(added, ep.ID)
	}

	for id := range s.nodes {
		if !seen[id] {
			delete(s.nodes, id)
			removed = append(removed, id)
		}
	}

	sort.Strings(added)
	sort.Strings(removed)
	if len(added) > 0 || len(removed) > 0 {
		s.log.Info("reconciled fleet: %d nodes (+%d -%d)", len(s.nodes), len(added), len(removed))
	}
	return added, removed
}

// Endpoints returns the current fetch targets, sorted by identity.
func (s *Store) Endpoints() []discover.Endpoint {
	eps := make([]discover.Endpoint, 0, len(s.nodes))
	for _, rec := range s.nodes {
		eps = append(eps, discover.Endpoint{ID: rec.ID, Addr: rec.Addr, Root: rec.Root})
	}
	sort.Slice(eps, func(i, j int) bool { return eps[i].ID < eps[j].ID })
	return eps
}

// ApplySuccess records a successful poll. The previous latest sample is
// shifted down, rates are recomputed and appended to the node's history,
// and the failure streak resets. Samples for nodes that were removed
// while the fetch was in flight are dropped, as are samples whose
// timestamp does not advance past the current latest: results may arrive
// in any order across nodes, but a node's own pair must stay ordered.
func (s *Store) ApplySuccess(id string, sample metrics.RawSample) {
	rec, ok := s.nodes[id]
	if !ok {
		s.log.Debug("dropping result for removed node %s", id)
		return
	}

	if rec.Latest != nil && !sample.CapturedAt.After(rec.Latest.CapturedAt) {
		s.log.Debug("dropping stale sample for %s", id)
		return
	}

	rec.Previous = rec.Latest
	rec.Latest = &sample
	rec.Status = StatusRunning
	rec.Reason = ""
	rec.LastError = ""
	rec.ConsecutiveFailures = 0

	rec.RxRate = counterRate(rec.Previous, rec.Latest, metrics.MetricBandwidthIn)
	rec.TxRate = counterRate(rec.Previous, rec.Latest, metrics.MetricBandwidthOut)
	rec.rxHist.push(rec.RxRate)
	rec.txHist.push(rec.TxRate)
}

// ApplyFailure records a failed poll. Rates and history stay frozen at
// their last computed values so the display keeps showing what the node
// looked like when it last answered. An unreachable endpoint and a bad
// response land in different statuses; a node whose log has no metrics
// address yet keeps its current status for a few polls before being
// flagged, since a starting node simply has not logged its address.
func (s *Store) ApplyFailure(id string, err error) {
	rec, ok := s.nodes[id]
	if !ok {
		s.log.Debug("dropping failure for removed node %s", id)
		return
	}

	msg := "fetch failed"
	if err != nil {
		msg = err.Error()
	}
	rec.LastError = msg
	if rec.ConsecutiveFailures < maxConsecutiveFailures {
		rec.ConsecutiveFailures++
	}

	switch {
	case rec.Addr == "":
		if rec.ConsecutiveFailures > addressMissThreshold {
			rec.Status = StatusError
			rec.Reason = "no metrics address"
		}
	case apperrors.IsCode(err, apperrors.ErrBadResponse):
		rec.Status = StatusError
		rec.Reason = failureReason(err)
	default:
		rec.Status = StatusUnreachable
		rec.Reason = ""
	}
}

// SetStorageUsed records the latest record-store disk usage measurement.
// The walk itself runs outside the update loop; only the result lands here.
func (s *Store) SetStorageUsed(bytes int64) {
	s.storageUsed = bytes
}

// failureReason extracts the short human message from a coded error,
// falling back to the full error text.
func failureReason(err error) string {
	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
