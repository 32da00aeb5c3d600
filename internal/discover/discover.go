// Package discover locates running antnode processes on the local filesystem
// and resolves their metrics endpoint addresses from log content.
package discover

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/skyrmion/antop/internal/errors"
	"github.com/skyrmion/antop/internal/logger"
)

// Endpoint identifies one discovered node and where to poll it.
type Endpoint struct {
	// ID is the node's stable identity: the final path segment of its root
	// directory. Unique within a discovery pass.
	ID string

	// Addr is the metrics host:port extracted from the node's log, or empty
	// when the log has no address line yet.
	Addr string

	// Root is the node's data directory, used for record store sizing.
	Root string
}

// URL returns the metrics endpoint URL, or empty when no address is known.
func (e Endpoint) URL() string {
	if e.Addr == "" {
		return ""
	}
	return "http://" + e.Addr + "/metrics"
}

// addrPattern matches the address announcement antnode writes at startup.
// A restarted node appends a fresh line, so the last match wins.
var addrPattern = regexp.MustCompile(`Metrics server on (\S+)`)

// headLines bounds how much of each log is scanned. The announcement appears
// within the first few lines of a fresh log; reading further only costs time
// on long-running nodes.
const headLines = 50

// logSubpath is the conventional location of a node's log under its root.
var logSubpath = filepath.Join("logs", "antnode.log")

// Resolver turns filesystem globs into the current set of node endpoints.
type Resolver struct {
	log logger.Logger
}

// NewResolver creates a Resolver. A nil logger disables logging.
func NewResolver(log logger.Logger) *Resolver {
	if log == nil {
		log = logger.Noop()
	}
	return &Resolver{log: log}
}

// Resolve expands nodeGlob into node root directories and extracts each
// node's metrics address from its log file. When logGlob is non-empty it
// overrides the conventional logs/antnode.log layout and discovery is driven
// by the log files themselves.
//
// A malformed glob is the only error; zero matches is a valid empty result.
// Per-node read failures yield an Endpoint with an empty Addr rather than
// failing the pass - one bad node never blocks discovery of the rest.
func (r *Resolver) Resolve(nodeGlob, logGlob string) ([]Endpoint, error) {
	var endpoints []Endpoint
	var err error

	if logGlob != "" {
		endpoints, err = r.resolveFromLogs(logGlob)
	} else {
		endpoints, err = r.resolveFromRoots(nodeGlob)
	}
	if err != nil {
		return nil, err
	}

	sort.Slice(endpoints, func(i, j int) bool {
		return endpoints[i].ID < endpoints[j].ID
	})

	return dedupeByAddr(endpoints), nil
}

// resolveFromRoots drives discovery from node root directories, expecting
// each to hold logs/antnode.log.
func (r *Resolver) resolveFromRoots(nodeGlob string) ([]Endpoint, error) {
	matches, err := filepath.Glob(nodeGlob)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrDiscovery,
			fmt.Sprintf("Malformed node directory pattern: %s", nodeGlob),
			"Check the glob syntax (e.g. ~/.local/share/autonomi/node/*)")
	}

	endpoints := make([]Endpoint, 0, len(matches))
	for _, root := range matches {
		info, statErr := os.Stat(root)
		if statErr != nil || !info.IsDir() {
			continue
		}

		ep := Endpoint{
			ID:   filepath.Base(root),
			Root: root,
		}
		ep.Addr = r.scanLog(filepath.Join(root, logSubpath))
		endpoints = append(endpoints, ep)
	}

	r.log.Debug("resolved %d nodes from %s", len(endpoints), nodeGlob)
	return endpoints, nil
}

// resolveFromLogs drives discovery from log files directly. The node root is
// the log's directory, or its grandparent when logs live in a logs/ subdir.
func (r *Resolver) resolveFromLogs(logGlob string) ([]Endpoint, error) {
	matches, err := filepath.Glob(logGlob)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrDiscovery,
			fmt.Sprintf("Malformed log file pattern: %s", logGlob),
			"Check the glob syntax (e.g. ~/.local/share/autonomi/node/*/logs/antnode.log)")
	}

	endpoints := make([]Endpoint, 0, len(matches))
	for _, logPath := range matches {
		info, statErr := os.Stat(logPath)
		if statErr != nil || info.IsDir() {
			continue
		}

		root := filepath.Dir(logPath)
		if filepath.Base(root) == "logs" {
			root = filepath.Dir(root)
		}

		endpoints = append(endpoints, Endpoint{
			ID:   filepath.Base(root),
			Root: root,
			Addr: r.scanLog(logPath),
		})
	}

	r.log.Debug("resolved %d nodes from %s", len(endpoints), logGlob)
	return endpoints, nil
}

// scanLog reads a log file and returns the last announced metrics address,
// or empty when the file is missing, unreadable, or has no address line.
func (r *Resolver) scanLog(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		r.log.Debug("skipping unreadable log %s: %v", path, err)
		return ""
	}
	return ExtractAddr(string(data))
}

// ExtractAddr scans the first 50 lines of log text for the metrics address
// announcement and returns the last match, or empty when none is present.
// Kept free of filesystem I/O so the grammar is directly testable.
func ExtractAddr(text string) string {
	var addr string
	scanner := bufio.NewScanner(strings.NewReader(text))
	for lines := 0; lines < headLines && scanner.Scan(); lines++ {
		if m := addrPattern.FindStringSubmatch(scanner.Text()); m != nil {
			addr = m[1]
		}
	}
	return addr
}

// dedupeByAddr drops endpoints whose non-empty address was already claimed
// by an earlier (lower-sorted) node. Two logs announcing the same port would
// otherwise double-poll and double-count one process.
func dedupeByAddr(endpoints []Endpoint) []Endpoint {
	seen := make(map[string]bool, len(endpoints))
	out := endpoints[:0]
	for _, ep := range endpoints {
		if ep.Addr != "" {
			if seen[ep.Addr] {
				continue
			}
			seen[ep.Addr] = true
		}
		out = append(out, ep)
	}
	return out
}
