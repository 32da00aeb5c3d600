// Package watch turns filesystem changes under the node directory into
// rediscovery triggers, so adding or removing a node shows up without
// waiting for the next discovery timer.
package watch

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/skyrmion/antop/internal/logger"
)

// DebounceWindow collapses a burst of filesystem events into a single
// trigger. Node managers create several entries when they add a node.
const DebounceWindow = 500 * time.Millisecond

// Watcher watches the static prefix of the node glob and emits one
// signal per settled burst of create/remove/rename events.
type Watcher struct {
	fs       *fsnotify.Watcher
	events   chan struct{}
	debounce time.Duration
	log      logger.Logger
}

// New starts watching the deepest non-wildcard ancestor of glob.
// The caller owns the watcher and must Close it.
func New(glob string, log logger.Logger) (*Watcher, error) {
	if log == nil {
		log = logger.Noop()
	}

	dir := StaticPrefix(glob)
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fs.Add(dir); err != nil {
		_ = fs.Close()
		return nil, err
	}

	w := &Watcher{
		fs:       fs,
		events:   make(chan struct{}, 1),
		debounce: DebounceWindow,
		log:      log,
	}
	go w.loop()

	log.Debug("watching %s for node changes", dir)
	return w, nil
}

// Events delivers one signal per settled burst. The channel holds a
// single pending trigger; further bursts coalesce into it.
func (w *Watcher) Events() <-chan struct{} {
	return w.events
}

// Close stops the watcher and its goroutine.
func (w *Watcher) Close() error {
	return w.fs.Close()
}

func (w *Watcher) loop() {
	var (
		timer  *time.Timer
		timerC <-chan time.Time
	)

	for {
		select {
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if !relevant(ev) {
				continue
			}
			w.log.Debug("fs event: %s", ev)
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerC = timer.C
			} else {
				timer.Reset(w.debounce)
			}

		case <-timerC:
			timer = nil
			timerC = nil
			select {
			case w.events <- struct{}{}:
			default:
			}

		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.log.Warn("watch error: %v", err)
		}
	}
}

// relevant filters to events that can change the set of node
// directories. Log and chunk writes inside a node are constant noise
// and never alter discovery.
func relevant(ev fsnotify.Event) bool {
	return ev.Op.Has(fsnotify.Create) || ev.Op.Has(fsnotify.Remove) || ev.Op.Has(fsnotify.Rename)
}

// StaticPrefix returns the deepest ancestor of glob that contains no
// glob metacharacters. That directory is where node entries appear and
// disappear, and it exists even when the glob matches nothing yet.
func StaticPrefix(glob string) string {
	sep := string(filepath.Separator)
	var kept []string
	for _, part := range strings.Split(glob, sep) {
		if strings.ContainsAny(part, "*?[") {
			break
		}
		kept = append(kept, part)
	}

	dir := strings.Join(kept, sep)
	if dir == "" {
		if strings.HasPrefix(glob, sep) {
			return sep
		}
		return "."
	}
	return dir
}
