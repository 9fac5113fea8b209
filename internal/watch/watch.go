// Package watch monitors a context's plug-in directories for filesystem
// changes and re-triggers engine.Scan, implementing spec.md §6's "detect
// plug-ins added/removed/changed on disk" without requiring the host to poll.
// Grounded on nextpkg-vcfg/providers/file_watcher.go's directory-level
// fsnotify watch, debounced callback and explicit start/stop lifecycle.
package watch

import (
	"context"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"

	"github.com/pluffgo/pluffgo/internal/engine"
)

// Scanner is the subset of *engine.Engine the watcher drives.
type Scanner interface {
	Directories() []string
	Scan(ctx context.Context, flags engine.ScanFlags) (engine.ScanResult, error)
}

// Watcher watches every directory a Scanner has registered and re-runs Scan,
// with the given flags, whenever one of them changes on disk. Rapid bursts of
// events (an editor writing several files, an archive being unpacked) are
// coalesced into a single Scan after debounce elapses.
type Watcher struct {
	scanner  Scanner
	flags    engine.ScanFlags
	debounce time.Duration

	mu      sync.Mutex
	fsw     *fsnotify.Watcher
	cancel  context.CancelFunc
	watched map[string]bool
}

// New returns a Watcher. flags are passed to every triggered Scan; debounce
// of zero uses a 200ms default.
func New(scanner Scanner, flags engine.ScanFlags, debounce time.Duration) *Watcher {
	if debounce <= 0 {
		debounce = 200 * time.Millisecond
	}
	return &Watcher{
		scanner:  scanner,
		flags:    flags,
		debounce: debounce,
		watched:  make(map[string]bool),
	}
}

// Start begins watching the scanner's current directories. Calling Start
// while already running is a no-op.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.fsw != nil {
		return nil
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	for _, dir := range w.scanner.Directories() {
		if err := fsw.Add(dir); err != nil {
			log.Warn().Err(err).Str("dir", dir).Msg("watch: failed to add directory")
			continue
		}
		w.watched[dir] = true
	}
	w.fsw = fsw

	runCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	go w.run(runCtx, fsw)
	return nil
}

// Stop halts watching and releases the underlying fsnotify watcher.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.fsw == nil {
		return nil
	}
	w.cancel()
	err := w.fsw.Close()
	w.fsw = nil
	w.watched = make(map[string]bool)
	return err
}

func (w *Watcher) run(ctx context.Context, fsw *fsnotify.Watcher) {
	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(w.debounce)
			timerC = timer.C
		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			log.Warn().Err(err).Msg("watch: fsnotify error")
		case <-timerC:
			timerC = nil
			if _, err := w.scanner.Scan(ctx, w.flags); err != nil {
				log.Warn().Err(err).Msg("watch: triggered scan failed")
			}
		}
	}
}
