// Package watch turns changes to plan record files into store_changed events so
// indicators follow edits made by other sessions.
package watch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/valksor/go-planbook/internal/events"
	"github.com/valksor/go-planbook/internal/log"
	"github.com/valksor/go-planbook/internal/storage"
)

// DefaultDebounce lets a burst of writes to one record settle into one event.
const DefaultDebounce = 100 * time.Millisecond

// Watcher observes a store directory.
type Watcher struct {
	root     string
	bus      *events.Bus
	debounce time.Duration

	fs   *fsnotify.Watcher
	done chan struct{}
	err  error

	closeOnce sync.Once
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce overrides DefaultDebounce.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) { w.debounce = d }
}

// Start begins watching root and publishes to bus until ctx is cancelled or
// Close is called. The directory is created if missing.
func Start(ctx context.Context, root string, bus *events.Bus, opts ...Option) (*Watcher, error) {
	w := &Watcher{
		root:     root,
		bus:      bus,
		debounce: DefaultDebounce,
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}

	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create plan directory: %w", err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := fw.Add(root); err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", root, err)
	}
	w.fs = fw

	go w.loop(ctx)
	return w, nil
}

// Close stops the watcher and waits for the loop to exit.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() { err = w.fs.Close() })
	<-w.done
	return err
}

// Wait blocks until the watcher stops and returns the error that stopped it.
func (w *Watcher) Wait() error {
	<-w.done
	return w.err
}

func (w *Watcher) loop(ctx context.Context) {
	defer close(w.done)
	defer w.closeOnce.Do(func() { _ = w.fs.Close() })

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	pending := make(map[string]events.StoreChangedEvent)

	for {
		select {
		case <-ctx.Done():
			w.flush(pending)
			return

		case ev, ok := <-w.fs.Events:
			if !ok {
				w.flush(pending)
				return
			}
			change, ok := w.classify(ev)
			if !ok {
				continue
			}
			pending[change.PlanID] = change
			timer.Reset(w.debounce)

		case <-timer.C:
			w.flush(pending)

		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			if errors.Is(err, fsnotify.ErrEventOverflow) {
				log.Warn("watch queue overflow, changes may have been missed", "root", w.root)
				continue
			}
			log.Debug("watch error", log.Err(err))
		}
	}
}

// classify keeps events on record files. Locks, settings and temp files are ignored.
func (w *Watcher) classify(ev fsnotify.Event) (events.StoreChangedEvent, bool) {
	name := filepath.Base(ev.Name)
	id, ok := strings.CutSuffix(name, ".md")
	if !ok || !storage.ValidID(id) {
		return events.StoreChangedEvent{}, false
	}

	var op string
	switch {
	case ev.Has(fsnotify.Remove):
		op = "remove"
	case ev.Has(fsnotify.Rename):
		op = "rename"
	case ev.Has(fsnotify.Create):
		op = "create"
	case ev.Has(fsnotify.Write):
		op = "write"
	default:
		return events.StoreChangedEvent{}, false
	}

	return events.StoreChangedEvent{PlanID: id, Path: ev.Name, Operation: op}, true
}

func (w *Watcher) flush(pending map[string]events.StoreChangedEvent) {
	if len(pending) == 0 {
		return
	}
	ids := make([]string, 0, len(pending))
	for id := range pending {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	for _, id := range ids {
		change := pending[id]
		change.Timestamp = time.Now()
		log.Debug("store changed", log.PlanID(id), "operation", change.Operation)
		w.bus.Publish(change)
		delete(pending, id)
	}
}
