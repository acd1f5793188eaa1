// Package watch provides an opt-in file watcher for SQLite database
// snapshots published by atomic-replace (write-temp-then-rename) or
// in-place write. It never touches a ccdb.DB or rcdb.DB handle directly:
// callers that want fresh data reopen a new handle on notification and
// swap it in themselves.
package watch

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// EventKind classifies why a Watcher fired.
type EventKind int

const (
	// Changed means the watched path was written to in place, or a file
	// appeared at the path without a remove or rename of the path being
	// seen first (renaming a temporary file over the path is reported
	// this way when only its Create is seen).
	Changed EventKind = iota
	// Replaced means a remove or rename of the watched path was seen and
	// a new file then appeared at the same path.
	Replaced
)

func (k EventKind) String() string {
	switch k {
	case Changed:
		return "changed"
	case Replaced:
		return "replaced"
	default:
		return "unknown"
	}
}

// Event describes one observed change to the watched path.
type Event struct {
	Kind EventKind
	Path string
}

// Watcher observes a single file path and delivers Events when it is
// written or atomically replaced. It spawns exactly one goroutine, and
// only once Start is called — nothing here is started implicitly by
// ccdb.Open or rcdb.Open.
type Watcher struct {
	path string
	dir  string

	fsw    *fsnotify.Watcher
	events chan Event
	errs   chan error

	closeOnce sync.Once
	done      chan struct{}
}

// New creates a Watcher for path. The watcher is inert until Start is
// called.
func New(path string) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("watch: resolve %s: %w", path, err)
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: new fsnotify watcher: %w", err)
	}
	return &Watcher{
		path:   abs,
		dir:    filepath.Dir(abs),
		fsw:    fsw,
		events: make(chan Event, 1),
		errs:   make(chan error, 1),
		done:   make(chan struct{}),
	}, nil
}

// Start begins watching. fsnotify fires most reliably on the containing
// directory rather than the file itself — a Remove+Create rename pair on
// the file is otherwise easy to miss between the old inode disappearing
// and the new one being registered — so Start watches path's directory
// and filters to events naming path.
func (w *Watcher) Start() error {
	if err := w.fsw.Add(w.dir); err != nil {
		return fmt.Errorf("watch: add %s: %w", w.dir, err)
	}
	go w.loop()
	return nil
}

func (w *Watcher) loop() {
	var removedRecently bool
	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			switch {
			case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				removedRecently = true
			case ev.Op&fsnotify.Create != 0:
				kind := Changed
				if removedRecently {
					kind = Replaced
				}
				removedRecently = false
				w.emit(Event{Kind: kind, Path: w.path})
			case ev.Op&fsnotify.Write != 0:
				w.emit(Event{Kind: Changed, Path: w.path})
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			select {
			case w.errs <- err:
			default:
			}
		}
	}
}

func (w *Watcher) emit(e Event) {
	select {
	case w.events <- e:
	default:
		// A pending event already covers this path; the reader will
		// reopen and pick up the latest state regardless.
	}
}

// Events returns the channel Watcher delivers change notifications on.
func (w *Watcher) Events() <-chan Event { return w.events }

// Errors returns the channel Watcher delivers fsnotify errors on.
func (w *Watcher) Errors() <-chan error { return w.errs }

// Close stops the watcher and releases its fsnotify handle. Safe to call
// more than once.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		close(w.done)
		err = w.fsw.Close()
	})
	return err
}

