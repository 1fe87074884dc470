package config

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/notkaj/herald/internal/logging"
)

// Watcher reloads a Store when its configuration file changes on
// disk. The parent directory is watched rather than the file itself
// so editors that save via rename keep triggering reloads.
type Watcher struct {
	store    *Store
	path     string
	debounce time.Duration

	fsw      *fsnotify.Watcher
	done     chan struct{}
	closed   chan struct{}
	stopOnce sync.Once
}

// Watch starts watching path and reloading store on changes. Events
// are debounced so a burst of writes produces a single reload.
func Watch(store *Store, path string, debounce time.Duration) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		fsw.Close()
		return nil, err
	}

	if debounce <= 0 {
		debounce = 100 * time.Millisecond
	}

	w := &Watcher{
		store:    store,
		path:     abs,
		debounce: debounce,
		fsw:      fsw,
		done:     make(chan struct{}),
		closed:   make(chan struct{}),
	}
	go w.loop()
	return w, nil
}

// Close stops the watcher. Safe to call more than once.
func (w *Watcher) Close() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.done)
		err = w.fsw.Close()
		<-w.closed
	})
	return err
}

func (w *Watcher) loop() {
	defer close(w.closed)

	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-w.done:
			if timer != nil {
				timer.Stop()
			}
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				fire = timer.C
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}

		case <-fire:
			timer = nil
			fire = nil
			if err := w.store.Reload(w.path); err != nil {
				logging.Warn("config reload failed",
					zap.String("path", w.path),
					zap.Error(err))
				continue
			}
			logging.Debug("config reloaded", zap.String("path", w.path))

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			logging.Warn("config watcher error", zap.Error(err))
		}
	}
}
