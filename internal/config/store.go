// Package config holds the herald configuration tree and its loaders.
//
// The store layers loaded configuration over built-in defaults and
// serves per-view option tables to the resolver. From the view
// engine's perspective the store is read-only; mutation happens only
// through loads, which may be triggered live by the file watcher.
package config

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/notkaj/herald/internal/options"
)

// Store is the process configuration tree.
type Store struct {
	mu sync.RWMutex

	defaults map[string]any
	loaded   map[string]any
	merged   map[string]any

	observers map[uint64]func()
	nextObs   uint64
}

// NewStore creates a store seeded with the built-in defaults.
func NewStore() *Store {
	s := &Store{
		defaults:  Defaults(),
		loaded:    map[string]any{},
		observers: make(map[uint64]func()),
	}
	s.rebuild()
	return s
}

// Defaults returns the built-in configuration tree.
func Defaults() map[string]any {
	return map[string]any{
		"views": map[string]any{
			"notify": map[string]any{
				"backend": "popup",
				"format":  map[string]any{"level": true},
				"align":   map[string]any{"sort": "level"},
			},
			"messages": map[string]any{
				"backend":  []any{"split"},
				"type":     "split",
				"position": "below",
				"size":     10,
			},
			"popup": map[string]any{
				"backend": "popup",
			},
			"split": map[string]any{
				"backend": "split",
				"type":    "split",
			},
			"virtualtext": map[string]any{
				"backend": "virtualtext",
			},
		},
	}
}

// Options returns a deep copy of the view's configured defaults, or
// nil when the view has no configuration. Implements options.Source.
func (s *Store) Options(viewName string) map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	views, _ := s.merged["views"].(map[string]any)
	if views == nil {
		return nil
	}
	viewOpts, _ := views[viewName].(map[string]any)
	if viewOpts == nil {
		return nil
	}
	return options.Clone(viewOpts)
}

// SetView installs or replaces one view's configuration. Primarily for
// embedders wiring views programmatically.
func (s *Store) SetView(viewName string, opts map[string]any) {
	s.mu.Lock()
	views, _ := s.loaded["views"].(map[string]any)
	if views == nil {
		views = map[string]any{}
		s.loaded["views"] = views
	}
	// Tree values must stay plain map[string]any; an Options-typed
	// value would fail the type assertions in the merge walk.
	views[viewName] = map[string]any(options.Clone(opts))
	s.rebuild()
	s.mu.Unlock()
	s.notify()
}

// Apply deep-merges a loaded tree over previously loaded state.
func (s *Store) Apply(tree map[string]any) {
	if tree == nil {
		return
	}
	s.mu.Lock()
	s.loaded = options.DeepMerge(s.loaded, tree)
	s.rebuild()
	s.mu.Unlock()
	s.notify()
}

// parseFile reads a configuration file by extension: .toml, .lua, or
// .json. A missing file yields a nil tree and no error.
func parseFile(path string) (map[string]any, error) {
	switch filepath.Ext(path) {
	case ".toml":
		return LoadTOML(path)
	case ".lua":
		return LoadLua(path)
	case ".json":
		return LoadJSON(path)
	default:
		return nil, fmt.Errorf("config: unsupported file type %q", path)
	}
}

// Load reads a configuration file and merges it over loaded state.
func (s *Store) Load(path string) error {
	tree, err := parseFile(path)
	if err != nil {
		return err
	}
	s.Apply(tree)
	return nil
}

// Reload replaces all loaded state with the file's current content,
// so keys deleted from the file disappear. Used by the watcher.
func (s *Store) Reload(path string) error {
	tree, err := parseFile(path)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.loaded = map[string]any{}
	if tree != nil {
		s.loaded = options.DeepMerge(s.loaded, tree)
	}
	s.rebuild()
	s.mu.Unlock()
	s.notify()
	return nil
}

// Subscribe registers a change observer and returns its cancel func.
// Observers fire after any applied change; views pick up new defaults
// on their next resolution, and live views on their next CheckOptions.
func (s *Store) Subscribe(fn func()) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextObs++
	id := s.nextObs
	s.observers[id] = fn
	return func() {
		s.mu.Lock()
		delete(s.observers, id)
		s.mu.Unlock()
	}
}

// rebuild recomputes the merged tree. Callers hold the write lock.
func (s *Store) rebuild() {
	merged := options.DeepMerge(nil, s.defaults)
	s.merged = options.DeepMerge(merged, s.loaded)
}

func (s *Store) notify() {
	s.mu.RLock()
	observers := make([]func(), 0, len(s.observers))
	for _, fn := range s.observers {
		observers = append(observers, fn)
	}
	s.mu.RUnlock()

	for _, fn := range observers {
		fn()
	}
}
