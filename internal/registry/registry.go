// Package registry resolves view names to live view instances.
//
// Backends are registered by name at process start; lookup never loads
// modules by string at runtime. The entry list is ordered and scanned
// in registration order on every lookup — which instance a call
// returns deliberately depends on the process's call history. Entries
// are never evicted; unavailable candidates are skipped per call.
package registry

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/notkaj/herald/internal/host"
	"github.com/notkaj/herald/internal/logging"
	"github.com/notkaj/herald/internal/options"
	"github.com/notkaj/herald/internal/view"
)

// Factory constructs a renderer for a backend name. Construction
// failures are treated as "backend unavailable", not as fatal errors.
type Factory func(h host.Host, opts options.Options) (view.Renderer, error)

type entry struct {
	view     *view.View
	opts     options.Options
	viewName string
	backend  string
}

// Registry owns the backend factory table and the live view cache.
// It holds process-lifetime state: construct one per host session and
// pass it explicitly.
type Registry struct {
	host      host.Host
	store     options.Source
	factories map[string]Factory
	entries   []entry
}

// New creates an empty registry over a host and a configuration store.
// A nil store means every view resolves from an empty default layer.
func New(h host.Host, store options.Source) *Registry {
	return &Registry{
		host:      h,
		store:     store,
		factories: make(map[string]Factory),
	}
}

// Register installs a backend factory under a name. Re-registering a
// name replaces the factory but leaves existing cached views alone.
func (r *Registry) Register(name string, f Factory) {
	r.factories[name] = f
}

// Backends returns the registered backend names.
func (r *Registry) Backends() []string {
	out := make([]string, 0, len(r.factories))
	for name := range r.factories {
		out = append(out, name)
	}
	return out
}

// GetView resolves a view name plus caller options to a live view,
// reusing cached instances under the view's instance mode. It returns
// nil only when every candidate across the full fallback chain is
// unavailable; callers must handle an empty result.
func (r *Registry) GetView(viewName string, caller options.Options) *view.View {
	// Snapshot before resolution so fallback recursion starts from the
	// caller's original intent, not this view's resolved options.
	snapshot := options.Clone(caller)

	opts := options.Resolve(r.store, viewName, caller)
	candidates := opts.StringList(options.KeyBackend)

	for _, candidate := range candidates {
		opts[options.KeyBackend] = candidate

		if cached := r.lookup(viewName, candidate, opts); cached != nil {
			return cached
		}

		v, err := r.construct(candidate, opts)
		if err != nil {
			logging.Debug("backend unavailable",
				zap.String("view", viewName),
				zap.String("backend", candidate),
				zap.Error(err))
			continue
		}

		r.entries = append(r.entries, entry{
			view:     v,
			opts:     options.Clone(opts),
			viewName: viewName,
			backend:  candidate,
		})
		return v
	}

	if fallback := opts.String(options.KeyFallback); fallback != "" {
		logging.Debug("all backends failed, trying fallback view",
			zap.String("view", viewName),
			zap.String("fallback", fallback))
		return r.GetView(fallback, snapshot)
	}
	return nil
}

// lookup scans cached entries in registration order, first match wins.
func (r *Registry) lookup(viewName, backend string, opts options.Options) *view.View {
	for _, e := range r.entries {
		if e.viewName == viewName {
			switch e.view.Mode() {
			case view.PerOptions:
				if options.Equal(e.opts, opts) {
					return e.view
				}
			case view.PerView:
				return e.view
			}
		}
		if e.backend == backend && e.view.Mode() == view.PerBackend {
			return e.view
		}
	}
	return nil
}

// construct builds and availability-probes a fresh view for a backend.
func (r *Registry) construct(backend string, opts options.Options) (*view.View, error) {
	f, ok := r.factories[backend]
	if !ok {
		return nil, fmt.Errorf("no backend registered as %q", backend)
	}
	renderer, err := f(r.host, opts)
	if err != nil {
		return nil, fmt.Errorf("constructing backend %q: %w", backend, err)
	}

	v := view.New(r.host, renderer, opts)
	if !v.Available() {
		return nil, fmt.Errorf("backend %q reports unavailable", backend)
	}
	return v, nil
}
