package view

import (
	"errors"

	"github.com/notkaj/herald/internal/options"
)

// ErrNotRendered indicates Show or Hide was invoked on a renderer that
// never supplied one. This is a programming error: every concrete
// backend must implement both. It escapes the display pipeline's fault
// isolation as a panic.
var ErrNotRendered = errors.New("view: renderer does not implement show/hide")

// InstanceMode is the cache-sharing granularity for a view type.
type InstanceMode int

const (
	// PerOptions shares an instance only across deeply-equal option sets.
	PerOptions InstanceMode = iota

	// PerView shares one instance per logical view name; the view
	// absorbs option drift through CheckOptions.
	PerView

	// PerBackend shares one instance per backend name across all views.
	PerBackend
)

// String returns the mode name.
func (m InstanceMode) String() string {
	switch m {
	case PerOptions:
		return "per-options"
	case PerView:
		return "per-view"
	case PerBackend:
		return "per-backend"
	default:
		return "unknown"
	}
}

// Renderer is a concrete display backend driven by a View.
//
// Show and Hide are mandatory; the remaining methods are lifecycle
// hooks with no-op defaults supplied by BaseRenderer, which concrete
// backends embed and selectively override.
type Renderer interface {
	// Show displays the view's buffered messages. Errors and panics are
	// absorbed by the display pipeline's fault isolation.
	Show(v *View) error

	// Hide removes the view's visible presence.
	Hide(v *View) error

	// Available probes whether the backend can run in the current
	// environment. Unavailable backends are skipped during resolution.
	Available() bool

	// UpdateOptions runs after construction and after every option
	// recompute, letting the backend normalize its derived settings.
	UpdateOptions(v *View)

	// Reset runs when a recompute changed the effective options, so the
	// backend can rebuild resources that depend on them.
	Reset(v *View, old, newOpts options.Options)

	// Destroy releases backend-owned resources. Must be idempotent and
	// safe on a never-shown view.
	Destroy(v *View)

	// Mode returns the cache-sharing granularity for this backend.
	Mode() InstanceMode
}

// BaseRenderer supplies the default hook implementations. Its Show and
// Hide report ErrNotRendered, which the pipeline treats as fatal.
type BaseRenderer struct{}

func (BaseRenderer) Show(*View) error { return ErrNotRendered }

func (BaseRenderer) Hide(*View) error { return ErrNotRendered }

func (BaseRenderer) Available() bool { return true }

func (BaseRenderer) UpdateOptions(*View) {}

func (BaseRenderer) Reset(*View, options.Options, options.Options) {}

func (BaseRenderer) Destroy(*View) {}

func (BaseRenderer) Mode() InstanceMode { return PerOptions }
