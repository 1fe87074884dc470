// Package virtualtext decorates an existing host buffer instead of
// owning a surface of its own: it re-applies message highlights over
// text that is already present. One instance is shared per backend
// name across all views that request it.
package virtualtext

import (
	"fmt"

	"github.com/notkaj/herald/internal/host"
	"github.com/notkaj/herald/internal/options"
	"github.com/notkaj/herald/internal/registry"
	"github.com/notkaj/herald/internal/render"
	"github.com/notkaj/herald/internal/view"
)

// Renderer is the decoration-only backend.
type Renderer struct {
	view.BaseRenderer

	host    host.Host
	adapter *render.Adapter

	// target is the externally-owned buffer last decorated.
	target host.Buffer
}

// Factory builds virtualtext renderers sharing one render adapter.
func Factory(a *render.Adapter) registry.Factory {
	return func(h host.Host, _ options.Options) (view.Renderer, error) {
		return &Renderer{host: h, adapter: a}, nil
	}
}

func (r *Renderer) Available() bool {
	return r.host != nil && r.host.Active()
}

func (r *Renderer) Mode() view.InstanceMode { return view.PerBackend }

func (r *Renderer) Show(v *view.View) error {
	opts := v.Opts()
	target, ok := opts.Int("buffer")
	if !ok {
		return fmt.Errorf("virtualtext: no target buffer configured")
	}
	buf := host.Buffer(target)
	if !r.host.BufferValid(buf) {
		return fmt.Errorf("virtualtext: %w", host.ErrInvalidBuffer)
	}

	offset, _ := opts.Int("offset")
	err := r.adapter.Render(r.host, buf, render.Options{
		Offset:        offset,
		HighlightOnly: true,
		Messages:      v.Messages(),
	})
	if err != nil {
		return fmt.Errorf("virtualtext: %w", err)
	}
	r.target = buf
	return nil
}

func (r *Renderer) Hide(v *view.View) error {
	r.clear()
	return nil
}

func (r *Renderer) Destroy(*view.View) {
	r.clear()
}

func (r *Renderer) clear() {
	if r.target == 0 || !r.host.BufferValid(r.target) {
		r.target = 0
		return
	}
	ns := r.host.Namespace(render.DefaultNamespace)
	_ = r.host.ClearNamespace(r.target, ns, 0, -1)
	r.target = 0
}
