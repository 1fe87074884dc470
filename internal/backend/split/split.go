// Package split renders a view into an edge-anchored split window.
//
// One split instance is shared per logical view name; the view absorbs
// option drift through its CheckOptions/Reset cycle. After the window
// is first created for a "split"-typed view, a deferred continuation
// resets the cursor on a later host tick — the window may already be
// gone by then, so the continuation re-validates it before acting.
package split

import (
	"fmt"

	"github.com/notkaj/herald/internal/host"
	"github.com/notkaj/herald/internal/options"
	"github.com/notkaj/herald/internal/registry"
	"github.com/notkaj/herald/internal/render"
	"github.com/notkaj/herald/internal/view"
)

const defaultSize = 10

// Renderer is the split-window backend.
type Renderer struct {
	view.BaseRenderer

	host    host.Host
	adapter *render.Adapter

	buf host.Buffer
	win host.Window
}

// Factory builds split renderers sharing one render adapter.
func Factory(a *render.Adapter) registry.Factory {
	return func(h host.Host, _ options.Options) (view.Renderer, error) {
		return &Renderer{host: h, adapter: a}, nil
	}
}

func (r *Renderer) Available() bool {
	return r.host != nil && r.host.Active()
}

func (r *Renderer) Mode() view.InstanceMode { return view.PerView }

func (r *Renderer) Show(v *view.View) error {
	if !r.host.BufferValid(r.buf) {
		buf, err := r.host.CreateBuffer(true)
		if err != nil {
			return fmt.Errorf("split: creating buffer: %w", err)
		}
		_ = r.host.SetBufferOption(buf, "buftype", "nofile")
		_ = r.host.SetBufferOption(buf, "swapfile", false)
		r.buf = buf
	}

	opts := v.Opts()
	err := r.adapter.Render(r.host, r.buf, render.Options{
		Messages:   v.Messages(),
		BufOptions: opts.Map(options.KeyBufOptions),
		Lang:       opts.String(options.KeyLang),
	})
	if err != nil {
		return fmt.Errorf("split: %w", err)
	}

	if !r.host.WindowValid(r.win) {
		size := defaultSize
		if n, ok := opts.Int("size"); ok {
			size = n
		}
		position := opts.String("position")
		if position == "" {
			position = "below"
		}

		cfg := host.WindowConfig{
			Split: position,
			Enter: opts.Bool("enter"),
		}
		// Size is thickness along the pinned edge.
		if position == "left" || position == "right" {
			cfg.Width = size
		} else {
			cfg.Height = size
		}

		win, err := r.host.OpenWindow(r.buf, cfg)
		if err != nil {
			return fmt.Errorf("split: opening window: %w", err)
		}
		r.win = win
		for name, value := range opts.Map(options.KeyWinOptions) {
			_ = r.host.SetWindowOption(win, name, value)
		}

		if opts.String(options.KeyType) == "split" {
			// Window geometry settles on a later tick; fix the cursor
			// then, and only if the window survived that long.
			h := r.host
			h.Schedule(func() {
				if h.WindowValid(win) {
					_ = h.SetCursor(win, 0, 0)
				}
			})
		}
	}
	return nil
}

func (r *Renderer) Hide(v *view.View) error {
	if r.host.WindowValid(r.win) {
		if err := r.host.CloseWindow(r.win); err != nil {
			return fmt.Errorf("split: closing window: %w", err)
		}
	}
	r.win = 0
	return nil
}

func (r *Renderer) Reset(v *view.View, old, newOpts options.Options) {
	r.Destroy(v)
}

func (r *Renderer) Destroy(*view.View) {
	if r.host.WindowValid(r.win) {
		_ = r.host.CloseWindow(r.win)
	}
	if r.host.BufferValid(r.buf) {
		_ = r.host.DeleteBuffer(r.buf)
	}
	r.win = 0
	r.buf = 0
}
