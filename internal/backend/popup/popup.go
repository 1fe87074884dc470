// Package popup renders a view into a floating window anchored over
// the editor, sized to its messages.
package popup

import (
	"fmt"

	"github.com/notkaj/herald/internal/host"
	"github.com/notkaj/herald/internal/options"
	"github.com/notkaj/herald/internal/registry"
	"github.com/notkaj/herald/internal/render"
	"github.com/notkaj/herald/internal/view"
)

// Size bounds for auto-sized popups; overridable per view via the
// "max_height"/"max_width" options.
const (
	defaultMaxHeight = 20
	defaultMaxWidth  = 80
)

// Renderer is the floating-window backend.
type Renderer struct {
	view.BaseRenderer

	host    host.Host
	adapter *render.Adapter

	buf host.Buffer
	win host.Window
}

// Factory builds popup renderers sharing one render adapter.
func Factory(a *render.Adapter) registry.Factory {
	return func(h host.Host, _ options.Options) (view.Renderer, error) {
		return &Renderer{host: h, adapter: a}, nil
	}
}

func (r *Renderer) Available() bool {
	return r.host != nil && r.host.Active()
}

func (r *Renderer) Show(v *view.View) error {
	if err := r.ensureBuffer(); err != nil {
		return fmt.Errorf("popup: %w", err)
	}

	opts := v.Opts()
	err := r.adapter.Render(r.host, r.buf, render.Options{
		Messages:   v.Messages(),
		BufOptions: opts.Map(options.KeyBufOptions),
		Lang:       opts.String(options.KeyLang),
	})
	if err != nil {
		return fmt.Errorf("popup: %w", err)
	}

	cfg := r.windowConfig(v)
	if !r.host.WindowValid(r.win) {
		win, err := r.host.OpenWindow(r.buf, cfg)
		if err != nil {
			return fmt.Errorf("popup: opening window: %w", err)
		}
		r.win = win
		for name, value := range opts.Map(options.KeyWinOptions) {
			_ = r.host.SetWindowOption(win, name, value)
		}
	}
	return nil
}

func (r *Renderer) Hide(v *view.View) error {
	if r.host.WindowValid(r.win) {
		if err := r.host.CloseWindow(r.win); err != nil {
			return fmt.Errorf("popup: closing window: %w", err)
		}
	}
	r.win = 0
	return nil
}

// Reset tears the window down so the next Show rebuilds it against the
// new options.
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

func (r *Renderer) ensureBuffer() error {
	if r.host.BufferValid(r.buf) {
		return nil
	}
	buf, err := r.host.CreateBuffer(true)
	if err != nil {
		return fmt.Errorf("creating buffer: %w", err)
	}
	_ = r.host.SetBufferOption(buf, "buftype", "nofile")
	_ = r.host.SetBufferOption(buf, "bufhidden", "hide")
	_ = r.host.SetBufferOption(buf, "swapfile", false)
	r.buf = buf
	return nil
}

func (r *Renderer) windowConfig(v *view.View) host.WindowConfig {
	opts := v.Opts()

	maxHeight := defaultMaxHeight
	if n, ok := opts.Int("max_height"); ok {
		maxHeight = n
	}
	maxWidth := defaultMaxWidth
	if n, ok := opts.Int("max_width"); ok {
		maxWidth = n
	}

	return host.WindowConfig{
		Relative: "editor",
		Anchor:   "NE",
		Width:    clamp(v.Width(nil), 1, maxWidth),
		Height:   clamp(v.Height(nil), 1, maxHeight),
		Row:      1,
		Col:      -1,
		Style:    "minimal",
		ZIndex:   60,
	}
}

func clamp(x, lo, hi int) int {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
