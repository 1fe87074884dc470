// Package view implements the view lifecycle: an ordered message
// buffer, the layered option recompute, and the display pipeline with
// its destroy-and-recreate error recovery.
//
// A View is never discarded once created. Backend failures during
// display tear down backend-owned resources (windows, buffers) and the
// next display rebuilds them; the logical view object and its identity
// survive.
package view

import (
	"errors"
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/notkaj/herald/internal/format"
	"github.com/notkaj/herald/internal/host"
	"github.com/notkaj/herald/internal/logging"
	"github.com/notkaj/herald/internal/message"
	"github.com/notkaj/herald/internal/options"
)

var nextID atomic.Int64

// View owns a message buffer and drives one renderer.
type View struct {
	id       int64
	host     host.Host
	renderer Renderer
	mode     InstanceMode

	// Effective options; always merge(viewOpts, routeOpts) after any
	// CheckOptions call.
	opts      options.Options
	viewOpts  options.Options
	routeOpts options.Options

	messages   []message.Message
	visible    bool
	errorCount int
}

// New constructs a view around a renderer. The options become the
// view's static baseline; the caller's table is deep-copied.
func New(h host.Host, r Renderer, opts options.Options) *View {
	v := &View{
		id:        nextID.Add(1),
		host:      h,
		renderer:  r,
		mode:      r.Mode(),
		opts:      options.Clone(opts),
		viewOpts:  options.Clone(opts),
		routeOpts: options.Options{},
	}
	r.UpdateOptions(v)
	return v
}

// ID returns the view's process-wide identity.
func (v *View) ID() int64 { return v.id }

// Host returns the host the view renders through.
func (v *View) Host() host.Host { return v.host }

// Mode returns the view's cache-sharing granularity.
func (v *View) Mode() InstanceMode { return v.mode }

// Opts returns the effective options. Callers must not mutate the
// returned table; use SetRouteOpts for per-call overrides.
func (v *View) Opts() options.Options { return v.opts }

// Messages returns the buffered messages in push order.
func (v *View) Messages() []message.Message { return v.messages }

// Visible reports the last-known display state.
func (v *View) Visible() bool { return v.visible }

// ErrorCount returns the consecutive display-failure count.
func (v *View) ErrorCount() int { return v.errorCount }

// Available reports whether the view's backend can run.
func (v *View) Available() bool { return v.renderer.Available() }

// PushOpts controls message admission.
type PushOpts struct {
	// Format runs each message through the formatting pipeline using
	// the view's "format" option before buffering.
	Format bool
}

// Push appends messages to the buffer without clearing it.
func (v *View) Push(msgs []message.Message, po PushOpts) {
	for _, m := range msgs {
		if m == nil {
			continue
		}
		if po.Format {
			m = format.Format(m, v.opts.Map(options.KeyFormat))
		}
		v.messages = append(v.messages, m)
	}
}

// PushMessage appends a single message.
func (v *View) PushMessage(m message.Message, po PushOpts) {
	v.Push([]message.Message{m}, po)
}

// Clear empties the buffer and drops route-level overrides.
func (v *View) Clear() {
	v.messages = nil
	v.routeOpts = options.Options{}
}

// Dismiss retracts the caller's interest in the buffered messages.
// The base behavior is identical to Clear.
func (v *View) Dismiss() {
	v.Clear()
}

// Set atomically replaces the buffer: Clear followed by Push.
func (v *View) Set(msgs []message.Message, po PushOpts) {
	v.Clear()
	v.Push(msgs, po)
}

// SetRouteOpts installs per-call overrides merged on top of the static
// options at the next CheckOptions.
func (v *View) SetRouteOpts(o options.Options) {
	v.routeOpts = options.Clone(o)
}

// CheckOptions recomputes the effective options from the static and
// route layers, runs the UpdateOptions hook, and fires Reset when the
// result differs from the previous effective set.
func (v *View) CheckOptions() {
	old := v.opts
	v.opts = options.Options(options.DeepMerge(map[string]any(options.Clone(v.viewOpts)), v.routeOpts))
	v.renderer.UpdateOptions(v)
	if !options.Equal(old, v.opts) {
		v.renderer.Reset(v, old, v.opts)
	}
}

// Display runs one frame of the pipeline: align, recompute options,
// show or hide. Backend failures are absorbed here; callers only
// observe the boolean return and the view's Visible state.
func (v *View) Display() bool {
	if len(v.messages) > 0 {
		format.Align(v.messages, v.opts[options.KeyAlign])
		v.CheckOptions()

		if err := v.safeShow(); err != nil {
			v.errorCount++
			fields := []zap.Field{
				zap.String("view", v.opts.String(options.KeyView)),
				zap.String("backend", v.opts.String(options.KeyBackend)),
				zap.Int64("id", v.id),
				zap.Int("error_count", v.errorCount),
				zap.Error(err),
			}
			if logging.DebugEnabled() {
				fields = append(fields, zap.Stack("stack"))
			}
			logging.Error("view display failed", fields...)

			// Tear down partially-created resources so the next
			// Display rebuilds from a clean slate.
			v.Destroy()
			return true
		}

		v.errorCount = 0
		v.visible = true
		return true
	}

	if v.visible {
		if err := v.safeHide(); err != nil {
			logging.Warn("view hide failed",
				zap.String("view", v.opts.String(options.KeyView)),
				zap.Error(err))
		}
		v.visible = false
	}
	return true
}

// safeShow invokes the renderer's Show under fault isolation. Panics
// become errors; the missing-override sentinel stays fatal.
func (v *View) safeShow() (err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok && errors.Is(e, ErrNotRendered) {
				panic(r)
			}
			err = fmt.Errorf("show panicked: %v", r)
		}
	}()

	err = v.renderer.Show(v)
	if errors.Is(err, ErrNotRendered) {
		panic(err)
	}
	return err
}

// safeHide mirrors safeShow for the teardown direction.
func (v *View) safeHide() (err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok && errors.Is(e, ErrNotRendered) {
				panic(r)
			}
			err = fmt.Errorf("hide panicked: %v", r)
		}
	}()

	err = v.renderer.Hide(v)
	if errors.Is(err, ErrNotRendered) {
		panic(err)
	}
	return err
}

// Destroy releases backend-owned resources. Idempotent; the view
// itself stays registered and reusable.
func (v *View) Destroy() {
	v.renderer.Destroy(v)
	v.visible = false
}

// Height sums message heights. A nil list aggregates the current buffer.
func (v *View) Height(msgs []message.Message) int {
	if msgs == nil {
		msgs = v.messages
	}
	total := 0
	for _, m := range msgs {
		total += m.Height()
	}
	return total
}

// Width takes the maximum message width. A nil list aggregates the
// current buffer.
func (v *View) Width(msgs []message.Message) int {
	if msgs == nil {
		msgs = v.messages
	}
	w := 0
	for _, m := range msgs {
		if mw := m.Width(); mw > w {
			w = mw
		}
	}
	return w
}

// Content joins buffered message text with newlines, in buffer order.
func (v *View) Content() string {
	out := ""
	for i, m := range v.messages {
		if i > 0 {
			out += "\n"
		}
		out += m.Content()
	}
	return out
}
