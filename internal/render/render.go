// Package render projects buffered messages into a target buffer.
//
// The adapter is backend-agnostic: popup and split backends hand it a
// buffer plus the view's messages and it handles text, decorations,
// and syntax hinting uniformly. It also keeps the process-wide map of
// which messages were last rendered into which buffer, so other
// subsystems can answer "what message produced this line" without
// re-walking buffer text.
package render

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/notkaj/herald/internal/host"
	"github.com/notkaj/herald/internal/logging"
	"github.com/notkaj/herald/internal/message"
)

// DefaultNamespace scopes herald decorations in target buffers.
const DefaultNamespace = "herald"

// Options controls one render pass.
type Options struct {
	// Offset is the first buffer line the messages own. Lines above it
	// are untouched.
	Offset int

	// HighlightOnly re-applies decorations without rewriting text,
	// for example after an external edit that preserved content.
	HighlightOnly bool

	// Messages to project, in order.
	Messages []message.Message

	// BufOptions are applied to the target verbatim, once per render.
	BufOptions map[string]any

	// Lang is an optional syntax hint for the target buffer.
	Lang string

	// Namespace overrides DefaultNamespace when set.
	Namespace string
}

// Adapter renders messages and tracks per-buffer render state.
type Adapter struct {
	mu sync.RWMutex

	// rendered maps buffer identity to the messages last projected
	// into it. Entries are never evicted; the host's buffer ids are
	// process-lifetime and the map stays small in practice.
	rendered map[host.Buffer]renderState

	// structured records buffers where a structured highlighter is
	// already active, so later renders don't downgrade them.
	structured map[host.Buffer]bool
}

type renderState struct {
	offset int
	msgs   []message.Message
}

// New creates an adapter with empty render state.
func New() *Adapter {
	return &Adapter{
		rendered:   make(map[host.Buffer]renderState),
		structured: make(map[host.Buffer]bool),
	}
}

// Render runs one pass. It is a no-op when the host session is not
// active or the buffer no longer exists.
func (a *Adapter) Render(h host.Host, b host.Buffer, opts Options) error {
	if h == nil || !h.Active() {
		return nil
	}
	if !h.BufferValid(b) {
		return nil
	}

	for name, value := range opts.BufOptions {
		if err := h.SetBufferOption(b, name, value); err != nil {
			logging.Debug("buffer option rejected",
				zap.String("option", name), zap.Error(err))
		}
	}

	a.applyLang(h, b, opts.Lang)

	nsName := opts.Namespace
	if nsName == "" {
		nsName = DefaultNamespace
	}
	ns := h.Namespace(nsName)

	if err := h.ClearNamespace(b, ns, opts.Offset, -1); err != nil {
		return fmt.Errorf("render: clearing decorations: %w", err)
	}

	line := opts.Offset
	if opts.HighlightOnly {
		for _, m := range opts.Messages {
			if err := m.Highlight(h, b, ns, line); err != nil {
				return fmt.Errorf("render: highlight at line %d: %w", line, err)
			}
			line += m.Height()
		}
	} else {
		if err := h.SetBufferLines(b, opts.Offset, -1, nil); err != nil {
			return fmt.Errorf("render: truncating buffer: %w", err)
		}
		for _, m := range opts.Messages {
			if err := m.Render(h, b, ns, line); err != nil {
				return fmt.Errorf("render: message at line %d: %w", line, err)
			}
			line += m.Height()
		}
	}

	a.mu.Lock()
	a.rendered[b] = renderState{
		offset: opts.Offset,
		msgs:   append([]message.Message(nil), opts.Messages...),
	}
	a.mu.Unlock()
	return nil
}

// applyLang attempts a structured highlighter for the hint, falling
// back to a plain syntax tag. The fallback path never fails.
func (a *Adapter) applyLang(h host.Host, b host.Buffer, lang string) {
	if lang == "" {
		return
	}
	a.mu.RLock()
	already := a.structured[b]
	a.mu.RUnlock()
	if already {
		return
	}

	if err := h.SetBufferLanguage(b, lang); err != nil {
		logging.Debug("structured highlighter unavailable, using filetype",
			zap.String("lang", lang), zap.Error(err))
		_ = h.SetFiletype(b, lang)
		return
	}

	a.mu.Lock()
	a.structured[b] = true
	a.mu.Unlock()
}

// Rendered returns the messages last rendered into a buffer.
func (a *Adapter) Rendered(b host.Buffer) []message.Message {
	a.mu.RLock()
	defer a.mu.RUnlock()
	state := a.rendered[b]
	out := make([]message.Message, len(state.msgs))
	copy(out, state.msgs)
	return out
}

// MessageAt returns the message that produced the given buffer line on
// the last render, along with the line's offset within that message.
func (a *Adapter) MessageAt(b host.Buffer, line int) (message.Message, int, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	state := a.rendered[b]
	cur := state.offset
	for _, m := range state.msgs {
		next := cur + m.Height()
		if line >= cur && line < next {
			return m, line - cur, true
		}
		cur = next
	}
	return nil, 0, false
}
