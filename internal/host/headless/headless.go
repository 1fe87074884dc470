// Package headless provides an in-memory host for tests and demos.
package headless

import (
	"strings"

	"github.com/notkaj/herald/internal/host"
)

// Highlight records one decoration applied to a buffer.
type Highlight struct {
	Namespace int
	Group     string
	Line      int
	ColStart  int
	ColEnd    int
}

type bufferState struct {
	lines      []string
	opts       map[string]any
	highlights []Highlight
	language   string
	filetype   string
}

type windowState struct {
	buf     host.Buffer
	cfg     host.WindowConfig
	opts    map[string]any
	curLine int
	curCol  int
}

// Host is an in-memory host.Host. It is not safe for concurrent use;
// herald's control flow is single-threaded by contract.
type Host struct {
	active  bool
	nextBuf host.Buffer
	nextWin host.Window
	nextNS  int
	bufs    map[host.Buffer]*bufferState
	wins    map[host.Window]*windowState
	nsIDs   map[string]int
	langs   map[string]bool
	queue   []func()
}

// New creates an active headless host.
func New() *Host {
	return &Host{
		active: true,
		bufs:   make(map[host.Buffer]*bufferState),
		wins:   make(map[host.Window]*windowState),
		nsIDs:  make(map[string]int),
		langs:  make(map[string]bool),
	}
}

// SetActive toggles session liveness.
func (h *Host) SetActive(active bool) { h.active = active }

// SupportLanguage registers a language the fake structured highlighter
// accepts. Unregistered languages fail with ErrUnsupportedLanguage.
func (h *Host) SupportLanguage(lang string) { h.langs[lang] = true }

// Tick runs and drops all scheduled continuations. Continuations
// scheduled while draining run on the next tick.
func (h *Host) Tick() {
	queue := h.queue
	h.queue = nil
	for _, fn := range queue {
		fn()
	}
}

// Pending returns the number of scheduled continuations not yet run.
func (h *Host) Pending() int { return len(h.queue) }

func (h *Host) Active() bool { return h.active }

func (h *Host) CreateBuffer(scratch bool) (host.Buffer, error) {
	h.nextBuf++
	b := h.nextBuf
	state := &bufferState{lines: []string{""}, opts: make(map[string]any)}
	if scratch {
		state.opts["buftype"] = "nofile"
	}
	h.bufs[b] = state
	return b, nil
}

func (h *Host) BufferValid(b host.Buffer) bool {
	_, ok := h.bufs[b]
	return ok
}

func (h *Host) buffer(b host.Buffer) (*bufferState, error) {
	state, ok := h.bufs[b]
	if !ok {
		return nil, host.ErrInvalidBuffer
	}
	return state, nil
}

func clampLine(n, max int) int {
	if n < 0 {
		return 0
	}
	if n > max {
		return max
	}
	return n
}

func (h *Host) SetBufferLines(b host.Buffer, start, end int, lines []string) error {
	state, err := h.buffer(b)
	if err != nil {
		return err
	}

	if end == -1 {
		end = len(state.lines)
	}
	start = clampLine(start, len(state.lines))
	end = clampLine(end, len(state.lines))
	if end < start {
		end = start
	}

	replaced := make([]string, 0, len(state.lines)-(end-start)+len(lines))
	replaced = append(replaced, state.lines[:start]...)
	replaced = append(replaced, lines...)
	replaced = append(replaced, state.lines[end:]...)
	state.lines = replaced
	return nil
}

func (h *Host) BufferLines(b host.Buffer) ([]string, error) {
	state, err := h.buffer(b)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(state.lines))
	copy(out, state.lines)
	return out, nil
}

// BufferContent joins the buffer's lines for test assertions.
func (h *Host) BufferContent(b host.Buffer) string {
	lines, err := h.BufferLines(b)
	if err != nil {
		return ""
	}
	return strings.Join(lines, "\n")
}

func (h *Host) LineCount(b host.Buffer) (int, error) {
	state, err := h.buffer(b)
	if err != nil {
		return 0, err
	}
	return len(state.lines), nil
}

func (h *Host) SetBufferOption(b host.Buffer, name string, value any) error {
	state, err := h.buffer(b)
	if err != nil {
		return err
	}
	state.opts[name] = value
	return nil
}

// BufferOption returns a buffer-local option for test assertions.
func (h *Host) BufferOption(b host.Buffer, name string) (any, bool) {
	state, ok := h.bufs[b]
	if !ok {
		return nil, false
	}
	v, ok := state.opts[name]
	return v, ok
}

func (h *Host) DeleteBuffer(b host.Buffer) error {
	if _, ok := h.bufs[b]; !ok {
		return host.ErrInvalidBuffer
	}
	delete(h.bufs, b)
	for w, state := range h.wins {
		if state.buf == b {
			delete(h.wins, w)
		}
	}
	return nil
}

func (h *Host) Namespace(name string) int {
	if id, ok := h.nsIDs[name]; ok {
		return id
	}
	h.nextNS++
	h.nsIDs[name] = h.nextNS
	return h.nextNS
}

func (h *Host) AddHighlight(b host.Buffer, ns int, group string, line, colStart, colEnd int) error {
	state, err := h.buffer(b)
	if err != nil {
		return err
	}
	state.highlights = append(state.highlights, Highlight{
		Namespace: ns,
		Group:     group,
		Line:      line,
		ColStart:  colStart,
		ColEnd:    colEnd,
	})
	return nil
}

func (h *Host) ClearNamespace(b host.Buffer, ns int, startLine, endLine int) error {
	state, err := h.buffer(b)
	if err != nil {
		return err
	}
	if endLine == -1 {
		endLine = len(state.lines)
	}

	kept := state.highlights[:0]
	for _, hl := range state.highlights {
		if hl.Namespace == ns && hl.Line >= startLine && hl.Line < endLine {
			continue
		}
		kept = append(kept, hl)
	}
	state.highlights = kept
	return nil
}

// Highlights returns the buffer's decorations for test assertions.
func (h *Host) Highlights(b host.Buffer) []Highlight {
	state, ok := h.bufs[b]
	if !ok {
		return nil
	}
	out := make([]Highlight, len(state.highlights))
	copy(out, state.highlights)
	return out
}

func (h *Host) SetBufferLanguage(b host.Buffer, lang string) error {
	state, err := h.buffer(b)
	if err != nil {
		return err
	}
	if !h.langs[lang] {
		return host.ErrUnsupportedLanguage
	}
	state.language = lang
	return nil
}

// BufferLanguage returns the active structured-highlighter language.
func (h *Host) BufferLanguage(b host.Buffer) string {
	if state, ok := h.bufs[b]; ok {
		return state.language
	}
	return ""
}

func (h *Host) SetFiletype(b host.Buffer, ft string) error {
	state, err := h.buffer(b)
	if err != nil {
		return err
	}
	state.filetype = ft
	return nil
}

// Filetype returns the plain syntax tag for test assertions.
func (h *Host) Filetype(b host.Buffer) string {
	if state, ok := h.bufs[b]; ok {
		return state.filetype
	}
	return ""
}

func (h *Host) OpenWindow(b host.Buffer, cfg host.WindowConfig) (host.Window, error) {
	if _, ok := h.bufs[b]; !ok {
		return 0, host.ErrInvalidBuffer
	}
	h.nextWin++
	w := h.nextWin
	h.wins[w] = &windowState{buf: b, cfg: cfg, opts: make(map[string]any)}
	return w, nil
}

func (h *Host) WindowValid(w host.Window) bool {
	_, ok := h.wins[w]
	return ok
}

func (h *Host) CloseWindow(w host.Window) error {
	if _, ok := h.wins[w]; !ok {
		return host.ErrInvalidWindow
	}
	delete(h.wins, w)
	return nil
}

func (h *Host) SetWindowOption(w host.Window, name string, value any) error {
	state, ok := h.wins[w]
	if !ok {
		return host.ErrInvalidWindow
	}
	state.opts[name] = value
	return nil
}

// WindowOption returns a window-local option for test assertions.
func (h *Host) WindowOption(w host.Window, name string) (any, bool) {
	state, ok := h.wins[w]
	if !ok {
		return nil, false
	}
	v, ok := state.opts[name]
	return v, ok
}

// WindowConfig returns the config a window was opened with.
func (h *Host) WindowConfig(w host.Window) (host.WindowConfig, bool) {
	state, ok := h.wins[w]
	if !ok {
		return host.WindowConfig{}, false
	}
	return state.cfg, true
}

// WindowBuffer returns the buffer shown in a window.
func (h *Host) WindowBuffer(w host.Window) (host.Buffer, bool) {
	state, ok := h.wins[w]
	if !ok {
		return 0, false
	}
	return state.buf, true
}

// Windows returns the ids of all open windows.
func (h *Host) Windows() []host.Window {
	out := make([]host.Window, 0, len(h.wins))
	for w := range h.wins {
		out = append(out, w)
	}
	return out
}

func (h *Host) SetCursor(w host.Window, line, col int) error {
	state, ok := h.wins[w]
	if !ok {
		return host.ErrInvalidWindow
	}
	state.curLine = line
	state.curCol = col
	return nil
}

// Cursor returns a window's cursor position for test assertions.
func (h *Host) Cursor(w host.Window) (line, col int, ok bool) {
	state, found := h.wins[w]
	if !found {
		return 0, 0, false
	}
	return state.curLine, state.curCol, true
}

func (h *Host) Schedule(fn func()) {
	h.queue = append(h.queue, fn)
}
