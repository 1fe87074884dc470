// Package termhost implements host.Host on a tcell terminal screen.
//
// Buffers are plain in-memory line lists; windows are rectangles
// painted directly onto the screen. Floating windows anchor to the
// top-right corner and split windows become full-width bands at the
// bottom edge or full-height columns at the right edge. There is no
// structured highlighter, so SetBufferLanguage always reports
// host.ErrUnsupportedLanguage and callers fall back to filetypes.
package termhost

import (
	"sort"
	"sync"
	"unicode/utf8"

	"github.com/gdamore/tcell/v2"

	"github.com/notkaj/herald/internal/host"
	"github.com/notkaj/herald/internal/style"
)

type highlight struct {
	ns       int
	group    string
	line     int
	colStart int
	colEnd   int
}

type bufferState struct {
	lines      []string
	options    map[string]any
	filetype   string
	highlights []highlight
}

type windowState struct {
	buffer  host.Buffer
	cfg     host.WindowConfig
	options map[string]any
	curLine int
	curCol  int
	seq     int
}

// Term is a terminal-backed host.
type Term struct {
	mu sync.Mutex

	screen tcell.Screen
	styles *style.Table
	active bool

	buffers map[host.Buffer]*bufferState
	windows map[host.Window]*windowState
	nextBuf host.Buffer
	nextWin host.Window
	nextSeq int

	namespaces map[string]int
	nextNS     int

	queue []func()
}

// New creates a terminal host on a fresh tcell screen.
func New() (*Term, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	return NewWithScreen(screen), nil
}

// NewWithScreen creates a terminal host on the given screen. Tests
// pass a tcell simulation screen.
func NewWithScreen(screen tcell.Screen) *Term {
	return &Term{
		screen:     screen,
		styles:     style.Default(),
		buffers:    make(map[host.Buffer]*bufferState),
		windows:    make(map[host.Window]*windowState),
		namespaces: make(map[string]int),
	}
}

// Init initializes the screen and activates the host.
func (t *Term) Init() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.screen.Init(); err != nil {
		return err
	}
	t.active = true
	return nil
}

// Shutdown deactivates the host and restores the terminal.
func (t *Term) Shutdown() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.active = false
	t.screen.Fini()
}

// Screen exposes the underlying tcell screen for event polling.
func (t *Term) Screen() tcell.Screen {
	return t.screen
}

// SetStyles replaces the highlight table used when painting.
func (t *Term) SetStyles(table *style.Table) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.styles = table
	t.paint()
}

func (t *Term) Active() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.active
}

func (t *Term) CreateBuffer(scratch bool) (host.Buffer, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.active {
		return 0, host.ErrInactive
	}
	t.nextBuf++
	b := t.nextBuf
	t.buffers[b] = &bufferState{
		lines:   []string{""},
		options: map[string]any{},
	}
	return b, nil
}

func (t *Term) BufferValid(b host.Buffer) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.buffers[b]
	return ok
}

func (t *Term) SetBufferLines(b host.Buffer, start, end int, lines []string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	state, ok := t.buffers[b]
	if !ok {
		return host.ErrInvalidBuffer
	}

	n := len(state.lines)
	if end == -1 || end > n {
		end = n
	}
	if start < 0 {
		start = 0
	}
	if start > n {
		start = n
	}
	if end < start {
		end = start
	}

	replaced := make([]string, 0, start+len(lines)+n-end)
	replaced = append(replaced, state.lines[:start]...)
	replaced = append(replaced, lines...)
	replaced = append(replaced, state.lines[end:]...)
	if len(replaced) == 0 {
		replaced = []string{""}
	}
	state.lines = replaced

	t.paint()
	return nil
}

func (t *Term) BufferLines(b host.Buffer) ([]string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	state, ok := t.buffers[b]
	if !ok {
		return nil, host.ErrInvalidBuffer
	}
	out := make([]string, len(state.lines))
	copy(out, state.lines)
	return out, nil
}

func (t *Term) LineCount(b host.Buffer) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	state, ok := t.buffers[b]
	if !ok {
		return 0, host.ErrInvalidBuffer
	}
	return len(state.lines), nil
}

func (t *Term) SetBufferOption(b host.Buffer, name string, value any) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	state, ok := t.buffers[b]
	if !ok {
		return host.ErrInvalidBuffer
	}
	state.options[name] = value
	return nil
}

func (t *Term) DeleteBuffer(b host.Buffer) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.buffers[b]; !ok {
		return host.ErrInvalidBuffer
	}
	delete(t.buffers, b)
	for w, state := range t.windows {
		if state.buffer == b {
			delete(t.windows, w)
		}
	}
	t.paint()
	return nil
}

func (t *Term) Namespace(name string) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	if id, ok := t.namespaces[name]; ok {
		return id
	}
	t.nextNS++
	t.namespaces[name] = t.nextNS
	return t.nextNS
}

func (t *Term) AddHighlight(b host.Buffer, ns int, group string, line, colStart, colEnd int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	state, ok := t.buffers[b]
	if !ok {
		return host.ErrInvalidBuffer
	}
	state.highlights = append(state.highlights, highlight{
		ns:       ns,
		group:    group,
		line:     line,
		colStart: colStart,
		colEnd:   colEnd,
	})
	t.paint()
	return nil
}

func (t *Term) ClearNamespace(b host.Buffer, ns int, startLine, endLine int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	state, ok := t.buffers[b]
	if !ok {
		return host.ErrInvalidBuffer
	}
	kept := state.highlights[:0]
	for _, hl := range state.highlights {
		inRange := hl.line >= startLine && (endLine == -1 || hl.line < endLine)
		if hl.ns == ns && inRange {
			continue
		}
		kept = append(kept, hl)
	}
	state.highlights = kept
	t.paint()
	return nil
}

func (t *Term) SetBufferLanguage(b host.Buffer, lang string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.buffers[b]; !ok {
		return host.ErrInvalidBuffer
	}
	return host.ErrUnsupportedLanguage
}

func (t *Term) SetFiletype(b host.Buffer, ft string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	state, ok := t.buffers[b]
	if !ok {
		return host.ErrInvalidBuffer
	}
	state.filetype = ft
	return nil
}

func (t *Term) OpenWindow(b host.Buffer, cfg host.WindowConfig) (host.Window, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.active {
		return 0, host.ErrInactive
	}
	if _, ok := t.buffers[b]; !ok {
		return 0, host.ErrInvalidBuffer
	}
	t.nextWin++
	t.nextSeq++
	w := t.nextWin
	t.windows[w] = &windowState{
		buffer:  b,
		cfg:     cfg,
		options: map[string]any{},
		seq:     t.nextSeq,
	}
	t.paint()
	return w, nil
}

func (t *Term) WindowValid(w host.Window) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.windows[w]
	return ok
}

func (t *Term) CloseWindow(w host.Window) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.windows[w]; !ok {
		return host.ErrInvalidWindow
	}
	delete(t.windows, w)
	t.paint()
	return nil
}

func (t *Term) SetWindowOption(w host.Window, name string, value any) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	state, ok := t.windows[w]
	if !ok {
		return host.ErrInvalidWindow
	}
	state.options[name] = value
	return nil
}

func (t *Term) SetCursor(w host.Window, line, col int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	state, ok := t.windows[w]
	if !ok {
		return host.ErrInvalidWindow
	}
	state.curLine = line
	state.curCol = col
	t.paint()
	return nil
}

func (t *Term) Schedule(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.queue = append(t.queue, fn)
}

// Tick runs the continuations queued so far. Work scheduled while a
// continuation runs waits for the next tick. Called once per event
// loop iteration.
func (t *Term) Tick() {
	t.mu.Lock()
	pending := t.queue
	t.queue = nil
	t.mu.Unlock()

	for _, fn := range pending {
		fn()
	}
}

// rect is a clipped screen region.
type rect struct {
	x, y, w, h int
}

// layout computes where a window paints given the current screen size.
func layout(cfg host.WindowConfig, sw, sh int) rect {
	w := cfg.Width
	h := cfg.Height
	if w <= 0 || w > sw {
		w = sw
	}
	if h <= 0 || h > sh {
		h = sh
	}

	switch cfg.Split {
	case "below":
		return rect{x: 0, y: sh - h, w: sw, h: h}
	case "above":
		return rect{x: 0, y: 0, w: sw, h: h}
	case "right":
		return rect{x: sw - w, y: 0, w: w, h: sh}
	case "left":
		return rect{x: 0, y: 0, w: w, h: sh}
	}

	// Floating: NE anchored unless the config gives explicit coords.
	x := sw - w
	y := 0
	if cfg.Anchor == "" || cfg.Row > 0 || cfg.Col > 0 {
		if cfg.Col > 0 {
			x = cfg.Col
		}
		y = cfg.Row
	}
	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}
	return rect{x: x, y: y, w: w, h: h}
}

// paint redraws every window. Callers hold the lock. Stacking order
// is ZIndex then open order, so later popups land on top.
func (t *Term) paint() {
	if !t.active {
		return
	}

	sw, sh := t.screen.Size()
	t.screen.Clear()

	order := make([]host.Window, 0, len(t.windows))
	for w := range t.windows {
		order = append(order, w)
	}
	sort.Slice(order, func(i, j int) bool {
		a, b := t.windows[order[i]], t.windows[order[j]]
		if a.cfg.ZIndex != b.cfg.ZIndex {
			return a.cfg.ZIndex < b.cfg.ZIndex
		}
		return a.seq < b.seq
	})

	for _, w := range order {
		state := t.windows[w]
		buf, ok := t.buffers[state.buffer]
		if !ok {
			continue
		}
		t.paintWindow(state, buf, layout(state.cfg, sw, sh))
	}

	t.screen.Show()
}

func (t *Term) paintWindow(win *windowState, buf *bufferState, r rect) {
	base := tcellStyle(style.Style{})

	for row := 0; row < r.h; row++ {
		line := ""
		if row < len(buf.lines) {
			line = buf.lines[row]
		}
		t.paintLine(line, buf.highlights, row, r, base)
	}

	if win.cfg.Enter {
		t.screen.ShowCursor(r.x+win.curCol, r.y+win.curLine)
	}
}

// paintLine draws one buffer line clipped to the window rect,
// applying highlight styles by byte column.
func (t *Term) paintLine(line string, highlights []highlight, row int, r rect, base tcell.Style) {
	x := 0
	byteIdx := 0
	for _, ch := range line {
		if x >= r.w {
			break
		}
		st := base
		for _, hl := range highlights {
			if hl.line != row {
				continue
			}
			if byteIdx >= hl.colStart && (hl.colEnd == -1 || byteIdx < hl.colEnd) {
				if groupStyle, ok := t.styles.Lookup(hl.group); ok {
					st = tcellStyle(groupStyle)
				}
			}
		}
		t.screen.SetContent(r.x+x, r.y+row, ch, nil, st)
		x++
		byteIdx += utf8.RuneLen(ch)
	}
	for ; x < r.w; x++ {
		t.screen.SetContent(r.x+x, r.y+row, ' ', nil, base)
	}
}

// tcellStyle converts a herald style to a tcell style.
func tcellStyle(s style.Style) tcell.Style {
	st := tcell.StyleDefault
	if s.HasFg {
		r, g, b := s.Foreground.RGB255()
		st = st.Foreground(tcell.NewRGBColor(int32(r), int32(g), int32(b)))
	}
	if s.HasBg {
		r, g, b := s.Background.RGB255()
		st = st.Background(tcell.NewRGBColor(int32(r), int32(g), int32(b)))
	}
	if s.Bold {
		st = st.Bold(true)
	}
	return st
}

var _ host.Host = (*Term)(nil)
