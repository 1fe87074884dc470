// Package nvimhost adapts a live Neovim session to host.Host.
//
// The adapter is a thin mapping onto the msgpack-rpc API: buffers and
// windows are Neovim's own handles, highlights go through namespaced
// nvim_buf_add_highlight, and structured highlighting delegates to
// vim.treesitter. The embedder owns the *nvim.Nvim connection and its
// event loop; deferred work queued with Schedule runs when the
// embedder calls Tick, typically from a notification handler.
package nvimhost

import (
	"sync"

	"github.com/neovim/go-client/nvim"

	"github.com/notkaj/herald/internal/host"
)

// Nvim is a host backed by a Neovim session.
type Nvim struct {
	mu sync.Mutex

	v      *nvim.Nvim
	closed bool

	namespaces map[string]int
	queue      []func()
}

// New wraps an attached Neovim client.
func New(v *nvim.Nvim) *Nvim {
	return &Nvim{
		v:          v,
		namespaces: make(map[string]int),
	}
}

// Shutdown marks the session inactive. The connection itself belongs
// to the embedder and is not closed here.
func (n *Nvim) Shutdown() {
	n.mu.Lock()
	n.closed = true
	n.mu.Unlock()
}

func (n *Nvim) Active() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.v != nil && !n.closed
}

func (n *Nvim) CreateBuffer(scratch bool) (host.Buffer, error) {
	if !n.Active() {
		return 0, host.ErrInactive
	}
	buf, err := n.v.CreateBuffer(false, scratch)
	if err != nil {
		return 0, err
	}
	return host.Buffer(buf), nil
}

func (n *Nvim) BufferValid(b host.Buffer) bool {
	if !n.Active() {
		return false
	}
	ok, err := n.v.IsBufferValid(nvim.Buffer(b))
	return err == nil && ok
}

func (n *Nvim) SetBufferLines(b host.Buffer, start, end int, lines []string) error {
	data := make([][]byte, len(lines))
	for i, line := range lines {
		data[i] = []byte(line)
	}
	// strict false so out-of-range indices clamp.
	return n.v.SetBufferLines(nvim.Buffer(b), start, end, false, data)
}

func (n *Nvim) BufferLines(b host.Buffer) ([]string, error) {
	data, err := n.v.BufferLines(nvim.Buffer(b), 0, -1, false)
	if err != nil {
		return nil, err
	}
	lines := make([]string, len(data))
	for i, raw := range data {
		lines[i] = string(raw)
	}
	return lines, nil
}

func (n *Nvim) LineCount(b host.Buffer) (int, error) {
	return n.v.BufferLineCount(nvim.Buffer(b))
}

func (n *Nvim) SetBufferOption(b host.Buffer, name string, value any) error {
	return n.v.SetBufferOption(nvim.Buffer(b), name, value)
}

func (n *Nvim) DeleteBuffer(b host.Buffer) error {
	return n.v.DeleteBuffer(nvim.Buffer(b), map[string]bool{"force": true})
}

func (n *Nvim) Namespace(name string) int {
	n.mu.Lock()
	defer n.mu.Unlock()

	if id, ok := n.namespaces[name]; ok {
		return id
	}
	id, err := n.v.CreateNamespace(name)
	if err != nil {
		return 0
	}
	n.namespaces[name] = id
	return id
}

func (n *Nvim) AddHighlight(b host.Buffer, ns int, group string, line, colStart, colEnd int) error {
	_, err := n.v.AddBufferHighlight(nvim.Buffer(b), ns, group, line, colStart, colEnd)
	return err
}

func (n *Nvim) ClearNamespace(b host.Buffer, ns int, startLine, endLine int) error {
	return n.v.ClearBufferNamespace(nvim.Buffer(b), ns, startLine, endLine)
}

func (n *Nvim) SetBufferLanguage(b host.Buffer, lang string) error {
	const code = `
local buf, lang = ...
return (pcall(vim.treesitter.start, buf, lang))
`
	var ok bool
	if err := n.v.ExecLua(code, &ok, int(b), lang); err != nil {
		return err
	}
	if !ok {
		return host.ErrUnsupportedLanguage
	}
	return nil
}

func (n *Nvim) SetFiletype(b host.Buffer, ft string) error {
	return n.v.SetBufferOption(nvim.Buffer(b), "filetype", ft)
}

func (n *Nvim) OpenWindow(b host.Buffer, cfg host.WindowConfig) (host.Window, error) {
	if !n.Active() {
		return 0, host.ErrInactive
	}
	wcfg, err := n.windowConfig(cfg)
	if err != nil {
		return 0, err
	}
	win, err := n.v.OpenWindow(nvim.Buffer(b), cfg.Enter, wcfg)
	if err != nil {
		return 0, err
	}
	return host.Window(win), nil
}

// windowConfig maps placement onto nvim_open_win. This client build
// predates the nvim_open_win split field, so splits are approximated
// with edge-pinned full-width floats, the same trick GUI frontends
// use for message panes.
func (n *Nvim) windowConfig(cfg host.WindowConfig) (*nvim.WindowConfig, error) {
	out := &nvim.WindowConfig{
		Relative: cfg.Relative,
		Anchor:   cfg.Anchor,
		Width:    cfg.Width,
		Height:   cfg.Height,
		Row:      float64(cfg.Row),
		Col:      float64(cfg.Col),
		Style:    cfg.Style,
		ZIndex:   cfg.ZIndex,
	}
	if cfg.Split != "" {
		var dims [2]int
		if err := n.v.ExecLua(`return {vim.o.columns, vim.o.lines}`, &dims); err != nil {
			return nil, err
		}
		cols, rows := dims[0], dims[1]

		out.Relative = "editor"
		out.Anchor = "NW"
		out.Style = "minimal"
		switch cfg.Split {
		case "above":
			out.Width, out.Height = cols, cfg.Height
			out.Row, out.Col = 0, 0
		case "left":
			out.Width, out.Height = cfg.Width, rows
			out.Row, out.Col = 0, 0
		case "right":
			out.Width, out.Height = cfg.Width, rows
			out.Row, out.Col = 0, float64(cols-cfg.Width)
		default: // below
			out.Width, out.Height = cols, cfg.Height
			out.Row, out.Col = float64(rows-cfg.Height), 0
		}
	}
	if out.Relative == "" {
		out.Relative = "editor"
	}
	return out, nil
}

func (n *Nvim) WindowValid(w host.Window) bool {
	if !n.Active() {
		return false
	}
	ok, err := n.v.IsWindowValid(nvim.Window(w))
	return err == nil && ok
}

func (n *Nvim) CloseWindow(w host.Window) error {
	return n.v.ExecLua(`vim.api.nvim_win_close(..., true)`, nil, int(w))
}

func (n *Nvim) SetWindowOption(w host.Window, name string, value any) error {
	return n.v.SetWindowOption(nvim.Window(w), name, value)
}

func (n *Nvim) SetCursor(w host.Window, line, col int) error {
	// nvim_win_set_cursor rows are 1-based.
	return n.v.SetWindowCursor(nvim.Window(w), [2]int{line + 1, col})
}

func (n *Nvim) Schedule(fn func()) {
	n.mu.Lock()
	n.queue = append(n.queue, fn)
	n.mu.Unlock()
}

// Tick runs queued continuations. Work scheduled during a tick waits
// for the next one.
func (n *Nvim) Tick() {
	n.mu.Lock()
	pending := n.queue
	n.queue = nil
	n.mu.Unlock()

	for _, fn := range pending {
		fn()
	}
}

var _ host.Host = (*Nvim)(nil)
