// Package host abstracts the editor primitives herald renders through.
//
// A Host supplies buffers, windows, namespaced decorations, and a
// deferred-execution hook. All operations are fallible, side-effecting
// externals; callers treat them as best-effort. Two implementations
// ship with herald: an in-memory headless host for tests and demos, and
// an adapter over a live Neovim instance.
package host

import "errors"

// Buffer identifies a host text buffer. The zero value is "no buffer".
type Buffer int

// Window identifies a host window. The zero value is "no window".
type Window int

// Host errors.
var (
	// ErrInvalidBuffer indicates an operation on an unknown or deleted buffer.
	ErrInvalidBuffer = errors.New("invalid buffer")

	// ErrInvalidWindow indicates an operation on an unknown or closed window.
	ErrInvalidWindow = errors.New("invalid window")

	// ErrInactive indicates the host session is not currently active.
	ErrInactive = errors.New("host session not active")

	// ErrUnsupportedLanguage indicates no structured highlighter exists
	// for the requested language hint.
	ErrUnsupportedLanguage = errors.New("unsupported language")
)

// WindowConfig describes window placement.
//
// Relative/Anchor/Row/Col follow floating-window semantics; Split names
// a screen edge ("below", "right") for split-style windows. Hosts that
// cannot create true splits may approximate them with an edge-anchored
// full-width float.
type WindowConfig struct {
	Relative string
	Anchor   string
	Width    int
	Height   int
	Row      int
	Col      int
	Style    string
	ZIndex   int
	Enter    bool
	Split    string
}

// Host is the editor surface herald renders into.
type Host interface {
	// Active reports whether the host session is live. Rendering is a
	// no-op while inactive.
	Active() bool

	// CreateBuffer allocates a new buffer. Scratch buffers are unlisted
	// throwaway surfaces owned by a backend.
	CreateBuffer(scratch bool) (Buffer, error)

	// BufferValid reports whether b still exists.
	BufferValid(b Buffer) bool

	// SetBufferLines replaces lines [start, end) with the given lines.
	// end == -1 addresses end-of-buffer. Out-of-range indices clamp.
	SetBufferLines(b Buffer, start, end int, lines []string) error

	// BufferLines returns the buffer's current lines.
	BufferLines(b Buffer) ([]string, error)

	// LineCount returns the number of lines in the buffer.
	LineCount(b Buffer) (int, error)

	// SetBufferOption applies a buffer-local option verbatim.
	SetBufferOption(b Buffer, name string, value any) error

	// DeleteBuffer removes the buffer and any windows showing it.
	DeleteBuffer(b Buffer) error

	// Namespace returns the id for a named decoration namespace,
	// creating it on first use.
	Namespace(name string) int

	// AddHighlight applies a highlight group over [colStart, colEnd) on
	// a line, scoped to a namespace. colEnd == -1 extends to line end.
	AddHighlight(b Buffer, ns int, group string, line, colStart, colEnd int) error

	// ClearNamespace removes decorations in lines [startLine, endLine).
	// endLine == -1 addresses end-of-buffer.
	ClearNamespace(b Buffer, ns int, startLine, endLine int) error

	// SetBufferLanguage activates a structured highlighter for the
	// buffer. Returns ErrUnsupportedLanguage when none exists.
	SetBufferLanguage(b Buffer, lang string) error

	// SetFiletype tags the buffer with a plain syntax type. Never fails
	// for a valid buffer.
	SetFiletype(b Buffer, ft string) error

	// OpenWindow shows a buffer in a new window.
	OpenWindow(b Buffer, cfg WindowConfig) (Window, error)

	// WindowValid reports whether w is still open.
	WindowValid(w Window) bool

	// CloseWindow closes the window, leaving its buffer alone.
	CloseWindow(w Window) error

	// SetWindowOption applies a window-local option verbatim.
	SetWindowOption(w Window, name string, value any) error

	// SetCursor moves the window cursor to (line, col), zero-based.
	SetCursor(w Window, line, col int) error

	// Schedule queues fn to run on a later tick of the host's event
	// loop. Continuations are single-shot, unordered relative to other
	// deferred work, and must re-validate their targets when they run.
	Schedule(fn func())
}
