// Package message defines the message model herald views buffer and
// render. The core only relies on the Message interface; Text is the
// standard chunked implementation.
package message

import "github.com/notkaj/herald/internal/host"

// Message is a renderable unit of notification content.
type Message interface {
	// Height returns the number of buffer lines the message occupies.
	Height() int

	// Width returns the widest line in display cells.
	Width() int

	// Content returns the message's plain text, lines joined by newlines.
	Content() string

	// Render writes the message's text and decorations into the target
	// buffer starting at line.
	Render(h host.Host, b host.Buffer, ns int, line int) error

	// Highlight re-applies decorations only, leaving buffer text alone.
	Highlight(h host.Host, b host.Buffer, ns int, line int) error
}

// Level classifies a message's severity.
type Level int

const (
	LevelInfo Level = iota
	LevelWarn
	LevelError
)

// String returns the level name.
func (l Level) String() string {
	switch l {
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "unknown"
	}
}
