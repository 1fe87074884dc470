package message

import (
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/notkaj/herald/internal/host"
	"github.com/notkaj/herald/internal/style"
)

// Chunk is a run of text sharing one highlight group. An empty group
// renders undecorated.
type Chunk struct {
	Text  string
	Group string
}

// Text is a multi-line message built from highlight chunks.
type Text struct {
	level Level
	lines [][]Chunk
}

// NewText creates a message from plain text, one chunk per line,
// highlighted with the level's default group.
func NewText(level Level, text string) *Text {
	t := &Text{level: level}
	for _, line := range strings.Split(text, "\n") {
		t.lines = append(t.lines, []Chunk{{Text: line, Group: LevelGroup(level)}})
	}
	return t
}

// NewChunked creates a message from pre-split chunk lines.
func NewChunked(level Level, lines [][]Chunk) *Text {
	if len(lines) == 0 {
		lines = [][]Chunk{{}}
	}
	return &Text{level: level, lines: lines}
}

// LevelGroup maps a level to its built-in highlight group.
func LevelGroup(l Level) string {
	switch l {
	case LevelWarn:
		return style.GroupWarn
	case LevelError:
		return style.GroupError
	default:
		return style.GroupInfo
	}
}

// Level returns the message's severity.
func (t *Text) Level() Level { return t.level }

// Append adds a chunk to the message, splitting embedded newlines into
// new lines.
func (t *Text) Append(c Chunk) {
	if len(t.lines) == 0 {
		t.lines = [][]Chunk{{}}
	}
	parts := strings.Split(c.Text, "\n")
	for i, part := range parts {
		if i > 0 {
			t.lines = append(t.lines, []Chunk{})
		}
		if part == "" && i > 0 {
			continue
		}
		last := len(t.lines) - 1
		t.lines[last] = append(t.lines[last], Chunk{Text: part, Group: c.Group})
	}
}

// Prepend inserts a chunk at the start of the first line.
func (t *Text) Prepend(c Chunk) {
	if len(t.lines) == 0 {
		t.lines = [][]Chunk{{}}
	}
	t.lines[0] = append([]Chunk{c}, t.lines[0]...)
}

func (t *Text) lineText(i int) string {
	var b strings.Builder
	for _, c := range t.lines[i] {
		b.WriteString(c.Text)
	}
	return b.String()
}

func (t *Text) Height() int {
	if len(t.lines) == 0 {
		return 1
	}
	return len(t.lines)
}

func (t *Text) Width() int {
	w := 0
	for i := range t.lines {
		if n := runewidth.StringWidth(t.lineText(i)); n > w {
			w = n
		}
	}
	return w
}

func (t *Text) Content() string {
	parts := make([]string, len(t.lines))
	for i := range t.lines {
		parts[i] = t.lineText(i)
	}
	return strings.Join(parts, "\n")
}

// Lines returns the message's plain text lines.
func (t *Text) Lines() []string {
	out := make([]string, 0, len(t.lines))
	for i := range t.lines {
		out = append(out, t.lineText(i))
	}
	if len(out) == 0 {
		out = []string{""}
	}
	return out
}

func (t *Text) Render(h host.Host, b host.Buffer, ns int, line int) error {
	if err := h.SetBufferLines(b, line, line+t.Height(), t.Lines()); err != nil {
		return err
	}
	return t.Highlight(h, b, ns, line)
}

func (t *Text) Highlight(h host.Host, b host.Buffer, ns int, line int) error {
	for i, chunks := range t.lines {
		col := 0
		for _, c := range chunks {
			end := col + len(c.Text)
			if c.Group != "" && c.Text != "" {
				if err := h.AddHighlight(b, ns, c.Group, line+i, col, end); err != nil {
					return err
				}
			}
			col = end
		}
	}
	return nil
}

// Pad widens every line to at least width cells with trailing spaces.
func (t *Text) Pad(width int) {
	for i := range t.lines {
		n := runewidth.StringWidth(t.lineText(i))
		if n >= width {
			continue
		}
		t.lines[i] = append(t.lines[i], Chunk{Text: strings.Repeat(" ", width-n)})
	}
}

// Clone returns a deep copy, so formatting can decorate without
// touching the caller's message.
func (t *Text) Clone() *Text {
	out := &Text{level: t.level, lines: make([][]Chunk, len(t.lines))}
	for i, chunks := range t.lines {
		out.lines[i] = append([]Chunk(nil), chunks...)
	}
	return out
}
