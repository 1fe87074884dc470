// Package style defines highlight groups and their resolved colors.
//
// Messages carry highlight group names; hosts resolve those names to
// concrete colors through the group table when painting. The table is
// seeded with the built-in herald groups and can be extended from
// configuration.
package style

import (
	"fmt"
	"sync"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Style is the resolved presentation of a highlight group.
type Style struct {
	Foreground colorful.Color
	Background colorful.Color
	HasFg      bool
	HasBg      bool
	Bold       bool
}

// Built-in highlight group names.
const (
	GroupInfo  = "HeraldInfo"
	GroupWarn  = "HeraldWarn"
	GroupError = "HeraldError"
	GroupTitle = "HeraldTitle"
)

// Table maps highlight group names to styles.
type Table struct {
	mu     sync.RWMutex
	groups map[string]Style
}

// NewTable creates a table seeded with the built-in groups.
func NewTable() *Table {
	t := &Table{groups: make(map[string]Style)}
	seed := map[string]string{
		GroupInfo:  "#8aadf4",
		GroupWarn:  "#eed49f",
		GroupError: "#ed8796",
		GroupTitle: "#c6a0f6",
	}
	for group, hex := range seed {
		// Seed colors are compile-time constants; a parse failure here
		// is a programming error.
		c, err := colorful.Hex(hex)
		if err != nil {
			panic(fmt.Sprintf("style: bad seed color %s=%s: %v", group, hex, err))
		}
		t.groups[group] = Style{Foreground: c, HasFg: true}
	}
	return t
}

// Define adds or replaces a group. Empty hex strings leave the
// corresponding channel unset.
func (t *Table) Define(group, fgHex, bgHex string, bold bool) error {
	var s Style
	if fgHex != "" {
		c, err := colorful.Hex(fgHex)
		if err != nil {
			return fmt.Errorf("style: group %s foreground: %w", group, err)
		}
		s.Foreground = c
		s.HasFg = true
	}
	if bgHex != "" {
		c, err := colorful.Hex(bgHex)
		if err != nil {
			return fmt.Errorf("style: group %s background: %w", group, err)
		}
		s.Background = c
		s.HasBg = true
	}
	s.Bold = bold

	t.mu.Lock()
	t.groups[group] = s
	t.mu.Unlock()
	return nil
}

// Lookup returns the style for a group.
func (t *Table) Lookup(group string) (Style, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	s, ok := t.groups[group]
	return s, ok
}

// Blend returns the group's foreground blended toward the background by
// amount in [0,1], for dimmed/aged message presentation.
func (t *Table) Blend(group string, amount float64) (colorful.Color, bool) {
	s, ok := t.Lookup(group)
	if !ok || !s.HasFg {
		return colorful.Color{}, false
	}
	if !s.HasBg {
		return s.Foreground, true
	}
	return s.Foreground.BlendLab(s.Background, amount), true
}

var defaultTable = NewTable()

// Default returns the process-wide group table.
func Default() *Table {
	return defaultTable
}
