// Package format decorates and orders messages before display.
//
// Format is a pure transform: the input message is never mutated, and
// identical inputs produce identical outputs, which makes results safe
// to memoize. Align reorders and pads a message list in place.
package format

import (
	"fmt"
	"sort"
	"time"

	"github.com/bluele/gcache"

	"github.com/notkaj/herald/internal/message"
	"github.com/notkaj/herald/internal/style"
)

// Formatter applies format specs with an LRU memo over recent results.
type Formatter struct {
	cache gcache.Cache
	now   func() time.Time
}

// New creates a formatter memoizing up to size results.
func New(size int) *Formatter {
	return &Formatter{
		cache: gcache.New(size).LRU().Build(),
		now:   time.Now,
	}
}

// Format applies spec to msg and returns the decorated message.
//
// Recognized spec keys: "level" (bool, prepend a [level] tag),
// "timestamp" (bool or time layout string), "pad_to" (minimum width).
// A nil or empty spec returns msg unchanged. Non-Text messages pass
// through untouched.
func (f *Formatter) Format(msg message.Message, spec map[string]any) message.Message {
	if len(spec) == 0 {
		return msg
	}
	text, ok := msg.(*message.Text)
	if !ok {
		return msg
	}

	// Timestamped output is time-dependent and not memoizable.
	layout := timestampLayout(spec)
	cacheable := layout == ""

	var key string
	if cacheable {
		key = fmt.Sprintf("%d\x00%s\x00%v", text.Level(), text.Content(), spec)
		if hit, err := f.cache.Get(key); err == nil {
			if m, ok := hit.(message.Message); ok {
				return m
			}
		}
	}

	out := text.Clone()
	if layout != "" {
		out.Prepend(message.Chunk{Text: f.now().Format(layout) + " ", Group: style.GroupTitle})
	}
	if b, _ := spec["level"].(bool); b {
		tag := "[" + text.Level().String() + "] "
		out.Prepend(message.Chunk{Text: tag, Group: message.LevelGroup(text.Level())})
	}
	if w, ok := specInt(spec, "pad_to"); ok {
		out.Pad(w)
	}

	if cacheable {
		_ = f.cache.Set(key, out)
	}
	return out
}

// Align reorders and pads messages in place.
//
// Spec forms: the string "reverse" flips buffer order; a map accepts
// "reverse" (bool), "sort" ("level" orders most severe first), and
// "min_width" (pad every message to a shared minimum width).
func (f *Formatter) Align(msgs []message.Message, spec any) {
	switch v := spec.(type) {
	case string:
		if v == "reverse" {
			reverse(msgs)
		}
	case map[string]any:
		if b, _ := v["reverse"].(bool); b {
			reverse(msgs)
		}
		if s, _ := v["sort"].(string); s == "level" {
			sort.SliceStable(msgs, func(i, j int) bool {
				return levelOf(msgs[i]) > levelOf(msgs[j])
			})
		}
		if w, ok := specInt(v, "min_width"); ok {
			for _, m := range msgs {
				if t, ok := m.(*message.Text); ok {
					t.Pad(w)
				}
			}
		}
	}
}

func timestampLayout(spec map[string]any) string {
	switch v := spec["timestamp"].(type) {
	case bool:
		if v {
			return "15:04:05"
		}
	case string:
		return v
	}
	return ""
}

func specInt(spec map[string]any, key string) (int, bool) {
	switch v := spec[key].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

func levelOf(m message.Message) message.Level {
	if t, ok := m.(*message.Text); ok {
		return t.Level()
	}
	return message.LevelInfo
}

func reverse(msgs []message.Message) {
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
}

var std = New(256)

// Format applies spec through the process-wide formatter.
func Format(msg message.Message, spec map[string]any) message.Message {
	return std.Format(msg, spec)
}

// Align reorders msgs through the process-wide formatter.
func Align(msgs []message.Message, spec any) {
	std.Align(msgs, spec)
}
