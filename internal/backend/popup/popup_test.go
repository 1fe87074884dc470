package popup

import (
	"testing"

	"github.com/notkaj/herald/internal/host/headless"
	"github.com/notkaj/herald/internal/message"
	"github.com/notkaj/herald/internal/options"
	"github.com/notkaj/herald/internal/render"
	"github.com/notkaj/herald/internal/view"
)

func newPopupView(t *testing.T, h *headless.Host, opts options.Options) *view.View {
	t.Helper()
	r, err := Factory(render.New())(h, opts)
	if err != nil {
		t.Fatalf("factory: %v", err)
	}
	return view.New(h, r, opts)
}

func TestShowCreatesWindowAndRenders(t *testing.T) {
	h := headless.New()
	v := newPopupView(t, h, options.Options{
		"win_options": map[string]any{"wrap": true},
	})

	v.Push([]message.Message{message.NewText(message.LevelInfo, "hello\nworld")}, view.PushOpts{})
	if !v.Display() {
		t.Fatal("Display failed")
	}

	wins := h.Windows()
	if len(wins) != 1 {
		t.Fatalf("windows = %d, want 1", len(wins))
	}
	win := wins[0]

	cfg, _ := h.WindowConfig(win)
	if cfg.Height != 2 {
		t.Errorf("window height = %d, want message height 2", cfg.Height)
	}
	if cfg.Width != 5 {
		t.Errorf("window width = %d, want message width 5", cfg.Width)
	}
	if val, ok := h.WindowOption(win, "wrap"); !ok || val != true {
		t.Error("win_options should be applied to the created window")
	}

	buf, _ := h.WindowBuffer(win)
	if got := h.BufferContent(buf); got != "hello\nworld" {
		t.Errorf("buffer content = %q", got)
	}
}

func TestHideClosesWindowKeepsBuffer(t *testing.T) {
	h := headless.New()
	v := newPopupView(t, h, nil)

	v.Push([]message.Message{message.NewText(message.LevelInfo, "x")}, view.PushOpts{})
	v.Display()
	buf, _ := h.WindowBuffer(h.Windows()[0])

	v.Clear()
	v.Display()

	if len(h.Windows()) != 0 {
		t.Error("hide should close the popup window")
	}
	if !h.BufferValid(buf) {
		t.Error("hide keeps the scratch buffer for the next show")
	}
}

func TestRedisplayReusesWindow(t *testing.T) {
	h := headless.New()
	v := newPopupView(t, h, nil)

	v.Set([]message.Message{message.NewText(message.LevelInfo, "a")}, view.PushOpts{})
	v.Display()
	v.Push([]message.Message{message.NewText(message.LevelInfo, "b")}, view.PushOpts{})
	v.Display()

	if len(h.Windows()) != 1 {
		t.Errorf("windows = %d, want the existing window reused", len(h.Windows()))
	}
}

func TestHeightClamped(t *testing.T) {
	h := headless.New()
	v := newPopupView(t, h, options.Options{"max_height": 3})

	v.Push([]message.Message{message.NewText(message.LevelInfo, "1\n2\n3\n4\n5\n6")}, view.PushOpts{})
	v.Display()

	cfg, _ := h.WindowConfig(h.Windows()[0])
	if cfg.Height != 3 {
		t.Errorf("height = %d, want clamped to 3", cfg.Height)
	}
}

func TestOptionDriftRebuildsWindow(t *testing.T) {
	h := headless.New()
	v := newPopupView(t, h, options.Options{"view": "notify"})

	v.Push([]message.Message{message.NewText(message.LevelInfo, "x")}, view.PushOpts{})
	v.Display()
	first := h.Windows()[0]

	v.SetRouteOpts(options.Options{"max_width": 10})
	v.Push(nil, view.PushOpts{})
	v.Display()

	wins := h.Windows()
	if len(wins) != 1 {
		t.Fatalf("windows = %d, want 1", len(wins))
	}
	if wins[0] == first {
		t.Error("option drift should rebuild the window")
	}
}

func TestDestroyReleasesEverything(t *testing.T) {
	h := headless.New()
	v := newPopupView(t, h, nil)

	v.Push([]message.Message{message.NewText(message.LevelInfo, "x")}, view.PushOpts{})
	v.Display()

	v.Destroy()
	if len(h.Windows()) != 0 {
		t.Error("destroy should close windows")
	}

	// Idempotent and safe to repeat.
	v.Destroy()

	// And the view remains usable afterwards.
	v.Push([]message.Message{message.NewText(message.LevelInfo, "again")}, view.PushOpts{})
	if !v.Display() {
		t.Fatal("Display after destroy failed")
	}
	if len(h.Windows()) != 1 {
		t.Error("view should rebuild cleanly after destroy")
	}
}

func TestUnavailableWhenHostInactive(t *testing.T) {
	h := headless.New()
	h.SetActive(false)
	r, _ := Factory(render.New())(h, nil)
	if r.Available() {
		t.Error("popup should be unavailable while the host session is down")
	}
}
