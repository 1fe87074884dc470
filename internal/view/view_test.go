package view

import (
	"errors"
	"testing"

	"github.com/notkaj/herald/internal/host/headless"
	"github.com/notkaj/herald/internal/message"
	"github.com/notkaj/herald/internal/options"
)

// fakeRenderer records lifecycle calls for assertions.
type fakeRenderer struct {
	BaseRenderer
	mode      InstanceMode
	available bool

	showErr   error
	showPanic any
	hidePanic any

	shows     int
	hides     int
	resets    int
	destroys  int
	lastOld   options.Options
	lastNew   options.Options
	updates   int
	updatedAt []options.Options
}

func newFakeRenderer() *fakeRenderer {
	return &fakeRenderer{available: true}
}

func (r *fakeRenderer) Show(v *View) error {
	r.shows++
	if r.showPanic != nil {
		panic(r.showPanic)
	}
	return r.showErr
}

func (r *fakeRenderer) Hide(v *View) error {
	r.hides++
	if r.hidePanic != nil {
		panic(r.hidePanic)
	}
	return nil
}

func (r *fakeRenderer) Available() bool { return r.available }

func (r *fakeRenderer) UpdateOptions(v *View) {
	r.updates++
	r.updatedAt = append(r.updatedAt, options.Clone(v.Opts()))
}

func (r *fakeRenderer) Reset(v *View, old, newOpts options.Options) {
	r.resets++
	r.lastOld = old
	r.lastNew = newOpts
}

func (r *fakeRenderer) Destroy(v *View) { r.destroys++ }

func (r *fakeRenderer) Mode() InstanceMode {
	return r.mode
}

func newTestView(t *testing.T, r Renderer, opts options.Options) *View {
	t.Helper()
	return New(headless.New(), r, opts)
}

func TestIDsMonotonic(t *testing.T) {
	a := newTestView(t, newFakeRenderer(), nil)
	b := newTestView(t, newFakeRenderer(), nil)
	if b.ID() <= a.ID() {
		t.Errorf("ids not monotonic: %d then %d", a.ID(), b.ID())
	}
}

func TestConstructionCopiesOptions(t *testing.T) {
	caller := options.Options{"win_options": map[string]any{"wrap": true}}
	v := newTestView(t, newFakeRenderer(), caller)

	caller["win_options"].(map[string]any)["wrap"] = false
	if v.Opts().Map("win_options")["wrap"] != true {
		t.Error("view options must be deep-copied at construction")
	}
}

func TestConstructionInvokesUpdateOptions(t *testing.T) {
	r := newFakeRenderer()
	newTestView(t, r, nil)
	if r.updates != 1 {
		t.Errorf("updates = %d, want 1", r.updates)
	}
}

func TestClearIdempotent(t *testing.T) {
	v := newTestView(t, newFakeRenderer(), nil)
	v.Push([]message.Message{message.NewText(message.LevelInfo, "a")}, PushOpts{})

	v.Clear()
	if len(v.Messages()) != 0 {
		t.Fatal("first clear should empty the buffer")
	}
	v.Clear()
	if len(v.Messages()) != 0 {
		t.Fatal("second clear should be a no-op, not an error")
	}
}

func TestPushSetEquivalence(t *testing.T) {
	msgs := []message.Message{
		message.NewText(message.LevelInfo, "one"),
		message.NewText(message.LevelWarn, "two"),
	}

	a := newTestView(t, newFakeRenderer(), nil)
	a.Push([]message.Message{message.NewText(message.LevelError, "stale")}, PushOpts{})
	a.Set(msgs, PushOpts{})

	b := newTestView(t, newFakeRenderer(), nil)
	b.Push([]message.Message{message.NewText(message.LevelError, "stale")}, PushOpts{})
	b.Clear()
	b.Push(msgs, PushOpts{})

	if a.Content() != b.Content() {
		t.Errorf("set: %q, clear+push: %q", a.Content(), b.Content())
	}
	if len(a.Messages()) != len(b.Messages()) {
		t.Errorf("lengths differ: %d vs %d", len(a.Messages()), len(b.Messages()))
	}
}

func TestClearResetsRouteOpts(t *testing.T) {
	r := newFakeRenderer()
	v := newTestView(t, r, options.Options{"view": "notify"})

	v.SetRouteOpts(options.Options{"extra": true})
	v.CheckOptions()
	if v.Opts()["extra"] != true {
		t.Fatal("route opts should merge into effective opts")
	}

	v.Clear()
	v.CheckOptions()
	if _, ok := v.Opts()["extra"]; ok {
		t.Error("clear should drop route overrides")
	}
}

func TestHeightWidthAggregation(t *testing.T) {
	v := newTestView(t, newFakeRenderer(), nil)
	v.Push([]message.Message{
		message.NewText(message.LevelInfo, "a\nb"),             // height 2, width 1
		message.NewText(message.LevelInfo, "0123456789\nx\ny"), // height 3, width 10
		message.NewText(message.LevelInfo, "1234567"),          // height 1, width 7
	}, PushOpts{})

	if got := v.Height(nil); got != 6 {
		t.Errorf("Height() = %d, want 6", got)
	}
	if got := v.Width(nil); got != 10 {
		t.Errorf("Width() = %d, want 10", got)
	}
}

func TestContentJoinsInOrder(t *testing.T) {
	v := newTestView(t, newFakeRenderer(), nil)
	v.Push([]message.Message{
		message.NewText(message.LevelInfo, "first"),
		message.NewText(message.LevelInfo, "second"),
	}, PushOpts{})

	if got := v.Content(); got != "first\nsecond" {
		t.Errorf("Content() = %q", got)
	}
}

func TestCheckOptionsResetFiring(t *testing.T) {
	r := newFakeRenderer()
	v := newTestView(t, r, options.Options{"view": "notify", "n": 1})

	// Unchanged merge: no reset.
	v.CheckOptions()
	if r.resets != 0 {
		t.Fatalf("resets = %d, want 0 for unchanged options", r.resets)
	}

	// Route override changes the merge: exactly one reset.
	v.SetRouteOpts(options.Options{"n": 2})
	v.CheckOptions()
	if r.resets != 1 {
		t.Fatalf("resets = %d, want 1 after drift", r.resets)
	}
	if r.lastOld["n"] != 1 {
		t.Errorf("old options n = %v, want 1", r.lastOld["n"])
	}
	if v, ok := r.lastNew.Int("n"); !ok || v != 2 {
		t.Errorf("new options n = %v, want 2", r.lastNew["n"])
	}

	// Same overrides again: merge stable, no further reset.
	v.CheckOptions()
	if r.resets != 1 {
		t.Errorf("resets = %d, want still 1", r.resets)
	}
}

func TestDisplayShowsAndHides(t *testing.T) {
	r := newFakeRenderer()
	v := newTestView(t, r, nil)

	v.Push([]message.Message{message.NewText(message.LevelInfo, "hi")}, PushOpts{})
	if ok := v.Display(); !ok {
		t.Fatal("Display should report success")
	}
	if !v.Visible() || r.shows != 1 {
		t.Fatalf("visible=%v shows=%d after display", v.Visible(), r.shows)
	}

	v.Clear()
	if ok := v.Display(); !ok {
		t.Fatal("Display should report success on empty buffer")
	}
	if v.Visible() || r.hides != 1 {
		t.Fatalf("visible=%v hides=%d after empty display", v.Visible(), r.hides)
	}

	// Already hidden: no second hide.
	v.Display()
	if r.hides != 1 {
		t.Errorf("hides = %d, want 1", r.hides)
	}
}

func TestDisplayErrorIsolation(t *testing.T) {
	r := newFakeRenderer()
	r.showErr = errors.New("backend exploded")
	v := newTestView(t, r, nil)
	v.Push([]message.Message{message.NewText(message.LevelInfo, "hi")}, PushOpts{})

	if ok := v.Display(); !ok {
		t.Fatal("Display must absorb backend errors and still succeed")
	}
	if v.Visible() {
		t.Error("failed show should not mark the view visible")
	}
	if v.ErrorCount() != 1 {
		t.Errorf("ErrorCount() = %d, want 1", v.ErrorCount())
	}
	if r.destroys != 1 {
		t.Errorf("destroys = %d, want 1 (resources torn down for clean rebuild)", r.destroys)
	}

	// The view stays usable: a subsequent display retries cleanly.
	r.showErr = nil
	if ok := v.Display(); !ok {
		t.Fatal("Display after recovery should succeed")
	}
	if !v.Visible() {
		t.Error("view should be visible after recovery")
	}
	if v.ErrorCount() != 0 {
		t.Errorf("ErrorCount() = %d, want reset to 0", v.ErrorCount())
	}
}

func TestDisplayPanicIsolation(t *testing.T) {
	r := newFakeRenderer()
	r.showPanic = "index out of range"
	v := newTestView(t, r, nil)
	v.Push([]message.Message{message.NewText(message.LevelInfo, "hi")}, PushOpts{})

	if ok := v.Display(); !ok {
		t.Fatal("Display must absorb backend panics")
	}
	if v.ErrorCount() != 1 || r.destroys != 1 {
		t.Errorf("errorCount=%d destroys=%d, want 1/1", v.ErrorCount(), r.destroys)
	}
}

func TestDisplayHidePanicIsolation(t *testing.T) {
	r := newFakeRenderer()
	v := newTestView(t, r, nil)
	v.Push([]message.Message{message.NewText(message.LevelInfo, "hi")}, PushOpts{})
	if ok := v.Display(); !ok || !v.Visible() {
		t.Fatal("setup display failed")
	}

	r.hidePanic = "window already closed"
	v.Clear()
	if ok := v.Display(); !ok {
		t.Fatal("Display must absorb panics from the hide path too")
	}
	if v.Visible() {
		t.Error("view should be marked hidden even when hide panics")
	}
}

func TestMissingOverrideIsFatal(t *testing.T) {
	// A renderer that never overrides Show is a programming error, not
	// a recoverable backend failure.
	v := newTestView(t, &struct{ BaseRenderer }{}, nil)
	v.Push([]message.Message{message.NewText(message.LevelInfo, "hi")}, PushOpts{})

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic for missing show override")
		}
		if err, ok := r.(error); !ok || !errors.Is(err, ErrNotRendered) {
			t.Errorf("panic value = %v, want ErrNotRendered", r)
		}
	}()
	v.Display()
}

func TestDestroyIdempotent(t *testing.T) {
	r := newFakeRenderer()
	v := newTestView(t, r, nil)

	v.Destroy()
	v.Destroy()
	if r.destroys != 2 {
		t.Errorf("destroys = %d, want renderer invoked each time", r.destroys)
	}
	if v.Visible() {
		t.Error("destroy should clear visibility")
	}
}

func TestPushFormats(t *testing.T) {
	v := newTestView(t, newFakeRenderer(), options.Options{
		"format": map[string]any{"level": true},
	})

	v.PushMessage(message.NewText(message.LevelError, "bad"), PushOpts{Format: true})
	if got := v.Content(); got != "[error] bad" {
		t.Errorf("Content() = %q, want formatted message", got)
	}

	v.PushMessage(message.NewText(message.LevelError, "raw"), PushOpts{})
	msgs := v.Messages()
	if msgs[1].Content() != "raw" {
		t.Errorf("unformatted push altered message: %q", msgs[1].Content())
	}
}
