package style

import "testing"

func TestBuiltinGroupsSeeded(t *testing.T) {
	table := NewTable()
	for _, group := range []string{GroupInfo, GroupWarn, GroupError, GroupTitle} {
		s, ok := table.Lookup(group)
		if !ok {
			t.Errorf("group %s missing", group)
			continue
		}
		if !s.HasFg {
			t.Errorf("group %s has no foreground", group)
		}
	}
}

func TestDefine(t *testing.T) {
	table := NewTable()

	if err := table.Define("HeraldDim", "#888888", "#000000", true); err != nil {
		t.Fatal(err)
	}
	s, ok := table.Lookup("HeraldDim")
	if !ok {
		t.Fatal("defined group not found")
	}
	if !s.HasFg || !s.HasBg || !s.Bold {
		t.Errorf("unexpected style %+v", s)
	}

	if err := table.Define("HeraldBad", "not-a-color", "", false); err == nil {
		t.Error("expected error for invalid hex")
	}
}

func TestBlend(t *testing.T) {
	table := NewTable()
	if err := table.Define("HeraldFade", "#ffffff", "#000000", false); err != nil {
		t.Fatal(err)
	}

	full, ok := table.Blend("HeraldFade", 0)
	if !ok {
		t.Fatal("blend failed")
	}
	faded, _ := table.Blend("HeraldFade", 0.8)
	if full == faded {
		t.Error("blend amount had no effect")
	}

	// No background: foreground passes through at any amount.
	fg, ok := table.Blend(GroupInfo, 0.5)
	if !ok {
		t.Fatal("blend on fg-only group failed")
	}
	if s, _ := table.Lookup(GroupInfo); s.Foreground != fg {
		t.Error("fg-only blend changed the color")
	}

	if _, ok := table.Blend("NoSuchGroup", 0.5); ok {
		t.Error("blend of unknown group reported ok")
	}
}
