package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatcherReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "herald.toml")
	if err := os.WriteFile(path, []byte("[views.notify]\nbackend = \"popup\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	s := NewStore()
	if err := s.Load(path); err != nil {
		t.Fatal(err)
	}

	w, err := Watch(s, path, 10*time.Millisecond)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	changed := make(chan struct{}, 1)
	cancel := s.Subscribe(func() {
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	defer cancel()

	if err := os.WriteFile(path, []byte("[views.notify]\nbackend = \"split\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	deadline := time.After(5 * time.Second)
	for {
		select {
		case <-changed:
			if s.Options("notify")["backend"] == "split" {
				return
			}
		case <-deadline:
			t.Fatalf("store never picked up the change, backend = %v",
				s.Options("notify")["backend"])
		}
	}
}

func TestWatcherCloseIdempotentPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "herald.toml")
	if err := os.WriteFile(path, []byte(""), 0o644); err != nil {
		t.Fatal(err)
	}

	w, err := Watch(NewStore(), path, 0)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}
