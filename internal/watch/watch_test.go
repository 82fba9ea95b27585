package watch

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestWatcherReportsMatchingWrites(t *testing.T) {
	w, err := New(func(p string) bool { return strings.HasSuffix(p, ".mal") })
	if err != nil {
		t.Skip("fsnotify not supported: ", err)
	}
	defer w.Close()
	w.Debounce = 20 * time.Millisecond

	dir := t.TempDir()
	if err := w.Add(dir); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	batches := make(chan []string, 4)
	go func() { _ = w.Run(ctx, func(paths []string) { batches <- paths }) }()

	target := filepath.Join(dir, "k.mal")
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(target, []byte("fn f() {}"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case paths := <-batches:
		if len(paths) != 1 || paths[0] != target {
			t.Fatalf("expected only %s, got %v", target, paths)
		}
	case <-ctx.Done():
		t.Fatal("timeout waiting for change batch")
	}
}

func TestWatcherStopsWithContext(t *testing.T) {
	w, err := New(nil)
	if err != nil {
		t.Skip("fsnotify not supported: ", err)
	}
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx, func([]string) {}) }()
	cancel()

	select {
	case err := <-done:
		if err != context.Canceled {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestAddMissingPath(t *testing.T) {
	w, err := New(nil)
	if err != nil {
		t.Skip("fsnotify not supported: ", err)
	}
	defer w.Close()

	if err := w.Add(filepath.Join(t.TempDir(), "missing")); !os.IsNotExist(err) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestWatcherIgnoresUnnamedSiblings(t *testing.T) {
	w, err := New(func(p string) bool { return strings.HasSuffix(p, ".mal") })
	if err != nil {
		t.Skip("fsnotify not supported: ", err)
	}
	defer w.Close()
	w.Debounce = 20 * time.Millisecond

	dir := t.TempDir()
	named := filepath.Join(dir, "a.mal")
	sibling := filepath.Join(dir, "b.mal")
	for _, p := range []string{named, sibling} {
		if err := os.WriteFile(p, []byte("fn f() {}"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Add(named); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	batches := make(chan []string, 4)
	go func() { _ = w.Run(ctx, func(paths []string) { batches <- paths }) }()

	if err := os.WriteFile(sibling, []byte("fn g() {}"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(named, []byte("fn h() {}"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case paths := <-batches:
		if len(paths) != 1 || paths[0] != named {
			t.Fatalf("expected only %s, got %v", named, paths)
		}
	case <-ctx.Done():
		t.Fatal("timeout waiting for change batch")
	}
}

func TestWantedPaths(t *testing.T) {
	w := &Watcher{
		files: map[string]struct{}{filepath.Join("src", "a.rs"): {}},
		roots: []string{filepath.Join("lib", "k")},
	}

	tests := []struct {
		path string
		want bool
	}{
		{filepath.Join("src", "a.rs"), true},
		{filepath.Join("src", "b.rs"), false},
		{filepath.Join("lib", "k", "x.rs"), true},
		{filepath.Join("lib", "k", "deep", "y.rs"), true},
		{filepath.Join("lib", "kk", "x.rs"), false},
	}
	for _, tt := range tests {
		if got := w.wanted(tt.path); got != tt.want {
			t.Errorf("wanted(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}

	w.roots = append(w.roots, ".")
	if !w.wanted(filepath.Join("src", "b.rs")) {
		t.Fatalf("expected every relative path below . to be wanted")
	}
}
