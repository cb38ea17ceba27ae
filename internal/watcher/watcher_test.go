package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func waitFor(t *testing.T, ch <-chan string, want string) {
	t.Helper()
	deadline := time.After(3 * time.Second)
	for {
		select {
		case got := <-ch:
			if filepath.Clean(got) == filepath.Clean(want) {
				return
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %s", want)
		}
	}
}

func TestWatcherDroppedContractIngested(t *testing.T) {
	dir := t.TempDir()
	dropped := make(chan string, 8)

	w := New([]string{dir}, []string{".txt"},
		func(path string) { dropped <- path }, nil,
		WithDebounce(50*time.Millisecond))
	if err := w.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	path := filepath.Join(dir, "contract.txt")
	if err := os.WriteFile(path, []byte("agreement text"), 0644); err != nil {
		t.Fatal(err)
	}
	waitFor(t, dropped, path)
}

func TestWatcherExtensionFilter(t *testing.T) {
	dir := t.TempDir()
	dropped := make(chan string, 8)

	w := New([]string{dir}, []string{".pdf"},
		func(path string) { dropped <- path }, nil,
		WithDebounce(50*time.Millisecond))
	if err := w.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	select {
	case got := <-dropped:
		t.Fatalf("non-contract file %s triggered ingestion", got)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcherRemoveCallback(t *testing.T) {
	dir := t.TempDir()
	dropped := make(chan string, 8)
	removed := make(chan string, 8)

	path := filepath.Join(dir, "contract.txt")
	if err := os.WriteFile(path, []byte("agreement"), 0644); err != nil {
		t.Fatal(err)
	}

	w := New([]string{dir}, []string{".txt"},
		func(p string) { dropped <- p },
		func(p string) { removed <- p },
		WithDebounce(50*time.Millisecond))
	if err := w.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	waitFor(t, removed, path)
}

func TestWatcherSyncExistingFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "existing.txt")
	if err := os.WriteFile(path, []byte("already here"), 0644); err != nil {
		t.Fatal(err)
	}

	dropped := make(chan string, 8)
	w := New([]string{dir}, []string{".txt"},
		func(p string) { dropped <- p }, nil,
		WithDebounce(50*time.Millisecond))
	if err := w.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	w.SyncExistingFiles()
	waitFor(t, dropped, path)
}

func TestWatcherCreatesMissingFolder(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "drop")
	w := New([]string{dir}, nil, nil, nil)
	if err := w.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if _, err := os.Stat(dir); err != nil {
		t.Errorf("drop folder not created: %v", err)
	}
	if got := w.Folders(); len(got) != 1 {
		t.Errorf("folders = %v", got)
	}
}

func TestWatcherStopIdempotent(t *testing.T) {
	w := New([]string{t.TempDir()}, nil, nil, nil)
	if err := w.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	w.Stop()
	w.Stop()
}
