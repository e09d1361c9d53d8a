package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

// recorder collects callback invocations behind a mutex.
type recorder struct {
	mu      sync.Mutex
	ingests []string
	removes []string
}

func (r *recorder) ingest(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ingests = append(r.ingests, path)
}

func (r *recorder) remove(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.removes = append(r.removes, path)
}

func (r *recorder) ingestCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.ingests)
}

func (r *recorder) removeCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.removes)
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(20 * time.Millisecond)
	}
	return cond()
}

func TestWatcherIngestsNewDocument(t *testing.T) {
	dir := t.TempDir()
	rec := &recorder{}
	w := New([]string{dir}, []string{".md"}, true, rec.ingest, rec.remove,
		WithDebounce(50*time.Millisecond))
	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer w.Stop()

	path := filepath.Join(dir, "roth-ira.md")
	if err := os.WriteFile(path, []byte("# Roth IRA"), 0600); err != nil {
		t.Fatal(err)
	}
	if !waitFor(t, 3*time.Second, func() bool { return rec.ingestCount() >= 1 }) {
		t.Fatal("document was never ingested")
	}
}

func TestWatcherIgnoresOtherExtensions(t *testing.T) {
	dir := t.TempDir()
	rec := &recorder{}
	w := New([]string{dir}, []string{".md", ".txt"}, true, rec.ingest, rec.remove,
		WithDebounce(50*time.Millisecond))
	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer w.Stop()

	if err := os.WriteFile(filepath.Join(dir, "holdings.xlsx"), []byte("x"), 0600); err != nil {
		t.Fatal(err)
	}
	time.Sleep(300 * time.Millisecond)
	if rec.ingestCount() != 0 {
		t.Errorf("non-document file was ingested %d times", rec.ingestCount())
	}
}

func TestWatcherDebouncesWriteBursts(t *testing.T) {
	dir := t.TempDir()
	rec := &recorder{}
	w := New([]string{dir}, []string{".txt"}, true, rec.ingest, rec.remove,
		WithDebounce(150*time.Millisecond))
	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer w.Stop()

	path := filepath.Join(dir, "notes.txt")
	for i := 0; i < 5; i++ {
		if err := os.WriteFile(path, []byte("draft"), 0600); err != nil {
			t.Fatal(err)
		}
		time.Sleep(20 * time.Millisecond)
	}
	if !waitFor(t, 3*time.Second, func() bool { return rec.ingestCount() >= 1 }) {
		t.Fatal("document was never ingested")
	}
	time.Sleep(300 * time.Millisecond)
	if n := rec.ingestCount(); n != 1 {
		t.Errorf("burst of writes ingested %d times, want 1", n)
	}
}

func TestWatcherRemove(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "old.txt")
	if err := os.WriteFile(path, []byte("old"), 0600); err != nil {
		t.Fatal(err)
	}

	rec := &recorder{}
	w := New([]string{dir}, []string{".txt"}, true, rec.ingest, rec.remove,
		WithDebounce(50*time.Millisecond))
	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer w.Stop()

	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	if !waitFor(t, 3*time.Second, func() bool { return rec.removeCount() >= 1 }) {
		t.Fatal("removal was never reported")
	}
}

func TestWatcherCreatesMissingRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "kb")
	w := New([]string{root}, nil, true, nil, nil)
	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer w.Stop()

	if _, err := os.Stat(root); err != nil {
		t.Errorf("root was not created: %v", err)
	}
}

func TestWatcherAddRemoveDirectory(t *testing.T) {
	first := t.TempDir()
	second := t.TempDir()
	if err := os.WriteFile(filepath.Join(second, "existing.md"), []byte("x"), 0600); err != nil {
		t.Fatal(err)
	}

	rec := &recorder{}
	w := New([]string{first}, []string{".md"}, true, rec.ingest, rec.remove,
		WithDebounce(50*time.Millisecond))
	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer w.Stop()

	if err := w.AddDirectory(second, true); err != nil {
		t.Fatalf("AddDirectory: %v", err)
	}
	if got := len(w.Directories()); got != 2 {
		t.Errorf("Directories() has %d roots, want 2", got)
	}
	if !waitFor(t, 3*time.Second, func() bool { return rec.ingestCount() >= 1 }) {
		t.Error("existing document in added root was not synced")
	}

	if err := w.RemoveDirectory(second); err != nil {
		t.Fatalf("RemoveDirectory: %v", err)
	}
	if got := len(w.Directories()); got != 1 {
		t.Errorf("Directories() has %d roots after removal, want 1", got)
	}
}

func TestWatcherSyncExistingFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.md", "b.md", "skip.bin"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0600); err != nil {
			t.Fatal(err)
		}
	}

	rec := &recorder{}
	w := New([]string{dir}, []string{".md"}, true, rec.ingest, rec.remove)
	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer w.Stop()

	w.SyncExistingFiles()
	if got := rec.ingestCount(); got != 2 {
		t.Errorf("synced %d documents, want 2", got)
	}
}

func TestWatcherStopDuringEventBurst(t *testing.T) {
	dir := t.TempDir()
	rec := &recorder{}
	w := New([]string{dir}, []string{".md"}, true, rec.ingest, rec.remove,
		WithDebounce(10*time.Millisecond))
	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	// Keep events flowing while Stop runs so shutdown overlaps handling.
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			name := filepath.Join(dir, fmt.Sprintf("doc-%d.md", i))
			if err := os.WriteFile(name, []byte("x"), 0600); err != nil {
				return
			}
		}
	}()
	time.Sleep(5 * time.Millisecond)
	w.Stop()
	wg.Wait()
	w.Stop()
}

func TestWatcherStopIsIdempotent(t *testing.T) {
	w := New([]string{t.TempDir()}, nil, true, nil, nil)
	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	w.Stop()
	w.Stop()
}
