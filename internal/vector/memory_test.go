package vector

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestMemoryIndex_AddSearch(t *testing.T) {
	idx, err := NewMemoryIndex(3)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	ids := []string{"a", "b", "c"}
	vecs := [][]float32{
		{1, 0, 0},
		{0, 1, 0},
		{0.7071, 0.7071, 0},
	}
	if err := idx.Add(ctx, ids, vecs); err != nil {
		t.Fatal(err)
	}
	results, err := idx.Search(ctx, []float32{1, 0, 0}, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].ID != "a" {
		t.Errorf("top result = %s, want a", results[0].ID)
	}
	if results[1].ID != "c" {
		t.Errorf("second result = %s, want c", results[1].ID)
	}
	if results[0].Score < results[1].Score {
		t.Error("results not in descending score order")
	}
}

func TestMemoryIndex_KLargerThanCorpus(t *testing.T) {
	idx, _ := NewMemoryIndex(2)
	ctx := context.Background()
	_ = idx.Add(ctx, []string{"only"}, [][]float32{{1, 0}})
	results, err := idx.Search(ctx, []float32{1, 0}, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Errorf("got %d results, want 1", len(results))
	}
}

func TestMemoryIndex_EmptySearch(t *testing.T) {
	idx, _ := NewMemoryIndex(2)
	results, err := idx.Search(context.Background(), []float32{1, 0}, 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 0 {
		t.Errorf("expected no results on empty index, got %d", len(results))
	}
}

func TestMemoryIndex_DimensionMismatch(t *testing.T) {
	idx, _ := NewMemoryIndex(3)
	ctx := context.Background()
	if err := idx.Add(ctx, []string{"x"}, [][]float32{{1, 0}}); err == nil {
		t.Error("expected error adding wrong-dimension vector")
	}
	if _, err := idx.Search(ctx, []float32{1, 0}, 1); err == nil {
		t.Error("expected error searching with wrong-dimension query")
	}
}

func TestMemoryIndex_Remove(t *testing.T) {
	idx, _ := NewMemoryIndex(2)
	ctx := context.Background()
	_ = idx.Add(ctx, []string{"a", "b"}, [][]float32{{1, 0}, {0, 1}})
	if err := idx.Remove(ctx, []string{"a"}); err != nil {
		t.Fatal(err)
	}
	if idx.Size() != 1 {
		t.Fatalf("size = %d, want 1", idx.Size())
	}
	results, _ := idx.Search(ctx, []float32{1, 0}, 2)
	for _, r := range results {
		if r.ID == "a" {
			t.Error("removed vector still returned by search")
		}
	}
}

func TestMemoryIndex_SaveLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", "test.vec")

	idx, _ := NewMemoryIndex(3)
	ctx := context.Background()
	ids := []string{"chunk-1", "chunk-2"}
	vecs := [][]float32{{0.5, 0.5, 0.7071}, {0, 0, 1}}
	_ = idx.Add(ctx, ids, vecs)
	if err := idx.Save(path); err != nil {
		t.Fatal(err)
	}

	loaded, _ := NewMemoryIndex(3)
	if err := loaded.Load(path); err != nil {
		t.Fatal(err)
	}
	if loaded.Size() != 2 {
		t.Fatalf("loaded size = %d, want 2", loaded.Size())
	}
	for i := range idx.ids {
		if idx.ids[i] != loaded.ids[i] {
			t.Errorf("id %d mismatch: %s vs %s", i, idx.ids[i], loaded.ids[i])
		}
		for j := range idx.vectors[i] {
			if math.Abs(float64(idx.vectors[i][j]-loaded.vectors[i][j])) > 1e-9 {
				t.Errorf("vector %d component %d mismatch", i, j)
			}
		}
	}
}

func TestMemoryIndex_LoadMissing(t *testing.T) {
	idx, _ := NewMemoryIndex(3)
	err := idx.Load(filepath.Join(t.TempDir(), "nope.vec"))
	if !errors.Is(err, ErrIndexMissing) {
		t.Errorf("expected ErrIndexMissing, got %v", err)
	}
}

func TestMemoryIndex_LoadDimensionMismatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.vec")
	idx, _ := NewMemoryIndex(3)
	_ = idx.Add(context.Background(), []string{"a"}, [][]float32{{1, 0, 0}})
	if err := idx.Save(path); err != nil {
		t.Fatal(err)
	}
	other, _ := NewMemoryIndex(5)
	if err := other.Load(path); err == nil {
		t.Error("expected dimension mismatch error")
	}
}

func TestMemoryIndex_LoadCorrupt(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "corrupt.vec")
	if err := os.WriteFile(path, []byte{0x01, 0x02}, 0644); err != nil {
		t.Fatal(err)
	}
	idx, _ := NewMemoryIndex(3)
	err := idx.Load(path)
	if err == nil {
		t.Fatal("expected error loading corrupt file")
	}
	if errors.Is(err, ErrIndexMissing) {
		t.Error("corrupt file must not be reported as missing")
	}
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 0}, []float32{1, 0}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"mismatched length", []float32{1}, []float32{1, 0}, 0},
		{"empty", nil, nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CosineSimilarity(tt.a, tt.b); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("CosineSimilarity = %v, want %v", got, tt.want)
			}
		})
	}
}
