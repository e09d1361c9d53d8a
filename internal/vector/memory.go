package vector

import (
	"bufio"
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// MemoryIndex is a brute-force in-memory vector index. Embeddings are
// normalized before insertion, so inner product equals cosine similarity.
// Safe for concurrent use.
type MemoryIndex struct {
	dimensions int

	mu      sync.RWMutex
	ids     []string
	vectors [][]float32
}

// NewMemoryIndex creates an empty index for vectors of the given dimension.
func NewMemoryIndex(dimensions int) (*MemoryIndex, error) {
	if dimensions <= 0 {
		return nil, fmt.Errorf("dimensions must be positive, got %d", dimensions)
	}
	return &MemoryIndex{dimensions: dimensions}, nil
}

// Add appends vectors under the given IDs. IDs and vectors are parallel.
func (m *MemoryIndex) Add(ctx context.Context, ids []string, vectors [][]float32) error {
	if len(ids) != len(vectors) {
		return fmt.Errorf("got %d ids for %d vectors", len(ids), len(vectors))
	}
	for _, vec := range vectors {
		if len(vec) != m.dimensions {
			return fmt.Errorf("vector has dimension %d, index expects %d", len(vec), m.dimensions)
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, id := range ids {
		vec := make([]float32, m.dimensions)
		copy(vec, vectors[i])
		m.ids = append(m.ids, id)
		m.vectors = append(m.vectors, vec)
	}
	return nil
}

// Search returns the top-k entries by inner product against query, highest
// first. Fewer than k entries returns them all.
func (m *MemoryIndex) Search(ctx context.Context, query []float32, k int) ([]*VectorResult, error) {
	if len(query) != m.dimensions {
		return nil, fmt.Errorf("query has dimension %d, index expects %d", len(query), m.dimensions)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := len(m.ids)
	if k <= 0 || n == 0 {
		return nil, nil
	}

	scores := make([]float64, n)
	order := make([]int, n)
	for i, vec := range m.vectors {
		var dot float64
		for j, q := range query {
			dot += float64(q) * float64(vec[j])
		}
		scores[i] = dot
		order[i] = i
	}
	// Ties break on insertion order so results are deterministic.
	sort.Slice(order, func(a, b int) bool {
		if scores[order[a]] != scores[order[b]] {
			return scores[order[a]] > scores[order[b]]
		}
		return order[a] < order[b]
	})

	if k > n {
		k = n
	}
	out := make([]*VectorResult, k)
	for i := 0; i < k; i++ {
		out[i] = &VectorResult{ID: m.ids[order[i]], Score: scores[order[i]]}
	}
	return out, nil
}

// Remove drops the entries with the given IDs, compacting in place.
func (m *MemoryIndex) Remove(ctx context.Context, ids []string) error {
	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := 0
	for i, id := range m.ids {
		if _, gone := drop[id]; gone {
			continue
		}
		m.ids[kept] = id
		m.vectors[kept] = m.vectors[i]
		kept++
	}
	m.ids = m.ids[:kept]
	m.vectors = m.vectors[:kept]
	return nil
}

// Save writes the index to path, creating parent directories as needed.
// Layout, all little-endian: dimension (uint32), entry count (uint32), then
// per entry an id length (uint32), the id bytes, and dimension float32s.
func (m *MemoryIndex) Save(path string) error {
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create index dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create index file: %w", err)
	}
	defer f.Close()
	w := bufio.NewWriter(f)

	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := binary.Write(w, binary.LittleEndian, uint32(m.dimensions)); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(len(m.ids))); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, id := range m.ids {
		if err := binary.Write(w, binary.LittleEndian, uint32(len(id))); err != nil {
			return fmt.Errorf("write entry %d: %w", i, err)
		}
		if _, err := w.WriteString(id); err != nil {
			return fmt.Errorf("write entry %d: %w", i, err)
		}
		for _, v := range m.vectors[i] {
			if err := binary.Write(w, binary.LittleEndian, math.Float32bits(v)); err != nil {
				return fmt.Errorf("write entry %d: %w", i, err)
			}
		}
	}
	return w.Flush()
}

// Load replaces the in-memory contents with the file at path. The file's
// dimension must match the index's. Returns ErrIndexMissing when no file
// exists at path.
func (m *MemoryIndex) Load(path string) error {
	if path == "" {
		return nil
	}
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return ErrIndexMissing
	}
	if err != nil {
		return fmt.Errorf("open index file: %w", err)
	}
	defer f.Close()
	r := bufio.NewReader(f)

	var dim, n uint32
	if err := binary.Read(r, binary.LittleEndian, &dim); err != nil {
		return fmt.Errorf("read header: %w", err)
	}
	if int(dim) != m.dimensions {
		return fmt.Errorf("index file has dimension %d, index expects %d", dim, m.dimensions)
	}
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return fmt.Errorf("read header: %w", err)
	}

	ids := make([]string, 0, n)
	vectors := make([][]float32, 0, n)
	raw := make([]byte, m.dimensions*4)
	for i := uint32(0); i < n; i++ {
		var idLen uint32
		if err := binary.Read(r, binary.LittleEndian, &idLen); err != nil {
			return fmt.Errorf("read entry %d: %w", i, err)
		}
		idBytes := make([]byte, idLen)
		if _, err := io.ReadFull(r, idBytes); err != nil {
			return fmt.Errorf("read entry %d: %w", i, err)
		}
		if _, err := io.ReadFull(r, raw); err != nil {
			return fmt.Errorf("read entry %d: %w", i, err)
		}
		vec := make([]float32, m.dimensions)
		for j := range vec {
			vec[j] = math.Float32frombits(binary.LittleEndian.Uint32(raw[j*4:]))
		}
		ids = append(ids, string(idBytes))
		vectors = append(vectors, vec)
	}

	m.mu.Lock()
	m.ids = ids
	m.vectors = vectors
	m.mu.Unlock()
	return nil
}

// Size returns the number of entries.
func (m *MemoryIndex) Size() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.ids)
}

// Close is a no-op; the index holds no external resources.
func (m *MemoryIndex) Close() error { return nil }

// CosineSimilarity returns the similarity of two normalized vectors, clamped
// to [0, 1]. Mismatched or empty inputs score zero.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	return math.Max(0, math.Min(1, dot))
}
