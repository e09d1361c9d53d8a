// Package vector provides vector index and similarity search.
package vector

import (
	"context"
	"errors"
)

// ErrIndexMissing is returned by Load when no persisted index exists at the
// given path. Callers treat it as "build from scratch" rather than a failure.
var ErrIndexMissing = errors.New("vector index file does not exist")

// VectorIndex defines vector storage and similarity search.
type VectorIndex interface {
	Add(ctx context.Context, ids []string, vectors [][]float32) error
	Search(ctx context.Context, query []float32, k int) ([]*VectorResult, error)
	Remove(ctx context.Context, ids []string) error
	Save(path string) error
	Load(path string) error
	Size() int
	Close() error
}

// VectorResult is a single vector search hit (ID is the chunk ID).
type VectorResult struct {
	ID    string
	Score float64 // Inner product; cosine similarity for normalized vectors
}
