// Package embedding provides text embedding clients and caching.
package embedding

import (
	"context"
	"hash/fnv"
)

// Embedder produces vector embeddings for text. Implementations must return
// unit-length vectors so the index's inner product equals cosine similarity.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
	Close() error
}

// HashString returns a stable FNV-1a hash of s, used for deterministic
// mock embeddings and fallback tokenization.
func HashString(s string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(s))
	return int(h.Sum32())
}
