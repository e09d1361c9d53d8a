// Package knowledge ties the persisted vector index and the chunk metadata
// store together as one artifact pair: <stem>.vec holds the embeddings and
// <stem>.db holds the chunk and article metadata. The two are written and
// loaded together; a count mismatch between them means the pair is corrupt
// and must be rebuilt.
package knowledge

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/smarimus/ai-finance-assistant/internal/models"
	"github.com/smarimus/ai-finance-assistant/internal/storage"
	"github.com/smarimus/ai-finance-assistant/internal/vector"
)

// ErrIndexMissing reports that no persisted index exists at the stem. Callers
// treat it as "ingest a corpus first", not as a failure.
var ErrIndexMissing = vector.ErrIndexMissing

// ErrIndexCorrupt reports that the vector file and the metadata store
// disagree. The pair must be rebuilt from the corpus.
var ErrIndexCorrupt = errors.New("vector index and metadata store are out of sync")

// Hit is one search result: a chunk with its similarity score.
type Hit struct {
	Chunk *models.Chunk
	Score float64
}

// Index is the knowledge base search index. Vectors live in memory (persisted
// to <stem>.vec); chunk metadata lives in SQLite at <stem>.db and is mirrored
// into an in-memory map for lookup on the search path.
type Index struct {
	stem    string
	store   storage.Storage
	vectors vector.VectorIndex

	mu     sync.RWMutex
	chunks map[string]*models.Chunk
}

// Open creates or opens the index pair rooted at stem. The vector file is not
// read here; call Load to restore a persisted index.
func Open(stem string, dimensions int) (*Index, error) {
	store, err := storage.NewSQLiteStorage(stem + ".db")
	if err != nil {
		return nil, fmt.Errorf("open metadata store: %w", err)
	}
	vectors, err := vector.NewMemoryIndex(dimensions)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	return &Index{
		stem:    stem,
		store:   store,
		vectors: vectors,
		chunks:  make(map[string]*models.Chunk),
	}, nil
}

// VecPath returns the path of the persisted vector file.
func (ix *Index) VecPath() string { return ix.stem + ".vec" }

// DBPath returns the path of the metadata database.
func (ix *Index) DBPath() string { return ix.stem + ".db" }

// Storage exposes the metadata store for the indexing pipeline.
func (ix *Index) Storage() storage.Storage { return ix.store }

// Vectors exposes the vector index for the indexing pipeline.
func (ix *Index) Vectors() vector.VectorIndex { return ix.vectors }

// Load restores the persisted index pair. Returns ErrIndexMissing when no
// vector file exists, and ErrIndexCorrupt when the vector file and the
// metadata store hold different numbers of entries.
func (ix *Index) Load(ctx context.Context) error {
	if err := ix.vectors.Load(ix.VecPath()); err != nil {
		return err
	}
	if err := ix.Refresh(ctx); err != nil {
		return err
	}
	ix.mu.RLock()
	n := len(ix.chunks)
	ix.mu.RUnlock()
	if ix.vectors.Size() != n {
		return fmt.Errorf("%w: %d vectors, %d chunks", ErrIndexCorrupt, ix.vectors.Size(), n)
	}
	return nil
}

// Refresh reloads the in-memory chunk map from the metadata store. Call after
// indexing new articles.
func (ix *Index) Refresh(ctx context.Context) error {
	chunks, err := ix.store.AllChunks(ctx)
	if err != nil {
		return fmt.Errorf("load chunks: %w", err)
	}
	m := make(map[string]*models.Chunk, len(chunks))
	for _, ch := range chunks {
		m[ch.ID] = ch
	}
	ix.mu.Lock()
	ix.chunks = m
	ix.mu.Unlock()
	return nil
}

// Save persists the vector index to <stem>.vec. The metadata store is durable
// on its own.
func (ix *Index) Save() error {
	return ix.vectors.Save(ix.VecPath())
}

// Search returns the top-k chunks by similarity to the query vector, highest
// first. A vector hit whose chunk is unknown to the metadata store means the
// pair is corrupt.
func (ix *Index) Search(ctx context.Context, query []float32, k int) ([]*Hit, error) {
	results, err := ix.vectors.Search(ctx, query, k)
	if err != nil {
		return nil, err
	}
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	hits := make([]*Hit, 0, len(results))
	for _, r := range results {
		chunk, ok := ix.chunks[r.ID]
		if !ok {
			return nil, fmt.Errorf("%w: chunk %s has a vector but no metadata", ErrIndexCorrupt, r.ID)
		}
		hits = append(hits, &Hit{Chunk: chunk, Score: r.Score})
	}
	return hits, nil
}

// Chunk returns a chunk from the in-memory map by ID.
func (ix *Index) Chunk(id string) (*models.Chunk, bool) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	ch, ok := ix.chunks[id]
	return ch, ok
}

// Size returns the number of indexed chunks.
func (ix *Index) Size() int {
	return ix.vectors.Size()
}

// Close closes the metadata store and the vector index.
func (ix *Index) Close() error {
	verr := ix.vectors.Close()
	serr := ix.store.Close()
	if verr != nil {
		return verr
	}
	return serr
}
