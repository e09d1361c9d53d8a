package retriever

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/smarimus/ai-finance-assistant/internal/config"
	"github.com/smarimus/ai-finance-assistant/internal/embedding"
	"github.com/smarimus/ai-finance-assistant/internal/knowledge"
	"github.com/smarimus/ai-finance-assistant/internal/models"
	"github.com/smarimus/ai-finance-assistant/pkg/utils"
)

// Retriever runs the query pipeline: expand, embed once, overfetch, filter by
// category, rerank for diversity, and truncate to k.
type Retriever struct {
	index    *knowledge.Index
	embedder embedding.Embedder
	cfg      *config.RetrievalConfig
	logger   *zap.Logger
}

// NewRetriever creates a retriever over the given index and embedder.
// logger may be nil.
func NewRetriever(index *knowledge.Index, embedder embedding.Embedder, cfg *config.RetrievalConfig, logger *zap.Logger) *Retriever {
	return &Retriever{
		index:    index,
		embedder: embedder,
		cfg:      cfg,
		logger:   logger,
	}
}

// Retrieve returns up to k passages for the query. category narrows results to
// one article category when non-empty; the filter is hard, never padded from
// other categories. enhance toggles domain keyword expansion. The query is
// embedded exactly once per call.
func (r *Retriever) Retrieve(ctx context.Context, query string, k int, category models.Category, enhance bool) ([]*models.RetrievalResult, error) {
	if query == "" {
		return nil, fmt.Errorf("query cannot be empty")
	}
	if k <= 0 {
		k = r.cfg.K
	}

	searchText := query
	if enhance {
		searchText = EnhanceQuery(query, r.cfg.Expansions)
	}
	queryVec, err := r.embedder.Embed(ctx, searchText)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	fetchK := k * r.cfg.OverfetchFactor
	hits, err := r.index.Search(ctx, queryVec, fetchK)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}

	if category != "" {
		filtered := hits[:0]
		for _, h := range hits {
			if h.Chunk.Category == category {
				filtered = append(filtered, h)
			}
		}
		hits = filtered
	}

	reranked := rerankForDiversity(hits, r.cfg.DiversityPenalty)
	if len(reranked) > k {
		reranked = reranked[:k]
	}

	results := make([]*models.RetrievalResult, len(reranked))
	for i, h := range reranked {
		results[i] = &models.RetrievalResult{Chunk: h.Chunk, Score: h.Score, Rank: i + 1}
	}
	if r.logger != nil {
		r.logger.Debug("retrieval complete",
			zap.String("query", utils.Truncate(query, 120)),
			zap.Bool("enhanced", enhance),
			zap.Int("fetched", len(hits)),
			zap.Int("returned", len(results)))
	}
	return results, nil
}

// RetrieveByCategory is Retrieve with a required category filter.
func (r *Retriever) RetrieveByCategory(ctx context.Context, query string, k int, category models.Category) ([]*models.RetrievalResult, error) {
	if !category.Valid() {
		return nil, fmt.Errorf("unknown category: %q", category)
	}
	return r.Retrieve(ctx, query, k, category, true)
}

// rerankForDiversity greedily reorders hits so passages from many articles
// surface before a second passage from an already-picked article. Each pick
// multiplies the remaining candidates from the same article by penalty, so
// with penalty 0.75 a second chunk needs to beat other articles' chunks by a
// third to keep its slot. Original similarity scores are preserved in the
// output; only the order changes.
func rerankForDiversity(hits []*knowledge.Hit, penalty float64) []*knowledge.Hit {
	if len(hits) <= 1 {
		return hits
	}
	remaining := make([]*knowledge.Hit, len(hits))
	copy(remaining, hits)
	picked := make(map[string]int, len(hits))
	out := make([]*knowledge.Hit, 0, len(hits))

	for len(remaining) > 0 {
		bestIdx := 0
		bestScore := adjustedScore(remaining[0], picked, penalty)
		for i := 1; i < len(remaining); i++ {
			if s := adjustedScore(remaining[i], picked, penalty); s > bestScore {
				bestIdx, bestScore = i, s
			}
		}
		best := remaining[bestIdx]
		out = append(out, best)
		picked[best.Chunk.ArticleID]++
		remaining = append(remaining[:bestIdx], remaining[bestIdx+1:]...)
	}
	return out
}

func adjustedScore(h *knowledge.Hit, picked map[string]int, penalty float64) float64 {
	s := h.Score
	for i := 0; i < picked[h.Chunk.ArticleID]; i++ {
		s *= penalty
	}
	return s
}
