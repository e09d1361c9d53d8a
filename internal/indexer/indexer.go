package indexer

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/smarimus/ai-finance-assistant/internal/config"
	"github.com/smarimus/ai-finance-assistant/internal/embedding"
	"github.com/smarimus/ai-finance-assistant/internal/keyword"
	"github.com/smarimus/ai-finance-assistant/internal/models"
	"github.com/smarimus/ai-finance-assistant/internal/storage"
	"github.com/smarimus/ai-finance-assistant/internal/vector"
)

// Indexer indexes articles into storage, the keyword index, and the vector
// index, keeping all three consistent.
type Indexer struct {
	storage      storage.Storage
	embedder     embedding.Embedder
	vectorIndex  vector.VectorIndex
	keywordIndex keyword.KeywordIndex
	chunker      *Chunker
	logger       *zap.Logger // optional; when set, logs debug events
}

// IndexerOption configures an Indexer.
type IndexerOption func(*Indexer)

// WithLogger sets a logger for debug output (article indexed, article deleted).
func WithLogger(l *zap.Logger) IndexerOption {
	return func(idx *Indexer) { idx.logger = l }
}

// NewIndexer creates an indexer with the given dependencies. Returns an error
// when the chunking parameters in cfg are invalid.
func NewIndexer(
	store storage.Storage,
	embedder embedding.Embedder,
	vectorIndex vector.VectorIndex,
	keywordIndex keyword.KeywordIndex,
	cfg *config.RetrievalConfig,
	opts ...IndexerOption,
) (*Indexer, error) {
	chunker, err := NewChunker(cfg.ChunkSize, cfg.ChunkOverlap)
	if err != nil {
		return nil, err
	}
	idx := &Indexer{
		storage:      store,
		embedder:     embedder,
		vectorIndex:  vectorIndex,
		keywordIndex: keywordIndex,
		chunker:      chunker,
	}
	for _, opt := range opts {
		opt(idx)
	}
	return idx, nil
}

// IndexArticle indexes one article: store, chunk, embed, add to vector and
// keyword indices. The input's category must be valid or empty.
func (idx *Indexer) IndexArticle(ctx context.Context, input *models.ArticleInput) error {
	category, err := models.ParseCategory(input.Category)
	if err != nil {
		return err
	}
	if input.ID == "" {
		input.ID = uuid.New().String()
	}
	wordCount := input.WordCount
	if wordCount == 0 {
		wordCount = len(strings.Fields(input.Text))
	}
	article := &models.Article{
		ID:        input.ID,
		Title:     input.Title,
		Text:      input.Text,
		Category:  category,
		SourceURL: input.SourceURL,
		WordCount: wordCount,
	}
	if err := idx.storage.CreateArticle(ctx, article); err != nil {
		return fmt.Errorf("failed to store article: %w", err)
	}

	chunks := idx.chunker.Chunk(article)
	if len(chunks) == 0 {
		if idx.logger != nil {
			idx.logger.Debug("article has no indexable text", zap.String("id", article.ID))
		}
		return nil
	}
	texts := make([]string, len(chunks))
	for i, ch := range chunks {
		texts[i] = ch.Text
	}
	embeddings, err := idx.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("failed to generate embeddings: %w", err)
	}
	for i := range chunks {
		chunks[i].Embedding = embeddings[i]
	}
	if err := idx.storage.BatchCreateChunks(ctx, chunks); err != nil {
		return fmt.Errorf("failed to store chunks: %w", err)
	}
	chunkIDs := make([]string, len(chunks))
	for i, ch := range chunks {
		chunkIDs[i] = ch.ID
	}
	if err := idx.vectorIndex.Add(ctx, chunkIDs, embeddings); err != nil {
		return fmt.Errorf("failed to index vectors: %w", err)
	}
	for _, ch := range chunks {
		if err := idx.keywordIndex.Index(ctx, ch.ID, ch); err != nil {
			return fmt.Errorf("failed to index keywords: %w", err)
		}
	}
	if idx.logger != nil {
		idx.logger.Debug("article indexed",
			zap.String("id", article.ID),
			zap.String("category", string(article.Category)),
			zap.Int("chunks", len(chunks)))
	}
	return nil
}

// DeleteArticle removes an article from all indices and storage.
func (idx *Indexer) DeleteArticle(ctx context.Context, id string) error {
	chunks, err := idx.storage.GetChunksByArticleID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get chunks: %w", err)
	}
	chunkIDs := make([]string, len(chunks))
	for i, ch := range chunks {
		chunkIDs[i] = ch.ID
	}
	for _, chunkID := range chunkIDs {
		if err := idx.keywordIndex.Delete(ctx, chunkID); err != nil {
			return fmt.Errorf("failed to delete from keyword index: %w", err)
		}
	}
	if err := idx.vectorIndex.Remove(ctx, chunkIDs); err != nil {
		return fmt.Errorf("failed to delete from vector index: %w", err)
	}
	if err := idx.storage.DeleteChunksByArticleID(ctx, id); err != nil {
		return fmt.Errorf("failed to delete chunks: %w", err)
	}
	if err := idx.storage.DeleteArticle(ctx, id); err != nil {
		return fmt.Errorf("failed to delete article: %w", err)
	}
	if idx.logger != nil {
		idx.logger.Debug("article deleted", zap.String("id", id))
	}
	return nil
}
