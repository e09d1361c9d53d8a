// Package storage defines the persistence interface for articles and chunks.
package storage

import (
	"context"

	"github.com/smarimus/ai-finance-assistant/internal/models"
)

// Storage defines article and chunk persistence operations.
type Storage interface {
	// Article operations
	CreateArticle(ctx context.Context, article *models.Article) error
	GetArticle(ctx context.Context, id string) (*models.Article, error)
	DeleteArticle(ctx context.Context, id string) error
	ListArticles(ctx context.Context, offset, limit int) ([]*models.Article, error)

	// Chunk operations
	GetChunk(ctx context.Context, id string) (*models.Chunk, error)
	GetChunksByArticleID(ctx context.Context, articleID string) ([]*models.Chunk, error)
	DeleteChunksByArticleID(ctx context.Context, articleID string) error
	BatchCreateChunks(ctx context.Context, chunks []*models.Chunk) error

	// AllChunks returns every chunk ordered by article and position, used to
	// rebuild search indexes from the metadata store.
	AllChunks(ctx context.Context) ([]*models.Chunk, error)

	// Stats
	CountArticles(ctx context.Context) (int64, error)
	CountChunks(ctx context.Context) (int64, error)

	Close() error
}
