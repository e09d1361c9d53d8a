// Package keyword provides lexical chunk search backed by Bleve.
package keyword

import (
	"context"

	"github.com/smarimus/ai-finance-assistant/internal/models"
)

// KeywordIndex defines lexical indexing and search over chunks.
type KeywordIndex interface {
	Index(ctx context.Context, id string, chunk *models.Chunk) error
	Search(ctx context.Context, query string, limit int) ([]*KeywordResult, error)
	Delete(ctx context.Context, id string) error
	Count() (uint64, error)
	Close() error
}

// KeywordResult is a single lexical search hit.
type KeywordResult struct {
	ID    string
	Score float64
}
