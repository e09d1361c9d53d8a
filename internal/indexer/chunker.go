// Package indexer provides article chunking and indexing into storage,
// keyword, and vector indices.
package indexer

import (
	"fmt"

	"github.com/smarimus/ai-finance-assistant/internal/models"
)

// Chunker splits article text into overlapping rune-based windows.
type Chunker struct {
	chunkSize    int
	chunkOverlap int
}

// NewChunker creates a chunker with the given window size and overlap, both in
// runes. Overlap must be strictly smaller than the size or the window could
// never advance.
func NewChunker(chunkSize, chunkOverlap int) (*Chunker, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", chunkSize)
	}
	if chunkOverlap < 0 {
		return nil, fmt.Errorf("chunk overlap must be non-negative, got %d", chunkOverlap)
	}
	if chunkOverlap >= chunkSize {
		return nil, fmt.Errorf("chunk overlap %d must be smaller than chunk size %d", chunkOverlap, chunkSize)
	}
	return &Chunker{
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
	}, nil
}

// Chunk splits the article's text into overlapping windows. Returns nil when
// the text is empty after normalization. Each chunk inherits the article's
// category and title so retrieval results carry attribution without a join.
func (c *Chunker) Chunk(article *models.Article) []*models.Chunk {
	text := Preprocess(article.Text)
	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}
	if len(runes) <= c.chunkSize {
		return []*models.Chunk{c.newChunk(article, 0, text)}
	}
	step := c.chunkSize - c.chunkOverlap
	chunks := make([]*models.Chunk, 0, (len(runes)-c.chunkOverlap+step-1)/step)
	for i := 0; i < len(runes); i += step {
		end := i + c.chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, c.newChunk(article, len(chunks), string(runes[i:end])))
		if end >= len(runes) {
			break
		}
	}
	return chunks
}

func (c *Chunker) newChunk(article *models.Article, index int, text string) *models.Chunk {
	return &models.Chunk{
		ID:        fmt.Sprintf("%s_%d", article.ID, index),
		ArticleID: article.ID,
		Index:     index,
		Text:      text,
		Category:  article.Category,
		Title:     article.Title,
	}
}
