package indexer

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/smarimus/ai-finance-assistant/internal/models"
)

// LoadCorpus reads a JSON corpus file: either an array of article records or
// an object with an "articles" array, matching the scraper output format.
func LoadCorpus(path string) ([]*models.ArticleInput, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read corpus file: %w", err)
	}
	var articles []*models.ArticleInput
	if err := json.Unmarshal(data, &articles); err == nil {
		return articles, nil
	}
	var wrapped struct {
		Articles []*models.ArticleInput `json:"articles"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, fmt.Errorf("parse corpus file %s: %w", path, err)
	}
	if wrapped.Articles == nil {
		return nil, fmt.Errorf("corpus file %s has no articles", path)
	}
	return wrapped.Articles, nil
}

// IndexCorpus loads the corpus at path and indexes every article. Returns the
// number of articles indexed and the first error encountered.
func (idx *Indexer) IndexCorpus(ctx context.Context, path string) (int, error) {
	articles, err := LoadCorpus(path)
	if err != nil {
		return 0, err
	}
	for i, input := range articles {
		if err := idx.IndexArticle(ctx, input); err != nil {
			return i, fmt.Errorf("index article %d (%s): %w", i, input.Title, err)
		}
	}
	return len(articles), nil
}
