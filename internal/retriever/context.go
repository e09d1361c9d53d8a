package retriever

import (
	"fmt"
	"strings"

	"github.com/smarimus/ai-finance-assistant/internal/models"
)

// BuildContext assembles retrieval results into one prompt context string.
// Each passage is prefixed with a citation marker naming its source article
// and category. Chunks are included whole or not at all: when adding the next
// passage would push the total past maxChars, assembly stops. Results are
// consumed in rank order, so a dropped passage never outranks an included one.
func BuildContext(results []*models.RetrievalResult, maxChars int) string {
	if len(results) == 0 || maxChars <= 0 {
		return ""
	}
	var b strings.Builder
	for i, res := range results {
		passage := fmt.Sprintf("[Source %d: %s (%s)]\n%s", i+1, res.Chunk.Title, res.Chunk.Category, res.Chunk.Text)
		add := len(passage)
		if b.Len() > 0 {
			add += 2 // separator
		}
		if b.Len()+add > maxChars {
			break
		}
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(passage)
	}
	return b.String()
}

// Sources converts retrieval results into answer source attributions, one per
// article. Deduplication keys on the article ID, not the title: two distinct
// articles may share a title and both deserve attribution.
func Sources(results []*models.RetrievalResult) []models.Source {
	seen := make(map[string]bool, len(results))
	out := make([]models.Source, 0, len(results))
	for _, res := range results {
		if seen[res.Chunk.ArticleID] {
			continue
		}
		seen[res.Chunk.ArticleID] = true
		out = append(out, models.Source{
			Title:    res.Chunk.Title,
			Category: res.Chunk.Category,
			Score:    res.Score,
		})
	}
	return out
}
