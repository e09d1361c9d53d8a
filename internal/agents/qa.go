package agents

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/smarimus/ai-finance-assistant/internal/keyword"
	"github.com/smarimus/ai-finance-assistant/internal/knowledge"
	"github.com/smarimus/ai-finance-assistant/internal/llm"
	"github.com/smarimus/ai-finance-assistant/internal/models"
	"github.com/smarimus/ai-finance-assistant/internal/retriever"
	"github.com/smarimus/ai-finance-assistant/internal/router"
)

const qaSystemPrompt = `You are a financial education assistant. Answer using only the provided context passages. Cite sources by their bracketed markers. If the context does not cover the question, say so plainly. You provide education, not personalized financial advice.`

// QAAgent answers general finance questions with retrieved knowledge-base
// passages, phrased by the language model when one is configured.
//
// Degradation ladder: embedding failure falls back to lexical search; LLM
// failure falls back to returning the passages; no results still produces an
// honest answer. Each step down sets Degraded.
type QAAgent struct {
	retriever       *retriever.Retriever
	keywordIndex    keyword.KeywordIndex
	index           *knowledge.Index
	completer       llm.Completer // nil means passages-only answers
	maxContextChars int
	logger          *zap.Logger
}

// NewQAAgent creates the Q&A agent. completer and logger may be nil.
func NewQAAgent(r *retriever.Retriever, kw keyword.KeywordIndex, index *knowledge.Index, completer llm.Completer, maxContextChars int, logger *zap.Logger) *QAAgent {
	return &QAAgent{
		retriever:       r,
		keywordIndex:    kw,
		index:           index,
		completer:       completer,
		maxContextChars: maxContextChars,
		logger:          logger,
	}
}

// Name implements Agent.
func (a *QAAgent) Name() string { return string(router.IntentQA) }

// Execute implements Agent.
func (a *QAAgent) Execute(ctx context.Context, req *Request) (*models.Answer, error) {
	category := models.Category(req.Category)
	degraded := false

	results, err := a.retriever.Retrieve(ctx, req.Query, req.K, category, req.Enhance())
	if err != nil {
		if a.logger != nil {
			a.logger.Warn("semantic retrieval failed, trying keyword search", zap.Error(err))
		}
		degraded = true
		results = a.keywordFallback(ctx, req.Query, req.K, category)
	}

	if len(results) == 0 {
		return &models.Answer{
			Response: "I couldn't find anything in the knowledge base about that. Try rephrasing the question or asking about a related topic.",
			Agent:    a.Name(),
			Degraded: degraded,
		}, nil
	}

	contextText := retriever.BuildContext(results, a.maxContextChars)
	sources := retriever.Sources(results)

	if a.completer != nil {
		response, llmErr := a.completer.Complete(ctx, []llm.Message{
			{Role: "system", Content: qaSystemPrompt},
			{Role: "user", Content: fmt.Sprintf("Context:\n%s\n\nQuestion: %s", contextText, req.Query)},
		})
		if llmErr == nil {
			return &models.Answer{
				Response: response,
				Agent:    a.Name(),
				Sources:  sources,
				Degraded: degraded,
			}, nil
		}
		if a.logger != nil {
			a.logger.Warn("completion failed, answering with passages", zap.Error(llmErr))
		}
		degraded = true
	}

	return &models.Answer{
		Response: passagesAnswer(contextText),
		Agent:    a.Name(),
		Sources:  sources,
		Degraded: degraded,
	}, nil
}

// keywordFallback runs lexical search and maps hits back to chunks. Scores
// are normalized to the top hit so they are comparable to cosine similarities
// downstream. Returns nil when lexical search fails too; the caller turns
// that into an honest empty answer.
func (a *QAAgent) keywordFallback(ctx context.Context, query string, k int, category models.Category) []*models.RetrievalResult {
	hits, err := a.keywordIndex.Search(ctx, query, k*2)
	if err != nil || len(hits) == 0 {
		return nil
	}
	top := hits[0].Score
	if top == 0 {
		top = 1
	}
	results := make([]*models.RetrievalResult, 0, k)
	for _, hit := range hits {
		chunk, ok := a.index.Chunk(hit.ID)
		if !ok {
			continue
		}
		if category != "" && chunk.Category != category {
			continue
		}
		results = append(results, &models.RetrievalResult{
			Chunk: chunk,
			Score: hit.Score / top,
			Rank:  len(results) + 1,
		})
		if len(results) == k {
			break
		}
	}
	return results
}

func passagesAnswer(contextText string) string {
	var b strings.Builder
	b.WriteString("Here is what the knowledge base says:\n\n")
	b.WriteString(contextText)
	return b.String()
}
