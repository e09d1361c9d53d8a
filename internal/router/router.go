// Package router classifies user queries into agent intents by keyword match.
package router

import (
	"strings"

	"go.uber.org/zap"

	"github.com/smarimus/ai-finance-assistant/internal/config"
)

// Intent names the agent a query is routed to.
type Intent string

const (
	IntentPortfolio Intent = "portfolio_analysis"
	IntentMarket    Intent = "market_analysis"
	IntentGoal      Intent = "goal_planning"
	IntentQA        Intent = "finance_qa"
)

// Router matches queries against keyword tables in a fixed priority order:
// portfolio, then market, then goal. A query matching several tables goes to
// the highest-priority one; no match falls through to general Q&A.
type Router struct {
	portfolio []string
	market    []string
	goal      []string
	logger    *zap.Logger
}

// NewRouter creates a router from the configured keyword tables.
// logger may be nil.
func NewRouter(cfg *config.RouterConfig, logger *zap.Logger) *Router {
	return &Router{
		portfolio: lowerAll(cfg.PortfolioKeywords),
		market:    lowerAll(cfg.MarketKeywords),
		goal:      lowerAll(cfg.GoalKeywords),
		logger:    logger,
	}
}

// Route returns the intent for a query. Matching is case-insensitive
// substring search of each table entry within the query.
func (r *Router) Route(query string) Intent {
	lower := strings.ToLower(query)
	intent := IntentQA
	switch {
	case matchesAny(lower, r.portfolio):
		intent = IntentPortfolio
	case matchesAny(lower, r.market):
		intent = IntentMarket
	case matchesAny(lower, r.goal):
		intent = IntentGoal
	}
	if r.logger != nil {
		r.logger.Debug("query routed", zap.String("intent", string(intent)))
	}
	return intent
}

func matchesAny(query string, keywords []string) bool {
	for _, kw := range keywords {
		if kw != "" && strings.Contains(query, kw) {
			return true
		}
	}
	return false
}

func lowerAll(keywords []string) []string {
	out := make([]string, len(keywords))
	for i, kw := range keywords {
		out[i] = strings.ToLower(kw)
	}
	return out
}
