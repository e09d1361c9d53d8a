package router

import (
	"testing"

	"github.com/smarimus/ai-finance-assistant/internal/config"
)

func defaultRouter() *Router {
	cfg := &config.Config{}
	config.ApplyDefaults(cfg)
	return NewRouter(&cfg.Router, nil)
}

func TestRoute(t *testing.T) {
	r := defaultRouter()
	tests := []struct {
		query string
		want  Intent
	}{
		{"analyze my portfolio allocation", IntentPortfolio},
		{"should I rebalance into bonds", IntentPortfolio},
		{"what is the AAPL stock price today", IntentMarket},
		{"how is the nasdaq trending", IntentMarket},
		{"help me plan for retirement", IntentGoal},
		{"saving for a house down payment", IntentGoal},
		{"what is compound interest", IntentQA},
		{"explain a roth conversion", IntentQA},
		{"", IntentQA},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			if got := r.Route(tt.query); got != tt.want {
				t.Errorf("Route(%q) = %s, want %s", tt.query, got, tt.want)
			}
		})
	}
}

func TestRoute_PriorityOrder(t *testing.T) {
	r := defaultRouter()
	// Matches portfolio, market, and goal tables at once; portfolio wins.
	query := "diversify my portfolio, check the AAPL stock price, and plan for retirement"
	if got := r.Route(query); got != IntentPortfolio {
		t.Errorf("Route(%q) = %s, want %s", query, got, IntentPortfolio)
	}
	// Market outranks goal.
	query = "market trend for my retirement savings"
	if got := r.Route(query); got != IntentMarket {
		t.Errorf("Route(%q) = %s, want %s", query, got, IntentMarket)
	}
}

func TestRoute_CaseInsensitive(t *testing.T) {
	r := defaultRouter()
	if got := r.Route("ANALYZE MY PORTFOLIO"); got != IntentPortfolio {
		t.Errorf("Route uppercase = %s, want %s", got, IntentPortfolio)
	}
}

func TestRoute_CustomKeywords(t *testing.T) {
	r := NewRouter(&config.RouterConfig{
		PortfolioKeywords: []string{"basket"},
		MarketKeywords:    []string{"tape"},
		GoalKeywords:      []string{"dream"},
	}, nil)
	if got := r.Route("check my basket"); got != IntentPortfolio {
		t.Errorf("custom portfolio keyword not matched, got %s", got)
	}
	if got := r.Route("watch the tape"); got != IntentMarket {
		t.Errorf("custom market keyword not matched, got %s", got)
	}
	if got := r.Route("my dream home"); got != IntentGoal {
		t.Errorf("custom goal keyword not matched, got %s", got)
	}
	if got := r.Route("analyze my portfolio"); got != IntentQA {
		t.Errorf("default keywords should not apply with custom tables, got %s", got)
	}
}
