package agents

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/smarimus/ai-finance-assistant/internal/market"
	"github.com/smarimus/ai-finance-assistant/internal/models"
	"github.com/smarimus/ai-finance-assistant/internal/router"
)

// MarketAgent answers market questions with live (or mock) quotes.
type MarketAgent struct {
	client *market.Client
}

// NewMarketAgent creates the market analysis agent.
func NewMarketAgent(client *market.Client) *MarketAgent {
	return &MarketAgent{client: client}
}

// Name implements Agent.
func (a *MarketAgent) Name() string { return string(router.IntentMarket) }

// tickerPattern matches candidate symbols: 1-5 uppercase letters as a word.
var tickerPattern = regexp.MustCompile(`\b[A-Z]{1,5}\b`)

// Common uppercase words that are not tickers.
var tickerStopwords = map[string]bool{
	"A": true, "I": true, "ETF": true, "USD": true, "API": true,
	"IRA": true, "US": true, "OK": true, "AND": true, "THE": true,
}

// Execute implements Agent. With no recognizable symbols in the query it
// answers with a market overview of the major index ETFs.
func (a *MarketAgent) Execute(ctx context.Context, req *Request) (*models.Answer, error) {
	symbols := extractSymbols(req.Query)

	var quotes []*market.Quote
	if len(symbols) == 0 {
		quotes = a.client.Overview(ctx)
	} else {
		quotes = a.client.Quotes(ctx, symbols)
	}
	if len(quotes) == 0 {
		return &models.Answer{
			Response: "I couldn't fetch market data right now. Please try again shortly.",
			Agent:    a.Name(),
			Degraded: true,
		}, nil
	}

	degraded := false
	if !a.client.MockMode() {
		for _, q := range quotes {
			if q.Mock {
				degraded = true
				break
			}
		}
	}
	return &models.Answer{
		Response: formatQuotes(quotes, len(symbols) == 0),
		Agent:    a.Name(),
		Degraded: degraded,
	}, nil
}

// extractSymbols pulls ticker symbols out of a query, preserving order and
// dropping duplicates.
func extractSymbols(query string) []string {
	matches := tickerPattern.FindAllString(query, -1)
	seen := make(map[string]bool, len(matches))
	var out []string
	for _, m := range matches {
		if tickerStopwords[m] || seen[m] {
			continue
		}
		seen[m] = true
		out = append(out, m)
	}
	return out
}

func formatQuotes(quotes []*market.Quote, overview bool) string {
	var b strings.Builder
	if overview {
		b.WriteString("Market overview (major index ETFs):\n\n")
	} else {
		b.WriteString("Latest quotes:\n\n")
	}
	for _, q := range quotes {
		direction := "up"
		if q.Change < 0 {
			direction = "down"
		}
		fmt.Fprintf(&b, "%s: $%.2f, %s %.2f (%.2f%%). Day range $%.2f-$%.2f, volume %d.\n",
			q.Symbol, q.Price, direction, abs(q.Change), q.ChangePercent, q.Low, q.High, q.Volume)
	}
	if quotes[0].Mock {
		b.WriteString("\nNote: simulated data, not live market prices.")
	}
	return b.String()
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
