package agents

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/smarimus/ai-finance-assistant/internal/finance"
	"github.com/smarimus/ai-finance-assistant/internal/models"
	"github.com/smarimus/ai-finance-assistant/internal/router"
)

// PortfolioAgent analyzes the holdings supplied with the request.
type PortfolioAgent struct{}

// NewPortfolioAgent creates the portfolio analysis agent.
func NewPortfolioAgent() *PortfolioAgent { return &PortfolioAgent{} }

// Name implements Agent.
func (a *PortfolioAgent) Name() string { return string(router.IntentPortfolio) }

// Execute implements Agent.
func (a *PortfolioAgent) Execute(ctx context.Context, req *Request) (*models.Answer, error) {
	if len(req.Holdings) == 0 {
		return &models.Answer{
			Response: "I need your holdings to analyze a portfolio. Provide them with the request (name, symbol, type, value), or upload a portfolio file with the ingest command.",
			Agent:    a.Name(),
		}, nil
	}
	metrics := finance.AnalyzePortfolio(req.Holdings)
	return &models.Answer{
		Response: formatPortfolioReport(metrics),
		Agent:    a.Name(),
	}, nil
}

func formatPortfolioReport(m finance.PortfolioMetrics) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Portfolio Analysis\n\n")
	fmt.Fprintf(&b, "Total value: $%.2f across %d holdings.\n\n", m.TotalValue, m.NumHoldings)

	b.WriteString("Allocation:\n")
	for _, a := range m.Allocation {
		label := a.Name
		if a.Symbol != "" {
			label = fmt.Sprintf("%s (%s)", a.Name, a.Symbol)
		}
		fmt.Fprintf(&b, "  %-40s %6.2f%%  $%.2f\n", label, a.Percent, a.Value)
	}

	if len(m.AssetClassAllocation) > 0 {
		b.WriteString("\nAsset classes:\n")
		classes := make([]string, 0, len(m.AssetClassAllocation))
		for class := range m.AssetClassAllocation {
			classes = append(classes, class)
		}
		sort.Slice(classes, func(i, j int) bool {
			return m.AssetClassAllocation[classes[i]] > m.AssetClassAllocation[classes[j]]
		})
		for _, class := range classes {
			fmt.Fprintf(&b, "  %-15s %6.2f%%\n", class, m.AssetClassAllocation[class])
		}
	}

	fmt.Fprintf(&b, "\nDiversification score: %.1f/100\n", m.DiversificationScore)
	fmt.Fprintf(&b, "Concentration: %s\n", m.Concentration.Description)
	fmt.Fprintf(&b, "Risk profile: %s (%.1f/100). %s\n", m.Risk.Level, m.Risk.Score, m.Risk.Description)
	return b.String()
}
