package finance

import (
	"fmt"
	"sort"
	"strings"
)

// Holding is one position in a portfolio.
type Holding struct {
	Name        string  `json:"name"`
	Symbol      string  `json:"symbol,omitempty"`
	Type        string  `json:"type,omitempty"`
	Description string  `json:"description,omitempty"`
	Value       float64 `json:"value"`
}

// AllocationEntry is one holding's share of the portfolio.
type AllocationEntry struct {
	Name    string  `json:"name"`
	Symbol  string  `json:"symbol,omitempty"`
	Value   float64 `json:"value"`
	Percent float64 `json:"percent"`
}

// ConcentrationRisk summarizes how concentrated the portfolio is.
type ConcentrationRisk struct {
	Level          string  `json:"level"`
	Description    string  `json:"description"`
	LargestPercent float64 `json:"largest_holding_percent"`
	Top3Percent    float64 `json:"top_3_percent"`
	Top5Percent    float64 `json:"top_5_percent"`
}

// RiskScore is the weighted portfolio risk on a 0-100 scale.
type RiskScore struct {
	Score       float64 `json:"score"`
	Level       string  `json:"level"`
	Description string  `json:"description"`
}

// PortfolioMetrics is the full analysis of a set of holdings.
type PortfolioMetrics struct {
	TotalValue           float64            `json:"total_value"`
	NumHoldings          int                `json:"num_holdings"`
	Allocation           []AllocationEntry  `json:"allocation"`
	AssetClassAllocation map[string]float64 `json:"asset_class_allocation"`
	DiversificationScore float64            `json:"diversification_score"`
	Concentration        ConcentrationRisk  `json:"concentration_risk"`
	Risk                 RiskScore          `json:"risk_score"`
}

// Keyword tables for classifying holdings into asset classes. Matching is by
// substring over name, type, and description; unmatched holdings default to
// stocks.
var assetClassKeywords = []struct {
	class    string
	keywords []string
}{
	{"bonds", []string{"bond", "treasury", "municipal"}},
	{"cash", []string{"cash", "money market", "savings"}},
	{"alternatives", []string{"reit", "commodity", "crypto", "alternative"}},
	{"stocks", []string{"stock", "equity", "etf", "mutual fund"}},
}

var riskWeights = map[string]float64{
	"stocks":       0.8,
	"alternatives": 0.9,
	"bonds":        0.3,
	"cash":         0.1,
}

// AnalyzePortfolio computes all metrics for a set of holdings.
func AnalyzePortfolio(holdings []Holding) PortfolioMetrics {
	if len(holdings) == 0 {
		return PortfolioMetrics{
			Concentration: ConcentrationRisk{Level: "unknown", Description: "No holdings to analyze"},
			Risk:          RiskScore{Score: 50, Level: "moderate", Description: "No data available"},
		}
	}
	total := TotalValue(holdings)
	allocation := Allocation(holdings)
	assetClasses := AssetClassAllocation(holdings)
	return PortfolioMetrics{
		TotalValue:           total,
		NumHoldings:          len(holdings),
		Allocation:           allocation,
		AssetClassAllocation: assetClasses,
		DiversificationScore: DiversificationScore(allocation),
		Concentration:        Concentration(allocation),
		Risk:                 PortfolioRisk(assetClasses),
	}
}

// TotalValue sums the value of all holdings.
func TotalValue(holdings []Holding) float64 {
	var total float64
	for _, h := range holdings {
		total += h.Value
	}
	return total
}

// Allocation returns each holding's share of the portfolio, sorted by
// percentage descending. Returns nil for a zero-value portfolio.
func Allocation(holdings []Holding) []AllocationEntry {
	total := TotalValue(holdings)
	if total == 0 {
		return nil
	}
	out := make([]AllocationEntry, len(holdings))
	for i, h := range holdings {
		out[i] = AllocationEntry{
			Name:    h.Name,
			Symbol:  h.Symbol,
			Value:   h.Value,
			Percent: h.Value / total * 100,
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Percent > out[j].Percent })
	return out
}

// AssetClassAllocation returns the percentage of the portfolio in each asset
// class. Classes with no value are omitted.
func AssetClassAllocation(holdings []Holding) map[string]float64 {
	total := TotalValue(holdings)
	if total == 0 {
		return nil
	}
	classTotals := make(map[string]float64)
	for _, h := range holdings {
		classTotals[classifyAsset(h)] += h.Value
	}
	out := make(map[string]float64, len(classTotals))
	for class, value := range classTotals {
		if value > 0 {
			out[class] = value / total * 100
		}
	}
	return out
}

func classifyAsset(h Holding) string {
	text := strings.ToLower(h.Name + " " + h.Type + " " + h.Description)
	for _, entry := range assetClassKeywords {
		for _, kw := range entry.keywords {
			if strings.Contains(text, kw) {
				return entry.class
			}
		}
	}
	return "stocks"
}

// DiversificationScore converts the allocation's Herfindahl-Hirschman index
// into a 0-100 score where higher means better diversified.
func DiversificationScore(allocation []AllocationEntry) float64 {
	if len(allocation) == 0 {
		return 0
	}
	var hhi float64
	for _, a := range allocation {
		share := a.Percent / 100
		hhi += share * share
	}
	if hhi <= 0 {
		return 0
	}
	perfect := 1 / float64(len(allocation))
	score := perfect / hhi * 50
	if score > 100 {
		score = 100
	}
	return score
}

// Concentration classifies how much of the portfolio sits in the largest
// holdings. Allocation must be sorted by percentage descending.
func Concentration(allocation []AllocationEntry) ConcentrationRisk {
	if len(allocation) == 0 {
		return ConcentrationRisk{Level: "unknown", Description: "No holdings to analyze"}
	}
	largest := allocation[0].Percent
	var top3, top5 float64
	for i, a := range allocation {
		if i < 3 {
			top3 += a.Percent
		}
		if i < 5 {
			top5 += a.Percent
		}
	}
	risk := ConcentrationRisk{LargestPercent: largest, Top3Percent: top3, Top5Percent: top5}
	switch {
	case largest > 50:
		risk.Level = "very_high"
		risk.Description = fmt.Sprintf("Very high concentration risk: largest holding is %.1f%%", largest)
	case largest > 25:
		risk.Level = "high"
		risk.Description = fmt.Sprintf("High concentration risk: largest holding is %.1f%%", largest)
	case top3 > 75:
		risk.Level = "moderate"
		risk.Description = fmt.Sprintf("Moderate concentration risk: top 3 holdings are %.1f%%", top3)
	case top5 > 80:
		risk.Level = "low"
		risk.Description = fmt.Sprintf("Low concentration risk: top 5 holdings are %.1f%%", top5)
	default:
		risk.Level = "very_low"
		risk.Description = "Very low concentration risk: well diversified"
	}
	return risk
}

// PortfolioRisk computes the weighted risk score of an asset class allocation.
func PortfolioRisk(assetClasses map[string]float64) RiskScore {
	var totalPercent float64
	for _, p := range assetClasses {
		totalPercent += p
	}
	if totalPercent == 0 {
		return RiskScore{Score: 50, Level: "moderate", Description: "Unable to determine risk"}
	}
	var weighted float64
	for class, percent := range assetClasses {
		weight, ok := riskWeights[class]
		if !ok {
			weight = 0.5
		}
		weighted += percent / totalPercent * weight
	}
	score := weighted * 100
	risk := RiskScore{Score: score}
	switch {
	case score < 30:
		risk.Level = "conservative"
		risk.Description = "Conservative portfolio with lower risk and returns"
	case score < 50:
		risk.Level = "moderate"
		risk.Description = "Moderate portfolio with balanced risk and returns"
	case score < 70:
		risk.Level = "growth"
		risk.Description = "Growth-oriented portfolio with higher risk and return potential"
	default:
		risk.Level = "aggressive"
		risk.Description = "Aggressive portfolio with high risk and high return potential"
	}
	return risk
}
