// Package cli renders answers and quotes for terminal output.
package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/smarimus/ai-finance-assistant/internal/market"
	"github.com/smarimus/ai-finance-assistant/internal/models"
)

// OutputFormat selects how results are rendered.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// ParseFormat converts a flag value to an OutputFormat.
func ParseFormat(s string) (OutputFormat, error) {
	switch s {
	case "", "text":
		return OutputText, nil
	case "json":
		return OutputJSON, nil
	default:
		return "", fmt.Errorf("unknown output format %q; use text or json", s)
	}
}

// WriteAnswer writes an assistant answer to w in the given format.
func WriteAnswer(w io.Writer, answer *models.Answer, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, answer)
	}
	fmt.Fprintln(w, answer.Response)
	if len(answer.Sources) > 0 {
		fmt.Fprintln(w, "\nSources:")
		for i, src := range answer.Sources {
			fmt.Fprintf(w, "  %d. %s (%s)\n", i+1, src.Title, src.Category)
		}
	}
	fmt.Fprintf(w, "\n[%s", answer.Agent)
	if answer.Degraded {
		fmt.Fprint(w, ", degraded")
	}
	fmt.Fprintf(w, ", %dms]\n", answer.QueryTime)
	return nil
}

// WriteQuote writes a stock quote to w in the given format.
func WriteQuote(w io.Writer, quote *market.Quote, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, quote)
	}
	fmt.Fprintf(w, "%s  $%.2f  %+.2f (%+.2f%%)\n", quote.Symbol, quote.Price, quote.Change, quote.ChangePercent)
	fmt.Fprintf(w, "  open %.2f  high %.2f  low %.2f  prev close %.2f  volume %d\n",
		quote.Open, quote.High, quote.Low, quote.PreviousClose, quote.Volume)
	if quote.Mock {
		fmt.Fprintln(w, "  (simulated data)")
	}
	return nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
