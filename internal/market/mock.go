package market

import (
	"hash/fnv"
	"math"
	"time"
)

// Reference prices for well-known symbols; unknown symbols get 100.
var mockBasePrices = map[string]float64{
	"AAPL": 150.0, "MSFT": 300.0, "GOOGL": 2500.0, "AMZN": 3000.0, "TSLA": 800.0,
	"SPY": 400.0, "QQQ": 350.0, "DIA": 340.0, "IWM": 200.0,
	"NVDA": 400.0, "META": 250.0, "NFLX": 400.0,
}

// mockQuote generates a deterministic quote: the same symbol always produces
// the same numbers, so tests and offline demos are reproducible.
func mockQuote(symbol string, now time.Time) *Quote {
	base, ok := mockBasePrices[symbol]
	if !ok {
		base = 100.0
	}
	// Symbol-derived pseudo-random drift within ±5%.
	h := fnv.New32a()
	_, _ = h.Write([]byte(symbol))
	drift := (float64(h.Sum32()%1000)/1000 - 0.5) * 0.10
	price := round2(base * (1 + drift))
	change := round2((float64(h.Sum32()%200)/200 - 0.5) * 10)

	return &Quote{
		Symbol:        symbol,
		Price:         price,
		Change:        change,
		ChangePercent: round2(change / price * 100),
		Volume:        int64(1000000 + h.Sum32()%49000000),
		High:          round2(price * 1.02),
		Low:           round2(price * 0.98),
		Open:          round2(price * 1.005),
		PreviousClose: round2(price - change),
		Timestamp:     now,
		Mock:          true,
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
