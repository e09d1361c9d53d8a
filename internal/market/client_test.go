package market

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/smarimus/ai-finance-assistant/internal/config"
)

func testMarketConfig(baseURL string) *config.MarketConfig {
	return &config.MarketConfig{
		BaseURL:           baseURL,
		CacheTTLSeconds:   300,
		RequestsPerMinute: 600, // effectively unlimited in tests
	}
}

const quoteJSON = `{
	"Global Quote": {
		"01. symbol": "AAPL",
		"02. open": "149.50",
		"03. high": "151.00",
		"04. low": "148.75",
		"05. price": "150.25",
		"06. volume": "52000000",
		"08. previous close": "149.00",
		"09. change": "1.25",
		"10. change percent": "0.8389%"
	}
}`

func TestClient_Quote(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if got := r.URL.Query().Get("function"); got != "GLOBAL_QUOTE" {
			t.Errorf("function = %q", got)
		}
		if got := r.URL.Query().Get("symbol"); got != "AAPL" {
			t.Errorf("symbol = %q", got)
		}
		_, _ = w.Write([]byte(quoteJSON))
	}))
	defer srv.Close()

	c := NewClient(testMarketConfig(srv.URL), "test-key", nil)
	quote, err := c.Quote(context.Background(), "aapl")
	if err != nil {
		t.Fatal(err)
	}
	if quote.Symbol != "AAPL" || quote.Price != 150.25 {
		t.Errorf("quote = %+v", quote)
	}
	if quote.ChangePercent != 0.8389 {
		t.Errorf("change percent = %v", quote.ChangePercent)
	}
	if quote.Volume != 52000000 {
		t.Errorf("volume = %d", quote.Volume)
	}
	if quote.Mock {
		t.Error("live quote marked as mock")
	}
}

func TestClient_CachesWithinTTL(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		_, _ = w.Write([]byte(quoteJSON))
	}))
	defer srv.Close()

	c := NewClient(testMarketConfig(srv.URL), "test-key", nil)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if _, err := c.Quote(ctx, "AAPL"); err != nil {
			t.Fatal(err)
		}
	}
	if calls != 1 {
		t.Errorf("API called %d times, want 1", calls)
	}
}

func TestClient_CacheExpires(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		_, _ = w.Write([]byte(quoteJSON))
	}))
	defer srv.Close()

	c := NewClient(testMarketConfig(srv.URL), "test-key", nil)
	current := time.Now()
	c.now = func() time.Time { return current }

	ctx := context.Background()
	if _, err := c.Quote(ctx, "AAPL"); err != nil {
		t.Fatal(err)
	}
	current = current.Add(301 * time.Second)
	if _, err := c.Quote(ctx, "AAPL"); err != nil {
		t.Fatal(err)
	}
	if calls != 2 {
		t.Errorf("API called %d times, want 2 after TTL expiry", calls)
	}
}

func TestClient_MockMode(t *testing.T) {
	c := NewClient(testMarketConfig("http://unused.invalid"), "", nil)
	if !c.MockMode() {
		t.Fatal("expected mock mode without API key")
	}
	ctx := context.Background()
	a, err := c.Quote(ctx, "AAPL")
	if err != nil {
		t.Fatal(err)
	}
	if !a.Mock {
		t.Error("mock quote not marked")
	}
	if a.Price <= 0 {
		t.Errorf("price = %v, want positive", a.Price)
	}
	// Deterministic per symbol.
	c.ClearCache()
	b, _ := c.Quote(ctx, "AAPL")
	if a.Price != b.Price || a.Change != b.Change {
		t.Error("mock quotes not deterministic")
	}
}

func TestClient_FallsBackToMockOnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(testMarketConfig(srv.URL), "test-key", nil)
	quote, err := c.Quote(context.Background(), "AAPL")
	if err != nil {
		t.Fatal(err)
	}
	if !quote.Mock {
		t.Error("expected mock fallback quote")
	}
}

func TestClient_ThrottleNoteFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"Note": "API call frequency exceeded"}`))
	}))
	defer srv.Close()

	c := NewClient(testMarketConfig(srv.URL), "test-key", nil)
	quote, err := c.Quote(context.Background(), "MSFT")
	if err != nil {
		t.Fatal(err)
	}
	if !quote.Mock {
		t.Error("expected mock fallback on throttle note")
	}
}

func TestClient_EmptySymbol(t *testing.T) {
	c := NewClient(testMarketConfig("http://unused.invalid"), "", nil)
	if _, err := c.Quote(context.Background(), "  "); err == nil {
		t.Error("expected error for empty symbol")
	}
}

func TestClient_Overview(t *testing.T) {
	c := NewClient(testMarketConfig("http://unused.invalid"), "", nil)
	quotes := c.Overview(context.Background())
	if len(quotes) != 4 {
		t.Fatalf("got %d quotes, want 4", len(quotes))
	}
	want := map[string]bool{"SPY": true, "QQQ": true, "DIA": true, "IWM": true}
	for _, q := range quotes {
		if !want[q.Symbol] {
			t.Errorf("unexpected symbol %s", q.Symbol)
		}
	}
}
