// Package market provides stock quote lookup backed by the Alpha Vantage
// GLOBAL_QUOTE API, with a TTL cache and client-side rate limiting. Without an
// API key the client serves deterministic mock quotes so the rest of the
// system works offline.
package market

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/smarimus/ai-finance-assistant/internal/config"
)

// Quote is one stock quote.
type Quote struct {
	Symbol        string    `json:"symbol"`
	Price         float64   `json:"price"`
	Change        float64   `json:"change"`
	ChangePercent float64   `json:"change_percent"`
	Volume        int64     `json:"volume"`
	High          float64   `json:"high"`
	Low           float64   `json:"low"`
	Open          float64   `json:"open"`
	PreviousClose float64   `json:"previous_close"`
	Timestamp     time.Time `json:"timestamp"`
	// Mock is set when the quote was generated locally rather than fetched.
	Mock bool `json:"mock,omitempty"`
}

type cacheEntry struct {
	quote   *Quote
	fetched time.Time
}

// Client fetches quotes with caching and rate limiting. Safe for concurrent
// use.
type Client struct {
	baseURL    string
	apiKey     string
	cacheTTL   time.Duration
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *zap.Logger

	mu    sync.Mutex
	cache map[string]cacheEntry
	now   func() time.Time
}

// NewClient creates a market data client. An empty apiKey enables mock mode.
// logger may be nil.
func NewClient(cfg *config.MarketConfig, apiKey string, logger *zap.Logger) *Client {
	rpm := cfg.RequestsPerMinute
	if rpm <= 0 {
		rpm = 5
	}
	ttl := time.Duration(cfg.CacheTTLSeconds) * time.Second
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if logger != nil && apiKey == "" {
		logger.Warn("market API key not configured, serving mock quotes")
	}
	return &Client{
		baseURL:    cfg.BaseURL,
		apiKey:     apiKey,
		cacheTTL:   ttl,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		limiter:    rate.NewLimiter(rate.Limit(float64(rpm)/60), 1),
		logger:     logger,
		cache:      make(map[string]cacheEntry),
		now:        time.Now,
	}
}

// MockMode reports whether the client generates quotes locally.
func (c *Client) MockMode() bool {
	return c.apiKey == ""
}

// Quote returns the quote for a symbol, from cache when fresh. In mock mode,
// or when the API call fails, a locally generated quote marked Mock is
// returned instead of an error so callers can still answer.
func (c *Client) Quote(ctx context.Context, symbol string) (*Quote, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, fmt.Errorf("symbol cannot be empty")
	}

	c.mu.Lock()
	if entry, ok := c.cache[symbol]; ok && c.now().Sub(entry.fetched) < c.cacheTTL {
		c.mu.Unlock()
		return entry.quote, nil
	}
	c.mu.Unlock()

	if c.MockMode() {
		quote := mockQuote(symbol, c.now())
		c.store(symbol, quote)
		return quote, nil
	}

	quote, err := c.fetch(ctx, symbol)
	if err != nil {
		if c.logger != nil {
			c.logger.Warn("quote fetch failed, falling back to mock data",
				zap.String("symbol", symbol), zap.Error(err))
		}
		quote = mockQuote(symbol, c.now())
	}
	c.store(symbol, quote)
	return quote, nil
}

// Quotes returns quotes for several symbols, skipping ones that error.
func (c *Client) Quotes(ctx context.Context, symbols []string) []*Quote {
	out := make([]*Quote, 0, len(symbols))
	for _, s := range symbols {
		quote, err := c.Quote(ctx, s)
		if err != nil {
			continue
		}
		out = append(out, quote)
	}
	return out
}

// Overview returns quotes for the major index ETFs.
func (c *Client) Overview(ctx context.Context) []*Quote {
	return c.Quotes(ctx, []string{"SPY", "QQQ", "DIA", "IWM"})
}

// ClearCache drops all cached quotes.
func (c *Client) ClearCache() {
	c.mu.Lock()
	c.cache = make(map[string]cacheEntry)
	c.mu.Unlock()
}

func (c *Client) store(symbol string, quote *Quote) {
	c.mu.Lock()
	c.cache[symbol] = cacheEntry{quote: quote, fetched: c.now()}
	c.mu.Unlock()
}

// globalQuoteResponse matches Alpha Vantage's numbered field names.
type globalQuoteResponse struct {
	GlobalQuote struct {
		Symbol        string `json:"01. symbol"`
		Open          string `json:"02. open"`
		High          string `json:"03. high"`
		Low           string `json:"04. low"`
		Price         string `json:"05. price"`
		Volume        string `json:"06. volume"`
		PreviousClose string `json:"08. previous close"`
		Change        string `json:"09. change"`
		ChangePercent string `json:"10. change percent"`
	} `json:"Global Quote"`
	Note         string `json:"Note,omitempty"`
	ErrorMessage string `json:"Error Message,omitempty"`
}

func (c *Client) fetch(ctx context.Context, symbol string) (*Quote, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}
	params := url.Values{}
	params.Set("function", "GLOBAL_QUOTE")
	params.Set("symbol", symbol)
	params.Set("apikey", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build quote request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("quote request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("quote API returned %d", resp.StatusCode)
	}

	var parsed globalQuoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode quote response: %w", err)
	}
	if parsed.ErrorMessage != "" {
		return nil, fmt.Errorf("quote API error: %s", parsed.ErrorMessage)
	}
	if parsed.Note != "" {
		return nil, fmt.Errorf("quote API throttled: %s", parsed.Note)
	}
	if parsed.GlobalQuote.Symbol == "" && parsed.GlobalQuote.Price == "" {
		return nil, fmt.Errorf("quote API returned no data for %s", symbol)
	}

	g := parsed.GlobalQuote
	quote := &Quote{
		Symbol:        g.Symbol,
		Price:         parseFloat(g.Price),
		Change:        parseFloat(g.Change),
		ChangePercent: parseFloat(strings.TrimSuffix(g.ChangePercent, "%")),
		Volume:        parseInt(g.Volume),
		High:          parseFloat(g.High),
		Low:           parseFloat(g.Low),
		Open:          parseFloat(g.Open),
		PreviousClose: parseFloat(g.PreviousClose),
		Timestamp:     c.now(),
	}
	if quote.Symbol == "" {
		quote.Symbol = symbol
	}
	return quote, nil
}

func parseFloat(s string) float64 {
	v, _ := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return v
}

func parseInt(s string) int64 {
	v, _ := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	return v
}
