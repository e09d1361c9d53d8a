package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/smarimus/ai-finance-assistant/internal/agents"
	"github.com/smarimus/ai-finance-assistant/internal/config"
	"github.com/smarimus/ai-finance-assistant/internal/embedding"
	"github.com/smarimus/ai-finance-assistant/internal/indexer"
	"github.com/smarimus/ai-finance-assistant/internal/keyword"
	"github.com/smarimus/ai-finance-assistant/internal/knowledge"
	"github.com/smarimus/ai-finance-assistant/internal/market"
	"github.com/smarimus/ai-finance-assistant/internal/retriever"
	"github.com/smarimus/ai-finance-assistant/internal/router"
	"github.com/smarimus/ai-finance-assistant/internal/watcher"
)

func newTestServer(t *testing.T) (*Server, http.Handler) {
	t.Helper()
	var cfg config.Config
	config.ApplyDefaults(&cfg)
	cfg.Embedding.Dimensions = 16
	cfg.Retrieval.ChunkSize = 300
	cfg.Retrieval.ChunkOverlap = 30
	cfg.Storage.IndexStem = filepath.Join(t.TempDir(), "kb")
	cfg.Storage.BleveIndexPath = ""

	ix, err := knowledge.Open(cfg.Storage.IndexStem, cfg.Embedding.Dimensions)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { ix.Close() })

	kw, err := keyword.NewMemoryBleveIndex()
	if err != nil {
		t.Fatalf("NewMemoryBleveIndex: %v", err)
	}
	embedder := embedding.NewMockEmbedder(cfg.Embedding.Dimensions)
	idxr, err := indexer.NewIndexer(ix.Storage(), embedder, ix.Vectors(), kw, &cfg.Retrieval)
	if err != nil {
		t.Fatalf("NewIndexer: %v", err)
	}

	marketClient := market.NewClient(&cfg.Market, "", nil)
	r := retriever.NewRetriever(ix, embedder, &cfg.Retrieval, nil)
	qa := agents.NewQAAgent(r, kw, ix, nil, cfg.Retrieval.MaxContextChars, nil)
	assistant := agents.NewAssistant(
		router.NewRouter(&cfg.Router, nil),
		qa,
		agents.NewPortfolioAgent(),
		agents.NewMarketAgent(marketClient),
		agents.NewGoalAgent(),
		nil,
	)

	srv := NewServer(assistant, idxr, ix, marketClient, &cfg, zap.NewNop())
	return srv, srv.Routes()
}

func doJSON(t *testing.T, h http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func TestHandleHealth(t *testing.T) {
	_, h := newTestServer(t)
	w := doJSON(t, h, http.MethodGet, "/health", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestHandleQueryRoutesPortfolio(t *testing.T) {
	_, h := newTestServer(t)
	w := doJSON(t, h, http.MethodPost, "/api/v1/query", map[string]interface{}{
		"query": "analyze my portfolio",
		"holdings": []map[string]interface{}{
			{"name": "Apple", "symbol": "AAPL", "type": "stock", "value": 50000},
			{"name": "Bonds", "symbol": "BND", "type": "bond", "value": 50000},
		},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	var answer struct {
		Agent    string `json:"agent"`
		Response string `json:"response"`
	}
	decodeBody(t, w, &answer)
	if answer.Agent != "portfolio_analysis" {
		t.Errorf("agent = %s", answer.Agent)
	}
	if !strings.Contains(answer.Response, "Diversification") {
		t.Errorf("response missing analysis:\n%s", answer.Response)
	}
}

func TestHandleQueryBadBody(t *testing.T) {
	_, h := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/query", strings.NewReader("{"))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestHandleQueryEmptyQueryStillAnswers(t *testing.T) {
	_, h := newTestServer(t)
	w := doJSON(t, h, http.MethodPost, "/api/v1/query", map[string]string{"query": ""})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var answer struct {
		Degraded bool `json:"degraded"`
	}
	decodeBody(t, w, &answer)
	if !answer.Degraded {
		t.Error("empty query should yield a degraded answer, not an HTTP error")
	}
}

func TestHandleQuote(t *testing.T) {
	_, h := newTestServer(t)
	w := doJSON(t, h, http.MethodGet, "/api/v1/quote/aapl", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var quote struct {
		Symbol string  `json:"symbol"`
		Price  float64 `json:"price"`
		Mock   bool    `json:"mock"`
	}
	decodeBody(t, w, &quote)
	if quote.Symbol != "AAPL" {
		t.Errorf("symbol = %s", quote.Symbol)
	}
	if quote.Price <= 0 {
		t.Errorf("price = %v", quote.Price)
	}
	if !quote.Mock {
		t.Error("keyless client should return mock quotes")
	}
}

func TestHandleOverview(t *testing.T) {
	_, h := newTestServer(t)
	w := doJSON(t, h, http.MethodGet, "/api/v1/market/overview", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp struct {
		Quotes []struct {
			Symbol string `json:"symbol"`
		} `json:"quotes"`
	}
	decodeBody(t, w, &resp)
	if len(resp.Quotes) != 4 {
		t.Errorf("got %d quotes, want 4", len(resp.Quotes))
	}
}

func TestDocumentLifecycle(t *testing.T) {
	_, h := newTestServer(t)

	w := doJSON(t, h, http.MethodPost, "/api/v1/documents", map[string]string{
		"id":       "doc1",
		"title":    "Roth IRA Basics",
		"text":     "A Roth IRA is funded with after-tax dollars.",
		"category": "retirement_planning",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("index status = %d, body %s", w.Code, w.Body.String())
	}

	w = doJSON(t, h, http.MethodGet, "/api/v1/documents/doc1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d", w.Code)
	}
	var article struct {
		Title string `json:"title"`
	}
	decodeBody(t, w, &article)
	if article.Title != "Roth IRA Basics" {
		t.Errorf("title = %q", article.Title)
	}

	// Freshly indexed content must be retrievable through the query path.
	w = doJSON(t, h, http.MethodPost, "/api/v1/query", map[string]string{
		"query": "what is a roth ira account",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("query status = %d", w.Code)
	}
	var answer struct {
		Sources []struct {
			Title string `json:"title"`
		} `json:"sources"`
	}
	decodeBody(t, w, &answer)
	if len(answer.Sources) == 0 {
		t.Error("query after indexing returned no sources")
	}

	w = doJSON(t, h, http.MethodDelete, "/api/v1/documents/doc1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("delete status = %d", w.Code)
	}
	w = doJSON(t, h, http.MethodGet, "/api/v1/documents/doc1", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("get after delete status = %d, want 404", w.Code)
	}
}

func TestIndexDocumentUnknownCategory(t *testing.T) {
	_, h := newTestServer(t)
	w := doJSON(t, h, http.MethodPost, "/api/v1/documents", map[string]string{
		"title":    "Bad",
		"text":     "text",
		"category": "astrology",
	})
	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d", w.Code)
	}
}

func TestHandleStatus(t *testing.T) {
	_, h := newTestServer(t)
	doJSON(t, h, http.MethodPost, "/api/v1/documents", map[string]string{
		"title": "Doc", "text": "Some indexed text about budgeting.",
	})

	w := doJSON(t, h, http.MethodGet, "/api/v1/status", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp map[string]interface{}
	decodeBody(t, w, &resp)
	if resp["articles"].(float64) != 1 {
		t.Errorf("articles = %v", resp["articles"])
	}
	if resp["chunks"].(float64) < 1 {
		t.Errorf("chunks = %v", resp["chunks"])
	}
	if resp["market_mock_mode"] != true {
		t.Error("market_mock_mode missing")
	}
	if _, ok := resp["config"]; !ok {
		t.Error("config block missing")
	}
}

func TestWatchEndpointsDisabled(t *testing.T) {
	_, h := newTestServer(t)
	w := doJSON(t, h, http.MethodGet, "/api/v1/watch/directories", nil)
	if w.Code != http.StatusNotImplemented {
		t.Errorf("status = %d, want 501", w.Code)
	}
}

func TestWatchAddListRemove(t *testing.T) {
	srv, h := newTestServer(t)
	wtc := watcher.New(nil, []string{".md"}, true, nil, nil)
	if err := wtc.Start(context.Background()); err != nil {
		t.Fatalf("watcher Start: %v", err)
	}
	defer wtc.Stop()
	srv.EnableWatch(wtc, "")

	dir := t.TempDir()
	w := doJSON(t, h, http.MethodPost, "/api/v1/watch/directories", map[string]interface{}{
		"path": dir, "sync": false,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("add status = %d, body %s", w.Code, w.Body.String())
	}

	w = doJSON(t, h, http.MethodGet, "/api/v1/watch/directories", nil)
	var list struct {
		Directories []string `json:"directories"`
	}
	decodeBody(t, w, &list)
	if len(list.Directories) != 1 {
		t.Fatalf("got %d directories, want 1", len(list.Directories))
	}

	w = doJSON(t, h, http.MethodDelete, "/api/v1/watch/directories?path="+dir, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("remove status = %d", w.Code)
	}
	w = doJSON(t, h, http.MethodGet, "/api/v1/watch/directories", nil)
	list.Directories = nil
	decodeBody(t, w, &list)
	if len(list.Directories) != 0 {
		t.Errorf("got %d directories after removal, want 0", len(list.Directories))
	}
}

func TestWatchAddMissingDirectory(t *testing.T) {
	srv, h := newTestServer(t)
	wtc := watcher.New(nil, nil, true, nil, nil)
	if err := wtc.Start(context.Background()); err != nil {
		t.Fatalf("watcher Start: %v", err)
	}
	defer wtc.Stop()
	srv.EnableWatch(wtc, "")

	w := doJSON(t, h, http.MethodPost, "/api/v1/watch/directories", map[string]string{
		"path": "/nonexistent/kb/dir",
	})
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}
