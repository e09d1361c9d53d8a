// Package main is the finassist CLI entry point.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/smarimus/ai-finance-assistant/internal/agents"
	"github.com/smarimus/ai-finance-assistant/internal/cli"
	"github.com/smarimus/ai-finance-assistant/internal/config"
	"github.com/smarimus/ai-finance-assistant/internal/embedding"
	"github.com/smarimus/ai-finance-assistant/internal/extract"
	"github.com/smarimus/ai-finance-assistant/internal/indexer"
	"github.com/smarimus/ai-finance-assistant/internal/keyword"
	"github.com/smarimus/ai-finance-assistant/internal/knowledge"
	"github.com/smarimus/ai-finance-assistant/internal/llm"
	"github.com/smarimus/ai-finance-assistant/internal/market"
	"github.com/smarimus/ai-finance-assistant/internal/models"
	"github.com/smarimus/ai-finance-assistant/internal/portfolio"
	"github.com/smarimus/ai-finance-assistant/internal/retriever"
	"github.com/smarimus/ai-finance-assistant/internal/router"
	"github.com/smarimus/ai-finance-assistant/internal/server"
	"github.com/smarimus/ai-finance-assistant/internal/storage"
	"github.com/smarimus/ai-finance-assistant/internal/watcher"
	"github.com/smarimus/ai-finance-assistant/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "config.yaml"

func main() {
	// A .env next to the binary is a convenience for development; absence is
	// not an error.
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	switch os.Args[1] {
	case "server":
		runServer()
	case "ask":
		runAsk()
	case "ingest":
		runIngest()
	case "quote":
		runQuote()
	case "status":
		runStatus()
	case "version", "--version", "-v":
		fmt.Printf("finassist version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

// components holds the initialized service graph.
type components struct {
	Index     *knowledge.Index
	Keyword   keyword.KeywordIndex
	Embedder  embedding.Embedder
	Indexer   *indexer.Indexer
	Market    *market.Client
	Assistant *agents.Assistant
}

func (c *components) Close() {
	if c.Keyword != nil {
		_ = c.Keyword.Close()
	}
	if c.Embedder != nil {
		_ = c.Embedder.Close()
	}
	if c.Index != nil {
		_ = c.Index.Close()
	}
}

// Save persists the vector index pair so the next start can load it.
func (c *components) Save(logger *zap.Logger) {
	if err := c.Index.Save(); err != nil {
		logger.Warn("vector index save failed", zap.Error(err))
	}
}

func newEmbedder(cfg *config.EmbeddingConfig, logger *zap.Logger) embedding.Embedder {
	switch cfg.Provider {
	case "mock":
		return embedding.NewMockEmbedder(cfg.Dimensions)
	case "onnx":
		e, err := embedding.NewONNXEmbedder(cfg.ModelPath, cfg.Dimensions, cfg.MaxTokens, cfg.CacheSize)
		if err != nil {
			logger.Warn("ONNX embedder unavailable, using mock embeddings", zap.Error(err))
			return embedding.NewMockEmbedder(cfg.Dimensions)
		}
		return e
	default:
		return embedding.NewRemoteEmbedder(cfg.BaseURL, os.Getenv("LLM_API_KEY"), cfg.Model, cfg.Dimensions, cfg.CacheSize)
	}
}

func initComponents(cfg *config.Config, logger *zap.Logger, debug bool) (*components, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.Storage.IndexStem), 0755); err != nil {
		return nil, fmt.Errorf("create index directory: %w", err)
	}
	ix, err := knowledge.Open(cfg.Storage.IndexStem, cfg.Embedding.Dimensions)
	if err != nil {
		return nil, err
	}
	ctx := context.Background()
	if err := ix.Load(ctx); err != nil {
		switch {
		case errors.Is(err, knowledge.ErrIndexMissing):
			logger.Info("no persisted index found, starting empty",
				zap.String("stem", cfg.Storage.IndexStem))
		case errors.Is(err, knowledge.ErrIndexCorrupt):
			_ = ix.Close()
			return nil, fmt.Errorf("%w; delete %s.vec and %s.db and re-run ingest",
				err, cfg.Storage.IndexStem, cfg.Storage.IndexStem)
		default:
			_ = ix.Close()
			return nil, err
		}
	}

	kw, err := keyword.NewBleveIndex(cfg.Storage.BleveIndexPath)
	if err != nil {
		_ = ix.Close()
		return nil, fmt.Errorf("open keyword index: %w", err)
	}

	embedder := newEmbedder(&cfg.Embedding, logger)

	var idxOpts []indexer.IndexerOption
	if debug {
		idxOpts = append(idxOpts, indexer.WithLogger(logger))
	}
	idxr, err := indexer.NewIndexer(ix.Storage(), embedder, ix.Vectors(), kw, &cfg.Retrieval, idxOpts...)
	if err != nil {
		_ = kw.Close()
		_ = ix.Close()
		return nil, err
	}

	marketClient := market.NewClient(&cfg.Market, os.Getenv("MARKET_API_KEY"), logger)

	var completer llm.Completer
	if key := os.Getenv("LLM_API_KEY"); key != "" {
		completer = llm.NewOpenAIClient(&cfg.LLM, key)
	} else {
		logger.Warn("LLM_API_KEY not set, answers will quote knowledge-base passages directly")
	}

	r := retriever.NewRetriever(ix, embedder, &cfg.Retrieval, logger)
	assistant := agents.NewAssistant(
		router.NewRouter(&cfg.Router, logger),
		agents.NewQAAgent(r, kw, ix, completer, cfg.Retrieval.MaxContextChars, logger),
		agents.NewPortfolioAgent(),
		agents.NewMarketAgent(marketClient),
		agents.NewGoalAgent(),
		logger,
	)

	return &components{
		Index:     ix,
		Keyword:   kw,
		Embedder:  embedder,
		Indexer:   idxr,
		Market:    marketClient,
		Assistant: assistant,
	}, nil
}

func loadConfigOrExit(path string) *config.Config {
	cfg, err := config.Load(path)
	if err != nil {
		// A missing config file means "use defaults", matching a fresh install.
		if errors.Is(err, os.ErrNotExist) {
			var blank config.Config
			config.ApplyDefaults(&blank)
			return &blank
		}
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

func newLoggerOrExit(debug bool) *zap.Logger {
	logger, err := utils.NewLogger(debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	return logger
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg := loadConfigOrExit(*configPath)
	debugMode := cfg.Debug || *debug
	logger := newLoggerOrExit(debugMode)
	defer logger.Sync()

	comps, err := initComponents(cfg, logger, debugMode)
	if err != nil {
		logger.Fatal("failed to initialize", zap.Error(err))
	}
	defer comps.Close()

	srv := server.NewServer(comps.Assistant, comps.Indexer, comps.Index, comps.Market, cfg, logger)

	watchCtx, watchCancel := context.WithCancel(context.Background())
	defer watchCancel()
	if len(cfg.Watch.Directories) > 0 {
		var watchOpts []watcher.Option
		if debugMode {
			watchOpts = append(watchOpts, watcher.WithLogger(logger))
		}
		watchSvc := watcher.New(
			cfg.Watch.Directories,
			cfg.Watch.Extensions,
			cfg.Watch.RecursiveOrDefault(),
			func(path string) { ingestFile(comps, logger, path) },
			nil,
			watchOpts...,
		)
		if err := watchSvc.Start(watchCtx); err != nil {
			logger.Fatal("failed to start watcher", zap.Error(err))
		}
		srv.EnableWatch(watchSvc, *configPath)
	}

	go func() {
		if err := srv.Start(); err != nil {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutting down")
	comps.Save(logger)
	watchCancel()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

// ingestFile extracts one watched document and indexes it under a stable ID
// derived from its path, so re-saving a file replaces its chunks.
func ingestFile(comps *components, logger *zap.Logger, path string) {
	ctx := context.Background()
	text, err := extract.NewExtractor().Extract(path)
	if err != nil {
		logger.Warn("extract failed", zap.String("path", path), zap.Error(err))
		return
	}
	id := "file:" + filepath.Clean(path)
	_ = comps.Indexer.DeleteArticle(ctx, id)
	input := &models.ArticleInput{
		ID:    id,
		Title: strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
		Text:  text,
	}
	if err := comps.Indexer.IndexArticle(ctx, input); err != nil {
		logger.Warn("ingest failed", zap.String("path", path), zap.Error(err))
		return
	}
	if err := comps.Index.Refresh(ctx); err != nil {
		logger.Warn("index refresh failed", zap.Error(err))
	}
}

func runAsk() {
	fs := flag.NewFlagSet("ask", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	category := fs.String("category", "", "restrict retrieval to a category")
	k := fs.Int("k", 0, "number of passages to retrieve")
	holdingsPath := fs.String("holdings", "", "portfolio file (.csv or .xlsx) for portfolio questions")
	output := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	query := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if query == "" {
		fmt.Println("Usage: finassist ask [flags] <question>")
		os.Exit(1)
	}
	format, err := cli.ParseFormat(*output)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	cfg := loadConfigOrExit(*configPath)
	logger := newLoggerOrExit(cfg.Debug)
	defer logger.Sync()

	comps, err := initComponents(cfg, logger, cfg.Debug)
	if err != nil {
		logger.Fatal("failed to initialize", zap.Error(err))
	}
	defer comps.Close()

	req := &agents.Request{
		QueryRequest: models.QueryRequest{
			Query:    query,
			K:        *k,
			Category: *category,
		},
	}
	if *holdingsPath != "" {
		holdings, err := portfolio.Load(*holdingsPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load holdings: %v\n", err)
			os.Exit(1)
		}
		req.Holdings = holdings
	}

	answer := comps.Assistant.Answer(context.Background(), req)
	if err := cli.WriteAnswer(os.Stdout, answer, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func runIngest() {
	fs := flag.NewFlagSet("ingest", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Println("Usage: finassist ingest [flags] <corpus.json|document>")
		os.Exit(1)
	}
	path := fs.Arg(0)

	cfg := loadConfigOrExit(*configPath)
	logger := newLoggerOrExit(cfg.Debug)
	defer logger.Sync()

	comps, err := initComponents(cfg, logger, cfg.Debug)
	if err != nil {
		logger.Fatal("failed to initialize", zap.Error(err))
	}
	defer comps.Close()

	ctx := context.Background()
	if strings.EqualFold(filepath.Ext(path), ".json") {
		n, err := comps.Indexer.IndexCorpus(ctx, path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Ingest failed after %d article(s): %v\n", n, err)
			os.Exit(1)
		}
		fmt.Printf("Indexed %d article(s) from %s\n", n, path)
	} else {
		ingestFile(comps, logger, path)
		fmt.Printf("Indexed %s\n", path)
	}
	if err := comps.Index.Refresh(ctx); err != nil {
		logger.Fatal("index refresh failed", zap.Error(err))
	}
	comps.Save(logger)
}

func runQuote() {
	fs := flag.NewFlagSet("quote", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	output := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Println("Usage: finassist quote [flags] <symbol> [symbol...]")
		os.Exit(1)
	}
	format, err := cli.ParseFormat(*output)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	cfg := loadConfigOrExit(*configPath)
	client := market.NewClient(&cfg.Market, os.Getenv("MARKET_API_KEY"), nil)
	ctx := context.Background()
	for _, symbol := range fs.Args() {
		quote, err := client.Quote(ctx, symbol)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Quote failed for %s: %v\n", symbol, err)
			os.Exit(1)
		}
		if err := cli.WriteQuote(os.Stdout, quote, format); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
	}
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	_ = fs.Parse(os.Args[2:])

	cfg := loadConfigOrExit(*configPath)
	logger := newLoggerOrExit(cfg.Debug)
	defer logger.Sync()

	comps, err := initComponents(cfg, logger, cfg.Debug)
	if err != nil {
		logger.Fatal("failed to initialize", zap.Error(err))
	}
	defer comps.Close()

	ctx := context.Background()
	store := comps.Index.Storage()
	articles, err := store.CountArticles(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Count articles failed: %v\n", err)
		os.Exit(1)
	}
	chunks, err := store.CountChunks(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Count chunks failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("articles:           %d\n", articles)
	fmt.Printf("chunks:             %d\n", chunks)
	fmt.Printf("vector_index_size:  %d\n", comps.Index.Size())
	fmt.Printf("market_mock_mode:   %t\n", comps.Market.MockMode())
	diskBytes, err := storage.DiskUsageBytes(comps.Index.VecPath(), comps.Index.DBPath(), cfg.Storage.BleveIndexPath)
	if err == nil {
		fmt.Printf("disk_usage_bytes:   %d\n", diskBytes)
	}
	fmt.Println()
	fmt.Println("# configuration")
	fmt.Printf("embedding_provider: %s\n", cfg.Embedding.Provider)
	fmt.Printf("embedding_dims:     %d\n", cfg.Embedding.Dimensions)
	fmt.Printf("chunk_size:         %d\n", cfg.Retrieval.ChunkSize)
	fmt.Printf("chunk_overlap:      %d\n", cfg.Retrieval.ChunkOverlap)
	fmt.Printf("index_stem:         %s\n", cfg.Storage.IndexStem)
	fmt.Printf("bleve_index_path:   %s\n", cfg.Storage.BleveIndexPath)
}

func printUsage() {
	fmt.Println(`finassist - AI finance assistant

Usage:
  finassist server [flags]            Start the HTTP API server
  finassist ask [flags] <question>    Ask a finance question
  finassist ingest [flags] <path>     Ingest a JSON corpus or a document
  finassist quote [flags] <symbol>    Fetch stock quotes
  finassist status [flags]            Show index and storage status
  finassist version                   Show version
  finassist help                      Show this help

Common Flags:
  --config string    Config file path (default: config.yaml)

Ask Flags:
  --category string   Restrict retrieval to one category
  --k int             Number of passages to retrieve
  --holdings string   Portfolio file (.csv or .xlsx) for portfolio questions
  --output string     Output format: text or json

Environment:
  MARKET_API_KEY   Alpha Vantage API key (unset = simulated quotes)
  LLM_API_KEY      OpenAI-compatible API key (unset = passage-only answers)

Examples:
  finassist ingest data/corpus.json
  finassist ask "What is a Roth IRA?"
  finassist ask --holdings portfolio.csv "analyze my portfolio"
  finassist quote AAPL MSFT
  finassist server --debug`)
}
