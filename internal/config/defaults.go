package config

// Default router keyword tables. Order within a table does not matter; the
// priority between tables (portfolio, then market, then goal) is fixed in the
// router and must not be reordered, since ambiguous queries rely on it.
var (
	defaultPortfolioKeywords = []string{
		"portfolio", "allocation", "diversification", "holdings", "rebalance",
		"analyze my", "balance", "stocks", "bonds", "etf", "mutual fund",
		"asset allocation", "investment mix", "risk tolerance",
	}
	defaultMarketKeywords = []string{
		"market", "stock price", "ticker", "trend", "quote", "index",
		"nasdaq", "s&p", "dow", "spy", "earnings", "volatility", "trading",
		"share price", "market cap",
	}
	defaultGoalKeywords = []string{
		"goal", "retirement", "save", "plan", "target", "future", "timeline",
		"achieve", "house", "college", "emergency fund", "financial planning",
		"budgeting", "savings", "debt payoff",
	}
)

// defaultQueryExpansions maps query terms to related finance vocabulary for
// retrieval-time query expansion.
var defaultQueryExpansions = map[string][]string{
	"401k":       {"retirement", "employer", "contribution"},
	"ira":        {"retirement", "individual", "account"},
	"investment": {"portfolio", "stocks", "bonds"},
	"retirement": {"401k", "ira", "savings"},
	"risk":       {"volatility", "diversification"},
	"analysis":   {"metrics", "performance"},
	"budget":     {"spending", "income", "expenses"},
	"debt":       {"loan", "interest", "payoff"},
}

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Storage.IndexStem == "" {
		cfg.Storage.IndexStem = "./data/index/knowledge"
	}
	if cfg.Storage.BleveIndexPath == "" {
		cfg.Storage.BleveIndexPath = "./data/index/bleve"
	}
	if cfg.Embedding.Provider == "" {
		cfg.Embedding.Provider = "remote"
	}
	if cfg.Embedding.BaseURL == "" {
		cfg.Embedding.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Embedding.Model == "" {
		cfg.Embedding.Model = "text-embedding-3-small"
	}
	if cfg.Embedding.Dimensions == 0 {
		cfg.Embedding.Dimensions = 384
	}
	if cfg.Embedding.MaxTokens == 0 {
		cfg.Embedding.MaxTokens = 256
	}
	if cfg.Embedding.CacheSize == 0 {
		cfg.Embedding.CacheSize = 10000
	}
	if cfg.Retrieval.ChunkSize == 0 {
		cfg.Retrieval.ChunkSize = 500
	}
	if cfg.Retrieval.ChunkOverlap == 0 {
		cfg.Retrieval.ChunkOverlap = 50
	}
	if cfg.Retrieval.K == 0 {
		cfg.Retrieval.K = 5
	}
	if cfg.Retrieval.OverfetchFactor == 0 {
		cfg.Retrieval.OverfetchFactor = 3
	}
	if cfg.Retrieval.MaxContextChars == 0 {
		cfg.Retrieval.MaxContextChars = 2000
	}
	if cfg.Retrieval.DiversityPenalty == 0 {
		cfg.Retrieval.DiversityPenalty = 0.75
	}
	if cfg.Retrieval.Expansions == nil {
		cfg.Retrieval.Expansions = defaultQueryExpansions
	}
	if cfg.Router.PortfolioKeywords == nil {
		cfg.Router.PortfolioKeywords = defaultPortfolioKeywords
	}
	if cfg.Router.MarketKeywords == nil {
		cfg.Router.MarketKeywords = defaultMarketKeywords
	}
	if cfg.Router.GoalKeywords == nil {
		cfg.Router.GoalKeywords = defaultGoalKeywords
	}
	if cfg.Market.BaseURL == "" {
		cfg.Market.BaseURL = "https://www.alphavantage.co/query"
	}
	if cfg.Market.CacheTTLSeconds == 0 {
		cfg.Market.CacheTTLSeconds = 300
	}
	if cfg.Market.RequestsPerMinute == 0 {
		cfg.Market.RequestsPerMinute = 5
	}
	if cfg.LLM.BaseURL == "" {
		cfg.LLM.BaseURL = "https://openrouter.ai/api/v1"
	}
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = "openai/gpt-4o-mini"
	}
	if cfg.LLM.MaxTokens == 0 {
		cfg.LLM.MaxTokens = 1024
	}
	if cfg.Watch.Extensions == nil {
		cfg.Watch.Extensions = []string{".json", ".txt", ".md", ".pdf", ".docx"}
	}
	if len(cfg.Watch.Directories) > 0 && cfg.Watch.Recursive == nil {
		t := true
		cfg.Watch.Recursive = &t
	}
}
