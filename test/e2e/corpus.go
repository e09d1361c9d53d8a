// Package e2e exercises the fully assembled stack: ingestion through the
// indexer, retrieval through the agents, and persistence of the index pair.
package e2e

import (
	"fmt"
	"strings"

	"github.com/smarimus/ai-finance-assistant/internal/models"
)

// CorpusArticle is one knowledge-base article in the test corpus.
type CorpusArticle struct {
	ID       string
	Title    string
	Category string
	Content  string
}

// QueryTestCase defines a query and the article ID(s) that must appear among
// the answer's sources. At least one of ExpectedIDs must be present.
type QueryTestCase struct {
	Query       string
	ExpectedIDs []string
	Description string
}

// Corpus holds articles and query test cases for the end-to-end tests.
type Corpus struct {
	Articles  []CorpusArticle
	TestCases []QueryTestCase
}

// BuildCorpus returns a corpus of finance articles with varied categories.
// Each article carries a unique signature phrase so lexical queries can assert
// the right article surfaces.
func BuildCorpus() *Corpus {
	articles := buildArticles()
	return &Corpus{
		Articles:  articles,
		TestCases: buildQueryTestCases(articles),
	}
}

func buildArticles() []CorpusArticle {
	topics := []struct {
		title    string
		category string
		content  string
	}{
		{"Roth IRA Basics", "retirement_planning",
			"A Roth IRA is funded with after-tax dollars. Roth IRA qualified withdrawals are tax free in retirement, and contributions can be withdrawn at any time without penalty."},
		{"Traditional IRA Rules", "retirement_planning",
			"A traditional IRA defers taxes until withdrawal. Traditional IRA deductible contributions lower taxable income today, but required minimum distributions begin later in life."},
		{"401k Employer Match", "retirement_planning",
			"A 401k is an employer-sponsored retirement account. The 401k employer match is part of compensation; contributing at least enough to capture the full match comes before other investing."},
		{"Social Security Timing", "retirement_planning",
			"Social Security benefits grow the longer you wait to claim. Social Security timing between 62 and 70 changes the monthly benefit substantially."},
		{"Safe Withdrawal Rate", "retirement_planning",
			"The safe withdrawal rate estimates how much a portfolio supports annually. Safe withdrawal rate studies commonly cite four percent of the starting balance adjusted for inflation."},
		{"Catch-Up Contributions", "retirement_planning",
			"Workers aged fifty and over can contribute extra to retirement accounts. Catch-up contributions raise the annual limits for both IRAs and workplace plans."},
		{"Emergency Fund Sizing", "personal_finance",
			"An emergency fund covers three to six months of essential expenses. Emergency fund sizing depends on income stability and fixed obligations, held in a liquid account."},
		{"High-Yield Savings Accounts", "personal_finance",
			"A high-yield savings account pays more interest than a checking account. High-yield savings accounts suit short-term cash like an emergency reserve."},
		{"Debt Snowball Method", "personal_finance",
			"The debt snowball pays the smallest balance first. Debt snowball method trades some interest cost for momentum, while the avalanche orders debts by interest rate."},
		{"Credit Score Factors", "personal_finance",
			"Payment history and utilization drive most of a credit score. Credit score factors also include account age, credit mix, and recent inquiries."},
		{"Zero-Based Budgeting", "personal_finance",
			"Zero-based budgeting assigns every dollar a job. Zero-based budgeting starts each month from zero rather than adjusting last month's spending."},
		{"Term Life Insurance", "personal_finance",
			"Term life insurance covers a fixed period at low cost. Term life insurance suits income replacement during working years, unlike permanent policies."},
		{"Tax Brackets Explained", "personal_finance",
			"Marginal tax brackets apply rates to slices of income. Tax brackets explained simply: moving into a higher bracket never reduces take-home pay."},
		{"529 College Plans", "education",
			"A 529 plan grows tax free for education expenses. 529 college plans are state sponsored and can now roll limited amounts into a Roth IRA."},
		{"Student Loan Repayment", "education",
			"Federal student loans offer income-driven repayment. Student loan repayment options include standard, graduated, and forgiveness tracks for public service."},
		{"FAFSA and Financial Aid", "education",
			"The FAFSA determines federal financial aid eligibility. FAFSA and financial aid offices use expected family contribution to size grants and subsidized loans."},
		{"Coverdell ESA Limits", "education",
			"A Coverdell education savings account allows modest annual contributions. Coverdell ESA limits are lower than 529 plans but cover elementary and secondary costs too."},
		{"Index Fund Investing", "general",
			"An index fund tracks a market benchmark at low cost. Index fund investing delivers broad diversification without picking individual stocks."},
		{"Expense Ratios Matter", "general",
			"The expense ratio is the annual fund fee. Expense ratios matter because a one percent fee compounds into a large drag over decades."},
		{"Dollar-Cost Averaging", "general",
			"Dollar-cost averaging invests a fixed amount on a schedule. Dollar-cost averaging removes timing decisions and smooths the purchase price."},
		{"Asset Allocation Basics", "general",
			"Asset allocation splits money across stocks, bonds, and cash. Asset allocation basics: the split drives most of a portfolio's risk and return."},
		{"Rebalancing a Portfolio", "general",
			"Rebalancing restores target weights after markets move. Rebalancing a portfolio sells what grew and buys what lagged on a calendar or threshold rule."},
		{"Bond Duration Risk", "general",
			"Duration measures a bond's sensitivity to interest rates. Bond duration risk means long-dated bonds fall more when rates rise."},
		{"Dividend Reinvestment", "general",
			"Reinvested dividends buy more shares automatically. Dividend reinvestment compounds returns and is the default in most brokerage accounts."},
		{"Capital Gains Taxes", "general",
			"Selling an appreciated asset realizes a capital gain. Capital gains taxes are lower for holdings kept longer than one year."},
		{"Tax-Loss Harvesting", "general",
			"Tax-loss harvesting sells losers to offset realized gains. Tax-loss harvesting must avoid the wash sale rule when repurchasing."},
		{"Dollar Emergency Inflation", "general",
			"Inflation erodes purchasing power over time. Cash loses ground to inflation, which is why long-term money belongs in growth assets."},
		{"Robo-Advisor Tradeoffs", "general",
			"A robo-advisor automates allocation and rebalancing for a fee. Robo-advisor tradeoffs include less customization than a human planner at far lower cost."},
	}

	out := make([]CorpusArticle, len(topics))
	for i, t := range topics {
		out[i] = CorpusArticle{
			ID:       fmt.Sprintf("kb-%03d", i+1),
			Title:    t.title,
			Category: t.category,
			Content:  t.content,
		}
	}
	return out
}

func buildQueryTestCases(articles []CorpusArticle) []QueryTestCase {
	phrases := []string{
		"Roth IRA qualified withdrawals",
		"401k employer match",
		"Social Security timing",
		"safe withdrawal rate",
		"emergency fund sizing",
		"high-yield savings",
		"debt snowball",
		"credit score factors",
		"zero-based budgeting",
		"term life insurance",
		"529 college",
		"student loan repayment",
		"FAFSA financial aid",
		"index fund investing",
		"expense ratio fee",
		"dollar-cost averaging",
		"asset allocation",
		"rebalancing portfolio",
		"bond duration",
		"dividend reinvestment",
		"capital gains taxes",
		"tax-loss harvesting",
	}
	var cases []QueryTestCase
	used := make(map[string]bool)
	for _, p := range phrases {
		for _, a := range articles {
			if used[a.ID] || !containsPhraseWords(a, p) {
				continue
			}
			cases = append(cases, QueryTestCase{
				Query:       p,
				ExpectedIDs: []string{a.ID},
				Description: fmt.Sprintf("query %q should surface article %s", p, a.ID),
			})
			used[a.ID] = true
			break
		}
	}
	return cases
}

// containsPhraseWords reports whether every word of the phrase appears in the
// article's title or content, case-insensitively. Lexical search matches
// terms, not exact phrases, so the cases are built the same way.
func containsPhraseWords(a CorpusArticle, phrase string) bool {
	haystack := strings.ToLower(a.Title + " " + a.Content)
	for _, w := range strings.Fields(strings.ToLower(phrase)) {
		if !strings.Contains(haystack, w) {
			return false
		}
	}
	return true
}

// ToArticleInputs converts the corpus to ingestion records.
func (c *Corpus) ToArticleInputs() []*models.ArticleInput {
	out := make([]*models.ArticleInput, len(c.Articles))
	for i := range c.Articles {
		a := &c.Articles[i]
		out[i] = &models.ArticleInput{
			ID:       a.ID,
			Title:    a.Title,
			Text:     a.Content,
			Category: a.Category,
		}
	}
	return out
}
