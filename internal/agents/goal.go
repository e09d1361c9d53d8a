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

// GoalInput is the structured input for goal planning. Zero fields are filled
// with goal-type defaults.
type GoalInput struct {
	// Type is one of retirement, emergency_fund, house, education, investment.
	Type           string  `json:"type,omitempty"`
	TargetAmount   float64 `json:"target_amount,omitempty"`
	TimelineYears  int     `json:"timeline_years,omitempty"`
	CurrentSavings float64 `json:"current_savings,omitempty"`
	AnnualIncome   float64 `json:"annual_income,omitempty"`
}

// Scenario is one projection at a fixed return assumption.
type Scenario struct {
	Name           string  `json:"name"`
	AnnualReturn   float64 `json:"annual_return"`
	MonthlySavings float64 `json:"monthly_savings_required"`
	FinalBalance   float64 `json:"final_balance"`
	GoalAchieved   bool    `json:"goal_achieved"`
	SavingsRatePct float64 `json:"savings_rate_percent"`
	Difficulty     string  `json:"difficulty"`
	DifficultyNote string  `json:"difficulty_note"`
}

// goalDefaults carries per-goal-type assumptions.
type goalDefaults struct {
	timelineYears int
	returns       map[string]float64 // scenario name -> annual return
}

var goalTypes = map[string]goalDefaults{
	"retirement": {
		timelineYears: 30,
		returns:       map[string]float64{"conservative": 0.05, "moderate": 0.07, "aggressive": 0.09},
	},
	"emergency_fund": {
		timelineYears: 1,
		returns:       map[string]float64{"conservative": 0.02, "moderate": 0.03, "aggressive": 0.04},
	},
	"house": {
		timelineYears: 5,
		returns:       map[string]float64{"conservative": 0.04, "moderate": 0.06, "aggressive": 0.08},
	},
	"education": {
		timelineYears: 18,
		returns:       map[string]float64{"conservative": 0.05, "moderate": 0.07, "aggressive": 0.09},
	},
	"investment": {
		timelineYears: 10,
		returns:       map[string]float64{"conservative": 0.06, "moderate": 0.08, "aggressive": 0.10},
	},
}

const defaultAnnualIncome = 75000

// GoalAgent plans savings goals with multi-scenario projections.
type GoalAgent struct{}

// NewGoalAgent creates the goal planning agent.
func NewGoalAgent() *GoalAgent { return &GoalAgent{} }

// Name implements Agent.
func (a *GoalAgent) Name() string { return string(router.IntentGoal) }

// Execute implements Agent.
func (a *GoalAgent) Execute(ctx context.Context, req *Request) (*models.Answer, error) {
	goal := normalizeGoal(req)
	scenarios := PlanScenarios(goal)
	return &models.Answer{
		Response: formatGoalPlan(goal, scenarios),
		Agent:    a.Name(),
	}, nil
}

// normalizeGoal fills missing goal fields from the query and per-type
// defaults.
func normalizeGoal(req *Request) GoalInput {
	var goal GoalInput
	if req.Goal != nil {
		goal = *req.Goal
	}
	if goal.Type == "" {
		goal.Type = detectGoalType(req.Query)
	}
	defaults, ok := goalTypes[goal.Type]
	if !ok {
		goal.Type = "investment"
		defaults = goalTypes["investment"]
	}
	if goal.TimelineYears <= 0 {
		goal.TimelineYears = defaults.timelineYears
	}
	if goal.AnnualIncome <= 0 {
		goal.AnnualIncome = defaultAnnualIncome
	}
	if goal.TargetAmount <= 0 {
		goal.TargetAmount = estimateTarget(goal)
	}
	if len(req.Holdings) > 0 && goal.CurrentSavings == 0 {
		// Assume half the portfolio is available for this goal.
		goal.CurrentSavings = finance.TotalValue(req.Holdings) * 0.5
	}
	return goal
}

func detectGoalType(query string) string {
	lower := strings.ToLower(query)
	switch {
	case strings.Contains(lower, "retire"):
		return "retirement"
	case strings.Contains(lower, "emergency"):
		return "emergency_fund"
	case strings.Contains(lower, "house") || strings.Contains(lower, "home") || strings.Contains(lower, "down payment"):
		return "house"
	case strings.Contains(lower, "college") || strings.Contains(lower, "education") || strings.Contains(lower, "school"):
		return "education"
	default:
		return "investment"
	}
}

// estimateTarget derives a target amount when none was given, mirroring
// common planning rules per goal type.
func estimateTarget(goal GoalInput) float64 {
	annualExpenses := goal.AnnualIncome * 0.8
	switch goal.Type {
	case "retirement":
		return finance.RetirementSavingsNeeded(annualExpenses, 0.04)
	case "emergency_fund":
		return finance.EmergencyFundTarget(annualExpenses/12, 6)
	case "house":
		return 400000 * 0.20 // typical down payment on a typical home
	case "education":
		return finance.InflationAdjusted(50000, 0.06, goal.TimelineYears) * 4
	default:
		return 100000
	}
}

// PlanScenarios computes the conservative, moderate, and aggressive
// projections plus feasibility for a goal.
func PlanScenarios(goal GoalInput) []Scenario {
	defaults := goalTypes[goal.Type]
	names := make([]string, 0, len(defaults.returns))
	for name := range defaults.returns {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		return defaults.returns[names[i]] < defaults.returns[names[j]]
	})

	monthlyIncome := goal.AnnualIncome / 12
	out := make([]Scenario, 0, len(names))
	for _, name := range names {
		rate := defaults.returns[name]
		fvCurrent := finance.FutureValue(goal.CurrentSavings, rate, goal.TimelineYears)
		additional := goal.TargetAmount - fvCurrent
		var monthly float64
		if additional > 0 {
			monthly = finance.MonthlySavingsRequired(additional, rate, goal.TimelineYears)
		}
		final := fvCurrent + finance.FutureValueAnnuity(monthly*12, rate, goal.TimelineYears)

		s := Scenario{
			Name:           name,
			AnnualReturn:   rate,
			MonthlySavings: monthly,
			FinalBalance:   final,
			GoalAchieved:   final >= goal.TargetAmount,
		}
		if monthlyIncome > 0 {
			s.SavingsRatePct = monthly / monthlyIncome * 100
		}
		s.Difficulty, s.DifficultyNote = feasibility(s.SavingsRatePct)
		out = append(out, s)
	}
	return out
}

func feasibility(savingsRatePct float64) (string, string) {
	switch {
	case savingsRatePct <= 10:
		return "easy", "Very achievable savings rate"
	case savingsRatePct <= 20:
		return "moderate", "Reasonable savings rate with some lifestyle adjustments"
	case savingsRatePct <= 30:
		return "challenging", "Requires significant lifestyle changes and discipline"
	default:
		return "difficult", "May require major lifestyle changes or an extended timeline"
	}
}

func formatGoalPlan(goal GoalInput, scenarios []Scenario) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Goal plan: %s\n\n", strings.ReplaceAll(goal.Type, "_", " "))
	fmt.Fprintf(&b, "Target: $%.2f in %d years", goal.TargetAmount, goal.TimelineYears)
	if goal.CurrentSavings > 0 {
		fmt.Fprintf(&b, ", starting from $%.2f", goal.CurrentSavings)
	}
	b.WriteString(".\n\nScenarios:\n")
	for _, s := range scenarios {
		fmt.Fprintf(&b, "  %-12s %.0f%% return: save $%.2f/month (%.1f%% of income) - %s. %s.\n",
			s.Name, s.AnnualReturn*100, s.MonthlySavings, s.SavingsRatePct, s.Difficulty, s.DifficultyNote)
	}
	b.WriteString("\nThese projections are educational estimates, not guarantees.")
	return b.String()
}
