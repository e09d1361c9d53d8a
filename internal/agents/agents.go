// Package agents contains the specialist agents and the assistant that routes
// queries between them. The assistant is the recovery boundary: whatever fails
// below it, the caller always gets an answer, possibly degraded.
package agents

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/smarimus/ai-finance-assistant/internal/finance"
	"github.com/smarimus/ai-finance-assistant/internal/models"
	"github.com/smarimus/ai-finance-assistant/internal/router"
)

// Request is a user query plus the optional structured inputs some agents
// consume: holdings for portfolio analysis, goal parameters for planning.
type Request struct {
	models.QueryRequest
	Holdings []finance.Holding `json:"holdings,omitempty"`
	Goal     *GoalInput        `json:"goal,omitempty"`
}

// Agent handles one intent.
type Agent interface {
	Name() string
	Execute(ctx context.Context, req *Request) (*models.Answer, error)
}

// Assistant routes queries to agents and guarantees an answer.
type Assistant struct {
	router *router.Router
	agents map[router.Intent]Agent
	logger *zap.Logger
}

// NewAssistant wires the router to its agents. Every intent must have an
// agent; a missing one is a programming error surfaced at startup.
func NewAssistant(r *router.Router, qa, portfolio, market, goal Agent, logger *zap.Logger) *Assistant {
	return &Assistant{
		router: r,
		agents: map[router.Intent]Agent{
			router.IntentQA:        qa,
			router.IntentPortfolio: portfolio,
			router.IntentMarket:    market,
			router.IntentGoal:      goal,
		},
		logger: logger,
	}
}

// Answer routes the request and executes the matching agent. It never returns
// an error: agent failures and panics produce a degraded fallback answer, so
// one bad query cannot take down the caller.
func (a *Assistant) Answer(ctx context.Context, req *Request) (answer *models.Answer) {
	start := time.Now()
	intent := router.IntentQA

	defer func() {
		if r := recover(); r != nil {
			if a.logger != nil {
				a.logger.Error("agent panicked", zap.String("intent", string(intent)), zap.Any("panic", r))
			}
			answer = fallbackAnswer(string(intent))
		}
		answer.QueryTime = time.Since(start).Milliseconds()
	}()

	if err := req.Validate(); err != nil {
		return &models.Answer{
			Response: fmt.Sprintf("I couldn't process that request: %v", err),
			Agent:    string(intent),
			Degraded: true,
		}
	}

	intent = a.router.Route(req.Query)
	agent := a.agents[intent]
	result, err := agent.Execute(ctx, req)
	if err != nil {
		if a.logger != nil {
			a.logger.Warn("agent failed", zap.String("intent", string(intent)), zap.Error(err))
		}
		return fallbackAnswer(string(intent))
	}
	return result
}

func fallbackAnswer(agent string) *models.Answer {
	return &models.Answer{
		Response: "I ran into a problem answering that. Please try rephrasing your question or try again shortly.",
		Agent:    agent,
		Degraded: true,
	}
}
