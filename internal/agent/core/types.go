package core

import (
	"context"
	"time"

	"github.com/raagalabs/carnaticguru/internal/router"
)

// UserQuery represents one student request entering the orchestrator.
type UserQuery struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Content   string    `json:"content"`
	Category  string    `json:"category,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// AgentReply is the final result of processing a query.
type AgentReply struct {
	ID             string             `json:"id"`
	QueryID        string             `json:"query_id"`
	Destination    router.Destination `json:"destination"`
	Response       string             `json:"response"`
	ModelUsed      string             `json:"model_used,omitempty"`
	InputTokens    int64              `json:"input_tokens"`
	OutputTokens   int64              `json:"output_tokens"`
	Cost           float64            `json:"cost"`
	ProcessingTime time.Duration      `json:"processing_time"`
	CreatedAt      time.Time          `json:"created_at"`
}

// Agent is the contract every agent role implements.
type Agent interface {
	// Name identifies the agent in session events and logs.
	Name() string

	// Handle answers a routed query.
	Handle(ctx context.Context, query UserQuery) (AgentReply, error)
}

// LLMProvider is the contract for text generation backends.
type LLMProvider interface {
	// Generate generates text using the given model.
	Generate(ctx context.Context, prompt string, model string) (string, error)

	// GenerateWithTokens generates text and returns input/output token usage.
	GenerateWithTokens(ctx context.Context, prompt string, model string) (string, int64, int64, error)

	// GetAvailableModels returns configured model keys.
	GetAvailableModels() []string

	// GetModelInfo returns information about a specific model.
	GetModelInfo(model string) (ModelInfo, error)

	// CalculateCost calculates the cost for a given number of tokens.
	CalculateCost(inputTokens, outputTokens int64, model string) float64
}

// ModelInfo contains information about an LLM model.
type ModelInfo struct {
	Name            string  `json:"name"`
	Provider        string  `json:"provider"`
	MaxTokens       int     `json:"max_tokens"`
	CostPer1KInput  float64 `json:"cost_per_1k_input"`
	CostPer1KOutput float64 `json:"cost_per_1k_output"`
}

// SessionStore persists conversation history. The orchestrator only
// ever ensures a session row exists and appends events to it.
type SessionStore interface {
	EnsureSession(ctx context.Context, appName, userID, sessionID string) error
	AppendEvent(ctx context.Context, appName, userID, sessionID, author, content string) error
}
