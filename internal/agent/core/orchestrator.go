package core

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/raagalabs/carnaticguru/config"
	"github.com/raagalabs/carnaticguru/internal/agent/telemetry"
	"github.com/raagalabs/carnaticguru/internal/router"
)

const sessionSuffix = "_session"

// Orchestrator routes each query to an agent role and records the
// exchange in the user's session. One session per user, created on
// first contact.
type Orchestrator struct {
	config    *config.Config
	router    *router.Router
	agents    map[router.Destination]Agent
	sessions  SessionStore
	telemetry *telemetry.Telemetry
	logger    *log.Logger
	sem       chan struct{}
}

func NewOrchestrator(cfg *config.Config, rt *router.Router, agents map[router.Destination]Agent, sessions SessionStore, tel *telemetry.Telemetry) *Orchestrator {
	return &Orchestrator{
		config:    cfg,
		router:    rt,
		agents:    agents,
		sessions:  sessions,
		telemetry: tel,
		logger:    log.New(os.Stdout, "[ORCHESTRATOR] ", log.LstdFlags),
		sem:       make(chan struct{}, 8),
	}
}

// Process answers one query end to end: route, log the user turn,
// run the agent under the default timeout, log the agent turn.
func (o *Orchestrator) Process(ctx context.Context, query UserQuery) (AgentReply, error) {
	if query.ID == "" {
		query.ID = uuid.New().String()
	}
	if query.Timestamp.IsZero() {
		query.Timestamp = time.Now()
	}

	dest := o.router.Select(query.Content, query.Category)
	agent, ok := o.agents[dest]
	if !ok {
		return AgentReply{}, fmt.Errorf("no agent for destination %s", dest)
	}

	// A category hint becomes part of the prompt so the agent sees it.
	if c := strings.TrimSpace(query.Category); c != "" {
		query.Content = fmt.Sprintf("[%s] %s", c, query.Content)
	}

	appName := o.config.General.AppName
	sessionID := query.UserID + sessionSuffix
	if err := o.sessions.EnsureSession(ctx, appName, query.UserID, sessionID); err != nil {
		return AgentReply{}, fmt.Errorf("ensure session: %w", err)
	}
	if err := o.sessions.AppendEvent(ctx, appName, query.UserID, sessionID, "user", query.Content); err != nil {
		return AgentReply{}, fmt.Errorf("append user event: %w", err)
	}

	select {
	case o.sem <- struct{}{}:
		defer func() { <-o.sem }()
	case <-ctx.Done():
		return AgentReply{}, ctx.Err()
	}

	timeout := o.config.General.DefaultTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	o.logger.Printf("query %s from %s routed to %s", query.ID, query.UserID, dest)

	reply, err := agent.Handle(ctx, query)
	if err != nil {
		o.telemetry.RecordQueryEvent(telemetry.QueryEvent{
			ID:          query.ID,
			Destination: string(dest),
			Duration:    time.Since(start),
			Success:     false,
			Error:       err.Error(),
		})
		return AgentReply{}, fmt.Errorf("agent %s: %w", agent.Name(), err)
	}

	o.telemetry.RecordQueryEvent(telemetry.QueryEvent{
		ID:          query.ID,
		Destination: string(dest),
		Duration:    time.Since(start),
		Success:     true,
	})

	if err := o.sessions.AppendEvent(ctx, appName, query.UserID, sessionID, agent.Name(), reply.Response); err != nil {
		// The answer is already computed; losing the history row is
		// not worth failing the request over.
		o.logger.Printf("append agent event: %v", err)
	}

	return reply, nil
}
