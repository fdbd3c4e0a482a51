package core

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/raagalabs/carnaticguru/internal/agent/telemetry"
	"github.com/raagalabs/carnaticguru/internal/router"
)

// RagaInfoAgent answers theory questions about ragas. It also exposes a
// compact Notes mode used by the pattern agent to resolve a raga's scale.
type RagaInfoAgent struct {
	provider  LLMProvider
	model     string
	telemetry *telemetry.Telemetry
}

func NewRagaInfoAgent(provider LLMProvider, model string, tel *telemetry.Telemetry) *RagaInfoAgent {
	return &RagaInfoAgent{provider: provider, model: model, telemetry: tel}
}

func (a *RagaInfoAgent) Name() string { return "raga_info_agent" }

func (a *RagaInfoAgent) Handle(ctx context.Context, query UserQuery) (AgentReply, error) {
	start := time.Now()

	response, inTok, outTok, err := a.provider.GenerateWithTokens(ctx, ragaInfoInstruction+query.Content, a.model)
	if err != nil {
		return AgentReply{}, fmt.Errorf("raga info: %w", err)
	}

	cost := a.provider.CalculateCost(inTok, outTok, a.model)
	a.telemetry.RecordLLMEvent(telemetry.LLMEvent{
		Model:        a.model,
		InputTokens:  inTok,
		OutputTokens: outTok,
		Cost:         cost,
	})
	return AgentReply{
		ID:             uuid.New().String(),
		QueryID:        query.ID,
		Destination:    router.DestinationRaga,
		Response:       response,
		ModelUsed:      a.model,
		InputTokens:    inTok,
		OutputTokens:   outTok,
		Cost:           cost,
		ProcessingTime: time.Since(start),
		CreatedAt:      time.Now(),
	}, nil
}

type ragaNotes struct {
	Arohanam   []string `json:"arohanam"`
	Avarohanam []string `json:"avarohanam"`
}

// Notes asks the model for the scale of the named raga and parses the
// JSON answer into one deduplicated note list, arohanam first, then any
// notes that only occur in the avarohanam. Models sometimes wrap JSON
// in a code fence, so fences are stripped before decoding.
func (a *RagaInfoAgent) Notes(ctx context.Context, raga string) ([]string, error) {
	response, inTok, outTok, err := a.provider.GenerateWithTokens(ctx, ragaNotesInstruction+raga, a.model)
	if err != nil {
		return nil, fmt.Errorf("raga notes: %w", err)
	}
	a.telemetry.RecordLLMEvent(telemetry.LLMEvent{
		Model:        a.model,
		InputTokens:  inTok,
		OutputTokens: outTok,
		Cost:         a.provider.CalculateCost(inTok, outTok, a.model),
	})

	var notes ragaNotes
	if err := json.Unmarshal([]byte(stripCodeFence(response)), &notes); err != nil {
		return nil, fmt.Errorf("parse raga notes %q: %w", response, err)
	}
	if len(notes.Arohanam) == 0 {
		return nil, fmt.Errorf("raga notes: empty arohanam for %q", raga)
	}

	merged := make([]string, 0, len(notes.Arohanam)+len(notes.Avarohanam))
	seen := make(map[string]struct{})
	for _, n := range append(notes.Arohanam, notes.Avarohanam...) {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		merged = append(merged, n)
	}
	return merged, nil
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
