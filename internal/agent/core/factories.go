package core

import (
	"fmt"

	"github.com/raagalabs/carnaticguru/config"
	"github.com/raagalabs/carnaticguru/internal/agent/telemetry"
	"github.com/raagalabs/carnaticguru/internal/lesson"
	"github.com/raagalabs/carnaticguru/internal/router"
)

// NewLLMProvider creates a provider from the first configured entry.
// Every supported backend speaks the OpenAI chat-completions dialect.
func NewLLMProvider(cfg config.LLMConfig) (LLMProvider, error) {
	for name, p := range cfg.Providers {
		switch p.Type {
		case "", "openai":
			return NewOpenAIProvider(p), nil
		default:
			return nil, fmt.Errorf("unsupported provider type %q for %s", p.Type, name)
		}
	}
	return nil, fmt.Errorf("no LLM providers configured")
}

// NewAgents wires the three agent roles to their models and tools.
func NewAgents(cfg *config.Config, provider LLMProvider, tel *telemetry.Telemetry, searcher lesson.Searcher) map[router.Destination]Agent {
	routing := cfg.LLM.Routing
	ragaAgent := NewRagaInfoAgent(provider, routing.ModelFor("raga"), tel)
	return map[router.Destination]Agent{
		router.DestinationLesson:  NewLessonAgent(provider, routing.ModelFor("lesson"), searcher, tel),
		router.DestinationRaga:    ragaAgent,
		router.DestinationPattern: NewSwaraPatternAgent(ragaAgent),
	}
}
