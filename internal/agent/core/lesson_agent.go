package core

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/raagalabs/carnaticguru/internal/agent/telemetry"
	"github.com/raagalabs/carnaticguru/internal/lesson"
	"github.com/raagalabs/carnaticguru/internal/router"
)

// LessonAgent answers beginner lesson queries by looking up excerpts in
// the lesson document and running one formatting pass through the LLM.
type LessonAgent struct {
	provider  LLMProvider
	model     string
	searcher  lesson.Searcher
	telemetry *telemetry.Telemetry
	logger    *log.Logger
}

func NewLessonAgent(provider LLMProvider, model string, searcher lesson.Searcher, tel *telemetry.Telemetry) *LessonAgent {
	return &LessonAgent{
		provider:  provider,
		model:     model,
		searcher:  searcher,
		telemetry: tel,
		logger:    log.New(os.Stdout, "[LESSON] ", log.LstdFlags),
	}
}

func (a *LessonAgent) Name() string { return "lesson_agent" }

func (a *LessonAgent) Handle(ctx context.Context, query UserQuery) (AgentReply, error) {
	start := time.Now()

	excerpt, err := a.searcher.Search(ctx, query.Content)
	if err != nil {
		if errors.Is(err, lesson.ErrNotFound) {
			a.telemetry.RecordLessonLookup(false)
			return a.reply(query, suggestionFor(query.Content), "", 0, 0, 0, start), nil
		}
		return AgentReply{}, fmt.Errorf("lesson search: %w", err)
	}
	a.telemetry.RecordLessonLookup(true)

	formatted, inTok, outTok, err := a.provider.GenerateWithTokens(ctx, lessonFormatInstruction+excerpt, a.model)
	if err != nil {
		// The excerpt is still useful unformatted.
		a.logger.Printf("formatting pass failed, returning raw excerpt: %v", err)
		return a.reply(query, excerpt, "", 0, 0, 0, start), nil
	}

	cost := a.provider.CalculateCost(inTok, outTok, a.model)
	a.telemetry.RecordLLMEvent(telemetry.LLMEvent{
		Model:        a.model,
		InputTokens:  inTok,
		OutputTokens: outTok,
		Cost:         cost,
	})
	return a.reply(query, formatted, a.model, inTok, outTok, cost, start), nil
}

func (a *LessonAgent) reply(query UserQuery, response, model string, inTok, outTok int64, cost float64, start time.Time) AgentReply {
	return AgentReply{
		ID:             uuid.New().String(),
		QueryID:        query.ID,
		Destination:    router.DestinationLesson,
		Response:       response,
		ModelUsed:      model,
		InputTokens:    inTok,
		OutputTokens:   outTok,
		Cost:           cost,
		ProcessingTime: time.Since(start),
		CreatedAt:      time.Now(),
	}
}

func suggestionFor(query string) string {
	return fmt.Sprintf("No detailed lesson found for '%s'. Try: 'Sarali', 'Janta', 'Taatu', 'Alankar'", query)
}
