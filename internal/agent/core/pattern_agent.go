package core

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/raagalabs/carnaticguru/internal/pattern"
	"github.com/raagalabs/carnaticguru/internal/router"
)

// notesResolver is the slice of RagaInfoAgent the pattern agent needs.
type notesResolver interface {
	Notes(ctx context.Context, raga string) ([]string, error)
}

// SwaraPatternAgent generates practice swara patterns, constrained to
// the notes of the requested raga.
type SwaraPatternAgent struct {
	resolver notesResolver
	lengths  []int
	rng      *rand.Rand
}

func NewSwaraPatternAgent(resolver notesResolver) *SwaraPatternAgent {
	return &SwaraPatternAgent{
		resolver: resolver,
		lengths:  pattern.DefaultLengths,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (a *SwaraPatternAgent) Name() string { return "swara_pattern_agent" }

func (a *SwaraPatternAgent) Handle(ctx context.Context, query UserQuery) (AgentReply, error) {
	start := time.Now()

	raga := extractRaga(query.Content)
	notes, err := a.resolver.Notes(ctx, raga)
	if err != nil {
		return AgentReply{}, fmt.Errorf("resolve notes for %q: %w", raga, err)
	}

	patterns := pattern.Generate(notes, a.lengths, a.rng)
	return AgentReply{
		ID:             uuid.New().String(),
		QueryID:        query.ID,
		Destination:    router.DestinationPattern,
		Response:       pattern.Format(patterns),
		ProcessingTime: time.Since(start),
		CreatedAt:      time.Now(),
	}, nil
}

// extractRaga pulls the raga name out of a pattern request. The word
// after "raga"/"raag"/"in" wins; otherwise the whole query is treated
// as the raga name. Defaults to Mayamalavagowla, the raga beginners
// start with.
func extractRaga(query string) string {
	words := strings.Fields(strings.ToLower(query))
	for i, w := range words {
		if (w == "raga" || w == "raag" || w == "in") && i+1 < len(words) {
			return strings.Trim(words[i+1], ".,?!")
		}
	}
	for _, w := range words {
		switch w {
		case "swara", "swaras", "pattern", "patterns", "practice", "generate", "give", "me", "some", "a", "for", "of", "the":
			continue
		default:
			return strings.Trim(w, ".,?!")
		}
	}
	return "mayamalavagowla"
}
