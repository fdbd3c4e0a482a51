// Package router maps free-text student queries to one of the three
// fixed agent destinations. Routing is a keyword scan, not a model call,
// so the same query always lands on the same agent.
package router

import (
	"strings"

	"github.com/raagalabs/carnaticguru/config"
)

// Destination names an agent role a query can be routed to.
type Destination string

const (
	DestinationLesson  Destination = "lesson"
	DestinationPattern Destination = "pattern"
	DestinationRaga    Destination = "raga"
)

// Router selects a destination by substring checks with fixed precedence:
// a recognized category hint wins, otherwise the query text is scanned
// pattern -> raga -> lesson, and anything unmatched falls back to the
// configured default. Pattern outranks raga because pattern requests
// almost always name the raga to draw notes from. Select never fails.
type Router struct {
	raga     []string
	pattern  []string
	lesson   []string
	fallback Destination
}

// New builds a router from configuration. Empty keyword sets fall back to
// the shipped defaults so a partial config cannot produce a dead router.
func New(cfg config.RouterConfig) *Router {
	r := &Router{
		raga:     lowerAll(cfg.RagaKeywords),
		pattern:  lowerAll(cfg.PatternKeywords),
		lesson:   lowerAll(cfg.LessonKeywords),
		fallback: Destination(cfg.Default),
	}
	if len(r.raga) == 0 {
		r.raga = []string{"raga", "raag"}
	}
	if len(r.pattern) == 0 {
		r.pattern = []string{"swara", "pattern"}
	}
	if len(r.lesson) == 0 {
		r.lesson = []string{"lesson"}
	}
	switch r.fallback {
	case DestinationLesson, DestinationPattern, DestinationRaga:
	default:
		r.fallback = DestinationLesson
	}
	return r
}

// Select routes a query. The category hint is checked first; if it is
// absent or unrecognized the query text is scanned.
func (r *Router) Select(query, category string) Destination {
	if category != "" {
		if dest, ok := r.match(category); ok {
			return dest
		}
	}
	if dest, ok := r.match(query); ok {
		return dest
	}
	return r.fallback
}

// match scans text for the first recognized keyword set, in precedence
// order pattern, raga, lesson.
func (r *Router) match(text string) (Destination, bool) {
	t := strings.ToLower(text)
	if containsAny(t, r.pattern) {
		return DestinationPattern, true
	}
	if containsAny(t, r.raga) {
		return DestinationRaga, true
	}
	if containsAny(t, r.lesson) {
		return DestinationLesson, true
	}
	return "", false
}

func containsAny(t string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(t, k) {
			return true
		}
	}
	return false
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
