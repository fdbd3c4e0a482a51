package lesson

import (
	"context"
	"errors"
	"strings"

	"github.com/raagalabs/carnaticguru/config"
)

// ErrNotFound reports that no lesson matched the query. Callers treat it
// as an empty result, not a failure.
var ErrNotFound = errors.New("lesson not found")

// Searcher is the lesson lookup contract the agents depend on.
type Searcher interface {
	Search(ctx context.Context, query string) (string, error)
}

// Retriever scans the lesson document for a keyword and returns a
// bounded excerpt starting at the first body occurrence. The front
// matter (first SkipChars characters, which hold the table of contents)
// never produces a match, and any page that is itself a contents page is
// ignored even past that boundary.
type Retriever struct {
	doc        *Document
	skipChars  int
	maxExcerpt int
}

func NewRetriever(doc *Document, cfg config.LessonConfig) *Retriever {
	max := cfg.MaxExcerpt
	if max <= 0 {
		max = 2000
	}
	skip := cfg.SkipChars
	if skip < 0 {
		skip = 0
	}
	return &Retriever{doc: doc, skipChars: skip, maxExcerpt: max}
}

// Search finds the first case-insensitive occurrence of the query past
// the front-matter boundary. Pages carrying full lesson structure
// (raagam and aarohana headers plus "||" notation rows) are preferred
// over bare textual hits, so a passing mention in prose does not shadow
// the actual lesson page. The whole query is tried first, then its
// individual words, which covers prompts like "teach me sarali".
func (r *Retriever) Search(_ context.Context, query string) (string, error) {
	for _, term := range searchTerms(query) {
		if out, ok := r.findTerm(term, true); ok {
			return out, nil
		}
	}
	for _, term := range searchTerms(query) {
		if out, ok := r.findTerm(term, false); ok {
			return out, nil
		}
	}
	return "", ErrNotFound
}

// Summary lists the opening lines of the document, which hold the
// available lesson names.
func (r *Retriever) Summary() string {
	lines := strings.Split(r.doc.Text(), "\n")
	if len(lines) > 20 {
		lines = lines[:20]
	}
	return "Available lessons:\n" + strings.Join(lines, "\n")
}

func (r *Retriever) findTerm(term string, structural bool) (string, bool) {
	offset := 0
	for _, page := range r.doc.Pages() {
		pageStart := offset
		offset += len(page) + 2 // pages are joined with "\n\n"

		lower := strings.ToLower(page)
		if strings.Contains(page, "Contents") {
			continue
		}
		if structural && !isLessonPage(page, lower) {
			continue
		}

		idx := strings.Index(lower, term)
		for idx >= 0 {
			if pageStart+idx >= r.skipChars {
				return r.excerpt(page, idx), true
			}
			next := strings.Index(lower[idx+1:], term)
			if next < 0 {
				break
			}
			idx += 1 + next
		}
	}
	return "", false
}

// isLessonPage checks for the markers every digitized lesson page
// carries: raagam/aarohana metadata and "||" exercise notation.
func isLessonPage(page, lower string) bool {
	return strings.Contains(lower, "raagam") &&
		strings.Contains(lower, "aarohana") &&
		strings.Contains(page, "||")
}

func (r *Retriever) excerpt(page string, idx int) string {
	end := idx + r.maxExcerpt
	if end > len(page) {
		end = len(page)
	}
	return page[idx:end]
}

func searchTerms(query string) []string {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}
	terms := []string{q}
	for _, w := range strings.Fields(q) {
		w = strings.Trim(w, ".,!?\"'")
		if len(w) > 3 && w != q {
			terms = append(terms, w)
		}
	}
	return terms
}
