// Package lesson loads the static lesson document and retrieves bounded
// excerpts from it. The document is read once at startup and never
// changes between requests.
package lesson

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

// pageMarker prefixes every page in the extracted text, mirroring the
// shape the lessons were originally digitized in.
const pageMarker = "--- Page"

// Document is the immutable lesson corpus: page-extracted text with
// page markers preserved.
type Document struct {
	pages []string
	text  string
}

// Load reads a lesson document from disk. A .pdf file is extracted page
// by page; anything else is treated as a pre-extracted text dump.
func Load(path string) (*Document, error) {
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		return loadPDF(path)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading lesson document: %w", err)
	}
	return FromText(string(raw)), nil
}

// FromText builds a document from already-extracted text. Page markers
// are honored when present; otherwise the whole text is a single page.
func FromText(text string) *Document {
	var pages []string
	for _, chunk := range strings.Split(text, pageMarker) {
		if strings.TrimSpace(chunk) == "" {
			continue
		}
		pages = append(pages, pageMarker+chunk)
	}
	if len(pages) == 0 {
		pages = []string{text}
	}
	return &Document{pages: pages, text: strings.Join(pages, "\n\n")}
}

func loadPDF(path string) (*Document, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening pdf: %w", err)
	}
	defer f.Close()

	var pages []string
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("extracting page %d: %w", i, err)
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		pages = append(pages, fmt.Sprintf("%s %d ---\n%s", pageMarker, i, text))
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("pdf %s contains no extractable text", path)
	}
	return &Document{pages: pages, text: strings.Join(pages, "\n\n")}, nil
}

// Text returns the full extracted text with page markers.
func (d *Document) Text() string { return d.text }

// Pages returns the per-page extracted text.
func (d *Document) Pages() []string { return d.pages }
