package sources

import (
	"sort"

	"github.com/bradykim7/pagecrawl/internal/models"
)

// Continuation is a page's verdict on whether further pages exist
type Continuation int

const (
	// Exhausted means the site has no page after this one
	Exhausted Continuation = iota
	// More means a next-page marker was found
	More
)

func (c Continuation) String() string {
	if c == More {
		return "more"
	}
	return "exhausted"
}

// Parser extracts records and the continuation signal from one page
type Parser interface {
	Extract(markup string) ([]models.Record, Continuation, error)
}

// Source binds a parser to the site's page URL scheme and page cap
type Source struct {
	Type   models.SourceType
	Parser Parser

	// PageURL builds the URL of the given 1-based page from the job's base URL
	PageURL func(base string, page int) string

	// MaxPages stops the crawl after that many pages even when the site
	// reports more. Zero means no cap.
	MaxPages int
}

// Capped reports whether page is the last one this source may fetch
func (s Source) Capped(page int) bool {
	return s.MaxPages > 0 && page >= s.MaxPages
}

// Registry maps a source type to its strategy
type Registry map[models.SourceType]Source

// Default returns a registry holding every built-in source, reachable by
// both its current and its legacy name
func Default() Registry {
	quotes := Source{
		Type:    models.SourceTypeQuotes,
		Parser:  QuoteParser{},
		PageURL: PathPageURL,
	}
	news := Source{
		Type:     models.SourceTypeNews,
		Parser:   NewsParser{},
		PageURL:  QueryPageURL,
		MaxPages: NewsMaxPages,
	}
	return Registry{
		models.SourceTypeQuotes:          quotes,
		models.SourceTypeQuoteLegacy:     quotes,
		models.SourceTypeNews:            news,
		models.SourceTypeSidhakuraLegacy: news,
	}
}

// Lookup returns the source for t, or an UnsupportedSourceError
func (r Registry) Lookup(t models.SourceType) (Source, error) {
	src, ok := r[t]
	if !ok || src.Parser == nil || src.PageURL == nil {
		return Source{}, &UnsupportedSourceError{SourceType: t}
	}
	return src, nil
}

// Types lists the registered source types in sorted order
func (r Registry) Types() []models.SourceType {
	types := make([]models.SourceType, 0, len(r))
	for t := range r {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}
