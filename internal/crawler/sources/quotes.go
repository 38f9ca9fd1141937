package sources

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/bradykim7/pagecrawl/internal/models"
)

const (
	quoteSelector     = "div.quote"
	quoteTextSelector = `span[itemprop="text"]`
	quoteNextSelector = "li.next"

	// FieldQuoteText is the record key holding a quote's text
	FieldQuoteText = "quote_text"
)

// QuoteParser reads quote listing pages such as quotes.toscrape.com
type QuoteParser struct{}

// Extract pulls one record per quote block
func (QuoteParser) Extract(markup string) ([]models.Record, Continuation, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, Exhausted, &ParseError{Source: models.SourceTypeQuotes, Element: "document", Index: -1, Err: err}
	}

	var (
		records  []models.Record
		parseErr error
	)
	doc.Find(quoteSelector).EachWithBreak(func(i int, s *goquery.Selection) bool {
		text := s.Find(quoteTextSelector).First()
		if text.Length() == 0 {
			parseErr = missing(models.SourceTypeQuotes, quoteTextSelector, i)
			return false
		}
		records = append(records, models.Record{
			FieldQuoteText: text.Text(),
		})
		return true
	})
	if parseErr != nil {
		return nil, Exhausted, parseErr
	}

	return records, nextMarker(doc, quoteNextSelector), nil
}

// nextMarker reports More when the selector matches an element with label text
func nextMarker(doc *goquery.Document, selector string) Continuation {
	next := doc.Find(selector).First()
	if next.Length() > 0 && strings.TrimSpace(next.Text()) != "" {
		return More
	}
	return Exhausted
}
