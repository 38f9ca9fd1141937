package sources

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/bradykim7/pagecrawl/internal/models"
)

const (
	newsListSelector  = ".news-list"
	newsItemSelector  = ".news-item"
	newsDateSelector  = ".date"
	newsNextSelector  = "a.next"
	newsImageLazyAttr = "data-src"

	// NewsMaxPages caps news crawls regardless of the site's next link
	NewsMaxPages = 10

	FieldTitle         = "title"
	FieldImageURL      = "image_url"
	FieldPublishedDate = "published_date"
)

// NewsParser reads paginated news listings
type NewsParser struct{}

// Extract pulls one record per item of the news list
func (NewsParser) Extract(markup string) ([]models.Record, Continuation, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, Exhausted, &ParseError{Source: models.SourceTypeNews, Element: "document", Index: -1, Err: err}
	}

	list := doc.Find(newsListSelector).First()
	if list.Length() == 0 {
		return nil, Exhausted, missing(models.SourceTypeNews, newsListSelector, -1)
	}

	var (
		records  []models.Record
		parseErr error
	)
	list.Find(newsItemSelector).EachWithBreak(func(i int, s *goquery.Selection) bool {
		record, err := parseNewsItem(i, s)
		if err != nil {
			parseErr = err
			return false
		}
		records = append(records, record)
		return true
	})
	if parseErr != nil {
		return nil, Exhausted, parseErr
	}

	return records, nextMarker(doc, newsNextSelector), nil
}

// parseNewsItem extracts title, lazy image source and date from one item
func parseNewsItem(i int, s *goquery.Selection) (models.Record, error) {
	// The first anchor wraps the thumbnail, the second carries the headline
	title := s.Find("a").Eq(1)
	if title.Length() == 0 {
		return nil, missing(models.SourceTypeNews, "a[1]", i)
	}

	image, ok := s.Find("img").First().Attr(newsImageLazyAttr)
	if !ok {
		return nil, missing(models.SourceTypeNews, "img["+newsImageLazyAttr+"]", i)
	}

	date := s.Find(newsDateSelector).First()
	if date.Length() == 0 {
		return nil, missing(models.SourceTypeNews, newsDateSelector, i)
	}

	return models.Record{
		FieldTitle:         strings.TrimSpace(title.Text()),
		FieldImageURL:      strings.TrimSpace(image),
		FieldPublishedDate: strings.TrimSpace(date.Text()),
	}, nil
}
