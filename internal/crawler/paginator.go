package crawler

import (
	"context"
	"fmt"
	"time"

	"github.com/bradykim7/pagecrawl/internal/crawler/sources"
	"github.com/bradykim7/pagecrawl/internal/events"
	"github.com/bradykim7/pagecrawl/internal/models"
	"go.uber.org/zap"
)

// CrawlState is the driver's working state for one crawl
type CrawlState struct {
	SourceType models.SourceType
	Page       int
	NextURL    string
	Records    models.ResultSet
}

// Paginator drives the fetch, parse, continue loop for a single crawl.
// Pages are processed strictly in sequence.
type Paginator struct {
	fetcher  Fetcher
	registry sources.Registry
	observer events.Observer
	log      *zap.Logger
}

// NewPaginator creates a driver using the given fetcher and source registry
func NewPaginator(fetcher Fetcher, registry sources.Registry, observer events.Observer, log *zap.Logger) *Paginator {
	if registry == nil {
		registry = sources.Default()
	}
	if observer == nil {
		observer = events.Nop
	}
	return &Paginator{
		fetcher:  fetcher,
		registry: registry,
		observer: observer,
		log:      log.Named("paginator"),
	}
}

// Crawl fetches pages starting at page 1 of baseURL until the source reports
// no further pages or its page cap is reached. On any failure the records
// gathered so far are discarded and only the error is returned.
func (p *Paginator) Crawl(ctx context.Context, baseURL string, sourceType models.SourceType) (models.ResultSet, error) {
	src, err := p.registry.Lookup(sourceType)
	if err != nil {
		p.emitFailed(ctx, &CrawlState{SourceType: sourceType}, err)
		return nil, err
	}

	start := time.Now()
	state := &CrawlState{
		SourceType: sourceType,
		Page:       1,
		NextURL:    src.PageURL(baseURL, 1),
	}

	p.log.Info("Starting crawl",
		zap.String("source_type", string(sourceType)),
		zap.String("url", state.NextURL))

	for {
		if err := ctx.Err(); err != nil {
			return nil, p.fail(ctx, state, fmt.Errorf("crawl cancelled before page %d: %w", state.Page, err))
		}

		markup, err := p.fetcher.Fetch(ctx, state.NextURL)
		if err != nil {
			return nil, p.fail(ctx, state, fmt.Errorf("page %d: %w", state.Page, err))
		}

		records, cont, err := src.Parser.Extract(markup)
		if err != nil {
			return nil, p.fail(ctx, state, fmt.Errorf("page %d (%s): %w", state.Page, state.NextURL, err))
		}
		state.Records = append(state.Records, records...)

		events.Emit(ctx, p.observer, events.Event{
			Kind:       events.PageParsed,
			SourceType: string(sourceType),
			URL:        state.NextURL,
			Page:       state.Page,
			Records:    len(records),
			More:       cont == sources.More,
		})

		if cont == sources.Exhausted {
			break
		}
		if src.Capped(state.Page) {
			p.log.Info("Page cap reached",
				zap.String("source_type", string(sourceType)),
				zap.Int("max_pages", src.MaxPages))
			break
		}

		state.Page++
		state.NextURL = src.PageURL(baseURL, state.Page)
	}

	events.Emit(ctx, p.observer, events.Event{
		Kind:       events.CrawlFinished,
		SourceType: string(sourceType),
		URL:        baseURL,
		Page:       state.Page,
		Records:    len(state.Records),
		Elapsed:    time.Since(start),
	})

	return state.Records, nil
}

func (p *Paginator) fail(ctx context.Context, state *CrawlState, err error) error {
	p.emitFailed(ctx, state, err)
	return err
}

func (p *Paginator) emitFailed(ctx context.Context, state *CrawlState, err error) {
	events.Emit(ctx, p.observer, events.Event{
		Kind:       events.CrawlFailed,
		SourceType: string(state.SourceType),
		URL:        state.NextURL,
		Page:       state.Page,
		Records:    len(state.Records),
		Err:        err,
	})
}
