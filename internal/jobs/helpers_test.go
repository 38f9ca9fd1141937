package jobs_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/bradykim7/pagecrawl/internal/crawler"
	"github.com/bradykim7/pagecrawl/internal/models"
	"github.com/bradykim7/pagecrawl/internal/storage"
)

// memStore is an in-memory JobStore that records every status write
type memStore struct {
	mu       sync.Mutex
	jobs     map[int64]*models.Job
	results  map[int64][]string
	statuses []models.JobStatus
	putErr   error
}

func newMemStore(jobs ...*models.Job) *memStore {
	s := &memStore{jobs: map[int64]*models.Job{}, results: map[int64][]string{}}
	for _, j := range jobs {
		s.jobs[j.ID] = j
	}
	return s
}

func (s *memStore) GetJob(_ context.Context, id int64) (*models.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[id]
	if !ok {
		return nil, &storage.NotFoundError{JobID: id}
	}
	cp := *j
	return &cp, nil
}

func (s *memStore) SetJobStatus(_ context.Context, id int64, status models.JobStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[id]
	if !ok {
		return &storage.NotFoundError{JobID: id}
	}
	j.Status = status
	s.statuses = append(s.statuses, status)
	return nil
}

func (s *memStore) PutJobResult(_ context.Context, id int64, data string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.putErr != nil {
		return s.putErr
	}
	j, ok := s.jobs[id]
	if !ok {
		return &storage.NotFoundError{JobID: id}
	}
	j.Status = models.JobStatusCompleted
	s.statuses = append(s.statuses, models.JobStatusCompleted)
	s.results[id] = append(s.results[id], data)
	return nil
}

func (s *memStore) ListJobs(_ context.Context, status models.JobStatus) ([]*models.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Job
	// newest first, ids are assigned in creation order
	for id := int64(len(s.jobs) + 100); id > 0; id-- {
		if j, ok := s.jobs[id]; ok && (status == "" || j.Status == status) {
			cp := *j
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *memStore) status(id int64) models.JobStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id].Status
}

func (s *memStore) history() []models.JobStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.JobStatus(nil), s.statuses...)
}

func (s *memStore) stored(id int64) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.results[id]...)
}

// stubCrawler returns a fixed result
type stubCrawler struct {
	records models.ResultSet
	err     error
	calls   int
}

func (c *stubCrawler) Crawl(context.Context, string, models.SourceType) (models.ResultSet, error) {
	c.calls++
	return c.records, c.err
}

// pageFetcher serves canned markup by URL and counts calls
type pageFetcher struct {
	mu    sync.Mutex
	pages map[string]string
	errs  map[string]error
	calls int
}

func (f *pageFetcher) Fetch(_ context.Context, url string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if err, ok := f.errs[url]; ok {
		return "", err
	}
	if page, ok := f.pages[url]; ok {
		return page, nil
	}
	return "", &crawler.TransportError{URL: url, StatusCode: 404}
}

func (f *pageFetcher) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func quotePage(next bool, quotes ...string) string {
	var b strings.Builder
	b.WriteString("<html><body>")
	for _, q := range quotes {
		fmt.Fprintf(&b, `<div class="quote"><span class="text" itemprop="text">%s</span></div>`, q)
	}
	if next {
		b.WriteString(`<ul class="pager"><li class="next"><a href="#">Next →</a></li></ul>`)
	}
	b.WriteString("</body></html>")
	return b.String()
}

func newsPage(page int, next bool) string {
	var b strings.Builder
	b.WriteString(`<html><body><ul class="news-list">`)
	fmt.Fprintf(&b, `<li class="news-item"><a href="#"><img data-src="/img/%[1]d.jpg"></a><a href="#">Headline %[1]d</a><span class="date">2024-01-%[1]d</span></li>`, page)
	b.WriteString(`</ul>`)
	if next {
		b.WriteString(`<a class="next" href="#">Next</a>`)
	}
	b.WriteString("</body></html>")
	return b.String()
}

var errBoom = errors.New("boom")
