package crawler_test

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/bradykim7/pagecrawl/internal/crawler"
)

// fakeFetcher serves canned markup by URL and records every call
type fakeFetcher struct {
	mu    sync.Mutex
	pages map[string]string
	errs  map[string]error
	calls []string
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{pages: map[string]string{}, errs: map[string]error{}}
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, url)
	if err, ok := f.errs[url]; ok {
		return "", err
	}
	page, ok := f.pages[url]
	if !ok {
		return "", &crawler.TransportError{URL: url, StatusCode: 404}
	}
	return page, nil
}

func (f *fakeFetcher) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	copy(out, f.calls)
	return out
}

func quotePage(next bool, quotes ...string) string {
	var b strings.Builder
	b.WriteString("<html><body><div class=\"col-md-8\">")
	for _, q := range quotes {
		fmt.Fprintf(&b, `<div class="quote"><span class="text" itemprop="text">%s</span></div>`, q)
	}
	if next {
		b.WriteString(`<nav><ul class="pager"><li class="next"><a href="#">Next →</a></li></ul></nav>`)
	}
	b.WriteString("</div></body></html>")
	return b.String()
}

func newsPage(page, items int, next bool) string {
	var b strings.Builder
	b.WriteString(`<html><body><ul class="news-list">`)
	for i := 0; i < items; i++ {
		fmt.Fprintf(&b, `<li class="news-item"><a href="/n/%[1]d-%[2]d"><img data-src="/img/%[1]d-%[2]d.jpg"></a>`+
			`<a href="/n/%[1]d-%[2]d">headline %[1]d-%[2]d</a><span class="date">2024-01-%[1]d</span></li>`, page, i)
	}
	b.WriteString(`</ul>`)
	if next {
		b.WriteString(`<a class="next" href="#">Next</a>`)
	}
	b.WriteString(`</body></html>`)
	return b.String()
}
