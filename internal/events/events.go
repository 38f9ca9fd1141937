package events

import (
	"context"
	"sync"
	"time"
)

// Kind identifies what happened
type Kind string

const (
	FetchStarted  Kind = "fetch.started"
	FetchFinished Kind = "fetch.finished"
	PageParsed    Kind = "page.parsed"
	CrawlFinished Kind = "crawl.finished"
	CrawlFailed   Kind = "crawl.failed"
	JobStarted    Kind = "job.started"
	JobCompleted  Kind = "job.completed"
	JobFailed     Kind = "job.failed"
)

// Event is a structured diagnostic emitted by the crawler and the job
// orchestrator. Fields that do not apply to a kind are left zero.
type Event struct {
	Kind       Kind
	Time       time.Time
	JobID      int64
	JobName    string
	SourceType string
	URL        string
	Page       int
	Records    int
	StatusCode int
	Elapsed    time.Duration
	More       bool
	Err        error
}

// Observer receives events. Implementations must not block for long; they
// run inline on the crawl's goroutine.
type Observer interface {
	Observe(ctx context.Context, e Event)
}

// ObserverFunc adapts a function to Observer
type ObserverFunc func(ctx context.Context, e Event)

// Observe calls f(ctx, e)
func (f ObserverFunc) Observe(ctx context.Context, e Event) {
	f(ctx, e)
}

// Nop discards every event
var Nop Observer = ObserverFunc(func(context.Context, Event) {})

// Multi fans an event out to several observers in order
type Multi []Observer

// Observe forwards e to every observer
func (m Multi) Observe(ctx context.Context, e Event) {
	for _, o := range m {
		if o != nil {
			o.Observe(ctx, e)
		}
	}
}

type jobKey struct{}

type jobInfo struct {
	id   int64
	name string
}

// WithJob tags ctx so events emitted under it carry the job's identity
func WithJob(ctx context.Context, id int64, name string) context.Context {
	return context.WithValue(ctx, jobKey{}, jobInfo{id: id, name: name})
}

// Emit stamps the event time and job identity if unset and delivers it to o.
// A nil observer is allowed.
func Emit(ctx context.Context, o Observer, e Event) {
	if o == nil {
		return
	}
	if e.Time.IsZero() {
		e.Time = time.Now()
	}
	if info, ok := ctx.Value(jobKey{}).(jobInfo); ok {
		if e.JobID == 0 {
			e.JobID = info.id
		}
		if e.JobName == "" {
			e.JobName = info.name
		}
	}
	o.Observe(ctx, e)
}

// Recorder keeps every event it sees. Useful for tests and for summaries.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// Observe records e
func (r *Recorder) Observe(_ context.Context, e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

// Events returns a copy of the recorded events
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Count returns how many events of kind k were recorded
func (r *Recorder) Count(k Kind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e.Kind == k {
			n++
		}
	}
	return n
}
