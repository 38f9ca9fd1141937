package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bradykim7/pagecrawl/internal/events"
	"github.com/bradykim7/pagecrawl/internal/models"
	"github.com/bradykim7/pagecrawl/internal/storage"
	"go.uber.org/zap"
)

// ErrEmptyResult is returned when a crawl finishes without producing any
// records. The job is marked failed.
var ErrEmptyResult = errors.New("crawl produced no records")

// JobStore is the part of the job store the orchestrator needs
type JobStore interface {
	GetJob(ctx context.Context, id int64) (*models.Job, error)
	SetJobStatus(ctx context.Context, id int64, status models.JobStatus) error
	PutJobResult(ctx context.Context, id int64, data string) error
}

// Crawler runs one paginated crawl
type Crawler interface {
	Crawl(ctx context.Context, baseURL string, sourceType models.SourceType) (models.ResultSet, error)
}

// Outcome summarizes a successful run
type Outcome struct {
	JobID   int64
	Status  models.JobStatus
	Records int
}

// Orchestrator binds crawl runs to persisted jobs. Runs are serialized: a
// second Start waits until the first returns.
type Orchestrator struct {
	mu       sync.Mutex
	store    JobStore
	crawler  Crawler
	observer events.Observer
	log      *zap.Logger
}

// NewOrchestrator creates an orchestrator
func NewOrchestrator(store JobStore, crawler Crawler, observer events.Observer, log *zap.Logger) *Orchestrator {
	if observer == nil {
		observer = events.Nop
	}
	return &Orchestrator{
		store:    store,
		crawler:  crawler,
		observer: observer,
		log:      log.Named("orchestrator"),
	}
}

// Start runs the job with the given id to completion.
//
// An unknown id returns the store's *storage.NotFoundError and touches
// nothing. Otherwise the job is marked running, crawled, and ends either
// completed with its serialized records stored, or failed with the cause
// returned.
func (o *Orchestrator) Start(ctx context.Context, jobID int64) (*Outcome, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	job, err := o.store.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}

	ctx = events.WithJob(ctx, job.ID, job.Name)
	start := time.Now()

	if err := o.store.SetJobStatus(ctx, job.ID, models.JobStatusRunning); err != nil {
		return nil, o.fail(ctx, job, start, &storage.PersistenceError{Op: "mark running", JobID: job.ID, Err: err})
	}

	events.Emit(ctx, o.observer, events.Event{
		Kind:       events.JobStarted,
		SourceType: string(job.SourceType),
		URL:        job.SourceURL,
	})

	records, err := o.crawler.Crawl(ctx, job.SourceURL, job.SourceType)
	if err == nil && len(records) == 0 {
		err = ErrEmptyResult
	}
	if err != nil {
		return nil, o.fail(ctx, job, start, err)
	}

	data, err := models.EncodeResultSet(records)
	if err != nil {
		return nil, o.fail(ctx, job, start, err)
	}

	if err := o.store.PutJobResult(ctx, job.ID, data); err != nil {
		return nil, o.fail(ctx, job, start, &storage.PersistenceError{Op: "store result", JobID: job.ID, Err: err})
	}

	events.Emit(ctx, o.observer, events.Event{
		Kind:       events.JobCompleted,
		SourceType: string(job.SourceType),
		URL:        job.SourceURL,
		Records:    len(records),
		Elapsed:    time.Since(start),
	})

	return &Outcome{
		JobID:   job.ID,
		Status:  models.JobStatusCompleted,
		Records: len(records),
	}, nil
}

// RunJob runs the job and reports whether it completed
func (o *Orchestrator) RunJob(ctx context.Context, jobID int64) bool {
	outcome, err := o.Start(ctx, jobID)
	if err != nil {
		o.log.Error("Job run failed", zap.Int64("job_id", jobID), zap.Error(err))
		return false
	}
	o.log.Info("Job run completed",
		zap.Int64("job_id", outcome.JobID),
		zap.Int("records", outcome.Records))
	return true
}

// fail marks the job failed and returns cause wrapped with the job id. The
// status write ignores cancellation of ctx so cancelled runs still end failed.
func (o *Orchestrator) fail(ctx context.Context, job *models.Job, start time.Time, cause error) error {
	if err := o.store.SetJobStatus(context.WithoutCancel(ctx), job.ID, models.JobStatusFailed); err != nil {
		o.log.Error("Failed to mark job failed",
			zap.Int64("job_id", job.ID),
			zap.Error(err))
	}

	events.Emit(ctx, o.observer, events.Event{
		Kind:       events.JobFailed,
		SourceType: string(job.SourceType),
		URL:        job.SourceURL,
		Elapsed:    time.Since(start),
		Err:        cause,
	})

	return fmt.Errorf("job %d: %w", job.ID, cause)
}
