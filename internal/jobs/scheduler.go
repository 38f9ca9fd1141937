package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/bradykim7/pagecrawl/internal/models"
	"go.uber.org/zap"
)

// JobLister lists stored jobs by status
type JobLister interface {
	ListJobs(ctx context.Context, status models.JobStatus) ([]*models.Job, error)
}

// Runner runs a single job
type Runner interface {
	RunJob(ctx context.Context, jobID int64) bool
}

// Scheduler periodically picks up pending jobs and runs them one at a time
type Scheduler struct {
	jobs   JobLister
	runner Runner
	log    *zap.Logger
}

// NewScheduler creates a scheduler
func NewScheduler(jobs JobLister, runner Runner, log *zap.Logger) *Scheduler {
	return &Scheduler{
		jobs:   jobs,
		runner: runner,
		log:    log.Named("scheduler"),
	}
}

// RunPending runs every pending job, oldest first, and returns how many
// completed and how many failed. It stops early when ctx is cancelled.
func (s *Scheduler) RunPending(ctx context.Context) (completed, failed int, err error) {
	pending, err := s.jobs.ListJobs(ctx, models.JobStatusPending)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to list pending jobs: %w", err)
	}

	// ListJobs is newest first
	for i := len(pending) - 1; i >= 0; i-- {
		if err := ctx.Err(); err != nil {
			return completed, failed, err
		}
		if s.runner.RunJob(ctx, pending[i].ID) {
			completed++
		} else {
			failed++
		}
	}
	return completed, failed, nil
}

// Start runs pending jobs immediately and then on every tick until ctx is
// cancelled
func (s *Scheduler) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.log.Info("Starting scheduled job runs", zap.Duration("interval", interval))

	// Run immediately
	s.runOnce(ctx)

	// Then run on schedule
	for {
		select {
		case <-ticker.C:
			s.runOnce(ctx)
		case <-ctx.Done():
			s.log.Info("Stopping scheduled job runs")
			return
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context) {
	completed, failed, err := s.RunPending(ctx)
	if err != nil && ctx.Err() == nil {
		s.log.Error("Scheduled run failed", zap.Error(err))
		return
	}
	if completed+failed > 0 {
		s.log.Info("Scheduled run finished",
			zap.Int("completed", completed),
			zap.Int("failed", failed))
	}
}
