package storage

import (
	"context"
	"fmt"

	"github.com/bradykim7/pagecrawl/internal/models"
	"github.com/bradykim7/pagecrawl/pkg/config"
	"go.uber.org/zap"
)

// Store persists scrape jobs and their serialized results
type Store interface {
	CreateJob(ctx context.Context, job *models.Job) error
	GetJob(ctx context.Context, id int64) (*models.Job, error)
	ListJobs(ctx context.Context, status models.JobStatus) ([]*models.Job, error)
	SetJobStatus(ctx context.Context, id int64, status models.JobStatus) error

	// PutJobResult stores data for the job and marks it completed in one
	// atomic write.
	PutJobResult(ctx context.Context, id int64, data string) error

	GetJobResults(ctx context.Context, id int64) ([]models.JobResult, error)
	DeleteJob(ctx context.Context, id int64) error
	Close() error
}

// Open connects to the store selected by cfg.StorageDriver
func Open(ctx context.Context, cfg *config.Config, log *zap.Logger) (Store, error) {
	switch cfg.StorageDriver {
	case config.StorageSQLite:
		return NewSQLiteStore(cfg.SQLitePath, log)
	case config.StorageMongoDB:
		db, err := NewMongoDB(ctx, cfg, log)
		if err != nil {
			return nil, err
		}
		return NewMongoJobStore(ctx, db, log)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

func validStatus(status models.JobStatus) error {
	if !status.Valid() {
		return fmt.Errorf("invalid job status %q", status)
	}
	return nil
}
