package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/bradykim7/pagecrawl/internal/models"
	"github.com/bradykim7/pagecrawl/pkg/config"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newSQLiteStore(t *testing.T) Store {
	t.Helper()
	s, err := NewSQLiteStore(":memory:", zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func newMongoStore(t *testing.T) Store {
	t.Helper()
	uri := os.Getenv("MONGODB_TEST_URI")
	if uri == "" {
		t.Skip("MONGODB_TEST_URI not set")
	}

	ctx := context.Background()
	dbName := fmt.Sprintf("pagecrawl_test_%d", time.Now().UnixNano())
	db, err := ConnectMongoDB(ctx, uri, dbName, zap.NewNop())
	require.NoError(t, err)

	s, err := NewMongoJobStore(ctx, db, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Database().Drop(context.Background())
		_ = s.Close()
	})
	return s
}

func TestSQLiteStore(t *testing.T) {
	runStoreTests(t, newSQLiteStore)
}

func TestMongoJobStore(t *testing.T) {
	runStoreTests(t, newMongoStore)
}

func runStoreTests(t *testing.T, newStore func(t *testing.T) Store) {
	ctx := context.Background()

	t.Run("create and get", func(t *testing.T) {
		s := newStore(t)
		job := models.NewJob("quotes-run", "http://quotes.toscrape.com/page", models.SourceTypeQuotes)
		require.NoError(t, s.CreateJob(ctx, job))
		require.NotZero(t, job.ID)

		got, err := s.GetJob(ctx, job.ID)
		require.NoError(t, err)
		require.Equal(t, job.ID, got.ID)
		require.Equal(t, "quotes-run", got.Name)
		require.Equal(t, "http://quotes.toscrape.com/page", got.SourceURL)
		require.Equal(t, models.SourceTypeQuotes, got.SourceType)
		require.Equal(t, models.JobStatusPending, got.Status)
		require.WithinDuration(t, job.CreatedAt, got.CreatedAt, time.Second)
	})

	t.Run("ids are unique", func(t *testing.T) {
		s := newStore(t)
		a := models.NewJob("a", "http://example.com", models.SourceTypeNews)
		b := models.NewJob("b", "http://example.com", models.SourceTypeNews)
		require.NoError(t, s.CreateJob(ctx, a))
		require.NoError(t, s.CreateJob(ctx, b))
		require.NotEqual(t, a.ID, b.ID)
	})

	t.Run("duplicate name", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.CreateJob(ctx, models.NewJob("dup", "http://a", models.SourceTypeQuotes)))
		err := s.CreateJob(ctx, models.NewJob("dup", "http://b", models.SourceTypeQuotes))
		require.ErrorIs(t, err, ErrDuplicateName)
	})

	t.Run("unknown job", func(t *testing.T) {
		s := newStore(t)

		_, err := s.GetJob(ctx, 999)
		var nf *NotFoundError
		require.ErrorAs(t, err, &nf)
		require.Equal(t, int64(999), nf.JobID)

		require.True(t, IsNotFound(s.SetJobStatus(ctx, 999, models.JobStatusRunning)))
		require.True(t, IsNotFound(s.PutJobResult(ctx, 999, "[]")))
		require.True(t, IsNotFound(s.DeleteJob(ctx, 999)))
	})

	t.Run("status transitions", func(t *testing.T) {
		s := newStore(t)
		job := models.NewJob("status", "http://a", models.SourceTypeQuotes)
		require.NoError(t, s.CreateJob(ctx, job))

		require.NoError(t, s.SetJobStatus(ctx, job.ID, models.JobStatusRunning))
		got, err := s.GetJob(ctx, job.ID)
		require.NoError(t, err)
		require.Equal(t, models.JobStatusRunning, got.Status)

		require.Error(t, s.SetJobStatus(ctx, job.ID, models.JobStatus("paused")))
	})

	t.Run("put result completes job", func(t *testing.T) {
		s := newStore(t)
		job := models.NewJob("complete", "http://a", models.SourceTypeQuotes)
		require.NoError(t, s.CreateJob(ctx, job))
		require.NoError(t, s.SetJobStatus(ctx, job.ID, models.JobStatusRunning))

		data := `[{"quote_text": "“Hello”"}]`
		require.NoError(t, s.PutJobResult(ctx, job.ID, data))

		got, err := s.GetJob(ctx, job.ID)
		require.NoError(t, err)
		require.Equal(t, models.JobStatusCompleted, got.Status)

		results, err := s.GetJobResults(ctx, job.ID)
		require.NoError(t, err)
		require.Len(t, results, 1)
		require.Equal(t, job.ID, results[0].JobID)
		require.Equal(t, data, results[0].Data)
		require.False(t, results[0].ScrapedAt.IsZero())
	})

	t.Run("results newest first", func(t *testing.T) {
		s := newStore(t)
		job := models.NewJob("rerun", "http://a", models.SourceTypeQuotes)
		require.NoError(t, s.CreateJob(ctx, job))
		require.NoError(t, s.PutJobResult(ctx, job.ID, "first"))
		require.NoError(t, s.PutJobResult(ctx, job.ID, "second"))

		results, err := s.GetJobResults(ctx, job.ID)
		require.NoError(t, err)
		require.Len(t, results, 2)
		require.Equal(t, "second", results[0].Data)
		require.Equal(t, "first", results[1].Data)
	})

	t.Run("list filters by status", func(t *testing.T) {
		s := newStore(t)
		pending := models.NewJob("pending", "http://a", models.SourceTypeQuotes)
		failed := models.NewJob("failed", "http://b", models.SourceTypeNews)
		require.NoError(t, s.CreateJob(ctx, pending))
		require.NoError(t, s.CreateJob(ctx, failed))
		require.NoError(t, s.SetJobStatus(ctx, failed.ID, models.JobStatusFailed))

		all, err := s.ListJobs(ctx, "")
		require.NoError(t, err)
		require.Len(t, all, 2)

		onlyPending, err := s.ListJobs(ctx, models.JobStatusPending)
		require.NoError(t, err)
		require.Len(t, onlyPending, 1)
		require.Equal(t, pending.ID, onlyPending[0].ID)

		none, err := s.ListJobs(ctx, models.JobStatusRunning)
		require.NoError(t, err)
		require.NotNil(t, none)
		require.Empty(t, none)
	})

	t.Run("delete removes results", func(t *testing.T) {
		s := newStore(t)
		job := models.NewJob("delete", "http://a", models.SourceTypeQuotes)
		require.NoError(t, s.CreateJob(ctx, job))
		require.NoError(t, s.PutJobResult(ctx, job.ID, "[]"))

		require.NoError(t, s.DeleteJob(ctx, job.ID))

		_, err := s.GetJob(ctx, job.ID)
		require.True(t, IsNotFound(err))

		results, err := s.GetJobResults(ctx, job.ID)
		require.NoError(t, err)
		require.Empty(t, results)

		// the name is free again
		require.NoError(t, s.CreateJob(ctx, models.NewJob("delete", "http://a", models.SourceTypeQuotes)))
	})
}

func TestPersistenceError(t *testing.T) {
	cause := errors.New("disk full")
	err := fmt.Errorf("run: %w", &PersistenceError{Op: "put result", JobID: 7, Err: cause})

	var pe *PersistenceError
	require.ErrorAs(t, err, &pe)
	require.Equal(t, int64(7), pe.JobID)
	require.ErrorIs(t, err, cause)
	require.Equal(t, "put result for job 7: disk full", pe.Error())
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), &config.Config{StorageDriver: "postgres"}, zap.NewNop())
	require.Error(t, err)
}
