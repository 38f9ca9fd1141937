package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bradykim7/pagecrawl/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const (
	jobsCollection     = "scrape_jobs"
	countersCollection = "counters"
)

// jobDocument is a job with its results embedded, so completing a job is a
// single-document update
type jobDocument struct {
	models.Job `bson:",inline"`
	Results    []models.JobResult `bson:"results,omitempty"`
}

// MongoJobStore keeps jobs in MongoDB
type MongoJobStore struct {
	db  *MongoDB
	log *zap.Logger
}

// NewMongoJobStore creates the job store and ensures its indexes
func NewMongoJobStore(ctx context.Context, db *MongoDB, log *zap.Logger) (*MongoJobStore, error) {
	s := &MongoJobStore{
		db:  db,
		log: log.Named("job-repository"),
	}
	if err := s.setupIndices(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *MongoJobStore) setupIndices(ctx context.Context) error {
	jobs := s.db.Collection(jobsCollection)

	_, err := jobs.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create name index: %w", err)
	}

	_, err = jobs.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create status index: %w", err)
	}

	s.log.Info("Database indices created successfully")
	return nil
}

// nextID atomically increments the named counter and returns its new value
func (s *MongoJobStore) nextID(ctx context.Context, name string) (int64, error) {
	var counter struct {
		Seq int64 `bson:"seq"`
	}
	err := s.db.Collection(countersCollection).FindOneAndUpdate(ctx,
		bson.M{"_id": name},
		bson.M{"$inc": bson.M{"seq": 1}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("failed to allocate %s id: %w", name, err)
	}
	return counter.Seq, nil
}

// CreateJob inserts job and sets its ID
func (s *MongoJobStore) CreateJob(ctx context.Context, job *models.Job) error {
	if job.Status == "" {
		job.Status = models.JobStatusPending
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now().UTC()
	}

	id, err := s.nextID(ctx, jobsCollection)
	if err != nil {
		return err
	}
	job.ID = id

	_, err = s.db.Collection(jobsCollection).InsertOne(ctx, jobDocument{Job: *job})
	if err != nil {
		job.ID = 0
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %s", ErrDuplicateName, job.Name)
		}
		return fmt.Errorf("failed to create job: %w", err)
	}

	s.log.Info("Scrape job created", zap.Int64("job_id", id), zap.String("name", job.Name))
	return nil
}

// GetJob retrieves a job by ID
func (s *MongoJobStore) GetJob(ctx context.Context, id int64) (*models.Job, error) {
	var job models.Job
	err := s.db.Collection(jobsCollection).FindOne(ctx, bson.M{"_id": id},
		options.FindOne().SetProjection(bson.M{"results": 0}),
	).Decode(&job)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, &NotFoundError{JobID: id}
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return &job, nil
}

// ListJobs returns jobs newest first, optionally filtered by status
func (s *MongoJobStore) ListJobs(ctx context.Context, status models.JobStatus) ([]*models.Job, error) {
	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetProjection(bson.M{"results": 0})

	cursor, err := s.db.Collection(jobsCollection).Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	defer cursor.Close(ctx)

	jobs := []*models.Job{}
	if err := cursor.All(ctx, &jobs); err != nil {
		return nil, fmt.Errorf("failed to decode jobs: %w", err)
	}
	return jobs, nil
}

// SetJobStatus updates the status of a job
func (s *MongoJobStore) SetJobStatus(ctx context.Context, id int64, status models.JobStatus) error {
	if err := validStatus(status); err != nil {
		return err
	}

	res, err := s.db.Collection(jobsCollection).UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": status}},
	)
	if err != nil {
		return fmt.Errorf("failed to update job status: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("failed to update job status: %w", &NotFoundError{JobID: id})
	}

	s.log.Debug("Job status updated", zap.Int64("job_id", id), zap.String("status", string(status)))
	return nil
}

// PutJobResult appends the result blob and marks the job completed in a
// single update of the job document
func (s *MongoJobStore) PutJobResult(ctx context.Context, id int64, data string) error {
	resultID, err := s.nextID(ctx, "scraped_data")
	if err != nil {
		return err
	}

	result := models.JobResult{
		ID:        resultID,
		JobID:     id,
		Data:      data,
		ScrapedAt: time.Now().UTC(),
	}

	res, err := s.db.Collection(jobsCollection).UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{
			"$set":  bson.M{"status": models.JobStatusCompleted},
			"$push": bson.M{"results": result},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to complete job: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("failed to complete job: %w", &NotFoundError{JobID: id})
	}

	s.log.Info("Data inserted for job", zap.Int64("job_id", id), zap.Int("bytes", len(data)))
	return nil
}

// GetJobResults returns every stored result of a job, newest first
func (s *MongoJobStore) GetJobResults(ctx context.Context, id int64) ([]models.JobResult, error) {
	var doc jobDocument
	err := s.db.Collection(jobsCollection).FindOne(ctx, bson.M{"_id": id},
		options.FindOne().SetProjection(bson.M{"results": 1}),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get job results: %w", err)
	}

	results := make([]models.JobResult, 0, len(doc.Results))
	for i := len(doc.Results) - 1; i >= 0; i-- {
		results = append(results, doc.Results[i])
	}
	return results, nil
}

// DeleteJob removes a job and its results
func (s *MongoJobStore) DeleteJob(ctx context.Context, id int64) error {
	res, err := s.db.Collection(jobsCollection).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete job: %w", err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("failed to delete job: %w", &NotFoundError{JobID: id})
	}

	s.log.Info("Job and its data deleted", zap.Int64("job_id", id))
	return nil
}

// Close disconnects from MongoDB
func (s *MongoJobStore) Close() error {
	return s.db.Disconnect()
}
