package models

import (
	"fmt"
	"time"
)

// JobStatus is the lifecycle state of a scrape job
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

// IsTerminal reports whether no further transitions are expected
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// Valid reports whether s is one of the known statuses
func (s JobStatus) Valid() bool {
	switch s {
	case JobStatusPending, JobStatusRunning, JobStatusCompleted, JobStatusFailed:
		return true
	}
	return false
}

// SourceType selects the parsing and URL-construction strategy of a job.
// The set is open: new sites are added by registering a source.
type SourceType string

const (
	SourceTypeQuotes SourceType = "quotes"
	SourceTypeNews   SourceType = "news"

	// Names written by the desktop app into existing scraper_app.db files
	SourceTypeQuoteLegacy     SourceType = "quote"
	SourceTypeSidhakuraLegacy SourceType = "sidhakura"
)

// Job represents a persisted unit of scrape work
type Job struct {
	ID         int64      `bson:"_id" db:"id" json:"id"`
	Name       string     `bson:"name" db:"name" json:"name"`
	SourceURL  string     `bson:"url" db:"url" json:"url"`
	SourceType SourceType `bson:"source_type" db:"scraper_type" json:"source_type"`
	Status     JobStatus  `bson:"status" db:"status" json:"status"`
	CreatedAt  time.Time  `bson:"created_at" db:"created_at" json:"created_at"`
}

// NewJob creates a pending job; the store assigns the ID
func NewJob(name, sourceURL string, sourceType SourceType) *Job {
	return &Job{
		Name:       name,
		SourceURL:  sourceURL,
		SourceType: sourceType,
		Status:     JobStatusPending,
		CreatedAt:  time.Now().UTC(),
	}
}

// String returns a string representation of the job
func (j *Job) String() string {
	return fmt.Sprintf("#%d %s (%s, %s) [%s]", j.ID, j.Name, j.SourceType, j.SourceURL, j.Status)
}

// JobResult is one serialized result blob stored for a job
type JobResult struct {
	ID        int64     `bson:"id" db:"id" json:"id"`
	JobID     int64     `bson:"job_id" db:"job_id" json:"job_id"`
	Data      string    `bson:"data" db:"data" json:"data"`
	ScrapedAt time.Time `bson:"scraped_at" db:"scraped_at" json:"scraped_at"`
}
