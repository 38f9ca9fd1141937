package events

import (
	"context"

	"go.uber.org/zap"
)

// LogObserver writes events to a zap logger
type LogObserver struct {
	log *zap.Logger
}

// NewLogObserver creates an observer that logs through log
func NewLogObserver(log *zap.Logger) *LogObserver {
	return &LogObserver{log: log.Named("events")}
}

// Observe logs e at a level matching its kind
func (o *LogObserver) Observe(_ context.Context, e Event) {
	fields := []zap.Field{
		zap.String("event", string(e.Kind)),
		zap.Time("at", e.Time),
	}
	if e.JobID != 0 {
		fields = append(fields, zap.Int64("job_id", e.JobID))
	}
	if e.JobName != "" {
		fields = append(fields, zap.String("job_name", e.JobName))
	}
	if e.SourceType != "" {
		fields = append(fields, zap.String("source_type", e.SourceType))
	}
	if e.URL != "" {
		fields = append(fields, zap.String("url", e.URL))
	}
	if e.Page != 0 {
		fields = append(fields, zap.Int("page", e.Page))
	}

	switch e.Kind {
	case FetchStarted:
		o.log.Info("Requesting page", fields...)
	case FetchFinished:
		fields = append(fields, zap.Duration("elapsed", e.Elapsed), zap.Int("status", e.StatusCode))
		if e.Err != nil {
			o.log.Warn("Request failed", append(fields, zap.Error(e.Err))...)
			return
		}
		o.log.Info("Request completed", fields...)
	case PageParsed:
		o.log.Debug("Page parsed", append(fields, zap.Int("records", e.Records), zap.Bool("more", e.More))...)
	case JobStarted:
		o.log.Info("Starting job", fields...)
	case CrawlFinished, JobCompleted:
		o.log.Info("Finished", append(fields, zap.Int("records", e.Records), zap.Duration("elapsed", e.Elapsed))...)
	case CrawlFailed, JobFailed:
		o.log.Error("Failed", append(fields, zap.Int("records", e.Records), zap.Error(e.Err))...)
	default:
		o.log.Info("Event", fields...)
	}
}
