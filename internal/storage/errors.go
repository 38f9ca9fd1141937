package storage

import (
	"errors"
	"fmt"
)

// ErrDuplicateName is returned when a job name is already taken
var ErrDuplicateName = errors.New("job name already exists")

// NotFoundError reports an unknown job id
type NotFoundError struct {
	JobID int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("job %d not found", e.JobID)
}

// IsNotFound reports whether err is or wraps a NotFoundError
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// PersistenceError reports a failed storage write for a job
type PersistenceError struct {
	Op    string
	JobID int64
	Err   error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s for job %d: %v", e.Op, e.JobID, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
