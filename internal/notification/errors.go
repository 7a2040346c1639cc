package notification

import (
	"errors"
	"fmt"

	"github.com/stanstork/notifications/internal/events"
	"github.com/stanstork/notifications/internal/models"
	"github.com/stanstork/notifications/internal/repository"
)

// ErrInvalidInput marks a request rejected at the boundary. It is never retried.
var ErrInvalidInput = errors.New("invalid input")

type ErrorKind string

const (
	KindStorage    ErrorKind = "storage"
	KindRender     ErrorKind = "render"
	KindExecutor   ErrorKind = "executor"
	KindValidation ErrorKind = "validation"
)

// JobError is the single error type a job execution reports to the
// substrate. Only Retryable decides whether the substrate tries again.
type JobError struct {
	Kind      ErrorKind
	JobID     string
	Channel   models.Channel
	Err       error
	retryable bool
}

func (e *JobError) Error() string {
	return fmt.Sprintf("%s job %s (%s): %v", e.Channel, e.JobID, e.Kind, e.Err)
}

func (e *JobError) Unwrap() error {
	return e.Err
}

func (e *JobError) Retryable() bool {
	return e.retryable
}

// PermanentError is implemented by executor errors the provider will never
// accept on retry, such as a rejected recipient address.
type PermanentError interface {
	error
	Permanent() bool
}

type permanentError struct {
	err error
}

func (e permanentError) Error() string   { return e.err.Error() }
func (e permanentError) Unwrap() error   { return e.err }
func (e permanentError) Permanent() bool { return true }

// Permanent marks err as a rejection that retrying cannot fix.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return permanentError{err: err}
}

func IsPermanent(err error) bool {
	var p PermanentError
	return errors.As(err, &p) && p.Permanent()
}

// classify maps any failure from a job execution onto the job error taxonomy.
func classify(job Job, err error) *JobError {
	var je *JobError
	if errors.As(err, &je) {
		return je
	}

	out := &JobError{JobID: job.ID, Channel: job.Channel, Err: err}
	switch {
	case errors.Is(err, ErrInvalidInput),
		errors.Is(err, events.ErrInvalidEvent),
		errors.Is(err, events.ErrUnknownEventType),
		errors.Is(err, models.ErrInvalidChannel),
		errors.Is(err, models.ErrInvalidCategory),
		errors.Is(err, models.ErrInvalidScope):
		out.Kind = KindValidation
	case errors.Is(err, events.ErrRender):
		out.Kind = KindRender
	case errors.Is(err, repository.ErrStorage), errors.Is(err, repository.ErrConflict):
		out.Kind = KindStorage
		out.retryable = true
	default:
		out.Kind = KindExecutor
		out.retryable = !IsPermanent(err)
	}
	return out
}
