package activities

import (
	"context"
	stderrors "errors"

	"github.com/pkg/errors"
	"go.temporal.io/sdk/activity"
	sdktemporal "go.temporal.io/sdk/temporal"

	"github.com/stanstork/notifications/internal/notification"
	"github.com/stanstork/notifications/internal/temporal"
)

// Runner executes one notification job.
type Runner interface {
	Run(ctx context.Context, job notification.Job) error
}

type Activities struct {
	Runner Runner
}

// DeliverNotificationActivity runs the job once. Fatal job errors become
// non-retryable application errors so Temporal stops retrying them; all other
// failures are left to the workflow retry policy.
func (a *Activities) DeliverNotificationActivity(ctx context.Context, job notification.Job) error {
	logger := activity.GetLogger(ctx)
	info := activity.GetInfo(ctx)
	logger.Info("Delivering notification", "jobID", job.ID, "channel", job.Channel, "attempt", info.Attempt)

	err := a.Runner.Run(ctx, job)
	if err == nil {
		return nil
	}

	var je *notification.JobError
	if stderrors.As(err, &je) && !je.Retryable() {
		logger.Error("Notification job failed permanently", "jobID", job.ID, "kind", je.Kind, "error", je.Err)
		return sdktemporal.NewNonRetryableApplicationError(je.Error(), temporal.FatalErrorType, je)
	}
	return errors.Wrapf(err, "deliver notification job %s", job.ID)
}
