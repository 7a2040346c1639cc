package workflows

import (
	"go.temporal.io/sdk/workflow"

	"github.com/stanstork/notifications/internal/temporal"
	"github.com/stanstork/notifications/internal/temporal/activities"
)

// DeliverNotificationWorkflow delivers one job. Retry scheduling and the
// terminal failure signal both come from the activity retry policy.
func DeliverNotificationWorkflow(ctx workflow.Context, params temporal.DeliveryParams) error {
	timeout := params.ActivityTimeout
	if timeout <= 0 {
		timeout = temporal.DefaultActivityTimeout
	}
	ao := workflow.ActivityOptions{
		StartToCloseTimeout: timeout,
		RetryPolicy:         temporal.RetryPolicy(params.Retry),
	}
	ctx = workflow.WithActivityOptions(ctx, ao)

	logger := workflow.GetLogger(ctx)
	logger.Info("Starting notification delivery", "jobID", params.Job.ID, "channel", params.Job.Channel)

	var a *activities.Activities
	err := workflow.ExecuteActivity(ctx, a.DeliverNotificationActivity, params.Job).Get(ctx, nil)
	if err != nil {
		logger.Error("Notification delivery failed.", "jobID", params.Job.ID, "error", err)
		return err
	}

	logger.Info("Notification delivered.", "jobID", params.Job.ID)
	return nil
}
