package temporal

import (
	"time"

	sdktemporal "go.temporal.io/sdk/temporal"

	"github.com/stanstork/notifications/internal/config"
	"github.com/stanstork/notifications/internal/notification"
)

// DefaultTaskQueue is the task queue notification deliveries run on.
const DefaultTaskQueue = "NOTIFICATIONS"

// DeliverWorkflowName is the registered name of the delivery workflow.
const DeliverWorkflowName = "DeliverNotificationWorkflow"

// DeliverWorkflowIDPrefix prefixes the job ID to form the workflow ID.
const DeliverWorkflowIDPrefix = "notification-"

// DefaultActivityTimeout bounds a single delivery attempt.
const DefaultActivityTimeout = time.Minute

// FatalErrorType is the application error type of failures that must not be
// retried.
const FatalErrorType = "NotificationJobFatal"

// DeliveryParams is the workflow input. The retry policy travels with the
// job so that a config change never alters workflows already running.
type DeliveryParams struct {
	Job             notification.Job
	ActivityTimeout time.Duration
	Retry           config.RetryConfig
}

func WorkflowID(jobID string) string {
	return DeliverWorkflowIDPrefix + jobID
}

// RetryPolicy converts the configured backoff into a Temporal retry policy.
// Zero values fall back to the SDK defaults.
func RetryPolicy(cfg config.RetryConfig) *sdktemporal.RetryPolicy {
	return &sdktemporal.RetryPolicy{
		InitialInterval:        cfg.InitialInterval,
		BackoffCoefficient:     cfg.BackoffCoefficient,
		MaximumInterval:        cfg.MaximumInterval,
		MaximumAttempts:        cfg.MaximumAttempts,
		NonRetryableErrorTypes: []string{FatalErrorType},
	}
}
