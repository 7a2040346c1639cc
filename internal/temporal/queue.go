package temporal

import (
	"context"
	"errors"
	"time"

	enumspb "go.temporal.io/api/enums/v1"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"

	"github.com/stanstork/notifications/internal/config"
	"github.com/stanstork/notifications/internal/notification"
)

// JobQueue enqueues notification jobs by starting one workflow per job. The
// workflow ID is derived from the job ID, so Temporal rejects duplicates.
type JobQueue struct {
	client          client.Client
	taskQueue       string
	activityTimeout time.Duration
	retry           config.RetryConfig
}

func NewJobQueue(c client.Client, cfg config.TemporalConfig) *JobQueue {
	taskQueue := cfg.TaskQueue
	if taskQueue == "" {
		taskQueue = DefaultTaskQueue
	}
	timeout := cfg.ActivityTimeout
	if timeout <= 0 {
		timeout = DefaultActivityTimeout
	}
	return &JobQueue{
		client:          c,
		taskQueue:       taskQueue,
		activityTimeout: timeout,
		retry:           cfg.Retry,
	}
}

func (q *JobQueue) Enqueue(ctx context.Context, job notification.Job) error {
	opts := client.StartWorkflowOptions{
		ID:                                       WorkflowID(job.ID),
		TaskQueue:                                q.taskQueue,
		WorkflowIDReusePolicy:                    enumspb.WORKFLOW_ID_REUSE_POLICY_REJECT_DUPLICATE,
		WorkflowExecutionErrorWhenAlreadyStarted: true,
		Memo:                                     map[string]interface{}{"dispatch_id": job.DispatchID, "channel": string(job.Channel)},
	}
	params := DeliveryParams{Job: job, ActivityTimeout: q.activityTimeout, Retry: q.retry}

	_, err := q.client.ExecuteWorkflow(ctx, opts, DeliverWorkflowName, params)
	var started *serviceerror.WorkflowExecutionAlreadyStarted
	if errors.As(err, &started) {
		return nil
	}
	return err
}
