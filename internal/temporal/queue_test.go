package temporal_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	enumspb "go.temporal.io/api/enums/v1"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/mocks"

	"github.com/stanstork/notifications/internal/config"
	"github.com/stanstork/notifications/internal/events"
	"github.com/stanstork/notifications/internal/models"
	"github.com/stanstork/notifications/internal/notification"
	"github.com/stanstork/notifications/internal/temporal"
)

func testJob() notification.Job {
	return notification.NewJob("d-1", models.Recipient{UserID: "u1"}, models.ChannelInApp,
		events.IdentityVerificationReviewStarted{}, nil)
}

func TestJobQueueStartsOneWorkflowPerJob(t *testing.T) {
	c := &mocks.Client{}
	c.On("ExecuteWorkflow", mock.Anything,
		mock.MatchedBy(func(opts client.StartWorkflowOptions) bool {
			return opts.ID == "notification-d-1:u1:in_app" &&
				opts.TaskQueue == "custom" &&
				opts.WorkflowIDReusePolicy == enumspb.WORKFLOW_ID_REUSE_POLICY_REJECT_DUPLICATE
		}),
		temporal.DeliverWorkflowName,
		mock.MatchedBy(func(p temporal.DeliveryParams) bool {
			return p.Job.ID == "d-1:u1:in_app" && p.ActivityTimeout == 30*time.Second && p.Retry.MaximumAttempts == 4
		}),
	).Return(&mocks.WorkflowRun{}, nil).Once()

	q := temporal.NewJobQueue(c, config.TemporalConfig{
		TaskQueue:       "custom",
		ActivityTimeout: 30 * time.Second,
		Retry:           config.RetryConfig{MaximumAttempts: 4},
	})
	require.NoError(t, q.Enqueue(context.Background(), testJob()))
	c.AssertExpectations(t)
}

func TestJobQueueTreatsDuplicateAsEnqueued(t *testing.T) {
	c := &mocks.Client{}
	c.On("ExecuteWorkflow", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, serviceerror.NewWorkflowExecutionAlreadyStarted("already started", "", "")).Once()

	q := temporal.NewJobQueue(c, config.TemporalConfig{})
	assert.NoError(t, q.Enqueue(context.Background(), testJob()))
}

func TestJobQueuePropagatesOtherErrors(t *testing.T) {
	c := &mocks.Client{}
	c.On("ExecuteWorkflow", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, serviceerror.NewUnavailable("frontend down")).Once()

	q := temporal.NewJobQueue(c, config.TemporalConfig{})
	assert.Error(t, q.Enqueue(context.Background(), testJob()))
}

func TestRetryPolicyFromConfig(t *testing.T) {
	p := temporal.RetryPolicy(config.RetryConfig{
		InitialInterval:    2 * time.Second,
		BackoffCoefficient: 1.5,
		MaximumInterval:    time.Minute,
		MaximumAttempts:    7,
	})
	assert.Equal(t, 2*time.Second, p.InitialInterval)
	assert.Equal(t, 1.5, p.BackoffCoefficient)
	assert.Equal(t, time.Minute, p.MaximumInterval)
	assert.Equal(t, int32(7), p.MaximumAttempts)
	assert.Contains(t, p.NonRetryableErrorTypes, temporal.FatalErrorType)
}
