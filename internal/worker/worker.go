package worker

import (
	"github.com/rs/zerolog"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/client"
	sdkworker "go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	"github.com/stanstork/notifications/internal/temporal"
	"github.com/stanstork/notifications/internal/temporal/activities"
	"github.com/stanstork/notifications/internal/temporal/workflows"
)

// Worker polls the notification task queue and executes delivery jobs.
type Worker struct {
	w      sdkworker.Worker
	queue  string
	logger zerolog.Logger
}

func New(c client.Client, taskQueue string, runner activities.Runner, logger zerolog.Logger) *Worker {
	if taskQueue == "" {
		taskQueue = temporal.DefaultTaskQueue
	}
	w := sdkworker.New(c, taskQueue, sdkworker.Options{})
	Register(w, runner)
	return &Worker{
		w:      w,
		queue:  taskQueue,
		logger: logger.With().Str("component", "temporal_worker").Logger(),
	}
}

// Register adds the delivery workflow and activities to any registry, a real
// worker or a test environment.
func Register(r sdkworker.Registry, runner activities.Runner) {
	r.RegisterWorkflowWithOptions(workflows.DeliverNotificationWorkflow, workflow.RegisterOptions{
		Name: temporal.DeliverWorkflowName,
	})
	r.RegisterActivityWithOptions(&activities.Activities{Runner: runner}, activity.RegisterOptions{})
}

// Start begins polling in the background.
func (w *Worker) Start() error {
	w.logger.Info().Str("task_queue", w.queue).Msg("Starting Temporal worker...")
	return w.w.Start()
}

func (w *Worker) Stop() {
	w.logger.Info().Msg("Stopping Temporal worker...")
	w.w.Stop()
}
