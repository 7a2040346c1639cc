package notification

import (
	"fmt"
	"strings"
	"time"

	"github.com/stanstork/notifications/internal/events"
	"github.com/stanstork/notifications/internal/models"
)

const JobVersion = 1

// Job delivers one event to one recipient on one channel. It carries the
// event itself rather than rendered text so execution always renders with
// the current translations and settings.
type Job struct {
	Version     int               `json:"version"`
	ID          string            `json:"id"`
	DispatchID  string            `json:"dispatch_id"`
	Recipient   models.Recipient  `json:"recipient"`
	Channel     models.Channel    `json:"channel"`
	Payload     events.Payload    `json:"payload"`
	TracingData map[string]string `json:"tracing_data,omitempty"`
	EnqueuedAt  time.Time         `json:"enqueued_at"`
}

// JobID is deterministic so that enqueueing the same dispatch twice yields
// the same job identity on the substrate. One dispatch id may fan out to
// many users, so the recipient is part of the identity.
func JobID(dispatchID string, userID models.UserID, channel models.Channel) string {
	return dispatchID + ":" + string(userID) + ":" + string(channel)
}

func NewJob(dispatchID string, recipient models.Recipient, channel models.Channel, e events.Event, tracing map[string]string) Job {
	return Job{
		Version:     JobVersion,
		ID:          JobID(dispatchID, recipient.UserID, channel),
		DispatchID:  dispatchID,
		Recipient:   recipient,
		Channel:     channel,
		Payload:     events.NewPayload(e),
		TracingData: tracing,
		EnqueuedAt:  time.Now().UTC(),
	}
}

// Event returns the job's event or nil for an empty payload.
func (j Job) Event() events.Event {
	return j.Payload.Event
}

func (j Job) Validate() error {
	if strings.TrimSpace(j.ID) == "" {
		return fmt.Errorf("%w: job id is required", ErrInvalidInput)
	}
	if j.Version > JobVersion {
		return fmt.Errorf("%w: job version %d is newer than supported %d", ErrInvalidInput, j.Version, JobVersion)
	}
	if err := j.Recipient.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if err := validChannel(j.Channel); err != nil {
		return err
	}
	if j.Payload.Event == nil {
		return fmt.Errorf("%w: job payload is empty", ErrInvalidInput)
	}
	return j.Payload.Event.Validate()
}
