package tasks

import (
	"encoding/json"
	"time"

	"lifedrop/models"

	"github.com/hibiken/asynq"
)

const (
	TypePushSend      = "push:send"
	TypeCooldownSweep = "donor:cooldown_sweep"

	QueueAlerts = "alerts"
)

// NewPushTask wraps a push payload for the alert queue.
func NewPushTask(payload models.PushPayload) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypePushSend, b)
	opts := []asynq.Option{
		asynq.Queue(QueueAlerts),
		asynq.MaxRetry(3),
		asynq.Timeout(30 * time.Second),
	}
	return task, opts, nil
}

// NewCooldownSweepTask is the periodic task that tells rested donors they may
// donate again.
func NewCooldownSweepTask() *asynq.Task {
	return asynq.NewTask(TypeCooldownSweep, nil, asynq.MaxRetry(1))
}

// DecodePushPayload reverses NewPushTask.
func DecodePushPayload(task *asynq.Task) (models.PushPayload, error) {
	var p models.PushPayload
	err := json.Unmarshal(task.Payload(), &p)
	return p, err
}
