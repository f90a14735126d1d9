package notification

import (
	"context"
	"fmt"

	"lifedrop/models"
	"lifedrop/services/tasks"

	"github.com/hibiken/asynq"
)

// AsynqDispatcher enqueues pushes for the background worker.
type AsynqDispatcher struct {
	Client *asynq.Client
}

func (d *AsynqDispatcher) Enqueue(ctx context.Context, p models.PushPayload) error {
	task, opts, err := tasks.NewPushTask(p)
	if err != nil {
		return fmt.Errorf("failed to build push task: %w", err)
	}
	if _, err := d.Client.EnqueueContext(ctx, task, opts...); err != nil {
		return fmt.Errorf("failed to enqueue push for donor %s: %w", p.DonorID, err)
	}
	return nil
}

// DirectDispatcher sends synchronously. It serves setups without a queue,
// such as the CLI.
type DirectDispatcher struct {
	Notifier Notifier
}

func (d *DirectDispatcher) Enqueue(ctx context.Context, p models.PushPayload) error {
	return d.Notifier.Push(ctx, p)
}
