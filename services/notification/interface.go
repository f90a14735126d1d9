package notification

import (
	"context"

	"lifedrop/models"
)

// Notifier delivers a push to one device.
type Notifier interface {
	Push(ctx context.Context, payload models.PushPayload) error
}

// Dispatcher hands a push to the background queue. Callers treat delivery
// as fire-and-forget.
type Dispatcher interface {
	Enqueue(ctx context.Context, payload models.PushPayload) error
}
