package alertRepo

import (
	"context"

	"lifedrop/models"
)

// AlertRepository defines methods for donor alert data access.
type AlertRepository interface {
	// CreateIfAbsent inserts alert unless one already exists for the same
	// donor and request. It returns the stored alert and whether it is new.
	CreateIfAbsent(ctx context.Context, alert *models.Alert) (*models.Alert, bool, error)
	GetByID(ctx context.Context, id string) (*models.Alert, error)
	UpdateStatus(ctx context.Context, id string, status models.AlertStatus, bagID string) error
	ListByDonor(ctx context.Context, donorID string) ([]models.Alert, error)
	CompleteByRequest(ctx context.Context, requestID string) error
}
