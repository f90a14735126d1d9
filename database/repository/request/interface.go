package requestRepo

import (
	"context"

	"lifedrop/models"
)

// RequestRepository defines methods for blood request data access.
type RequestRepository interface {
	Create(ctx context.Context, req *models.BloodRequest) error
	GetByID(ctx context.Context, id string) (*models.BloodRequest, error)
	// UpdateStatus moves a request from `from` to `to`. It fails with
	// ErrStatusChanged when the stored status is no longer `from`.
	UpdateStatus(ctx context.Context, id string, from, to models.RequestStatus) error
	// Delete removes a request that never got its first ledger block.
	Delete(ctx context.Context, id string) error
	ListByRequester(ctx context.Context, requesterID string) ([]models.BloodRequest, error)
}
