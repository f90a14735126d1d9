package donor

import (
	"context"

	"lifedrop/models"
)

// DonorService covers the donor dashboard and the cooldown sweep.
type DonorService interface {
	ProfileStats(ctx context.Context, donorID string) (*models.DonorStats, error)
	ToggleAvailability(ctx context.Context, donorID string) (bool, error)
	UpdateFCMToken(ctx context.Context, donorID, token string) error
	TargetedAlerts(ctx context.Context, donorID string) ([]models.TargetedAlert, error)
	SweepCooldowns(ctx context.Context) (int, error)
}
