package donorRepo

import (
	"context"
	"time"

	"lifedrop/models"
)

// DonorRepository defines methods for donor data access.
type DonorRepository interface {
	// Create inserts a new donor.
	Create(ctx context.Context, donor *models.Donor) error
	// GetByID retrieves a donor by unique id.
	GetByID(ctx context.Context, id string) (*models.Donor, error)
	// FindEligible returns available donors of the given groups whose last
	// donation is unset or not after cutoff.
	FindEligible(ctx context.Context, types []models.BloodType, cutoff time.Time) ([]models.Donor, error)
	// SetAvailability stores the donor's availability flag.
	SetAvailability(ctx context.Context, id string, available bool) error
	// UpdateFCMToken stores the push token of a donor's device.
	UpdateFCMToken(ctx context.Context, id, token string) error
	// RecordDonation stamps a donation at `at`, bumps the donation count and
	// re-arms the cooldown notification.
	RecordDonation(ctx context.Context, id string, at time.Time) error
	// FindCooldownComplete returns donors whose last donation is at or before
	// cutoff and who have not been told they can donate again.
	FindCooldownComplete(ctx context.Context, cutoff time.Time) ([]models.Donor, error)
	// MarkCooldownNotified records that the cooldown-complete alert went out.
	MarkCooldownNotified(ctx context.Context, id string) error
}
