package donor

import (
	"context"
	"errors"
	"strings"
	"time"

	"lifedrop/database"
	alertRepo "lifedrop/database/repository/alert"
	donorRepo "lifedrop/database/repository/donor"
	requestRepo "lifedrop/database/repository/request"
	"lifedrop/models"
	"lifedrop/services/matching"
	"lifedrop/services/notification"
	"lifedrop/utils"

	"go.uber.org/zap"
)

// DefaultDonorService implements DonorService. Matches, when set, is told
// whenever a donor's availability or push token changes.
type DefaultDonorService struct {
	DonorRepo   donorRepo.DonorRepository
	AlertRepo   alertRepo.AlertRepository
	RequestRepo requestRepo.RequestRepository
	Dispatcher  notification.Dispatcher
	Matches     matching.Invalidator
	Logger      *zap.Logger
	Now         func() time.Time
}

func (s *DefaultDonorService) logger() *zap.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return utils.GetLogger()
}

func (s *DefaultDonorService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *DefaultDonorService) invalidateMatches(ctx context.Context, donorID string) {
	if s.Matches == nil {
		return
	}
	if err := s.Matches.Invalidate(ctx); err != nil {
		s.logger().Warn("failed to invalidate cached matches", zap.String("donorID", donorID), zap.Error(err))
	}
}

func storeError(err error, format string, args ...interface{}) error {
	if errors.Is(err, database.ErrNotFound) {
		return utils.NewNotFoundError(format, args...)
	}
	return utils.NewStoreUnavailableError(err, format, args...)
}

func (s *DefaultDonorService) load(ctx context.Context, donorID string) (*models.Donor, error) {
	if !models.ValidID(donorID) {
		return nil, utils.NewValidationError("malformed donor id %q", donorID)
	}
	d, err := s.DonorRepo.GetByID(ctx, donorID)
	if err != nil {
		return nil, storeError(err, "donor %s", donorID)
	}
	return d, nil
}

func (s *DefaultDonorService) ProfileStats(ctx context.Context, donorID string) (*models.DonorStats, error) {
	d, err := s.load(ctx, donorID)
	if err != nil {
		return nil, err
	}
	remaining := d.CooldownDaysRemaining(s.now())
	return &models.DonorStats{
		DonationCount: d.DonationCount,
		IsAvailable:   d.IsAvailable,
		DaysRemaining: remaining,
		IsResting:     remaining > 0,
		FCMToken:      d.FCMToken,
	}, nil
}

// ToggleAvailability flips the donor's availability and returns the new value.
func (s *DefaultDonorService) ToggleAvailability(ctx context.Context, donorID string) (bool, error) {
	d, err := s.load(ctx, donorID)
	if err != nil {
		return false, err
	}
	next := !d.IsAvailable
	if err := s.DonorRepo.SetAvailability(ctx, d.ID, next); err != nil {
		return false, storeError(err, "donor %s", d.ID)
	}
	s.invalidateMatches(ctx, d.ID)
	s.logger().Info("donor availability changed", zap.String("donorID", d.ID), zap.Bool("available", next))
	return next, nil
}

func (s *DefaultDonorService) UpdateFCMToken(ctx context.Context, donorID, token string) error {
	if !models.ValidID(donorID) {
		return utils.NewValidationError("malformed donor id %q", donorID)
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return utils.NewValidationError("fcm token is required")
	}
	if err := s.DonorRepo.UpdateFCMToken(ctx, donorID, token); err != nil {
		return storeError(err, "donor %s", donorID)
	}
	s.invalidateMatches(ctx, donorID)
	return nil
}

// TargetedAlerts lists the donor's alerts joined with their requests. Alerts
// whose request no longer exists are skipped.
func (s *DefaultDonorService) TargetedAlerts(ctx context.Context, donorID string) ([]models.TargetedAlert, error) {
	if !models.ValidID(donorID) {
		return nil, utils.NewValidationError("malformed donor id %q", donorID)
	}
	alerts, err := s.AlertRepo.ListByDonor(ctx, donorID)
	if err != nil {
		return nil, utils.NewStoreUnavailableError(err, "failed to list alerts of donor %s", donorID)
	}

	out := make([]models.TargetedAlert, 0, len(alerts))
	for _, a := range alerts {
		req, err := s.RequestRepo.GetByID(ctx, a.RequestID)
		if errors.Is(err, database.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, utils.NewStoreUnavailableError(err, "failed to load request %s", a.RequestID)
		}
		out = append(out, models.TargetedAlert{
			AlertID:   a.ID,
			RequestID: req.ID,
			Patient:   req.PatientName,
			Hospital:  req.Hospital,
			Blood:     req.BloodGroup,
			Urgency:   req.Urgency,
			Phone:     req.ContactNumber,
			Status:    a.Status,
			Date:      req.Timestamp,
		})
	}
	return out, nil
}

// SweepCooldowns tells every donor whose rest period has ended that they may
// donate again, and returns how many were marked. A donor whose push could
// not be queued stays unmarked and is picked up by the next sweep.
func (s *DefaultDonorService) SweepCooldowns(ctx context.Context) (int, error) {
	donors, err := s.DonorRepo.FindCooldownComplete(ctx, models.CooldownCutoff(s.now()))
	if err != nil {
		return 0, utils.NewStoreUnavailableError(err, "failed to query rested donors")
	}

	marked := 0
	for _, d := range donors {
		if d.FCMToken != "" && s.Dispatcher != nil {
			err := s.Dispatcher.Enqueue(ctx, models.PushPayload{
				Kind:    models.PushCooldownComplete,
				DonorID: d.ID,
				Token:   d.FCMToken,
				Title:   "Welcome Back, Hero!",
				Body:    "Your 90-day recovery period is complete. You can donate again.",
			})
			if err != nil {
				s.logger().Warn("failed to queue cooldown push", zap.String("donorID", d.ID), zap.Error(err))
				continue
			}
		}
		if err := s.DonorRepo.MarkCooldownNotified(ctx, d.ID); err != nil {
			s.logger().Warn("failed to mark donor notified", zap.String("donorID", d.ID), zap.Error(err))
			continue
		}
		marked++
	}

	s.logger().Info("cooldown sweep finished", zap.Int("eligible", len(donors)), zap.Int("marked", marked))
	return marked, nil
}
