package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"lifedrop/database"
	alertRepo "lifedrop/database/repository/alert"
	donorRepo "lifedrop/database/repository/donor"
	requestRepo "lifedrop/database/repository/request"
	"lifedrop/models"
	"lifedrop/services/ledger"
	"lifedrop/services/matching"
	"lifedrop/services/notification"
	"lifedrop/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultLifecycleService implements LifecycleService.
//
// A transition first claims the request with a conditional status update,
// then appends its ledger event. If the append fails the claim is released,
// so the ledger never records a step that did not happen and a failed append
// leaves state unchanged. Alert and donor state are written last.
type DefaultLifecycleService struct {
	RequestRepo requestRepo.RequestRepository
	AlertRepo   alertRepo.AlertRepository
	DonorRepo   donorRepo.DonorRepository
	Ledger      ledger.LedgerService
	Dispatcher  notification.Dispatcher
	Matches     matching.Invalidator
	Logger      *zap.Logger
	Now         func() time.Time
	NewID       func() string
}

func (s *DefaultLifecycleService) logger() *zap.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return utils.GetLogger()
}

func (s *DefaultLifecycleService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *DefaultLifecycleService) newID() string {
	if s.NewID != nil {
		return s.NewID()
	}
	return uuid.NewString()
}

// storeError keeps not-found as a client error and hides everything else
// behind store_unavailable.
func storeError(err error, format string, args ...interface{}) error {
	if errors.Is(err, database.ErrNotFound) {
		return utils.NewNotFoundError(format, args...)
	}
	return utils.NewStoreUnavailableError(err, format, args...)
}

func (s *DefaultLifecycleService) loadRequest(ctx context.Context, id string) (*models.BloodRequest, error) {
	if !models.ValidID(id) {
		return nil, utils.NewValidationError("malformed request id %q", id)
	}
	req, err := s.RequestRepo.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "blood request %s", id)
	}
	return req, nil
}

func (s *DefaultLifecycleService) loadAlert(ctx context.Context, id string) (*models.Alert, error) {
	if !models.ValidID(id) {
		return nil, utils.NewValidationError("malformed alert id %q", id)
	}
	alert, err := s.AlertRepo.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "alert %s", id)
	}
	return alert, nil
}

// moveRequest applies a checked request transition. Losing a race to another
// writer surfaces as invalid_transition.
func (s *DefaultLifecycleService) moveRequest(ctx context.Context, req *models.BloodRequest, to models.RequestStatus) error {
	if err := s.RequestRepo.UpdateStatus(ctx, req.ID, req.Status, to); err != nil {
		if errors.Is(err, requestRepo.ErrStatusChanged) {
			return utils.NewTransitionError("request %s changed state concurrently", req.ID)
		}
		return storeError(err, "blood request %s", req.ID)
	}
	req.Status = to
	return nil
}

// claimRequest moves req to `to` ahead of the ledger append. The returned
// release puts the previous status back and is only called when the append
// fails.
func (s *DefaultLifecycleService) claimRequest(ctx context.Context, req *models.BloodRequest, to models.RequestStatus) (func(), error) {
	from := req.Status
	if err := s.moveRequest(ctx, req, to); err != nil {
		return nil, err
	}
	return func() {
		if err := s.RequestRepo.UpdateStatus(context.WithoutCancel(ctx), req.ID, to, from); err != nil {
			s.logger().Error("failed to release request after ledger failure",
				zap.String("requestID", req.ID), zap.String("status", string(to)), zap.Error(err))
			return
		}
		req.Status = from
	}, nil
}

func (s *DefaultLifecycleService) invalidateMatches(ctx context.Context, donorID string) {
	if s.Matches == nil {
		return
	}
	if err := s.Matches.Invalidate(ctx); err != nil {
		s.logger().Warn("failed to invalidate cached matches", zap.String("donorID", donorID), zap.Error(err))
	}
}

func (s *DefaultLifecycleService) stamp() string {
	return s.now().UTC().Format(models.LedgerTimeLayout)
}

func (s *DefaultLifecycleService) CreateRequest(ctx context.Context, input models.CreateRequestInput) (*models.BloodRequest, error) {
	if err := validateCreateInput(input); err != nil {
		return nil, err
	}

	req := &models.BloodRequest{
		ID:            s.newID(),
		RequesterID:   input.RequesterID,
		PatientName:   strings.TrimSpace(input.PatientName),
		ContactNumber: strings.TrimSpace(input.ContactNumber),
		BloodGroup:    input.BloodGroup,
		Units:         input.Units,
		Urgency:       input.Urgency,
		Hospital:      strings.TrimSpace(input.Hospital),
		Lat:           input.Lat,
		Lng:           input.Lng,
		Status:        models.StatusPending,
		Timestamp:     s.now().UTC(),
	}

	if err := s.RequestRepo.Create(ctx, req); err != nil {
		return nil, utils.NewStoreUnavailableError(err, "failed to store blood request")
	}
	if _, err := s.Ledger.AppendEvent(ctx, req.ID, models.EventRequestInitialized, models.EventPayload{
		"patient":  req.PatientName,
		"group":    string(req.BloodGroup),
		"hospital": req.Hospital,
	}); err != nil {
		if derr := s.RequestRepo.Delete(context.WithoutCancel(ctx), req.ID); derr != nil {
			s.logger().Error("failed to remove request after ledger failure", zap.String("requestID", req.ID), zap.Error(derr))
		}
		return nil, err
	}
	s.logger().Info("blood request created",
		zap.String("requestID", req.ID),
		zap.String("bloodGroup", string(req.BloodGroup)),
		zap.Int("urgency", req.Urgency))
	return req, nil
}

// ownedRequest loads a request the actor filed.
func (s *DefaultLifecycleService) ownedRequest(ctx context.Context, actor Actor, requestID string) (*models.BloodRequest, error) {
	req, err := s.loadRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if !actor.owns(req.RequesterID) {
		return nil, utils.NewForbiddenError("blood request %s belongs to another requester", req.ID)
	}
	return req, nil
}

// ownedAlert loads an alert addressed to the actor.
func (s *DefaultLifecycleService) ownedAlert(ctx context.Context, actor Actor, alertID string) (*models.Alert, error) {
	alert, err := s.loadAlert(ctx, alertID)
	if err != nil {
		return nil, err
	}
	if !actor.owns(alert.DonorID) {
		return nil, utils.NewForbiddenError("alert %s belongs to another donor", alert.ID)
	}
	return alert, nil
}

func (s *DefaultLifecycleService) GetRequest(ctx context.Context, actor Actor, requestID string) (*models.BloodRequest, error) {
	return s.ownedRequest(ctx, actor, requestID)
}

// SendAlert asks a donor to serve a request. Repeated calls for the same pair
// return the existing alert with created=false and send nothing.
func (s *DefaultLifecycleService) SendAlert(ctx context.Context, actor Actor, requestID, donorID string) (*models.Alert, bool, error) {
	if !models.ValidID(donorID) {
		return nil, false, utils.NewValidationError("malformed donor id %q", donorID)
	}
	req, err := s.ownedRequest(ctx, actor, requestID)
	if err != nil {
		return nil, false, err
	}
	if req.Status != models.StatusPending && req.Status != models.StatusAccepted {
		return nil, false, utils.NewTransitionError("request %s is %s and takes no more alerts", req.ID, req.Status)
	}
	donor, err := s.DonorRepo.GetByID(ctx, donorID)
	if err != nil {
		return nil, false, storeError(err, "donor %s", donorID)
	}

	alert, created, err := s.AlertRepo.CreateIfAbsent(ctx, &models.Alert{
		ID:        s.newID(),
		DonorID:   donor.ID,
		RequestID: req.ID,
		Status:    models.AlertPending,
		CreatedAt: s.now().UTC(),
	})
	if err != nil {
		return nil, false, utils.NewStoreUnavailableError(err, "failed to store alert")
	}
	if !created {
		return alert, false, nil
	}

	if donor.FCMToken == "" {
		s.logger().Info("donor has no push token, alert stored only", zap.String("donorID", donor.ID))
		return alert, true, nil
	}
	push := models.PushPayload{
		Kind:      models.PushRequestAlert,
		DonorID:   donor.ID,
		RequestID: req.ID,
		Token:     donor.FCMToken,
		Title:     "URGENT BLOOD REQUEST",
		Body:      fmt.Sprintf("Hero! %s needs %s blood at %s.", req.PatientName, req.BloodGroup, req.Hospital),
		Patient:   req.PatientName,
		Blood:     string(req.BloodGroup),
		Hospital:  req.Hospital,
	}
	if s.Dispatcher != nil {
		if err := s.Dispatcher.Enqueue(ctx, push); err != nil {
			s.logger().Warn("failed to queue alert push",
				zap.String("alertID", alert.ID), zap.String("donorID", donor.ID), zap.Error(err))
		}
	}
	return alert, true, nil
}

// Respond records a donor's answer. Accepting moves the request to Accepted,
// declining moves it to Rejected.
func (s *DefaultLifecycleService) Respond(ctx context.Context, actor Actor, alertID string, decision models.AlertStatus) (*models.Alert, error) {
	var target models.RequestStatus
	event := models.EventDonorAccepted
	switch decision {
	case models.AlertAccepted:
		target = models.StatusAccepted
	case models.AlertDeclined:
		target = models.StatusRejected
		event = models.EventDonorDeclined
	default:
		return nil, utils.NewValidationError("decision must be %q or %q", models.AlertAccepted, models.AlertDeclined)
	}

	alert, err := s.ownedAlert(ctx, actor, alertID)
	if err != nil {
		return nil, err
	}
	if alert.Status != models.AlertPending {
		return nil, utils.NewTransitionError("alert %s was already answered (%s)", alert.ID, alert.Status)
	}
	req, err := s.loadRequest(ctx, alert.RequestID)
	if err != nil {
		return nil, err
	}
	if !req.Status.CanTransition(target) {
		return nil, utils.NewTransitionError("request %s cannot move from %s to %s", req.ID, req.Status, target)
	}

	release, err := s.claimRequest(ctx, req, target)
	if err != nil {
		return nil, err
	}
	if _, err := s.Ledger.AppendEvent(ctx, req.ID, event, models.EventPayload{
		"donor_id": alert.DonorID,
		"time":     s.stamp(),
	}); err != nil {
		release()
		return nil, err
	}

	if err := s.AlertRepo.UpdateStatus(ctx, alert.ID, decision, ""); err != nil {
		return nil, storeError(err, "alert %s", alert.ID)
	}
	alert.Status = decision

	s.logger().Info("donor answered alert",
		zap.String("alertID", alert.ID), zap.String("requestID", req.ID), zap.String("decision", string(decision)))
	return alert, nil
}

// RecordDonation marks an accepted alert as donated with the dispatched bag,
// starts the donor's cooldown and puts the request on the way.
func (s *DefaultLifecycleService) RecordDonation(ctx context.Context, actor Actor, alertID, bagID string) (*models.Alert, error) {
	bagID = strings.TrimSpace(bagID)
	if bagID == "" {
		return nil, utils.NewValidationError("blood bag id is required")
	}
	alert, err := s.ownedAlert(ctx, actor, alertID)
	if err != nil {
		return nil, err
	}
	if alert.Status != models.AlertAccepted {
		return nil, utils.NewTransitionError("alert %s is %s, only accepted alerts can donate", alert.ID, alert.Status)
	}
	req, err := s.loadRequest(ctx, alert.RequestID)
	if err != nil {
		return nil, err
	}
	if !req.Status.CanTransition(models.StatusOnTheWay) {
		return nil, utils.NewTransitionError("request %s cannot move from %s to %s", req.ID, req.Status, models.StatusOnTheWay)
	}

	donorName := "Unknown"
	donor, err := s.DonorRepo.GetByID(ctx, alert.DonorID)
	switch {
	case err == nil:
		donorName = donor.FullName
	case errors.Is(err, database.ErrNotFound):
		donor = nil
	default:
		return nil, utils.NewStoreUnavailableError(err, "donor %s", alert.DonorID)
	}

	release, err := s.claimRequest(ctx, req, models.StatusOnTheWay)
	if err != nil {
		return nil, err
	}
	if _, err := s.Ledger.AppendEvent(ctx, req.ID, models.EventBagDispatched, models.EventPayload{
		"bag_id": bagID,
		"donor":  donorName,
	}); err != nil {
		release()
		return nil, err
	}

	if err := s.AlertRepo.UpdateStatus(ctx, alert.ID, models.AlertDonated, bagID); err != nil {
		return nil, storeError(err, "alert %s", alert.ID)
	}
	alert.Status, alert.BloodBagID = models.AlertDonated, bagID

	if donor != nil {
		if err := s.DonorRepo.RecordDonation(ctx, donor.ID, s.now().UTC()); err != nil {
			return nil, storeError(err, "donor %s", donor.ID)
		}
		s.invalidateMatches(ctx, donor.ID)
	}

	s.logger().Info("donation recorded",
		zap.String("alertID", alert.ID), zap.String("requestID", req.ID), zap.String("bagID", bagID))
	return alert, nil
}

// CompleteRequest closes a request whose blood has arrived.
func (s *DefaultLifecycleService) CompleteRequest(ctx context.Context, actor Actor, requestID string) (*models.BloodRequest, error) {
	req, err := s.ownedRequest(ctx, actor, requestID)
	if err != nil {
		return nil, err
	}
	if !req.Status.CanTransition(models.StatusCompleted) {
		return nil, utils.NewTransitionError("request %s cannot move from %s to %s", req.ID, req.Status, models.StatusCompleted)
	}

	release, err := s.claimRequest(ctx, req, models.StatusCompleted)
	if err != nil {
		return nil, err
	}
	if _, err := s.Ledger.AppendEvent(ctx, req.ID, models.EventRequestCompleted, models.EventPayload{
		"status": models.CompletedStatusLabel,
	}); err != nil {
		release()
		return nil, err
	}

	if err := s.AlertRepo.CompleteByRequest(ctx, req.ID); err != nil {
		return nil, utils.NewStoreUnavailableError(err, "failed to close alerts of request %s", req.ID)
	}

	s.logger().Info("blood request completed", zap.String("requestID", req.ID))
	return req, nil
}

// ListRequests returns a requester's requests, newest first.
func (s *DefaultLifecycleService) ListRequests(ctx context.Context, requesterID string) ([]models.BloodRequest, error) {
	if !models.ValidID(requesterID) {
		return nil, utils.NewValidationError("malformed requester id %q", requesterID)
	}
	reqs, err := s.RequestRepo.ListByRequester(ctx, requesterID)
	if err != nil {
		return nil, utils.NewStoreUnavailableError(err, "failed to list requests of %s", requesterID)
	}
	if reqs == nil {
		reqs = []models.BloodRequest{}
	}
	return reqs, nil
}
