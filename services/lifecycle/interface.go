package lifecycle

import (
	"context"

	"lifedrop/models"
)

// Actor is the authenticated caller a transition runs for. Non-admin actors
// may only touch their own requests (requesters) or alerts (donors).
type Actor struct {
	Subject string
	Admin   bool
}

func (a Actor) owns(id string) bool {
	return a.Admin || (a.Subject != "" && a.Subject == id)
}

// LifecycleService drives a blood request from creation to completion and
// records every step on the ledger.
type LifecycleService interface {
	CreateRequest(ctx context.Context, input models.CreateRequestInput) (*models.BloodRequest, error)
	GetRequest(ctx context.Context, actor Actor, requestID string) (*models.BloodRequest, error)
	SendAlert(ctx context.Context, actor Actor, requestID, donorID string) (*models.Alert, bool, error)
	Respond(ctx context.Context, actor Actor, alertID string, decision models.AlertStatus) (*models.Alert, error)
	RecordDonation(ctx context.Context, actor Actor, alertID, bagID string) (*models.Alert, error)
	CompleteRequest(ctx context.Context, actor Actor, requestID string) (*models.BloodRequest, error)
	ListRequests(ctx context.Context, requesterID string) ([]models.BloodRequest, error)
}
