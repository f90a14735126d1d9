package ledger

import (
	"context"

	"lifedrop/models"
)

// LedgerService appends lifecycle events to the global hash chain and reads
// them back per request.
type LedgerService interface {
	// AppendEvent links a new block for requestID onto the chain tip.
	AppendEvent(ctx context.Context, requestID, event string, payload models.EventPayload) (*models.LedgerBlock, error)
	// GetHistory returns the request's blocks in append order.
	GetHistory(ctx context.Context, requestID string) ([]models.LedgerBlock, error)
	// Verify recomputes every hash and link of the chain.
	Verify(ctx context.Context) (*models.ChainReport, error)
}
