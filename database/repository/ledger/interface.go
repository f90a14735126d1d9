package ledgerRepo

import (
	"context"
	"errors"

	"lifedrop/models"
)

// ErrIndexConflict is returned by Append when a block with the same index
// already exists.
var ErrIndexConflict = errors.New("ledger index already taken")

// LedgerRepository persists the global block chain. Blocks are only ever
// appended; there is no update or delete.
type LedgerRepository interface {
	// LastBlock returns the block with the highest index, or nil when the
	// chain is empty.
	LastBlock(ctx context.Context) (*models.LedgerBlock, error)
	// Append stores a new block. It fails with ErrIndexConflict when the index
	// is already taken.
	Append(ctx context.Context, block models.LedgerBlock) error
	// ByRequest returns the blocks of one request in ascending index order.
	ByRequest(ctx context.Context, requestID string) ([]models.LedgerBlock, error)
	// All returns the whole chain in ascending index order.
	All(ctx context.Context) ([]models.LedgerBlock, error)
}
