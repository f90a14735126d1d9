package ledger

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	ledgerRepo "lifedrop/database/repository/ledger"
	"lifedrop/models"
	"lifedrop/utils"

	"go.uber.org/zap"
)

const defaultMaxAttempts = 5

// DefaultLedgerService implements LedgerService on a LedgerRepository.
//
// Appends within one process are serialized by mu, so reading the tip and
// writing the next block cannot interleave. Writers in other processes are
// caught by the repository's unique index and retried from a fresh tip.
type DefaultLedgerService struct {
	Repo        ledgerRepo.LedgerRepository
	Logger      *zap.Logger
	Now         func() time.Time
	MaxAttempts int

	mu sync.Mutex
}

func (s *DefaultLedgerService) logger() *zap.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return utils.GetLogger()
}

func (s *DefaultLedgerService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *DefaultLedgerService) maxAttempts() int {
	if s.MaxAttempts > 0 {
		return s.MaxAttempts
	}
	return defaultMaxAttempts
}

func (s *DefaultLedgerService) AppendEvent(ctx context.Context, requestID, event string, payload models.EventPayload) (*models.LedgerBlock, error) {
	if !models.ValidID(requestID) {
		return nil, utils.NewValidationError("malformed request id %q", requestID)
	}
	if strings.TrimSpace(event) == "" {
		return nil, utils.NewValidationError("event label is required")
	}
	if err := payload.Validate(); err != nil {
		return nil, utils.NewValidationError("invalid event payload: %v", err)
	}
	data, err := EncodePayload(payload)
	if err != nil {
		return nil, utils.NewValidationError("invalid event payload: %v", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for attempt := 1; ; attempt++ {
		last, err := s.Repo.LastBlock(ctx)
		if err != nil {
			return nil, utils.NewStoreUnavailableError(err, "failed to read ledger tip")
		}

		index, previousHash := int64(1), models.GenesisHash
		if last != nil {
			index, previousHash = last.Index+1, last.CurrentHash
		}
		// Stores keep millisecond precision; hash what will be read back.
		ts := s.now().UTC().Truncate(time.Millisecond)

		block := models.LedgerBlock{
			Index:        index,
			RequestID:    requestID,
			Event:        event,
			Data:         data,
			PreviousHash: previousHash,
			CurrentHash:  ComputeHash(index, previousHash, FormatTimestamp(ts), data),
			Timestamp:    ts,
		}

		err = s.Repo.Append(ctx, block)
		if err == nil {
			s.logger().Info("ledger block appended",
				zap.Int64("index", block.Index),
				zap.String("requestID", requestID),
				zap.String("event", event),
				zap.String("hash", block.CurrentHash))
			return &block, nil
		}
		if errors.Is(err, ledgerRepo.ErrIndexConflict) && attempt < s.maxAttempts() {
			s.logger().Warn("ledger index taken by another writer, retrying",
				zap.Int64("index", index), zap.Int("attempt", attempt))
			continue
		}
		return nil, utils.NewStoreUnavailableError(err, "failed to append ledger block")
	}
}

func (s *DefaultLedgerService) GetHistory(ctx context.Context, requestID string) ([]models.LedgerBlock, error) {
	if !models.ValidID(requestID) {
		return nil, utils.NewValidationError("malformed request id %q", requestID)
	}
	blocks, err := s.Repo.ByRequest(ctx, requestID)
	if err != nil {
		return nil, utils.NewStoreUnavailableError(err, "failed to read ledger history")
	}
	if blocks == nil {
		blocks = []models.LedgerBlock{}
	}
	return blocks, nil
}

func (s *DefaultLedgerService) Verify(ctx context.Context) (*models.ChainReport, error) {
	blocks, err := s.Repo.All(ctx)
	if err != nil {
		return nil, utils.NewStoreUnavailableError(err, "failed to read ledger")
	}
	report := VerifyChain(blocks)
	if !report.Valid {
		s.logger().Error("ledger chain verification failed",
			zap.Int64("index", report.BrokenIndex), zap.String("reason", report.Reason))
	}
	return &report, nil
}
