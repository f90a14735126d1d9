package ledgerRepo

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"lifedrop/models"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/storage"
	"github.com/syndtr/goleveldb/leveldb/util"
)

// Key layout:
//
//	block:<index, 20 digits>             -> block JSON
//	req:<request id>:<index, 20 digits>  -> empty, secondary index by request
const (
	blockPrefix   = "block:"
	requestPrefix = "req:"
)

// LevelDBLedgerRepo stores the chain in an embedded LevelDB. It is used when
// LEDGER_BACKEND=leveldb and in tests.
type LevelDBLedgerRepo struct {
	db *leveldb.DB
	mu sync.Mutex
}

// NewLevelDBLedgerRepo opens (or creates) a ledger database at path.
func NewLevelDBLedgerRepo(path string) (*LevelDBLedgerRepo, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger db at %s: %w", path, err)
	}
	return &LevelDBLedgerRepo{db: db}, nil
}

// NewMemLevelDBLedgerRepo returns a ledger backed by in-memory storage.
func NewMemLevelDBLedgerRepo() (*LevelDBLedgerRepo, error) {
	db, err := leveldb.Open(storage.NewMemStorage(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory ledger db: %w", err)
	}
	return &LevelDBLedgerRepo{db: db}, nil
}

// Close releases the underlying database.
func (r *LevelDBLedgerRepo) Close() error {
	return r.db.Close()
}

func blockKey(index int64) []byte {
	return []byte(fmt.Sprintf("%s%020d", blockPrefix, index))
}

func requestKey(requestID string, index int64) []byte {
	return []byte(fmt.Sprintf("%s%s:%020d", requestPrefix, requestID, index))
}

func (r *LevelDBLedgerRepo) LastBlock(ctx context.Context) (*models.LedgerBlock, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	iter := r.db.NewIterator(util.BytesPrefix([]byte(blockPrefix)), nil)
	defer iter.Release()

	if !iter.Last() {
		return nil, iter.Error()
	}
	var block models.LedgerBlock
	if err := json.Unmarshal(iter.Value(), &block); err != nil {
		return nil, fmt.Errorf("failed to decode ledger tip: %w", err)
	}
	return &block, nil
}

func (r *LevelDBLedgerRepo) Append(ctx context.Context, block models.LedgerBlock) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(block)
	if err != nil {
		return fmt.Errorf("failed to encode block %d: %w", block.Index, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := blockKey(block.Index)
	exists, err := r.db.Has(key, nil)
	if err != nil {
		return fmt.Errorf("failed to check block %d: %w", block.Index, err)
	}
	if exists {
		return fmt.Errorf("block %d: %w", block.Index, ErrIndexConflict)
	}

	batch := new(leveldb.Batch)
	batch.Put(key, data)
	batch.Put(requestKey(block.RequestID, block.Index), nil)
	if err := r.db.Write(batch, &opt.WriteOptions{Sync: true}); err != nil {
		return fmt.Errorf("failed to append block %d: %w", block.Index, err)
	}
	return nil
}

func (r *LevelDBLedgerRepo) ByRequest(ctx context.Context, requestID string) ([]models.LedgerBlock, error) {
	iter := r.db.NewIterator(util.BytesPrefix([]byte(requestPrefix+requestID+":")), nil)
	defer iter.Release()

	blocks := []models.LedgerBlock{}
	for iter.Next() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		key := iter.Key()
		indexPart := key[len(key)-20:]
		data, err := r.db.Get(append([]byte(blockPrefix), indexPart...), nil)
		if err != nil {
			return nil, fmt.Errorf("failed to load block %s: %w", indexPart, err)
		}
		var block models.LedgerBlock
		if err := json.Unmarshal(data, &block); err != nil {
			return nil, fmt.Errorf("failed to decode block %s: %w", indexPart, err)
		}
		blocks = append(blocks, block)
	}
	return blocks, iter.Error()
}

func (r *LevelDBLedgerRepo) All(ctx context.Context) ([]models.LedgerBlock, error) {
	iter := r.db.NewIterator(util.BytesPrefix([]byte(blockPrefix)), nil)
	defer iter.Release()

	blocks := []models.LedgerBlock{}
	for iter.Next() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var block models.LedgerBlock
		if err := json.Unmarshal(iter.Value(), &block); err != nil {
			return nil, fmt.Errorf("failed to decode block: %w", err)
		}
		blocks = append(blocks, block)
	}
	return blocks, iter.Error()
}
