package ledgerRepo

import (
	"context"
	"errors"
	"fmt"

	"lifedrop/database"
	"lifedrop/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoLedgerRepo struct {
	coll *mongo.Collection
}

// NewMongoLedgerRepo returns a LedgerRepository on the "blockchain_ledger"
// collection. The unique index on "index" turns racing appends into
// ErrIndexConflict instead of forked chains.
func NewMongoLedgerRepo() (LedgerRepository, error) {
	repo := &mongoLedgerRepo{coll: database.Database().Collection("blockchain_ledger")}
	if err := repo.ensureIndexes(); err != nil {
		return nil, err
	}
	return repo, nil
}

func (r *mongoLedgerRepo) ensureIndexes() error {
	ctx, cancel := database.WithTimeout(context.Background())
	defer cancel()

	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "index", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "request_id", Value: 1}, {Key: "index", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create ledger indexes: %w", err)
	}
	return nil
}

func (r *mongoLedgerRepo) LastBlock(ctx context.Context) (*models.LedgerBlock, error) {
	ctx, cancel := database.WithTimeout(ctx)
	defer cancel()

	opts := options.FindOne().SetSort(bson.D{{Key: "index", Value: -1}})
	var block models.LedgerBlock
	err := r.coll.FindOne(ctx, bson.M{}, opts).Decode(&block)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read ledger tip: %w", err)
	}
	return &block, nil
}

func (r *mongoLedgerRepo) Append(ctx context.Context, block models.LedgerBlock) error {
	ctx, cancel := database.WithTimeout(ctx)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, block); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("block %d: %w", block.Index, ErrIndexConflict)
		}
		return fmt.Errorf("failed to append block %d: %w", block.Index, err)
	}
	return nil
}

func (r *mongoLedgerRepo) find(ctx context.Context, filter bson.M) ([]models.LedgerBlock, error) {
	ctx, cancel := database.WithTimeout(ctx)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "index", Value: 1}})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query ledger: %w", err)
	}
	defer cursor.Close(ctx)

	blocks := []models.LedgerBlock{}
	if err := cursor.All(ctx, &blocks); err != nil {
		return nil, fmt.Errorf("failed to decode ledger blocks: %w", err)
	}
	return blocks, nil
}

func (r *mongoLedgerRepo) ByRequest(ctx context.Context, requestID string) ([]models.LedgerBlock, error) {
	return r.find(ctx, bson.M{"request_id": requestID})
}

func (r *mongoLedgerRepo) All(ctx context.Context) ([]models.LedgerBlock, error) {
	return r.find(ctx, bson.M{})
}
