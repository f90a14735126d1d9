package requestRepo

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

// ErrStatusChanged reports a lost race on a conditional status update.
var ErrStatusChanged = errors.New("request status changed concurrently")

type mongoRequestRepo struct {
	coll *mongo.Collection
}

// NewMongoRequestRepo returns a RequestRepository on the "blood_requests" collection.
func NewMongoRequestRepo() RequestRepository {
	repo := &mongoRequestRepo{coll: database.Database().Collection("blood_requests")}
	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create request indexes: %v\n", err)
	}
	return repo
}

func (r *mongoRequestRepo) ensureIndexes() error {
	ctx, cancel := database.WithTimeout(context.Background())
	defer cancel()

	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "requester_id", Value: 1}, {Key: "timestamp", Value: -1}}},
	})
	return err
}

func (r *mongoRequestRepo) Create(ctx context.Context, req *models.BloodRequest) error {
	ctx, cancel := database.WithTimeout(ctx)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, req); err != nil {
		return fmt.Errorf("failed to create blood request: %w", err)
	}
	return nil
}

func (r *mongoRequestRepo) GetByID(ctx context.Context, id string) (*models.BloodRequest, error) {
	ctx, cancel := database.WithTimeout(ctx)
	defer cancel()

	var req models.BloodRequest
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&req); err != nil {
		return nil, fmt.Errorf("failed to fetch blood request %s: %w", id, database.NotFoundOr(err))
	}
	return &req, nil
}

func (r *mongoRequestRepo) UpdateStatus(ctx context.Context, id string, from, to models.RequestStatus) error {
	ctx, cancel := database.WithTimeout(ctx)
	defer cancel()

	result, err := r.coll.UpdateOne(ctx,
		bson.M{"id": id, "status": from},
		bson.M{"$set": bson.M{"status": to}},
	)
	if err != nil {
		return fmt.Errorf("failed to update blood request %s: %w", id, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("blood request %s: %w", id, ErrStatusChanged)
	}
	return nil
}

func (r *mongoRequestRepo) Delete(ctx context.Context, id string) error {
	ctx, cancel := database.WithTimeout(ctx)
	defer cancel()

	if _, err := r.coll.DeleteOne(ctx, bson.M{"id": id}); err != nil {
		return fmt.Errorf("failed to delete blood request %s: %w", id, err)
	}
	return nil
}

func (r *mongoRequestRepo) ListByRequester(ctx context.Context, requesterID string) ([]models.BloodRequest, error) {
	ctx, cancel := database.WithTimeout(ctx)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	cursor, err := r.coll.Find(ctx, bson.M{"requester_id": requesterID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list blood requests: %w", err)
	}
	defer cursor.Close(ctx)

	var reqs []models.BloodRequest
	if err := cursor.All(ctx, &reqs); err != nil {
		return nil, fmt.Errorf("failed to decode blood requests: %w", err)
	}
	return reqs, nil
}
