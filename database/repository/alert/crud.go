package alertRepo

import (
	"context"
	"fmt"

	"lifedrop/database"
	"lifedrop/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoAlertRepo struct {
	coll *mongo.Collection
}

// NewMongoAlertRepo returns an AlertRepository on the "notifications" collection.
func NewMongoAlertRepo() AlertRepository {
	repo := &mongoAlertRepo{coll: database.Database().Collection("notifications")}
	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create alert indexes: %v\n", err)
	}
	return repo
}

func (r *mongoAlertRepo) ensureIndexes() error {
	ctx, cancel := database.WithTimeout(context.Background())
	defer cancel()

	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "donor_id", Value: 1}, {Key: "request_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "request_id", Value: 1}}},
	})
	return err
}

func (r *mongoAlertRepo) CreateIfAbsent(ctx context.Context, alert *models.Alert) (*models.Alert, bool, error) {
	ctx, cancel := database.WithTimeout(ctx)
	defer cancel()

	filter := bson.M{"donor_id": alert.DonorID, "request_id": alert.RequestID}
	update := bson.M{"$setOnInsert": alert}
	result, err := r.coll.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		return nil, false, fmt.Errorf("failed to create alert: %w", err)
	}
	if result.UpsertedCount == 1 {
		return alert, true, nil
	}

	var existing models.Alert
	if err := r.coll.FindOne(ctx, filter).Decode(&existing); err != nil {
		return nil, false, fmt.Errorf("failed to load existing alert: %w", database.NotFoundOr(err))
	}
	return &existing, false, nil
}

func (r *mongoAlertRepo) GetByID(ctx context.Context, id string) (*models.Alert, error) {
	ctx, cancel := database.WithTimeout(ctx)
	defer cancel()

	var alert models.Alert
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&alert); err != nil {
		return nil, fmt.Errorf("failed to fetch alert %s: %w", id, database.NotFoundOr(err))
	}
	return &alert, nil
}

func (r *mongoAlertRepo) UpdateStatus(ctx context.Context, id string, status models.AlertStatus, bagID string) error {
	ctx, cancel := database.WithTimeout(ctx)
	defer cancel()

	set := bson.M{"status": status}
	if bagID != "" {
		set["blood_bag_id"] = bagID
	}
	result, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to update alert %s: %w", id, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("alert %s: %w", id, database.ErrNotFound)
	}
	return nil
}

func (r *mongoAlertRepo) ListByDonor(ctx context.Context, donorID string) ([]models.Alert, error) {
	ctx, cancel := database.WithTimeout(ctx)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.coll.Find(ctx, bson.M{"donor_id": donorID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list alerts: %w", err)
	}
	defer cursor.Close(ctx)

	var alerts []models.Alert
	if err := cursor.All(ctx, &alerts); err != nil {
		return nil, fmt.Errorf("failed to decode alerts: %w", err)
	}
	return alerts, nil
}

func (r *mongoAlertRepo) CompleteByRequest(ctx context.Context, requestID string) error {
	ctx, cancel := database.WithTimeout(ctx)
	defer cancel()

	_, err := r.coll.UpdateMany(ctx,
		bson.M{"request_id": requestID},
		bson.M{"$set": bson.M{"status": models.AlertCompleted}},
	)
	if err != nil {
		return fmt.Errorf("failed to complete alerts for request %s: %w", requestID, err)
	}
	return nil
}
