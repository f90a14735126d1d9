package donorRepo

import (
	"context"
	"fmt"
	"time"

	"lifedrop/database"
	"lifedrop/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoDonorRepo implements DonorRepository using MongoDB.
type MongoDonorRepo struct {
	coll *mongo.Collection
}

// NewMongoDonorRepo creates a DonorRepository on the "donors" collection.
func NewMongoDonorRepo() DonorRepository {
	repo := &MongoDonorRepo{coll: database.Database().Collection("donors")}
	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create donor indexes: %v\n", err)
	}
	return repo
}

func (r *MongoDonorRepo) ensureIndexes() error {
	ctx, cancel := database.WithTimeout(context.Background())
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "unique_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true).SetSparse(true)},
		// Serves the eligibility query of the matcher.
		{Keys: bson.D{
			{Key: "blood_group", Value: 1},
			{Key: "is_available", Value: 1},
			{Key: "last_donation_date", Value: 1},
		}},
		{Keys: bson.D{{Key: "cooldown_email_sent", Value: 1}, {Key: "last_donation_date", Value: 1}}},
	}
	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

func (r *MongoDonorRepo) Create(ctx context.Context, donor *models.Donor) error {
	ctx, cancel := database.WithTimeout(ctx)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, donor); err != nil {
		return fmt.Errorf("failed to insert donor %s: %w", donor.ID, err)
	}
	return nil
}

func (r *MongoDonorRepo) GetByID(ctx context.Context, id string) (*models.Donor, error) {
	ctx, cancel := database.WithTimeout(ctx)
	defer cancel()

	var donor models.Donor
	if err := r.coll.FindOne(ctx, bson.M{"unique_id": id}).Decode(&donor); err != nil {
		return nil, fmt.Errorf("failed to fetch donor %s: %w", id, database.NotFoundOr(err))
	}
	return &donor, nil
}

func (r *MongoDonorRepo) FindEligible(ctx context.Context, types []models.BloodType, cutoff time.Time) ([]models.Donor, error) {
	ctx, cancel := database.WithTimeout(ctx)
	defer cancel()

	filter := bson.M{
		"blood_group":  bson.M{"$in": models.BloodTypeStrings(types)},
		"is_available": true,
		"$or": bson.A{
			bson.M{"last_donation_date": nil},
			bson.M{"last_donation_date": bson.M{"$lte": cutoff}},
		},
	}
	cursor, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to query eligible donors: %w", err)
	}
	defer cursor.Close(ctx)

	var donors []models.Donor
	if err := cursor.All(ctx, &donors); err != nil {
		return nil, fmt.Errorf("failed to decode donors: %w", err)
	}
	return donors, nil
}

func (r *MongoDonorRepo) updateOne(ctx context.Context, id string, update bson.M) error {
	ctx, cancel := database.WithTimeout(ctx)
	defer cancel()

	result, err := r.coll.UpdateOne(ctx, bson.M{"unique_id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to update donor %s: %w", id, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("donor %s: %w", id, database.ErrNotFound)
	}
	return nil
}

func (r *MongoDonorRepo) SetAvailability(ctx context.Context, id string, available bool) error {
	return r.updateOne(ctx, id, bson.M{"$set": bson.M{"is_available": available}})
}

func (r *MongoDonorRepo) UpdateFCMToken(ctx context.Context, id, token string) error {
	return r.updateOne(ctx, id, bson.M{"$set": bson.M{"fcm_token": token}})
}

func (r *MongoDonorRepo) RecordDonation(ctx context.Context, id string, at time.Time) error {
	return r.updateOne(ctx, id, bson.M{
		"$set": bson.M{
			"last_donation_date":  at,
			"cooldown_email_sent": false,
		},
		"$inc": bson.M{"donation_count": 1},
	})
}

func (r *MongoDonorRepo) FindCooldownComplete(ctx context.Context, cutoff time.Time) ([]models.Donor, error) {
	ctx, cancel := database.WithTimeout(ctx)
	defer cancel()

	filter := bson.M{
		"last_donation_date":  bson.M{"$ne": nil, "$lte": cutoff},
		"cooldown_email_sent": false,
	}
	cursor, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to query rested donors: %w", err)
	}
	defer cursor.Close(ctx)

	var donors []models.Donor
	if err := cursor.All(ctx, &donors); err != nil {
		return nil, fmt.Errorf("failed to decode donors: %w", err)
	}
	return donors, nil
}

func (r *MongoDonorRepo) MarkCooldownNotified(ctx context.Context, id string) error {
	return r.updateOne(ctx, id, bson.M{"$set": bson.M{"cooldown_email_sent": true}})
}
