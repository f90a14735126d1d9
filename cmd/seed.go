package cmd

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"lifedrop/database"
	donorRepo "lifedrop/database/repository/donor"
	"lifedrop/models"
	"lifedrop/utils"

	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type seedOptions struct {
	count    int
	lat, lng float64
	radiusKm float64
	password string
	reset    bool
}

var seedOpts seedOptions

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Fill the donors collection with sample donors around a point",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		database.InitDB()
		defer closeDB()
		return seedDonors(cmd.Context(), donorRepo.NewMongoDonorRepo(), seedOpts)
	},
}

func init() {
	f := seedCmd.Flags()
	f.IntVar(&seedOpts.count, "count", 40, "number of donors to create")
	f.Float64Var(&seedOpts.lat, "lat", 13.0827, "latitude of the centre point")
	f.Float64Var(&seedOpts.lng, "lng", 80.2707, "longitude of the centre point")
	f.Float64Var(&seedOpts.radiusKm, "radius", 40, "furthest donor distance in km")
	f.StringVar(&seedOpts.password, "password", "$Password1234", "login password given to every sample donor")
	f.BoolVar(&seedOpts.reset, "reset", false, "delete existing donors first")
}

func closeDB() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = database.CloseDB(ctx)
}

// sampleDonors spreads donors linearly from radiusKm down to the centre at
// random bearings. Every fourth donor is still resting from a recent donation.
func sampleDonors(opts seedOptions, passwordHash string, rng *rand.Rand, now time.Time) []models.Donor {
	donors := make([]models.Donor, 0, opts.count)
	spacing := 0.0
	if opts.count > 1 {
		spacing = (opts.radiusKm - 0.1) / float64(opts.count-1)
	}
	for i := 0; i < opts.count; i++ {
		distanceKm := opts.radiusKm - spacing*float64(i)
		angle := rng.Float64() * 2 * math.Pi
		// 1 degree of latitude is about 111 km; longitude shrinks with cos(lat).
		dLat := distanceKm / 111.0 * math.Sin(angle)
		dLng := distanceKm / (111.0 * math.Cos(opts.lat*math.Pi/180)) * math.Cos(angle)

		d := models.Donor{
			ID:           fmt.Sprintf("donor-%03d", i+1),
			FullName:     fmt.Sprintf("Sample Donor %d", i+1),
			Phone:        fmt.Sprintf("90000%05d", i+1),
			Email:        fmt.Sprintf("donor_%d@example.com", i+1),
			BloodGroup:   models.BloodTypes[rng.Intn(len(models.BloodTypes))],
			Lat:          opts.lat + dLat,
			Lng:          opts.lng + dLng,
			HealthScore:  float64(60 + rng.Intn(41)),
			IsAvailable:  true,
			PasswordHash: passwordHash,
			CreatedAt:    now,
		}
		if i%4 == 3 {
			last := now.Add(-time.Duration(rng.Intn(120)) * 24 * time.Hour)
			d.LastDonationDate = &last
			d.DonationCount = 1 + rng.Intn(5)
		}
		donors = append(donors, d)
	}
	return donors
}

func seedDonors(ctx context.Context, repo donorRepo.DonorRepository, opts seedOptions) error {
	logger := utils.GetLogger()
	if opts.count <= 0 {
		return fmt.Errorf("count must be positive")
	}

	if opts.reset {
		if _, err := database.Database().Collection("donors").DeleteMany(ctx, bson.M{}); err != nil {
			return fmt.Errorf("failed to clear donors collection: %w", err)
		}
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(opts.password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	donors := sampleDonors(opts, string(hashed), rng, time.Now().UTC())
	for i := range donors {
		if err := repo.Create(ctx, &donors[i]); err != nil {
			return err
		}
	}
	logger.Info("sample donors inserted", zap.Int("count", len(donors)))
	return nil
}
