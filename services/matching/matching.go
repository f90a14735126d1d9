package matching

import (
	"context"
	"errors"
	"time"

	"lifedrop/database"
	donorRepo "lifedrop/database/repository/donor"
	requestRepo "lifedrop/database/repository/request"
	"lifedrop/models"
	"lifedrop/utils"

	"go.uber.org/zap"
)

// DefaultMatchingService implements MatchingService. Cache is optional; when
// set, results are kept for CacheTTL or until donor state changes.
type DefaultMatchingService struct {
	RequestRepo requestRepo.RequestRepository
	DonorRepo   donorRepo.DonorRepository
	Cache       MatchCache
	CacheTTL    time.Duration
	Logger      *zap.Logger
	Now         func() time.Time
}

func (s *DefaultMatchingService) logger() *zap.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return utils.GetLogger()
}

func (s *DefaultMatchingService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// FindMatches resolves the request, pulls the eligible donor pool and ranks it.
// It never writes donor or request state.
func (s *DefaultMatchingService) FindMatches(ctx context.Context, requestID string) (*models.MatchResponse, error) {
	if !models.ValidID(requestID) {
		return nil, utils.NewValidationError("malformed request id %q", requestID)
	}

	// The generation is read before the donor pool so that a list computed
	// across a donor change is stored under the stale generation.
	useCache := s.Cache != nil && s.CacheTTL > 0
	var generation int64
	if useCache {
		gen, err := s.Cache.Generation(ctx)
		if err != nil {
			s.logger().Warn("match cache unavailable", zap.String("requestID", requestID), zap.Error(err))
			useCache = false
		} else {
			generation = gen
		}
	}
	if useCache {
		cached, ok, err := s.Cache.Get(ctx, generation, requestID)
		if err != nil {
			s.logger().Warn("match cache read failed", zap.String("requestID", requestID), zap.Error(err))
		} else if ok {
			return cached, nil
		}
	}

	req, err := s.RequestRepo.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, utils.NewNotFoundError("blood request %s not found", requestID)
		}
		return nil, utils.NewStoreUnavailableError(err, "failed to load blood request")
	}

	now := s.now()
	types := models.CompatibleDonorTypes(req.BloodGroup)
	donors, err := s.DonorRepo.FindEligible(ctx, types, models.CooldownCutoff(now))
	if err != nil {
		return nil, utils.NewStoreUnavailableError(err, "failed to query donor pool")
	}

	resp := &models.MatchResponse{
		Request: models.RequestSummary{Lat: req.Lat, Lng: req.Lng, Blood: req.BloodGroup},
		Matches: Rank(req, donors, now),
	}
	s.logger().Debug("donor matches computed",
		zap.String("requestID", requestID),
		zap.String("blood", string(req.BloodGroup)),
		zap.Int("candidates", len(donors)),
		zap.Int("matches", len(resp.Matches)))

	if useCache {
		if err := s.Cache.Set(ctx, generation, requestID, resp, s.CacheTTL); err != nil {
			s.logger().Warn("match cache write failed", zap.String("requestID", requestID), zap.Error(err))
		}
	}
	return resp, nil
}
