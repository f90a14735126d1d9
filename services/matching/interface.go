package matching

import (
	"context"

	"lifedrop/models"
)

// MatchingService ranks eligible donors for a blood request.
type MatchingService interface {
	FindMatches(ctx context.Context, requestID string) (*models.MatchResponse, error)
}
