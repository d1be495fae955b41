package interfaces

import (
	"context"

	"pawtrait/internal/models"

	"github.com/go-redis/redis_rate/v10"
)

type Limiter interface {
	Allow(ctx context.Context, key string, limit redis_rate.Limit) error
}

// FeedSink is the fire-and-forget activity feed. Append failures are the
// sink's problem, never the caller's.
type FeedSink interface {
	Append(ctx context.Context, activity *models.Activity) error
	Recent(ctx context.Context, limit int) ([]*models.Activity, error)
}
