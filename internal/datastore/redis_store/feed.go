package redis_store

import (
	"context"
	"time"

	"pawtrait/internal/models"

	"github.com/redis/go-redis/v9"
	"github.com/vmihailenco/msgpack/v5"
)

const (
	feedKey    = "activity:feed"
	feedMaxLen = 500
)

// FeedSinkRedis keeps a capped, recency-ordered activity feed in a redis
// list. All writes are best-effort; readers tolerate a short feed.
type FeedSinkRedis struct {
	client redis.UniversalClient
}

func NewFeedSinkRedis(client redis.UniversalClient) *FeedSinkRedis {
	return &FeedSinkRedis{client: client}
}

func (s *FeedSinkRedis) Append(ctx context.Context, activity *models.Activity) error {
	if activity.CreatedAt.IsZero() {
		activity.CreatedAt = time.Now().UTC()
	}

	payload, err := msgpack.Marshal(activity)
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.LPush(ctx, feedKey, payload)
	pipe.LTrim(ctx, feedKey, 0, feedMaxLen-1)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *FeedSinkRedis) Recent(ctx context.Context, limit int) ([]*models.Activity, error) {
	if limit <= 0 || limit > feedMaxLen {
		limit = feedMaxLen
	}

	payloads, err := s.client.LRange(ctx, feedKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}

	activities := make([]*models.Activity, 0, len(payloads))
	for _, payload := range payloads {
		var activity models.Activity
		if err := msgpack.Unmarshal([]byte(payload), &activity); err != nil {
			continue
		}
		activities = append(activities, &activity)
	}

	return activities, nil
}
