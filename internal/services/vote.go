package services

import (
	"context"
	"log"

	"pawtrait/internal/datastore"
	"pawtrait/internal/interfaces"
	"pawtrait/internal/models"
	"pawtrait/internal/pkg/caching"

	"github.com/go-redis/redis_rate/v10"
	"github.com/samber/do"
	"github.com/uptrace/bun"
)

type ServiceVote struct {
	container *do.Injector
	db        *bun.DB
	cache     caching.Cache
	feed      interfaces.FeedSink
	limiter   interfaces.Limiter
}

func NewServiceVote(container *do.Injector) (*ServiceVote, error) {
	db, err := do.Invoke[*bun.DB](container)
	if err != nil {
		return nil, err
	}

	cache, err := do.Invoke[caching.Cache](container)
	if err != nil {
		return nil, err
	}

	feed, err := do.Invoke[interfaces.FeedSink](container)
	if err != nil {
		return nil, err
	}

	limiter, err := do.Invoke[interfaces.Limiter](container)
	if err != nil {
		return nil, err
	}

	return &ServiceVote{container, db, cache, feed, limiter}, nil
}

// CastVote records an all-time popularity vote. The unique (voter, pet)
// index is the only serialization point: the loser of a concurrent double
// vote gets ErrAlreadyVoted and no counter moves.
func (service *ServiceVote) CastVote(ctx context.Context, voterID, petID int64) error {
	if err := service.limiter.Allow(ctx, LimitKeyVote(voterID), redis_rate.PerMinute(VOTE_RATE_LIMIT_PER_MINUTE)); err != nil {
		return err
	}

	pet, err := datastore.GetPetByID(ctx, service.db, petID)
	if err != nil {
		return err
	}

	inserted, err := datastore.InsertPetVote(ctx, service.db, &models.PetVote{
		VoterID: voterID,
		PetID:   petID,
	})
	if err != nil {
		return err
	}
	if !inserted {
		return ErrAlreadyVoted
	}

	if err := datastore.IncrementPetVoteCount(ctx, service.db, petID); err != nil {
		return err
	}

	//nolint:errcheck
	service.cache.Delete(ctx, DBKeyPet(petID))

	service.appendActivity(ctx, voterID, &petID, models.ACTIVITY_VOTE, map[string]string{
		"pet_name": pet.Name,
	})

	serviceBadge, err := do.Invoke[*ServiceBadge](service.container)
	if err != nil {
		return err
	}
	if err := serviceBadge.EvaluateThresholds(ctx, voterID, &petID); err != nil {
		log.Println("badge evaluation after vote:", err)
	}

	return nil
}

// CastDailyVote records a vote on a daily feature; a separate ledger from
// the all-time votes, one vote per user per feature.
func (service *ServiceVote) CastDailyVote(ctx context.Context, voterID, featureID int64) error {
	if err := service.limiter.Allow(ctx, LimitKeyVote(voterID), redis_rate.PerMinute(VOTE_RATE_LIMIT_PER_MINUTE)); err != nil {
		return err
	}

	feature, err := datastore.GetDailyFeatureByID(ctx, service.db, featureID)
	if err != nil {
		return err
	}

	inserted, err := datastore.InsertDailyVote(ctx, service.db, &models.DailyVote{
		VoterID:        voterID,
		DailyFeatureID: featureID,
	})
	if err != nil {
		return err
	}
	if !inserted {
		return ErrAlreadyVoted
	}

	if err := datastore.IncrementDailyFeatureVoteCount(ctx, service.db, featureID); err != nil {
		return err
	}

	//nolint:errcheck
	service.cache.Delete(ctx, DBKeyDailyFeature(feature.Date))

	service.appendActivity(ctx, voterID, &feature.PetID, models.ACTIVITY_DAILY_VOTE, map[string]string{
		"date": feature.Date,
	})

	return nil
}

func (service *ServiceVote) HasVoted(ctx context.Context, voterID, petID int64) (bool, error) {
	return datastore.HasVotedForPet(ctx, service.db, voterID, petID)
}

func (service *ServiceVote) HasVotedDaily(ctx context.Context, voterID, featureID int64) (bool, error) {
	return datastore.HasVotedForFeature(ctx, service.db, voterID, featureID)
}

func (service *ServiceVote) appendActivity(ctx context.Context, userID int64, petID *int64, activityType string, metadata map[string]string) {
	err := service.feed.Append(ctx, &models.Activity{
		UserID:   userID,
		PetID:    petID,
		Type:     activityType,
		Metadata: metadata,
	})
	if err != nil {
		log.Println("activity feed append:", err)
	}
}
