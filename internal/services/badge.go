package services

import (
	"context"
	"database/sql"
	"errors"

	"pawtrait/internal/datastore"
	"pawtrait/internal/models"
	"pawtrait/internal/pkg/caching"

	"github.com/samber/do"
	"github.com/uptrace/bun"
)

type ServiceBadge struct {
	container *do.Injector
	db        *bun.DB
	cache     caching.Cache
}

func NewServiceBadge(container *do.Injector) (*ServiceBadge, error) {
	db, err := do.Invoke[*bun.DB](container)
	if err != nil {
		return nil, err
	}

	cache, err := do.Invoke[caching.Cache](container)
	if err != nil {
		return nil, err
	}

	return &ServiceBadge{container, db, cache}, nil
}

// EvaluateThresholds checks every catalog badge whose metric can be read
// right now and awards the ones whose threshold is met. User-level metrics
// are read for userID; pet-level metrics are read from the pet's counters
// and awarded to the pet's owner. Counters are monotonic, so there is no
// un-awarding.
func (service *ServiceBadge) EvaluateThresholds(ctx context.Context, userID int64, petID *int64) error {
	votesCast, err := datastore.CountVotesByVoter(ctx, service.db, userID)
	if err != nil {
		return err
	}

	referrals, err := datastore.CountCompletedReferrals(ctx, service.db, userID)
	if err != nil {
		return err
	}

	var pet *models.Pet
	if petID != nil {
		pet, err = datastore.GetPetByID(ctx, service.db, *petID)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return err
		}
	}

	for _, badge := range models.Badges {
		if badge.Metric == models.METRIC_FEATURED {
			// granted directly by the daily selector
			continue
		}

		if badge.PerPet {
			if pet == nil {
				continue
			}

			var counter int64
			switch badge.Metric {
			case models.METRIC_PET_VOTES:
				counter = pet.VoteCount
			case models.METRIC_GENERATIONS:
				counter = pet.GenerationCount
			case models.METRIC_MINTS:
				counter = pet.MintCount
			default:
				continue
			}

			if counter >= badge.Threshold {
				if _, err := service.AwardIfAbsent(ctx, pet.OwnerID, badge.ID, pet.ID); err != nil {
					return err
				}
			}
			continue
		}

		var counter int64
		switch badge.Metric {
		case models.METRIC_VOTES_CAST:
			counter = votesCast
		case models.METRIC_REFERRALS:
			counter = referrals
		default:
			continue
		}

		if counter >= badge.Threshold {
			if _, err := service.AwardIfAbsent(ctx, userID, badge.ID, 0); err != nil {
				return err
			}
		}
	}

	return nil
}

// AwardIfAbsent is idempotent. The pre-check keeps the common repeat call
// cheap; the unique index on (user_id, badge_id, pet_id) is the backstop
// when two awards race, and the losing insert is silently discarded.
func (service *ServiceBadge) AwardIfAbsent(ctx context.Context, userID int64, badgeID string, petID int64) (bool, error) {
	exists, err := datastore.HasUserBadge(ctx, service.db, userID, badgeID, petID)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	awarded, err := datastore.InsertUserBadge(ctx, service.db, &models.UserBadge{
		UserID:  userID,
		BadgeID: badgeID,
		PetID:   petID,
	})
	if err != nil {
		return false, err
	}

	if awarded {
		//nolint:errcheck
		service.cache.Delete(ctx, DBKeyUserBadges(userID))
	}

	return awarded, nil
}

func (service *ServiceBadge) ListForUser(ctx context.Context, userID int64) ([]*models.UserBadge, error) {
	callback := func() ([]*models.UserBadge, error) {
		return datastore.GetUserBadges(ctx, service.db, userID)
	}

	return caching.UseCache(ctx, service.cache, DBKeyUserBadges(userID), CACHE_TTL_1_MIN, callback)
}

func (service *ServiceBadge) Catalog() []models.Badge {
	return models.Badges
}
