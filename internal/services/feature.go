package services

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"math/rand"
	"time"

	"pawtrait/internal/datastore"
	"pawtrait/internal/interfaces"
	"pawtrait/internal/models"
	"pawtrait/internal/pkg"
	"pawtrait/internal/pkg/caching"

	"github.com/samber/do"
	"github.com/uptrace/bun"
)

type ServiceFeature struct {
	container *do.Injector
	db        *bun.DB
	cache     caching.Cache
	feed      interfaces.FeedSink

	rand *rand.Rand // nil outside tests
}

func NewServiceFeature(container *do.Injector) (*ServiceFeature, error) {
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

	return &ServiceFeature{container: container, db: db, cache: cache, feed: feed}, nil
}

// SelectForToday picks today's featured pet. Repeat calls on the same day
// return the existing row, so the scheduler can fire as often as it likes.
func (service *ServiceFeature) SelectForToday(ctx context.Context) (*models.DailyFeature, error) {
	return service.selectForDate(ctx, time.Now())
}

func (service *ServiceFeature) selectForDate(ctx context.Context, now time.Time) (*models.DailyFeature, error) {
	dateKey := pkg.DateKey(now)

	existing, err := datastore.GetDailyFeatureByDate(ctx, service.db, dateKey)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	serviceConfig, err := do.Invoke[*ServiceConfig](service.container)
	if err != nil {
		return nil, err
	}

	cooldownDays, err := serviceConfig.GetIntConfig(ctx, CONFIG_FEATURE_COOLDOWN_DAYS, DEFAULT_FEATURE_COOLDOWN_DAYS)
	if err != nil {
		log.Println("feature cooldown config:", err)
	}

	minVotes, err := serviceConfig.GetIntConfig(ctx, CONFIG_FEATURE_MIN_VOTES, DEFAULT_FEATURE_MIN_VOTES)
	if err != nil {
		log.Println("feature min votes config:", err)
	}

	// window starts at yesterday: today has no feature yet, and counting it
	// would shorten the cooldown by a day
	cooldown, err := datastore.GetFeaturedPetIDs(ctx, service.db, pkg.DateKeysBack(now.AddDate(0, 0, -1), cooldownDays))
	if err != nil {
		return nil, err
	}

	eligible, err := datastore.GetSelectablePets(ctx, service.db, int64(minVotes), cooldown)
	if err != nil {
		return nil, err
	}

	if len(eligible) == 0 {
		// fallback drops the vote floor but keeps the cooldown
		eligible, err = datastore.GetSelectablePets(ctx, service.db, 0, cooldown)
		if err != nil {
			return nil, err
		}
	}

	if len(eligible) == 0 {
		return nil, ErrNoEligiblePets
	}

	chosen := service.pickUniform(eligible)

	feature := &models.DailyFeature{
		Date:  dateKey,
		PetID: chosen.ID,
	}

	created, err := datastore.InsertDailyFeature(ctx, service.db, feature)
	if err != nil {
		return nil, err
	}
	if !created {
		// a concurrent selection won the date slot
		return datastore.GetDailyFeatureByDate(ctx, service.db, dateKey)
	}

	serviceBadge, err := do.Invoke[*ServiceBadge](service.container)
	if err != nil {
		return nil, err
	}
	if _, err := serviceBadge.AwardIfAbsent(ctx, chosen.OwnerID, models.BADGE_FEATURED_PET, chosen.ID); err != nil {
		log.Println("featured badge award:", err)
	}

	err = service.feed.Append(ctx, &models.Activity{
		UserID: chosen.OwnerID,
		PetID:  &chosen.ID,
		Type:   models.ACTIVITY_FEATURED,
		Metadata: map[string]string{
			"date":     dateKey,
			"pet_name": chosen.Name,
		},
	})
	if err != nil {
		log.Println("activity feed append:", err)
	}

	return feature, nil
}

// pickUniform: every eligible pet gets the same odds regardless of votes.
// The popularity leaderboard is a separate surface.
func (service *ServiceFeature) pickUniform(pets []*models.Pet) *models.Pet {
	gacha, err := NewUniformGacha(pets)
	if err != nil {
		return pets[0]
	}

	if service.rand != nil {
		return gacha.PickSource(service.rand)
	}

	return gacha.Pick()
}

func (service *ServiceFeature) GetToday(ctx context.Context) (*models.DailyFeature, error) {
	return service.GetByDate(ctx, pkg.DateKey(time.Now()))
}

func (service *ServiceFeature) GetByDate(ctx context.Context, date string) (*models.DailyFeature, error) {
	callback := func() (*models.DailyFeature, error) {
		feature, err := datastore.GetDailyFeatureByDate(ctx, service.db, date)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return feature, err
	}

	return caching.UseCache(ctx, service.cache, DBKeyDailyFeature(date), CACHE_TTL_1_MIN, callback)
}
