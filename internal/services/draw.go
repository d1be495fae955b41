package services

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"math/rand"
	"time"

	"pawtrait/internal/datastore"
	"pawtrait/internal/models"
	"pawtrait/internal/pkg"
	"pawtrait/internal/pkg/caching"

	"github.com/samber/do"
	"github.com/uptrace/bun"
)

type ServiceDraw struct {
	container *do.Injector
	db        *bun.DB
	cache     caching.Cache

	rand *rand.Rand // nil outside tests
}

func NewServiceDraw(container *do.Injector) (*ServiceDraw, error) {
	db, err := do.Invoke[*bun.DB](container)
	if err != nil {
		return nil, err
	}

	cache, err := do.Invoke[caching.Cache](container)
	if err != nil {
		return nil, err
	}

	return &ServiceDraw{container: container, db: db, cache: cache}, nil
}

// DrawForCompletedWeek picks one winner among the previous week's daily
// features. The scheduler fires just after the Monday rollover, when the
// week being judged is the one that ended; keying on the fire time itself
// would see only Monday's fresh feature. The draw is uniform, independent
// of vote counts: odds of winning the week are the compound of being
// featured and then drawn, never proportional to popularity. Idempotent
// per week-start.
func (service *ServiceDraw) DrawForCompletedWeek(ctx context.Context) (*models.WeeklyDraw, error) {
	return service.drawForCompletedWeek(ctx, time.Now())
}

func (service *ServiceDraw) drawForCompletedWeek(ctx context.Context, now time.Time) (*models.WeeklyDraw, error) {
	return service.drawForWeek(ctx, now.AddDate(0, 0, -7))
}

func (service *ServiceDraw) drawForWeek(ctx context.Context, now time.Time) (*models.WeeklyDraw, error) {
	weekStart := pkg.WeekStartKey(now)

	existing, err := datastore.GetWeeklyDrawByWeekStart(ctx, service.db, weekStart)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	entries, err := datastore.GetDailyFeaturesByDates(ctx, service.db, pkg.WeekDateKeys(now))
	if err != nil {
		return nil, err
	}

	if len(entries) == 0 {
		return nil, ErrNoEntriesThisWeek
	}

	winner := service.pickUniform(entries)

	serviceConfig, err := do.Invoke[*ServiceConfig](service.container)
	if err != nil {
		return nil, err
	}

	prizeAmount, err := serviceConfig.GetIntConfig(ctx, CONFIG_WEEKLY_PRIZE_AMOUNT, DEFAULT_WEEKLY_PRIZE_AMOUNT)
	if err != nil {
		log.Println("weekly prize config:", err)
	}

	draw := &models.WeeklyDraw{
		WeekStart:      weekStart,
		PetID:          winner.PetID,
		DailyFeatureID: winner.ID,
		PrizeAmount:    int64(prizeAmount),
	}

	created, err := datastore.InsertWeeklyDraw(ctx, service.db, draw)
	if err != nil {
		return nil, err
	}
	if !created {
		return datastore.GetWeeklyDrawByWeekStart(ctx, service.db, weekStart)
	}

	return draw, nil
}

func (service *ServiceDraw) pickUniform(entries []*models.DailyFeature) *models.DailyFeature {
	gacha, err := NewUniformGacha(entries)
	if err != nil {
		return entries[0]
	}

	if service.rand != nil {
		return gacha.PickSource(service.rand)
	}

	return gacha.Pick()
}

// GetCurrent reads the most recent draw, the one over the last completed
// week.
func (service *ServiceDraw) GetCurrent(ctx context.Context) (*models.WeeklyDraw, error) {
	weekStart := pkg.WeekStartKey(time.Now().AddDate(0, 0, -7))

	callback := func() (*models.WeeklyDraw, error) {
		draw, err := datastore.GetWeeklyDrawByWeekStart(ctx, service.db, weekStart)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return draw, err
	}

	return caching.UseCache(ctx, service.cache, DBKeyWeeklyDraw(weekStart), CACHE_TTL_1_MIN, callback)
}

// MarkPrizeAwarded is called by the external payout process once the prize
// actually lands; the draw itself never flips the flag.
func (service *ServiceDraw) MarkPrizeAwarded(ctx context.Context, drawID int64) (bool, error) {
	return datastore.MarkWeeklyDrawPrizeAwarded(ctx, service.db, drawID)
}
