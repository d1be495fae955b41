package services

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"strings"

	"pawtrait/internal/datastore"
	"pawtrait/internal/interfaces"
	"pawtrait/internal/models"
	"pawtrait/internal/pkg/caching"

	"github.com/go-redis/redis_rate/v10"
	"github.com/google/uuid"
	"github.com/samber/do"
	"github.com/uptrace/bun"
)

const REFERRAL_CODE_LENGTH = 10

type ServiceReferral struct {
	container *do.Injector
	db        *bun.DB
	cache     caching.Cache
	limiter   interfaces.Limiter
}

func NewServiceReferral(container *do.Injector) (*ServiceReferral, error) {
	db, err := do.Invoke[*bun.DB](container)
	if err != nil {
		return nil, err
	}

	cache, err := do.Invoke[caching.Cache](container)
	if err != nil {
		return nil, err
	}

	limiter, err := do.Invoke[interfaces.Limiter](container)
	if err != nil {
		return nil, err
	}

	return &ServiceReferral{container, db, cache, limiter}, nil
}

// IssueOrGetCode lazily mints the user's referral code together with a
// zeroed stats row. Losing a concurrent issue race just re-reads the
// winner's code.
func (service *ServiceReferral) IssueOrGetCode(ctx context.Context, userID int64) (*models.ReferralCode, error) {
	code, err := datastore.GetReferralCodeByUserID(ctx, service.db, userID)
	if err == nil {
		return code, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	fresh := &models.ReferralCode{
		UserID: userID,
		Code:   newReferralCode(),
	}

	created, err := datastore.InsertReferralCode(ctx, service.db, fresh)
	if err != nil {
		return nil, err
	}

	if err := datastore.InsertReferralStats(ctx, service.db, &models.ReferralStats{UserID: userID}); err != nil {
		return nil, err
	}

	if !created {
		return datastore.GetReferralCodeByUserID(ctx, service.db, userID)
	}

	return fresh, nil
}

// TrackClick records a pending referral for the code's owner. An unknown
// code returns (nil, nil): stale and mistyped codes are ordinary traffic,
// not errors.
func (service *ServiceReferral) TrackClick(ctx context.Context, code string) (*int64, error) {
	if err := service.limiter.Allow(ctx, LimitKeyReferralClick(code), redis_rate.PerMinute(CLICK_RATE_LIMIT_PER_MINUTE)); err != nil {
		return nil, err
	}

	record, err := datastore.GetReferralCodeByCode(ctx, service.db, code)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	err = datastore.TrackReferralClick(ctx, service.db, &models.Referral{
		ReferrerID: record.UserID,
		Code:       code,
		Status:     models.REFERRAL_STATUS_PENDING,
	})
	if err != nil {
		return nil, err
	}

	//nolint:errcheck
	service.cache.Delete(ctx, DBKeyReferralStats(record.UserID))

	return &record.UserID, nil
}

// CompleteSignup transitions the most recent pending referral for the code
// to completed. No matching pending referral is a no-op returning nil.
func (service *ServiceReferral) CompleteSignup(ctx context.Context, code string, newUserID int64) (*models.Referral, error) {
	pending, err := datastore.GetLatestPendingReferralByCode(ctx, service.db, code)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	completed, err := datastore.CompleteReferral(ctx, service.db, pending.ID, newUserID)
	if err != nil {
		return nil, err
	}
	if !completed {
		return nil, nil
	}

	//nolint:errcheck
	service.cache.Delete(ctx, DBKeyReferralStats(pending.ReferrerID))

	serviceBadge, err := do.Invoke[*ServiceBadge](service.container)
	if err != nil {
		return nil, err
	}
	if err := serviceBadge.EvaluateThresholds(ctx, pending.ReferrerID, nil); err != nil {
		log.Println("badge evaluation after referral:", err)
	}

	return datastore.GetReferralByID(ctx, service.db, pending.ID)
}

// GrantReward credits the referrer exactly once per referral. The second
// and every later call returns false without touching the balance.
func (service *ServiceReferral) GrantReward(ctx context.Context, referralID int64) (bool, error) {
	serviceConfig, err := do.Invoke[*ServiceConfig](service.container)
	if err != nil {
		return false, err
	}

	rewardAmount, err := serviceConfig.GetIntConfig(ctx, CONFIG_REFERRAL_REWARD_AMOUNT, DEFAULT_REFERRAL_REWARD)
	if err != nil {
		log.Println("referral reward config:", err)
	}

	granted, err := datastore.GrantReferralReward(ctx, service.db, referralID, int64(rewardAmount))
	if err != nil {
		return false, err
	}

	if granted {
		referral, err := datastore.GetReferralByID(ctx, service.db, referralID)
		if err == nil {
			//nolint:errcheck
			service.cache.Delete(ctx, DBKeyReferralStats(referral.ReferrerID))
		}
	}

	return granted, nil
}

func (service *ServiceReferral) GetStats(ctx context.Context, userID int64) (*models.ReferralStats, error) {
	callback := func() (*models.ReferralStats, error) {
		stats, err := datastore.GetReferralStats(ctx, service.db, userID)
		if errors.Is(err, sql.ErrNoRows) {
			return &models.ReferralStats{UserID: userID}, nil
		}

		return stats, err
	}

	return caching.UseCache(ctx, service.cache, DBKeyReferralStats(userID), CACHE_TTL_1_MIN, callback)
}

func (service *ServiceReferral) ListReferrals(ctx context.Context, referrerID int64) ([]*models.Referral, error) {
	return datastore.GetReferralsByReferrer(ctx, service.db, referrerID)
}

func newReferralCode() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return raw[:REFERRAL_CODE_LENGTH]
}
