package datastore

import (
	"context"

	"pawtrait/internal/models"

	"github.com/uptrace/bun"
)

func CreateTableReferral(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.ReferralCode)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.ReferralCode)(nil)).Index("index_referral_code_user_id").IfNotExists().Unique().Column("user_id").Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.ReferralCode)(nil)).Index("index_referral_code_code").IfNotExists().Unique().Column("code").Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateTable().Model((*models.Referral)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.Referral)(nil)).Index("index_referral_code_status").IfNotExists().Column("code", "status").Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateTable().Model((*models.ReferralStats)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	return nil
}

// InsertReferralCode reports whether this call claimed the user's code slot.
// A concurrent duplicate issue loses to the unique index and re-reads.
func InsertReferralCode(ctx context.Context, db *bun.DB, code *models.ReferralCode) (bool, error) {
	res, err := db.NewInsert().Model(code).On("CONFLICT (user_id) DO NOTHING").Exec(ctx)
	if err != nil {
		return false, err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return rows > 0, nil
}

func GetReferralCodeByUserID(ctx context.Context, db *bun.DB, userID int64) (*models.ReferralCode, error) {
	var code models.ReferralCode
	err := db.NewSelect().Model(&code).Where("user_id = ?", userID).Scan(ctx)
	if err != nil {
		return nil, err
	}

	return &code, nil
}

func GetReferralCodeByCode(ctx context.Context, db *bun.DB, code string) (*models.ReferralCode, error) {
	var record models.ReferralCode
	err := db.NewSelect().Model(&record).Where("code = ?", code).Scan(ctx)
	if err != nil {
		return nil, err
	}

	return &record, nil
}

func InsertReferralStats(ctx context.Context, db *bun.DB, stats *models.ReferralStats) error {
	_, err := db.NewInsert().Model(stats).On("CONFLICT (user_id) DO NOTHING").Exec(ctx)
	return err
}

func GetReferralStats(ctx context.Context, db *bun.DB, userID int64) (*models.ReferralStats, error) {
	var stats models.ReferralStats
	err := db.NewSelect().Model(&stats).Where("user_id = ?", userID).Scan(ctx)
	if err != nil {
		return nil, err
	}

	return &stats, nil
}

func GetReferralByID(ctx context.Context, db *bun.DB, referralID int64) (*models.Referral, error) {
	var referral models.Referral
	err := db.NewSelect().Model(&referral).Where("id = ?", referralID).Scan(ctx)
	if err != nil {
		return nil, err
	}

	return &referral, nil
}

func GetReferralsByReferrer(ctx context.Context, db *bun.DB, referrerID int64) ([]*models.Referral, error) {
	var referrals []*models.Referral
	err := db.NewSelect().Model(&referrals).Where("referrer_id = ?", referrerID).Order("created_at DESC").Scan(ctx)
	if err != nil {
		return nil, err
	}

	return referrals, nil
}

// TrackReferralClick records a pending referral and bumps the referrer's
// pending counter in one transaction.
func TrackReferralClick(ctx context.Context, db *bun.DB, referral *models.Referral) error {
	return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(referral).Exec(ctx); err != nil {
			return err
		}

		if _, err := tx.NewUpdate().
			Model((*models.ReferralStats)(nil)).
			Set("pending_referrals = pending_referrals + 1").
			Where("user_id = ?", referral.ReferrerID).
			Exec(ctx); err != nil {
			return err
		}

		return nil
	})
}

func GetLatestPendingReferralByCode(ctx context.Context, db *bun.DB, code string) (*models.Referral, error) {
	var referral models.Referral
	err := db.NewSelect().
		Model(&referral).
		Where("code = ?", code).
		Where("status = ?", models.REFERRAL_STATUS_PENDING).
		Order("created_at DESC").
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	return &referral, nil
}

// CompleteReferral moves one pending referral to completed and keeps the
// stats cache in step. Reports whether the transition happened; a referral
// already past pending is left alone.
func CompleteReferral(ctx context.Context, db *bun.DB, referralID, referredUserID int64) (bool, error) {
	var completed bool
	err := db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewUpdate().
			Model((*models.Referral)(nil)).
			Set("status = ?", models.REFERRAL_STATUS_COMPLETED).
			Set("referred_user_id = ?", referredUserID).
			Set("updated_at = current_timestamp").
			Where("id = ?", referralID).
			Where("status = ?", models.REFERRAL_STATUS_PENDING).
			Exec(ctx)
		if err != nil {
			return err
		}

		rows, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if rows == 0 {
			return nil
		}

		var referral models.Referral
		if err := tx.NewSelect().Model(&referral).Where("id = ?", referralID).Scan(ctx); err != nil {
			return err
		}

		if _, err := tx.NewUpdate().
			Model((*models.ReferralStats)(nil)).
			Set("pending_referrals = pending_referrals - 1").
			Set("total_referrals = total_referrals + 1").
			Where("user_id = ?", referral.ReferrerID).
			Where("pending_referrals > 0").
			Exec(ctx); err != nil {
			return err
		}

		completed = true
		return nil
	})

	return completed, err
}

// GrantReferralReward flips a completed referral to rewarded exactly once.
// The conditional UPDATE is the idempotency guard: only the call that wins
// the flip credits the referrer.
func GrantReferralReward(ctx context.Context, db *bun.DB, referralID int64, rewardAmount int64) (bool, error) {
	var granted bool
	err := db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewUpdate().
			Model((*models.Referral)(nil)).
			Set("status = ?", models.REFERRAL_STATUS_REWARDED).
			Set("reward_granted = ?", true).
			Set("updated_at = current_timestamp").
			Where("id = ?", referralID).
			Where("status = ?", models.REFERRAL_STATUS_COMPLETED).
			Where("reward_granted = ?", false).
			Exec(ctx)
		if err != nil {
			return err
		}

		rows, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if rows == 0 {
			return nil
		}

		var referral models.Referral
		if err := tx.NewSelect().Model(&referral).Where("id = ?", referralID).Scan(ctx); err != nil {
			return err
		}

		if _, err := tx.NewUpdate().
			Model((*models.ReferralStats)(nil)).
			Set("free_generations_earned = free_generations_earned + ?", rewardAmount).
			Where("user_id = ?", referral.ReferrerID).
			Exec(ctx); err != nil {
			return err
		}

		granted = true
		return nil
	})

	return granted, err
}

// ConsumeFreeCredit decrements the balance only while it is positive, so it
// can never go negative under concurrent spends.
func ConsumeFreeCredit(ctx context.Context, db *bun.DB, userID int64) (bool, error) {
	res, err := db.NewUpdate().
		Model((*models.ReferralStats)(nil)).
		Set("free_generations_earned = free_generations_earned - 1").
		Where("user_id = ?", userID).
		Where("free_generations_earned > 0").
		Exec(ctx)
	if err != nil {
		return false, err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return rows > 0, nil
}

func CountCompletedReferrals(ctx context.Context, db *bun.DB, referrerID int64) (int64, error) {
	count, err := db.NewSelect().
		Model((*models.Referral)(nil)).
		Where("referrer_id = ?", referrerID).
		Where("status IN (?)", bun.In([]string{models.REFERRAL_STATUS_COMPLETED, models.REFERRAL_STATUS_REWARDED})).
		Count(ctx)
	if err != nil {
		return 0, err
	}

	return int64(count), nil
}
