package datastore

import (
	"context"

	"pawtrait/internal/models"

	"github.com/uptrace/bun"
)

func CreateTableDailyFeature(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.DailyFeature)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.DailyFeature)(nil)).Index("index_daily_feature_date").IfNotExists().Unique().Column("date").Exec(ctx)
	if err != nil {
		return err
	}

	return nil
}

func CreateTableWeeklyDraw(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.WeeklyDraw)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.WeeklyDraw)(nil)).Index("index_weekly_draw_week_start").IfNotExists().Unique().Column("week_start").Exec(ctx)
	if err != nil {
		return err
	}

	return nil
}

// InsertDailyFeature reports whether this call created the row. At most one
// row per date survives the unique index; a concurrent duplicate insert
// affects zero rows.
func InsertDailyFeature(ctx context.Context, db *bun.DB, feature *models.DailyFeature) (bool, error) {
	res, err := db.NewInsert().Model(feature).On("CONFLICT (date) DO NOTHING").Exec(ctx)
	if err != nil {
		return false, err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return rows > 0, nil
}

func GetDailyFeatureByDate(ctx context.Context, db *bun.DB, date string) (*models.DailyFeature, error) {
	var feature models.DailyFeature
	err := db.NewSelect().Model(&feature).Where("date = ?", date).Scan(ctx)
	if err != nil {
		return nil, err
	}

	return &feature, nil
}

func GetDailyFeatureByID(ctx context.Context, db *bun.DB, featureID int64) (*models.DailyFeature, error) {
	var feature models.DailyFeature
	err := db.NewSelect().Model(&feature).Where("id = ?", featureID).Scan(ctx)
	if err != nil {
		return nil, err
	}

	return &feature, nil
}

func GetDailyFeaturesByDates(ctx context.Context, db *bun.DB, dates []string) ([]*models.DailyFeature, error) {
	if len(dates) == 0 {
		return nil, nil
	}

	var features []*models.DailyFeature
	err := db.NewSelect().Model(&features).Where("date IN (?)", bun.In(dates)).Order("date ASC").Scan(ctx)
	if err != nil {
		return nil, err
	}

	return features, nil
}

// GetFeaturedPetIDs returns the pets featured on any of the given dates,
// i.e. the cooldown set for the daily selection.
func GetFeaturedPetIDs(ctx context.Context, db *bun.DB, dates []string) ([]int64, error) {
	if len(dates) == 0 {
		return nil, nil
	}

	var petIDs []int64
	err := db.NewSelect().Model((*models.DailyFeature)(nil)).Column("pet_id").Where("date IN (?)", bun.In(dates)).Scan(ctx, &petIDs)
	if err != nil {
		return nil, err
	}

	return petIDs, nil
}

func IncrementDailyFeatureVoteCount(ctx context.Context, db *bun.DB, featureID int64) error {
	_, err := db.NewUpdate().
		Model((*models.DailyFeature)(nil)).
		Set("vote_count = vote_count + 1").
		Where("id = ?", featureID).
		Exec(ctx)
	return err
}

func InsertWeeklyDraw(ctx context.Context, db *bun.DB, draw *models.WeeklyDraw) (bool, error) {
	res, err := db.NewInsert().Model(draw).On("CONFLICT (week_start) DO NOTHING").Exec(ctx)
	if err != nil {
		return false, err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return rows > 0, nil
}

func GetWeeklyDrawByWeekStart(ctx context.Context, db *bun.DB, weekStart string) (*models.WeeklyDraw, error) {
	var draw models.WeeklyDraw
	err := db.NewSelect().Model(&draw).Where("week_start = ?", weekStart).Scan(ctx)
	if err != nil {
		return nil, err
	}

	return &draw, nil
}

// MarkWeeklyDrawPrizeAwarded is flipped by the external payout confirmation,
// never by the draw itself. The winning daily feature carries the same flag
// and both move in one transaction.
func MarkWeeklyDrawPrizeAwarded(ctx context.Context, db *bun.DB, drawID int64) (bool, error) {
	var flipped bool
	err := db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewUpdate().
			Model((*models.WeeklyDraw)(nil)).
			Set("prize_awarded = ?", true).
			Where("id = ?", drawID).
			Where("prize_awarded = ?", false).
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

		var draw models.WeeklyDraw
		if err := tx.NewSelect().Model(&draw).Where("id = ?", drawID).Scan(ctx); err != nil {
			return err
		}

		if _, err := tx.NewUpdate().
			Model((*models.DailyFeature)(nil)).
			Set("prize_awarded = ?", true).
			Where("id = ?", draw.DailyFeatureID).
			Exec(ctx); err != nil {
			return err
		}

		flipped = true
		return nil
	})

	return flipped, err
}
