package datastore

import (
	"context"

	"pawtrait/internal/models"

	"github.com/uptrace/bun"
)

func CreateTableUserBadge(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.UserBadge)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.UserBadge)(nil)).Index("index_user_badge_user_id_badge_id_pet_id").IfNotExists().Unique().Column("user_id", "badge_id", "pet_id").Exec(ctx)
	if err != nil {
		return err
	}

	return nil
}

// InsertUserBadge reports whether the badge was newly awarded. The unique
// index is the backstop against concurrent duplicate awards; the losing
// insert affects zero rows and is not an error.
func InsertUserBadge(ctx context.Context, db *bun.DB, badge *models.UserBadge) (bool, error) {
	res, err := db.NewInsert().Model(badge).On("CONFLICT (user_id, badge_id, pet_id) DO NOTHING").Exec(ctx)
	if err != nil {
		return false, err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return rows > 0, nil
}

func GetUserBadges(ctx context.Context, db *bun.DB, userID int64) ([]*models.UserBadge, error) {
	var badges []*models.UserBadge
	err := db.NewSelect().Model(&badges).Where("user_id = ?", userID).Order("awarded_at DESC").Scan(ctx)
	if err != nil {
		return nil, err
	}

	return badges, nil
}

func HasUserBadge(ctx context.Context, db *bun.DB, userID int64, badgeID string, petID int64) (bool, error) {
	return db.NewSelect().
		Model((*models.UserBadge)(nil)).
		Where("user_id = ?", userID).
		Where("badge_id = ?", badgeID).
		Where("pet_id = ?", petID).
		Exists(ctx)
}
