package datastore

import (
	"context"

	"pawtrait/internal/models"

	"github.com/uptrace/bun"
)

func CreateTablePetVote(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.PetVote)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.PetVote)(nil)).Index("index_pet_vote_voter_id_pet_id").IfNotExists().Unique().Column("voter_id", "pet_id").Exec(ctx)
	if err != nil {
		return err
	}

	return nil
}

func CreateTableDailyVote(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.DailyVote)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.DailyVote)(nil)).Index("index_daily_vote_voter_id_feature_id").IfNotExists().Unique().Column("voter_id", "daily_feature_id").Exec(ctx)
	if err != nil {
		return err
	}

	return nil
}

// InsertPetVote reports whether the row landed. The unique index is the
// only serialization point; a duplicate insert affects zero rows.
func InsertPetVote(ctx context.Context, db *bun.DB, vote *models.PetVote) (bool, error) {
	res, err := db.NewInsert().Model(vote).On("CONFLICT (voter_id, pet_id) DO NOTHING").Exec(ctx)
	if err != nil {
		return false, err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return rows > 0, nil
}

func InsertDailyVote(ctx context.Context, db *bun.DB, vote *models.DailyVote) (bool, error) {
	res, err := db.NewInsert().Model(vote).On("CONFLICT (voter_id, daily_feature_id) DO NOTHING").Exec(ctx)
	if err != nil {
		return false, err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return rows > 0, nil
}

func HasVotedForPet(ctx context.Context, db *bun.DB, voterID, petID int64) (bool, error) {
	return db.NewSelect().Model((*models.PetVote)(nil)).Where("voter_id = ?", voterID).Where("pet_id = ?", petID).Exists(ctx)
}

func HasVotedForFeature(ctx context.Context, db *bun.DB, voterID, featureID int64) (bool, error) {
	return db.NewSelect().Model((*models.DailyVote)(nil)).Where("voter_id = ?", voterID).Where("daily_feature_id = ?", featureID).Exists(ctx)
}

func CountVotesByVoter(ctx context.Context, db *bun.DB, voterID int64) (int64, error) {
	count, err := db.NewSelect().Model((*models.PetVote)(nil)).Where("voter_id = ?", voterID).Count(ctx)
	if err != nil {
		return 0, err
	}

	return int64(count), nil
}
