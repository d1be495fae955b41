package datastore

import (
	"context"

	"pawtrait/internal/models"

	"github.com/uptrace/bun"
)

func CreateTablePet(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.Pet)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.Pet)(nil)).Index("index_pet_owner_id").IfNotExists().Column("owner_id").Exec(ctx)
	if err != nil {
		return err
	}

	return nil
}

func InsertPet(ctx context.Context, db *bun.DB, pet *models.Pet) error {
	_, err := db.NewInsert().Model(pet).Exec(ctx)
	return err
}

func GetPetByID(ctx context.Context, db *bun.DB, petID int64) (*models.Pet, error) {
	var pet models.Pet
	err := db.NewSelect().Model(&pet).Where("id = ?", petID).Scan(ctx)
	if err != nil {
		return nil, err
	}

	return &pet, nil
}

func GetPetsByOwner(ctx context.Context, db *bun.DB, ownerID int64) ([]*models.Pet, error) {
	var pets []*models.Pet
	err := db.NewSelect().Model(&pets).Where("owner_id = ?", ownerID).Order("created_at DESC").Scan(ctx)
	if err != nil {
		return nil, err
	}

	return pets, nil
}

func GetTopPets(ctx context.Context, db *bun.DB, limit int) ([]*models.Pet, error) {
	var pets []*models.Pet
	err := db.NewSelect().Model(&pets).Where("has_artwork = ?", true).Order("vote_count DESC").Limit(limit).Scan(ctx)
	if err != nil {
		return nil, err
	}

	return pets, nil
}

// GetSelectablePets returns pets carrying artwork, outside the excluded set,
// optionally above a vote floor.
func GetSelectablePets(ctx context.Context, db *bun.DB, minVotes int64, excludedPetIDs []int64) ([]*models.Pet, error) {
	var pets []*models.Pet
	q := db.NewSelect().Model(&pets).Where("has_artwork = ?", true)
	if minVotes > 0 {
		q = q.Where("vote_count >= ?", minVotes)
	}
	if len(excludedPetIDs) > 0 {
		q = q.Where("id NOT IN (?)", bun.In(excludedPetIDs))
	}

	err := q.Scan(ctx)
	if err != nil {
		return nil, err
	}

	return pets, nil
}

func SetPetArtwork(ctx context.Context, db *bun.DB, petID int64, imageURL string) error {
	_, err := db.NewUpdate().
		Model((*models.Pet)(nil)).
		Set("has_artwork = ?", true).
		Set("image_url = ?", imageURL).
		Set("updated_at = current_timestamp").
		Where("id = ?", petID).
		Exec(ctx)
	return err
}

func IncrementPetVoteCount(ctx context.Context, db *bun.DB, petID int64) error {
	_, err := db.NewUpdate().
		Model((*models.Pet)(nil)).
		Set("vote_count = vote_count + 1").
		Set("updated_at = current_timestamp").
		Where("id = ?", petID).
		Exec(ctx)
	return err
}

// ChargeGeneration increments generation_count only while it is below the
// free allowance. The condition and the increment ride a single UPDATE so
// concurrent charges never over-consume the allowance.
func ChargeGeneration(ctx context.Context, db *bun.DB, petID int64, allowance int64) (bool, error) {
	res, err := db.NewUpdate().
		Model((*models.Pet)(nil)).
		Set("generation_count = generation_count + 1").
		Set("updated_at = current_timestamp").
		Where("id = ?", petID).
		Where("generation_count < ?", allowance).
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

func RecordGeneration(ctx context.Context, db *bun.DB, petID int64) error {
	_, err := db.NewUpdate().
		Model((*models.Pet)(nil)).
		Set("generation_count = generation_count + 1").
		Set("updated_at = current_timestamp").
		Where("id = ?", petID).
		Exec(ctx)
	return err
}

func RecordMint(ctx context.Context, db *bun.DB, petID int64) error {
	_, err := db.NewUpdate().
		Model((*models.Pet)(nil)).
		Set("minted = ?", true).
		Set("mint_count = mint_count + 1").
		Set("updated_at = current_timestamp").
		Where("id = ?", petID).
		Exec(ctx)
	return err
}

// DeletePet removes an unminted pet and its vote rows. Minted pets are
// refused at the service boundary before this runs.
func DeletePet(ctx context.Context, db *bun.DB, petID int64) error {
	return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().Model((*models.PetVote)(nil)).Where("pet_id = ?", petID).Exec(ctx); err != nil {
			return err
		}

		if _, err := tx.NewDelete().Model((*models.Pet)(nil)).Where("id = ?", petID).Where("minted = ?", false).Exec(ctx); err != nil {
			return err
		}

		return nil
	})
}
