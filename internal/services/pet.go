package services

import (
	"context"

	"pawtrait/internal/datastore"
	"pawtrait/internal/models"
	"pawtrait/internal/pkg/caching"

	"github.com/samber/do"
	"github.com/uptrace/bun"
)

type ServicePet struct {
	container *do.Injector
	db        *bun.DB
	cache     caching.Cache
}

func NewServicePet(container *do.Injector) (*ServicePet, error) {
	db, err := do.Invoke[*bun.DB](container)
	if err != nil {
		return nil, err
	}

	cache, err := do.Invoke[caching.Cache](container)
	if err != nil {
		return nil, err
	}

	return &ServicePet{container, db, cache}, nil
}

func (service *ServicePet) Create(ctx context.Context, ownerID int64, name string) (*models.Pet, error) {
	pet := &models.Pet{
		OwnerID: ownerID,
		Name:    name,
	}

	if err := datastore.InsertPet(ctx, service.db, pet); err != nil {
		return nil, err
	}

	return pet, nil
}

func (service *ServicePet) Get(ctx context.Context, petID int64) (*models.Pet, error) {
	callback := func() (*models.Pet, error) {
		return datastore.GetPetByID(ctx, service.db, petID)
	}

	return caching.UseCache(ctx, service.cache, DBKeyPet(petID), CACHE_TTL_1_MIN, callback)
}

func (service *ServicePet) ListByOwner(ctx context.Context, ownerID int64) ([]*models.Pet, error) {
	return datastore.GetPetsByOwner(ctx, service.db, ownerID)
}

// SetArtwork is called once the external image pipeline reports a rendered
// artifact; artwork is the precondition for daily-feature eligibility.
func (service *ServicePet) SetArtwork(ctx context.Context, petID int64, imageURL string) error {
	if err := datastore.SetPetArtwork(ctx, service.db, petID, imageURL); err != nil {
		return err
	}

	//nolint:errcheck
	service.cache.Delete(ctx, DBKeyPet(petID))
	return nil
}

// Delete removes a pet and its votes. A minted pet carries an external
// artifact reference and is never deleted.
func (service *ServicePet) Delete(ctx context.Context, petID int64) error {
	pet, err := datastore.GetPetByID(ctx, service.db, petID)
	if err != nil {
		return err
	}

	if pet.Minted {
		return ErrPetMinted
	}

	if err := datastore.DeletePet(ctx, service.db, petID); err != nil {
		return err
	}

	//nolint:errcheck
	service.cache.Delete(ctx, DBKeyPet(petID))
	return nil
}

// Leaderboard is the popularity surface, ordered by all-time votes. It has
// no bearing on the daily feature or the weekly draw.
func (service *ServicePet) Leaderboard(ctx context.Context, limit int) ([]*models.Pet, error) {
	if limit <= 0 {
		limit = PET_LEADERBOARD_DEFAULT_LIMIT
	}

	callback := func() ([]*models.Pet, error) {
		return datastore.GetTopPets(ctx, service.db, limit)
	}

	return caching.UseCache(ctx, service.cache, DBKeyPetLeaderboard(limit), CACHE_TTL_1_MIN, callback)
}
