package services

import (
	"context"
	"log"

	"pawtrait/internal/datastore"
	"pawtrait/internal/interfaces"
	"pawtrait/internal/models"
	"pawtrait/internal/pkg/caching"

	"github.com/samber/do"
	"github.com/uptrace/bun"
)

type ChargeResult struct {
	Free      bool  `json:"free"`
	Allowance int64 `json:"allowance"`
}

type ServiceQuota struct {
	container *do.Injector
	db        *bun.DB
	cache     caching.Cache
	feed      interfaces.FeedSink
}

func NewServiceQuota(container *do.Injector) (*ServiceQuota, error) {
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

	return &ServiceQuota{container, db, cache, feed}, nil
}

// ChargeGeneration consumes one unit of the pet's free allowance when any
// remains. When it returns Free=false nothing was incremented: the caller
// must settle payment out of process and then call RecordGeneration.
func (service *ServiceQuota) ChargeGeneration(ctx context.Context, petID int64) (*ChargeResult, error) {
	pet, err := datastore.GetPetByID(ctx, service.db, petID)
	if err != nil {
		return nil, err
	}

	allowance := int64(GENERATION_ALLOWANCE)
	if pet.Minted {
		allowance = int64(REGENERATION_ALLOWANCE_MINT)
	}

	free, err := datastore.ChargeGeneration(ctx, service.db, petID, allowance)
	if err != nil {
		return nil, err
	}

	if free {
		service.afterGeneration(ctx, pet)
	}

	return &ChargeResult{Free: free, Allowance: allowance}, nil
}

// RecordGeneration is the unconditional post-payment increment.
func (service *ServiceQuota) RecordGeneration(ctx context.Context, petID int64) error {
	pet, err := datastore.GetPetByID(ctx, service.db, petID)
	if err != nil {
		return err
	}

	if err := datastore.RecordGeneration(ctx, service.db, petID); err != nil {
		return err
	}

	service.afterGeneration(ctx, pet)
	return nil
}

// ConsumeFreeCredit spends one referral-earned credit. The conditional
// decrement in the store keeps the balance non-negative under concurrent
// spends; false means the balance was already empty.
func (service *ServiceQuota) ConsumeFreeCredit(ctx context.Context, userID int64) (bool, error) {
	consumed, err := datastore.ConsumeFreeCredit(ctx, service.db, userID)
	if err != nil {
		return false, err
	}

	if consumed {
		//nolint:errcheck
		service.cache.Delete(ctx, DBKeyReferralStats(userID))
	}

	return consumed, nil
}

// RecordMint marks the pet minted; from then on it cannot be deleted and
// its regeneration allowance shrinks.
func (service *ServiceQuota) RecordMint(ctx context.Context, petID int64) error {
	pet, err := datastore.GetPetByID(ctx, service.db, petID)
	if err != nil {
		return err
	}

	if !pet.HasArtwork {
		return ErrPetNotReady
	}

	if err := datastore.RecordMint(ctx, service.db, petID); err != nil {
		return err
	}

	//nolint:errcheck
	service.cache.Delete(ctx, DBKeyPet(petID))

	service.appendActivity(ctx, pet.OwnerID, &pet.ID, models.ACTIVITY_MINT, map[string]string{
		"pet_name": pet.Name,
	})

	service.evaluateBadges(ctx, pet.OwnerID, pet.ID)
	return nil
}

func (service *ServiceQuota) afterGeneration(ctx context.Context, pet *models.Pet) {
	//nolint:errcheck
	service.cache.Delete(ctx, DBKeyPet(pet.ID))

	service.appendActivity(ctx, pet.OwnerID, &pet.ID, models.ACTIVITY_GENERATION, map[string]string{
		"pet_name": pet.Name,
	})

	service.evaluateBadges(ctx, pet.OwnerID, pet.ID)
}

func (service *ServiceQuota) evaluateBadges(ctx context.Context, userID, petID int64) {
	serviceBadge, err := do.Invoke[*ServiceBadge](service.container)
	if err != nil {
		log.Println("badge service:", err)
		return
	}

	if err := serviceBadge.EvaluateThresholds(ctx, userID, &petID); err != nil {
		log.Println("badge evaluation after generation:", err)
	}
}

func (service *ServiceQuota) appendActivity(ctx context.Context, userID int64, petID *int64, activityType string, metadata map[string]string) {
	err := service.feed.Append(ctx, &models.Activity{
		UserID:   userID,
		PetID:    petID,
		Type:     activityType,
		Metadata: metadata,
	})
	if err != nil {
		log.Println("activity feed append:", err)
	}
}
