package services

import (
	"context"
	"sync"
	"testing"

	"pawtrait/internal/datastore"
	"pawtrait/internal/models"

	"github.com/samber/do"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

func TestChargeGenerationAllowance(t *testing.T) {
	ctx := context.Background()
	container := newTestContainer(t)
	db := do.MustInvoke[*bun.DB](container)

	serviceQuota := do.MustInvoke[*ServiceQuota](container)
	pet := createTestPet(t, db, 1, "rex", 0, true)

	for i := 0; i < GENERATION_ALLOWANCE; i++ {
		result, err := serviceQuota.ChargeGeneration(ctx, pet.ID)
		require.NoError(t, err)
		assert.True(t, result.Free)
	}

	result, err := serviceQuota.ChargeGeneration(ctx, pet.ID)
	require.NoError(t, err)
	assert.False(t, result.Free)

	// an exhausted charge leaves the counter untouched
	updated, err := datastore.GetPetByID(ctx, db, pet.ID)
	require.NoError(t, err)
	assert.EqualValues(t, GENERATION_ALLOWANCE, updated.GenerationCount)
}

func TestChargeGenerationMintedAllowance(t *testing.T) {
	ctx := context.Background()
	container := newTestContainer(t)
	db := do.MustInvoke[*bun.DB](container)

	serviceQuota := do.MustInvoke[*ServiceQuota](container)
	pet := createTestPet(t, db, 1, "rex", 0, true)
	require.NoError(t, serviceQuota.RecordMint(ctx, pet.ID))

	result, err := serviceQuota.ChargeGeneration(ctx, pet.ID)
	require.NoError(t, err)
	assert.True(t, result.Free)
	assert.EqualValues(t, REGENERATION_ALLOWANCE_MINT, result.Allowance)

	result, err = serviceQuota.ChargeGeneration(ctx, pet.ID)
	require.NoError(t, err)
	assert.False(t, result.Free)
}

func TestRecordGenerationUnconditional(t *testing.T) {
	ctx := context.Background()
	container := newTestContainer(t)
	db := do.MustInvoke[*bun.DB](container)

	serviceQuota := do.MustInvoke[*ServiceQuota](container)
	pet := createTestPet(t, db, 1, "rex", 0, true)

	for i := 0; i < GENERATION_ALLOWANCE+2; i++ {
		require.NoError(t, serviceQuota.RecordGeneration(ctx, pet.ID))
	}

	updated, err := datastore.GetPetByID(ctx, db, pet.ID)
	require.NoError(t, err)
	assert.EqualValues(t, GENERATION_ALLOWANCE+2, updated.GenerationCount)
}

func TestConsumeFreeCreditNeverNegative(t *testing.T) {
	ctx := context.Background()
	container := newTestContainer(t)
	db := do.MustInvoke[*bun.DB](container)

	serviceQuota := do.MustInvoke[*ServiceQuota](container)

	const balance = 2
	require.NoError(t, datastore.InsertReferralStats(ctx, db, &models.ReferralStats{
		UserID:                7,
		FreeGenerationsEarned: balance,
	}))

	const attempts = 6
	var wg sync.WaitGroup
	consumed := make([]bool, attempts)
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			consumed[n], errs[n] = serviceQuota.ConsumeFreeCredit(ctx, 7)
		}(i)
	}
	wg.Wait()

	var successes int
	for i := 0; i < attempts; i++ {
		require.NoError(t, errs[i])
		if consumed[i] {
			successes++
		}
	}
	assert.Equal(t, balance, successes)

	stats, err := datastore.GetReferralStats(ctx, db, 7)
	require.NoError(t, err)
	assert.EqualValues(t, 0, stats.FreeGenerationsEarned)
}

func TestRecordMintRequiresArtwork(t *testing.T) {
	ctx := context.Background()
	container := newTestContainer(t)
	db := do.MustInvoke[*bun.DB](container)

	serviceQuota := do.MustInvoke[*ServiceQuota](container)
	pet := createTestPet(t, db, 1, "rex", 0, false)

	err := serviceQuota.RecordMint(ctx, pet.ID)
	assert.ErrorIs(t, err, ErrPetNotReady)
}

func TestRecordMintBlocksDeletion(t *testing.T) {
	ctx := context.Background()
	container := newTestContainer(t)
	db := do.MustInvoke[*bun.DB](container)

	serviceQuota := do.MustInvoke[*ServiceQuota](container)
	servicePet := do.MustInvoke[*ServicePet](container)

	pet := createTestPet(t, db, 1, "rex", 0, true)
	require.NoError(t, serviceQuota.RecordMint(ctx, pet.ID))

	err := servicePet.Delete(ctx, pet.ID)
	assert.ErrorIs(t, err, ErrPetMinted)

	updated, err := datastore.GetPetByID(ctx, db, pet.ID)
	require.NoError(t, err)
	assert.True(t, updated.Minted)
	assert.EqualValues(t, 1, updated.MintCount)
}
