package services

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"pawtrait/internal/datastore"
	"pawtrait/internal/models"
	"pawtrait/internal/pkg"

	"github.com/samber/do"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

func TestSelectForDateIdempotent(t *testing.T) {
	ctx := context.Background()
	container := newTestContainer(t)
	db := do.MustInvoke[*bun.DB](container)

	serviceFeature := do.MustInvoke[*ServiceFeature](container)
	pet := createTestPet(t, db, 1, "rex", 5, true)

	now := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)

	first, err := serviceFeature.selectForDate(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, pet.ID, first.PetID)
	assert.Equal(t, "2026-03-10", first.Date)

	// a later tick on the same day returns the existing row
	second, err := serviceFeature.selectForDate(ctx, now.Add(6*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.PetID, second.PetID)
}

func TestSelectForDateVoteFloor(t *testing.T) {
	ctx := context.Background()
	container := newTestContainer(t)
	db := do.MustInvoke[*bun.DB](container)

	serviceFeature := do.MustInvoke[*ServiceFeature](container)

	qualified := createTestPet(t, db, 1, "rex", 5, true)
	createTestPet(t, db, 2, "milo", 4, true)

	feature, err := serviceFeature.selectForDate(ctx, time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, qualified.ID, feature.PetID)
}

func TestSelectForDateSkipsPetsWithoutArtwork(t *testing.T) {
	ctx := context.Background()
	container := newTestContainer(t)
	db := do.MustInvoke[*bun.DB](container)

	serviceFeature := do.MustInvoke[*ServiceFeature](container)

	createTestPet(t, db, 1, "rex", 20, false)
	ready := createTestPet(t, db, 2, "milo", 5, true)

	feature, err := serviceFeature.selectForDate(ctx, time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, ready.ID, feature.PetID)
}

func TestSelectForDateCooldown(t *testing.T) {
	ctx := context.Background()
	container := newTestContainer(t)
	db := do.MustInvoke[*bun.DB](container)

	serviceFeature := do.MustInvoke[*ServiceFeature](container)

	petA := createTestPet(t, db, 1, "rex", 8, true)
	petB := createTestPet(t, db, 2, "milo", 8, true)

	day1 := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	day2 := day1.AddDate(0, 0, 1)

	first, err := serviceFeature.selectForDate(ctx, day1)
	require.NoError(t, err)

	second, err := serviceFeature.selectForDate(ctx, day2)
	require.NoError(t, err)

	// yesterday's pet is cooling down, so the other one must be picked
	assert.NotEqual(t, first.PetID, second.PetID)
	assert.ElementsMatch(t, []int64{petA.ID, petB.ID}, []int64{first.PetID, second.PetID})
}

func TestSelectForDateAllCoolingDown(t *testing.T) {
	ctx := context.Background()
	container := newTestContainer(t)
	db := do.MustInvoke[*bun.DB](container)

	serviceFeature := do.MustInvoke[*ServiceFeature](container)

	createTestPet(t, db, 1, "rex", 8, true)

	day1 := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	_, err := serviceFeature.selectForDate(ctx, day1)
	require.NoError(t, err)

	// the only pet was featured yesterday; the fallback keeps the cooldown
	_, err = serviceFeature.selectForDate(ctx, day1.AddDate(0, 0, 1))
	assert.ErrorIs(t, err, ErrNoEligiblePets)
}

func TestSelectForDateCooldownBoundary(t *testing.T) {
	ctx := context.Background()

	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	t.Run("featured seven days ago still cooling", func(t *testing.T) {
		container := newTestContainer(t)
		db := do.MustInvoke[*bun.DB](container)
		serviceFeature := do.MustInvoke[*ServiceFeature](container)

		pet := createTestPet(t, db, 1, "rex", 8, true)
		created, err := datastore.InsertDailyFeature(ctx, db, &models.DailyFeature{
			Date:  pkg.DateKey(day.AddDate(0, 0, -7)),
			PetID: pet.ID,
		})
		require.NoError(t, err)
		require.True(t, created)

		_, err = serviceFeature.selectForDate(ctx, day)
		assert.ErrorIs(t, err, ErrNoEligiblePets)
	})

	t.Run("featured eight days ago eligible again", func(t *testing.T) {
		container := newTestContainer(t)
		db := do.MustInvoke[*bun.DB](container)
		serviceFeature := do.MustInvoke[*ServiceFeature](container)

		pet := createTestPet(t, db, 1, "rex", 8, true)
		created, err := datastore.InsertDailyFeature(ctx, db, &models.DailyFeature{
			Date:  pkg.DateKey(day.AddDate(0, 0, -8)),
			PetID: pet.ID,
		})
		require.NoError(t, err)
		require.True(t, created)

		feature, err := serviceFeature.selectForDate(ctx, day)
		require.NoError(t, err)
		assert.Equal(t, pet.ID, feature.PetID)
	})
}

func TestSelectForDateFallbackUniform(t *testing.T) {
	ctx := context.Background()
	container := newTestContainer(t)
	db := do.MustInvoke[*bun.DB](container)

	serviceFeature := do.MustInvoke[*ServiceFeature](container)
	serviceFeature.rand = rand.New(rand.NewSource(1))

	// nobody reaches the vote floor: selection falls back to all ready pets
	pets := []*models.Pet{
		createTestPet(t, db, 1, "rex", 0, true),
		createTestPet(t, db, 2, "milo", 1, true),
		createTestPet(t, db, 3, "luna", 2, true),
	}

	require.NoError(t, datastore.UpsertConfig(ctx, db, &models.Config{
		Key:   CONFIG_FEATURE_COOLDOWN_DAYS,
		Value: "0",
	}))

	const days = 120
	picks := map[int64]int{}
	day := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < days; i++ {
		feature, err := serviceFeature.selectForDate(ctx, day.AddDate(0, 0, i))
		require.NoError(t, err)
		picks[feature.PetID]++
	}

	for _, pet := range pets {
		assert.Greater(t, picks[pet.ID], days/6, "pet %d starved of features", pet.ID)
	}
}

func TestSelectForDateAwardsFeaturedBadge(t *testing.T) {
	ctx := context.Background()
	container := newTestContainer(t)
	db := do.MustInvoke[*bun.DB](container)

	serviceFeature := do.MustInvoke[*ServiceFeature](container)

	pet := createTestPet(t, db, 1, "rex", 5, true)

	_, err := serviceFeature.selectForDate(ctx, time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	has, err := datastore.HasUserBadge(ctx, db, pet.OwnerID, models.BADGE_FEATURED_PET, pet.ID)
	require.NoError(t, err)
	assert.True(t, has)
}

func TestGetByDateMissing(t *testing.T) {
	ctx := context.Background()
	container := newTestContainer(t)

	serviceFeature := do.MustInvoke[*ServiceFeature](container)

	feature, err := serviceFeature.GetByDate(ctx, "2026-03-10")
	require.NoError(t, err)
	assert.Nil(t, feature)
}
