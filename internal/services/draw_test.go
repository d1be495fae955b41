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

// seedWeekFeatures inserts one daily feature per offset day of now's week.
func seedWeekFeatures(t *testing.T, db *bun.DB, now time.Time, petIDs []int64) []*models.DailyFeature {
	t.Helper()

	ctx := context.Background()
	start := pkg.WeekStart(now)

	features := make([]*models.DailyFeature, 0, len(petIDs))
	for i, petID := range petIDs {
		feature := &models.DailyFeature{
			Date:  pkg.DateKey(start.AddDate(0, 0, i)),
			PetID: petID,
		}
		created, err := datastore.InsertDailyFeature(ctx, db, feature)
		require.NoError(t, err)
		require.True(t, created)
		features = append(features, feature)
	}

	return features
}

func TestDrawForWeekIdempotent(t *testing.T) {
	ctx := context.Background()
	container := newTestContainer(t)
	db := do.MustInvoke[*bun.DB](container)

	serviceDraw := do.MustInvoke[*ServiceDraw](container)

	pet := createTestPet(t, db, 1, "rex", 5, true)
	now := time.Date(2026, 3, 11, 12, 0, 0, 0, time.UTC) // a Wednesday
	seedWeekFeatures(t, db, now, []int64{pet.ID})

	first, err := serviceDraw.drawForWeek(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, "2026-03-09", first.WeekStart)
	assert.Equal(t, pet.ID, first.PetID)
	assert.EqualValues(t, DEFAULT_WEEKLY_PRIZE_AMOUNT, first.PrizeAmount)

	// a redelivered tick later in the same week changes nothing
	second, err := serviceDraw.drawForWeek(ctx, now.AddDate(0, 0, 2))
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.PetID, second.PetID)
}

func TestDrawForWeekNoEntries(t *testing.T) {
	ctx := context.Background()
	container := newTestContainer(t)

	serviceDraw := do.MustInvoke[*ServiceDraw](container)

	_, err := serviceDraw.drawForWeek(ctx, time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC))
	assert.ErrorIs(t, err, ErrNoEntriesThisWeek)
}

func TestDrawForWeekIgnoresOtherWeeks(t *testing.T) {
	ctx := context.Background()
	container := newTestContainer(t)
	db := do.MustInvoke[*bun.DB](container)

	serviceDraw := do.MustInvoke[*ServiceDraw](container)

	pet := createTestPet(t, db, 1, "rex", 5, true)
	lastWeek := time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC)
	seedWeekFeatures(t, db, lastWeek, []int64{pet.ID})

	_, err := serviceDraw.drawForWeek(ctx, lastWeek.AddDate(0, 0, 7))
	assert.ErrorIs(t, err, ErrNoEntriesThisWeek)
}

func TestDrawForCompletedWeekAtMondayRollover(t *testing.T) {
	ctx := context.Background()
	container := newTestContainer(t)
	db := do.MustInvoke[*bun.DB](container)

	serviceDraw := do.MustInvoke[*ServiceDraw](container)

	// a full week of features, Monday 2026-03-09 through Sunday 2026-03-15
	lastWeek := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
	petIDs := make([]int64, 0, 7)
	for i := int64(1); i <= 7; i++ {
		pet := createTestPet(t, db, i, "pet", 5, true)
		petIDs = append(petIDs, pet.ID)
	}
	features := seedWeekFeatures(t, db, lastWeek, petIDs)

	// the new Monday's feature already exists when the draw fires
	mondayPet := createTestPet(t, db, 8, "fresh", 5, true)
	created, err := datastore.InsertDailyFeature(ctx, db, &models.DailyFeature{
		Date:  "2026-03-16",
		PetID: mondayPet.ID,
	})
	require.NoError(t, err)
	require.True(t, created)

	// default schedule fires Monday 00:05, just after the rollover
	fireTime := time.Date(2026, 3, 16, 0, 5, 0, 0, time.UTC)
	draw, err := serviceDraw.drawForCompletedWeek(ctx, fireTime)
	require.NoError(t, err)

	assert.Equal(t, "2026-03-09", draw.WeekStart)
	assert.NotEqual(t, mondayPet.ID, draw.PetID)

	featureIDs := make([]int64, 0, len(features))
	for _, feature := range features {
		featureIDs = append(featureIDs, feature.ID)
	}
	assert.Contains(t, featureIDs, draw.DailyFeatureID)
}

func TestDrawForWeekUniformAcrossFeatures(t *testing.T) {
	container := newTestContainer(t)
	db := do.MustInvoke[*bun.DB](container)

	serviceDraw := do.MustInvoke[*ServiceDraw](container)
	serviceDraw.rand = rand.New(rand.NewSource(1))

	// wildly uneven vote counts must not tilt the draw
	petA := createTestPet(t, db, 1, "rex", 500, true)
	petB := createTestPet(t, db, 2, "milo", 1, true)
	petC := createTestPet(t, db, 3, "luna", 0, true)

	now := time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC)
	features := seedWeekFeatures(t, db, now, []int64{petA.ID, petB.ID, petC.ID})

	const rounds = 300
	picks := map[int64]int{}
	for i := 0; i < rounds; i++ {
		winner := serviceDraw.pickUniform(features)
		picks[winner.PetID]++
	}

	for _, feature := range features {
		assert.Greater(t, picks[feature.PetID], rounds/6, "pet %d never wins", feature.PetID)
	}
}

func TestMarkPrizeAwardedOnce(t *testing.T) {
	ctx := context.Background()
	container := newTestContainer(t)
	db := do.MustInvoke[*bun.DB](container)

	serviceDraw := do.MustInvoke[*ServiceDraw](container)

	pet := createTestPet(t, db, 1, "rex", 5, true)
	now := time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC)
	seedWeekFeatures(t, db, now, []int64{pet.ID})

	draw, err := serviceDraw.drawForWeek(ctx, now)
	require.NoError(t, err)

	flipped, err := serviceDraw.MarkPrizeAwarded(ctx, draw.ID)
	require.NoError(t, err)
	assert.True(t, flipped)

	// the winning feature carries the flag too
	feature, err := datastore.GetDailyFeatureByID(ctx, db, draw.DailyFeatureID)
	require.NoError(t, err)
	assert.True(t, feature.PrizeAwarded)

	// the payout worker retrying must see the flag already set
	flipped, err = serviceDraw.MarkPrizeAwarded(ctx, draw.ID)
	require.NoError(t, err)
	assert.False(t, flipped)
}
