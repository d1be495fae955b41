package services

import (
	"context"
	"testing"

	"pawtrait/internal/datastore"
	"pawtrait/internal/models"

	"github.com/samber/do"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

func TestIssueOrGetCodeIdempotent(t *testing.T) {
	ctx := context.Background()
	container := newTestContainer(t)

	serviceReferral := do.MustInvoke[*ServiceReferral](container)

	first, err := serviceReferral.IssueOrGetCode(ctx, 1)
	require.NoError(t, err)
	require.Len(t, first.Code, REFERRAL_CODE_LENGTH)

	second, err := serviceReferral.IssueOrGetCode(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, first.Code, second.Code)

	other, err := serviceReferral.IssueOrGetCode(ctx, 2)
	require.NoError(t, err)
	assert.NotEqual(t, first.Code, other.Code)
}

func TestTrackClickUnknownCode(t *testing.T) {
	ctx := context.Background()
	container := newTestContainer(t)

	serviceReferral := do.MustInvoke[*ServiceReferral](container)

	referrerID, err := serviceReferral.TrackClick(ctx, "nosuchcode")
	require.NoError(t, err)
	assert.Nil(t, referrerID)
}

func TestTrackClickRecordsPending(t *testing.T) {
	ctx := context.Background()
	container := newTestContainer(t)
	db := do.MustInvoke[*bun.DB](container)

	serviceReferral := do.MustInvoke[*ServiceReferral](container)

	code, err := serviceReferral.IssueOrGetCode(ctx, 1)
	require.NoError(t, err)

	referrerID, err := serviceReferral.TrackClick(ctx, code.Code)
	require.NoError(t, err)
	require.NotNil(t, referrerID)
	assert.EqualValues(t, 1, *referrerID)

	stats, err := datastore.GetReferralStats(ctx, db, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 1, stats.PendingReferrals)
	assert.EqualValues(t, 0, stats.TotalReferrals)
}

func TestCompleteSignup(t *testing.T) {
	ctx := context.Background()
	container := newTestContainer(t)
	db := do.MustInvoke[*bun.DB](container)

	serviceReferral := do.MustInvoke[*ServiceReferral](container)

	code, err := serviceReferral.IssueOrGetCode(ctx, 1)
	require.NoError(t, err)

	// no pending click yet: silent no-op
	referral, err := serviceReferral.CompleteSignup(ctx, code.Code, 2)
	require.NoError(t, err)
	assert.Nil(t, referral)

	_, err = serviceReferral.TrackClick(ctx, code.Code)
	require.NoError(t, err)

	referral, err = serviceReferral.CompleteSignup(ctx, code.Code, 2)
	require.NoError(t, err)
	require.NotNil(t, referral)
	assert.Equal(t, models.REFERRAL_STATUS_COMPLETED, referral.Status)
	require.NotNil(t, referral.ReferredUserID)
	assert.EqualValues(t, 2, *referral.ReferredUserID)

	stats, err := datastore.GetReferralStats(ctx, db, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 0, stats.PendingReferrals)
	assert.EqualValues(t, 1, stats.TotalReferrals)

	// the pending referral is spent: a second signup finds nothing
	referral, err = serviceReferral.CompleteSignup(ctx, code.Code, 3)
	require.NoError(t, err)
	assert.Nil(t, referral)
}

func TestGrantRewardExactlyOnce(t *testing.T) {
	ctx := context.Background()
	container := newTestContainer(t)
	db := do.MustInvoke[*bun.DB](container)

	serviceReferral := do.MustInvoke[*ServiceReferral](container)
	serviceQuota := do.MustInvoke[*ServiceQuota](container)

	code, err := serviceReferral.IssueOrGetCode(ctx, 1)
	require.NoError(t, err)
	_, err = serviceReferral.TrackClick(ctx, code.Code)
	require.NoError(t, err)
	referral, err := serviceReferral.CompleteSignup(ctx, code.Code, 2)
	require.NoError(t, err)
	require.NotNil(t, referral)

	granted, err := serviceReferral.GrantReward(ctx, referral.ID)
	require.NoError(t, err)
	assert.True(t, granted)

	stats, err := datastore.GetReferralStats(ctx, db, 1)
	require.NoError(t, err)
	assert.EqualValues(t, DEFAULT_REFERRAL_REWARD, stats.FreeGenerationsEarned)

	// a redelivered grant is a no-op
	granted, err = serviceReferral.GrantReward(ctx, referral.ID)
	require.NoError(t, err)
	assert.False(t, granted)

	stats, err = datastore.GetReferralStats(ctx, db, 1)
	require.NoError(t, err)
	assert.EqualValues(t, DEFAULT_REFERRAL_REWARD, stats.FreeGenerationsEarned)

	consumed, err := serviceQuota.ConsumeFreeCredit(ctx, 1)
	require.NoError(t, err)
	assert.True(t, consumed)
}

func TestGrantRewardRequiresCompletion(t *testing.T) {
	ctx := context.Background()
	container := newTestContainer(t)
	db := do.MustInvoke[*bun.DB](container)

	serviceReferral := do.MustInvoke[*ServiceReferral](container)

	code, err := serviceReferral.IssueOrGetCode(ctx, 1)
	require.NoError(t, err)
	_, err = serviceReferral.TrackClick(ctx, code.Code)
	require.NoError(t, err)

	pending, err := datastore.GetLatestPendingReferralByCode(ctx, db, code.Code)
	require.NoError(t, err)

	granted, err := serviceReferral.GrantReward(ctx, pending.ID)
	require.NoError(t, err)
	assert.False(t, granted)
}

func TestGetStatsZeroValue(t *testing.T) {
	ctx := context.Background()
	container := newTestContainer(t)

	serviceReferral := do.MustInvoke[*ServiceReferral](container)

	stats, err := serviceReferral.GetStats(ctx, 42)
	require.NoError(t, err)
	assert.EqualValues(t, 42, stats.UserID)
	assert.EqualValues(t, 0, stats.TotalReferrals)
}
