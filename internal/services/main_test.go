package services

import (
	"context"
	"database/sql"
	"sync"
	"testing"

	"pawtrait/internal/datastore"
	"pawtrait/internal/interfaces"
	"pawtrait/internal/models"
	"pawtrait/internal/pkg/caching"
	"pawtrait/internal/pkg/limiter"

	"github.com/samber/do"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

// feedSinkMemory collects activities in memory for assertions.
type feedSinkMemory struct {
	mu      sync.Mutex
	entries []*models.Activity
}

func newFeedSinkMemory() *feedSinkMemory {
	return &feedSinkMemory{}
}

func (s *feedSinkMemory) Append(ctx context.Context, activity *models.Activity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append([]*models.Activity{activity}, s.entries...)
	return nil
}

func (s *feedSinkMemory) Recent(ctx context.Context, limit int) ([]*models.Activity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limit <= 0 || limit > len(s.entries) {
		limit = len(s.entries)
	}

	out := make([]*models.Activity, limit)
	copy(out, s.entries[:limit])
	return out, nil
}

func newTestDB(t *testing.T) *bun.DB {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, "file::memory:")
	require.NoError(t, err)

	// a single connection keeps the in-memory database alive and shared
	sqldb.SetMaxOpenConns(1)
	sqldb.SetMaxIdleConns(1)
	sqldb.SetConnMaxLifetime(0)

	db := bun.NewDB(sqldb, sqlitedialect.New())

	ctx := context.Background()
	creators := []func(context.Context, *bun.DB) error{
		datastore.CreateTablePet,
		datastore.CreateTablePetVote,
		datastore.CreateTableDailyVote,
		datastore.CreateTableDailyFeature,
		datastore.CreateTableWeeklyDraw,
		datastore.CreateTableReferral,
		datastore.CreateTableUserBadge,
		datastore.CreateTableConfig,
	}
	for _, create := range creators {
		require.NoError(t, create(ctx, db))
	}

	t.Cleanup(func() {
		_ = db.Close()
	})

	return db
}

func newTestContainer(t *testing.T) *do.Injector {
	t.Helper()

	db := newTestDB(t)

	injector := do.New()
	do.ProvideValue(injector, db)

	do.Provide(injector, func(i *do.Injector) (caching.Cache, error) {
		return caching.NewCacheMemory(), nil
	})

	do.Provide(injector, func(i *do.Injector) (interfaces.Limiter, error) {
		return &limiter.LimiterNoop{}, nil
	})

	do.Provide(injector, func(i *do.Injector) (interfaces.FeedSink, error) {
		return newFeedSinkMemory(), nil
	})

	do.Provide(injector, func(i *do.Injector) (*ServiceConfig, error) {
		return NewServiceConfig(injector)
	})

	do.Provide(injector, func(i *do.Injector) (*ServicePet, error) {
		return NewServicePet(injector)
	})

	do.Provide(injector, func(i *do.Injector) (*ServiceVote, error) {
		return NewServiceVote(injector)
	})

	do.Provide(injector, func(i *do.Injector) (*ServiceQuota, error) {
		return NewServiceQuota(injector)
	})

	do.Provide(injector, func(i *do.Injector) (*ServiceReferral, error) {
		return NewServiceReferral(injector)
	})

	do.Provide(injector, func(i *do.Injector) (*ServiceBadge, error) {
		return NewServiceBadge(injector)
	})

	do.Provide(injector, func(i *do.Injector) (*ServiceFeature, error) {
		return NewServiceFeature(injector)
	})

	do.Provide(injector, func(i *do.Injector) (*ServiceDraw, error) {
		return NewServiceDraw(injector)
	})

	do.Provide(injector, func(i *do.Injector) (*ServiceActivity, error) {
		return NewServiceActivity(injector)
	})

	return injector
}

func createTestPet(t *testing.T, db *bun.DB, ownerID int64, name string, votes int64, hasArtwork bool) *models.Pet {
	t.Helper()

	pet := &models.Pet{
		OwnerID:    ownerID,
		Name:       name,
		VoteCount:  votes,
		HasArtwork: hasArtwork,
	}
	require.NoError(t, datastore.InsertPet(context.Background(), db, pet))
	return pet
}
