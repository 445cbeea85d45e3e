package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/d60-Lab/restaurant-pos/internal/model"
)

func setupSettingsRepo(t *testing.T) (SettingsRepository, *miniredis.Miniredis, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(db))

	mr := miniredis.RunT(t)
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = cache.Close() })

	return NewSettingsRepository(db, cache, time.Minute), mr, db
}

func TestGetDeliveryCreatesDefaults(t *testing.T) {
	repo, _, _ := setupSettingsRepo(t)

	s, err := repo.GetDelivery(context.Background())
	require.NoError(t, err)
	assert.True(t, s.DeliveryEnabled)
	assert.Equal(t, 5.0, s.DeliveryFee)
	assert.Equal(t, 50.0, s.FreeDeliveryThreshold)
	assert.Equal(t, 15.0, s.MinOrderAmount)
}

func TestGetDeliveryServedFromCache(t *testing.T) {
	repo, mr, db := setupSettingsRepo(t)
	ctx := context.Background()

	first, err := repo.GetDelivery(ctx)
	require.NoError(t, err)
	assert.True(t, mr.Exists("settings:delivery"))

	// 直接改库不经仓储：TTL 内仍读到缓存快照
	require.NoError(t, db.Model(&model.DeliverySettings{}).
		Where("id = ?", first.ID).
		Update("delivery_fee", 9.0).Error)

	cached, err := repo.GetDelivery(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5.0, cached.DeliveryFee)

	// 过期后回源
	mr.FastForward(2 * time.Minute)
	fresh, err := repo.GetDelivery(ctx)
	require.NoError(t, err)
	assert.Equal(t, 9.0, fresh.DeliveryFee)
}

func TestSaveDeliveryInvalidatesCache(t *testing.T) {
	repo, mr, _ := setupSettingsRepo(t)
	ctx := context.Background()

	s, err := repo.GetDelivery(ctx)
	require.NoError(t, err)
	require.True(t, mr.Exists("settings:delivery"))

	s.DeliveryFee = 7.5
	s.FreeDeliveryThreshold = 60
	require.NoError(t, repo.SaveDelivery(ctx, s))
	assert.False(t, mr.Exists("settings:delivery"))

	got, err := repo.GetDelivery(ctx)
	require.NoError(t, err)
	assert.Equal(t, 7.5, got.DeliveryFee)
	assert.Equal(t, 60.0, got.FreeDeliveryThreshold)
}

func TestNilCacheFallsBackToDB(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(db))

	repo := NewSettingsRepository(db, nil, 0)
	s, err := repo.GetDelivery(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5.0, s.DeliveryFee)

	s.DeliveryFee = 3.0
	require.NoError(t, repo.SaveDelivery(context.Background(), s))
	got, err := repo.GetDelivery(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3.0, got.DeliveryFee)
}
