package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/d60-Lab/restaurant-pos/internal/model"
)

const deliverySettingsKey = "settings:delivery"

// SettingsRepository 外送配置仓储。每次定价都要读一次配置快照，
// 走 redis 缓存，更新时失效。cache 为 nil 时退化为纯 DB 读。
type SettingsRepository interface {
	GetDelivery(ctx context.Context) (*model.DeliverySettings, error)
	SaveDelivery(ctx context.Context, s *model.DeliverySettings) error
}

type settingsRepository struct {
	db    *gorm.DB
	cache *redis.Client
	ttl   time.Duration
}

func NewSettingsRepository(db *gorm.DB, cache *redis.Client, ttl time.Duration) SettingsRepository {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &settingsRepository{db: db, cache: cache, ttl: ttl}
}

func (r *settingsRepository) GetDelivery(ctx context.Context) (*model.DeliverySettings, error) {
	if r.cache != nil {
		if data, err := r.cache.Get(ctx, deliverySettingsKey).Bytes(); err == nil {
			var s model.DeliverySettings
			if uErr := json.Unmarshal(data, &s); uErr == nil {
				return &s, nil
			}
		}
	}

	var s model.DeliverySettings
	if err := r.db.WithContext(ctx).First(&s).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			def := model.DefaultDeliverySettings()
			if cErr := r.db.WithContext(ctx).Create(&def).Error; cErr != nil {
				return nil, cErr
			}
			s = def
		} else {
			return nil, err
		}
	}

	if r.cache != nil {
		if payload, err := json.Marshal(s); err == nil {
			_ = r.cache.Set(ctx, deliverySettingsKey, payload, r.ttl).Err()
		}
	}
	return &s, nil
}

func (r *settingsRepository) SaveDelivery(ctx context.Context, s *model.DeliverySettings) error {
	if err := r.db.WithContext(ctx).Save(s).Error; err != nil {
		return err
	}
	if r.cache != nil {
		_ = r.cache.Del(ctx, deliverySettingsKey).Err()
	}
	return nil
}
