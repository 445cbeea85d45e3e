package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/d60-Lab/restaurant-pos/internal/model"
	"github.com/d60-Lab/restaurant-pos/internal/repository"
)

func newPricing(t *testing.T, db *gorm.DB) *PricingCalculator {
	t.Helper()
	couponRepo := repository.NewCouponRepository(db)
	settingsRepo := repository.NewSettingsRepository(db, nil, 0)
	return NewPricingCalculator(NewDiscountEngine(couponRepo), settingsRepo, 0.10)
}

func TestDeliveryFeeThreshold(t *testing.T) {
	db := setupDB(t)
	pricing := newPricing(t, db)
	ctx := context.Background()

	// 默认配置 {fee: 5, free_threshold: 50, min: 15}
	q, err := pricing.Quote(ctx, PricingInput{
		OrderType: model.OrderTypeDelivery,
		Items:     model.OrderItems{{ItemID: 1, Quantity: 1, Price: 60}},
	})
	require.NoError(t, err)
	assert.Equal(t, 0.0, q.DeliveryFee)
	assert.Equal(t, 60.0, q.Total)

	q, err = pricing.Quote(ctx, PricingInput{
		OrderType: model.OrderTypeDelivery,
		Items:     model.OrderItems{{ItemID: 1, Quantity: 1, Price: 40}},
	})
	require.NoError(t, err)
	assert.Equal(t, 5.0, q.DeliveryFee)
	assert.Equal(t, 45.0, q.Total)
}

func TestDeliveryBelowMinimumRejected(t *testing.T) {
	db := setupDB(t)
	pricing := newPricing(t, db)

	_, err := pricing.Quote(context.Background(), PricingInput{
		OrderType: model.OrderTypeDelivery,
		Items:     model.OrderItems{{ItemID: 1, Quantity: 1, Price: 10}},
	})
	assert.ErrorIs(t, err, ErrBelowDeliveryMinimum)
}

func TestDineInSkipsDeliveryFee(t *testing.T) {
	db := setupDB(t)
	pricing := newPricing(t, db)

	q, err := pricing.Quote(context.Background(), PricingInput{
		OrderType: model.OrderTypeDineIn,
		Items:     model.OrderItems{{ItemID: 1, Quantity: 1, Price: 10}},
	})
	require.NoError(t, err)
	assert.Equal(t, 0.0, q.DeliveryFee)
	assert.Equal(t, 10.0, q.Total)
}

func TestLoyaltyRedemptionCapped(t *testing.T) {
	db := setupDB(t)
	pricing := newPricing(t, db)
	ctx := context.Background()

	// 100 分 × 0.10 = 10 折扣
	q, err := pricing.Quote(ctx, PricingInput{
		OrderType:    model.OrderTypeTakeout,
		Items:        model.OrderItems{{ItemID: 1, Quantity: 1, Price: 30}},
		RedeemPoints: 100,
	})
	require.NoError(t, err)
	assert.Equal(t, 10.0, q.LoyaltyDiscount)
	assert.Equal(t, 20.0, q.Total)

	// 积分折扣封顶，总价不为负
	q, err = pricing.Quote(ctx, PricingInput{
		OrderType:    model.OrderTypeTakeout,
		Items:        model.OrderItems{{ItemID: 1, Quantity: 1, Price: 8}},
		RedeemPoints: 500,
	})
	require.NoError(t, err)
	assert.Equal(t, 8.0, q.LoyaltyDiscount)
	assert.Equal(t, 0.0, q.Total)
}

func TestQuoteCombinesCouponAndFeeInvariant(t *testing.T) {
	db := setupDB(t)
	pricing := newPricing(t, db)
	ctx := context.Background()

	couponRepo := repository.NewCouponRepository(db)
	require.NoError(t, couponRepo.Create(ctx, &model.Coupon{
		Code: "ten", DiscountType: model.DiscountPercentage, DiscountValue: 10,
		ValidFrom: time.Now().Add(-time.Hour), IsActive: true,
	}))

	items := model.OrderItems{{ItemID: 1, Quantity: 2, Price: 20}} // subtotal 40
	q, err := pricing.Quote(ctx, PricingInput{
		OrderType:  model.OrderTypeDelivery,
		Items:      items,
		CouponCode: "ten",
	})
	require.NoError(t, err)
	assert.Equal(t, 40.0, q.Subtotal)
	assert.Equal(t, 5.0, q.DeliveryFee)
	assert.Equal(t, 4.0, q.CouponDiscount)
	// total = max(0, subtotal + fee - discount)
	assert.Equal(t, 41.0, q.Total)
}

func TestQuoteDeterministic(t *testing.T) {
	db := setupDB(t)
	pricing := newPricing(t, db)
	ctx := context.Background()

	in := PricingInput{
		OrderType:    model.OrderTypeDelivery,
		Items:        model.OrderItems{{ItemID: 1, Quantity: 3, Price: 19.99}},
		RedeemPoints: 30,
	}
	first, err := pricing.Quote(ctx, in)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		q, err := pricing.Quote(ctx, in)
		require.NoError(t, err)
		assert.Equal(t, first, q)
	}
}
