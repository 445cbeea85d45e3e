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

func newEngine(t *testing.T, db *gorm.DB) (*DiscountEngine, repository.CouponRepository) {
	t.Helper()
	repo := repository.NewCouponRepository(db)
	return NewDiscountEngine(repo), repo
}

func intPtr(v int) *int              { return &v }
func floatPtr(v float64) *float64    { return &v }
func uintPtr(v uint) *uint           { return &v }
func timePtr(v time.Time) *time.Time { return &v }

func TestValidateCouponChecksInOrder(t *testing.T) {
	db := setupDB(t)
	engine, repo := newEngine(t, db)
	ctx := context.Background()

	_, err := engine.Validate(ctx, "NOPE", 100, nil)
	assert.ErrorIs(t, err, ErrCouponNotFound)

	now := time.Now()
	require.NoError(t, repo.Create(ctx, &model.Coupon{
		Code: "inactive", DiscountType: model.DiscountFixed, DiscountValue: 5,
		ValidFrom: now.Add(-time.Hour), IsActive: false,
	}))
	_, err = engine.Validate(ctx, "INACTIVE", 100, nil)
	assert.ErrorIs(t, err, ErrCouponInactive)

	require.NoError(t, repo.Create(ctx, &model.Coupon{
		Code: "early", DiscountType: model.DiscountFixed, DiscountValue: 5,
		ValidFrom: now.Add(time.Hour), IsActive: true,
	}))
	_, err = engine.Validate(ctx, "early", 100, nil)
	assert.ErrorIs(t, err, ErrCouponNotYetActive)

	require.NoError(t, repo.Create(ctx, &model.Coupon{
		Code: "old", DiscountType: model.DiscountFixed, DiscountValue: 5,
		ValidFrom: now.Add(-2 * time.Hour), ValidUntil: timePtr(now.Add(-time.Hour)), IsActive: true,
	}))
	_, err = engine.Validate(ctx, "old", 100, nil)
	assert.ErrorIs(t, err, ErrCouponExpired)

	require.NoError(t, repo.Create(ctx, &model.Coupon{
		Code: "spent", DiscountType: model.DiscountFixed, DiscountValue: 5,
		ValidFrom: now.Add(-time.Hour), IsActive: true,
		UsageLimit: intPtr(3), UsageCount: 3,
	}))
	_, err = engine.Validate(ctx, "spent", 100, nil)
	assert.ErrorIs(t, err, ErrCouponExhausted)

	require.NoError(t, repo.Create(ctx, &model.Coupon{
		Code: "big", DiscountType: model.DiscountFixed, DiscountValue: 5,
		ValidFrom: now.Add(-time.Hour), IsActive: true, MinOrderAmount: 50,
	}))
	_, err = engine.Validate(ctx, "big", 30, nil)
	assert.ErrorIs(t, err, ErrBelowMinimumOrder)

	quote, err := engine.Validate(ctx, "big", 60, nil)
	require.NoError(t, err)
	assert.Equal(t, 5.0, quote.DiscountAmount)
	assert.Equal(t, 55.0, quote.FinalTotal)
}

func TestPercentageCouponCap(t *testing.T) {
	// {percentage, 20, cap 5} 对小计 100：折扣被封顶为 5，总价 95
	coupon := &model.Coupon{
		DiscountType: model.DiscountPercentage, DiscountValue: 20,
		MaxDiscountAmount: floatPtr(5),
	}
	assert.Equal(t, 5.0, ComputeDiscount(coupon, 100, nil))

	coupon.MaxDiscountAmount = nil
	assert.Equal(t, 20.0, ComputeDiscount(coupon, 100, nil))
}

func TestFixedCouponNeverNegative(t *testing.T) {
	// 面值 15 用在小计 10 上：折扣 10，总价 0
	coupon := &model.Coupon{DiscountType: model.DiscountFixed, DiscountValue: 15}
	d := ComputeDiscount(coupon, 10, nil)
	assert.Equal(t, 10.0, d)
	assert.Equal(t, 0.0, maxf(0, 10-d))
}

func TestFreeItemCoupon(t *testing.T) {
	coupon := &model.Coupon{DiscountType: model.DiscountFreeItem, DiscountValue: 1, FreeItemID: uintPtr(7)}
	items := model.OrderItems{
		{ItemID: 7, Name: "Tiramisu", Quantity: 1, Price: 6.50},
		{ItemID: 8, Name: "Espresso", Quantity: 2, Price: 2.00},
	}
	assert.Equal(t, 6.50, ComputeDiscount(coupon, 10.50, items))

	// 购物车里没有指定商品：折扣为 0，不是错误
	coupon.FreeItemID = uintPtr(99)
	assert.Equal(t, 0.0, ComputeDiscount(coupon, 10.50, items))
}

func TestValidateIsSideEffectFree(t *testing.T) {
	db := setupDB(t)
	engine, repo := newEngine(t, db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &model.Coupon{
		Code: "peek", DiscountType: model.DiscountFixed, DiscountValue: 5,
		ValidFrom: time.Now().Add(-time.Hour), IsActive: true, UsageLimit: intPtr(1),
	}))

	for i := 0; i < 5; i++ {
		_, err := engine.Validate(ctx, "peek", 100, nil)
		require.NoError(t, err)
	}
	c, err := repo.GetByCode(ctx, "peek")
	require.NoError(t, err)
	assert.Equal(t, 0, c.UsageCount)
}

func TestApplyUsageAtomicLimit(t *testing.T) {
	db := setupDB(t)
	_, repo := newEngine(t, db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &model.Coupon{
		Code: "twice", DiscountType: model.DiscountFixed, DiscountValue: 5,
		ValidFrom: time.Now().Add(-time.Hour), IsActive: true, UsageLimit: intPtr(2),
	}))
	c, err := repo.GetByCode(ctx, "twice")
	require.NoError(t, err)

	// 限 N 次的券，第 N+1 次占用被拒绝
	for i := 0; i < 2; i++ {
		ok, err := repo.ApplyUsage(ctx, nil, c.ID)
		require.NoError(t, err)
		assert.True(t, ok)
	}
	ok, err := repo.ApplyUsage(ctx, nil, c.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	c, err = repo.GetByCode(ctx, "twice")
	require.NoError(t, err)
	assert.Equal(t, 2, c.UsageCount)
}
