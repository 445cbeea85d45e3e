package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/restaurant-pos/internal/model"
	"github.com/d60-Lab/restaurant-pos/internal/repository"
)

func strPtr(s string) *string { return &s }

func TestCreateOrderFreezesCatalogPrices(t *testing.T) {
	db := setupDB(t)
	hub := &recordingHub{}
	svc, _, _ := newOrderStack(t, db, hub)
	ctx := context.Background()

	seedMenu(t, db,
		model.MenuItem{Name: "Margherita", Price: 12.50, IsAvailable: true},
		model.MenuItem{Name: "Cola", Price: 3.00, IsAvailable: true},
	)

	order, err := svc.Create(ctx, CreateOrderInput{
		OrderType: model.OrderTypeDineIn,
		CreatedBy: 1,
		Lines:     []OrderLine{{ItemID: 1, Quantity: 2}, {ItemID: 2, Quantity: 1}},
	})
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusPending, order.Status)
	assert.Equal(t, model.PaymentStatusUnpaid, order.PaymentStatus)
	assert.Equal(t, 28.0, order.TotalPrice)

	// 改目录价格不影响已落单的快照
	require.NoError(t, db.Model(&model.MenuItem{}).Where("id = ?", 1).Update("price", 99).Error)
	got, err := svc.Get(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, 12.50, got.Items[0].Price)
	assert.Equal(t, 28.0, got.TotalPrice)

	msgs := hub.Messages()
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0], "New order created")
}

func TestCreateOrderRejectsUnavailableItem(t *testing.T) {
	db := setupDB(t)
	svc, _, _ := newOrderStack(t, db, &recordingHub{})

	seedMenu(t, db, model.MenuItem{Name: "Sold out", Price: 10, IsAvailable: false})

	_, err := svc.Create(context.Background(), CreateOrderInput{
		OrderType: model.OrderTypeTakeout,
		CreatedBy: 1,
		Lines:     []OrderLine{{ItemID: 1, Quantity: 1}},
	})
	assert.ErrorIs(t, err, ErrItemUnavailable)
}

func TestCreateOrderCouponLastUseRace(t *testing.T) {
	db := setupDB(t)
	hub := &recordingHub{}
	svc, _, couponRepo := newOrderStack(t, db, hub)
	ctx := context.Background()

	seedMenu(t, db, model.MenuItem{Name: "Pizza", Price: 30, IsAvailable: true})
	require.NoError(t, couponRepo.Create(ctx, &model.Coupon{
		Code: "last", DiscountType: model.DiscountFixed, DiscountValue: 5,
		ValidFrom: time.Now().Add(-time.Hour), IsActive: true, UsageLimit: intPtr(1),
	}))

	in := CreateOrderInput{
		OrderType:  model.OrderTypeDineIn,
		CreatedBy:  1,
		Lines:      []OrderLine{{ItemID: 1, Quantity: 1}},
		CouponCode: "last",
	}
	first, err := svc.Create(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, 25.0, first.TotalPrice)
	assert.Equal(t, "LAST", first.CouponCode)

	// 额度已被第一单占掉
	_, err = svc.Create(ctx, in)
	assert.ErrorIs(t, err, ErrCouponExhausted)

	// 失败的订单没有落库，也没有广播
	var count int64
	require.NoError(t, db.Model(&model.Order{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
	assert.Len(t, hub.Messages(), 1)
}

func TestCreateOrderRedeemsPointsAtomically(t *testing.T) {
	db := setupDB(t)
	svc, _, _ := newOrderStack(t, db, &recordingHub{})
	ctx := context.Background()

	seedMenu(t, db, model.MenuItem{Name: "Pizza", Price: 30, IsAvailable: true})
	loyaltyRepo := repository.NewLoyaltyRepository(db)
	require.NoError(t, loyaltyRepo.Create(ctx, &model.LoyaltyAccount{
		CustomerPhone: "600700800", Points: 50, Tier: "bronze",
	}))

	order, err := svc.Create(ctx, CreateOrderInput{
		OrderType:     model.OrderTypeDineIn,
		CreatedBy:     1,
		Lines:         []OrderLine{{ItemID: 1, Quantity: 1}},
		CustomerPhone: "600700800",
		RedeemPoints:  50,
	})
	require.NoError(t, err)
	assert.Equal(t, 25.0, order.TotalPrice) // 30 - 50×0.10

	acc, err := loyaltyRepo.GetByPhone(ctx, nil, "600700800")
	require.NoError(t, err)
	assert.Equal(t, 0, acc.Points)

	// 余额不足：整单失败，余额不变
	_, err = svc.Create(ctx, CreateOrderInput{
		OrderType:     model.OrderTypeDineIn,
		CreatedBy:     1,
		Lines:         []OrderLine{{ItemID: 1, Quantity: 1}},
		CustomerPhone: "600700800",
		RedeemPoints:  10,
	})
	assert.ErrorIs(t, err, ErrInsufficientPoints)
	acc, err = loyaltyRepo.GetByPhone(ctx, nil, "600700800")
	require.NoError(t, err)
	assert.Equal(t, 0, acc.Points)
}

func TestUpdateOrderTransitions(t *testing.T) {
	db := setupDB(t)
	hub := &recordingHub{}
	svc, _, _ := newOrderStack(t, db, hub)
	ctx := context.Background()

	seedMenu(t, db, model.MenuItem{Name: "Pizza", Price: 30, IsAvailable: true})
	order, err := svc.Create(ctx, CreateOrderInput{
		OrderType: model.OrderTypeDineIn,
		CreatedBy: 1,
		Lines:     []OrderLine{{ItemID: 1, Quantity: 1}},
	})
	require.NoError(t, err)

	// pending -> preparing -> ready 合法
	got, err := svc.Update(ctx, order.ID, UpdateOrderInput{Status: strPtr("preparing")})
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusPreparing, got.Status)

	// 跳级被拒
	_, err = svc.Update(ctx, order.ID, UpdateOrderInput{Status: strPtr("completed")})
	assert.ErrorIs(t, err, ErrInvalidTransition)

	// 未知状态值整体失败，notes 不落库
	_, err = svc.Update(ctx, order.ID, UpdateOrderInput{
		Status: strPtr("shipped"),
		Notes:  strPtr("should not persist"),
	})
	assert.ErrorIs(t, err, ErrInvalidTransition)
	got, err = svc.Get(ctx, order.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Notes)
	assert.Equal(t, model.OrderStatusPreparing, got.Status)
}

func TestUpdateOrderRefundRequiresPaid(t *testing.T) {
	db := setupDB(t)
	svc, _, _ := newOrderStack(t, db, &recordingHub{})
	ctx := context.Background()

	seedMenu(t, db, model.MenuItem{Name: "Pizza", Price: 30, IsAvailable: true})
	order, err := svc.Create(ctx, CreateOrderInput{
		OrderType: model.OrderTypeDineIn,
		CreatedBy: 1,
		Lines:     []OrderLine{{ItemID: 1, Quantity: 1}},
	})
	require.NoError(t, err)

	// unpaid -> refunded 直接拒绝
	_, err = svc.Update(ctx, order.ID, UpdateOrderInput{PaymentStatus: strPtr("refunded")})
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = svc.Update(ctx, order.ID, UpdateOrderInput{PaymentStatus: strPtr("paid")})
	require.NoError(t, err)
	got, err := svc.Update(ctx, order.ID, UpdateOrderInput{PaymentStatus: strPtr("refunded")})
	require.NoError(t, err)
	assert.Equal(t, model.PaymentStatusRefunded, got.PaymentStatus)
}

func TestCancelPaidOrderKeepsPaymentStatus(t *testing.T) {
	db := setupDB(t)
	svc, _, _ := newOrderStack(t, db, &recordingHub{})
	ctx := context.Background()

	seedMenu(t, db, model.MenuItem{Name: "Pizza", Price: 30, IsAvailable: true})
	order, err := svc.Create(ctx, CreateOrderInput{
		OrderType: model.OrderTypeDineIn,
		CreatedBy: 1,
		Lines:     []OrderLine{{ItemID: 1, Quantity: 1}},
	})
	require.NoError(t, err)

	_, err = svc.Update(ctx, order.ID, UpdateOrderInput{PaymentStatus: strPtr("paid")})
	require.NoError(t, err)

	// 取消不自动退款：支付状态保持 paid
	got, err := svc.Update(ctx, order.ID, UpdateOrderInput{Status: strPtr("cancelled")})
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusCancelled, got.Status)
	assert.Equal(t, model.PaymentStatusPaid, got.PaymentStatus)
}

func TestCompletionAccruesLoyalty(t *testing.T) {
	db := setupDB(t)
	svc, _, _ := newOrderStack(t, db, &recordingHub{})
	ctx := context.Background()

	seedMenu(t, db, model.MenuItem{Name: "Feast", Price: 600, IsAvailable: true})
	loyaltyRepo := repository.NewLoyaltyRepository(db)
	require.NoError(t, loyaltyRepo.Create(ctx, &model.LoyaltyAccount{
		CustomerPhone: "111222333", Tier: "bronze",
	}))

	order, err := svc.Create(ctx, CreateOrderInput{
		OrderType:     model.OrderTypeDineIn,
		CreatedBy:     1,
		Lines:         []OrderLine{{ItemID: 1, Quantity: 1}},
		CustomerPhone: "111222333",
	})
	require.NoError(t, err)

	for _, st := range []string{"preparing", "ready", "completed"} {
		_, err = svc.Update(ctx, order.ID, UpdateOrderInput{Status: strPtr(st)})
		require.NoError(t, err)
	}

	acc, err := loyaltyRepo.GetByPhone(ctx, nil, "111222333")
	require.NoError(t, err)
	assert.Equal(t, 600, acc.Points)
	assert.Equal(t, 600.0, acc.TotalSpent)
	assert.Equal(t, "silver", acc.Tier)
	assert.Equal(t, 1, acc.TotalVisits)
}

func TestOrderStatsRevenueCountsPaidOnly(t *testing.T) {
	db := setupDB(t)
	svc, _, _ := newOrderStack(t, db, &recordingHub{})
	ctx := context.Background()

	seedMenu(t, db, model.MenuItem{Name: "Pizza", Price: 30, IsAvailable: true})
	mk := func() *model.Order {
		o, err := svc.Create(ctx, CreateOrderInput{
			OrderType: model.OrderTypeDineIn,
			CreatedBy: 1,
			Lines:     []OrderLine{{ItemID: 1, Quantity: 1}},
		})
		require.NoError(t, err)
		return o
	}
	paid := mk()
	mk() // 未支付
	cancelled := mk()

	_, err := svc.Update(ctx, paid.ID, UpdateOrderInput{PaymentStatus: strPtr("paid")})
	require.NoError(t, err)
	_, err = svc.Update(ctx, cancelled.ID, UpdateOrderInput{Status: strPtr("cancelled")})
	require.NoError(t, err)

	stats, err := svc.Stats(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalOrders)
	assert.Equal(t, 1, stats.CancelledOrders)
	assert.Equal(t, 30.0, stats.TotalRevenue)
	assert.Equal(t, 10.0, stats.AverageOrderValue)
}
