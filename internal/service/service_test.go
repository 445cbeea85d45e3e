package service

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/d60-Lab/restaurant-pos/internal/model"
	"github.com/d60-Lab/restaurant-pos/internal/repository"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, repository.AutoMigrate(db))
	return db
}

// recordingHub 收集广播消息，替代真实 websocket hub
type recordingHub struct {
	mu       sync.Mutex
	messages []string
}

func (h *recordingHub) Broadcast(msg string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.messages = append(h.messages, msg)
}

func (h *recordingHub) Messages() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.messages...)
}

func seedMenu(t *testing.T, db *gorm.DB, items ...model.MenuItem) {
	t.Helper()
	for i := range items {
		require.NoError(t, db.Create(&items[i]).Error)
	}
}

// newOrderStack 组装下单依赖：无缓存 settings、默认兑换率
func newOrderStack(t *testing.T, db *gorm.DB, hub Broadcaster) (*OrderService, *PricingCalculator, repository.CouponRepository) {
	t.Helper()
	couponRepo := repository.NewCouponRepository(db)
	settingsRepo := repository.NewSettingsRepository(db, nil, 0)
	discounts := NewDiscountEngine(couponRepo)
	pricing := NewPricingCalculator(discounts, settingsRepo, 0.10)
	svc := NewOrderService(
		db,
		repository.NewOrderRepository(db),
		repository.NewMenuRepository(db),
		couponRepo,
		repository.NewLoyaltyRepository(db),
		repository.NewPaymentRepository(db),
		pricing,
		hub,
	)
	return svc, pricing, couponRepo
}
