package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/d60-Lab/restaurant-pos/internal/model"
	"github.com/d60-Lab/restaurant-pos/internal/repository"
	"github.com/d60-Lab/restaurant-pos/pkg/logger"
)

var (
	ErrOrderNotFound          = errors.New("order not found")
	ErrItemNotFound           = errors.New("menu item not found")
	ErrItemUnavailable        = errors.New("menu item unavailable")
	ErrEmptyOrder             = errors.New("order has no items")
	ErrInvalidTransition      = errors.New("invalid status transition")
	ErrInsufficientPoints     = errors.New("insufficient loyalty points")
	ErrLoyaltyAccountNotFound = errors.New("loyalty account not found")
)

// Broadcaster 订单事件的实时广播。尽力投递：失败不回传给调用方。
type Broadcaster interface {
	Broadcast(message string)
}

// OrderLine 下单请求里的一行：只带商品与数量，单价由菜单解析
type OrderLine struct {
	ItemID   uint `json:"item_id" binding:"required"`
	Quantity int  `json:"quantity" binding:"required,gt=0"`
}

// CreateOrderInput 下单入参
type CreateOrderInput struct {
	OrderType       model.OrderType
	TableID         *uint
	CreatedBy       uint
	Lines           []OrderLine
	CouponCode      string
	RedeemPoints    int
	Notes           string
	CustomerName    string
	CustomerPhone   string
	DeliveryAddress string
}

// UpdateOrderInput staff 更新入参；nil 字段表示不改。
// 任一字段非法则整个更新失败，不做部分落库。
type UpdateOrderInput struct {
	TableID       *uint
	Lines         []OrderLine
	Status        *string
	PaymentStatus *string
	PaymentMethod *string
	Notes         *string
}

// OrderStats 订单统计
type OrderStats struct {
	TotalOrders       int     `json:"total_orders"`
	CompletedOrders   int     `json:"completed_orders"`
	CancelledOrders   int     `json:"cancelled_orders"`
	TotalRevenue      float64 `json:"total_revenue"`
	AverageOrderValue float64 `json:"average_order_value"`
}

// OrderService 订单生命周期：定价、状态机流转、持久化都在一个
// 事务里完成；广播只在事务提交之后发出。
type OrderService struct {
	db       *gorm.DB
	orders   repository.OrderRepository
	menu     repository.MenuRepository
	coupons  repository.CouponRepository
	loyalty  repository.LoyaltyRepository
	payments repository.PaymentRepository
	pricing  *PricingCalculator
	hub      Broadcaster
}

func NewOrderService(
	db *gorm.DB,
	orders repository.OrderRepository,
	menu repository.MenuRepository,
	coupons repository.CouponRepository,
	loyalty repository.LoyaltyRepository,
	payments repository.PaymentRepository,
	pricing *PricingCalculator,
	hub Broadcaster,
) *OrderService {
	return &OrderService{
		db:       db,
		orders:   orders,
		menu:     menu,
		coupons:  coupons,
		loyalty:  loyalty,
		payments: payments,
		pricing:  pricing,
		hub:      hub,
	}
}

// resolveLines 从菜单解析单价并冻结为订单行快照。
// 只在下单这一刻读目录，之后订单不再回查。
func (s *OrderService) resolveLines(ctx context.Context, tx *gorm.DB, lines []OrderLine) (model.OrderItems, error) {
	if len(lines) == 0 {
		return nil, ErrEmptyOrder
	}
	ids := make([]uint, 0, len(lines))
	for _, l := range lines {
		ids = append(ids, l.ItemID)
	}
	catalog, err := s.menu.GetByIDs(ctx, tx, ids)
	if err != nil {
		return nil, err
	}
	items := make(model.OrderItems, 0, len(lines))
	for _, l := range lines {
		mi, ok := catalog[l.ItemID]
		if !ok {
			return nil, fmt.Errorf("%w: id %d", ErrItemNotFound, l.ItemID)
		}
		if !mi.IsAvailable {
			return nil, fmt.Errorf("%w: %s", ErrItemUnavailable, mi.Name)
		}
		items = append(items, model.OrderItem{
			ItemID:   mi.ID,
			Name:     mi.Name,
			Quantity: l.Quantity,
			Price:    mi.Price,
		})
	}
	return items, nil
}

// Create 下单：解析行项目 → 定价 → 事务内占用券额度、扣积分、落单。
// 提交成功后才广播。
func (s *OrderService) Create(ctx context.Context, in CreateOrderInput) (*model.Order, error) {
	if _, err := model.ParseOrderType(string(in.OrderType)); err != nil {
		return nil, err
	}
	items, err := s.resolveLines(ctx, nil, in.Lines)
	if err != nil {
		return nil, err
	}

	quote, err := s.pricing.Quote(ctx, PricingInput{
		OrderType:    in.OrderType,
		Items:        items,
		CouponCode:   in.CouponCode,
		RedeemPhone:  in.CustomerPhone,
		RedeemPoints: in.RedeemPoints,
	})
	if err != nil {
		return nil, err
	}

	order := &model.Order{
		OrderType:       in.OrderType,
		TableID:         in.TableID,
		CreatedBy:       in.CreatedBy,
		Items:           items,
		TotalPrice:      quote.Total,
		DeliveryFee:     quote.DeliveryFee,
		DiscountAmount:  quote.Discount(),
		Status:          model.OrderStatusPending,
		PaymentStatus:   model.PaymentStatusUnpaid,
		Notes:           in.Notes,
		CustomerName:    in.CustomerName,
		CustomerPhone:   in.CustomerPhone,
		DeliveryAddress: in.DeliveryAddress,
	}
	if quote.Coupon != nil {
		order.CouponCode = quote.Coupon.Code
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if quote.Coupon != nil {
			ok, aErr := s.coupons.ApplyUsage(ctx, tx, quote.Coupon.ID)
			if aErr != nil {
				return aErr
			}
			if !ok {
				return ErrCouponExhausted
			}
		}
		if in.RedeemPoints > 0 {
			ok, rErr := s.loyalty.RedeemPoints(ctx, tx, in.CustomerPhone, in.RedeemPoints)
			if rErr != nil {
				return rErr
			}
			if !ok {
				return ErrInsufficientPoints
			}
		}
		return s.orders.Create(ctx, tx, order)
	})
	if err != nil {
		return nil, err
	}

	s.hub.Broadcast(fmt.Sprintf("New order created: #%d", order.ID))
	logger.Info("order created",
		zap.Uint("order_id", order.ID),
		zap.String("type", string(order.OrderType)),
		zap.Float64("total", order.TotalPrice))
	return order, nil
}

// Update staff 显式更新。状态字段先整体校验，全部合法才落库。
func (s *OrderService) Update(ctx context.Context, id uint, in UpdateOrderInput) (*model.Order, error) {
	var order *model.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		order, err = s.orders.GetByID(ctx, tx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return err
		}

		if in.Status != nil {
			next, pErr := model.ParseOrderStatus(*in.Status)
			if pErr != nil {
				return fmt.Errorf("%w: %v", ErrInvalidTransition, pErr)
			}
			if !order.Status.CanTransition(next) {
				return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, order.Status, next)
			}
			if next == model.OrderStatusCompleted && order.Status != model.OrderStatusCompleted {
				if aErr := s.accrueLoyalty(ctx, tx, order); aErr != nil {
					return aErr
				}
			}
			// 取消已支付订单不自动改支付状态；退款是独立的人工操作
			order.Status = next
		}
		if in.PaymentStatus != nil {
			next, pErr := model.ParsePaymentStatus(*in.PaymentStatus)
			if pErr != nil {
				return fmt.Errorf("%w: %v", ErrInvalidTransition, pErr)
			}
			if !order.PaymentStatus.CanTransition(next) {
				return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, order.PaymentStatus, next)
			}
			if next == model.PaymentStatusRefunded && order.PaymentStatus == model.PaymentStatusPaid {
				if rErr := s.markPaymentRefunded(ctx, tx, order.ID); rErr != nil {
					return rErr
				}
			}
			order.PaymentStatus = next
		}
		if in.TableID != nil {
			order.TableID = in.TableID
		}
		if in.Lines != nil {
			items, rErr := s.resolveLines(ctx, tx, in.Lines)
			if rErr != nil {
				return rErr
			}
			// 整段替换行项目并按不变量重算总价，已有折扣与外送费保留
			order.Items = items
			order.TotalPrice = round2(maxf(0, items.Subtotal()+order.DeliveryFee-order.DiscountAmount))
		}
		if in.PaymentMethod != nil {
			order.PaymentMethod = *in.PaymentMethod
		}
		if in.Notes != nil {
			order.Notes = *in.Notes
		}

		order.UpdatedAt = time.Now()
		return s.orders.Save(ctx, tx, order)
	})
	if err != nil {
		return nil, err
	}

	s.hub.Broadcast(fmt.Sprintf("Order #%d updated: %s", order.ID, order.Status))
	return order, nil
}

// accrueLoyalty 完成订单时累计积分与消费额（1 货币单位 = 1 分），
// 等级阈值归会员域所有。无会员手机号时跳过。
func (s *OrderService) accrueLoyalty(ctx context.Context, tx *gorm.DB, order *model.Order) error {
	if order.CustomerPhone == "" {
		return nil
	}
	acc, err := s.loyalty.GetByPhone(ctx, tx, order.CustomerPhone)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	now := time.Now()
	acc.Points += int(order.TotalPrice)
	acc.TotalSpent += order.TotalPrice
	acc.TotalVisits++
	acc.LastVisit = &now
	acc.Tier = model.TierFor(acc.TotalSpent)
	return s.loyalty.Save(ctx, tx, acc)
}

// markPaymentRefunded 退款时同步支付记录状态；没有支付记录时仅改订单
func (s *OrderService) markPaymentRefunded(ctx context.Context, tx *gorm.DB, orderID uint) error {
	payment, err := s.payments.GetByOrderID(ctx, tx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	payment.Status = model.TxRefunded
	return tx.WithContext(ctx).Save(payment).Error
}

func (s *OrderService) Get(ctx context.Context, id uint) (*model.Order, error) {
	order, err := s.orders.GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return order, nil
}

func (s *OrderService) List(ctx context.Context, f repository.OrderFilter) ([]*model.Order, error) {
	return s.orders.List(ctx, f)
}

func (s *OrderService) Delete(ctx context.Context, id uint) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return s.orders.Delete(ctx, id)
}

// Stats 最近 days 天的订单统计；营收只计已支付订单
func (s *OrderService) Stats(ctx context.Context, days int) (*OrderStats, error) {
	if days <= 0 {
		days = 7
	}
	orders, err := s.orders.ListSince(ctx, time.Now().AddDate(0, 0, -days))
	if err != nil {
		return nil, err
	}
	stats := &OrderStats{TotalOrders: len(orders)}
	for _, o := range orders {
		switch o.Status {
		case model.OrderStatusCompleted:
			stats.CompletedOrders++
		case model.OrderStatusCancelled:
			stats.CancelledOrders++
		}
		if o.PaymentStatus == model.PaymentStatusPaid {
			stats.TotalRevenue += o.TotalPrice
		}
	}
	if stats.TotalOrders > 0 {
		stats.AverageOrderValue = round2(stats.TotalRevenue / float64(stats.TotalOrders))
	}
	return stats, nil
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
