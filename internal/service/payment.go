package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/d60-Lab/restaurant-pos/internal/model"
	"github.com/d60-Lab/restaurant-pos/internal/repository"
	"github.com/d60-Lab/restaurant-pos/internal/webhook"
	"github.com/d60-Lab/restaurant-pos/pkg/logger"
)

var (
	ErrPaymentExists   = errors.New("payment already exists for this order")
	ErrPaymentNotFound = errors.New("payment not found")
	ErrIntentNotFound  = errors.New("payment intent not found")
	ErrIntentCancelled = errors.New("payment intent cancelled")
)

// GatewayEvent 网关回调事件体。金额按最小货币单位传输。
type GatewayEvent struct {
	EventType        string `json:"event_type"`
	TransactionID    string `json:"transaction_id"`
	AmountMinorUnits int64  `json:"amount_minor_units"`
	OrderID          uint   `json:"order_id"`
}

// EventPaymentSucceeded 触发对账的事件类型
const EventPaymentSucceeded = "payment_intent.succeeded"

// PaymentService 支付对账：把三种支付完成信号归一成同一个效果 —
// 建支付记录、订单置 paid、记支付方式与外部交易号。
// 每个事件一个事务；事务内不做任何网关网络调用。
type PaymentService struct {
	db       *gorm.DB
	orders   repository.OrderRepository
	payments repository.PaymentRepository
	verifier webhook.Verifier
	hub      Broadcaster
}

func NewPaymentService(
	db *gorm.DB,
	orders repository.OrderRepository,
	payments repository.PaymentRepository,
	verifier webhook.Verifier,
	hub Broadcaster,
) *PaymentService {
	return &PaymentService{db: db, orders: orders, payments: payments, verifier: verifier, hub: hub}
}

// settle 三种来源共用的归一效果，必须在事务内调用。
// 唯一索引兜底并发：重复入账以 gorm.ErrDuplicatedKey 浮出。
func (s *PaymentService) settle(ctx context.Context, tx *gorm.DB, order *model.Order, amount float64, method string, txnID *string) (*model.Payment, error) {
	payment := &model.Payment{
		OrderID:       order.ID,
		Amount:        amount,
		PaymentMethod: method,
		TransactionID: txnID,
		Status:        model.TxCompleted,
	}
	if err := s.payments.Create(ctx, tx, payment); err != nil {
		return nil, err
	}

	order.PaymentStatus = model.PaymentStatusPaid
	order.PaymentMethod = method
	order.UpdatedAt = time.Now()
	if err := s.orders.Save(ctx, tx, order); err != nil {
		return nil, err
	}
	return payment, nil
}

// Record 柜台直接入账。同一订单的第二次入账被拒绝，不覆盖。
func (s *PaymentService) Record(ctx context.Context, orderID uint, amount float64, method string, txnID *string) (*model.Payment, error) {
	var payment *model.Payment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := s.orders.GetByID(ctx, tx, orderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return err
		}
		payment, err = s.settle(ctx, tx, order, amount, method, txnID)
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrPaymentExists
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	s.hub.Broadcast(fmt.Sprintf("Order #%d updated: paid", orderID))
	return payment, nil
}

// HandleWebhook 网关回调。签名不过直接拒绝，无任何副作用。
// 网关是 at-least-once 投递：订单已入账的重复事件按成功处理；
// 订单不存在的事件记录后丢弃，同样返回成功，避免网关无限重试。
func (s *PaymentService) HandleWebhook(ctx context.Context, body []byte, signature string) error {
	if err := s.verifier.Verify(body, signature); err != nil {
		logger.Warn("webhook signature rejected")
		return err
	}

	var event GatewayEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return fmt.Errorf("decode webhook event: %w", err)
	}
	if event.EventType != EventPaymentSucceeded {
		return nil
	}

	var settled bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := s.orders.GetByID(ctx, tx, event.OrderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				logger.Warn("webhook for unknown order, dropped",
					zap.Uint("order_id", event.OrderID),
					zap.String("transaction_id", event.TransactionID))
				return nil
			}
			return err
		}

		txnID := event.TransactionID
		_, err = s.settle(ctx, tx, order, float64(event.AmountMinorUnits)/100, "stripe", &txnID)
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// 重复投递：已有支付记录，维持原状即可
			return nil
		}
		if err == nil {
			settled = true
		}
		return err
	})
	if err != nil {
		return err
	}

	if settled {
		s.hub.Broadcast(fmt.Sprintf("Order #%d updated: paid", event.OrderID))
	}
	return nil
}

// CreateIntent 跳转式在线支付第一步：落一张意向单。
// 网关交互发生在任何存储事务之外。
func (s *PaymentService) CreateIntent(ctx context.Context, orderID uint, provider string) (*model.PaymentIntent, error) {
	order, err := s.orders.GetByID(ctx, nil, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	intent := &model.PaymentIntent{
		ID:       uuid.New().String(),
		OrderID:  order.ID,
		Amount:   order.TotalPrice,
		Provider: provider,
		Status:   model.IntentCreated,
	}
	if err := s.payments.CreateIntent(ctx, intent); err != nil {
		return nil, err
	}
	return intent, nil
}

// ConfirmIntent 跳转回来后的确认调用，应用与其他来源相同的归一效果。
// 重复确认是幂等成功。
func (s *PaymentService) ConfirmIntent(ctx context.Context, intentID string) (*model.PaymentIntent, error) {
	var intent *model.PaymentIntent
	var settled bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		intent, err = s.payments.GetIntent(ctx, tx, intentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrIntentNotFound
			}
			return err
		}
		switch intent.Status {
		case model.IntentCompleted:
			return nil
		case model.IntentCancelled:
			return ErrIntentCancelled
		}

		order, err := s.orders.GetByID(ctx, tx, intent.OrderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return err
		}

		// 订单可能已经从其他渠道入账；这里必须先查再入，不能靠撞
		// 唯一索引兜底——postgres 下失败的 INSERT 会把整个事务置为
		// 中止，后面的意向完结写不进去
		exists, err := s.payments.ExistsForOrder(ctx, tx, intent.OrderID)
		if err != nil {
			return err
		}
		if !exists {
			txnID := intent.ID
			if _, err := s.settle(ctx, tx, order, intent.Amount, intent.Provider, &txnID); err != nil {
				return err
			}
			settled = true
		}

		intent.Status = model.IntentCompleted
		intent.UpdatedAt = time.Now()
		return s.payments.SaveIntent(ctx, tx, intent)
	})
	if err != nil {
		return nil, err
	}

	if settled {
		s.hub.Broadcast(fmt.Sprintf("Order #%d updated: paid", intent.OrderID))
	}
	return intent, nil
}

func (s *PaymentService) Get(ctx context.Context, id uint) (*model.Payment, error) {
	payment, err := s.payments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	return payment, nil
}
