package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/d60-Lab/restaurant-pos/internal/model"
)

// PaymentRepository 支付记录与在线支付意向仓储
type PaymentRepository interface {
	Create(ctx context.Context, tx *gorm.DB, payment *model.Payment) error
	GetByID(ctx context.Context, id uint) (*model.Payment, error)
	GetByOrderID(ctx context.Context, tx *gorm.DB, orderID uint) (*model.Payment, error)
	ExistsForOrder(ctx context.Context, tx *gorm.DB, orderID uint) (bool, error)

	CreateIntent(ctx context.Context, intent *model.PaymentIntent) error
	GetIntent(ctx context.Context, tx *gorm.DB, id string) (*model.PaymentIntent, error)
	SaveIntent(ctx context.Context, tx *gorm.DB, intent *model.PaymentIntent) error
}

type paymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) PaymentRepository { return &paymentRepository{db: db} }

func (r *paymentRepository) pick(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

// Create 依赖 payments.order_id 的唯一索引；并发重复写入由调用方
// 通过 gorm.ErrDuplicatedKey 识别。
func (r *paymentRepository) Create(ctx context.Context, tx *gorm.DB, payment *model.Payment) error {
	return r.pick(tx).WithContext(ctx).Create(payment).Error
}

func (r *paymentRepository) GetByID(ctx context.Context, id uint) (*model.Payment, error) {
	var p model.Payment
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *paymentRepository) GetByOrderID(ctx context.Context, tx *gorm.DB, orderID uint) (*model.Payment, error) {
	var p model.Payment
	err := r.pick(tx).WithContext(ctx).Where("order_id = ?", orderID).First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *paymentRepository) ExistsForOrder(ctx context.Context, tx *gorm.DB, orderID uint) (bool, error) {
	var count int64
	err := r.pick(tx).WithContext(ctx).Model(&model.Payment{}).
		Where("order_id = ?", orderID).Count(&count).Error
	return count > 0, err
}

func (r *paymentRepository) CreateIntent(ctx context.Context, intent *model.PaymentIntent) error {
	return r.db.WithContext(ctx).Create(intent).Error
}

func (r *paymentRepository) GetIntent(ctx context.Context, tx *gorm.DB, id string) (*model.PaymentIntent, error) {
	var in model.PaymentIntent
	err := r.pick(tx).WithContext(ctx).Where("id = ?", id).First(&in).Error
	if err != nil {
		return nil, err
	}
	return &in, nil
}

func (r *paymentRepository) SaveIntent(ctx context.Context, tx *gorm.DB, intent *model.PaymentIntent) error {
	return r.pick(tx).WithContext(ctx).Save(intent).Error
}
