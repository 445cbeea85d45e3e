package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/d60-Lab/restaurant-pos/internal/model"
)

// OrderFilter 订单列表过滤条件
type OrderFilter struct {
	Status  model.OrderStatus
	TableID *uint
	Offset  int
	Limit   int
}

// OrderRepository 订单仓储接口。接受可选事务句柄，
// 让服务层把多表写入收进同一个事务。
type OrderRepository interface {
	Create(ctx context.Context, tx *gorm.DB, order *model.Order) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*model.Order, error)
	List(ctx context.Context, f OrderFilter) ([]*model.Order, error)
	Save(ctx context.Context, tx *gorm.DB, order *model.Order) error
	Delete(ctx context.Context, id uint) error
	ListSince(ctx context.Context, since time.Time) ([]*model.Order, error)
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository { return &orderRepository{db: db} }

func (r *orderRepository) pick(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *orderRepository) Create(ctx context.Context, tx *gorm.DB, order *model.Order) error {
	return r.pick(tx).WithContext(ctx).Create(order).Error
}

func (r *orderRepository) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*model.Order, error) {
	var order model.Order
	if err := r.pick(tx).WithContext(ctx).First(&order, id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) List(ctx context.Context, f OrderFilter) ([]*model.Order, error) {
	q := r.db.WithContext(ctx).Model(&model.Order{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.TableID != nil {
		q = q.Where("table_id = ?", *f.TableID)
	}
	if f.Limit <= 0 {
		f.Limit = 100
	}
	var orders []*model.Order
	err := q.Order("created_at DESC").Offset(f.Offset).Limit(f.Limit).Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *orderRepository) Save(ctx context.Context, tx *gorm.DB, order *model.Order) error {
	return r.pick(tx).WithContext(ctx).Save(order).Error
}

func (r *orderRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&model.Order{}, id).Error
}

// ListSince 拉取某时刻之后创建的订单，供统计用
func (r *orderRepository) ListSince(ctx context.Context, since time.Time) ([]*model.Order, error) {
	var orders []*model.Order
	err := r.db.WithContext(ctx).Where("created_at >= ?", since).Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}
