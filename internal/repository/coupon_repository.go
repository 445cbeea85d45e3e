package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/d60-Lab/restaurant-pos/internal/model"
)

// CouponRepository 优惠券仓储接口
type CouponRepository interface {
	Create(ctx context.Context, coupon *model.Coupon) error
	GetByID(ctx context.Context, id uint) (*model.Coupon, error)
	GetByCode(ctx context.Context, code string) (*model.Coupon, error)
	List(ctx context.Context, activeOnly bool, offset, limit int) ([]*model.Coupon, error)
	Save(ctx context.Context, coupon *model.Coupon) error
	Delete(ctx context.Context, id uint) error
	// ApplyUsage 原子地检查余量并占用一次使用额度。
	// 校验和占用必须是同一条语句，否则两个并发订单会同时通过
	// 校验抢走最后一次额度。返回 false 表示额度已耗尽。
	ApplyUsage(ctx context.Context, tx *gorm.DB, couponID uint) (bool, error)
}

type couponRepository struct {
	db *gorm.DB
}

func NewCouponRepository(db *gorm.DB) CouponRepository { return &couponRepository{db: db} }

// NormalizeCode 优惠码统一大写比较
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func (r *couponRepository) Create(ctx context.Context, coupon *model.Coupon) error {
	coupon.Code = NormalizeCode(coupon.Code)
	return r.db.WithContext(ctx).Create(coupon).Error
}

func (r *couponRepository) GetByID(ctx context.Context, id uint) (*model.Coupon, error) {
	var c model.Coupon
	if err := r.db.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *couponRepository) GetByCode(ctx context.Context, code string) (*model.Coupon, error) {
	var c model.Coupon
	err := r.db.WithContext(ctx).Where("code = ?", NormalizeCode(code)).First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *couponRepository) List(ctx context.Context, activeOnly bool, offset, limit int) ([]*model.Coupon, error) {
	q := r.db.WithContext(ctx).Model(&model.Coupon{})
	if activeOnly {
		q = q.Where("is_active = ?", true).
			Where("valid_until IS NULL OR valid_until > CURRENT_TIMESTAMP")
	}
	if limit <= 0 {
		limit = 100
	}
	var coupons []*model.Coupon
	if err := q.Offset(offset).Limit(limit).Find(&coupons).Error; err != nil {
		return nil, err
	}
	return coupons, nil
}

func (r *couponRepository) Save(ctx context.Context, coupon *model.Coupon) error {
	return r.db.WithContext(ctx).Save(coupon).Error
}

func (r *couponRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&model.Coupon{}, id).Error
}

func (r *couponRepository) ApplyUsage(ctx context.Context, tx *gorm.DB, couponID uint) (bool, error) {
	db := tx
	if db == nil {
		db = r.db
	}
	res := db.WithContext(ctx).Model(&model.Coupon{}).
		Where("id = ?", couponID).
		Where("usage_limit IS NULL OR usage_count < usage_limit").
		UpdateColumn("usage_count", gorm.Expr("usage_count + 1"))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
