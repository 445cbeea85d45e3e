package service

import (
	"context"
	"errors"
	"math"
	"time"

	"gorm.io/gorm"

	"github.com/d60-Lab/restaurant-pos/internal/model"
	"github.com/d60-Lab/restaurant-pos/internal/repository"
)

var (
	ErrCouponNotFound     = errors.New("coupon code does not exist")
	ErrCouponInactive     = errors.New("coupon is inactive")
	ErrCouponNotYetActive = errors.New("coupon is not yet active")
	ErrCouponExpired      = errors.New("coupon has expired")
	ErrCouponExhausted    = errors.New("coupon usage limit reached")
	ErrBelowMinimumOrder  = errors.New("order total below coupon minimum")
)

// CouponQuote 校验通过后的折扣结果
type CouponQuote struct {
	Coupon         *model.Coupon `json:"-"`
	DiscountAmount float64       `json:"discount_amount"`
	FinalTotal     float64       `json:"final_total"`
}

// DiscountEngine 优惠券校验与折扣计算。Validate 是纯查询，
// 不产生任何副作用；占用额度走 CouponRepository.ApplyUsage。
type DiscountEngine struct {
	coupons repository.CouponRepository
	now     func() time.Time
}

func NewDiscountEngine(coupons repository.CouponRepository) *DiscountEngine {
	return &DiscountEngine{coupons: coupons, now: time.Now}
}

// Validate 按固定顺序检查，第一个不满足的条件即返回。
func (e *DiscountEngine) Validate(ctx context.Context, code string, subtotal float64, items model.OrderItems) (*CouponQuote, error) {
	coupon, err := e.coupons.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCouponNotFound
		}
		return nil, err
	}

	now := e.now()
	switch {
	case !coupon.IsActive:
		return nil, ErrCouponInactive
	case now.Before(coupon.ValidFrom):
		return nil, ErrCouponNotYetActive
	case coupon.ValidUntil != nil && now.After(*coupon.ValidUntil):
		return nil, ErrCouponExpired
	case coupon.UsageLimit != nil && coupon.UsageCount >= *coupon.UsageLimit:
		return nil, ErrCouponExhausted
	case subtotal < coupon.MinOrderAmount:
		return nil, ErrBelowMinimumOrder
	}

	discount := ComputeDiscount(coupon, subtotal, items)
	return &CouponQuote{
		Coupon:         coupon,
		DiscountAmount: discount,
		FinalTotal:     math.Max(0, subtotal-discount),
	}, nil
}

// ComputeDiscount 按券类型计算折扣金额。
// free_item 券在购物车没有对应商品时折扣为 0，不算错误。
func ComputeDiscount(coupon *model.Coupon, subtotal float64, items model.OrderItems) float64 {
	switch coupon.DiscountType {
	case model.DiscountPercentage:
		d := subtotal * coupon.DiscountValue / 100
		if coupon.MaxDiscountAmount != nil {
			d = math.Min(d, *coupon.MaxDiscountAmount)
		}
		return round2(d)
	case model.DiscountFixed:
		return round2(math.Min(coupon.DiscountValue, subtotal))
	case model.DiscountFreeItem:
		if coupon.FreeItemID == nil {
			return 0
		}
		for _, it := range items {
			if it.ItemID == *coupon.FreeItemID {
				return round2(it.Price)
			}
		}
		return 0
	}
	return 0
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
