package service

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/d60-Lab/restaurant-pos/internal/model"
	"github.com/d60-Lab/restaurant-pos/internal/repository"
)

var (
	ErrCouponCodeTaken  = errors.New("coupon code already exists")
	ErrCouponIDNotFound = errors.New("coupon not found")
)

// CouponService 优惠券管理（admin CRUD）与公开的校验预览
type CouponService struct {
	coupons repository.CouponRepository
	engine  *DiscountEngine
}

func NewCouponService(coupons repository.CouponRepository, engine *DiscountEngine) *CouponService {
	return &CouponService{coupons: coupons, engine: engine}
}

// CreateCouponInput 建券入参
type CreateCouponInput struct {
	Code              string
	Description       string
	DiscountType      model.DiscountType
	DiscountValue     float64
	MinOrderAmount    float64
	MaxDiscountAmount *float64
	UsageLimit        *int
	ValidFrom         *time.Time
	ValidUntil        *time.Time
	IsActive          bool
	FreeItemID        *uint
}

func (s *CouponService) Create(ctx context.Context, in CreateCouponInput) (*model.Coupon, error) {
	if _, err := s.coupons.GetByCode(ctx, in.Code); err == nil {
		return nil, ErrCouponCodeTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	validFrom := time.Now()
	if in.ValidFrom != nil {
		validFrom = *in.ValidFrom
	}
	coupon := &model.Coupon{
		Code:              in.Code,
		Description:       in.Description,
		DiscountType:      in.DiscountType,
		DiscountValue:     in.DiscountValue,
		MinOrderAmount:    in.MinOrderAmount,
		MaxDiscountAmount: in.MaxDiscountAmount,
		UsageLimit:        in.UsageLimit,
		ValidFrom:         validFrom,
		ValidUntil:        in.ValidUntil,
		IsActive:          in.IsActive,
		FreeItemID:        in.FreeItemID,
	}
	if err := s.coupons.Create(ctx, coupon); err != nil {
		return nil, err
	}
	return coupon, nil
}

func (s *CouponService) Get(ctx context.Context, id uint) (*model.Coupon, error) {
	coupon, err := s.coupons.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCouponIDNotFound
		}
		return nil, err
	}
	return coupon, nil
}

func (s *CouponService) List(ctx context.Context, activeOnly bool, offset, limit int) ([]*model.Coupon, error) {
	return s.coupons.List(ctx, activeOnly, offset, limit)
}

// UpdateCouponInput nil 字段不改。usage_count 不可通过更新修改。
type UpdateCouponInput struct {
	Description       *string
	DiscountType      *model.DiscountType
	DiscountValue     *float64
	MinOrderAmount    *float64
	MaxDiscountAmount *float64
	UsageLimit        *int
	ValidFrom         *time.Time
	ValidUntil        *time.Time
	IsActive          *bool
	FreeItemID        *uint
}

func (s *CouponService) Update(ctx context.Context, id uint, in UpdateCouponInput) (*model.Coupon, error) {
	coupon, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Description != nil {
		coupon.Description = *in.Description
	}
	if in.DiscountType != nil {
		coupon.DiscountType = *in.DiscountType
	}
	if in.DiscountValue != nil {
		coupon.DiscountValue = *in.DiscountValue
	}
	if in.MinOrderAmount != nil {
		coupon.MinOrderAmount = *in.MinOrderAmount
	}
	if in.MaxDiscountAmount != nil {
		coupon.MaxDiscountAmount = in.MaxDiscountAmount
	}
	if in.UsageLimit != nil {
		coupon.UsageLimit = in.UsageLimit
	}
	if in.ValidFrom != nil {
		coupon.ValidFrom = *in.ValidFrom
	}
	if in.ValidUntil != nil {
		coupon.ValidUntil = in.ValidUntil
	}
	if in.IsActive != nil {
		coupon.IsActive = *in.IsActive
	}
	if in.FreeItemID != nil {
		coupon.FreeItemID = in.FreeItemID
	}
	if err := s.coupons.Save(ctx, coupon); err != nil {
		return nil, err
	}
	return coupon, nil
}

func (s *CouponService) Delete(ctx context.Context, id uint) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return s.coupons.Delete(ctx, id)
}

// Validate 纯预览：不占用额度，客户端下单前试算折扣用
func (s *CouponService) Validate(ctx context.Context, code string, subtotal float64, items model.OrderItems) (*CouponQuote, error) {
	return s.engine.Validate(ctx, code, subtotal, items)
}
