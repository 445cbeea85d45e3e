package service

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/d60-Lab/restaurant-pos/internal/model"
	"github.com/d60-Lab/restaurant-pos/internal/repository"
)

// LoyaltyService 会员账户：注册、查询、积分兑换预览。
// 下单时的实际扣分在订单事务里原子完成。
type LoyaltyService struct {
	loyalty    repository.LoyaltyRepository
	pointValue float64
}

func NewLoyaltyService(loyalty repository.LoyaltyRepository, pointValue float64) *LoyaltyService {
	if pointValue <= 0 {
		pointValue = 0.10
	}
	return &LoyaltyService{loyalty: loyalty, pointValue: pointValue}
}

// Enroll 按手机号注册；已存在则返回现有账户
func (s *LoyaltyService) Enroll(ctx context.Context, phone, name string) (*model.LoyaltyAccount, error) {
	if acc, err := s.loyalty.GetByPhone(ctx, nil, phone); err == nil {
		return acc, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	acc := &model.LoyaltyAccount{CustomerPhone: phone, CustomerName: name, Tier: "bronze"}
	if err := s.loyalty.Create(ctx, acc); err != nil {
		return nil, err
	}
	return acc, nil
}

func (s *LoyaltyService) Get(ctx context.Context, phone string) (*model.LoyaltyAccount, error) {
	acc, err := s.loyalty.GetByPhone(ctx, nil, phone)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLoyaltyAccountNotFound
		}
		return nil, err
	}
	return acc, nil
}

// RedeemValue 积分对应的折扣金额，固定兑换率
func (s *LoyaltyService) RedeemValue(points int) float64 {
	return round2(float64(points) * s.pointValue)
}
