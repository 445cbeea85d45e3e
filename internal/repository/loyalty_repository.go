package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/d60-Lab/restaurant-pos/internal/model"
)

// LoyaltyRepository 会员账户仓储
type LoyaltyRepository interface {
	Create(ctx context.Context, account *model.LoyaltyAccount) error
	GetByPhone(ctx context.Context, tx *gorm.DB, phone string) (*model.LoyaltyAccount, error)
	Save(ctx context.Context, tx *gorm.DB, account *model.LoyaltyAccount) error
	// RedeemPoints 原子扣减：余额校验与扣减同一条语句，余额不会为负。
	// 返回 false 表示积分不足。
	RedeemPoints(ctx context.Context, tx *gorm.DB, phone string, points int) (bool, error)
}

type loyaltyRepository struct {
	db *gorm.DB
}

func NewLoyaltyRepository(db *gorm.DB) LoyaltyRepository { return &loyaltyRepository{db: db} }

func (r *loyaltyRepository) pick(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *loyaltyRepository) Create(ctx context.Context, account *model.LoyaltyAccount) error {
	return r.db.WithContext(ctx).Create(account).Error
}

func (r *loyaltyRepository) GetByPhone(ctx context.Context, tx *gorm.DB, phone string) (*model.LoyaltyAccount, error) {
	var acc model.LoyaltyAccount
	err := r.pick(tx).WithContext(ctx).Where("customer_phone = ?", phone).First(&acc).Error
	if err != nil {
		return nil, err
	}
	return &acc, nil
}

func (r *loyaltyRepository) Save(ctx context.Context, tx *gorm.DB, account *model.LoyaltyAccount) error {
	return r.pick(tx).WithContext(ctx).Save(account).Error
}

func (r *loyaltyRepository) RedeemPoints(ctx context.Context, tx *gorm.DB, phone string, points int) (bool, error) {
	res := r.pick(tx).WithContext(ctx).Model(&model.LoyaltyAccount{}).
		Where("customer_phone = ?", phone).
		Where("points >= ?", points).
		UpdateColumn("points", gorm.Expr("points - ?", points))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
