package repository

import (
	"gorm.io/gorm"

	"github.com/d60-Lab/restaurant-pos/internal/model"
)

// AutoMigrate 建表
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.Table{},
		&model.MenuItem{},
		&model.Order{},
		&model.Coupon{},
		&model.Payment{},
		&model.PaymentIntent{},
		&model.LoyaltyAccount{},
		&model.DeliverySettings{},
	)
}
