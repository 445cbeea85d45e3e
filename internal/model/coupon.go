package model

import "time"

// DiscountType 优惠类型
type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
	DiscountFreeItem   DiscountType = "free_item"
)

// Coupon 优惠券。code 统一大写存储；usage_count 只增不减。
type Coupon struct {
	ID                uint         `json:"id" gorm:"primaryKey"`
	Code              string       `json:"code" gorm:"uniqueIndex;not null"`
	Description       string       `json:"description,omitempty"`
	DiscountType      DiscountType `json:"discount_type" gorm:"type:varchar(16);not null"`
	DiscountValue     float64      `json:"discount_value" gorm:"type:decimal(10,2);not null"`
	MinOrderAmount    float64      `json:"min_order_amount" gorm:"type:decimal(10,2);not null;default:0"`
	MaxDiscountAmount *float64     `json:"max_discount_amount,omitempty" gorm:"type:decimal(10,2)"`
	UsageLimit        *int         `json:"usage_limit,omitempty"` // NULL = unlimited
	UsageCount        int          `json:"usage_count" gorm:"not null;default:0"`
	ValidFrom         time.Time    `json:"valid_from" gorm:"not null"`
	ValidUntil        *time.Time   `json:"valid_until,omitempty"`
	IsActive          bool         `json:"is_active" gorm:"not null;default:true"`
	FreeItemID        *uint        `json:"free_item_id,omitempty"`
	CreatedAt         time.Time    `json:"created_at"`
	UpdatedAt         time.Time    `json:"updated_at"`
}

func (Coupon) TableName() string { return "coupons" }
