package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// OrderItem 下单时冻结的行项目快照：单价取自下单时刻的菜单，
// 之后菜单改价不影响已有订单。
type OrderItem struct {
	ItemID   uint    `json:"item_id"`
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

// OrderItems 以 JSON 整体存储，只允许整段替换，不做原地修改
type OrderItems []OrderItem

func (items OrderItems) Value() (driver.Value, error) {
	return json.Marshal(items)
}

func (items *OrderItems) Scan(value interface{}) error {
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, items)
	case string:
		return json.Unmarshal([]byte(v), items)
	case nil:
		*items = nil
		return nil
	}
	return fmt.Errorf("unsupported order items column type %T", value)
}

// Subtotal 行项目小计
func (items OrderItems) Subtotal() float64 {
	var sum float64
	for _, it := range items {
		sum += float64(it.Quantity) * it.Price
	}
	return sum
}

// Order 订单模型
type Order struct {
	ID              uint          `json:"id" gorm:"primaryKey"`
	OrderType       OrderType     `json:"order_type" gorm:"type:varchar(16);not null;default:'dine_in'"`
	TableID         *uint         `json:"table_id" gorm:"index"`
	CreatedBy       uint          `json:"created_by" gorm:"index;not null"`
	Items           OrderItems    `json:"items" gorm:"type:json;not null"`
	TotalPrice      float64       `json:"total_price" gorm:"type:decimal(10,2);not null"`
	DeliveryFee     float64       `json:"delivery_fee" gorm:"type:decimal(10,2);not null;default:0"`
	CouponCode      string        `json:"coupon_code,omitempty"`
	DiscountAmount  float64       `json:"discount_amount" gorm:"type:decimal(10,2);not null;default:0"`
	Status          OrderStatus   `json:"status" gorm:"type:varchar(16);index;not null;default:'pending'"`
	PaymentStatus   PaymentStatus `json:"payment_status" gorm:"type:varchar(16);index;not null;default:'unpaid'"`
	PaymentMethod   string        `json:"payment_method,omitempty"` // cash, card, stripe, paypal
	Notes           string        `json:"notes,omitempty"`
	CustomerName    string        `json:"customer_name,omitempty"`
	CustomerPhone   string        `json:"customer_phone,omitempty"`
	DeliveryAddress string        `json:"delivery_address,omitempty"`
	CreatedAt       time.Time     `json:"created_at" gorm:"index;not null"`
	UpdatedAt       time.Time     `json:"updated_at" gorm:"not null"`
}

func (Order) TableName() string { return "orders" }
