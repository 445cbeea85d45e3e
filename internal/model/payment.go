package model

import "time"

// TxStatus 支付记录状态
type TxStatus string

const (
	TxPending   TxStatus = "pending"
	TxCompleted TxStatus = "completed"
	TxFailed    TxStatus = "failed"
	TxRefunded  TxStatus = "refunded"
)

// Payment 支付记录，与订单一对一。
// order_id 上的唯一索引是"一单一付"不变量的最终执行者：
// 并发的重复入账靠它兜底，上层把冲突翻译成幂等结果。
type Payment struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	OrderID       uint      `json:"order_id" gorm:"uniqueIndex;not null"`
	Amount        float64   `json:"amount" gorm:"type:decimal(10,2);not null"`
	PaymentMethod string    `json:"payment_method" gorm:"not null"` // cash, card, stripe, paypal
	TransactionID *string   `json:"transaction_id,omitempty"`       // external gateway id, nil for cash
	Status        TxStatus  `json:"status" gorm:"type:varchar(16);not null;default:'completed'"`
	CreatedAt     time.Time `json:"created_at" gorm:"not null"`
}

func (Payment) TableName() string { return "payments" }

// IntentStatus 在线支付意向状态
type IntentStatus string

const (
	IntentCreated   IntentStatus = "created"
	IntentCompleted IntentStatus = "completed"
	IntentCancelled IntentStatus = "cancelled"
)

// PaymentIntent 跳转式在线支付的意向单：先带着订单号和金额建意向，
// 客户在网关侧完成后再回调确认。
type PaymentIntent struct {
	ID        string       `json:"id" gorm:"primaryKey"` // uuid
	OrderID   uint         `json:"order_id" gorm:"index;not null"`
	Amount    float64      `json:"amount" gorm:"type:decimal(10,2);not null"`
	Provider  string       `json:"provider" gorm:"not null"` // stripe, paypal
	Status    IntentStatus `json:"status" gorm:"type:varchar(16);not null;default:'created'"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

func (PaymentIntent) TableName() string { return "payment_intents" }
