package model

// DeliverySettings 外送配置，单行表，定价时整体读取一次快照
type DeliverySettings struct {
	ID                    uint    `json:"id" gorm:"primaryKey"`
	DeliveryEnabled       bool    `json:"delivery_enabled" gorm:"not null;default:true"`
	DeliveryFee           float64 `json:"delivery_fee" gorm:"type:decimal(10,2);not null;default:5"`
	FreeDeliveryThreshold float64 `json:"free_delivery_threshold" gorm:"type:decimal(10,2);not null;default:50"`
	MinOrderAmount        float64 `json:"min_order_amount" gorm:"type:decimal(10,2);not null;default:15"`
}

func (DeliverySettings) TableName() string { return "delivery_settings" }

// DefaultDeliverySettings 初始配置（与初始建库一致）
func DefaultDeliverySettings() DeliverySettings {
	return DeliverySettings{
		DeliveryEnabled:       true,
		DeliveryFee:           5.0,
		FreeDeliveryThreshold: 50.0,
		MinOrderAmount:        15.0,
	}
}
