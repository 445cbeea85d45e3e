package model

import "time"

// MenuItem 菜单条目。下单时只读取一次 price/name/availability，
// 之后订单持有冻结快照。
type MenuItem struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"not null"`
	Description string    `json:"description,omitempty"`
	Category    string    `json:"category" gorm:"index"`
	Price       float64   `json:"price" gorm:"type:decimal(10,2);not null"`
	IsAvailable bool      `json:"is_available" gorm:"not null;default:true"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (MenuItem) TableName() string { return "menu_items" }
