package model

import "time"

// Table 餐桌
type Table struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Number    int       `json:"number" gorm:"uniqueIndex;not null"`
	Seats     int       `json:"seats" gorm:"not null;default:4"`
	Status    string    `json:"status" gorm:"not null;default:'free'"` // free | occupied | reserved
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Table) TableName() string { return "tables" }
