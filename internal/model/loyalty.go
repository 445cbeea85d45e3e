package model

import "time"

// LoyaltyAccount 按手机号维度的会员账户。积分余额不允许为负。
type LoyaltyAccount struct {
	ID            uint       `json:"id" gorm:"primaryKey"`
	CustomerPhone string     `json:"customer_phone" gorm:"uniqueIndex;not null"`
	CustomerName  string     `json:"customer_name,omitempty"`
	Points        int        `json:"points" gorm:"not null;default:0"`
	Tier          string     `json:"tier" gorm:"not null;default:'bronze'"` // bronze/silver/gold/platinum
	TotalSpent    float64    `json:"total_spent" gorm:"type:decimal(10,2);not null;default:0"`
	TotalVisits   int        `json:"total_visits" gorm:"not null;default:0"`
	LastVisit     *time.Time `json:"last_visit,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func (LoyaltyAccount) TableName() string { return "loyalty_accounts" }

// TierFor 根据累计消费划分会员等级，阈值归属会员域自身
func TierFor(totalSpent float64) string {
	switch {
	case totalSpent >= 5000:
		return "platinum"
	case totalSpent >= 2000:
		return "gold"
	case totalSpent >= 500:
		return "silver"
	}
	return "bronze"
}
