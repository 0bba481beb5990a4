package models

import "time"

type DiscountType string

const (
	DiscountTypePercentage DiscountType = "percentage"
	DiscountTypeFixed      DiscountType = "fixed"
)

type PromoCode struct {
	ID            int64        `gorm:"primaryKey;autoIncrement" json:"id"`
	Code          string       `gorm:"type:varchar(64);uniqueIndex;not null" json:"code"`
	DiscountType  DiscountType `gorm:"type:varchar(16);not null" json:"discountType"`
	DiscountValue int64        `gorm:"not null" json:"discountValue"`
	MinimumOrder  int64        `gorm:"not null;default:0" json:"minimumOrder"`
	MaxUses       *int64       `json:"maxUses"`
	UsedCount     int64        `gorm:"not null;default:0" json:"usedCount"`
	ExpiresAt     *time.Time   `json:"expiresAt"`
	IsActive      bool         `gorm:"not null" json:"isActive"`
	CreatedAt     time.Time    `json:"createdAt"`
}
