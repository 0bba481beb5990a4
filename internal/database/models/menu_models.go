package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type MenuItem struct {
	ID            int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	Name          string          `gorm:"type:varchar(128);not null" json:"name"`
	Description   string          `gorm:"type:text;not null" json:"description"`
	Price         int64           `gorm:"not null" json:"price"`
	ImageURL      string          `gorm:"type:varchar(512);not null" json:"imageUrl"`
	Category      string          `gorm:"type:varchar(64);index;not null" json:"category"`
	IsAvailable   bool            `gorm:"not null" json:"isAvailable"`
	AverageRating decimal.Decimal `gorm:"type:numeric(4,2);not null;default:0" json:"averageRating"`
	TotalReviews  int64           `gorm:"not null;default:0" json:"totalReviews"`
	OrderCount    int64           `gorm:"not null;default:0" json:"orderCount"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
	DeletedAt     gorm.DeletedAt  `gorm:"index" json:"-"`
}

type Review struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	MenuItemID int64     `gorm:"index;not null" json:"menuItemId"`
	UserID     *int64    `gorm:"index" json:"userId,omitempty"`
	OrderID    *int64    `json:"orderId,omitempty"`
	Rating     int32     `gorm:"not null" json:"rating"`
	Comment    *string   `gorm:"type:text" json:"comment,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}
