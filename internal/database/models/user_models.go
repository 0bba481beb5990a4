package models

import "time"

const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

type User struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Email     string    `gorm:"type:varchar(256);uniqueIndex;not null" json:"email"`
	Password  string    `gorm:"not null" json:"-"`
	Name      string    `gorm:"type:varchar(128);not null" json:"name"`
	Phone     *string   `gorm:"type:varchar(32)" json:"phone,omitempty"`
	Role      string    `gorm:"type:varchar(16);not null;default:'customer'" json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}
