package models

import "time"

type OrderStatus string

const (
	OrderStatusReceived       OrderStatus = "received"
	OrderStatusPreparing      OrderStatus = "preparing"
	OrderStatusOutForDelivery OrderStatus = "out_for_delivery"
	OrderStatusDelivered      OrderStatus = "delivered"
	OrderStatusCancelled      OrderStatus = "cancelled"
)

type PaymentMethod string

const (
	PaymentMethodCash PaymentMethod = "cash"
	PaymentMethodCard PaymentMethod = "card"
)

const PaymentStatusPending = "pending"

type Order struct {
	ID             int64         `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID         *int64        `gorm:"index" json:"userId"`
	CustomerName   string        `gorm:"type:varchar(128);not null" json:"customerName"`
	Address        string        `gorm:"type:text;not null" json:"address"`
	Phone          string        `gorm:"type:varchar(32);not null" json:"phone"`
	Email          *string       `gorm:"type:varchar(256)" json:"email,omitempty"`
	Status         OrderStatus   `gorm:"type:varchar(32);index;not null" json:"status"`
	TotalAmount    int64         `gorm:"not null" json:"totalAmount"`
	DiscountAmount int64         `gorm:"not null;default:0" json:"discountAmount"`
	FinalAmount    int64         `gorm:"not null" json:"finalAmount"`
	PromoCode      *string       `gorm:"type:varchar(64)" json:"promoCode,omitempty"`
	PaymentMethod  PaymentMethod `gorm:"type:varchar(16);not null" json:"paymentMethod"`
	PaymentStatus  string        `gorm:"type:varchar(16);not null" json:"paymentStatus"`
	Notes          *string       `gorm:"type:text" json:"notes,omitempty"`
	CanCancel      bool          `gorm:"not null" json:"canCancel"`
	CreatedAt      time.Time     `json:"createdAt"`
	UpdatedAt      time.Time     `json:"updatedAt"`

	Items []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"`
}

// OrderItem pins the unit price paid at order time. MenuItem is the current
// catalog row and is only used for display.
type OrderItem struct {
	ID         int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID    int64 `gorm:"index;not null" json:"orderId"`
	MenuItemID int64 `gorm:"index;not null" json:"menuItemId"`
	Quantity   int32 `gorm:"not null" json:"quantity"`
	Price      int64 `gorm:"not null" json:"price"`

	MenuItem *MenuItem `gorm:"foreignKey:MenuItemID" json:"menuItem,omitempty"`
}

type OrderStatusLog struct {
	ID        int64       `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID   int64       `gorm:"index;not null" json:"orderId"`
	Status    OrderStatus `gorm:"type:varchar(32);not null" json:"status"`
	CreatedAt time.Time   `json:"createdAt"`
}
