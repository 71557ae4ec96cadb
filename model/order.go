package model

import (
	"time"
)

const OrderStatusPending = "Pending"

// Order is a bakery order. OrderID is the customer facing identifier and is
// what the orders API addresses rows by.
type Order struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	OrderID      string     `gorm:"size:100;uniqueIndex;not null" json:"order_id"`
	CustomerName string     `gorm:"size:255;not null" json:"customer_name"`
	Product      string     `gorm:"size:255;not null" json:"product"`
	Quantity     int        `gorm:"not null;default:1" json:"quantity"`
	OrderDate    *time.Time `gorm:"type:date" json:"order_date,omitempty"`
	Status       string     `gorm:"size:50;not null;default:Pending" json:"status"`
	CreatedAt    time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (Order) TableName() string {
	return "orders"
}
