package models

import "time"

// Order status lifecycle: pending -> confirmed -> completed, or pending -> cancelled.
const (
	OrderStatusPending   = "pending"
	OrderStatusConfirmed = "confirmed"
	OrderStatusCompleted = "completed"
	OrderStatusCancelled = "cancelled"
)

type Order struct {
	ID              uint        `gorm:"primaryKey" json:"id"`
	CustomerName    string      `gorm:"type:varchar(255);not null" json:"customer_name"`
	CustomerPhone   string      `gorm:"type:varchar(50);not null" json:"customer_phone"`
	DeliveryAddress *string     `gorm:"type:text" json:"delivery_address,omitempty"`
	TotalAmount     float64     `gorm:"type:decimal(10,2);not null" json:"total_amount"`
	PaymentProofURL *string     `gorm:"type:varchar(500)" json:"payment_proof_url,omitempty"`
	DeviceID        *string     `gorm:"type:varchar(255);index" json:"device_id,omitempty"`
	Status          string      `gorm:"type:varchar(50);not null;default:'pending'" json:"status"`
	CreatedAt       time.Time   `gorm:"not null" json:"created_at"`
	UpdatedAt       time.Time   `gorm:"not null" json:"updated_at"`
	OrderItems      []OrderItem `gorm:"foreignKey:OrderID" json:"order_items"`
}
