package models

import "time"

// Order statuses.
const (
	OrderStatusPending    = "pending"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
)

// CustomerInfo is the delivery information typed in at checkout.
type CustomerInfo struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone" validate:"required"`
	Address string `json:"address" validate:"required"`
}

// OrderItem represents a single item within an order.
type OrderItem struct {
	ID        uint   `json:"-" gorm:"primaryKey;autoIncrement"`
	OrderID   string `json:"order_id" gorm:"index;type:varchar(36)"`
	ProductID string `json:"product_id" gorm:"type:varchar(36)"`
	Quantity  int    `json:"quantity"`
	Price     int64  `json:"price"` // Price at the time of order
}

// Order represents a customer order recorded by the payment flow.
type Order struct {
	ID              string      `json:"id" gorm:"primaryKey;type:varchar(36)"`
	CustomerName    string      `json:"customer_name"`
	CustomerEmail   string      `json:"customer_email"`
	CustomerPhone   string      `json:"customer_phone"`
	CustomerAddress string      `json:"customer_address"`
	Items           []OrderItem `json:"items" gorm:"foreignKey:OrderID"`
	TotalAmount     int64       `json:"total_amount"`
	PaymentMethod   string      `json:"payment_method"`
	Status          string      `json:"status"`         // e.g., "pending", "processing", "shipped", "delivered", "cancelled"
	PaymentStatus   string      `json:"payment_status"` // "pending" until a provider confirms
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}
