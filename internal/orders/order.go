package orders

import (
	"time"

	"github.com/google/uuid"
)

type OrderStatus string

const (
	OrderStatusConfirmed      OrderStatus = "CONFIRMED"
	OrderStatusProcessing     OrderStatus = "PROCESSING"
	OrderStatusOutForDelivery OrderStatus = "OUT_FOR_DELIVERY"
	OrderStatusDelivered      OrderStatus = "DELIVERED"
)

type OrderItem struct {
	ProductID int64  `json:"product_id"`
	Title     string `json:"title"`
	UnitPrice int64  `json:"unit_price"`
	Quantity  int    `json:"quantity"`
	Image     string `json:"image"`
}

// Order is the persisted record of a completed checkout. Amounts are in
// paise; TotalAmount = Subtotal + DeliveryFee.
type Order struct {
	ID             uuid.UUID
	UserID         string
	IdempotencyKey string
	Items          []OrderItem
	Subtotal       int64
	DeliveryFee    int64
	TotalAmount    int64
	Currency       string
	TimeSlot       string
	PaymentMethod  string
	PaymentID      string
	Status         OrderStatus
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
