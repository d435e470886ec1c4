package domain

import (
	"errors"
	"time"
)

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

// allowedFrom lists the statuses an order may move out of to reach the key.
var allowedFrom = map[PaymentStatus][]PaymentStatus{
	PaymentPaid:     {PaymentPending},
	PaymentFailed:   {PaymentPending},
	PaymentRefunded: {PaymentPaid},
}

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPending, PaymentPaid, PaymentFailed, PaymentRefunded:
		return true
	}
	return false
}

// TransitionsFrom returns the prior statuses from which s is reachable.
// Empty means s is never a transition target (pending is initial only).
func (s PaymentStatus) TransitionsFrom() []PaymentStatus {
	return allowedFrom[s]
}

type ShippingStatus string

const (
	ShippingPending    ShippingStatus = "pending"
	ShippingProcessing ShippingStatus = "processing"
	ShippingShipped    ShippingStatus = "shipped"
	ShippingDelivered  ShippingStatus = "delivered"
	ShippingCancelled  ShippingStatus = "cancelled"
)

var shippingRank = map[ShippingStatus]int{
	ShippingPending:    0,
	ShippingProcessing: 1,
	ShippingShipped:    2,
	ShippingDelivered:  3,
	ShippingCancelled:  4,
}

func (s ShippingStatus) Valid() bool {
	_, ok := shippingRank[s]
	return ok
}

// Advances reports whether moving from s to next goes forward.
func (s ShippingStatus) Advances(next ShippingStatus) bool {
	return shippingRank[next] >= shippingRank[s]
}

var (
	ErrNoItems       = errors.New("order must contain at least one item")
	ErrBadQuantity   = errors.New("item quantity must be at least 1")
	ErrNegativeTotal = errors.New("total price must not be negative")
)

type Order struct {
	ID                uint64         `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID            string         `json:"user_id" gorm:"size:64;not null;index"`
	Items             []OrderItem    `json:"items" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	TotalPrice        float64        `json:"total_price" gorm:"not null"`
	PaymentStatus     PaymentStatus  `json:"payment_status" gorm:"type:varchar(20);not null;default:'pending';index"`
	ShippingStatus    ShippingStatus `json:"shipping_status" gorm:"type:varchar(20);not null;default:'pending'"`
	RazorpayOrderID   string         `json:"razorpay_order_id" gorm:"size:64;not null;uniqueIndex"`
	RazorpayPaymentID string         `json:"razorpay_payment_id,omitempty" gorm:"size:64"`
	CreatedAt         time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt         time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
}

type OrderItem struct {
	ID        uint64 `json:"-" gorm:"primaryKey;autoIncrement"`
	OrderID   uint64 `json:"-" gorm:"not null;index"`
	UserID    string `json:"user_id" gorm:"size:64;not null"`
	ProductID string `json:"product_id" gorm:"size:64;not null"`
	Quantity  int    `json:"quantity" gorm:"not null"`
}

// NewOrder validates the checkout input and builds a pending order.
// The razorpay order id is filled in by the orchestrator once the
// gateway (or the mock fallback) has produced one.
func NewOrder(userID string, items []OrderItem, totalPrice float64) (*Order, error) {
	if len(items) == 0 {
		return nil, ErrNoItems
	}
	for _, it := range items {
		if it.Quantity < 1 {
			return nil, ErrBadQuantity
		}
	}
	if totalPrice < 0 {
		return nil, ErrNegativeTotal
	}
	return &Order{
		UserID:         userID,
		Items:          items,
		TotalPrice:     totalPrice,
		PaymentStatus:  PaymentPending,
		ShippingStatus: ShippingPending,
	}, nil
}
