package domain

import "time"

// OrderCreatedEvent is published after a checkout produced a local order.
type OrderCreatedEvent struct {
	OrderID         uint64    `json:"order_id"`
	UserID          string    `json:"user_id"`
	RazorpayOrderID string    `json:"razorpay_order_id"`
	TotalPrice      float64   `json:"total_price"`
	CreatedAt       time.Time `json:"created_at"`
}

// PaymentEvent is published whenever an order's payment status changes,
// whether from client-side verification or a gateway webhook.
type PaymentEvent struct {
	RazorpayOrderID   string        `json:"razorpay_order_id"`
	RazorpayPaymentID string        `json:"razorpay_payment_id,omitempty"`
	Status            PaymentStatus `json:"status"`
	Source            string        `json:"source"` // "verify" or "webhook"
}
