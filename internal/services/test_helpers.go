package services

import (
	"kidswear-backend/internal/domain"
	"kidswear-backend/internal/infra"
)

const (
	TestUserID       = "user_1"
	TestProductID    = "prod_1"
	TestRzpOrderID   = "order_test123"
	TestRzpPaymentID = "pay_test456"
	TestSecret       = "test_secret"
	TestTotalPrice   = 149.99
	TestAmountPaise  = int64(14999)
)

func testItems() []domain.OrderItem {
	return []domain.OrderItem{
		{UserID: TestUserID, ProductID: TestProductID, Quantity: 2},
	}
}

func testGatewayOrder() *infra.GatewayOrder {
	return &infra.GatewayOrder{
		ID:       TestRzpOrderID,
		Amount:   TestAmountPaise,
		Currency: "INR",
		Receipt:  "rcpt_" + TestUserID,
		Status:   "created",
	}
}

func testOrder(payment domain.PaymentStatus, shipping domain.ShippingStatus) *domain.Order {
	return &domain.Order{
		ID:              1,
		UserID:          TestUserID,
		Items:           testItems(),
		TotalPrice:      TestTotalPrice,
		PaymentStatus:   payment,
		ShippingStatus:  shipping,
		RazorpayOrderID: TestRzpOrderID,
	}
}
