package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"kidswear-backend/internal/domain"
	"kidswear-backend/internal/infra"
	"kidswear-backend/internal/metrics"
	"kidswear-backend/internal/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newTestPaymentService(repo *mocks.MockOrderRepository, gateway *mocks.MockGatewayClient, pub *mocks.MockPublisher, secret string) *PaymentService {
	return NewPaymentService(repo, gateway, pub, metrics.NewTestPaymentMetrics(), secret)
}

func TestPaiseFromRupees(t *testing.T) {
	tests := []struct {
		rupees float64
		paise  int64
	}{
		{0, 0},
		{1, 100},
		{149.99, 14999},
		{99.999, 10000},
		{0.004, 0},
		{0.005, 1},
		{2499.50, 249950},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.paise, PaiseFromRupees(tt.rupees), "rupees=%v", tt.rupees)
	}
}

func TestPaymentService_CreateOrder(t *testing.T) {
	tests := []struct {
		name          string
		userID        string
		items         []domain.OrderItem
		totalPrice    float64
		setupMocks    func(*mocks.MockOrderRepository, *mocks.MockGatewayClient, *mocks.MockPublisher)
		expectedError error
		expectSaved   bool
		expectNoSave  bool
	}{
		{
			name:       "successful creation via gateway",
			userID:     TestUserID,
			items:      testItems(),
			totalPrice: TestTotalPrice,
			setupMocks: func(repo *mocks.MockOrderRepository, gateway *mocks.MockGatewayClient, pub *mocks.MockPublisher) {
				gateway.On("CreateOrder", mock.Anything, TestAmountPaise, "INR", "rcpt_"+TestUserID).
					Return(testGatewayOrder(), nil)
				gateway.On("KeyID").Return("rzp_live_key")
				repo.On("Save", mock.Anything, mock.AnythingOfType("*domain.Order")).Return(nil).Run(func(args mock.Arguments) {
					order := args.Get(1).(*domain.Order)
					order.ID = 1
				})
				pub.On("Publish", mock.Anything, "order.created", mock.Anything).Return(nil).Maybe()
			},
			expectSaved: true,
		},
		{
			name:       "gateway failure leaves no order behind",
			userID:     TestUserID,
			items:      testItems(),
			totalPrice: TestTotalPrice,
			setupMocks: func(repo *mocks.MockOrderRepository, gateway *mocks.MockGatewayClient, pub *mocks.MockPublisher) {
				gateway.On("CreateOrder", mock.Anything, TestAmountPaise, "INR", "rcpt_"+TestUserID).
					Return(nil, &infra.GatewayError{StatusCode: 502, Body: `{"error":"upstream down"}`})
			},
			expectedError: &infra.GatewayError{StatusCode: 502, Body: `{"error":"upstream down"}`},
			expectNoSave:  true,
		},
		{
			name:          "empty items rejected before any side effect",
			userID:        TestUserID,
			items:         nil,
			totalPrice:    TestTotalPrice,
			setupMocks:    func(*mocks.MockOrderRepository, *mocks.MockGatewayClient, *mocks.MockPublisher) {},
			expectedError: domain.ErrNoItems,
			expectNoSave:  true,
		},
		{
			name:          "zero quantity rejected",
			userID:        TestUserID,
			items:         []domain.OrderItem{{UserID: TestUserID, ProductID: TestProductID, Quantity: 0}},
			totalPrice:    TestTotalPrice,
			setupMocks:    func(*mocks.MockOrderRepository, *mocks.MockGatewayClient, *mocks.MockPublisher) {},
			expectedError: domain.ErrBadQuantity,
			expectNoSave:  true,
		},
		{
			name:          "negative total rejected",
			userID:        TestUserID,
			items:         testItems(),
			totalPrice:    -1,
			setupMocks:    func(*mocks.MockOrderRepository, *mocks.MockGatewayClient, *mocks.MockPublisher) {},
			expectedError: domain.ErrNegativeTotal,
			expectNoSave:  true,
		},
		{
			name:       "persistence failure surfaces",
			userID:     TestUserID,
			items:      testItems(),
			totalPrice: TestTotalPrice,
			setupMocks: func(repo *mocks.MockOrderRepository, gateway *mocks.MockGatewayClient, pub *mocks.MockPublisher) {
				gateway.On("CreateOrder", mock.Anything, TestAmountPaise, "INR", "rcpt_"+TestUserID).
					Return(testGatewayOrder(), nil)
				repo.On("Save", mock.Anything, mock.AnythingOfType("*domain.Order")).Return(errors.New("database error"))
			},
			expectedError: errors.New("database error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(mocks.MockOrderRepository)
			gateway := new(mocks.MockGatewayClient)
			pub := new(mocks.MockPublisher)
			tt.setupMocks(repo, gateway, pub)

			service := newTestPaymentService(repo, gateway, pub, TestSecret)
			gwOrder, keyID, err := service.CreateOrder(context.Background(), tt.userID, tt.items, tt.totalPrice)

			if tt.expectedError != nil {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectedError.Error())
				assert.Nil(t, gwOrder)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, TestRzpOrderID, gwOrder.ID)
				assert.Equal(t, TestAmountPaise, gwOrder.Amount)
				assert.Equal(t, "rzp_live_key", keyID)
			}

			if tt.expectNoSave {
				repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
			}
			if tt.expectSaved {
				saved := repo.Calls[0].Arguments.Get(1).(*domain.Order)
				assert.Equal(t, domain.PaymentPending, saved.PaymentStatus)
				assert.Equal(t, domain.ShippingPending, saved.ShippingStatus)
				assert.Equal(t, TestRzpOrderID, saved.RazorpayOrderID)
				assert.Equal(t, TestTotalPrice, saved.TotalPrice)
			}

			time.Sleep(50 * time.Millisecond)
			repo.AssertExpectations(t)
			gateway.AssertExpectations(t)
			pub.AssertExpectations(t)
		})
	}
}

func TestPaymentService_CreateOrder_MockMode(t *testing.T) {
	repo := new(mocks.MockOrderRepository)
	pub := new(mocks.MockPublisher)
	gateway := infra.NewMockGatewayClient()

	repo.On("Save", mock.Anything, mock.AnythingOfType("*domain.Order")).Return(nil)
	pub.On("Publish", mock.Anything, "order.created", mock.Anything).Return(nil).Maybe()

	service := NewPaymentService(repo, gateway, pub, metrics.NewTestPaymentMetrics(), "")
	gwOrder, keyID, err := service.CreateOrder(context.Background(), TestUserID, testItems(), TestTotalPrice)

	assert.NoError(t, err)
	assert.Equal(t, "rzp_test_mock", keyID)
	assert.Contains(t, gwOrder.ID, "order_")
	assert.Equal(t, TestAmountPaise, gwOrder.Amount)

	saved := repo.Calls[0].Arguments.Get(1).(*domain.Order)
	assert.Equal(t, gwOrder.ID, saved.RazorpayOrderID)
	assert.Equal(t, domain.PaymentPending, saved.PaymentStatus)

	time.Sleep(50 * time.Millisecond)
	repo.AssertExpectations(t)
}

func TestPaymentService_VerifyPayment(t *testing.T) {
	validSig := Signature(TestSecret, TestRzpOrderID, TestRzpPaymentID)
	fromPending := []domain.PaymentStatus{domain.PaymentPending}

	tests := []struct {
		name          string
		secret        string
		signature     string
		setupMocks    func(*mocks.MockOrderRepository, *mocks.MockPublisher)
		expectedError error
	}{
		{
			name:      "valid signature marks order paid",
			secret:    TestSecret,
			signature: validSig,
			setupMocks: func(repo *mocks.MockOrderRepository, pub *mocks.MockPublisher) {
				repo.On("UpdatePaymentStatus", mock.Anything, TestRzpOrderID, domain.PaymentPaid, fromPending, TestRzpPaymentID).
					Return(true, nil)
				pub.On("Publish", mock.Anything, "payment.paid", mock.Anything).Return(nil).Maybe()
			},
		},
		{
			name:      "invalid signature records failure then errors",
			secret:    TestSecret,
			signature: "deadbeef",
			setupMocks: func(repo *mocks.MockOrderRepository, pub *mocks.MockPublisher) {
				repo.On("UpdatePaymentStatus", mock.Anything, TestRzpOrderID, domain.PaymentFailed, fromPending, TestRzpPaymentID).
					Return(true, nil)
				pub.On("Publish", mock.Anything, "payment.failed", mock.Anything).Return(nil).Maybe()
			},
			expectedError: ErrInvalidSignature,
		},
		{
			name:      "no secret configured accepts any signature",
			secret:    "",
			signature: "whatever",
			setupMocks: func(repo *mocks.MockOrderRepository, pub *mocks.MockPublisher) {
				repo.On("UpdatePaymentStatus", mock.Anything, TestRzpOrderID, domain.PaymentPaid, fromPending, TestRzpPaymentID).
					Return(true, nil)
				pub.On("Publish", mock.Anything, "payment.paid", mock.Anything).Return(nil).Maybe()
			},
		},
		{
			name:      "repeated valid verify is a no-op",
			secret:    TestSecret,
			signature: validSig,
			setupMocks: func(repo *mocks.MockOrderRepository, pub *mocks.MockPublisher) {
				repo.On("UpdatePaymentStatus", mock.Anything, TestRzpOrderID, domain.PaymentPaid, fromPending, TestRzpPaymentID).
					Return(false, nil)
			},
		},
		{
			name:      "store error propagates",
			secret:    TestSecret,
			signature: validSig,
			setupMocks: func(repo *mocks.MockOrderRepository, pub *mocks.MockPublisher) {
				repo.On("UpdatePaymentStatus", mock.Anything, TestRzpOrderID, domain.PaymentPaid, fromPending, TestRzpPaymentID).
					Return(false, errors.New("database error"))
			},
			expectedError: errors.New("database error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(mocks.MockOrderRepository)
			gateway := new(mocks.MockGatewayClient)
			pub := new(mocks.MockPublisher)
			tt.setupMocks(repo, pub)

			service := newTestPaymentService(repo, gateway, pub, tt.secret)
			err := service.VerifyPayment(context.Background(), TestRzpOrderID, TestRzpPaymentID, tt.signature)

			if tt.expectedError != nil {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectedError.Error())
			} else {
				assert.NoError(t, err)
			}

			time.Sleep(50 * time.Millisecond)
			repo.AssertExpectations(t)
			pub.AssertExpectations(t)
		})
	}
}

func TestPaymentService_HandleWebhook(t *testing.T) {
	tests := []struct {
		name       string
		event      WebhookEvent
		setupMocks func(*mocks.MockOrderRepository, *mocks.MockPublisher)
		noWrite    bool
	}{
		{
			name:       "payload without payment entity is a no-op",
			event:      WebhookEvent{Event: "payment.captured"},
			setupMocks: func(*mocks.MockOrderRepository, *mocks.MockPublisher) {},
			noWrite:    true,
		},
		{
			name:  "captured maps to paid",
			event: webhookEventFor("payment.captured", TestRzpOrderID, TestRzpPaymentID, "captured"),
			setupMocks: func(repo *mocks.MockOrderRepository, pub *mocks.MockPublisher) {
				repo.On("UpdatePaymentStatus", mock.Anything, TestRzpOrderID, domain.PaymentPaid,
					[]domain.PaymentStatus{domain.PaymentPending}, TestRzpPaymentID).Return(true, nil)
				pub.On("Publish", mock.Anything, "payment.paid", mock.Anything).Return(nil).Maybe()
			},
		},
		{
			name:  "failed maps to failed",
			event: webhookEventFor("payment.failed", TestRzpOrderID, TestRzpPaymentID, "failed"),
			setupMocks: func(repo *mocks.MockOrderRepository, pub *mocks.MockPublisher) {
				repo.On("UpdatePaymentStatus", mock.Anything, TestRzpOrderID, domain.PaymentFailed,
					[]domain.PaymentStatus{domain.PaymentPending}, TestRzpPaymentID).Return(true, nil)
				pub.On("Publish", mock.Anything, "payment.failed", mock.Anything).Return(nil).Maybe()
			},
		},
		{
			name:  "refunded maps to refunded and requires paid",
			event: webhookEventFor("refund.processed", TestRzpOrderID, TestRzpPaymentID, "refunded"),
			setupMocks: func(repo *mocks.MockOrderRepository, pub *mocks.MockPublisher) {
				repo.On("UpdatePaymentStatus", mock.Anything, TestRzpOrderID, domain.PaymentRefunded,
					[]domain.PaymentStatus{domain.PaymentPaid}, TestRzpPaymentID).Return(true, nil)
				pub.On("Publish", mock.Anything, "payment.refunded", mock.Anything).Return(nil).Maybe()
			},
		},
		{
			name:       "unrecognized status is dropped, not written",
			event:      webhookEventFor("payment.whatever", TestRzpOrderID, TestRzpPaymentID, "definitely_not_a_status"),
			setupMocks: func(*mocks.MockOrderRepository, *mocks.MockPublisher) {},
			noWrite:    true,
		},
		{
			name:       "missing status is dropped, not written",
			event:      webhookEventFor("payment.created", TestRzpOrderID, TestRzpPaymentID, ""),
			setupMocks: func(*mocks.MockOrderRepository, *mocks.MockPublisher) {},
			noWrite:    true,
		},
		{
			name:       "authorized carries no transition",
			event:      webhookEventFor("payment.authorized", TestRzpOrderID, TestRzpPaymentID, "authorized"),
			setupMocks: func(*mocks.MockOrderRepository, *mocks.MockPublisher) {},
			noWrite:    true,
		},
		{
			name:  "stale delivery after verify does not publish",
			event: webhookEventFor("payment.captured", TestRzpOrderID, TestRzpPaymentID, "captured"),
			setupMocks: func(repo *mocks.MockOrderRepository, pub *mocks.MockPublisher) {
				repo.On("UpdatePaymentStatus", mock.Anything, TestRzpOrderID, domain.PaymentPaid,
					[]domain.PaymentStatus{domain.PaymentPending}, TestRzpPaymentID).Return(false, nil)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(mocks.MockOrderRepository)
			gateway := new(mocks.MockGatewayClient)
			pub := new(mocks.MockPublisher)
			tt.setupMocks(repo, pub)

			service := newTestPaymentService(repo, gateway, pub, TestSecret)
			service.HandleWebhook(context.Background(), tt.event)

			if tt.noWrite {
				repo.AssertNotCalled(t, "UpdatePaymentStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
			}

			time.Sleep(50 * time.Millisecond)
			repo.AssertExpectations(t)
			pub.AssertExpectations(t)
		})
	}
}

func webhookEventFor(event, orderID, paymentID, status string) WebhookEvent {
	var e WebhookEvent
	e.Event = event
	e.Payload.Payment.Entity.ID = paymentID
	e.Payload.Payment.Entity.OrderID = orderID
	e.Payload.Payment.Entity.Status = status
	return e
}

func TestPaymentService_UpdateOrder(t *testing.T) {
	tests := []struct {
		name           string
		paymentStatus  string
		shippingStatus string
		setupMocks     func(*mocks.MockOrderRepository)
		expectedError  error
	}{
		{
			name:          "no fields to update",
			setupMocks:    func(*mocks.MockOrderRepository) {},
			expectedError: ErrNoUpdateFields,
		},
		{
			name:          "order not found",
			paymentStatus: "refunded",
			setupMocks: func(repo *mocks.MockOrderRepository) {
				repo.On("FindByID", mock.Anything, uint64(1)).Return(nil, nil)
			},
			expectedError: ErrOrderNotFound,
		},
		{
			name:          "refund of a paid order",
			paymentStatus: "refunded",
			setupMocks: func(repo *mocks.MockOrderRepository) {
				repo.On("FindByID", mock.Anything, uint64(1)).Return(testOrder(domain.PaymentPaid, domain.ShippingPending), nil)
				repo.On("UpdatePaymentStatus", mock.Anything, TestRzpOrderID, domain.PaymentRefunded,
					[]domain.PaymentStatus{domain.PaymentPaid}, "").Return(true, nil)
			},
		},
		{
			name:          "refund of an unpaid order is illegal",
			paymentStatus: "refunded",
			setupMocks: func(repo *mocks.MockOrderRepository) {
				repo.On("FindByID", mock.Anything, uint64(1)).Return(testOrder(domain.PaymentPending, domain.ShippingPending), nil)
				repo.On("UpdatePaymentStatus", mock.Anything, TestRzpOrderID, domain.PaymentRefunded,
					[]domain.PaymentStatus{domain.PaymentPaid}, "").Return(false, nil)
			},
			expectedError: ErrIllegalTransition,
		},
		{
			name:          "unknown payment status",
			paymentStatus: "processing",
			setupMocks: func(repo *mocks.MockOrderRepository) {
				repo.On("FindByID", mock.Anything, uint64(1)).Return(testOrder(domain.PaymentPending, domain.ShippingPending), nil)
			},
			expectedError: ErrUnknownStatus,
		},
		{
			name:          "pending is not a transition target",
			paymentStatus: "pending",
			setupMocks: func(repo *mocks.MockOrderRepository) {
				repo.On("FindByID", mock.Anything, uint64(1)).Return(testOrder(domain.PaymentPaid, domain.ShippingPending), nil)
			},
			expectedError: ErrIllegalTransition,
		},
		{
			name:           "shipping advances forward",
			shippingStatus: "shipped",
			setupMocks: func(repo *mocks.MockOrderRepository) {
				repo.On("FindByID", mock.Anything, uint64(1)).Return(testOrder(domain.PaymentPaid, domain.ShippingProcessing), nil)
				repo.On("UpdateShippingStatus", mock.Anything, uint64(1), domain.ShippingShipped).Return(true, nil)
			},
		},
		{
			name:           "shipping cannot move backwards",
			shippingStatus: "processing",
			setupMocks: func(repo *mocks.MockOrderRepository) {
				repo.On("FindByID", mock.Anything, uint64(1)).Return(testOrder(domain.PaymentPaid, domain.ShippingDelivered), nil)
			},
			expectedError: ErrIllegalTransition,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(mocks.MockOrderRepository)
			gateway := new(mocks.MockGatewayClient)
			pub := new(mocks.MockPublisher)
			tt.setupMocks(repo)

			service := newTestPaymentService(repo, gateway, pub, TestSecret)
			err := service.UpdateOrder(context.Background(), 1, tt.paymentStatus, tt.shippingStatus)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
			} else {
				assert.NoError(t, err)
			}

			repo.AssertExpectations(t)
		})
	}
}

func TestSignature(t *testing.T) {
	// hex(HMAC-SHA256(secret, order_id+"|"+payment_id))
	sig := Signature("secret", "order_1", "pay_1")
	assert.Len(t, sig, 64)
	assert.Equal(t, sig, Signature("secret", "order_1", "pay_1"))
	assert.NotEqual(t, sig, Signature("other", "order_1", "pay_1"))
	assert.NotEqual(t, sig, Signature("secret", "order_1", "pay_2"))
}
