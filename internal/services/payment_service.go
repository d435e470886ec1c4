package services

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"

	"kidswear-backend/internal/domain"
	"kidswear-backend/internal/infra"
	rabbit "kidswear-backend/internal/infra/rabbitmq"
	"kidswear-backend/internal/metrics"
	"kidswear-backend/internal/repository"

	"github.com/shopspring/decimal"
)

// mockSecret keys the HMAC when no gateway secret is configured. The
// computed value is never enforced in that mode; it only keeps the
// signature math exercisable in local development.
const mockSecret = "mock_secret"

// PaymentService owns the order/payment lifecycle: creating a hosted
// order on the gateway, recording it locally, verifying client-side
// payment confirmations, and reconciling status from webhook events.
type PaymentService struct {
	orders    repository.OrderRepository
	gateway   infra.GatewayClient
	publisher rabbit.PublisherInterface
	metrics   *metrics.PaymentMetrics
	keySecret string
}

func NewPaymentService(
	orders repository.OrderRepository,
	gateway infra.GatewayClient,
	publisher rabbit.PublisherInterface,
	m *metrics.PaymentMetrics,
	keySecret string,
) *PaymentService {
	return &PaymentService{
		orders:    orders,
		gateway:   gateway,
		publisher: publisher,
		metrics:   m,
		keySecret: keySecret,
	}
}

// PaiseFromRupees converts a rupee amount to the gateway's integer
// minor unit, rounding to the nearest paisa so float drift in the
// request body cannot leak into the charged amount.
func PaiseFromRupees(rupees float64) int64 {
	return decimal.NewFromFloat(rupees).Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

// Signature is the razorpay checkout signature: hex-encoded
// HMAC-SHA256 over "<order_id>|<payment_id>".
func Signature(secret, rzpOrderID, rzpPaymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(rzpOrderID + "|" + rzpPaymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// CreateOrder creates the hosted order on the gateway first and only
// then persists the local record, so a gateway failure leaves no
// partial order behind. Exactly one order row exists per success.
func (s *PaymentService) CreateOrder(ctx context.Context, userID string, items []domain.OrderItem, totalPrice float64) (*infra.GatewayOrder, string, error) {
	order, err := domain.NewOrder(userID, items, totalPrice)
	if err != nil {
		return nil, "", err
	}

	amountPaise := PaiseFromRupees(totalPrice)
	receipt := "rcpt_" + userID

	gwOrder, err := s.gateway.CreateOrder(ctx, amountPaise, "INR", receipt)
	if err != nil {
		return nil, "", err
	}

	order.RazorpayOrderID = gwOrder.ID
	if err := s.orders.Save(ctx, order); err != nil {
		return nil, "", err
	}

	s.metrics.OrdersCreated.WithLabelValues(s.mode()).Inc()
	go s.publishEvent(context.Background(), "order.created", domain.OrderCreatedEvent{
		OrderID:         order.ID,
		UserID:          order.UserID,
		RazorpayOrderID: order.RazorpayOrderID,
		TotalPrice:      order.TotalPrice,
		CreatedAt:       order.CreatedAt,
	})

	return gwOrder, s.gateway.KeyID(), nil
}

// VerifyPayment is the trust boundary for client-submitted payment
// confirmations: only the recomputed signature decides the outcome.
// A mismatch still records the failed attempt before surfacing the
// error, since a failed payment is itself meaningful state.
func (s *PaymentService) VerifyPayment(ctx context.Context, rzpOrderID, rzpPaymentID, clientSignature string) error {
	secret := s.keySecret
	if secret == "" {
		secret = mockSecret
	}
	expected := Signature(secret, rzpOrderID, rzpPaymentID)

	valid := hmac.Equal([]byte(expected), []byte(clientSignature))
	if s.keySecret == "" {
		// No secret configured: local-dev bypass, accept anything.
		valid = true
	}

	status := domain.PaymentPaid
	if !valid {
		status = domain.PaymentFailed
	}

	changed, err := s.orders.UpdatePaymentStatus(ctx, rzpOrderID, status, status.TransitionsFrom(), rzpPaymentID)
	if err != nil {
		return err
	}
	if changed {
		s.metrics.Transitions.WithLabelValues(string(status), "verify").Inc()
		go s.publishEvent(context.Background(), "payment."+string(status), domain.PaymentEvent{
			RazorpayOrderID:   rzpOrderID,
			RazorpayPaymentID: rzpPaymentID,
			Status:            status,
			Source:            "verify",
		})
	}

	if !valid {
		return ErrInvalidSignature
	}
	return nil
}

// WebhookEvent is the gateway's delivery envelope. Decoding leaves
// absent fields zero-valued, which HandleWebhook treats as a no-op.
type WebhookEvent struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity struct {
				ID      string `json:"id"`
				OrderID string `json:"order_id"`
				Status  string `json:"status"`
			} `json:"entity"`
		} `json:"payment"`
	} `json:"payload"`
}

// webhookStatus maps every known gateway payment state to the internal
// enum. Anything not listed is logged and dropped rather than written
// into the typed column.
var webhookStatus = map[string]domain.PaymentStatus{
	"created":    domain.PaymentPending,
	"authorized": domain.PaymentPending,
	"captured":   domain.PaymentPaid,
	"failed":     domain.PaymentFailed,
	"refunded":   domain.PaymentRefunded,
}

// HandleWebhook applies a gateway-reported status to the referenced
// order. It never fails outward: the gateway retries on non-2xx, and
// an event this system chooses to ignore must not trigger retries.
func (s *PaymentService) HandleWebhook(ctx context.Context, event WebhookEvent) {
	entity := event.Payload.Payment.Entity
	if entity.OrderID == "" {
		s.metrics.WebhookEvents.WithLabelValues("ignored").Inc()
		return
	}

	status, ok := webhookStatus[entity.Status]
	if !ok {
		slog.Warn("webhook reported unrecognized payment status",
			"event", event.Event, "razorpay_order_id", entity.OrderID, "status", entity.Status)
		s.metrics.WebhookEvents.WithLabelValues("unrecognized").Inc()
		return
	}

	from := status.TransitionsFrom()
	if len(from) == 0 {
		// Initial-state notifications (created/authorized) carry no
		// transition; the order is already pending.
		s.metrics.WebhookEvents.WithLabelValues("noop").Inc()
		return
	}

	changed, err := s.orders.UpdatePaymentStatus(ctx, entity.OrderID, status, from, entity.ID)
	if err != nil {
		slog.Error("webhook status update failed", "razorpay_order_id", entity.OrderID, "err", err)
		s.metrics.WebhookEvents.WithLabelValues("error").Inc()
		return
	}
	if !changed {
		s.metrics.WebhookEvents.WithLabelValues("stale").Inc()
		return
	}

	s.metrics.WebhookEvents.WithLabelValues("applied").Inc()
	s.metrics.Transitions.WithLabelValues(string(status), "webhook").Inc()
	go s.publishEvent(context.Background(), "payment."+string(status), domain.PaymentEvent{
		RazorpayOrderID:   entity.OrderID,
		RazorpayPaymentID: entity.ID,
		Status:            status,
		Source:            "webhook",
	})
}

// ListOrders serves the admin console, newest first.
func (s *PaymentService) ListOrders(ctx context.Context) ([]domain.Order, error) {
	return s.orders.List(ctx)
}

// UpdateOrder is the admin override path (e.g. paid -> refunded).
// Payment changes still go through the transition guard; shipping only
// advances forward.
func (s *PaymentService) UpdateOrder(ctx context.Context, id uint64, paymentStatus, shippingStatus string) error {
	if paymentStatus == "" && shippingStatus == "" {
		return ErrNoUpdateFields
	}

	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if order == nil {
		return ErrOrderNotFound
	}

	if paymentStatus != "" {
		ps := domain.PaymentStatus(paymentStatus)
		if !ps.Valid() {
			return ErrUnknownStatus
		}
		from := ps.TransitionsFrom()
		if len(from) == 0 {
			return ErrIllegalTransition
		}
		changed, err := s.orders.UpdatePaymentStatus(ctx, order.RazorpayOrderID, ps, from, "")
		if err != nil {
			return err
		}
		if !changed {
			return ErrIllegalTransition
		}
		s.metrics.Transitions.WithLabelValues(string(ps), "admin").Inc()
	}

	if shippingStatus != "" {
		ss := domain.ShippingStatus(shippingStatus)
		if !ss.Valid() {
			return ErrUnknownStatus
		}
		if !order.ShippingStatus.Advances(ss) {
			return ErrIllegalTransition
		}
		if _, err := s.orders.UpdateShippingStatus(ctx, id, ss); err != nil {
			return err
		}
	}

	return nil
}

func (s *PaymentService) mode() string {
	if s.keySecret == "" {
		return "mock"
	}
	return "live"
}

func (s *PaymentService) publishEvent(ctx context.Context, routingKey string, data any) {
	if err := s.publisher.Publish(ctx, routingKey, data); err != nil {
		slog.Error("failed to publish event", "routing_key", routingKey, "err", err)
	}
}
