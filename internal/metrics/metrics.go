package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type PaymentMetrics struct {
	OrdersCreated *prometheus.CounterVec
	Transitions   *prometheus.CounterVec
	WebhookEvents *prometheus.CounterVec
}

func NewPaymentMetrics() *PaymentMetrics {
	ordersCreated := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "kidswear",
		Subsystem: "payment",
		Name:      "orders_created_total",
		Help:      "Orders created, by gateway mode.",
	}, []string{"mode"})
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "kidswear",
		Subsystem: "payment",
		Name:      "status_transitions_total",
		Help:      "Payment status transitions applied, by target status and source.",
	}, []string{"status", "source"})
	webhookEvents := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "kidswear",
		Subsystem: "payment",
		Name:      "webhook_events_total",
		Help:      "Webhook deliveries received, by outcome.",
	}, []string{"outcome"})

	prometheus.MustRegister(ordersCreated, transitions, webhookEvents)
	return &PaymentMetrics{
		OrdersCreated: ordersCreated,
		Transitions:   transitions,
		WebhookEvents: webhookEvents,
	}
}

// NewTestPaymentMetrics registers on a throwaway registry so parallel
// test packages do not collide on the default one.
func NewTestPaymentMetrics() *PaymentMetrics {
	reg := prometheus.NewRegistry()
	m := &PaymentMetrics{
		OrdersCreated: prometheus.NewCounterVec(prometheus.CounterOpts{Name: "orders_created_total"}, []string{"mode"}),
		Transitions:   prometheus.NewCounterVec(prometheus.CounterOpts{Name: "status_transitions_total"}, []string{"status", "source"}),
		WebhookEvents: prometheus.NewCounterVec(prometheus.CounterOpts{Name: "webhook_events_total"}, []string{"outcome"}),
	}
	reg.MustRegister(m.OrdersCreated, m.Transitions, m.WebhookEvents)
	return m
}

func Handler() http.Handler {
	return promhttp.Handler()
}
