package infra

import "context"

// GatewayClient creates hosted orders on the payment gateway. The mock
// implementation is selected at wiring time when no credentials are
// configured.
type GatewayClient interface {
	CreateOrder(ctx context.Context, amountPaise int64, currency, receipt string) (*GatewayOrder, error)
	KeyID() string
}

var _ GatewayClient = (*RazorpayClient)(nil)
var _ GatewayClient = (*MockGatewayClient)(nil)
