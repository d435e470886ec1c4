package repository

import (
	"context"

	"kidswear-backend/internal/domain"
)

// Repositories return (nil, nil) when the row is absent; callers decide
// whether absence is an error.

type ProductRepository interface {
	Save(ctx context.Context, p *domain.Product) error
	FindByID(ctx context.Context, id uint64) (*domain.Product, error)
	List(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error)
	Delete(ctx context.Context, id uint64) (bool, error)
}

type OrderRepository interface {
	Save(ctx context.Context, o *domain.Order) error
	FindByID(ctx context.Context, id uint64) (*domain.Order, error)
	FindByRazorpayOrderID(ctx context.Context, rzpOrderID string) (*domain.Order, error)
	List(ctx context.Context) ([]domain.Order, error)
	// UpdatePaymentStatus moves an order to status only if its current
	// payment status is one of from; returns whether a row changed.
	// paymentID is recorded alongside when non-empty.
	UpdatePaymentStatus(ctx context.Context, rzpOrderID string, status domain.PaymentStatus, from []domain.PaymentStatus, paymentID string) (bool, error)
	UpdateShippingStatus(ctx context.Context, id uint64, status domain.ShippingStatus) (bool, error)
}

type CartRepository interface {
	Find(ctx context.Context, userID, productID string) (*domain.CartItem, error)
	ListByUser(ctx context.Context, userID string) ([]domain.CartItem, error)
	Save(ctx context.Context, item *domain.CartItem) error
	UpdateQuantity(ctx context.Context, userID, productID string, quantity int) (bool, error)
	IncrementQuantity(ctx context.Context, userID, productID string, delta int) error
	Delete(ctx context.Context, userID, productID string) (bool, error)
}

type WishlistRepository interface {
	Find(ctx context.Context, userID, productID string) (*domain.WishlistItem, error)
	ListByUser(ctx context.Context, userID string) ([]domain.WishlistItem, error)
	Save(ctx context.Context, item *domain.WishlistItem) error
	Delete(ctx context.Context, userID, productID string) (bool, error)
}
