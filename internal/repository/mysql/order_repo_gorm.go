package mysql

import (
	"context"
	"errors"
	"log/slog"

	"kidswear-backend/internal/domain"
	"kidswear-backend/internal/repository"

	"gorm.io/gorm"
)

type orderRepo struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) repository.OrderRepository {
	return &orderRepo{db: db}
}

func (r *orderRepo) Save(ctx context.Context, o *domain.Order) error {
	if err := r.db.WithContext(ctx).Create(o).Error; err != nil {
		slog.Error("order save failed", "err", err)
		return err
	}
	return nil
}

func (r *orderRepo) FindByID(ctx context.Context, id uint64) (*domain.Order, error) {
	var o domain.Order
	err := r.db.WithContext(ctx).Preload("Items").First(&o, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *orderRepo) FindByRazorpayOrderID(ctx context.Context, rzpOrderID string) (*domain.Order, error) {
	var o domain.Order
	err := r.db.WithContext(ctx).Preload("Items").
		Where("razorpay_order_id = ?", rzpOrderID).First(&o).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *orderRepo) List(ctx context.Context) ([]domain.Order, error) {
	var out []domain.Order
	err := r.db.WithContext(ctx).Preload("Items").
		Order("created_at DESC").Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

// UpdatePaymentStatus is the single write path for payment transitions.
// The WHERE clause doubles as a compare-and-set: a verify call and a
// webhook delivery racing on the same order cannot regress a terminal
// status, whichever lands second simply matches zero rows.
func (r *orderRepo) UpdatePaymentStatus(ctx context.Context, rzpOrderID string, status domain.PaymentStatus, from []domain.PaymentStatus, paymentID string) (bool, error) {
	updates := map[string]any{"payment_status": status}
	if paymentID != "" {
		updates["razorpay_payment_id"] = paymentID
	}
	res := r.db.WithContext(ctx).Model(&domain.Order{}).
		Where("razorpay_order_id = ? AND payment_status IN ?", rzpOrderID, from).
		Updates(updates)
	if res.Error != nil {
		slog.Error("payment status update failed", "razorpay_order_id", rzpOrderID, "err", res.Error)
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *orderRepo) UpdateShippingStatus(ctx context.Context, id uint64, status domain.ShippingStatus) (bool, error) {
	res := r.db.WithContext(ctx).Model(&domain.Order{}).
		Where("id = ?", id).
		Update("shipping_status", status)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
