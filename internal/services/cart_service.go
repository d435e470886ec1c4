package services

import (
	"context"

	"kidswear-backend/internal/domain"
	"kidswear-backend/internal/repository"
)

// CartService manages the per-user cart and wishlist collections. Both
// are keyed by (user_id, product_id); adds dedupe on that pair.
type CartService struct {
	cart     repository.CartRepository
	wishlist repository.WishlistRepository
}

func NewCartService(cart repository.CartRepository, wishlist repository.WishlistRepository) *CartService {
	return &CartService{cart: cart, wishlist: wishlist}
}

func (s *CartService) GetCart(ctx context.Context, userID string) ([]domain.CartItem, error) {
	return s.cart.ListByUser(ctx, userID)
}

// AddToCart inserts a new row or, when the pair already exists,
// increments its quantity. Returns the row with the resulting quantity.
func (s *CartService) AddToCart(ctx context.Context, userID, productID string, quantity int) (*domain.CartItem, error) {
	if quantity < 1 {
		return nil, domain.ErrBadQuantity
	}

	existing, err := s.cart.Find(ctx, userID, productID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		if err := s.cart.IncrementQuantity(ctx, userID, productID, quantity); err != nil {
			return nil, err
		}
		existing.Quantity += quantity
		return existing, nil
	}

	item := &domain.CartItem{UserID: userID, ProductID: productID, Quantity: quantity}
	if err := s.cart.Save(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *CartService) UpdateCartQuantity(ctx context.Context, userID, productID string, quantity int) error {
	if quantity < 1 {
		return domain.ErrBadQuantity
	}
	changed, err := s.cart.UpdateQuantity(ctx, userID, productID, quantity)
	if err != nil {
		return err
	}
	if !changed {
		return ErrCartItemNotFound
	}
	return nil
}

func (s *CartService) RemoveFromCart(ctx context.Context, userID, productID string) (bool, error) {
	return s.cart.Delete(ctx, userID, productID)
}

func (s *CartService) GetWishlist(ctx context.Context, userID string) ([]domain.WishlistItem, error) {
	return s.wishlist.ListByUser(ctx, userID)
}

// AddToWishlist is idempotent: a duplicate add returns the existing row.
func (s *CartService) AddToWishlist(ctx context.Context, userID, productID string) (*domain.WishlistItem, error) {
	existing, err := s.wishlist.Find(ctx, userID, productID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	item := &domain.WishlistItem{UserID: userID, ProductID: productID}
	if err := s.wishlist.Save(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *CartService) RemoveFromWishlist(ctx context.Context, userID, productID string) (bool, error) {
	return s.wishlist.Delete(ctx, userID, productID)
}
