package domain

import "time"

// CartItem is one (user, product) row in the cart. Duplicate adds for
// the same pair increment the quantity instead of inserting a new row.
type CartItem struct {
	ID        uint64    `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID    string    `json:"user_id" gorm:"size:64;not null;uniqueIndex:idx_cart_user_product"`
	ProductID string    `json:"product_id" gorm:"size:64;not null;uniqueIndex:idx_cart_user_product"`
	Quantity  int       `json:"quantity" gorm:"not null"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

type WishlistItem struct {
	ID        uint64    `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID    string    `json:"user_id" gorm:"size:64;not null;uniqueIndex:idx_wishlist_user_product"`
	ProductID string    `json:"product_id" gorm:"size:64;not null;uniqueIndex:idx_wishlist_user_product"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}
