package services

import "errors"

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrOrderNotFound     = errors.New("order not found")
	ErrCartItemNotFound  = errors.New("cart item not found")
	ErrInvalidSignature  = errors.New("invalid signature")
	ErrNoUpdateFields    = errors.New("no fields to update")
	ErrUnknownStatus     = errors.New("unknown status value")
	ErrIllegalTransition = errors.New("illegal status transition")
)
