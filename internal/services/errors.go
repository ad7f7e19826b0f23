package services

import "errors"

var (
	ErrOrderNotFound    = errors.New("order not found")
	ErrOrderNotPayable  = errors.New("order has no payment address or amount assigned")
	ErrOrderNotPaid     = errors.New("order is not yet paid")
	ErrEmptyCart        = errors.New("user's cart is empty")
	ErrProductNotFound  = errors.New("product not found")
	ErrProductExists    = errors.New("product with this name, category, and gender already exists")
	ErrCategoryNotFound = errors.New("category not found or is empty")
	ErrCartItemNotFound = errors.New("item not found in user's cart")
	ErrBadQuantity      = errors.New("quantity must be a positive number")
)
