package repository

import (
	"context"

	"shop-service/internal/domain"
)

// OrderRepository owns order rows. It is the only writer of status and
// delivery fields; services request transitions through it and never touch
// storage directly.
type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	// FindByID returns (nil, nil) when no such order exists.
	FindByID(ctx context.Context, id string) (*domain.Order, error)
	FindUnpaid(ctx context.Context) ([]domain.Order, error)
	// MarkPaid transitions unpaid -> paid with a conditional update and
	// reports whether this call performed the transition. Marking an
	// already-paid order is a no-op returning false.
	MarkPaid(ctx context.Context, id string) (bool, error)
	UpdateDelivery(ctx context.Context, id string, d domain.Delivery) error
}

type ProductRepository interface {
	Create(ctx context.Context, p *domain.Product) error
	// FindByID returns (nil, nil) when no such product exists.
	FindByID(ctx context.Context, id uint64) (*domain.Product, error)
	FindByNameCategoryGender(ctx context.Context, name, category, gender string) (*domain.Product, error)
	FindAll(ctx context.Context) ([]domain.Product, error)
	Categories(ctx context.Context, gender string) ([]string, error)
	Delete(ctx context.Context, id uint64) (bool, error)
	// DeleteCategory removes every product in the category and returns how
	// many rows were deleted.
	DeleteCategory(ctx context.Context, category string) (int64, error)
}

type CartRepository interface {
	// Find returns (nil, nil) when the user has no row for the product.
	Find(ctx context.Context, userID int64, productID uint64) (*domain.CartItem, error)
	Save(ctx context.Context, item *domain.CartItem) error
	Delete(ctx context.Context, item *domain.CartItem) error
	// Items joins cart rows with products for the user.
	Items(ctx context.Context, userID int64) ([]domain.CartProduct, error)
	Clear(ctx context.Context, userID int64) error
}
