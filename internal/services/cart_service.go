package services

import (
	"context"
	"log/slog"

	"shop-service/internal/domain"
	"shop-service/internal/repository"
)

// CartService manages per-user carts.
type CartService struct {
	carts    repository.CartRepository
	products repository.ProductRepository
	logger   *slog.Logger
}

func NewCartService(carts repository.CartRepository, products repository.ProductRepository, logger *slog.Logger) *CartService {
	return &CartService{carts: carts, products: products, logger: logger}
}

func (s *CartService) AddItem(ctx context.Context, userID int64, productID uint64, quantity int64) error {
	if quantity <= 0 {
		return ErrBadQuantity
	}

	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return err
	}
	if product == nil {
		return ErrProductNotFound
	}

	item, err := s.carts.Find(ctx, userID, productID)
	if err != nil {
		return err
	}
	if item != nil {
		item.Quantity += quantity
	} else {
		item = &domain.CartItem{UserID: userID, ProductID: productID, Quantity: quantity}
	}
	if err := s.carts.Save(ctx, item); err != nil {
		return err
	}
	s.logger.Info("cart item upserted", "user_id", userID, "product_id", productID, "quantity", item.Quantity)
	return nil
}

// RemoveItem decrements the quantity, deleting the row once it would reach
// zero or below.
func (s *CartService) RemoveItem(ctx context.Context, userID int64, productID uint64, quantity int64) error {
	if quantity <= 0 {
		return ErrBadQuantity
	}

	item, err := s.carts.Find(ctx, userID, productID)
	if err != nil {
		return err
	}
	if item == nil {
		return ErrCartItemNotFound
	}

	if item.Quantity > quantity {
		item.Quantity -= quantity
		return s.carts.Save(ctx, item)
	}
	if err := s.carts.Delete(ctx, item); err != nil {
		return err
	}
	s.logger.Info("cart item removed", "user_id", userID, "product_id", productID)
	return nil
}

func (s *CartService) Items(ctx context.Context, userID int64) ([]domain.CartProduct, error) {
	return s.carts.Items(ctx, userID)
}
