package gormrepo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"shop-service/internal/domain"
	"shop-service/internal/repository"
)

type cartRepo struct {
	db *gorm.DB
}

func NewCartRepository(db *gorm.DB) repository.CartRepository {
	return &cartRepo{db: db}
}

func (r *cartRepo) Find(ctx context.Context, userID int64, productID uint64) (*domain.CartItem, error) {
	var item domain.CartItem
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

func (r *cartRepo) Save(ctx context.Context, item *domain.CartItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}

func (r *cartRepo) Delete(ctx context.Context, item *domain.CartItem) error {
	return r.db.WithContext(ctx).Delete(item).Error
}

func (r *cartRepo) Items(ctx context.Context, userID int64) ([]domain.CartProduct, error) {
	var out []domain.CartProduct
	err := r.db.WithContext(ctx).
		Table("products").
		Select("products.id, products.name, products.price, products.gender, products.category, products.image_url, cart_items.quantity").
		Joins("JOIN cart_items ON products.id = cart_items.product_id").
		Where("cart_items.user_id = ?", userID).
		Scan(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *cartRepo) Clear(ctx context.Context, userID int64) error {
	return r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&domain.CartItem{}).Error
}
