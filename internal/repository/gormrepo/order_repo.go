package gormrepo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"shop-service/internal/domain"
	"shop-service/internal/repository"
)

type orderRepo struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) repository.OrderRepository {
	return &orderRepo{db: db}
}

func (r *orderRepo) Create(ctx context.Context, order *domain.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *orderRepo) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	var o domain.Order
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&o).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &o, nil
}

func (r *orderRepo) FindUnpaid(ctx context.Context) ([]domain.Order, error) {
	var out []domain.Order
	if err := r.db.WithContext(ctx).
		Where("status = ?", domain.StatusUnpaid).
		Order("created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// MarkPaid uses a conditional update so that concurrent evaluations of the
// same order produce exactly one transition.
func (r *orderRepo) MarkPaid(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&domain.Order{}).
		Where("id = ? AND status = ?", id, domain.StatusUnpaid).
		Update("status", domain.StatusPaid)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *orderRepo) UpdateDelivery(ctx context.Context, id string, d domain.Delivery) error {
	return r.db.WithContext(ctx).
		Model(&domain.Order{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"name":        d.Name,
			"tg_username": d.TgUsername,
			"address":     d.Address,
			"postcode":    d.Postcode,
			"city":        d.City,
			"country":     d.Country,
		}).Error
}
