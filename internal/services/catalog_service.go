package services

import (
	"context"
	"log/slog"

	"shop-service/internal/domain"
	"shop-service/internal/repository"
)

// CatalogService manages the product catalog.
type CatalogService struct {
	products repository.ProductRepository
	logger   *slog.Logger
}

func NewCatalogService(products repository.ProductRepository, logger *slog.Logger) *CatalogService {
	return &CatalogService{products: products, logger: logger}
}

func (s *CatalogService) AddProduct(ctx context.Context, p *domain.Product) error {
	existing, err := s.products.FindByNameCategoryGender(ctx, p.Name, p.Category, p.Gender)
	if err != nil {
		return err
	}
	if existing != nil {
		return ErrProductExists
	}
	if err := s.products.Create(ctx, p); err != nil {
		return err
	}
	s.logger.Info("new product added", "name", p.Name, "category", p.Category)
	return nil
}

func (s *CatalogService) GetProduct(ctx context.Context, id uint64) (*domain.Product, error) {
	p, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrProductNotFound
	}
	return p, nil
}

func (s *CatalogService) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return s.products.FindAll(ctx)
}

func (s *CatalogService) ListCategories(ctx context.Context, gender string) ([]string, error) {
	return s.products.Categories(ctx, gender)
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id uint64) error {
	deleted, err := s.products.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrProductNotFound
	}
	s.logger.Info("product deleted", "product_id", id)
	return nil
}

// DeleteCategory removes the category and every product in it.
func (s *CatalogService) DeleteCategory(ctx context.Context, category string) error {
	deleted, err := s.products.DeleteCategory(ctx, category)
	if err != nil {
		return err
	}
	if deleted == 0 {
		return ErrCategoryNotFound
	}
	s.logger.Info("category deleted with its products", "category", category, "products", deleted)
	return nil
}
