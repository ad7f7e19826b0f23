package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"shop-service/internal/domain"
	"shop-service/internal/mocks"
)

func TestCartService_AddItem(t *testing.T) {
	tests := []struct {
		name       string
		quantity   int64
		setupMocks func(*mocks.MockCartRepository, *mocks.MockProductRepository)
		wantErr    error
	}{
		{
			name:     "new item inserted",
			quantity: 2,
			setupMocks: func(carts *mocks.MockCartRepository, products *mocks.MockProductRepository) {
				products.On("FindByID", mock.Anything, uint64(1)).Return(&domain.Product{ID: 1}, nil)
				carts.On("Find", mock.Anything, int64(7), uint64(1)).Return(nil, nil)
				carts.On("Save", mock.Anything, mock.MatchedBy(func(item *domain.CartItem) bool {
					return item.Quantity == 2
				})).Return(nil)
			},
		},
		{
			name:     "existing item quantity incremented",
			quantity: 3,
			setupMocks: func(carts *mocks.MockCartRepository, products *mocks.MockProductRepository) {
				products.On("FindByID", mock.Anything, uint64(1)).Return(&domain.Product{ID: 1}, nil)
				carts.On("Find", mock.Anything, int64(7), uint64(1)).
					Return(&domain.CartItem{UserID: 7, ProductID: 1, Quantity: 2}, nil)
				carts.On("Save", mock.Anything, mock.MatchedBy(func(item *domain.CartItem) bool {
					return item.Quantity == 5
				})).Return(nil)
			},
		},
		{
			name:       "non-positive quantity rejected",
			quantity:   0,
			setupMocks: func(carts *mocks.MockCartRepository, products *mocks.MockProductRepository) {},
			wantErr:    ErrBadQuantity,
		},
		{
			name:     "unknown product rejected",
			quantity: 1,
			setupMocks: func(carts *mocks.MockCartRepository, products *mocks.MockProductRepository) {
				products.On("FindByID", mock.Anything, uint64(1)).Return(nil, nil)
			},
			wantErr: ErrProductNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			carts := new(mocks.MockCartRepository)
			products := new(mocks.MockProductRepository)
			tt.setupMocks(carts, products)

			svc := NewCartService(carts, products, testLogger())

			err := svc.AddItem(context.Background(), 7, 1, tt.quantity)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			carts.AssertExpectations(t)
			products.AssertExpectations(t)
		})
	}
}

func TestCartService_RemoveItem(t *testing.T) {
	tests := []struct {
		name       string
		quantity   int64
		setupMocks func(*mocks.MockCartRepository)
		wantErr    error
	}{
		{
			name:     "partial removal decrements",
			quantity: 1,
			setupMocks: func(carts *mocks.MockCartRepository) {
				carts.On("Find", mock.Anything, int64(7), uint64(1)).
					Return(&domain.CartItem{UserID: 7, ProductID: 1, Quantity: 3}, nil)
				carts.On("Save", mock.Anything, mock.MatchedBy(func(item *domain.CartItem) bool {
					return item.Quantity == 2
				})).Return(nil)
			},
		},
		{
			name:     "removal to zero deletes the row",
			quantity: 3,
			setupMocks: func(carts *mocks.MockCartRepository) {
				carts.On("Find", mock.Anything, int64(7), uint64(1)).
					Return(&domain.CartItem{UserID: 7, ProductID: 1, Quantity: 3}, nil)
				carts.On("Delete", mock.Anything, mock.AnythingOfType("*domain.CartItem")).Return(nil)
			},
		},
		{
			name:     "removal past zero deletes the row",
			quantity: 10,
			setupMocks: func(carts *mocks.MockCartRepository) {
				carts.On("Find", mock.Anything, int64(7), uint64(1)).
					Return(&domain.CartItem{UserID: 7, ProductID: 1, Quantity: 3}, nil)
				carts.On("Delete", mock.Anything, mock.AnythingOfType("*domain.CartItem")).Return(nil)
			},
		},
		{
			name:     "missing item rejected",
			quantity: 1,
			setupMocks: func(carts *mocks.MockCartRepository) {
				carts.On("Find", mock.Anything, int64(7), uint64(1)).Return(nil, nil)
			},
			wantErr: ErrCartItemNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			carts := new(mocks.MockCartRepository)
			tt.setupMocks(carts)

			svc := NewCartService(carts, new(mocks.MockProductRepository), testLogger())

			err := svc.RemoveItem(context.Background(), 7, 1, tt.quantity)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			carts.AssertExpectations(t)
		})
	}
}
