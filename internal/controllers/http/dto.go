package http

import (
	"time"

	"shop-service/internal/domain"
)

type ProductRequest struct {
	Name     string `json:"name" binding:"required,min=1"`
	Price    int64  `json:"price" binding:"required,gt=0"`
	Gender   string `json:"gender" binding:"required,min=1"`
	Category string `json:"category" binding:"required,min=1"`
	ImageURL string `json:"image_url" binding:"required,min=1"`
}

type CartItemRequest struct {
	UserID    int64  `json:"user_id" binding:"required,gt=0"`
	ProductID uint64 `json:"product_id" binding:"required"`
	Quantity  int64  `json:"quantity"`
}

type CreateOrderRequest struct {
	UserID int64                `json:"user_id" binding:"required,gt=0"`
	Items  []domain.CartProduct `json:"items" binding:"required,min=1"`
	Total  int64                `json:"total" binding:"required,gt=0"`
}

type DeliveryRequest struct {
	OrderID    string `json:"order_id" binding:"required"`
	Name       string `json:"name" binding:"required,min=1"`
	TgUsername string `json:"telegram_username" binding:"required,min=1"`
	Address    string `json:"address" binding:"required,min=1"`
	Postcode   string `json:"postcode" binding:"required,min=1"`
	City       string `json:"city" binding:"required,min=1"`
	Country    string `json:"country" binding:"required,min=1"`
}

// OrderResponse is the durable order layout served to clients, with the
// line-item snapshot decoded.
type OrderResponse struct {
	ID             string               `json:"id"`
	UserID         int64                `json:"user_id"`
	Name           *string              `json:"name"`
	TgUsername     *string              `json:"telegram_username"`
	Address        *string              `json:"address"`
	Postcode       *string              `json:"postcode"`
	City           *string              `json:"city"`
	Country        *string              `json:"country"`
	Items          []domain.CartProduct `json:"items"`
	Total          int64                `json:"total"`
	Status         domain.OrderStatus   `json:"status"`
	PaymentAddress string               `json:"payment_address"`
	PaymentAmount  float64              `json:"payment_amount"`
	CreatedAt      time.Time            `json:"created_at"`
}

type PaymentStatusResponse struct {
	Status  domain.OrderStatus `json:"status"`
	Message string             `json:"message"`
}

func orderResponse(order *domain.Order, items []domain.CartProduct) OrderResponse {
	return OrderResponse{
		ID:             order.ID,
		UserID:         order.UserID,
		Name:           order.Name,
		TgUsername:     order.TgUsername,
		Address:        order.Address,
		Postcode:       order.Postcode,
		City:           order.City,
		Country:        order.Country,
		Items:          items,
		Total:          order.Total,
		Status:         order.Status,
		PaymentAddress: order.PaymentAddress,
		PaymentAmount:  order.RequiredAmount().ToBTC(),
		CreatedAt:      order.CreatedAt,
	}
}
