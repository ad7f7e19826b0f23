package domain

import "time"

type OrderCreatedEvent struct {
	OrderID        string    `json:"orderId"`
	UserID         int64     `json:"userId"`
	Total          int64     `json:"total"`
	PaymentAddress string    `json:"paymentAddress"`
	PaymentAmount  int64     `json:"paymentAmount"`
	CreatedAt      time.Time `json:"createdAt"`
}

type OrderPaidEvent struct {
	OrderID        string    `json:"orderId"`
	UserID         int64     `json:"userId"`
	PaymentAddress string    `json:"paymentAddress"`
	PaymentAmount  int64     `json:"paymentAmount"`
	PaidAt         time.Time `json:"paidAt"`
}
