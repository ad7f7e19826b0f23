package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/btcsuite/btcutil"
)

type OrderStatus string

const (
	StatusUnpaid OrderStatus = "unpaid"
	StatusPaid   OrderStatus = "paid"
)

// Order is the central entity. PaymentAddress and PaymentAmount are assigned
// once at creation and never recomputed; the exchange rate is frozen at that
// point. Items is the serialized line-item snapshot taken from the cart, so
// later catalog edits cannot alter a placed order.
type Order struct {
	ID             string      `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID         int64       `json:"userId" gorm:"not null;index"`
	Name           *string     `json:"name"`
	TgUsername     *string     `json:"telegramUsername"`
	Address        *string     `json:"address"`
	Postcode       *string     `json:"postcode"`
	City           *string     `json:"city"`
	Country        *string     `json:"country"`
	Items          string      `json:"-" gorm:"not null"`
	Total          int64       `json:"total" gorm:"not null"`
	Status         OrderStatus `json:"status" gorm:"type:varchar(16);not null;default:'unpaid';index"`
	PaymentAddress string      `json:"paymentAddress" gorm:"index"`
	PaymentAmount  int64       `json:"paymentAmount"`
	CreatedAt      time.Time   `json:"createdAt" gorm:"autoCreateTime"`
}

// RequiredAmount returns the frozen settlement amount in satoshis.
func (o *Order) RequiredAmount() btcutil.Amount {
	return btcutil.Amount(o.PaymentAmount)
}

// Payable reports whether the order carries a payment target. Orders created
// through the service always do; rows without one are refused settlement
// checks rather than queried against the chain.
func (o *Order) Payable() bool {
	return o.PaymentAddress != "" && o.PaymentAmount > 0
}

// Delivery carries the recipient fields recorded after settlement.
type Delivery struct {
	Name       string
	TgUsername string
	Address    string
	Postcode   string
	City       string
	Country    string
}

// EncodeLineItems serializes a cart snapshot for the order row.
func EncodeLineItems(items []CartProduct) (string, error) {
	b, err := json.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("encode line items: %w", err)
	}
	return string(b), nil
}

// DecodeLineItems parses a stored snapshot. Malformed data yields an empty
// list and an error for the caller to log; order retrieval must never hard-fail
// on a bad snapshot.
func DecodeLineItems(raw string) ([]CartProduct, error) {
	if raw == "" {
		return []CartProduct{}, nil
	}
	var items []CartProduct
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return []CartProduct{}, fmt.Errorf("decode line items: %w", err)
	}
	return items, nil
}
