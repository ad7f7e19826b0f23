package services

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/btcsuite/btcutil"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"shop-service/internal/domain"
	"shop-service/internal/infra/rabbitmq"
	"shop-service/internal/infra/rates"
	"shop-service/internal/infra/telegram"
	"shop-service/internal/infra/wallet"
	"shop-service/internal/repository"
)

const rateCacheKey = "rates:btc:eur"
const rateCacheTTL = time.Minute

// OrderService owns order creation, retrieval, and the delivery update that
// emits the single operator notification.
type OrderService struct {
	orders      repository.OrderRepository
	carts       repository.CartRepository
	rateClient  rates.ClientInterface
	walletCli   wallet.ClientInterface
	notifier    telegram.NotifierInterface
	publisher   rabbitmq.PublisherInterface
	adminChatID int64
	logger      *slog.Logger
	redisClient *redis.Client
}

func NewOrderService(
	orders repository.OrderRepository,
	carts repository.CartRepository,
	rateClient rates.ClientInterface,
	walletCli wallet.ClientInterface,
	notifier telegram.NotifierInterface,
	publisher rabbitmq.PublisherInterface,
	adminChatID int64,
	logger *slog.Logger,
) *OrderService {
	return &OrderService{
		orders:      orders,
		carts:       carts,
		rateClient:  rateClient,
		walletCli:   walletCli,
		notifier:    notifier,
		publisher:   publisher,
		adminChatID: adminChatID,
		logger:      logger,
	}
}

// SetRedisClient enables the short-TTL exchange-rate cache.
func (s *OrderService) SetRedisClient(client *redis.Client) {
	s.redisClient = client
}

// CreateOrder converts the user's cart into an unpaid order. The empty-cart
// check runs before any rate or wallet call. The payment address and required
// amount are computed once here and never reassigned. The order row commits
// first and the cart is cleared afterwards; a crash between the two leaves a
// surviving cart, never a lost order.
func (s *OrderService) CreateOrder(ctx context.Context, userID int64, items []domain.CartProduct, total int64) (*domain.Order, error) {
	cartItems, err := s.carts.Items(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(cartItems) == 0 {
		return nil, ErrEmptyCart
	}

	rate, err := s.currentRate(ctx)
	if err != nil {
		return nil, err
	}

	paymentAddress, err := s.walletCli.NewPaymentAddress(ctx, userID)
	if err != nil {
		return nil, err
	}

	required, err := btcutil.NewAmount(float64(total) / rate)
	if err != nil {
		return nil, fmt.Errorf("compute required amount: %w", err)
	}

	encoded, err := domain.EncodeLineItems(items)
	if err != nil {
		return nil, err
	}

	order := &domain.Order{
		ID:             uuid.NewString(),
		UserID:         userID,
		Items:          encoded,
		Total:          total,
		Status:         domain.StatusUnpaid,
		PaymentAddress: paymentAddress,
		PaymentAmount:  int64(required),
		CreatedAt:      time.Now().UTC(),
	}

	if err := s.orders.Create(ctx, order); err != nil {
		return nil, err
	}

	if err := s.carts.Clear(ctx, userID); err != nil {
		// The order row is durable; a surviving cart is the accepted trade-off.
		s.logger.Error("order created but cart clear failed", "order_id", order.ID, "user_id", userID, "error", err)
	}

	s.logger.Info("order created",
		"order_id", order.ID,
		"user_id", userID,
		"total", total,
		"rate", rate,
		"required_btc", required.ToBTC(),
		"payment_address", paymentAddress,
	)

	go s.publishOrderCreated(context.Background(), order)

	return order, nil
}

func (s *OrderService) currentRate(ctx context.Context) (float64, error) {
	if s.redisClient != nil {
		cached, err := s.redisClient.Get(ctx, rateCacheKey).Result()
		if err == nil {
			if rate, perr := strconv.ParseFloat(cached, 64); perr == nil && rate > 0 {
				return rate, nil
			}
		}
	}

	rate, err := s.rateClient.GetRate(ctx)
	if err != nil {
		return 0, err
	}

	if s.redisClient != nil {
		s.redisClient.Set(ctx, rateCacheKey, strconv.FormatFloat(rate, 'f', -1, 64), rateCacheTTL)
	}
	return rate, nil
}

func (s *OrderService) publishOrderCreated(ctx context.Context, order *domain.Order) {
	if s.publisher == nil {
		return
	}
	evt := domain.OrderCreatedEvent{
		OrderID:        order.ID,
		UserID:         order.UserID,
		Total:          order.Total,
		PaymentAddress: order.PaymentAddress,
		PaymentAmount:  order.PaymentAmount,
		CreatedAt:      order.CreatedAt,
	}
	if err := s.publisher.Publish(ctx, "order.created", evt); err != nil {
		s.logger.Error("failed to publish order.created event", "order_id", order.ID, "error", err)
	}
}

// GetOrder loads an order and decodes its line-item snapshot. A malformed
// snapshot is logged and served as an empty list rather than failing the read.
func (s *OrderService) GetOrder(ctx context.Context, id string) (*domain.Order, []domain.CartProduct, error) {
	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if order == nil {
		return nil, nil, ErrOrderNotFound
	}

	items, err := domain.DecodeLineItems(order.Items)
	if err != nil {
		s.logger.Error("failed to parse items for order", "order_id", order.ID, "error", err)
	}
	return order, items, nil
}

// UpdateDelivery records the delivery fields of a paid order and sends the
// single lifecycle notification to the operator. Delivery data for an unpaid
// order is rejected.
func (s *OrderService) UpdateDelivery(ctx context.Context, orderID string, d domain.Delivery) (*domain.Order, []domain.CartProduct, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, nil, err
	}
	if order == nil {
		return nil, nil, ErrOrderNotFound
	}
	if order.Status != domain.StatusPaid {
		return nil, nil, ErrOrderNotPaid
	}

	if err := s.orders.UpdateDelivery(ctx, orderID, d); err != nil {
		return nil, nil, err
	}
	s.logger.Info("delivery information updated", "order_id", orderID)

	order.Name = &d.Name
	order.TgUsername = &d.TgUsername
	order.Address = &d.Address
	order.Postcode = &d.Postcode
	order.City = &d.City
	order.Country = &d.Country

	items, derr := domain.DecodeLineItems(order.Items)
	if derr != nil {
		s.logger.Error("failed to parse items for order", "order_id", order.ID, "error", derr)
	}

	if err := s.notifier.SendMessage(ctx, s.adminChatID, deliveryNotification(order, d, items)); err != nil {
		// The notification is best effort; the delivery update already stuck.
		s.logger.Error("failed to notify operator about paid order", "order_id", orderID, "error", err)
	}

	return order, items, nil
}

func deliveryNotification(order *domain.Order, d domain.Delivery, items []domain.CartProduct) string {
	var lines []string
	for _, item := range items {
		lines = append(lines, fmt.Sprintf("- %s (x%d) = €%.2f", item.Name, item.Quantity, float64(item.Price*item.Quantity)))
	}

	var b strings.Builder
	b.WriteString("*New Paid Order with Delivery*\n")
	fmt.Fprintf(&b, "*Order ID:* `%s`\n", order.ID)
	fmt.Fprintf(&b, "*User ID:* `%d`\n", order.UserID)
	fmt.Fprintf(&b, "*Name:* %s\n", d.Name)
	fmt.Fprintf(&b, "*Telegram:* @%s\n", d.TgUsername)
	fmt.Fprintf(&b, "*Delivery Address:* %s\n", d.Address)
	fmt.Fprintf(&b, "*City:* %s\n", d.City)
	fmt.Fprintf(&b, "*Postal Code:* %s\n", d.Postcode)
	fmt.Fprintf(&b, "*Country:* %s\n", d.Country)
	fmt.Fprintf(&b, "\n*Items:*\n%s\n", strings.Join(lines, "\n"))
	fmt.Fprintf(&b, "\n*Total Amount (EUR):* €%.2f\n", float64(order.Total))
	fmt.Fprintf(&b, "*Paid (BTC):* %.8f BTC\n", order.RequiredAmount().ToBTC())
	fmt.Fprintf(&b, "*Payment Address:* `%s`\n", order.PaymentAddress)
	fmt.Fprintf(&b, "*Status:* %s", strings.ToUpper(string(order.Status)))
	return b.String()
}
