package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/btcsuite/btcutil"

	"shop-service/internal/domain"
	"shop-service/internal/infra/chain"
	"shop-service/internal/infra/rabbitmq"
	"shop-service/internal/repository"
)

// SettlementOutcome is the result of evaluating one order against the chain.
type SettlementOutcome int

const (
	// OutcomeAlreadyPaid means the order was paid before this evaluation.
	OutcomeAlreadyPaid SettlementOutcome = iota
	// OutcomeSettled means this evaluation performed the unpaid -> paid transition.
	OutcomeSettled
	// OutcomeNotSettled means the observed funds are below the threshold.
	OutcomeNotSettled
	// OutcomeIndeterminate means the chain could not be queried; the order is
	// treated as not yet paid rather than failing the caller.
	OutcomeIndeterminate
)

// PaymentService is the settlement engine: it decides whether an order is
// funded and drives the unpaid -> paid transition through the order ledger.
// It is invoked concurrently by the background sweep and the on-demand check;
// the ledger's conditional MarkPaid keeps the transition single-shot.
type PaymentService struct {
	orders    repository.OrderRepository
	chainCli  chain.ClientInterface
	publisher rabbitmq.PublisherInterface
	tolerance float64
	logger    *slog.Logger
}

func NewPaymentService(
	orders repository.OrderRepository,
	chainCli chain.ClientInterface,
	publisher rabbitmq.PublisherInterface,
	tolerance float64,
	logger *slog.Logger,
) *PaymentService {
	return &PaymentService{
		orders:    orders,
		chainCli:  chainCli,
		publisher: publisher,
		tolerance: tolerance,
		logger:    logger,
	}
}

// IsSettled reports whether the received amount covers the required amount
// within the tolerance. This predicate is the single source of truth for both
// the sweep and the on-demand path.
func IsSettled(required, received btcutil.Amount, tolerance float64) bool {
	return float64(received) >= float64(required)*tolerance
}

// EvaluateOrder checks the order's payment address against the chain and, when
// funded, requests the paid transition. Safe to call repeatedly and
// concurrently for the same order.
func (s *PaymentService) EvaluateOrder(ctx context.Context, order *domain.Order) (SettlementOutcome, error) {
	if order.Status == domain.StatusPaid {
		return OutcomeAlreadyPaid, nil
	}
	if !order.Payable() {
		return OutcomeNotSettled, ErrOrderNotPayable
	}

	received, err := s.chainCli.ReceivedAmount(ctx, order.PaymentAddress)
	if err != nil {
		// Transient chain failures must never crash the sweep or surface to
		// users; "could not determine" is treated as not paid yet.
		s.logger.Warn("chain query failed, treating order as not yet paid",
			"order_id", order.ID, "payment_address", order.PaymentAddress, "error", err)
		return OutcomeIndeterminate, nil
	}

	required := order.RequiredAmount()
	s.logger.Info("settlement check",
		"order_id", order.ID,
		"received_btc", received.ToBTC(),
		"required_btc", required.ToBTC(),
		"tolerance", s.tolerance,
	)

	if !IsSettled(required, received, s.tolerance) {
		return OutcomeNotSettled, nil
	}

	transitioned, err := s.orders.MarkPaid(ctx, order.ID)
	if err != nil {
		return OutcomeNotSettled, err
	}
	if !transitioned {
		// A concurrent evaluation won the transition.
		return OutcomeAlreadyPaid, nil
	}

	order.Status = domain.StatusPaid
	s.logger.Info("order paid, delivery details awaiting", "order_id", order.ID)
	s.publishOrderPaid(ctx, order)
	return OutcomeSettled, nil
}

// CheckPayment is the on-demand path entered from the API, bypassing the
// sweep's timing.
func (s *PaymentService) CheckPayment(ctx context.Context, orderID string) (SettlementOutcome, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return OutcomeNotSettled, err
	}
	if order == nil {
		return OutcomeNotSettled, ErrOrderNotFound
	}
	return s.EvaluateOrder(ctx, order)
}

func (s *PaymentService) publishOrderPaid(ctx context.Context, order *domain.Order) {
	if s.publisher == nil {
		return
	}
	evt := domain.OrderPaidEvent{
		OrderID:        order.ID,
		UserID:         order.UserID,
		PaymentAddress: order.PaymentAddress,
		PaymentAmount:  order.PaymentAmount,
		PaidAt:         time.Now().UTC(),
	}
	if err := s.publisher.Publish(ctx, "order.paid", evt); err != nil {
		s.logger.Error("failed to publish order.paid event", "order_id", order.ID, "error", err)
	}
}
