package services

import (
	"context"
	"log/slog"
	"time"

	"shop-service/internal/repository"
)

// PaymentSweeper periodically evaluates every unpaid order against the chain.
// A failure for one order never blocks the rest, and an unexpected failure of
// a whole pass is logged and retried after the same interval; the sweep must
// never silently die.
type PaymentSweeper struct {
	orders   repository.OrderRepository
	engine   *PaymentService
	interval time.Duration
	logger   *slog.Logger
}

func NewPaymentSweeper(orders repository.OrderRepository, engine *PaymentService, interval time.Duration, logger *slog.Logger) *PaymentSweeper {
	if interval <= 0 {
		interval = 60 * time.Second
	}
	return &PaymentSweeper{
		orders:   orders,
		engine:   engine,
		interval: interval,
		logger:   logger,
	}
}

// Run loops until the context is cancelled. Cancellation is cooperative: an
// in-flight pass finishes before the loop observes it.
func (s *PaymentSweeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.sweep(ctx)
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("payment sweep cancelled")
			return ctx.Err()
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *PaymentSweeper) sweep(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("payment sweep pass panicked, continuing next interval", "panic", r)
		}
	}()

	s.logger.Info("starting payment checking cycle")
	unpaid, err := s.orders.FindUnpaid(ctx)
	if err != nil {
		s.logger.Error("failed to load unpaid orders, continuing next interval", "error", err)
		return
	}
	if len(unpaid) == 0 {
		s.logger.Info("no unpaid orders to check")
		return
	}
	s.logger.Info("found unpaid orders to check", "count", len(unpaid))

	for i := range unpaid {
		order := &unpaid[i]
		outcome, err := s.engine.EvaluateOrder(ctx, order)
		if err != nil {
			s.logger.Error("failed to check payment for order", "order_id", order.ID, "error", err)
			continue
		}
		if outcome == OutcomeSettled {
			s.logger.Info("order settled by background sweep", "order_id", order.ID)
		}
	}
}
