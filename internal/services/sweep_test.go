package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/btcsuite/btcutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"shop-service/internal/domain"
	"shop-service/internal/mocks"
)

func TestPaymentSweeper_OneOrderFailureDoesNotBlockOthers(t *testing.T) {
	first := domain.Order{
		ID:             "order-1",
		Status:         domain.StatusUnpaid,
		PaymentAddress: "tb1qfailing",
		PaymentAmount:  500000,
	}
	second := domain.Order{
		ID:             "order-2",
		Status:         domain.StatusUnpaid,
		PaymentAddress: "tb1qfunded",
		PaymentAmount:  500000,
	}

	repo := new(mocks.MockOrderRepository)
	repo.On("FindUnpaid", mock.Anything).Return([]domain.Order{first, second}, nil)
	repo.On("MarkPaid", mock.Anything, "order-2").Return(true, nil)

	chainCli := new(mocks.MockChainClient)
	// The first order's chain lookup fails; the sweep must still settle the second.
	chainCli.On("ReceivedAmount", mock.Anything, "tb1qfailing").
		Return(btcutil.Amount(0), errors.New("provider down"))
	chainCli.On("ReceivedAmount", mock.Anything, "tb1qfunded").
		Return(btcutil.Amount(500000), nil)

	engine := NewPaymentService(repo, chainCli, nil, 0.95, testLogger())
	sweeper := NewPaymentSweeper(repo, engine, time.Minute, testLogger())

	sweeper.sweep(context.Background())

	repo.AssertExpectations(t)
	chainCli.AssertExpectations(t)
}

func TestPaymentSweeper_LoadFailureIsRetriedNextInterval(t *testing.T) {
	repo := new(mocks.MockOrderRepository)
	repo.On("FindUnpaid", mock.Anything).Return(nil, errors.New("db down"))

	engine := NewPaymentService(repo, new(mocks.MockChainClient), nil, 0.95, testLogger())
	sweeper := NewPaymentSweeper(repo, engine, time.Minute, testLogger())

	assert.NotPanics(t, func() { sweeper.sweep(context.Background()) })
	repo.AssertExpectations(t)
}

func TestPaymentSweeper_CancellationStopsRunPromptly(t *testing.T) {
	repo := new(mocks.MockOrderRepository)
	repo.On("FindUnpaid", mock.Anything).Return([]domain.Order{}, nil)

	engine := NewPaymentService(repo, new(mocks.MockChainClient), nil, 0.95, testLogger())
	sweeper := NewPaymentSweeper(repo, engine, time.Hour, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- sweeper.Run(ctx)
	}()

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("sweeper did not observe cancellation promptly")
	}
}
