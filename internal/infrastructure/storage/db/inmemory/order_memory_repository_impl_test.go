package inmemory

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/offramp-network/offramp-daemon/internal/core/domain"
)

var ctx = context.Background()

func TestAddAndGetOrder(t *testing.T) {
	repo := NewRepoManager().OrderRepository()

	order := newTestOrder(t, "ext-1")
	require.NoError(t, repo.AddOrder(ctx, order))

	err := repo.AddOrder(ctx, order)
	require.ErrorIs(t, err, domain.ErrOrderAlreadyExists)

	found, err := repo.GetOrder(ctx, "ext-1")
	require.NoError(t, err)
	require.Equal(t, order.ExternalId, found.ExternalId)
	require.True(t, found.IsCreated())

	_, err = repo.GetOrder(ctx, "unknown")
	require.ErrorIs(t, err, domain.ErrOrderNotFound)
}

func TestGetPendingOrders(t *testing.T) {
	repo := NewRepoManager().OrderRepository()

	pending := newTestOrder(t, "ext-1")
	require.NoError(t, repo.AddOrder(ctx, pending))

	sent := newTestOrder(t, "ext-2")
	sent.Quote(decimal.NewFromInt(100), "USD", "")
	sent.Propose()
	sent.Send("abc123", decimal.NewFromInt(100), decimal.Zero, time.Now().UnixMilli())
	require.NoError(t, repo.AddOrder(ctx, sent))

	failed := newTestOrder(t, "ext-3")
	failed.Fail("whatever")
	require.NoError(t, repo.AddOrder(ctx, failed))

	all, err := repo.GetAllOrders(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)

	orders, err := repo.GetPendingOrders(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	require.Equal(t, "ext-1", orders[0].ExternalId)
}

func TestUpdateOrder(t *testing.T) {
	repo := NewRepoManager().OrderRepository()

	order := newTestOrder(t, "ext-1")
	require.NoError(t, repo.AddOrder(ctx, order))

	err := repo.UpdateOrder(
		ctx, "ext-1", func(o *domain.Order) (*domain.Order, error) {
			if _, err := o.Quote(
				decimal.NewFromFloat(99.5), "EUR", "sepa_bank_transfer",
			); err != nil {
				return nil, err
			}
			return o, nil
		},
	)
	require.NoError(t, err)

	found, err := repo.GetOrder(ctx, "ext-1")
	require.NoError(t, err)
	require.True(t, found.IsQuoted())
	require.Equal(t, "EUR", found.FiatCurrency)

	// changes are discarded when the update fn errors
	err = repo.UpdateOrder(
		ctx, "ext-1", func(o *domain.Order) (*domain.Order, error) {
			o.Fail("should not be persisted")
			return nil, domain.ErrOrderIsTerminal
		},
	)
	require.ErrorIs(t, err, domain.ErrOrderIsTerminal)

	found, err = repo.GetOrder(ctx, "ext-1")
	require.NoError(t, err)
	require.False(t, found.IsFailed())

	err = repo.UpdateOrder(
		ctx, "unknown", func(o *domain.Order) (*domain.Order, error) {
			return o, nil
		},
	)
	require.ErrorIs(t, err, domain.ErrOrderNotFound)
}

func newTestOrder(t *testing.T, externalId string) *domain.Order {
	order, err := domain.NewOrder(
		externalId, "tx-1", "wallet-1", "bc1qtest",
		"btc", "btc", decimal.NewFromFloat(0.005),
		"USD", decimal.NewFromInt(100), "ach_bank_transfer",
	)
	require.NoError(t, err)
	return order
}
