package dbbadger

import (
	"context"

	"github.com/dgraph-io/badger/v3"
	"github.com/timshannon/badgerhold/v4"

	"github.com/offramp-network/offramp-daemon/internal/core/domain"
)

type orderRepositoryImpl struct {
	store *badgerhold.Store
}

func newOrderRepositoryImpl(store *badgerhold.Store) domain.OrderRepository {
	return orderRepositoryImpl{store}
}

func (r orderRepositoryImpl) AddOrder(
	ctx context.Context, order *domain.Order,
) error {
	return r.insertOrder(ctx, *order)
}

func (r orderRepositoryImpl) GetOrder(
	ctx context.Context, externalId string,
) (*domain.Order, error) {
	return r.getOrder(ctx, externalId)
}

func (r orderRepositoryImpl) GetAllOrders(
	ctx context.Context,
) ([]domain.Order, error) {
	return r.findOrders(ctx, nil)
}

func (r orderRepositoryImpl) GetPendingOrders(
	ctx context.Context,
) ([]domain.Order, error) {
	query := badgerhold.Where("Status.Code").
		Le(domain.OrderStatusCodeProposed).
		And("Status.Failed").Eq(false)
	return r.findOrders(ctx, query)
}

func (r orderRepositoryImpl) UpdateOrder(
	ctx context.Context,
	externalId string,
	updateFn func(o *domain.Order) (*domain.Order, error),
) error {
	currentOrder, err := r.getOrder(ctx, externalId)
	if err != nil {
		return err
	}

	updatedOrder, err := updateFn(currentOrder)
	if err != nil {
		return err
	}

	return r.updateOrder(ctx, updatedOrder.ExternalId, *updatedOrder)
}

func (r orderRepositoryImpl) insertOrder(
	ctx context.Context, order domain.Order,
) error {
	var err error
	if ctx.Value("tx") != nil {
		tx := ctx.Value("tx").(*badger.Txn)
		err = r.store.TxInsert(tx, order.ExternalId, &order)
	} else {
		err = r.store.Insert(order.ExternalId, &order)
	}
	if err != nil {
		if err == badgerhold.ErrKeyExists {
			return domain.ErrOrderAlreadyExists
		}
		return err
	}
	return nil
}

func (r orderRepositoryImpl) getOrder(
	ctx context.Context, externalId string,
) (*domain.Order, error) {
	var order domain.Order
	var err error
	if ctx.Value("tx") != nil {
		tx := ctx.Value("tx").(*badger.Txn)
		err = r.store.TxGet(tx, externalId, &order)
	} else {
		err = r.store.Get(externalId, &order)
	}
	if err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, domain.ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}

func (r orderRepositoryImpl) updateOrder(
	ctx context.Context, externalId string, order domain.Order,
) error {
	if ctx.Value("tx") != nil {
		tx := ctx.Value("tx").(*badger.Txn)
		return r.store.TxUpdate(tx, externalId, order)
	}
	return r.store.Update(externalId, order)
}

func (r orderRepositoryImpl) findOrders(
	ctx context.Context, query *badgerhold.Query,
) ([]domain.Order, error) {
	var orders []domain.Order
	var err error
	if ctx.Value("tx") != nil {
		tx := ctx.Value("tx").(*badger.Txn)
		err = r.store.TxFind(tx, &orders, query)
	} else {
		err = r.store.Find(&orders, query)
	}
	return orders, err
}
