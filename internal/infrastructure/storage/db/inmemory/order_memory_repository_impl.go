package inmemory

import (
	"context"

	"github.com/offramp-network/offramp-daemon/internal/core/domain"
)

type orderRepositoryImpl struct {
	store *orderInmemoryStore
}

// NewOrderRepositoryImpl returns a new inmemory OrderRepository implementation.
func NewOrderRepositoryImpl(store *orderInmemoryStore) domain.OrderRepository {
	return &orderRepositoryImpl{store}
}

func (r orderRepositoryImpl) AddOrder(
	_ context.Context, order *domain.Order,
) error {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	if _, ok := r.store.orders[order.ExternalId]; ok {
		return domain.ErrOrderAlreadyExists
	}
	r.store.orders[order.ExternalId] = *order
	return nil
}

func (r orderRepositoryImpl) GetOrder(
	_ context.Context, externalId string,
) (*domain.Order, error) {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	return r.getOrder(externalId)
}

func (r orderRepositoryImpl) GetAllOrders(
	_ context.Context,
) ([]domain.Order, error) {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	allOrders := make([]domain.Order, 0, len(r.store.orders))
	for _, order := range r.store.orders {
		allOrders = append(allOrders, order)
	}
	return allOrders, nil
}

func (r orderRepositoryImpl) GetPendingOrders(
	_ context.Context,
) ([]domain.Order, error) {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	pendingOrders := make([]domain.Order, 0)
	for _, order := range r.store.orders {
		if order.IsTerminal() {
			continue
		}
		pendingOrders = append(pendingOrders, order)
	}
	return pendingOrders, nil
}

func (r orderRepositoryImpl) UpdateOrder(
	_ context.Context,
	externalId string,
	updateFn func(o *domain.Order) (*domain.Order, error),
) error {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	currentOrder, err := r.getOrder(externalId)
	if err != nil {
		return err
	}

	updatedOrder, err := updateFn(currentOrder)
	if err != nil {
		return err
	}

	r.store.orders[externalId] = *updatedOrder
	return nil
}

func (r orderRepositoryImpl) getOrder(externalId string) (*domain.Order, error) {
	order, ok := r.store.orders[externalId]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	return &order, nil
}
