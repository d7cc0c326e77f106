package domain

import "context"

// OrderRepository is the abstraction for any kind of database intended to
// persist sell orders. Records are append-only for this pipeline: once an
// order reaches a terminal status it is never deleted, only read back for
// audit and history.
type OrderRepository interface {
	// AddOrder persists a new order, failing if one with the same external id
	// already exists.
	AddOrder(ctx context.Context, order *Order) error
	// GetOrder returns the order with the given external id, or
	// ErrOrderNotFound.
	GetOrder(ctx context.Context, externalId string) (*Order, error)
	// GetAllOrders returns all the orders stored in the repository.
	GetAllOrders(ctx context.Context) ([]Order, error)
	// GetPendingOrders returns all the orders that did not reach a terminal
	// status yet.
	GetPendingOrders(ctx context.Context) ([]Order, error)
	// UpdateOrder allows to commit multiple changes to the same order in a
	// transactional way.
	UpdateOrder(
		ctx context.Context,
		externalId string,
		updateFn func(o *Order) (*Order, error),
	) error
}
