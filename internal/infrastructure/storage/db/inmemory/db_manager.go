package inmemory

import (
	"sync"

	"github.com/offramp-network/offramp-daemon/internal/core/domain"
	"github.com/offramp-network/offramp-daemon/internal/core/ports"
)

type orderInmemoryStore struct {
	orders map[string]domain.Order
	locker *sync.Mutex
}

// RepoManager is the in-memory flavor of the storage layer, used by tests and
// by the daemon when run with no data dir.
type RepoManager struct {
	orderRepository domain.OrderRepository
}

func NewRepoManager() ports.RepoManager {
	orderStore := &orderInmemoryStore{
		orders: make(map[string]domain.Order),
		locker: &sync.Mutex{},
	}

	return &RepoManager{
		orderRepository: NewOrderRepositoryImpl(orderStore),
	}
}

func (d *RepoManager) OrderRepository() domain.OrderRepository {
	return d.orderRepository
}

func (d *RepoManager) Close() {}
