package ports

import (
	"github.com/offramp-network/offramp-daemon/internal/core/domain"
)

// RepoManager gives access to all the repositories of the persistence layer
// in a single place.
type RepoManager interface {
	OrderRepository() domain.OrderRepository

	Close()
}
