package dbbadger

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/dgraph-io/badger/v3"
	"github.com/dgraph-io/badger/v3/options"
	"github.com/timshannon/badgerhold/v4"

	"github.com/offramp-network/offramp-daemon/internal/core/domain"
)

// RepoManager holds the badgerhold stores in a single data structure: one for
// the order records and a dedicated one for the webhook subscriptions.
type RepoManager struct {
	orderStore  *badgerhold.Store
	pubsubStore *badgerhold.Store

	orderRepository domain.OrderRepository
}

// NewRepoManager opens (or creates if not existing) the badger stores on disk
// under the given base data dir. An empty dir yields volatile in-memory
// stores.
func NewRepoManager(baseDbDir string, logger badger.Logger) (*RepoManager, error) {
	var orderDir, pubsubDir string
	if len(baseDbDir) > 0 {
		orderDir = filepath.Join(baseDbDir, "orders")
		pubsubDir = filepath.Join(baseDbDir, "pubsub")
	}

	orderStore, err := createDb(orderDir, logger)
	if err != nil {
		return nil, fmt.Errorf("opening orders db: %w", err)
	}
	pubsubStore, err := createDb(pubsubDir, logger)
	if err != nil {
		return nil, fmt.Errorf("opening pubsub db: %w", err)
	}

	manager := &RepoManager{
		orderStore:  orderStore,
		pubsubStore: pubsubStore,
	}
	manager.orderRepository = newOrderRepositoryImpl(orderStore)
	return manager, nil
}

func (m *RepoManager) OrderRepository() domain.OrderRepository {
	return m.orderRepository
}

// PubSubStore exposes the dedicated store for webhook subscriptions.
func (m *RepoManager) PubSubStore() *badgerhold.Store {
	return m.pubsubStore
}

func (m *RepoManager) Close() {
	m.orderStore.Close()
	m.pubsubStore.Close()
}

// JSONEncode is a custom JSON based encoder for badger
func JSONEncode(value interface{}) ([]byte, error) {
	var buff bytes.Buffer

	en := json.NewEncoder(&buff)
	if err := en.Encode(value); err != nil {
		return nil, err
	}
	return buff.Bytes(), nil
}

// JSONDecode is a custom JSON based decoder for badger
func JSONDecode(data []byte, value interface{}) error {
	var buff bytes.Buffer
	de := json.NewDecoder(&buff)

	if _, err := buff.Write(data); err != nil {
		return err
	}
	return de.Decode(value)
}

func createDb(dbDir string, logger badger.Logger) (*badgerhold.Store, error) {
	isInMemory := len(dbDir) <= 0

	opts := badger.DefaultOptions(dbDir)
	opts.Logger = logger
	if isInMemory {
		opts.InMemory = true
	} else {
		opts.Compression = options.ZSTD
	}

	return badgerhold.Open(badgerhold.Options{
		Encoder:          JSONEncode,
		Decoder:          JSONDecode,
		SequenceBandwith: 100,
		Options:          opts,
	})
}
