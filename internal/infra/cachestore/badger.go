package cachestore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/sngor/bayon-coagent-sub013/internal/domain"
)

type BadgerStore struct {
	db  *badger.DB
	now func() time.Time
}

// OpenBadger opens a badger database at path, or an in-memory one when path
// is empty.
func OpenBadger(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	if path == "" {
		opts = opts.WithInMemory(true)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return db, nil
}

func NewBadgerStore(db *badger.DB) *BadgerStore {
	return &BadgerStore{
		db:  db,
		now: time.Now,
	}
}

func (s *BadgerStore) Get(ctx context.Context, key domain.CohortKey) (*domain.CacheEntry, error) {
	var data []byte

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(cacheKey(key)))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return domain.ErrCacheEntryNotFound
		}
		if err != nil {
			return fmt.Errorf("get cache entry: %w", err)
		}

		data, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, err
	}

	return entryFor(key, data)
}

func (s *BadgerStore) Put(ctx context.Context, key domain.CohortKey, entry *domain.CacheEntry) error {
	data, err := encodeEntryFor(key, entry)
	if err != nil {
		return err
	}

	badgerKey := []byte(cacheKey(key))
	ttl := entry.ExpiresAt.Sub(s.now())

	return s.db.Update(func(txn *badger.Txn) error {
		if ttl <= 0 {
			if err := txn.Delete(badgerKey); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("delete cache entry: %w", err)
			}
			return nil
		}

		if err := txn.SetEntry(badger.NewEntry(badgerKey, data).WithTTL(ttl)); err != nil {
			return fmt.Errorf("set cache entry: %w", err)
		}
		return nil
	})
}

func (s *BadgerStore) Ping(_ context.Context) error {
	if s.db.IsClosed() {
		return errors.New("badger database is closed")
	}
	return nil
}

func (s *BadgerStore) Close() error {
	return s.db.Close()
}
