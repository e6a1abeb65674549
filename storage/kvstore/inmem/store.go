package inmem

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/klu2500030136/lptd-app/core"
)

var errClosed = errors.New("inmem: store is closed")

// Store is an ephemeral core.KVStore backed by a map.
type Store struct {
	sync.RWMutex
	table  map[string][]byte
	closed bool
}

var _ core.KVStore = (*Store)(nil) // interface compliance check

func Open() *Store {
	return &Store{table: make(map[string][]byte)}
}

func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	s.RLock()
	defer s.RUnlock()

	if s.closed {
		return nil, errClosed
	}
	val, ok := s.table[key]
	if !ok {
		return nil, core.ErrKeyNotFound
	}
	return copyBytes(val), nil
}

func (s *Store) Set(_ context.Context, key string, value []byte) error {
	s.Lock()
	defer s.Unlock()

	if s.closed {
		return errClosed
	}
	s.table[key] = copyBytes(value)
	return nil
}

func (s *Store) Delete(_ context.Context, key string) error {
	s.Lock()
	defer s.Unlock()

	if s.closed {
		return errClosed
	}
	delete(s.table, key)
	return nil
}

// Keys returns the stored keys, in no particular order.
func (s *Store) Keys() []string {
	s.RLock()
	defer s.RUnlock()

	keys := make([]string, 0, len(s.table))
	for k := range s.table {
		keys = append(keys, k)
	}
	return keys
}

func (s *Store) Close() error {
	s.Lock()
	defer s.Unlock()
	s.closed = true
	return nil
}

func copyBytes(b []byte) []byte {
	c := make([]byte, len(b))
	copy(c, b)
	return c
}
