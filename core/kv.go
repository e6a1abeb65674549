package core

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
)

// ErrKeyNotFound is returned by KVStore.Get when no value is stored under the key.
var ErrKeyNotFound = errors.New("key not found")

// KVStore is the client-local key-value storage all persisted state lives in.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	Close() error
}

// GetJSON decodes the value stored under key into dest.
// found is false (and dest untouched) when the key is absent.
func GetJSON(ctx context.Context, store KVStore, key string, dest interface{}) (found bool, err error) {
	data, err := store.Get(ctx, key)
	if err != nil {
		if errors.Cause(err) == ErrKeyNotFound {
			return false, nil
		}
		return false, errors.Wrapf(err, "getting %q", key)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, errors.Wrapf(err, "decoding %q", key)
	}
	return true, nil
}

// SetJSON encodes value and stores it under key.
func SetJSON(ctx context.Context, store KVStore, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return errors.Wrapf(err, "encoding %q", key)
	}
	return errors.Wrapf(store.Set(ctx, key, data), "setting %q", key)
}
