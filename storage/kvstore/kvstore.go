// Package kvstore opens the configured core.KVStore backend.
package kvstore

import (
	"context"

	"github.com/pkg/errors"

	"github.com/klu2500030136/lptd-app/core"
	"github.com/klu2500030136/lptd-app/storage/kvstore/inmem"
	"github.com/klu2500030136/lptd-app/storage/kvstore/redisstore"
	"github.com/klu2500030136/lptd-app/storage/kvstore/sqlstore"
)

// Open opens the backend selected by conf.Store.Engine, scoped to conf.Store.Prefix.
func Open(ctx context.Context, conf *core.Config) (core.KVStore, error) {
	var (
		store core.KVStore
		err   error
	)
	switch conf.Store.Engine {
	case core.EngineMemory:
		store = inmem.Open()
	case core.EngineRedis:
		store, err = redisstore.Open(ctx, conf.Redis)
	case core.EnginePostgres, core.EngineSQLite:
		store, err = sqlstore.Open(ctx, conf.Store.Engine, conf.Store.DSN)
	default:
		err = errors.Errorf("unknown store engine %q", conf.Store.Engine)
	}
	if err != nil {
		return nil, errors.Wrap(err, "opening store")
	}
	return WithPrefix(store, conf.Store.Prefix), nil
}

type prefixed struct {
	core.KVStore
	prefix string
}

// WithPrefix scopes every key of store under prefix. An empty prefix returns store as is.
func WithPrefix(store core.KVStore, prefix string) core.KVStore {
	if prefix == "" {
		return store
	}
	return &prefixed{KVStore: store, prefix: prefix}
}

func (p *prefixed) Get(ctx context.Context, key string) ([]byte, error) {
	return p.KVStore.Get(ctx, p.prefix+key)
}

func (p *prefixed) Set(ctx context.Context, key string, value []byte) error {
	return p.KVStore.Set(ctx, p.prefix+key, value)
}

func (p *prefixed) Delete(ctx context.Context, key string) error {
	return p.KVStore.Delete(ctx, p.prefix+key)
}
