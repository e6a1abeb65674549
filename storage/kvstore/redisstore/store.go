package redisstore

import (
	"context"

	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"

	"github.com/klu2500030136/lptd-app/core"
)

// Store is a core.KVStore over plain redis strings.
type Store struct {
	client *redis.Client
}

var _ core.KVStore = (*Store)(nil) // interface compliance check

// Open connects to redis and checks the connection.
func Open(ctx context.Context, conf core.RedisConfig) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     conf.Addr,
		Password: conf.Password,
		DB:       conf.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrapf(err, "connecting to redis at %s", conf.Addr)
	}
	return New(client), nil
}

func New(client *redis.Client) *Store {
	return &Store{client: client}
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Cause(err) == redis.Nil {
			return nil, core.ErrKeyNotFound
		}
		return nil, errors.Wrap(err, "redis GET")
	}
	return val, nil
}

func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	return errors.Wrap(s.client.Set(ctx, key, value, 0).Err(), "redis SET")
}

func (s *Store) Delete(ctx context.Context, key string) error {
	return errors.Wrap(s.client.Del(ctx, key).Err(), "redis DEL")
}

func (s *Store) Close() error {
	return s.client.Close()
}
