package repository

import (
	"context"
	"errors"
	"strconv"

	repo "storefront/internal/repository"

	"github.com/redis/go-redis/v9"
)

const (
	redisValueField    = "value"
	redisRevisionField = "rev"

	redisDeleteAttempts = 3
)

// KVをRedisのハッシュ {value, rev} で持つ
type RedisKVStore struct {
	client redis.UniversalClient
	prefix string
}

// DI
func NewRedisKVStore(client redis.UniversalClient, prefix string) *RedisKVStore {
	return &RedisKVStore{client: client, prefix: prefix}
}

func (s *RedisKVStore) k(key string) string {
	return s.prefix + key
}

func (s *RedisKVStore) Get(ctx context.Context, key string) (repo.Entry, error) {
	vals, err := s.client.HMGet(ctx, s.k(key), redisValueField, redisRevisionField).Result()
	if err != nil {
		return repo.Entry{}, err
	}

	var e repo.Entry
	if v, ok := vals[0].(string); ok {
		e.Value = []byte(v)
	}
	if v, ok := vals[1].(string); ok {
		rev, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return repo.Entry{}, err
		}
		e.Revision = rev
	}
	return e, nil
}

func (s *RedisKVStore) CompareAndSwap(ctx context.Context, key string, expected int64, value []byte) (int64, error) {
	if value == nil {
		value = []byte{}
	}

	hk := s.k(key)
	var next int64

	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := currentRevision(ctx, tx, hk)
		if err != nil {
			return err
		}
		if cur != expected {
			return repo.ErrConflict
		}

		next = cur + 1
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, hk, redisValueField, value, redisRevisionField, next)
			return nil
		})
		return err
	}, hk)

	//WATCH中に他が書いた
	if errors.Is(err, redis.TxFailedErr) {
		return 0, repo.ErrConflict
	}
	if err != nil {
		return 0, err
	}
	return next, nil
}

func (s *RedisKVStore) Delete(ctx context.Context, key string) error {
	hk := s.k(key)

	var err error
	for i := 0; i < redisDeleteAttempts; i++ {
		err = s.client.Watch(ctx, func(tx *redis.Tx) error {
			exists, err := tx.HExists(ctx, hk, redisValueField).Result()
			if err != nil {
				return err
			}
			if !exists {
				return nil
			}

			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.HDel(ctx, hk, redisValueField)
				pipe.HIncrBy(ctx, hk, redisRevisionField, 1)
				return nil
			})
			return err
		}, hk)

		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
	}
	return err
}

func currentRevision(ctx context.Context, tx *redis.Tx, hk string) (int64, error) {
	rev, err := tx.HGet(ctx, hk, redisRevisionField).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return rev, err
}
