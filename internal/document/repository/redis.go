package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/gogotex/nodedoc/pkg/metrics"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
)

// RedisRepo stores BSON-encoded records under key "<prefix><id>" with no TTL.
type RedisRepo struct {
	client *redis.Client
	prefix string
}

// NewRedisRepo creates a Redis-backed repository. Prefix may be empty.
func NewRedisRepo(client *redis.Client, prefix string) *RedisRepo {
	if prefix == "" {
		prefix = "nodedoc:"
	}
	return &RedisRepo{client: client, prefix: prefix}
}

func (r *RedisRepo) key(id string) string {
	return r.prefix + id
}

func (r *RedisRepo) Save(ctx context.Context, rec bson.M) error {
	id, err := recordID(rec)
	if err != nil {
		return err
	}
	b, err := encode(rec)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, r.key(id), b, 0).Err(); err != nil {
		return fmt.Errorf("redis save %s: %w", id, err)
	}
	metrics.DocumentOps.WithLabelValues("redis", "save").Inc()
	return nil
}

func (r *RedisRepo) Get(ctx context.Context, id string) (bson.M, error) {
	b, err := r.client.Get(ctx, r.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("redis get %s: %w", id, err)
	}
	metrics.DocumentOps.WithLabelValues("redis", "load").Inc()
	return decode(b)
}

func (r *RedisRepo) List(ctx context.Context) ([]string, error) {
	out := []string{}
	iter := r.client.Scan(ctx, 0, r.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		out = append(out, strings.TrimPrefix(iter.Val(), r.prefix))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("redis list: %w", err)
	}
	sort.Strings(out)
	return out, nil
}

func (r *RedisRepo) Delete(ctx context.Context, id string) error {
	n, err := r.client.Del(ctx, r.key(id)).Result()
	if err != nil {
		return fmt.Errorf("redis delete %s: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	metrics.DocumentOps.WithLabelValues("redis", "delete").Inc()
	return nil
}
