package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	ErrCacheMiss = errors.New("cache miss")
	// ErrStaleGeneration is returned by Set when the cart was invalidated
	// after the caller read its generation.
	ErrStaleGeneration = errors.New("cart cache generation changed")
)

// Cache stores the priced cart view per user. Every Delete bumps a per-user
// generation so a reader that loaded rows before the bump cannot store them.
type Cache interface {
	Get(ctx context.Context, userID uint) (*Cart, error)
	Generation(ctx context.Context, userID uint) (int64, error)
	// Set stores c only while the generation still equals gen.
	Set(ctx context.Context, userID uint, gen int64, c *Cart) error
	Delete(ctx context.Context, userID uint) error
}

const generationTTL = 24 * time.Hour

type RedisCache struct {
	client  redis.UniversalClient
	baseTTL time.Duration
}

func NewRedisCache(client redis.UniversalClient) *RedisCache {
	return &RedisCache{client: client, baseTTL: 5 * time.Minute}
}

func (r *RedisCache) Get(ctx context.Context, userID uint) (*Cart, error) {
	data, err := r.client.Get(ctx, cacheKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var c Cart
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("unmarshal cart failed: %w", err)
	}
	return &c, nil
}

type stringGetter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func readGeneration(ctx context.Context, g stringGetter, userID uint) (int64, error) {
	gen, err := g.Get(ctx, generationKey(userID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("redis generation read failed: %w", err)
	}
	return gen, nil
}

func (r *RedisCache) Generation(ctx context.Context, userID uint) (int64, error) {
	return readGeneration(ctx, r.client, userID)
}

func (r *RedisCache) Set(ctx context.Context, userID uint, gen int64, c *Cart) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal cart failed: %w", err)
	}

	// jitter spreads expiry of carts cached at the same moment
	ttl := r.baseTTL + time.Duration(rand.Intn(60))*time.Second

	err = r.client.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := readGeneration(ctx, tx, userID)
		if err != nil {
			return err
		}
		if cur != gen {
			return ErrStaleGeneration
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, cacheKey(userID), data, ttl)
			return nil
		})
		return err
	}, generationKey(userID))

	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrStaleGeneration), errors.Is(err, redis.TxFailedErr):
		return ErrStaleGeneration
	default:
		return fmt.Errorf("redis set failed: %w", err)
	}
}

func (r *RedisCache) Delete(ctx context.Context, userID uint) error {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, generationKey(userID))
		pipe.Expire(ctx, generationKey(userID), generationTTL)
		pipe.Del(ctx, cacheKey(userID))
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func cacheKey(userID uint) string {
	return fmt.Sprintf("cart:%d", userID)
}

func generationKey(userID uint) string {
	return fmt.Sprintf("cart:gen:%d", userID)
}

// NoopCache always misses. Used when no Redis address is configured.
type NoopCache struct{}

func (NoopCache) Get(context.Context, uint) (*Cart, error) { return nil, ErrCacheMiss }

func (NoopCache) Generation(context.Context, uint) (int64, error) { return 0, nil }

func (NoopCache) Set(context.Context, uint, int64, *Cart) error { return nil }

func (NoopCache) Delete(context.Context, uint) error { return nil }
