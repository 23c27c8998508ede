package redisx

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/redis/go-redis/v9"
)

func New(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
}

// Claim marks (service, id) as processed. It returns false when another
// delivery already claimed it.
func Claim(ctx context.Context, rdb redis.Cmdable, service, id string) (bool, error) {
	return rdb.SetNX(ctx, fmt.Sprintf(KeyDedup, service, id), "1", TTLDedup).Result()
}

// LockOrder takes the cross-process lock for externalID. It returns false
// while another holder has it.
func LockOrder(ctx context.Context, rdb redis.Cmdable, externalID string) (bool, error) {
	return rdb.SetNX(ctx, fmt.Sprintf(KeyOrderLock, externalID), "1", TTLOrderLock).Result()
}

func UnlockOrder(ctx context.Context, rdb redis.Cmdable, externalID string) error {
	return rdb.Del(ctx, fmt.Sprintf(KeyOrderLock, externalID)).Err()
}

func SetJSON(ctx context.Context, rdb redis.Cmdable, key string, v any, ttl time.Duration) error {
	b, err := json.Marshal(v)
	if err != nil {
		return errors.Wrap(err, "encode")
	}
	return rdb.Set(ctx, key, b, ttl).Err()
}

// GetJSON decodes key into out. found is false when the key does not exist.
func GetJSON(ctx context.Context, rdb redis.Cmdable, key string, out any) (found bool, err error) {
	b, err := rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(b, out); err != nil {
		return false, errors.Wrapf(err, "decode %s", key)
	}
	return true, nil
}
