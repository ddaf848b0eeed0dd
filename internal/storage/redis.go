package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Redis keeps one hash per profile: HSET houseoflove:profile:<id> <key> <value>.
type Redis struct {
	Client *redis.Client
	Prefix string
}

func NewRedis(client *redis.Client) *Redis {
	return &Redis{Client: client, Prefix: "houseoflove:profile:"}
}

func (r *Redis) hashKey(profile string) string {
	return r.Prefix + profile
}

func (r *Redis) GetItem(ctx context.Context, profile, key string) (string, bool, error) {
	if profile == "" {
		return "", false, ErrEmptyProfile
	}
	v, err := r.Client.HGet(ctx, r.hashKey(profile), key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("redis hget: %w", err)
	}
	return v, true, nil
}

func (r *Redis) SetItem(ctx context.Context, profile, key, value string) error {
	if profile == "" {
		return ErrEmptyProfile
	}
	if err := r.Client.HSet(ctx, r.hashKey(profile), key, value).Err(); err != nil {
		return fmt.Errorf("redis hset: %w", err)
	}
	return nil
}

func (r *Redis) RemoveItem(ctx context.Context, profile, key string) error {
	if profile == "" {
		return ErrEmptyProfile
	}
	if err := r.Client.HDel(ctx, r.hashKey(profile), key).Err(); err != nil {
		return fmt.Errorf("redis hdel: %w", err)
	}
	return nil
}
