package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const revokedTokenPrefix = "auth:revoked:"

// TokenBlacklist хранит jti отозванных токенов в Redis с TTL до истечения токена
type TokenBlacklist struct {
	client  redis.UniversalClient
	timeout time.Duration
}

// NewTokenBlacklist создает хранилище отозванных токенов
func NewTokenBlacklist(client redis.UniversalClient) (*TokenBlacklist, error) {
	if client == nil {
		return nil, fmt.Errorf("Redis client cannot be nil for TokenBlacklist")
	}
	return &TokenBlacklist{client: client, timeout: 2 * time.Second}, nil
}

// Revoke помечает jti как отозванный на ttl
func (b *TokenBlacklist) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()
	return b.client.Set(ctx, revokedTokenPrefix+jti, 1, ttl).Err()
}

// IsRevoked проверяет, отозван ли jti
func (b *TokenBlacklist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()
	n, err := b.client.Exists(ctx, revokedTokenPrefix+jti).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
