package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	apperrors "github.com/yourusername/quizmaster-api/internal/pkg/errors"
)

// CacheRepo реализует repository.CacheRepository
type CacheRepo struct {
	client  redis.UniversalClient
	ctx     context.Context
	timeout time.Duration
}

// NewCacheRepo создает новый репозиторий кеша
func NewCacheRepo(client redis.UniversalClient) (*CacheRepo, error) {
	if client == nil {
		return nil, fmt.Errorf("Redis client cannot be nil for CacheRepo")
	}
	return &CacheRepo{
		client:  client,
		ctx:     context.Background(),
		timeout: 2 * time.Second,
	}, nil
}

// SetJSON сохраняет структуру в кеше в виде JSON
func (r *CacheRepo) SetJSON(key string, value interface{}, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(r.ctx, r.timeout)
	defer cancel()
	return r.client.Set(ctx, key, data, expiration).Err()
}

// GetJSON читает JSON из кеша; отсутствие ключа возвращает ErrNotFound
func (r *CacheRepo) GetJSON(key string, dest interface{}) error {
	ctx, cancel := context.WithTimeout(r.ctx, r.timeout)
	defer cancel()
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return apperrors.ErrNotFound
		}
		return err
	}
	return json.Unmarshal(data, dest)
}

// Delete удаляет ключи из кеша
func (r *CacheRepo) Delete(keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(r.ctx, r.timeout)
	defer cancel()
	return r.client.Del(ctx, keys...).Err()
}
