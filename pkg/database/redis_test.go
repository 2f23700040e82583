package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/quizmaster-api/internal/config"
)

func TestRedisOptions(t *testing.T) {
	t.Run("single с Addr", func(t *testing.T) {
		opts, err := redisOptions(config.RedisConfig{Addr: "localhost:6379"})
		require.NoError(t, err)
		assert.Equal(t, []string{"localhost:6379"}, opts.Addrs)
	})

	t.Run("single берёт первый из Addrs", func(t *testing.T) {
		opts, err := redisOptions(config.RedisConfig{Mode: "single", Addrs: []string{"a:1", "b:2"}})
		require.NoError(t, err)
		assert.Equal(t, []string{"a:1"}, opts.Addrs)
	})

	t.Run("sentinel без MasterName", func(t *testing.T) {
		_, err := redisOptions(config.RedisConfig{Mode: "sentinel", Addrs: []string{"a:1"}})
		assert.Error(t, err)
	})

	t.Run("sentinel", func(t *testing.T) {
		opts, err := redisOptions(config.RedisConfig{Mode: "sentinel", Addrs: []string{"a:1"}, MasterName: "mymaster"})
		require.NoError(t, err)
		assert.Equal(t, "mymaster", opts.MasterName)
	})

	t.Run("нет адресов", func(t *testing.T) {
		_, err := redisOptions(config.RedisConfig{})
		assert.Error(t, err)
	})

	t.Run("неизвестный режим", func(t *testing.T) {
		_, err := redisOptions(config.RedisConfig{Mode: "ring", Addr: "a:1"})
		assert.Error(t, err)
	})
}
