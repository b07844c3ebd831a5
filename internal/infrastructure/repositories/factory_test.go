package repositories

import (
	"context"
	"testing"
	"time"

	"nowplaying/internal/infrastructure/repositories/memory"
	"nowplaying/pkg/config"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestFactory_MemoryBackend(t *testing.T) {
	cfg := config.DefaultConfig()
	f := NewRepositoryFactory(cfg, zap.NewNop().Sugar())
	defer f.Close()

	assert.False(t, f.UsingRedis())
	assert.IsType(t, &memory.CooldownRepository{}, f.CreateCooldownStore())
	assert.NoError(t, f.HealthCheck(context.Background()))
}

func TestFactory_UnreachableRedisFallsBackToMemory(t *testing.T) {
	if testing.Short() {
		t.Skip("waits for Redis connection retries")
	}
	cfg := config.DefaultConfig()
	cfg.Cooldown.Backend = "redis"
	cfg.Redis.Address = "127.0.0.1:1"

	start := time.Now()
	f := NewRepositoryFactory(cfg, zap.NewNop().Sugar())
	defer f.Close()

	assert.False(t, f.UsingRedis())
	assert.IsType(t, &memory.CooldownRepository{}, f.CreateCooldownStore())
	assert.Less(t, time.Since(start), 15*time.Second)
}
