package repositories

import (
	"context"

	"nowplaying/internal/core/ports"
	"nowplaying/internal/infrastructure/repositories/memory"
	redisrepo "nowplaying/internal/infrastructure/repositories/redis"
	"nowplaying/pkg/config"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RepositoryFactory creates repositories with fallback support
type RepositoryFactory struct {
	cfg         config.Config
	useRedis    bool
	redisClient *redis.Client
	logger      *zap.SugaredLogger
}

// NewRepositoryFactory connects to Redis when the redis cooldown backend is
// selected. An unreachable Redis degrades to the in-memory store.
func NewRepositoryFactory(cfg *config.Config, logger *zap.SugaredLogger) *RepositoryFactory {
	factory := &RepositoryFactory{
		cfg:    *cfg,
		logger: logger,
	}

	if cfg.Cooldown.Backend == "redis" {
		client, err := redisrepo.NewRedisClient(
			cfg.Redis.Address,
			cfg.Redis.Password,
			cfg.Redis.DB,
			cfg.Redis.PoolSize,
			logger,
		)
		if err != nil {
			logger.Warnw("failed to connect to Redis, falling back to memory cooldown store",
				"error", err,
			)
		} else {
			factory.useRedis = true
			factory.redisClient = client
		}
	}

	if factory.useRedis {
		logger.Info("using Redis cooldown store")
	} else {
		logger.Info("using memory cooldown store")
	}

	return factory
}

// CreateCooldownStore creates the cooldown store (Redis or memory with fallback)
func (f *RepositoryFactory) CreateCooldownStore() ports.CooldownStore {
	if f.useRedis && f.redisClient != nil {
		return redisrepo.NewCooldownRepository(f.redisClient, f.cfg.Cooldown.Window, f.cfg.Cooldown.ReservationTTL)
	}
	return memory.NewCooldownRepository(f.cfg.Cooldown.Window)
}

// UsingRedis reports whether Redis-backed stores are handed out.
func (f *RepositoryFactory) UsingRedis() bool {
	return f.useRedis
}

// Close closes Redis connection if used
func (f *RepositoryFactory) Close() error {
	if f.redisClient != nil {
		return redisrepo.CloseRedisClient(f.redisClient)
	}
	return nil
}

// HealthCheck checks Redis connection health
func (f *RepositoryFactory) HealthCheck(ctx context.Context) error {
	if f.useRedis && f.redisClient != nil {
		return f.redisClient.Ping(ctx).Err()
	}
	return nil
}
