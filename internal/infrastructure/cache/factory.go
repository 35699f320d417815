package cache

import (
	"go.uber.org/zap"

	"github.com/beanpos/backend/internal/infrastructure/config"
)

// New creates the Cache for the configured deployment. Redis is attempted
// when enabled; on connection failure the process falls back to the
// in-memory cache with a warning rather than refusing to start, since the
// cache only serves reference data and staleness is bounded by the TTL.
func New(cfg config.RedisConfig, logger *zap.Logger) Cache {
	if !cfg.Enabled {
		logger.Info("Redis disabled, using in-memory cache")
		return NewInMemoryCache()
	}

	redisCache, err := NewRedisCache(cfg)
	if err != nil {
		logger.Warn("Redis unavailable, falling back to in-memory cache. "+
			"Cached reference data will not be shared across instances.",
			zap.Error(err),
		)
		return NewInMemoryCache()
	}

	logger.Info("Using Redis cache", zap.String("addr", cfg.Addr()))
	return redisCache
}
