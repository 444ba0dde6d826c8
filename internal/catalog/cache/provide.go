package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/railzwaylabs/catalogadmin/internal/catalog/cache/gormstore"
	"github.com/railzwaylabs/catalogadmin/internal/catalog/cache/redisstore"
	"github.com/railzwaylabs/catalogadmin/internal/catalog/domain"
	"github.com/railzwaylabs/catalogadmin/internal/config"
	"github.com/railzwaylabs/catalogadmin/internal/redis"
	"github.com/railzwaylabs/catalogadmin/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Lc  fx.Lifecycle
	Cfg config.Config
	Log *zap.Logger
}

// Provide opens the configured cache backend and ties its connection to the app lifecycle.
func Provide(p Params) (domain.Repository, error) {
	key := p.Cfg.Catalog.CacheKey

	switch p.Cfg.Cache.Backend {
	case config.CacheBackendRedis:
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		client, err := redis.NewClient(ctx, p.Cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("connect redis cache: %w", err)
		}
		p.Lc.Append(fx.Hook{
			OnStop: func(context.Context) error { return client.Close() },
		})
		return redisstore.New(client, key, p.Log), nil

	case config.CacheBackendSQL:
		conn, err := db.New(p.Lc, p.Cfg, p.Log)
		if err != nil {
			return nil, err
		}
		return gormstore.New(conn, key, p.Log), nil

	default:
		return nil, fmt.Errorf("unknown cache backend %q", p.Cfg.Cache.Backend)
	}
}
