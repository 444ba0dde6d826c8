package cache

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/railzwaylabs/catalogadmin/internal/catalog/domain"
	"github.com/railzwaylabs/catalogadmin/internal/config"
	"github.com/railzwaylabs/catalogadmin/internal/migration"
	"github.com/railzwaylabs/catalogadmin/pkg/db"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap"
)

func testConfig(backend string) config.Config {
	return config.Config{
		Catalog: config.CatalogConfig{CacheKey: "products"},
		Cache:   config.CacheConfig{Backend: backend},
	}
}

func migratedSQLite(t *testing.T) config.DatabaseConfig {
	t.Helper()
	cfg := config.DatabaseConfig{Driver: "sqlite", DSN: filepath.Join(t.TempDir(), "catalog.db")}

	conn, err := db.Open(cfg, zap.NewNop())
	require.NoError(t, err)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	require.NoError(t, migration.Run(sqlDB, cfg.Driver))
	require.NoError(t, db.Close(conn))
	return cfg
}

func TestProvideSQLBackend(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(config.CacheBackendSQL)
	cfg.Database = migratedSQLite(t)

	lc := fxtest.NewLifecycle(t)
	repo, err := Provide(Params{Lc: lc, Cfg: cfg, Log: zap.NewNop()})
	require.NoError(t, err)
	lc.RequireStart()

	products := []domain.Product{{ID: 1, Name: "Mango", Details: "cup", Price: "3.5"}}
	require.NoError(t, repo.ReplaceAll(ctx, products))
	got, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, products, got)

	lc.RequireStop()
	_, err = repo.Load(ctx)
	assert.ErrorContains(t, err, "database is closed")
}

func TestProvideSQLBackendWithoutSchema(t *testing.T) {
	cfg := testConfig(config.CacheBackendSQL)
	cfg.Database = config.DatabaseConfig{Driver: "sqlite", DSN: filepath.Join(t.TempDir(), "catalog.db")}

	lc := fxtest.NewLifecycle(t)
	repo, err := Provide(Params{Lc: lc, Cfg: cfg, Log: zap.NewNop()})
	require.NoError(t, err)
	lc.RequireStart()
	defer lc.RequireStop()

	_, err = repo.Load(context.Background())
	assert.ErrorContains(t, err, "catalog_cache")
}

func TestProvideRedisBackend(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	cfg := testConfig(config.CacheBackendRedis)
	cfg.Redis = config.RedisConfig{Addr: mr.Addr()}

	lc := fxtest.NewLifecycle(t)
	repo, err := Provide(Params{Lc: lc, Cfg: cfg, Log: zap.NewNop()})
	require.NoError(t, err)
	lc.RequireStart()

	require.NoError(t, repo.ReplaceAll(ctx, []domain.Product{{ID: 1, Name: "Mango"}}))
	assert.True(t, mr.Exists("products"))

	lc.RequireStop()
	_, err = repo.Load(ctx)
	assert.ErrorIs(t, err, goredis.ErrClosed)
}

func TestProvideRedisUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	cfg := testConfig(config.CacheBackendRedis)
	cfg.Redis = config.RedisConfig{Addr: addr}

	_, err := Provide(Params{Lc: fxtest.NewLifecycle(t), Cfg: cfg, Log: zap.NewNop()})
	assert.ErrorContains(t, err, "connect redis cache")
}

func TestProvideUnknownBackend(t *testing.T) {
	lc := fxtest.NewLifecycle(t)
	_, err := Provide(Params{Lc: lc, Cfg: testConfig("memcached"), Log: zap.NewNop()})
	assert.ErrorContains(t, err, `unknown cache backend "memcached"`)

	// nothing was opened, so there is nothing to close
	lc.RequireStart()
	lc.RequireStop()
}
