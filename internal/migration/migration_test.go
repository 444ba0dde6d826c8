package migration_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/railzwaylabs/catalogadmin/internal/catalog/cache/gormstore"
	"github.com/railzwaylabs/catalogadmin/internal/catalog/domain"
	"github.com/railzwaylabs/catalogadmin/internal/config"
	"github.com/railzwaylabs/catalogadmin/internal/migration"
	"github.com/railzwaylabs/catalogadmin/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func openSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := db.Open(config.DatabaseConfig{
		Driver: "sqlite",
		DSN:    filepath.Join(t.TempDir(), "catalog.db"),
	}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close(conn) })
	return conn
}

func TestLatestVersion(t *testing.T) {
	v, err := migration.LatestVersion()
	require.NoError(t, err)
	assert.Equal(t, uint(1), v)
}

func TestRunCreatesCatalogCache(t *testing.T) {
	conn := openSQLite(t)
	sqlDB, err := conn.DB()
	require.NoError(t, err)

	require.NoError(t, migration.Run(sqlDB, "sqlite"))
	assert.True(t, conn.Migrator().HasTable("catalog_cache"))

	var version int
	require.NoError(t, sqlDB.QueryRow(`SELECT version FROM schema_migrations`).Scan(&version))
	assert.Equal(t, 1, version)

	// applying again is a no-op
	require.NoError(t, migration.Run(sqlDB, "sqlite"))
}

func TestMigratedSchemaServesSQLStore(t *testing.T) {
	ctx := context.Background()
	conn := openSQLite(t)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	require.NoError(t, migration.Run(sqlDB, "sqlite"))

	store := gormstore.New(conn, "products", zap.NewNop())
	products := []domain.Product{{ID: 1, Name: "Mango", Details: "cup", Price: "3.5"}}
	require.NoError(t, store.ReplaceAll(ctx, products))
	require.NoError(t, store.ReplaceAll(ctx, products))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, products, got)
}

func TestDownDropsCatalogCache(t *testing.T) {
	conn := openSQLite(t)
	sqlDB, err := conn.DB()
	require.NoError(t, err)

	require.NoError(t, migration.Run(sqlDB, "sqlite"))
	require.NoError(t, migration.Down(sqlDB, "sqlite"))
	assert.False(t, conn.Migrator().HasTable("catalog_cache"))
}

func TestRunRejectsUnknownDriver(t *testing.T) {
	conn := openSQLite(t)
	sqlDB, err := conn.DB()
	require.NoError(t, err)

	err = migration.Run(sqlDB, "oracle")
	assert.ErrorContains(t, err, "unsupported database driver")
}

func TestRunRequiresHandle(t *testing.T) {
	assert.Error(t, migration.Run(nil, "sqlite"))
}
