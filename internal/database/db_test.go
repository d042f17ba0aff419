package database

import (
	"context"
	"fmt"
	"testing"

	"github.com/Baaaki/inkwell/internal/config"
	"github.com/Baaaki/inkwell/internal/models"
	"github.com/Baaaki/inkwell/internal/utils"
	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	cfg := &config.Config{
		DatabaseDriver: "sqlite",
		DatabaseURL:    fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()),
	}
	db, err := Connect(cfg)
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, Migrate(db))
	return db
}

func TestSQLiteDSN(t *testing.T) {
	assert.Equal(t, "blog.db?_foreign_keys=on", SQLiteDSN("blog.db"))
	assert.Equal(t, "file:x?mode=memory&_foreign_keys=on", SQLiteDSN("file:x?mode=memory"))
	assert.Equal(t, "blog.db?_foreign_keys=off", SQLiteDSN("blog.db?_foreign_keys=off"))
}

func TestConnect_UnsupportedDriver(t *testing.T) {
	_, err := Connect(&config.Config{DatabaseDriver: "oracle"})
	assert.ErrorContains(t, err, "unsupported database driver")
}

func TestEnsureAdmin_CreatesOnce(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	created, err := EnsureAdmin(ctx, db, "admin", "admin@localhost", "admin123")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = EnsureAdmin(ctx, db, "admin2", "admin2@localhost", "admin123")
	require.NoError(t, err)
	assert.False(t, created, "second call must not create another admin")

	var admin models.User
	require.NoError(t, db.Where("username = ?", "admin").First(&admin).Error)
	assert.Equal(t, models.RoleAdmin, admin.Role)

	ok, err := utils.VerifyPassword("admin123", admin.PasswordHash)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestConnectRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	client, err := ConnectRedis(ctx, "redis://"+mr.Addr())
	require.NoError(t, err)
	defer client.Close()

	_, err = ConnectRedis(ctx, "not a url")
	assert.Error(t, err)
}
