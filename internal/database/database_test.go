package database_test

import (
	"Shortlink-Backend/internal/config"
	"Shortlink-Backend/internal/database"
	"Shortlink-Backend/internal/domain"
	"Shortlink-Backend/internal/testdb"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestAutoMigrate_CreatesTables(t *testing.T) {
	db := testdb.New(t)

	for _, table := range []string{"users", "urls", "url_clicks"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
	assert.True(t, db.Migrator().HasIndex(&domain.URL{}, "ShortCode"))

	// повторная миграция не должна падать
	require.NoError(t, database.AutoMigrate(db, zap.NewNop()))
}

func TestHealthCheck(t *testing.T) {
	db := testdb.New(t)
	assert.NoError(t, database.HealthCheck(context.Background(), db))

	log := zap.NewNop()
	closed, err := database.NewConnection(&config.Database{
		URL:             "sqlite://file:closed?mode=memory&cache=shared",
		ConnMaxLifetime: "1h",
	}, log)
	require.NoError(t, err)
	require.NoError(t, database.Close(closed, log))
	assert.Error(t, database.HealthCheck(context.Background(), closed))
}

func TestNewConnection_UTCTimestamps(t *testing.T) {
	db := testdb.New(t)
	assert.Equal(t, "UTC", db.NowFunc().Location().String())
}

func TestNewConnection_InvalidLifetimeFallsBack(t *testing.T) {
	cfg := &config.Database{
		URL:             "sqlite://file:lifetime?mode=memory&cache=shared",
		ConnMaxLifetime: "not-a-duration",
	}
	db, err := database.NewConnection(cfg, zap.NewNop())
	require.NoError(t, err)
	assert.NoError(t, database.Close(db, zap.NewNop()))
}
