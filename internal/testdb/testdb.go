// Package testdb opens isolated in-memory SQLite databases for tests.
package testdb

import (
	"Shortlink-Backend/internal/config"
	"Shortlink-Backend/internal/database"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// New returns a migrated database that lives until the test finishes.
func New(t testing.TB) *gorm.DB {
	t.Helper()

	cfg := &config.Database{
		URL:             fmt.Sprintf("sqlite://file:%s?mode=memory&cache=shared", uuid.NewString()),
		ConnMaxLifetime: "1h",
	}
	log := zap.NewNop()

	db, err := database.NewConnection(cfg, log)
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db, log))

	t.Cleanup(func() {
		_ = database.Close(db, log)
	})

	return db
}
