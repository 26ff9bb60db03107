package postgres

import (
	"Shortlink-Backend/internal/domain"
	"Shortlink-Backend/internal/testdb"
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupStorage(t *testing.T) (*PostgresStorage, *gorm.DB) {
	t.Helper()
	db := testdb.New(t)
	return New(db, zap.NewNop()), db
}

func createUser(t *testing.T, s *PostgresStorage, name string) *domain.User {
	t.Helper()
	user := &domain.User{Username: name, Email: name + "@example.com", PasswordHash: "hash"}
	require.NoError(t, s.CreateUser(context.Background(), user))
	return user
}

func createURL(t *testing.T, s *PostgresStorage, code, target string, owner *int64) *domain.URL {
	t.Helper()
	url := &domain.URL{ShortCode: code, OriginalURL: target, UserID: owner}
	require.NoError(t, s.CreateURL(context.Background(), url))
	return url
}

func addClick(t *testing.T, s *PostgresStorage, urlID int64, at time.Time, mutate ...func(c *domain.Click)) {
	t.Helper()
	click := &domain.Click{URLID: urlID, ClickedAt: at}
	for _, m := range mutate {
		m(click)
	}
	require.NoError(t, s.CreateClick(context.Background(), click))
}

func strPtr(s string) *string { return &s }

func TestIsUniqueViolation(t *testing.T) {
	assert.False(t, isUniqueViolation(nil))
	assert.True(t, isUniqueViolation(gorm.ErrDuplicatedKey))
	assert.True(t, isUniqueViolation(fmt.Errorf("wrapped: %w", &pgconn.PgError{Code: "23505"})))
	assert.True(t, isUniqueViolation(errors.New("constraint failed: UNIQUE constraint failed: urls.short_code (2067)")))
	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, isUniqueViolation(errors.New("connection reset")))
}

func TestPing(t *testing.T) {
	s, _ := setupStorage(t)
	assert.NoError(t, s.Ping(context.Background()))
}
