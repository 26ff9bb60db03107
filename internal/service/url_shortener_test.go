package service

import (
	"Shortlink-Backend/internal/config"
	"Shortlink-Backend/internal/domain"
	"Shortlink-Backend/internal/repository"
	"Shortlink-Backend/internal/repository/postgres"
	"Shortlink-Backend/internal/testdb"
	"Shortlink-Backend/pkg/random"
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testConfig() *config.URLShortener {
	return &config.URLShortener{CodeLength: 8, MaxRetries: 5, MaxURLLength: 2048}
}

func setupService(t *testing.T, opts ...Option) (*URLShortenerService, *postgres.PostgresStorage) {
	t.Helper()
	storage := postgres.New(testdb.New(t), zap.NewNop())
	return NewURLShortener(storage, testConfig(), zap.NewNop(), opts...), storage
}

func newUser(t *testing.T, storage repository.Storage, name string) *domain.User {
	t.Helper()
	u := &domain.User{Username: name, Email: name + "@example.com", PasswordHash: "hash"}
	require.NoError(t, storage.CreateUser(context.Background(), u))
	return u
}

// sequence returns a generator that yields codes in order.
func sequence(codes ...string) Generator {
	var mu sync.Mutex
	i := 0
	return func(int) (string, error) {
		mu.Lock()
		defer mu.Unlock()
		code := codes[i%len(codes)]
		i++
		return code, nil
	}
}

// fakeCache records invalidations and delegates lookups.
type fakeCache struct {
	Resolver
	mu          sync.Mutex
	invalidated []string
}

func (c *fakeCache) Invalidate(_ context.Context, codes ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidated = append(c.invalidated, codes...)
}

func TestShorten_NewURL(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	url, created, err := svc.Shorten(ctx, "https://example.com/a", nil)
	require.NoError(t, err)
	assert.True(t, created)
	assert.True(t, random.IsValid(url.ShortCode, 8))
	assert.Zero(t, url.Clicks)
	assert.Nil(t, url.UserID)

	got, err := svc.Resolve(ctx, url.ShortCode)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/a", got.OriginalURL)
	assert.Zero(t, got.Clicks)
}

func TestShorten_Deduplication(t *testing.T) {
	svc, storage := setupService(t)
	ctx := context.Background()
	alice := newUser(t, storage, "alice")
	bob := newUser(t, storage, "bob")

	anon1, created, err := svc.Shorten(ctx, "https://example.com/x", nil)
	require.NoError(t, err)
	assert.True(t, created)

	anon2, created, err := svc.Shorten(ctx, "https://example.com/x", nil)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, anon1.ShortCode, anon2.ShortCode)

	a1, created, err := svc.Shorten(ctx, "https://example.com/x", &alice.ID)
	require.NoError(t, err)
	assert.True(t, created, "anonymous and owned urls do not share codes")
	assert.NotEqual(t, anon1.ShortCode, a1.ShortCode)

	a2, created, err := svc.Shorten(ctx, "https://example.com/x", &alice.ID)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, a1.ShortCode, a2.ShortCode)

	b1, created, err := svc.Shorten(ctx, "https://example.com/x", &bob.ID)
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEqual(t, a1.ShortCode, b1.ShortCode)
}

func TestShorten_Validation(t *testing.T) {
	svc, _ := setupService(t)

	for _, raw := range []string{"", "   ", "not-a-url", "ftp://example.com/file", "https://"} {
		t.Run(raw, func(t *testing.T) {
			_, _, err := svc.Shorten(context.Background(), raw, nil)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Fields, "original_url")
			assert.ErrorIs(t, err, ErrInvalidURL)
		})
	}
}

func TestShorten_RetriesOnCollision(t *testing.T) {
	svc, storage := setupService(t, WithGenerator(sequence("TAKEN001", "TAKEN001", "FREE0001")))
	ctx := context.Background()
	require.NoError(t, storage.CreateURL(ctx, &domain.URL{ShortCode: "TAKEN001", OriginalURL: "https://taken.example"}))

	url, created, err := svc.Shorten(ctx, "https://example.com/new", nil)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "FREE0001", url.ShortCode)
}

func TestShorten_Exhausted(t *testing.T) {
	svc, storage := setupService(t, WithGenerator(sequence("TAKEN001")))
	ctx := context.Background()
	require.NoError(t, storage.CreateURL(ctx, &domain.URL{ShortCode: "TAKEN001", OriginalURL: "https://taken.example"}))

	_, _, err := svc.Shorten(ctx, "https://example.com/new", nil)
	assert.ErrorIs(t, err, ErrGenerationExhausted)
}

func TestShorten_GeneratorError(t *testing.T) {
	boom := errors.New("entropy unavailable")
	svc, _ := setupService(t, WithGenerator(func(int) (string, error) { return "", boom }))

	_, _, err := svc.Shorten(context.Background(), "https://example.com", nil)
	assert.ErrorIs(t, err, boom)
}

// MockStorage переопределяет только методы, нужные тесту гонки.
type MockStorage struct {
	mock.Mock
	repository.Storage
}

func (m *MockStorage) FindURL(ctx context.Context, originalURL string, ownerID *int64) (*domain.URL, error) {
	args := m.Called(ctx, originalURL, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.URL), args.Error(1)
}

func (m *MockStorage) ShortCodeExists(ctx context.Context, code string) (bool, error) {
	args := m.Called(ctx, code)
	return args.Bool(0), args.Error(1)
}

func (m *MockStorage) CreateURL(ctx context.Context, url *domain.URL) error {
	args := m.Called(ctx, url)
	return args.Error(0)
}

func TestShorten_InsertRaceRetries(t *testing.T) {
	ctx := context.Background()
	storage := &MockStorage{}
	svc := NewURLShortener(storage, testConfig(), zap.NewNop(), WithGenerator(sequence("RACE0001", "RACE0002")))

	storage.On("FindURL", ctx, "https://example.com", (*int64)(nil)).Return(nil, repository.ErrURLNotFound)
	storage.On("ShortCodeExists", ctx, mock.Anything).Return(false, nil)
	storage.On("CreateURL", ctx, mock.MatchedBy(func(u *domain.URL) bool { return u.ShortCode == "RACE0001" })).
		Return(repository.ErrShortCodeExists).Once()
	storage.On("CreateURL", ctx, mock.MatchedBy(func(u *domain.URL) bool { return u.ShortCode == "RACE0002" })).
		Return(nil).Once()

	url, created, err := svc.Shorten(ctx, "https://example.com", nil)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "RACE0002", url.ShortCode)
	storage.AssertExpectations(t)
}

func TestShorten_StorageError(t *testing.T) {
	ctx := context.Background()
	storage := &MockStorage{}
	svc := NewURLShortener(storage, testConfig(), zap.NewNop())

	storage.On("FindURL", ctx, "https://example.com", (*int64)(nil)).Return(nil, errors.New("db down"))

	_, _, err := svc.Shorten(ctx, "https://example.com", nil)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrGenerationExhausted)
	storage.AssertNotCalled(t, "CreateURL", mock.Anything, mock.Anything)
}

func TestListForOwner(t *testing.T) {
	svc, storage := setupService(t)
	ctx := context.Background()
	alice := newUser(t, storage, "alice")

	for _, target := range []string{"https://a.example", "https://b.example", "https://c.example"} {
		_, _, err := svc.Shorten(ctx, target, &alice.ID)
		require.NoError(t, err)
	}
	_, _, err := svc.Shorten(ctx, "https://anon.example", nil)
	require.NoError(t, err)

	urls, total, err := svc.ListForOwner(ctx, alice.ID, -5, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, urls, 3)
	assert.Equal(t, "https://c.example", urls[0].OriginalURL)

	urls, total, err = svc.ListForOwner(ctx, alice.ID, 2, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, urls, 1)
	assert.Equal(t, "https://a.example", urls[0].OriginalURL)
}

func TestNormalizePage(t *testing.T) {
	tests := []struct {
		offset, limit         int
		wantOffset, wantLimit int
	}{
		{0, 0, 0, DefaultPageLimit},
		{-1, -1, 0, DefaultPageLimit},
		{5, 50, 5, 50},
		{0, 1000, 0, MaxPageLimit},
	}
	for _, tt := range tests {
		offset, limit := NormalizePage(tt.offset, tt.limit)
		assert.Equal(t, tt.wantOffset, offset)
		assert.Equal(t, tt.wantLimit, limit)
	}
}

func TestUpdateAndDelete_Ownership(t *testing.T) {
	cache := &fakeCache{}
	svc, storage := setupService(t, WithCache(cache))
	cache.Resolver = storage
	ctx := context.Background()
	alice := newUser(t, storage, "alice")
	bob := newUser(t, storage, "bob")

	url, _, err := svc.Shorten(ctx, "https://example.com/old", &alice.ID)
	require.NoError(t, err)

	t.Run("foreign update looks like missing", func(t *testing.T) {
		_, errForeign := svc.Update(ctx, url.ID, bob.ID, "https://evil.example")
		_, errMissing := svc.Update(ctx, 9999, bob.ID, "https://evil.example")
		assert.ErrorIs(t, errForeign, repository.ErrURLNotFound)
		assert.ErrorIs(t, errMissing, repository.ErrURLNotFound)
	})

	t.Run("invalid target", func(t *testing.T) {
		_, err := svc.Update(ctx, url.ID, alice.ID, "not-a-url")
		assert.ErrorIs(t, err, ErrInvalidURL)
	})

	t.Run("owner update keeps code", func(t *testing.T) {
		updated, err := svc.Update(ctx, url.ID, alice.ID, "https://example.com/new")
		require.NoError(t, err)
		assert.Equal(t, url.ShortCode, updated.ShortCode)
		assert.Equal(t, "https://example.com/new", updated.OriginalURL)
		assert.Contains(t, cache.invalidated, url.ShortCode)

		got, err := svc.Resolve(ctx, url.ShortCode)
		require.NoError(t, err)
		assert.Equal(t, "https://example.com/new", got.OriginalURL)
	})

	t.Run("foreign delete looks like missing", func(t *testing.T) {
		assert.ErrorIs(t, svc.Delete(ctx, url.ID, bob.ID), repository.ErrURLNotFound)
		_, err := svc.Resolve(ctx, url.ShortCode)
		assert.NoError(t, err)
	})

	t.Run("owner delete", func(t *testing.T) {
		cache.invalidated = nil
		require.NoError(t, svc.Delete(ctx, url.ID, alice.ID))
		assert.Equal(t, []string{url.ShortCode}, cache.invalidated)

		_, err := svc.Resolve(ctx, url.ShortCode)
		assert.ErrorIs(t, err, repository.ErrURLNotFound)
	})
}

func TestClicks(t *testing.T) {
	svc, storage := setupService(t)
	ctx := context.Background()
	alice := newUser(t, storage, "alice")
	bob := newUser(t, storage, "bob")

	url, _, err := svc.Shorten(ctx, "https://example.com", &alice.ID)
	require.NoError(t, err)
	require.NoError(t, storage.CreateClick(ctx, &domain.Click{URLID: url.ID}))
	require.NoError(t, storage.CreateClick(ctx, &domain.Click{URLID: url.ID}))

	clicks, total, err := svc.Clicks(ctx, url.ID, alice.ID, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, clicks, 2)

	_, _, err = svc.Clicks(ctx, url.ID, bob.ID, 0, 0)
	assert.ErrorIs(t, err, repository.ErrURLNotFound)
}

func TestDeleteAccount(t *testing.T) {
	cache := &fakeCache{}
	svc, storage := setupService(t, WithCache(cache))
	cache.Resolver = storage
	ctx := context.Background()
	alice := newUser(t, storage, "alice")

	url, _, err := svc.Shorten(ctx, "https://example.com", &alice.ID)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteAccount(ctx, alice.ID))
	assert.Equal(t, []string{url.ShortCode}, cache.invalidated)

	_, err = storage.GetUserByID(ctx, alice.ID)
	assert.ErrorIs(t, err, repository.ErrUserNotFound)
	_, err = svc.Stats(ctx, url.ShortCode)
	assert.ErrorIs(t, err, repository.ErrURLNotFound)

	assert.ErrorIs(t, svc.DeleteAccount(ctx, alice.ID), repository.ErrUserNotFound)
}

func TestValidationError_Message(t *testing.T) {
	err := &ValidationError{Fields: map[string]string{"b": "is required", "a": "is reserved"}}
	assert.Equal(t, "validation failed: a is reserved; b is required", err.Error())
	assert.False(t, errors.Is(err, ErrInvalidURL))
}
