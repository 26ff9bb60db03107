package repository

import (
	"Shortlink-Backend/internal/domain"
	"context"
	"errors"
	"time"
)

var (
	ErrURLNotFound     = errors.New("url not found")
	ErrShortCodeExists = errors.New("short code already exists")
	ErrUserNotFound    = errors.New("user not found")
	ErrUsernameTaken   = errors.New("username already registered")
	ErrEmailTaken      = errors.New("email already registered")
)

// Storage is the persistence contract used by the services.
// Ownership-scoped methods return ErrURLNotFound both for rows that do not
// exist and for rows owned by someone else.
type Storage interface {
	UserStorage
	URLStorage
	ClickStorage
	StatsReader

	Ping(ctx context.Context) error
}

type UserStorage interface {
	CreateUser(ctx context.Context, user *domain.User) error
	GetUserByID(ctx context.Context, id int64) (*domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)
	// GetUserByLogin matches either the username or the email.
	GetUserByLogin(ctx context.Context, login string) (*domain.User, error)
	// DeleteUser removes the user with all owned URLs and their click
	// events and returns the short codes that were removed.
	DeleteUser(ctx context.Context, id int64) ([]string, error)
}

type URLStorage interface {
	CreateURL(ctx context.Context, url *domain.URL) error
	GetURLByShortCode(ctx context.Context, code string) (*domain.URL, error)
	GetOwnedURL(ctx context.Context, id, ownerID int64) (*domain.URL, error)
	// FindURL looks up an existing mapping of originalURL with the same
	// owner; a nil owner only matches anonymous mappings.
	FindURL(ctx context.Context, originalURL string, ownerID *int64) (*domain.URL, error)
	ShortCodeExists(ctx context.Context, code string) (bool, error)
	IncrementClicks(ctx context.Context, id int64) error
	ListURLsByOwner(ctx context.Context, ownerID int64, offset, limit int) ([]*domain.URL, int64, error)
	UpdateURL(ctx context.Context, id, ownerID int64, originalURL string) (*domain.URL, error)
	DeleteURL(ctx context.Context, id, ownerID int64) (*domain.URL, error)
}

type ClickStorage interface {
	CreateClick(ctx context.Context, click *domain.Click) error
	ListClicks(ctx context.Context, urlID int64, offset, limit int) ([]*domain.Click, int64, error)
	DeleteClicksBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// StatsReader answers the aggregate queries behind analytics summaries.
// A nil since means no lower time bound.
type StatsReader interface {
	CountClicks(ctx context.Context, scope domain.Scope, since *time.Time) (int64, error)
	CountUniqueVisitors(ctx context.Context, scope domain.Scope, since time.Time) (int64, error)
	CountByDevice(ctx context.Context, scope domain.Scope, since time.Time) (map[string]int64, error)
	CountByBrowser(ctx context.Context, scope domain.Scope, since time.Time) (map[string]int64, error)
	TopReferrers(ctx context.Context, scope domain.Scope, since time.Time, limit int) ([]domain.ReferrerCount, error)
	ClickTimes(ctx context.Context, scope domain.Scope, since time.Time) ([]time.Time, error)
}
