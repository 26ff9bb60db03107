package auth

import (
	"Shortlink-Backend/internal/domain"
	"context"
	"errors"

	"go.uber.org/zap"
)

// ErrUnauthenticated единая ошибка для любой неудачной аутентификации
var ErrUnauthenticated = errors.New("could not validate credentials")

// UserLookup загружает пользователя по имени из токена
type UserLookup interface {
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)
}

// Gate проверяет bearer токены и права владельца
type Gate struct {
	jwt   *JWTService
	users UserLookup
	log   *zap.Logger
}

// NewGate создает новый Gate
func NewGate(jwtService *JWTService, users UserLookup, log *zap.Logger) *Gate {
	return &Gate{
		jwt:   jwtService,
		users: users,
		log:   log,
	}
}

// Authenticate возвращает пользователя, которому выдан токен.
// Причина отказа только логируется, наружу уходит ErrUnauthenticated.
func (g *Gate) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, ErrUnauthenticated
	}

	claims, err := g.jwt.ValidateToken(token)
	if err != nil {
		g.log.Debug("token rejected", zap.Error(err))
		return nil, ErrUnauthenticated
	}

	user, err := g.users.GetUserByUsername(ctx, claims.Subject)
	if err != nil {
		g.log.Debug("token subject not found", zap.String("subject", claims.Subject), zap.Error(err))
		return nil, ErrUnauthenticated
	}

	// имя могли освободить и занять заново после удаления аккаунта
	if claims.UserID != 0 && claims.UserID != user.ID {
		g.log.Debug("token user id mismatch", zap.String("subject", claims.Subject))
		return nil, ErrUnauthenticated
	}

	return user, nil
}

// AuthorizeOwner сообщает, может ли пользователь управлять ссылкой
func AuthorizeOwner(user *domain.User, url *domain.URL) bool {
	if user == nil || url == nil {
		return false
	}
	return url.OwnedBy(user.ID)
}
