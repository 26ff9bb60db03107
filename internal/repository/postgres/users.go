package postgres

import (
	"Shortlink-Backend/internal/domain"
	"Shortlink-Backend/internal/repository"
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CreateUser сохраняет нового пользователя
func (s *PostgresStorage) CreateUser(ctx context.Context, user *domain.User) error {
	err := s.db.WithContext(ctx).Create(user).Error
	if err == nil {
		s.log.Info("created user", zap.Int64("user_id", user.ID), zap.String("username", user.Username))
		return nil
	}

	if isUniqueViolation(err) {
		// драйвер не всегда сообщает имя индекса, уточняем запросом
		if _, lookupErr := s.GetUserByUsername(ctx, user.Username); lookupErr == nil {
			return repository.ErrUsernameTaken
		}
		return repository.ErrEmailTaken
	}

	s.log.Error("failed to create user", zap.String("username", user.Username), zap.Error(err))
	return fmt.Errorf("failed to create user: %w", err)
}

// GetUserByID получает пользователя по ID
func (s *PostgresStorage) GetUserByID(ctx context.Context, id int64) (*domain.User, error) {
	return s.findUser(ctx, "id = ?", id)
}

// GetUserByUsername получает пользователя по имени
func (s *PostgresStorage) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	return s.findUser(ctx, "username = ?", username)
}

// GetUserByLogin ищет пользователя по имени или email
func (s *PostgresStorage) GetUserByLogin(ctx context.Context, login string) (*domain.User, error) {
	return s.findUser(ctx, "username = ? OR email = ?", login, login)
}

func (s *PostgresStorage) findUser(ctx context.Context, query string, args ...interface{}) (*domain.User, error) {
	var user domain.User

	err := s.db.WithContext(ctx).Where(query, args...).Order("id").First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repository.ErrUserNotFound
	}
	if err != nil {
		s.log.Error("failed to get user", zap.String("query", query), zap.Error(err))
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &user, nil
}

// DeleteUser удаляет пользователя вместе с его ссылками и их кликами
func (s *PostgresStorage) DeleteUser(ctx context.Context, id int64) ([]string, error) {
	var codes []string

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&domain.URL{}).Where("user_id = ?", id).Pluck("short_code", &codes).Error; err != nil {
			return fmt.Errorf("failed to list user urls: %w", err)
		}

		owned := tx.Model(&domain.URL{}).Select("id").Where("user_id = ?", id)
		if err := tx.Where("url_id IN (?)", owned).Delete(&domain.Click{}).Error; err != nil {
			return fmt.Errorf("failed to delete clicks: %w", err)
		}

		if err := tx.Where("user_id = ?", id).Delete(&domain.URL{}).Error; err != nil {
			return fmt.Errorf("failed to delete urls: %w", err)
		}

		result := tx.Delete(&domain.User{}, id)
		if result.Error != nil {
			return fmt.Errorf("failed to delete user: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return repository.ErrUserNotFound
		}
		return nil
	})
	if err != nil {
		if !errors.Is(err, repository.ErrUserNotFound) {
			s.log.Error("failed to delete user", zap.Int64("user_id", id), zap.Error(err))
		}
		return nil, err
	}

	s.log.Info("deleted user", zap.Int64("user_id", id), zap.Int("urls_deleted", len(codes)))
	return codes, nil
}
