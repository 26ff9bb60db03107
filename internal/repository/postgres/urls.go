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

// CreateURL сохраняет новую ссылку. Уникальность кода гарантирует индекс,
// при коллизии возвращается repository.ErrShortCodeExists.
func (s *PostgresStorage) CreateURL(ctx context.Context, url *domain.URL) error {
	err := s.db.WithContext(ctx).Omit("User").Create(url).Error
	if isUniqueViolation(err) {
		s.log.Debug("short code collision", zap.String("short_code", url.ShortCode))
		return repository.ErrShortCodeExists
	}
	if err != nil {
		s.log.Error("failed to save url", zap.String("short_code", url.ShortCode), zap.Error(err))
		return fmt.Errorf("failed to save url: %w", err)
	}

	s.log.Info("saved new url", zap.String("short_code", url.ShortCode), zap.Int64("url_id", url.ID))
	return nil
}

// GetURLByShortCode получает ссылку по короткому коду
func (s *PostgresStorage) GetURLByShortCode(ctx context.Context, code string) (*domain.URL, error) {
	return s.findURL(s.db.WithContext(ctx).Where("short_code = ?", code))
}

// GetOwnedURL получает ссылку, только если она принадлежит ownerID
func (s *PostgresStorage) GetOwnedURL(ctx context.Context, id, ownerID int64) (*domain.URL, error) {
	return s.findURL(s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, ownerID))
}

// FindURL ищет существующую ссылку с тем же адресом и тем же владельцем
func (s *PostgresStorage) FindURL(ctx context.Context, originalURL string, ownerID *int64) (*domain.URL, error) {
	query := s.db.WithContext(ctx).Where("original_url = ?", originalURL)
	if ownerID == nil {
		query = query.Where("user_id IS NULL")
	} else {
		query = query.Where("user_id = ?", *ownerID)
	}
	return s.findURL(query.Order("id"))
}

func (s *PostgresStorage) findURL(query *gorm.DB) (*domain.URL, error) {
	var url domain.URL

	err := query.First(&url).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repository.ErrURLNotFound
	}
	if err != nil {
		s.log.Error("failed to get url", zap.Error(err))
		return nil, fmt.Errorf("failed to get url: %w", err)
	}

	return &url, nil
}

// ShortCodeExists проверяет, занят ли код
func (s *PostgresStorage) ShortCodeExists(ctx context.Context, code string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&domain.URL{}).Where("short_code = ?", code).Count(&count).Error
	if err != nil {
		s.log.Error("failed to check short code existence", zap.String("short_code", code), zap.Error(err))
		return false, fmt.Errorf("failed to check short code: %w", err)
	}

	return count > 0, nil
}

// IncrementClicks атомарно увеличивает счетчик одной командой UPDATE
func (s *PostgresStorage) IncrementClicks(ctx context.Context, id int64) error {
	result := s.db.WithContext(ctx).
		Model(&domain.URL{}).
		Where("id = ?", id).
		UpdateColumn("clicks", gorm.Expr("clicks + ?", 1))
	if result.Error != nil {
		s.log.Error("failed to increment clicks", zap.Int64("url_id", id), zap.Error(result.Error))
		return fmt.Errorf("failed to increment clicks: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return repository.ErrURLNotFound
	}

	return nil
}

// ListURLsByOwner возвращает страницу ссылок пользователя, новые первыми
func (s *PostgresStorage) ListURLsByOwner(ctx context.Context, ownerID int64, offset, limit int) ([]*domain.URL, int64, error) {
	offset, limit = normalizePage(offset, limit)

	var total int64
	if err := s.db.WithContext(ctx).Model(&domain.URL{}).Where("user_id = ?", ownerID).Count(&total).Error; err != nil {
		s.log.Error("failed to count user urls", zap.Int64("user_id", ownerID), zap.Error(err))
		return nil, 0, fmt.Errorf("failed to count user urls: %w", err)
	}

	urls := make([]*domain.URL, 0)
	err := s.db.WithContext(ctx).
		Where("user_id = ?", ownerID).
		Order("created_at DESC").Order("id DESC").
		Offset(offset).Limit(limit).
		Find(&urls).Error
	if err != nil {
		s.log.Error("failed to list user urls", zap.Int64("user_id", ownerID), zap.Error(err))
		return nil, 0, fmt.Errorf("failed to list user urls: %w", err)
	}

	return urls, total, nil
}

// UpdateURL меняет исходный адрес; короткий код остается прежним
func (s *PostgresStorage) UpdateURL(ctx context.Context, id, ownerID int64, originalURL string) (*domain.URL, error) {
	var url domain.URL

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("id = ? AND user_id = ?", id, ownerID).First(&url).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return repository.ErrURLNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to get url: %w", err)
		}

		return tx.Model(&url).Update("original_url", originalURL).Error
	})
	if err != nil {
		if !errors.Is(err, repository.ErrURLNotFound) {
			s.log.Error("failed to update url", zap.Int64("url_id", id), zap.Error(err))
			return nil, fmt.Errorf("failed to update url: %w", err)
		}
		return nil, err
	}

	s.log.Info("updated url", zap.Int64("url_id", id), zap.String("short_code", url.ShortCode))
	return &url, nil
}

// DeleteURL удаляет ссылку владельца вместе с её кликами
func (s *PostgresStorage) DeleteURL(ctx context.Context, id, ownerID int64) (*domain.URL, error) {
	var url domain.URL

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("id = ? AND user_id = ?", id, ownerID).First(&url).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return repository.ErrURLNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to get url: %w", err)
		}

		if err := tx.Where("url_id = ?", url.ID).Delete(&domain.Click{}).Error; err != nil {
			return fmt.Errorf("failed to delete clicks: %w", err)
		}

		return tx.Delete(&domain.URL{}, url.ID).Error
	})
	if err != nil {
		if !errors.Is(err, repository.ErrURLNotFound) {
			s.log.Error("failed to delete url", zap.Int64("url_id", id), zap.Error(err))
			return nil, fmt.Errorf("failed to delete url: %w", err)
		}
		return nil, err
	}

	s.log.Info("deleted url", zap.Int64("url_id", id), zap.String("short_code", url.ShortCode))
	return &url, nil
}
