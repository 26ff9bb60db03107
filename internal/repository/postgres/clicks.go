package postgres

import (
	"Shortlink-Backend/internal/domain"
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// CreateClick сохраняет событие перехода
func (s *PostgresStorage) CreateClick(ctx context.Context, click *domain.Click) error {
	if click.ClickedAt.IsZero() {
		click.ClickedAt = time.Now().UTC()
	}
	click.ClickedAt = click.ClickedAt.UTC()

	if err := s.db.WithContext(ctx).Omit("URL").Create(click).Error; err != nil {
		return fmt.Errorf("failed to create click: %w", err)
	}

	return nil
}

// ListClicks возвращает события перехода по ссылке, новые первыми
func (s *PostgresStorage) ListClicks(ctx context.Context, urlID int64, offset, limit int) ([]*domain.Click, int64, error) {
	offset, limit = normalizePage(offset, limit)

	var total int64
	if err := s.db.WithContext(ctx).Model(&domain.Click{}).Where("url_id = ?", urlID).Count(&total).Error; err != nil {
		s.log.Error("failed to count clicks", zap.Int64("url_id", urlID), zap.Error(err))
		return nil, 0, fmt.Errorf("failed to count clicks: %w", err)
	}

	clicks := make([]*domain.Click, 0)
	err := s.db.WithContext(ctx).
		Where("url_id = ?", urlID).
		Order("clicked_at DESC").Order("id DESC").
		Offset(offset).Limit(limit).
		Find(&clicks).Error
	if err != nil {
		s.log.Error("failed to list clicks", zap.Int64("url_id", urlID), zap.Error(err))
		return nil, 0, fmt.Errorf("failed to list clicks: %w", err)
	}

	return clicks, total, nil
}

// DeleteClicksBefore удаляет одним запросом все события старше cutoff.
// Счетчики urls.clicks не меняются.
func (s *PostgresStorage) DeleteClicksBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := s.db.WithContext(ctx).Where("clicked_at < ?", cutoff.UTC()).Delete(&domain.Click{})
	if result.Error != nil {
		s.log.Error("failed to delete old clicks", zap.Time("cutoff", cutoff), zap.Error(result.Error))
		return 0, fmt.Errorf("failed to delete old clicks: %w", result.Error)
	}

	return result.RowsAffected, nil
}
