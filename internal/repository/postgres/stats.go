package postgres

import (
	"Shortlink-Backend/internal/domain"
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// clicksIn строит запрос к url_clicks, ограниченный областью scope
func (s *PostgresStorage) clicksIn(ctx context.Context, scope domain.Scope) *gorm.DB {
	query := s.db.WithContext(ctx).Model(&domain.Click{})

	switch scope.Kind {
	case domain.ScopeURL:
		query = query.Where("url_id = ?", scope.ID)
	case domain.ScopeOwner:
		owned := s.db.WithContext(ctx).Model(&domain.URL{}).Select("id").Where("user_id = ?", scope.ID)
		query = query.Where("url_id IN (?)", owned)
	}

	return query
}

// CountClicks считает события; since == nil означает за все время
func (s *PostgresStorage) CountClicks(ctx context.Context, scope domain.Scope, since *time.Time) (int64, error) {
	query := s.clicksIn(ctx, scope)
	if since != nil {
		query = query.Where("clicked_at >= ?", since.UTC())
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		s.log.Error("failed to count clicks", zap.Error(err))
		return 0, fmt.Errorf("failed to count clicks: %w", err)
	}

	return count, nil
}

// CountUniqueVisitors считает различные IP адреса в окне
func (s *PostgresStorage) CountUniqueVisitors(ctx context.Context, scope domain.Scope, since time.Time) (int64, error) {
	var count int64
	err := s.clicksIn(ctx, scope).
		Where("clicked_at >= ? AND ip_address IS NOT NULL", since.UTC()).
		Distinct("ip_address").
		Count(&count).Error
	if err != nil {
		s.log.Error("failed to count unique visitors", zap.Error(err))
		return 0, fmt.Errorf("failed to count unique visitors: %w", err)
	}

	return count, nil
}

// CountByDevice группирует события по типу устройства, NULL не учитывается
func (s *PostgresStorage) CountByDevice(ctx context.Context, scope domain.Scope, since time.Time) (map[string]int64, error) {
	return s.countBy(ctx, scope, since, "device_type")
}

// CountByBrowser группирует события по браузеру, NULL не учитывается
func (s *PostgresStorage) CountByBrowser(ctx context.Context, scope domain.Scope, since time.Time) (map[string]int64, error) {
	return s.countBy(ctx, scope, since, "browser")
}

func (s *PostgresStorage) countBy(ctx context.Context, scope domain.Scope, since time.Time, column string) (map[string]int64, error) {
	var rows []struct {
		Value string `gorm:"column:value"`
		Count int64  `gorm:"column:count"`
	}

	err := s.clicksIn(ctx, scope).
		Select(column+" AS value, COUNT(*) AS count").
		Where("clicked_at >= ?", since.UTC()).
		Where(column + " IS NOT NULL").
		Group(column).
		Scan(&rows).Error
	if err != nil {
		s.log.Error("failed to group clicks", zap.String("column", column), zap.Error(err))
		return nil, fmt.Errorf("failed to group clicks by %s: %w", column, err)
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Value] = row.Count
	}

	return counts, nil
}

// TopReferrers возвращает самые частые источники перехода.
// При равенстве выше тот, что встретился раньше.
func (s *PostgresStorage) TopReferrers(ctx context.Context, scope domain.Scope, since time.Time, limit int) ([]domain.ReferrerCount, error) {
	rows := make([]domain.ReferrerCount, 0)

	err := s.clicksIn(ctx, scope).
		Select("referrer, COUNT(*) AS count").
		Where("clicked_at >= ?", since.UTC()).
		Where("referrer IS NOT NULL AND referrer <> ''").
		Group("referrer").
		Order("COUNT(*) DESC").
		Order("MIN(clicked_at) ASC").
		Order("referrer ASC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		s.log.Error("failed to get top referrers", zap.Error(err))
		return nil, fmt.Errorf("failed to get top referrers: %w", err)
	}

	return rows, nil
}

// ClickTimes возвращает моменты всех событий в окне
func (s *PostgresStorage) ClickTimes(ctx context.Context, scope domain.Scope, since time.Time) ([]time.Time, error) {
	var times []time.Time

	err := s.clicksIn(ctx, scope).
		Where("clicked_at >= ?", since.UTC()).
		Pluck("clicked_at", &times).Error
	if err != nil {
		s.log.Error("failed to get click times", zap.Error(err))
		return nil, fmt.Errorf("failed to get click times: %w", err)
	}

	return times, nil
}
