package analytics

import (
	"Shortlink-Backend/internal/domain"
	"Shortlink-Backend/internal/repository"
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

const (
	MinDays = 1
	MaxDays = 365

	dayLayout = "2006-01-02"
)

var ErrInvalidDays = fmt.Errorf("days must be between %d and %d", MinDays, MaxDays)

// Aggregator builds click summaries for a URL, an owner or the whole service.
type Aggregator struct {
	stats        repository.StatsReader
	topReferrers int
	now          func() time.Time
	log          *zap.Logger
}

func NewAggregator(stats repository.StatsReader, topReferrers int, log *zap.Logger) *Aggregator {
	if topReferrers <= 0 {
		topReferrers = 10
	}
	return &Aggregator{
		stats:        stats,
		topReferrers: topReferrers,
		now:          time.Now,
		log:          log.With(zap.String("component", "analytics_aggregator")),
	}
}

// Summarize aggregates click events of scope over the trailing days. When
// fillZero is set every calendar day of the window appears in DailyClicks.
func (a *Aggregator) Summarize(ctx context.Context, scope domain.Scope, days int, fillZero bool) (*domain.AnalyticsSummary, error) {
	if days < MinDays || days > MaxDays {
		return nil, ErrInvalidDays
	}

	now := a.now().UTC()
	since := now.AddDate(0, 0, -days)

	// clicks_in_range считается по тем же строкам, что и daily_clicks
	times, err := a.stats.ClickTimes(ctx, scope, since)
	if err != nil {
		return nil, a.fail("click times", err)
	}

	total, err := a.stats.CountClicks(ctx, scope, nil)
	if err != nil {
		return nil, a.fail("total clicks", err)
	}

	unique, err := a.stats.CountUniqueVisitors(ctx, scope, since)
	if err != nil {
		return nil, a.fail("unique visitors", err)
	}

	devices, err := a.stats.CountByDevice(ctx, scope, since)
	if err != nil {
		return nil, a.fail("device breakdown", err)
	}

	browsers, err := a.stats.CountByBrowser(ctx, scope, since)
	if err != nil {
		return nil, a.fail("browser breakdown", err)
	}

	referrers, err := a.stats.TopReferrers(ctx, scope, since, a.topReferrers)
	if err != nil {
		return nil, a.fail("top referrers", err)
	}
	if referrers == nil {
		referrers = []domain.ReferrerCount{}
	}

	daily := make(map[string]int64)
	for _, ts := range times {
		daily[ts.UTC().Format(dayLayout)]++
	}
	if fillZero {
		for d := since.Truncate(24 * time.Hour); !d.After(now); d = d.AddDate(0, 0, 1) {
			key := d.Format(dayLayout)
			if _, ok := daily[key]; !ok {
				daily[key] = 0
			}
		}
	}

	inRange := int64(len(times))
	// запись между запросами может сделать окно больше общего счета
	if total < inRange {
		total = inRange
	}

	return &domain.AnalyticsSummary{
		TotalClicks:      total,
		ClicksInRange:    inRange,
		UniqueVisitors:   unique,
		DateRangeDays:    days,
		DeviceBreakdown:  devices,
		BrowserBreakdown: browsers,
		TopReferrers:     referrers,
		DailyClicks:      daily,
	}, nil
}

func (a *Aggregator) fail(part string, err error) error {
	if !errors.Is(err, context.Canceled) {
		a.log.Error("failed to aggregate analytics", zap.String("part", part), zap.Error(err))
	}
	return fmt.Errorf("failed to load %s: %w", part, err)
}
