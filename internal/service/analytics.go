package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/linklens/linklens/internal/model"
	"github.com/linklens/linklens/internal/repository"
)

// AnalyticsStore is the read capability the aggregator needs.
// *repository.Repository satisfies it.
type AnalyticsStore interface {
	GetLinkByID(ctx context.Context, id string) (*model.Link, error)
	ListLinks(ctx context.Context) ([]*model.Link, error)
	ListClicksByLink(ctx context.Context, linkID string) ([]*model.ClickEvent, error)
	ListClicks(ctx context.Context) ([]*model.ClickEvent, error)
}

// AnalyticsService computes dashboard rollups from click events.
// Both entry points are pure read-and-reduce: no writes, so repeated calls
// with no intervening clicks yield identical results.
type AnalyticsService struct {
	store AnalyticsStore

	// now is injectable for deterministic window tests.
	now func() time.Time
}

// NewAnalyticsService creates a new AnalyticsService.
func NewAnalyticsService(store AnalyticsStore) *AnalyticsService {
	return &AnalyticsService{
		store: store,
		now:   time.Now,
	}
}

// ForLink aggregates analytics for a single link.
// Returns ErrLinkNotFound if the link does not exist; a link with zero
// clicks yields a zeroed summary with empty distributions, never an error.
func (s *AnalyticsService) ForLink(ctx context.Context, linkID string) (*model.LinkAnalytics, error) {
	if _, err := s.store.GetLinkByID(ctx, linkID); err != nil {
		if errors.Is(err, repository.ErrLinkNotFound) {
			return nil, ErrLinkNotFound
		}
		return nil, fmt.Errorf("failed to fetch link: %w", err)
	}

	events, err := s.store.ListClicksByLink(ctx, linkID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch clicks: %w", err)
	}
	if events == nil {
		events = []*model.ClickEvent{}
	}

	return &model.LinkAnalytics{
		TotalClicks:         int64(len(events)),
		UniqueVisitors:      countUniqueIPs(events),
		DeviceDistribution:  distribution(events, func(e *model.ClickEvent) string { return string(e.Device) }),
		CountryDistribution: distribution(events, func(e *model.ClickEvent) string { return e.Country }),
		BrowserDistribution: distribution(events, func(e *model.ClickEvent) string { return e.Browser }),
		SourceDistribution:  distribution(events, func(e *model.ClickEvent) string { return string(e.Source) }),
		Clicks:              events, // store returns newest-first
	}, nil
}

// Global aggregates analytics across all links.
func (s *AnalyticsService) Global(ctx context.Context) (*model.GlobalAnalytics, error) {
	links, err := s.store.ListLinks(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch links: %w", err)
	}

	events, err := s.store.ListClicks(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch clicks: %w", err)
	}

	totalClicks := int64(len(events))

	var activeLinks int64
	for _, link := range links {
		if link.ClickCount > 0 {
			activeLinks++
		}
	}

	var mobileClicks int64
	for _, event := range events {
		if event.Device == model.DeviceMobile {
			mobileClicks++
		}
	}
	var mobileTraffic float64
	if totalClicks > 0 {
		mobileTraffic = roundOneDecimal(float64(mobileClicks) / float64(totalClicks) * 100)
	}

	now := s.now().UTC()

	// Month series starts at the first of the month six months back, so the
	// current month is the seventh bucket.
	monthWindowStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -6, 0)

	// Daily series covers the trailing 7x24h, not calendar weeks.
	dayWindowStart := now.Add(-7 * 24 * time.Hour)

	clicksByMonth := make(model.Distribution)
	dailyClicks := make(model.Distribution)
	dailyVisitors := make(map[string]map[string]struct{})

	for _, event := range events {
		clickedAt := event.ClickedAt.UTC()

		if !clickedAt.Before(monthWindowStart) {
			clicksByMonth[clickedAt.Format("2006-01")]++
		}

		if !clickedAt.Before(dayWindowStart) {
			day := clickedAt.Format("2006-01-02")
			dailyClicks[day]++

			if event.IPAddress != "" {
				if dailyVisitors[day] == nil {
					dailyVisitors[day] = make(map[string]struct{})
				}
				dailyVisitors[day][event.IPAddress] = struct{}{}
			}
		}
	}

	uniqueVisitorsDaily := make(model.Distribution)
	for day, visitors := range dailyVisitors {
		uniqueVisitorsDaily[day] = int64(len(visitors))
	}

	return &model.GlobalAnalytics{
		TotalClicks:         totalClicks,
		ActiveLinks:         activeLinks,
		MobileTraffic:       mobileTraffic,
		DeviceDistribution:  distribution(events, func(e *model.ClickEvent) string { return string(e.Device) }),
		CountryDistribution: distribution(events, func(e *model.ClickEvent) string { return e.Country }),
		BrowserDistribution: distribution(events, func(e *model.ClickEvent) string { return e.Browser }),
		SourceDistribution:  distribution(events, func(e *model.ClickEvent) string { return string(e.Source) }),
		ClicksByMonth:       clicksByMonth,
		DailyClicks:         dailyClicks,
		UniqueVisitorsDaily: uniqueVisitorsDaily,
	}, nil
}

// countUniqueIPs counts distinct non-empty IP addresses.
func countUniqueIPs(events []*model.ClickEvent) int64 {
	seen := make(map[string]struct{})
	for _, event := range events {
		if event.IPAddress != "" {
			seen[event.IPAddress] = struct{}{}
		}
	}
	return int64(len(seen))
}

// distribution groups events by the given key, bucketing missing values
// under "Unknown" so counts always sum to the total event count.
func distribution(events []*model.ClickEvent, key func(*model.ClickEvent) string) model.Distribution {
	dist := make(model.Distribution)
	for _, event := range events {
		k := key(event)
		if k == "" {
			k = "Unknown"
		}
		dist[k]++
	}
	return dist
}

// roundOneDecimal rounds to one decimal place.
func roundOneDecimal(v float64) float64 {
	return math.Round(v*10) / 10
}
