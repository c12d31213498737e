package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/linklens/linklens/internal/classify"
	"github.com/linklens/linklens/internal/geo"
	"github.com/linklens/linklens/internal/metrics"
	"github.com/linklens/linklens/internal/model"
)

// maxMetaLength bounds stored user-agent and referrer strings.
const maxMetaLength = 500

// ClickStore is the click-event append capability.
// *repository.Repository satisfies it.
type ClickStore interface {
	InsertClickEvent(ctx context.Context, event *model.ClickEvent) error
}

// LocationResolver resolves an IP to a best-effort location.
// *geo.Resolver satisfies it.
type LocationResolver interface {
	Resolve(ctx context.Context, ip string) geo.Location
}

// ClickService records click events for redirects.
type ClickService struct {
	store    ClickStore
	resolver LocationResolver
	logger   *slog.Logger
	metrics  metrics.Recorder
}

// NewClickService creates a new ClickService.
func NewClickService(store ClickStore, resolver LocationResolver, logger *slog.Logger, recorder metrics.Recorder) *ClickService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &ClickService{
		store:    store,
		resolver: resolver,
		logger:   logger.With("component", "service.click"),
		metrics:  recorder,
	}
}

// RequestInfo carries the raw request metadata for one redirect dispatch.
// Empty strings mean the corresponding header was absent.
type RequestInfo struct {
	UserAgent string
	IPAddress string
	Referrer  string
}

// Record builds one immutable click event and persists it.
//
// Classification is synchronous and cannot fail; the geolocation lookup is
// time-bounded and degrades to unknown on any failure. All derived fields
// are computed here, once, and stored with the event - they are never
// recomputed at read time, so historical analytics stay stable when the
// classification rules change.
//
// A persistence failure is returned to the caller; it must not undo the
// redirect that was already issued.
func (s *ClickService) Record(ctx context.Context, linkID string, info RequestInfo) error {
	userAgent := truncate(info.UserAgent, maxMetaLength)
	referrer := truncate(info.Referrer, maxMetaLength)
	ipAddress := strings.TrimSpace(info.IPAddress)

	event := &model.ClickEvent{
		ID:        ulid.Make().String(),
		LinkID:    linkID,
		UserAgent: userAgent,
		IPAddress: ipAddress,
		Referrer:  referrer,
		Device:    classify.Device(userAgent),
		Browser:   classify.Browser(userAgent),
		Source:    classify.Source(referrer),
		ClickedAt: time.Now().UTC(),
	}

	if geo.IsLookupable(ipAddress) {
		loc := s.resolver.Resolve(ctx, ipAddress)
		event.Country = loc.Country
		event.City = loc.City
		event.Timezone = loc.Timezone
		if loc.IsZero() {
			s.metrics.IncGeoLookup("unresolved")
		} else {
			s.metrics.IncGeoLookup("resolved")
		}
	} else {
		s.metrics.IncGeoLookup("skipped")
	}

	if err := s.store.InsertClickEvent(ctx, event); err != nil {
		s.metrics.IncClickRecorded("failed")
		return fmt.Errorf("failed to record click: %w", err)
	}

	s.metrics.IncClickRecorded("success")

	s.logger.Debug("click recorded",
		"link_id", linkID,
		"device", event.Device,
		"source", event.Source,
		"country", event.Country,
	)

	return nil
}

// truncate caps s at max bytes.
func truncate(s string, max int) string {
	if len(s) > max {
		return s[:max]
	}
	return s
}
