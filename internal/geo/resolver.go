// Package geo resolves public IP addresses to coarse locations via an
// external HTTP lookup service.
package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"
)

// DefaultTimeout bounds a single lookup so a slow or unreachable service
// degrades the event's location fields instead of stalling the redirect.
const DefaultTimeout = 3 * time.Second

// Location is a best-effort geolocation result.
// Empty fields mean unresolved.
type Location struct {
	Country  string `json:"country,omitempty"`
	City     string `json:"city,omitempty"`
	Timezone string `json:"timezone,omitempty"`
}

// IsZero reports whether no field was resolved.
func (l Location) IsZero() bool {
	return l.Country == "" && l.City == "" && l.Timezone == ""
}

// Cache stores lookup results keyed by IP.
// Implementations must treat failures as misses.
type Cache interface {
	GetGeo(ctx context.Context, ip string) (*Location, error)
	SetGeo(ctx context.Context, ip string, loc Location) error
}

// Resolver looks up locations from an ip-api compatible service.
// The service returns {"status","country","city","timezone"} and only
// status "success" is trusted.
type Resolver struct {
	client  *http.Client
	baseURL string
	timeout time.Duration
	cache   Cache
	logger  *slog.Logger
}

// NewResolver creates a Resolver. Pass nil cache to disable caching.
func NewResolver(baseURL string, timeout time.Duration, cache Cache, logger *slog.Logger) *Resolver {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Resolver{
		client:  &http.Client{Timeout: timeout},
		baseURL: strings.TrimSuffix(baseURL, "/"),
		timeout: timeout,
		cache:   cache,
		logger:  logger.With("component", "geo.resolver"),
	}
}

// Resolve returns the location for ip. It never returns an error: absent,
// private, or unparseable IPs short-circuit with no network call, and any
// lookup failure (timeout, transport error, bad status, non-success payload)
// degrades to a zero Location.
func (r *Resolver) Resolve(ctx context.Context, ip string) Location {
	ip = strings.TrimSpace(ip)
	if !IsLookupable(ip) {
		return Location{}
	}

	if r.cache != nil {
		if loc, err := r.cache.GetGeo(ctx, ip); err == nil && loc != nil {
			return *loc
		}
	}

	loc := r.lookup(ctx, ip)

	if r.cache != nil && !loc.IsZero() {
		if err := r.cache.SetGeo(ctx, ip, loc); err != nil {
			r.logger.Debug("geo cache write failed", "error", err)
		}
	}

	return loc
}

// lookup performs the single outbound request.
func (r *Resolver) lookup(ctx context.Context, ip string) Location {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	lookupURL := fmt.Sprintf("%s/%s?fields=status,country,city,timezone", r.baseURL, ip)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, lookupURL, nil)
	if err != nil {
		r.logger.Warn("geo lookup request build failed", "error", err)
		return Location{}
	}

	resp, err := r.client.Do(req)
	if err != nil {
		r.logger.Warn("geo lookup failed", "ip", ip, "error", err)
		return Location{}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		r.logger.Warn("geo lookup bad status", "ip", ip, "status", resp.StatusCode)
		return Location{}
	}

	var payload struct {
		Status   string `json:"status"`
		Country  string `json:"country"`
		City     string `json:"city"`
		Timezone string `json:"timezone"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		r.logger.Warn("geo lookup decode failed", "ip", ip, "error", err)
		return Location{}
	}

	if payload.Status != "success" {
		r.logger.Debug("geo lookup unresolved", "ip", ip, "status", payload.Status)
		return Location{}
	}

	return Location{
		Country:  payload.Country,
		City:     payload.City,
		Timezone: payload.Timezone,
	}
}

// IsLookupable reports whether ip is a public address worth geolocating.
// Loopback, RFC 1918 ranges (10/8, 172.16/12, 192.168/16), link-local and
// unparseable addresses are not.
func IsLookupable(ip string) bool {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return false
	}
	if parsed.IsLoopback() {
		return false
	}
	if v4 := parsed.To4(); v4 != nil {
		switch {
		case v4[0] == 10:
			return false
		case v4[0] == 172 && v4[1] >= 16 && v4[1] <= 31:
			return false
		case v4[0] == 192 && v4[1] == 168:
			return false
		case v4[0] == 169 && v4[1] == 254:
			return false
		}
	}
	return true
}
