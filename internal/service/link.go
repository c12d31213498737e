// Package service provides business logic for the application.
package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/linklens/linklens/internal/cache"
	"github.com/linklens/linklens/internal/metrics"
	"github.com/linklens/linklens/internal/model"
	"github.com/linklens/linklens/internal/repository"
)

// Service errors.
var (
	ErrInvalidDestination = errors.New("invalid destination URL")
	ErrInvalidAlias       = errors.New("invalid alias format")
	ErrAliasExists        = errors.New("alias already exists")
	ErrLinkNotFound       = errors.New("link not found")
	ErrURLTooLong         = errors.New("destination URL too long")
)

// Alias validation regex: 3-50 alphanumeric chars, case-sensitive.
var aliasRegex = regexp.MustCompile(`^[a-zA-Z0-9]{3,50}$`)

const (
	maxDestinationLength = 2048
	maxTitleLength       = 200
	codeLength           = 6
	codeAlphabet         = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	maxCodeRetries       = 10
)

// LinkStore is the link registry capability the service needs.
// *repository.Repository satisfies it.
type LinkStore interface {
	CreateLink(ctx context.Context, link *model.Link) error
	GetLinkByID(ctx context.Context, id string) (*model.Link, error)
	GetLinkByCode(ctx context.Context, shortCode string) (*model.Link, error)
	ShortCodeExists(ctx context.Context, shortCode string) (bool, error)
	ListLinks(ctx context.Context) ([]*model.Link, error)
	DeleteLink(ctx context.Context, id string) error
}

// LinkCache is the redirect hot-path cache capability.
// *cache.Cache satisfies it.
type LinkCache interface {
	GetLink(ctx context.Context, shortCode string) (*model.CachedLink, error)
	SetLink(ctx context.Context, shortCode string, link *model.Link) error
	DeleteLink(ctx context.Context, shortCode string) error
	SetNegativeCache(ctx context.Context, shortCode string) error
	IsNegativelyCached(ctx context.Context, shortCode string) (bool, error)
}

// LinkService handles link business logic.
type LinkService struct {
	store   LinkStore
	cache   LinkCache
	baseURL string
	logger  *slog.Logger
	metrics metrics.Recorder
}

// NewLinkService creates a new LinkService.
func NewLinkService(store LinkStore, linkCache LinkCache, baseURL string, logger *slog.Logger, recorder metrics.Recorder) *LinkService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &LinkService{
		store:   store,
		cache:   linkCache,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		logger:  logger.With("component", "service.link"),
		metrics: recorder,
	}
}

// CreateLinkInput defines input for creating a link.
type CreateLinkInput struct {
	Destination string
	Alias       string
	Title       string
}

// CreateLink registers a new short link. The destination is normalized to
// include a scheme; a missing alias is auto-generated with bounded
// collision retry.
func (s *LinkService) CreateLink(ctx context.Context, input CreateLinkInput) (*model.Link, error) {
	destination := NormalizeURL(input.Destination)
	if err := validateDestination(destination); err != nil {
		return nil, err
	}

	title := strings.TrimSpace(input.Title)
	if len(title) > maxTitleLength {
		title = title[:maxTitleLength]
	}

	alias := input.Alias
	if alias != "" {
		if !aliasRegex.MatchString(alias) {
			return nil, ErrInvalidAlias
		}
	} else {
		var err error
		alias, err = s.generateUniqueCode(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to generate short code: %w", err)
		}
	}

	link := &model.Link{
		ID:          ulid.Make().String(),
		ShortCode:   alias,
		Destination: destination,
		Title:       title,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.store.CreateLink(ctx, link); err != nil {
		if errors.Is(err, repository.ErrCodeExists) {
			return nil, ErrAliasExists
		}
		return nil, fmt.Errorf("failed to create link: %w", err)
	}

	s.metrics.IncLinkCreated()

	return link, nil
}

// GetLink retrieves a link by ID.
func (s *LinkService) GetLink(ctx context.Context, id string) (*model.Link, error) {
	link, err := s.store.GetLinkByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrLinkNotFound) {
			return nil, ErrLinkNotFound
		}
		return nil, err
	}

	return link, nil
}

// ListLinks retrieves all links newest-first with their click counts.
func (s *LinkService) ListLinks(ctx context.Context) ([]*model.Link, error) {
	return s.store.ListLinks(ctx)
}

// DeleteLink removes a link. Its click events are cascade-deleted by the
// store.
func (s *LinkService) DeleteLink(ctx context.Context, id string) error {
	// Get link first to get short code for cache invalidation
	link, err := s.store.GetLinkByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrLinkNotFound) {
			return ErrLinkNotFound
		}
		return err
	}

	if err := s.store.DeleteLink(ctx, id); err != nil {
		return err
	}

	s.metrics.IncLinkDeleted()

	if err := s.cache.DeleteLink(ctx, link.ShortCode); err != nil {
		// Eventual consistency is acceptable; the cached entry expires.
		s.logger.Warn("failed to invalidate link cache", "short_code", link.ShortCode, "error", err)
	}

	return nil
}

// ResolveRedirect resolves a short code to its link for redirect.
// This is the hot path - optimized for speed with cache-first lookup.
func (s *LinkService) ResolveRedirect(ctx context.Context, shortCode string) (*model.Link, bool, error) {
	start := time.Now()
	defer func() {
		s.metrics.ObserveRedirectDuration(time.Since(start))
	}()

	cacheHit := false

	cached, err := s.cache.GetLink(ctx, shortCode)
	if err == nil {
		cacheHit = true
		s.metrics.IncRedirectCacheHit()
		return cached.ToLink(shortCode), cacheHit, nil
	}

	if errors.Is(err, cache.ErrCacheMiss) {
		s.metrics.IncRedirectCacheMiss()
		if isNegative, _ := s.cache.IsNegativelyCached(ctx, shortCode); isNegative {
			return nil, cacheHit, ErrLinkNotFound
		}
	} else {
		// Redis error - fall through to DB
		s.logger.Warn("link cache read failed", "short_code", shortCode, "error", err)
	}

	link, err := s.store.GetLinkByCode(ctx, shortCode)
	if err != nil {
		if errors.Is(err, repository.ErrLinkNotFound) {
			_ = s.cache.SetNegativeCache(ctx, shortCode)
			return nil, cacheHit, ErrLinkNotFound
		}
		return nil, cacheHit, err
	}

	if err := s.cache.SetLink(ctx, shortCode, link); err != nil {
		s.logger.Warn("link cache backfill failed", "short_code", shortCode, "error", err)
	}

	return link, cacheHit, nil
}

// BaseURL returns the configured base URL.
func (s *LinkService) BaseURL() string {
	return s.baseURL
}

// NormalizeURL prepends https:// when the destination has no scheme.
func NormalizeURL(dest string) string {
	dest = strings.TrimSpace(dest)
	if dest == "" {
		return dest
	}
	if !strings.HasPrefix(dest, "http://") && !strings.HasPrefix(dest, "https://") {
		return "https://" + dest
	}
	return dest
}

// validateDestination validates a normalized destination URL.
func validateDestination(dest string) error {
	if dest == "" {
		return ErrInvalidDestination
	}

	if len(dest) > maxDestinationLength {
		return ErrURLTooLong
	}

	parsed, err := url.Parse(dest)
	if err != nil {
		return ErrInvalidDestination
	}

	// Only allow http and https schemes
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return ErrInvalidDestination
	}

	// Must have a host
	if parsed.Host == "" {
		return ErrInvalidDestination
	}

	return nil
}

// generateUniqueCode generates a short code with bounded collision retry.
func (s *LinkService) generateUniqueCode(ctx context.Context) (string, error) {
	for i := 0; i < maxCodeRetries; i++ {
		code := generateRandomCode()
		exists, err := s.store.ShortCodeExists(ctx, code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
	}
	return "", errors.New("failed to generate unique short code after retries")
}

// generateRandomCode generates a random short code using crypto/rand.
func generateRandomCode() string {
	b := make([]byte, codeLength)
	for i := range b {
		idx, err := cryptoRandInt(len(codeAlphabet))
		if err != nil {
			// Fallback (should never happen in practice)
			idx = 0
		}
		b[i] = codeAlphabet[idx]
	}
	return string(b)
}

// cryptoRandInt returns a cryptographically secure random integer in [0, max).
func cryptoRandInt(max int) (int, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(max)))
	if err != nil {
		return 0, err
	}
	return int(n.Int64()), nil
}
