// Package testutil provides shared helpers for integration tests.
package testutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/linklens/linklens/internal/model"
)

// RequireEnv returns an environment variable or skips the test if missing.
func RequireEnv(t testing.TB, key string) string {
	t.Helper()
	value := os.Getenv(key)
	if value == "" {
		t.Skipf("%s not set", key)
	}
	return value
}

const advisoryLockID int64 = 420420

// AcquireDBLock grabs a global advisory lock to serialize DB tests.
func AcquireDBLock(ctx context.Context, pool *pgxpool.Pool) (func() error, error) {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}

	if _, err := conn.Exec(ctx, "SELECT pg_advisory_lock($1)", advisoryLockID); err != nil {
		conn.Release()
		return nil, fmt.Errorf("acquire advisory lock: %w", err)
	}

	unlock := func() error {
		defer conn.Release()
		if _, err := conn.Exec(ctx, "SELECT pg_advisory_unlock($1)", advisoryLockID); err != nil {
			return fmt.Errorf("release advisory lock: %w", err)
		}
		return nil
	}

	return unlock, nil
}

// ResetSchema drops and recreates the links and click_events schemas for
// tests. Click events are dropped first since they reference links.
func ResetSchema(ctx context.Context, pool *pgxpool.Pool) error {
	root, err := ProjectRoot()
	if err != nil {
		return err
	}

	steps := []string{
		filepath.Join(root, "migrations", "000002_click_events.down.sql"),
		filepath.Join(root, "migrations", "000001_links.down.sql"),
		filepath.Join(root, "migrations", "000001_links.up.sql"),
		filepath.Join(root, "migrations", "000002_click_events.up.sql"),
	}

	for _, path := range steps {
		sql, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", filepath.Base(path), err)
		}
		if _, err := pool.Exec(ctx, string(sql)); err != nil {
			return fmt.Errorf("apply migration %s: %w", filepath.Base(path), err)
		}
	}

	return nil
}

// FlushRedis clears the current Redis database.
func FlushRedis(ctx context.Context, client *redis.Client) error {
	return client.FlushDB(ctx).Err()
}

// ProjectRoot returns the project root directory.
func ProjectRoot() (string, error) {
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		return "", fmt.Errorf("failed to resolve testutil path")
	}
	root := filepath.Clean(filepath.Join(filepath.Dir(filename), "..", ".."))
	return root, nil
}

// ============================================================================
// Test Data Factories
// ============================================================================

// NewTestLink creates a test link with sensible defaults.
func NewTestLink(t testing.TB, shortCode string) *model.Link {
	t.Helper()
	now := time.Now().UTC()
	return &model.Link{
		ID:          fmt.Sprintf("link-%d", now.UnixNano()),
		ShortCode:   shortCode,
		Destination: "https://example.com/" + shortCode,
		Title:       "Example " + shortCode,
		CreatedAt:   now,
	}
}

// NewTestClickEvent creates a test click event for a link.
func NewTestClickEvent(t testing.TB, linkID string) *model.ClickEvent {
	t.Helper()
	now := time.Now().UTC()
	return &model.ClickEvent{
		ID:        fmt.Sprintf("click-%d", now.UnixNano()),
		LinkID:    linkID,
		UserAgent: "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7)",
		IPAddress: "203.0.113.10",
		Referrer:  "https://example.org/page",
		Device:    model.DeviceDesktop,
		Browser:   "Chrome",
		Source:    model.SourceWebsite,
		Country:   "United States",
		City:      "New York",
		Timezone:  "America/New_York",
		ClickedAt: now,
	}
}

// UniqueShortCode generates a unique short code for tests.
func UniqueShortCode(prefix string) string {
	return fmt.Sprintf("%s%d", prefix, time.Now().UnixNano()%1e9)
}

// UniqueID generates a unique ID for tests.
func UniqueID(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}
