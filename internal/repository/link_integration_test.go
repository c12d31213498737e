//go:build integration

package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/linklens/linklens/internal/testutil"
)

// ============================================================================
// Link Repository Integration Tests
// ============================================================================

func TestIntegrationLinkRepository_CreateLink(t *testing.T) {
	ctx, repo := newRepoTestEnv(t)

	shortCode := testutil.UniqueShortCode("create")
	link := testutil.NewTestLink(t, shortCode)

	err := repo.CreateLink(ctx, link)
	if err != nil {
		t.Fatalf("CreateLink failed: %v", err)
	}

	retrieved, err := repo.GetLinkByID(ctx, link.ID)
	if err != nil {
		t.Fatalf("GetLinkByID failed: %v", err)
	}

	if retrieved.ShortCode != shortCode {
		t.Errorf("ShortCode mismatch: got %q, want %q", retrieved.ShortCode, shortCode)
	}
	if retrieved.Destination != link.Destination {
		t.Errorf("Destination mismatch: got %q, want %q", retrieved.Destination, link.Destination)
	}
	if retrieved.Title != link.Title {
		t.Errorf("Title mismatch: got %q, want %q", retrieved.Title, link.Title)
	}
	if retrieved.CreatedAt.IsZero() {
		t.Error("CreatedAt should be set")
	}
}

func TestIntegrationLinkRepository_CreateLink_DuplicateCode(t *testing.T) {
	ctx, repo := newRepoTestEnv(t)

	shortCode := testutil.UniqueShortCode("dup")
	link1 := testutil.NewTestLink(t, shortCode)
	link2 := testutil.NewTestLink(t, shortCode)
	link2.ID = testutil.UniqueID("link") // Different ID, same short_code

	if err := repo.CreateLink(ctx, link1); err != nil {
		t.Fatalf("CreateLink (first) failed: %v", err)
	}

	err := repo.CreateLink(ctx, link2)
	if !errors.Is(err, ErrCodeExists) {
		t.Errorf("Expected ErrCodeExists, got: %v", err)
	}
}

func TestIntegrationLinkRepository_GetByID_NotFound(t *testing.T) {
	ctx, repo := newRepoTestEnv(t)

	_, err := repo.GetLinkByID(ctx, "nonexistent-id")
	if !errors.Is(err, ErrLinkNotFound) {
		t.Errorf("Expected ErrLinkNotFound, got: %v", err)
	}
}

func TestIntegrationLinkRepository_GetByCode(t *testing.T) {
	ctx, repo := newRepoTestEnv(t)

	shortCode := testutil.UniqueShortCode("getcode")
	link := testutil.NewTestLink(t, shortCode)

	if err := repo.CreateLink(ctx, link); err != nil {
		t.Fatalf("CreateLink failed: %v", err)
	}

	retrieved, err := repo.GetLinkByCode(ctx, shortCode)
	if err != nil {
		t.Fatalf("GetLinkByCode failed: %v", err)
	}

	if retrieved.ShortCode != shortCode {
		t.Errorf("ShortCode mismatch: got %q, want %q", retrieved.ShortCode, shortCode)
	}
}

func TestIntegrationLinkRepository_GetByCode_NotFound(t *testing.T) {
	ctx, repo := newRepoTestEnv(t)

	_, err := repo.GetLinkByCode(ctx, "nonexistent-code")
	if !errors.Is(err, ErrLinkNotFound) {
		t.Errorf("Expected ErrLinkNotFound, got: %v", err)
	}
}

func TestIntegrationLinkRepository_DeleteLink(t *testing.T) {
	ctx, repo := newRepoTestEnv(t)

	shortCode := testutil.UniqueShortCode("delete")
	link := testutil.NewTestLink(t, shortCode)

	if err := repo.CreateLink(ctx, link); err != nil {
		t.Fatalf("CreateLink failed: %v", err)
	}

	if err := repo.DeleteLink(ctx, link.ID); err != nil {
		t.Fatalf("DeleteLink failed: %v", err)
	}

	_, err := repo.GetLinkByID(ctx, link.ID)
	if !errors.Is(err, ErrLinkNotFound) {
		t.Errorf("Expected ErrLinkNotFound after delete, got: %v", err)
	}
}

func TestIntegrationLinkRepository_DeleteLink_NotFound(t *testing.T) {
	ctx, repo := newRepoTestEnv(t)

	err := repo.DeleteLink(ctx, "nonexistent-id")
	if !errors.Is(err, ErrLinkNotFound) {
		t.Errorf("Expected ErrLinkNotFound, got: %v", err)
	}
}

func TestIntegrationLinkRepository_DeleteLink_CascadesClicks(t *testing.T) {
	ctx, repo := newRepoTestEnv(t)

	link := testutil.NewTestLink(t, testutil.UniqueShortCode("cascade"))
	if err := repo.CreateLink(ctx, link); err != nil {
		t.Fatalf("CreateLink failed: %v", err)
	}

	event := testutil.NewTestClickEvent(t, link.ID)
	if err := repo.InsertClickEvent(ctx, event); err != nil {
		t.Fatalf("InsertClickEvent failed: %v", err)
	}

	if err := repo.DeleteLink(ctx, link.ID); err != nil {
		t.Fatalf("DeleteLink failed: %v", err)
	}

	clicks, err := repo.ListClicksByLink(ctx, link.ID)
	if err != nil {
		t.Fatalf("ListClicksByLink failed: %v", err)
	}
	if len(clicks) != 0 {
		t.Errorf("Expected 0 clicks after cascade delete, got %d", len(clicks))
	}
}

func TestIntegrationLinkRepository_ListLinks_NewestFirst(t *testing.T) {
	ctx, repo := newRepoTestEnv(t)

	var ids []string
	for i := 0; i < 3; i++ {
		link := testutil.NewTestLink(t, testutil.UniqueShortCode("list"))
		link.ID = testutil.UniqueID("link")
		link.CreatedAt = time.Now().UTC().Add(time.Duration(i) * time.Second)
		if err := repo.CreateLink(ctx, link); err != nil {
			t.Fatalf("CreateLink failed: %v", err)
		}
		ids = append(ids, link.ID)
	}

	links, err := repo.ListLinks(ctx)
	if err != nil {
		t.Fatalf("ListLinks failed: %v", err)
	}

	if len(links) != 3 {
		t.Fatalf("Expected 3 links, got %d", len(links))
	}

	// Newest (last created) comes first
	if links[0].ID != ids[2] {
		t.Errorf("Expected newest link first, got %s", links[0].ID)
	}
	if links[2].ID != ids[0] {
		t.Errorf("Expected oldest link last, got %s", links[2].ID)
	}
}

func TestIntegrationLinkRepository_ListLinks_ClickCounts(t *testing.T) {
	ctx, repo := newRepoTestEnv(t)

	link := testutil.NewTestLink(t, testutil.UniqueShortCode("count"))
	if err := repo.CreateLink(ctx, link); err != nil {
		t.Fatalf("CreateLink failed: %v", err)
	}

	for i := 0; i < 2; i++ {
		event := testutil.NewTestClickEvent(t, link.ID)
		event.ID = testutil.UniqueID("click")
		if err := repo.InsertClickEvent(ctx, event); err != nil {
			t.Fatalf("InsertClickEvent failed: %v", err)
		}
	}

	links, err := repo.ListLinks(ctx)
	if err != nil {
		t.Fatalf("ListLinks failed: %v", err)
	}
	if len(links) != 1 {
		t.Fatalf("Expected 1 link, got %d", len(links))
	}
	if links[0].ClickCount != 2 {
		t.Errorf("ClickCount mismatch: got %d, want 2", links[0].ClickCount)
	}
}

func TestIntegrationLinkRepository_ShortCodeExists(t *testing.T) {
	ctx, repo := newRepoTestEnv(t)

	shortCode := testutil.UniqueShortCode("exists")
	link := testutil.NewTestLink(t, shortCode)

	exists, err := repo.ShortCodeExists(ctx, shortCode)
	if err != nil {
		t.Fatalf("ShortCodeExists failed: %v", err)
	}
	if exists {
		t.Error("ShortCode should not exist before creation")
	}

	if err := repo.CreateLink(ctx, link); err != nil {
		t.Fatalf("CreateLink failed: %v", err)
	}

	exists, err = repo.ShortCodeExists(ctx, shortCode)
	if err != nil {
		t.Fatalf("ShortCodeExists (after create) failed: %v", err)
	}
	if !exists {
		t.Error("ShortCode should exist after creation")
	}
}

// ============================================================================
// Test Environment Setup
// ============================================================================

func newRepoTestEnv(t *testing.T) (context.Context, *Repository) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration tests in short mode")
	}

	ctx := context.Background()
	dbURL := testutil.RequireEnv(t, "DATABASE_URL")

	repo, err := New(ctx, dbURL)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(repo.Close)

	unlock, err := testutil.AcquireDBLock(ctx, repo.Pool())
	if err != nil {
		t.Fatalf("acquire db lock: %v", err)
	}
	t.Cleanup(func() {
		_ = unlock()
	})

	if err := testutil.ResetSchema(ctx, repo.Pool()); err != nil {
		t.Fatalf("reset schema: %v", err)
	}

	return ctx, repo
}
