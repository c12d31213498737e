package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/linklens/linklens/internal/model"
)

// Common errors for link repository operations.
var (
	ErrLinkNotFound = errors.New("link not found")
	ErrCodeExists   = errors.New("short code already exists")
)

// CreateLink inserts a new link into the database.
func (r *Repository) CreateLink(ctx context.Context, link *model.Link) error {
	query := `
		INSERT INTO links (id, short_code, destination, title, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.pool.Exec(ctx, query,
		link.ID,
		link.ShortCode,
		link.Destination,
		nullableString(link.Title),
		link.CreatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return ErrCodeExists
		}
		return fmt.Errorf("failed to create link: %w", err)
	}

	return nil
}

// GetLinkByID retrieves a link by its ID.
func (r *Repository) GetLinkByID(ctx context.Context, id string) (*model.Link, error) {
	query := `
		SELECT l.id, l.short_code, l.destination, COALESCE(l.title, ''), l.created_at,
		       (SELECT COUNT(*) FROM click_events c WHERE c.link_id = l.id)
		FROM links l
		WHERE l.id = $1
	`

	link, err := scanLink(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrLinkNotFound
		}
		return nil, fmt.Errorf("failed to get link by ID: %w", err)
	}

	return link, nil
}

// GetLinkByCode retrieves a link by its short code.
// This is the hot path for redirects.
func (r *Repository) GetLinkByCode(ctx context.Context, shortCode string) (*model.Link, error) {
	query := `
		SELECT l.id, l.short_code, l.destination, COALESCE(l.title, ''), l.created_at,
		       (SELECT COUNT(*) FROM click_events c WHERE c.link_id = l.id)
		FROM links l
		WHERE l.short_code = $1
	`

	link, err := scanLink(r.pool.QueryRow(ctx, query, shortCode))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrLinkNotFound
		}
		return nil, fmt.Errorf("failed to get link by short code: %w", err)
	}

	return link, nil
}

// ShortCodeExists reports whether a short code is already registered.
func (r *Repository) ShortCodeExists(ctx context.Context, shortCode string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM links WHERE short_code = $1)`,
		shortCode,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check short code: %w", err)
	}
	return exists, nil
}

// ListLinks retrieves all links newest-first, with their click counts.
func (r *Repository) ListLinks(ctx context.Context) ([]*model.Link, error) {
	query := `
		SELECT l.id, l.short_code, l.destination, COALESCE(l.title, ''), l.created_at,
		       COUNT(c.id)
		FROM links l
		LEFT JOIN click_events c ON c.link_id = l.id
		GROUP BY l.id
		ORDER BY l.created_at DESC, l.id DESC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list links: %w", err)
	}
	defer rows.Close()

	var links []*model.Link
	for rows.Next() {
		link, err := scanLink(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan link: %w", err)
		}
		links = append(links, link)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating links: %w", err)
	}

	return links, nil
}

// DeleteLink removes a link. Click events are removed by the FK cascade.
func (r *Repository) DeleteLink(ctx context.Context, id string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM links WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete link: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrLinkNotFound
	}

	return nil
}

// scanLink scans a link row including its click count.
func scanLink(row pgx.Row) (*model.Link, error) {
	var link model.Link
	err := row.Scan(
		&link.ID,
		&link.ShortCode,
		&link.Destination,
		&link.Title,
		&link.CreatedAt,
		&link.ClickCount,
	)
	return &link, err
}

// isUniqueViolation checks if the error is a PostgreSQL unique constraint violation.
func isUniqueViolation(err error) bool {
	// PostgreSQL error code 23505 is unique_violation
	return err != nil && (strings.Contains(err.Error(), "23505") || strings.Contains(err.Error(), "unique"))
}

// nullableString returns nil for empty strings so the column stores NULL.
func nullableString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
