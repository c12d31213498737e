package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/linklens/linklens/internal/model"
)

// InsertClickEvent appends a single click event.
// Events are write-once: there is intentionally no update statement in this
// file, and rows are deleted only via the links FK cascade.
func (r *Repository) InsertClickEvent(ctx context.Context, event *model.ClickEvent) error {
	query := `
		INSERT INTO click_events (
			id, link_id, user_agent, ip_address, referrer,
			device, browser, source, country, city, timezone, clicked_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.pool.Exec(ctx, query,
		event.ID,
		event.LinkID,
		nullableString(event.UserAgent),
		nullableString(event.IPAddress),
		nullableString(event.Referrer),
		nullableString(string(event.Device)),
		nullableString(event.Browser),
		nullableString(string(event.Source)),
		nullableString(event.Country),
		nullableString(event.City),
		nullableString(event.Timezone),
		event.ClickedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert click event: %w", err)
	}

	return nil
}

// ListClicksByLink returns all click events for one link, newest first.
func (r *Repository) ListClicksByLink(ctx context.Context, linkID string) ([]*model.ClickEvent, error) {
	query := clickSelect + ` WHERE link_id = $1 ORDER BY clicked_at DESC, id DESC`

	rows, err := r.pool.Query(ctx, query, linkID)
	if err != nil {
		return nil, fmt.Errorf("failed to list clicks by link: %w", err)
	}
	defer rows.Close()

	return collectClicks(rows)
}

// ListClicks returns all click events across all links, newest first.
func (r *Repository) ListClicks(ctx context.Context) ([]*model.ClickEvent, error) {
	query := clickSelect + ` ORDER BY clicked_at DESC, id DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list clicks: %w", err)
	}
	defer rows.Close()

	return collectClicks(rows)
}

const clickSelect = `
	SELECT id, link_id,
	       COALESCE(user_agent, ''), COALESCE(ip_address, ''), COALESCE(referrer, ''),
	       COALESCE(device, ''), COALESCE(browser, ''), COALESCE(source, ''),
	       COALESCE(country, ''), COALESCE(city, ''), COALESCE(timezone, ''),
	       clicked_at
	FROM click_events`

// collectClicks scans all rows into click events.
func collectClicks(rows pgx.Rows) ([]*model.ClickEvent, error) {
	var events []*model.ClickEvent
	for rows.Next() {
		var (
			event          model.ClickEvent
			device, source string
		)
		err := rows.Scan(
			&event.ID,
			&event.LinkID,
			&event.UserAgent,
			&event.IPAddress,
			&event.Referrer,
			&device,
			&event.Browser,
			&source,
			&event.Country,
			&event.City,
			&event.Timezone,
			&event.ClickedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan click event: %w", err)
		}
		event.Device = model.DeviceCategory(device)
		event.Source = model.SourceCategory(source)
		events = append(events, &event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating click events: %w", err)
	}

	return events, nil
}
