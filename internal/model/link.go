// Package model defines domain entities for the application.
package model

import (
	"strconv"
	"time"
)

// Link represents a shortened URL entity.
// The short code is globally unique and immutable once assigned.
type Link struct {
	ID          string    `json:"id"`
	ShortCode   string    `json:"shortCode"`
	Destination string    `json:"originalUrl"`
	Title       string    `json:"title,omitempty"`
	ClickCount  int64     `json:"clickCount"`
	CreatedAt   time.Time `json:"createdAt"`
}

// CachedLink represents link data stored in Redis for the redirect hot path.
// Uses string types for Redis hash compatibility.
type CachedLink struct {
	ID          string `redis:"id"`
	Destination string `redis:"destination"`
	Title       string `redis:"title"`
	CreatedAt   string `redis:"created_at"` // Unix timestamp
}

// ToLink converts CachedLink to the Link domain model.
func (c *CachedLink) ToLink(shortCode string) *Link {
	link := &Link{
		ID:          c.ID,
		ShortCode:   shortCode,
		Destination: c.Destination,
		Title:       c.Title,
	}

	if c.CreatedAt != "" {
		if ts, err := strconv.ParseInt(c.CreatedAt, 10, 64); err == nil {
			link.CreatedAt = time.Unix(ts, 0).UTC()
		}
	}

	return link
}

// ToCachedLink converts a Link to its Redis representation.
func (l *Link) ToCachedLink() *CachedLink {
	return &CachedLink{
		ID:          l.ID,
		Destination: l.Destination,
		Title:       l.Title,
		CreatedAt:   strconv.FormatInt(l.CreatedAt.Unix(), 10),
	}
}
