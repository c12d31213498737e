// Package dto provides Data Transfer Objects for API requests and responses.
package dto

import (
	"time"

	"github.com/linklens/linklens/internal/model"
)

// CreateLinkRequest represents the request body for creating a link.
type CreateLinkRequest struct {
	URL   string `json:"url"`
	Alias string `json:"alias,omitempty"`
	Title string `json:"title,omitempty"`
}

// LinkResponse represents a link in API responses.
type LinkResponse struct {
	ID         string    `json:"id"`
	ShortCode  string    `json:"shortCode"`
	ShortURL   string    `json:"shortUrl"`
	URL        string    `json:"originalUrl"`
	Title      string    `json:"title,omitempty"`
	ClickCount int64     `json:"clickCount"`
	CreatedAt  time.Time `json:"createdAt"`
}

// LinkListResponse represents a list of links.
type LinkListResponse struct {
	Data []LinkResponse `json:"data"`
}

// ErrorResponse represents an API error.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// ToLinkResponse converts a Link model to LinkResponse DTO.
func ToLinkResponse(link *model.Link, baseURL string) *LinkResponse {
	return &LinkResponse{
		ID:         link.ID,
		ShortCode:  link.ShortCode,
		ShortURL:   baseURL + "/" + link.ShortCode,
		URL:        link.Destination,
		Title:      link.Title,
		ClickCount: link.ClickCount,
		CreatedAt:  link.CreatedAt,
	}
}

// ToLinkListResponse converts a slice of Link models to LinkListResponse.
func ToLinkListResponse(links []*model.Link, baseURL string) *LinkListResponse {
	responses := make([]LinkResponse, len(links))
	for i, link := range links {
		responses[i] = *ToLinkResponse(link, baseURL)
	}
	return &LinkListResponse{Data: responses}
}
