// Package model defines domain entities for the application.
package model

import "time"

// DeviceCategory classifies the client device of a click.
type DeviceCategory string

const (
	DeviceDesktop DeviceCategory = "Desktop"
	DeviceMobile  DeviceCategory = "Mobile"
	DeviceTablet  DeviceCategory = "Tablet"
	DeviceUnknown DeviceCategory = "Unknown"
)

// SourceCategory classifies the referrer origin of a click.
type SourceCategory string

const (
	SourceDirect  SourceCategory = "Direct"
	SourceSocial  SourceCategory = "Social"
	SourceEmail   SourceCategory = "Email"
	SourceWebsite SourceCategory = "Website"
)

// ClickEvent represents a single redirect dispatch.
// Events are append-only: no update path exists, and rows are removed only
// when the owning link is deleted (FK cascade).
//
// Classification and location fields are derived once when the event is
// written and stored denormalized, so later changes to classification rules
// never alter historical analytics.
type ClickEvent struct {
	ID     string `json:"id"`     // ULID (time-sortable)
	LinkID string `json:"linkId"` // FK to links.id

	// Raw request metadata. Empty string means the header was absent.
	UserAgent string `json:"userAgent,omitempty"` // truncated to 500 chars
	IPAddress string `json:"ipAddress,omitempty"`
	Referrer  string `json:"referrer,omitempty"` // truncated to 500 chars

	// Derived classification, fixed at write time.
	Device  DeviceCategory `json:"deviceType,omitempty"`
	Browser string         `json:"browser,omitempty"`
	Source  SourceCategory `json:"source,omitempty"`

	// Best-effort geolocation. Empty when the IP was absent, private, or
	// the lookup failed.
	Country  string `json:"country,omitempty"`
	City     string `json:"city,omitempty"`
	Timezone string `json:"timezone,omitempty"`

	ClickedAt time.Time `json:"clickedAt"`
}
