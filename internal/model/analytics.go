package model

// Distribution maps a category name to its click count.
// Events missing a value for the grouping key are bucketed under "Unknown",
// so distribution values always sum to the total event count.
type Distribution map[string]int64

// LinkAnalytics is the per-link dashboard summary.
type LinkAnalytics struct {
	TotalClicks         int64         `json:"totalClicks"`
	UniqueVisitors      int64         `json:"uniqueVisitors"`
	DeviceDistribution  Distribution  `json:"deviceDistribution"`
	CountryDistribution Distribution  `json:"countryDistribution"`
	BrowserDistribution Distribution  `json:"browserDistribution"`
	SourceDistribution  Distribution  `json:"sourceDistribution"`
	Clicks              []*ClickEvent `json:"clicks"` // newest first
}

// GlobalAnalytics is the dashboard summary across all links.
type GlobalAnalytics struct {
	TotalClicks         int64        `json:"totalClicks"`
	ActiveLinks         int64        `json:"activeLinks"`
	MobileTraffic       float64      `json:"mobileTraffic"` // percentage, one decimal
	DeviceDistribution  Distribution `json:"deviceDistribution"`
	CountryDistribution Distribution `json:"countryDistribution"`
	BrowserDistribution Distribution `json:"browserDistribution"`
	SourceDistribution  Distribution `json:"sourceDistribution"`
	ClicksByMonth       Distribution `json:"clicksByMonth"`       // YYYY-MM, trailing 7 calendar months
	DailyClicks         Distribution `json:"dailyClicks"`         // YYYY-MM-DD, trailing 7 days
	UniqueVisitorsDaily Distribution `json:"uniqueVisitorsDaily"` // YYYY-MM-DD, trailing 7 days
}
