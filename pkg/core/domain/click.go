package domain

import "time"

// ClickEvent is an append-only record of one outbound click
type ClickEvent struct {
	ID        string    `json:"id"`
	LinkID    string    `json:"link_id"`
	ClickedAt time.Time `json:"clicked_at"`
	Referrer  *string   `json:"referrer"`
	UserAgent *string   `json:"user_agent"`
	Country   *string   `json:"country"`
	IPHash    *string   `json:"ip_hash"` // Salted digest, never the raw IP
}

// LinkStats represents aggregated statistics for a link
type LinkStats struct {
	TotalClicks int64            `json:"total_clicks"`
	Referrers   map[string]int64 `json:"referrers"`    // count by referrer
	Browsers    map[string]int64 `json:"browsers"`     // count by browser name
	Devices     map[string]int64 `json:"devices"`      // Desktop, Mobile or Bot
	DailyClicks []DailyClick     `json:"daily_clicks"` // timeline
}

type DailyClick struct {
	Date  string `json:"date"` // YYYY-MM-DD
	Count int64  `json:"count"`
}

// Dashboard is the admin overview
type Dashboard struct {
	Categories  int64  `json:"categories"`
	Links       int64  `json:"links"`
	Clicks      int64  `json:"clicks"`
	ClicksToday int64  `json:"clicks_today"`
	RecentLinks []Link `json:"recent_links"`
	TopLinks    []Link `json:"top_links"`
}
