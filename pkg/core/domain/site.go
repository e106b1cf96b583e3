package domain

import "time"

// Well-known site configuration keys
const (
	ConfigSiteTitle  = "site_title"
	ConfigLogoURL    = "logo_url"
	ConfigFaviconURL = "favicon_url"
)

// SiteConfig is the flat global key/value configuration
type SiteConfig map[string]string

// Metadata is the best-effort result of scraping a page for a link form
type Metadata struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Image       *string `json:"image"`
	Favicon     *string `json:"favicon"`
}

// Export is the portable dump of categories and links
type Export struct {
	ExportedAt time.Time  `json:"exported_at" yaml:"exported_at"`
	Categories []Category `json:"categories" yaml:"categories"`
	Links      []Link     `json:"links" yaml:"links"`
}
