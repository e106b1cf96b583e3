package domain

import "time"

// Link is a bookmarked URL belonging to exactly one category
type Link struct {
	ID           string     `json:"id" yaml:"id"`
	CategoryID   string     `json:"category_id" yaml:"category_id"`
	Title        string     `json:"title" yaml:"title"`
	Description  *string    `json:"description" yaml:"description,omitempty"`
	URL          string     `json:"url" yaml:"url"`
	ThumbnailURL *string    `json:"thumbnail_url" yaml:"thumbnail_url,omitempty"`
	FaviconURL   *string    `json:"favicon_url" yaml:"favicon_url,omitempty"`
	Tags         []string   `json:"tags" yaml:"tags,omitempty"` // Handled as JSON text in SQLite
	SortOrder    int        `json:"sort_order" yaml:"sort_order"`
	IsFavorite   bool       `json:"is_favorite" yaml:"is_favorite"`
	CreatedAt    time.Time  `json:"created_at" yaml:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" yaml:"updated_at"`
	DeletedAt    *time.Time `json:"deleted_at,omitempty" yaml:"-"`
	Clicks       int64      `json:"clicks,omitempty" yaml:"-"` // Aggregated count
}

// LinkInput carries the writable fields of a link. Nil pointers mean
// "leave unchanged" on update.
type LinkInput struct {
	CategoryID   *string  `json:"category_id"`
	Title        *string  `json:"title"`
	Description  *string  `json:"description"`
	URL          *string  `json:"url"`
	ThumbnailURL *string  `json:"thumbnail_url"`
	FaviconURL   *string  `json:"favicon_url"`
	Tags         []string `json:"tags"`
	IsFavorite   *bool    `json:"is_favorite"`
}

// LinkFilter narrows a link listing
type LinkFilter struct {
	CategoryID string
	Search     string
	Tag        string
	Favorite   *bool

	// SortByOrder lists by sort_order instead of newest first
	SortByOrder bool
	Limit       int
	Offset      int
}
