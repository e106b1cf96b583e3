package domain

import "time"

// SinkSlug identifies the fallback category that absorbs links from deleted
// categories. It can be renamed but never deleted or reordered.
const SinkSlug = "uncategorized"

// Category is a named, ordered group of links
type Category struct {
	ID        string    `json:"id" yaml:"id"`
	Name      string    `json:"name" yaml:"name"`
	Slug      string    `json:"slug" yaml:"slug"`
	Icon      string    `json:"icon" yaml:"icon"`
	SortOrder int       `json:"sort_order" yaml:"sort_order"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt time.Time `json:"updated_at" yaml:"updated_at"`
	Links     []Link    `json:"links,omitempty" yaml:"-"` // Populated for public pages
}

// IsSink reports whether c is the uncategorized fallback
func (c *Category) IsSink() bool {
	return c.Slug == SinkSlug
}

// Position is a persisted (id, sort_order) pair
type Position struct {
	ID        string `json:"id"`
	SortOrder int    `json:"sort_order"`
}
