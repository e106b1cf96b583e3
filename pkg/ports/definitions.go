package ports

import (
	"context"
	"time"

	"github.com/hkunkun/hkun-links/pkg/core/domain"
)

// CategoryRepository defines storage operations for categories
type CategoryRepository interface {
	CreateCategory(ctx context.Context, category *domain.Category) error
	GetCategory(ctx context.Context, id string) (*domain.Category, error)
	GetCategoryBySlug(ctx context.Context, slug string) (*domain.Category, error)
	UpdateCategory(ctx context.Context, category *domain.Category) error
	ListCategories(ctx context.Context) ([]domain.Category, error) // Sink last
	NextCategoryOrder(ctx context.Context) (int, error)
	// DeleteCategoryMovingLinks appends the category's links to the sink and
	// deletes the category in one transaction. It returns the sink.
	DeleteCategoryMovingLinks(ctx context.Context, id string, at time.Time) (*domain.Category, error)
	ReorderCategories(ctx context.Context, positions []domain.Position, at time.Time) error
}

// LinkRepository defines storage operations for links
type LinkRepository interface {
	CreateLink(ctx context.Context, link *domain.Link) error
	GetLink(ctx context.Context, id string) (*domain.Link, error)
	UpdateLink(ctx context.Context, link *domain.Link) error
	DeleteLinks(ctx context.Context, ids []string, at time.Time) (int64, error) // Soft delete
	ListLinks(ctx context.Context, filter domain.LinkFilter) ([]domain.Link, error)
	CountLinks(ctx context.Context, filter domain.LinkFilter) (int64, error)
	CategoryLinks(ctx context.Context, categoryID string) ([]domain.Link, error)
	NextLinkOrder(ctx context.Context, categoryID string) (int, error)
	ReorderLinks(ctx context.Context, categoryID string, positions []domain.Position, at time.Time) error
}

// ClickRepository stores the append-only click log and its aggregates
type ClickRepository interface {
	RecordClick(ctx context.Context, event *domain.ClickEvent) error
	GetLinkStats(ctx context.Context, linkID string) (*domain.LinkStats, error)
	UserAgentCounts(ctx context.Context, linkID string) (map[string]int64, error)
	CountClicks(ctx context.Context, since *time.Time) (int64, error)
	CountCategories(ctx context.Context) (int64, error)
	RecentLinks(ctx context.Context, limit int) ([]domain.Link, error)
	TopLinks(ctx context.Context, limit int) ([]domain.Link, error)
}

// SiteConfigRepository stores the flat global configuration
type SiteConfigRepository interface {
	GetSiteConfig(ctx context.Context) (domain.SiteConfig, error)
	UpsertSiteConfig(ctx context.Context, values domain.SiteConfig) error
}

// TransferRepository dumps and restores everything for migration
type TransferRepository interface {
	Dump(ctx context.Context) ([]domain.Category, []domain.Link, error)
	Restore(ctx context.Context, categories []domain.Category, links []domain.Link) error
}

// Repository is everything the services need from storage
type Repository interface {
	CategoryRepository
	LinkRepository
	ClickRepository
	SiteConfigRepository
	TransferRepository
}

// CategoryService defines business logic for categories
type CategoryService interface {
	CreateCategory(ctx context.Context, name, slug, icon string) (*domain.Category, error)
	GetCategory(ctx context.Context, id string) (*domain.Category, error)
	GetCategoryBySlug(ctx context.Context, slug string) (*domain.Category, error) // With links
	UpdateCategory(ctx context.Context, id, name, slug, icon string) (*domain.Category, error)
	DeleteCategory(ctx context.Context, id string) (*domain.Category, error) // Returns the sink
	ListCategories(ctx context.Context, withLinks bool) ([]domain.Category, error)
	ReorderCategories(ctx context.Context, orderedIDs []string) error
}

// LinkService defines the business logic operations
type LinkService interface {
	CreateLink(ctx context.Context, input domain.LinkInput) (*domain.Link, error)
	GetLink(ctx context.Context, id string) (*domain.Link, error)
	UpdateLink(ctx context.Context, id string, input domain.LinkInput) (*domain.Link, error)
	MoveLink(ctx context.Context, id, categoryID string) (*domain.Link, error)
	ToggleFavorite(ctx context.Context, id string) (*domain.Link, error)
	DeleteLink(ctx context.Context, id string) error
	DeleteLinks(ctx context.Context, ids []string) (int64, error)
	ListLinks(ctx context.Context, filter domain.LinkFilter, page, limit int) ([]domain.Link, int64, error)
	Search(ctx context.Context, query string) ([]domain.Link, error)
	ReorderLinks(ctx context.Context, categoryID string, orderedIDs []string) error
}

// ClickService records clicks and reports analytics
type ClickService interface {
	RecordClick(ctx context.Context, linkID, referrer, userAgent, ip string) error
	GetLinkStats(ctx context.Context, linkID string) (*domain.LinkStats, error)
	GetDashboard(ctx context.Context) (*domain.Dashboard, error)
}

// SiteConfigService reads and writes global configuration
type SiteConfigService interface {
	GetSiteConfig(ctx context.Context) (domain.SiteConfig, error)
	UpdateSiteConfig(ctx context.Context, values domain.SiteConfig) (domain.SiteConfig, error)
}

// TransferService exports and imports all categories and links
type TransferService interface {
	Export(ctx context.Context) (*domain.Export, error)
	Import(ctx context.Context, data *domain.Export) error
}

// MetadataFetcher wraps the metadata extractor
type MetadataFetcher interface {
	Fetch(ctx context.Context, rawURL string) (*domain.Metadata, error)
}

// CountryLocator resolves a client IP to an ISO country code
type CountryLocator interface {
	Country(ip string) (string, bool)
}

// ClickRecorder records clicks without blocking the caller
type ClickRecorder interface {
	Record(linkID, referrer, userAgent, ip string)
}
