package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hkunkun/hkun-links/pkg/core/domain"
	"github.com/hkunkun/hkun-links/pkg/core/metadata"
	"github.com/hkunkun/hkun-links/pkg/core/reorder"
	"github.com/hkunkun/hkun-links/pkg/ports"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
	searchLimit     = 50
)

type LinkService struct {
	repo       ports.LinkRepository
	categories ports.CategoryRepository
}

func NewLinkService(repo ports.LinkRepository, categories ports.CategoryRepository) *LinkService {
	return &LinkService{repo: repo, categories: categories}
}

// CreateLink appends a new link to the end of its category. An empty
// category id files it under the sink.
func (s *LinkService) CreateLink(ctx context.Context, input domain.LinkInput) (*domain.Link, error) {
	if input.Title == nil || strings.TrimSpace(*input.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", domain.ErrValidation)
	}
	if input.URL == nil {
		return nil, fmt.Errorf("%w: url is required", domain.ErrValidation)
	}
	u, err := metadata.ValidateURL(*input.URL)
	if err != nil {
		return nil, err
	}

	categoryID := ""
	if input.CategoryID != nil {
		categoryID = *input.CategoryID
	}
	category, err := s.resolveCategory(ctx, categoryID)
	if err != nil {
		return nil, err
	}

	order, err := s.repo.NextLinkOrder(ctx, category.ID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	link := &domain.Link{
		CategoryID:   category.ID,
		Title:        strings.TrimSpace(*input.Title),
		Description:  optional(input.Description),
		URL:          u.String(),
		ThumbnailURL: optional(input.ThumbnailURL),
		FaviconURL:   optional(input.FaviconURL),
		Tags:         cleanTags(input.Tags),
		SortOrder:    order,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if input.IsFavorite != nil {
		link.IsFavorite = *input.IsFavorite
	}

	if err := s.repo.CreateLink(ctx, link); err != nil {
		return nil, err
	}
	return link, nil
}

func (s *LinkService) GetLink(ctx context.Context, id string) (*domain.Link, error) {
	link, err := s.repo.GetLink(ctx, id)
	if err != nil {
		return nil, err
	}
	if link == nil {
		return nil, fmt.Errorf("link %s: %w", id, domain.ErrNotFound)
	}
	return link, nil
}

// UpdateLink applies the non-nil fields of input. Changing the category
// moves the link to the end of the new one.
func (s *LinkService) UpdateLink(ctx context.Context, id string, input domain.LinkInput) (*domain.Link, error) {
	link, err := s.GetLink(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, fmt.Errorf("%w: title is required", domain.ErrValidation)
		}
		link.Title = title
	}
	if input.URL != nil {
		u, err := metadata.ValidateURL(*input.URL)
		if err != nil {
			return nil, err
		}
		link.URL = u.String()
	}
	if input.Description != nil {
		link.Description = optional(input.Description)
	}
	if input.ThumbnailURL != nil {
		link.ThumbnailURL = optional(input.ThumbnailURL)
	}
	if input.FaviconURL != nil {
		link.FaviconURL = optional(input.FaviconURL)
	}
	if input.Tags != nil {
		link.Tags = cleanTags(input.Tags)
	}
	if input.IsFavorite != nil {
		link.IsFavorite = *input.IsFavorite
	}

	if input.CategoryID != nil && *input.CategoryID != link.CategoryID {
		category, err := s.resolveCategory(ctx, *input.CategoryID)
		if err != nil {
			return nil, err
		}
		if category.ID != link.CategoryID {
			order, err := s.repo.NextLinkOrder(ctx, category.ID)
			if err != nil {
				return nil, err
			}
			link.CategoryID = category.ID
			link.SortOrder = order
		}
	}

	link.UpdatedAt = time.Now()
	if err := s.repo.UpdateLink(ctx, link); err != nil {
		return nil, err
	}
	return link, nil
}

func (s *LinkService) MoveLink(ctx context.Context, id, categoryID string) (*domain.Link, error) {
	if categoryID == "" {
		return nil, fmt.Errorf("%w: category_id is required", domain.ErrValidation)
	}
	return s.UpdateLink(ctx, id, domain.LinkInput{CategoryID: &categoryID})
}

func (s *LinkService) ToggleFavorite(ctx context.Context, id string) (*domain.Link, error) {
	link, err := s.GetLink(ctx, id)
	if err != nil {
		return nil, err
	}
	favorite := !link.IsFavorite
	return s.UpdateLink(ctx, id, domain.LinkInput{IsFavorite: &favorite})
}

func (s *LinkService) DeleteLink(ctx context.Context, id string) error {
	n, err := s.repo.DeleteLinks(ctx, []string{id}, time.Now())
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("link %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// DeleteLinks removes several links at once and reports how many existed.
func (s *LinkService) DeleteLinks(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, fmt.Errorf("%w: no link ids given", domain.ErrValidation)
	}
	return s.repo.DeleteLinks(ctx, ids, time.Now())
}

func (s *LinkService) ListLinks(ctx context.Context, filter domain.LinkFilter, page, limit int) ([]domain.Link, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	filter.Limit = limit
	filter.Offset = (page - 1) * limit

	links, err := s.repo.ListLinks(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	count, err := s.repo.CountLinks(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	return links, count, nil
}

// Search matches query against titles and descriptions.
func (s *LinkService) Search(ctx context.Context, query string) ([]domain.Link, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []domain.Link{}, nil
	}
	return s.repo.ListLinks(ctx, domain.LinkFilter{Search: query, SortByOrder: true, Limit: searchLimit})
}

// ReorderLinks persists orderedIDs as the new order of the category's links.
// It must be an exact permutation of the links currently in the category.
func (s *LinkService) ReorderLinks(ctx context.Context, categoryID string, orderedIDs []string) error {
	category, err := s.categories.GetCategory(ctx, categoryID)
	if err != nil {
		return err
	}
	if category == nil {
		return fmt.Errorf("category %s: %w", categoryID, domain.ErrNotFound)
	}

	links, err := s.repo.CategoryLinks(ctx, categoryID)
	if err != nil {
		return err
	}
	current := make(map[string]int, len(links))
	members := make([]string, len(links))
	for i, l := range links {
		current[l.ID] = l.SortOrder
		members[i] = l.ID
	}

	if !reorder.IsPermutation(members, orderedIDs) {
		return fmt.Errorf("%w: order must list every link of the category exactly once", domain.ErrValidation)
	}

	changed := reorder.Diff(current, reorder.Assign(orderedIDs))
	return s.repo.ReorderLinks(ctx, categoryID, changed, time.Now())
}

func (s *LinkService) resolveCategory(ctx context.Context, id string) (*domain.Category, error) {
	var (
		category *domain.Category
		err      error
	)
	if id == "" {
		category, err = s.categories.GetCategoryBySlug(ctx, domain.SinkSlug)
	} else {
		category, err = s.categories.GetCategory(ctx, id)
	}
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, fmt.Errorf("%w: category %q does not exist", domain.ErrValidation, id)
	}
	return category, nil
}

// optional turns blank strings into nil.
func optional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func cleanTags(tags []string) []string {
	if tags == nil {
		return nil
	}
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
