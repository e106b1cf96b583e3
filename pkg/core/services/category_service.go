package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/hkunkun/hkun-links/pkg/core/domain"
	"github.com/hkunkun/hkun-links/pkg/core/reorder"
	"github.com/hkunkun/hkun-links/pkg/ports"
)

var (
	slugPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)
	slugInvalid = regexp.MustCompile(`[^a-z0-9]+`)
)

// Slugify lowercases s and joins its alphanumeric runs with dashes.
func Slugify(s string) string {
	s = slugInvalid.ReplaceAllString(strings.ToLower(strings.TrimSpace(s)), "-")
	return strings.Trim(s, "-")
}

func normalizeSlug(name, slug string) (string, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		slug = Slugify(name)
	}
	if !slugPattern.MatchString(slug) {
		return "", fmt.Errorf("%w: slug %q must be lowercase letters, digits and dashes", domain.ErrValidation, slug)
	}
	return slug, nil
}

type CategoryService struct {
	repo  ports.CategoryRepository
	links ports.LinkRepository
}

func NewCategoryService(repo ports.CategoryRepository, links ports.LinkRepository) *CategoryService {
	return &CategoryService{repo: repo, links: links}
}

func (s *CategoryService) CreateCategory(ctx context.Context, name, slug, icon string) (*domain.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	slug, err := normalizeSlug(name, slug)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.GetCategoryBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: slug %q", domain.ErrConflict, slug)
	}

	order, err := s.repo.NextCategoryOrder(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	category := &domain.Category{
		Name:      name,
		Slug:      slug,
		Icon:      strings.TrimSpace(icon),
		SortOrder: order,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.CreateCategory(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *CategoryService) GetCategory(ctx context.Context, id string) (*domain.Category, error) {
	category, err := s.repo.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, fmt.Errorf("category %s: %w", id, domain.ErrNotFound)
	}
	return category, nil
}

// GetCategoryBySlug returns the category with its links in display order.
func (s *CategoryService) GetCategoryBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	category, err := s.repo.GetCategoryBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, fmt.Errorf("category %q: %w", slug, domain.ErrNotFound)
	}

	links, err := s.links.CategoryLinks(ctx, category.ID)
	if err != nil {
		return nil, err
	}
	category.Links = links
	return category, nil
}

// UpdateCategory changes the non-empty fields. The sink keeps its slug.
func (s *CategoryService) UpdateCategory(ctx context.Context, id, name, slug, icon string) (*domain.Category, error) {
	category, err := s.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}

	if name = strings.TrimSpace(name); name != "" {
		category.Name = name
	}
	if icon = strings.TrimSpace(icon); icon != "" {
		category.Icon = icon
	}

	if slug = strings.TrimSpace(slug); slug != "" && slug != category.Slug {
		if category.IsSink() {
			return nil, fmt.Errorf("%w: %w", domain.ErrValidation, domain.ErrSinkCategory)
		}
		if slug, err = normalizeSlug(category.Name, slug); err != nil {
			return nil, err
		}
		existing, err := s.repo.GetCategoryBySlug(ctx, slug)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, fmt.Errorf("%w: slug %q", domain.ErrConflict, slug)
		}
		category.Slug = slug
	}

	category.UpdatedAt = time.Now()
	if err := s.repo.UpdateCategory(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

// DeleteCategory moves the category's links to the end of the sink and
// deletes it. The sink itself can never be deleted.
func (s *CategoryService) DeleteCategory(ctx context.Context, id string) (*domain.Category, error) {
	category, err := s.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}
	if category.IsSink() {
		return nil, domain.ErrSinkCategory
	}
	return s.repo.DeleteCategoryMovingLinks(ctx, id, time.Now())
}

// ListCategories returns categories by sort_order, sink last. withLinks also
// loads every category's links in display order.
func (s *CategoryService) ListCategories(ctx context.Context, withLinks bool) ([]domain.Category, error) {
	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	if !withLinks {
		return categories, nil
	}

	links, err := s.links.ListLinks(ctx, domain.LinkFilter{SortByOrder: true})
	if err != nil {
		return nil, err
	}
	byCategory := make(map[string][]domain.Link, len(categories))
	for _, l := range links {
		byCategory[l.CategoryID] = append(byCategory[l.CategoryID], l)
	}
	for i := range categories {
		categories[i].Links = byCategory[categories[i].ID]
	}
	return categories, nil
}

// ReorderCategories persists orderedIDs as the new category order. It must
// be an exact permutation of the non-sink categories.
func (s *CategoryService) ReorderCategories(ctx context.Context, orderedIDs []string) error {
	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return err
	}

	current := make(map[string]int, len(categories))
	members := make([]string, 0, len(categories))
	for _, c := range categories {
		if c.IsSink() {
			for _, id := range orderedIDs {
				if id == c.ID {
					return fmt.Errorf("%w: %w", domain.ErrValidation, domain.ErrSinkCategory)
				}
			}
			continue
		}
		current[c.ID] = c.SortOrder
		members = append(members, c.ID)
	}

	if !reorder.IsPermutation(members, orderedIDs) {
		return fmt.Errorf("%w: order must list every category exactly once", domain.ErrValidation)
	}

	changed := reorder.Diff(current, reorder.Assign(orderedIDs))
	return s.repo.ReorderCategories(ctx, changed, time.Now())
}
