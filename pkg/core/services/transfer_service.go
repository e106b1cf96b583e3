package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hkunkun/hkun-links/pkg/core/domain"
	"github.com/hkunkun/hkun-links/pkg/core/metadata"
	"github.com/hkunkun/hkun-links/pkg/ports"
)

type TransferService struct {
	repo ports.Repository
}

func NewTransferService(repo ports.Repository) *TransferService {
	return &TransferService{repo: repo}
}

// Export dumps every category and live link ordered by sort_order.
func (s *TransferService) Export(ctx context.Context) (*domain.Export, error) {
	categories, links, err := s.repo.Dump(ctx)
	if err != nil {
		return nil, err
	}
	return &domain.Export{
		ExportedAt: time.Now().UTC(),
		Categories: categories,
		Links:      links,
	}, nil
}

// Import upserts categories, then links, in one transaction. A category
// whose slug already exists locally under another id is merged into the
// local one, which is how the sink of another installation lands in ours.
func (s *TransferService) Import(ctx context.Context, data *domain.Export) error {
	if data == nil {
		return fmt.Errorf("%w: empty import", domain.ErrValidation)
	}

	known := make(map[string]string, len(data.Categories)) // imported id -> local id
	categories := make([]domain.Category, 0, len(data.Categories))
	now := time.Now()

	sink, err := s.repo.GetCategoryBySlug(ctx, domain.SinkSlug)
	if err != nil {
		return err
	}

	for _, c := range data.Categories {
		if c.ID == "" || strings.TrimSpace(c.Name) == "" || !slugPattern.MatchString(c.Slug) {
			return fmt.Errorf("%w: category %q is incomplete", domain.ErrValidation, c.Name)
		}
		if sink != nil && c.ID == sink.ID && c.Slug != domain.SinkSlug {
			return fmt.Errorf("%w: %w", domain.ErrValidation, domain.ErrSinkCategory)
		}
		local, err := s.repo.GetCategoryBySlug(ctx, c.Slug)
		if err != nil {
			return err
		}
		if local != nil && local.ID != c.ID {
			known[c.ID] = local.ID
			c.ID = local.ID
		} else {
			known[c.ID] = c.ID
		}
		fillTimes(&c.CreatedAt, &c.UpdatedAt, now)
		c.Links = nil
		categories = append(categories, c)
	}

	links := make([]domain.Link, 0, len(data.Links))
	for _, l := range data.Links {
		if l.ID == "" || strings.TrimSpace(l.Title) == "" {
			return fmt.Errorf("%w: link %q is incomplete", domain.ErrValidation, l.ID)
		}
		if _, err := metadata.ValidateURL(l.URL); err != nil {
			return err
		}

		if id, ok := known[l.CategoryID]; ok {
			l.CategoryID = id
		} else {
			existing, err := s.repo.GetCategory(ctx, l.CategoryID)
			if err != nil {
				return err
			}
			if existing == nil {
				return fmt.Errorf("%w: link %s references unknown category %s", domain.ErrValidation, l.ID, l.CategoryID)
			}
		}
		fillTimes(&l.CreatedAt, &l.UpdatedAt, now)
		links = append(links, l)
	}

	return s.repo.Restore(ctx, categories, links)
}

func fillTimes(created, updated *time.Time, now time.Time) {
	if created.IsZero() {
		*created = now
	}
	if updated.IsZero() {
		*updated = *created
	}
}
