package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/hkunkun/hkun-links/pkg/core/domain"
	"github.com/hkunkun/hkun-links/pkg/ports"
)

type SiteConfigService struct {
	repo ports.SiteConfigRepository
}

func NewSiteConfigService(repo ports.SiteConfigRepository) *SiteConfigService {
	return &SiteConfigService{repo: repo}
}

func (s *SiteConfigService) GetSiteConfig(ctx context.Context) (domain.SiteConfig, error) {
	return s.repo.GetSiteConfig(ctx)
}

// UpdateSiteConfig upserts values and returns the full configuration.
// Values are stored verbatim.
func (s *SiteConfigService) UpdateSiteConfig(ctx context.Context, values domain.SiteConfig) (domain.SiteConfig, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("%w: no values given", domain.ErrValidation)
	}
	clean := make(domain.SiteConfig, len(values))
	for k, v := range values {
		k = strings.TrimSpace(k)
		if k == "" {
			return nil, fmt.Errorf("%w: empty config key", domain.ErrValidation)
		}
		clean[k] = v
	}

	if err := s.repo.UpsertSiteConfig(ctx, clean); err != nil {
		return nil, err
	}
	return s.repo.GetSiteConfig(ctx)
}
