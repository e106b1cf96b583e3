package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/mssola/user_agent"
	"golang.org/x/sync/errgroup"

	"github.com/hkunkun/hkun-links/pkg/core/domain"
	"github.com/hkunkun/hkun-links/pkg/ports"
)

const (
	dashboardRecentLinks = 5
	dashboardTopLinks    = 5
)

// HashIP returns a salted, truncated digest of ip. The raw address is never
// stored.
func HashIP(ip, key string) string {
	sum := sha256.Sum256([]byte(ip + key))
	return hex.EncodeToString(sum[:])[:16]
}

type ClickService struct {
	repo    ports.ClickRepository
	links   ports.LinkRepository
	geo     ports.CountryLocator
	hashKey string
}

// NewClickService builds the click service. geo may be nil.
func NewClickService(repo ports.ClickRepository, links ports.LinkRepository, hashKey string, geo ports.CountryLocator) *ClickService {
	return &ClickService{repo: repo, links: links, geo: geo, hashKey: hashKey}
}

func (s *ClickService) RecordClick(ctx context.Context, linkID, referrer, userAgent, ip string) error {
	if linkID == "" {
		return fmt.Errorf("%w: link id is required", domain.ErrValidation)
	}
	link, err := s.links.GetLink(ctx, linkID)
	if err != nil {
		return err
	}
	if link == nil {
		return fmt.Errorf("link %s: %w", linkID, domain.ErrNotFound)
	}

	if ip == "" {
		ip = "unknown"
	}
	hash := HashIP(ip, s.hashKey)
	event := &domain.ClickEvent{
		LinkID:    link.ID,
		ClickedAt: time.Now(),
		Referrer:  nonEmpty(referrer),
		UserAgent: nonEmpty(userAgent),
		IPHash:    &hash,
	}
	if s.geo != nil {
		if country, ok := s.geo.Country(ip); ok {
			event.Country = &country
		}
	}

	return s.repo.RecordClick(ctx, event)
}

// GetLinkStats aggregates the click log of one link.
func (s *ClickService) GetLinkStats(ctx context.Context, linkID string) (*domain.LinkStats, error) {
	link, err := s.links.GetLink(ctx, linkID)
	if err != nil {
		return nil, err
	}
	if link == nil {
		return nil, fmt.Errorf("link %s: %w", linkID, domain.ErrNotFound)
	}

	stats, err := s.repo.GetLinkStats(ctx, linkID)
	if err != nil {
		return nil, err
	}

	agents, err := s.repo.UserAgentCounts(ctx, linkID)
	if err != nil {
		return nil, err
	}
	for raw, count := range agents {
		browser, device := classifyAgent(raw)
		stats.Browsers[browser] += count
		stats.Devices[device] += count
	}
	return stats, nil
}

func classifyAgent(raw string) (browser, device string) {
	if raw == "" {
		return "Unknown", "Unknown"
	}
	ua := user_agent.New(raw)
	browser, _ = ua.Browser()
	if browser == "" {
		browser = "Unknown"
	}

	switch {
	case ua.Bot():
		device = "Bot"
	case ua.Mobile():
		device = "Mobile"
	default:
		device = "Desktop"
	}
	return browser, device
}

// GetDashboard loads the admin overview counters concurrently.
func (s *ClickService) GetDashboard(ctx context.Context) (*domain.Dashboard, error) {
	d := &domain.Dashboard{}
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		d.Categories, err = s.repo.CountCategories(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		d.Links, err = s.links.CountLinks(ctx, domain.LinkFilter{})
		return err
	})
	g.Go(func() error {
		var err error
		d.Clicks, err = s.repo.CountClicks(ctx, nil)
		return err
	})
	g.Go(func() error {
		today := time.Now().UTC().Truncate(24 * time.Hour)
		var err error
		d.ClicksToday, err = s.repo.CountClicks(ctx, &today)
		return err
	})
	g.Go(func() error {
		var err error
		d.RecentLinks, err = s.repo.RecentLinks(ctx, dashboardRecentLinks)
		return err
	})
	g.Go(func() error {
		var err error
		d.TopLinks, err = s.repo.TopLinks(ctx, dashboardTopLinks)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("dashboard: %w", err)
	}
	return d, nil
}

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
