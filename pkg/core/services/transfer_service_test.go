package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hkunkun/hkun-links/pkg/core/domain"
)

func TestExportImportRoundTrip(t *testing.T) {
	src := newRepo(t)
	cats := NewCategoryService(src, src)
	links := NewLinkService(src, src)
	ctx := context.Background()

	work, err := cats.CreateCategory(ctx, "Work", "", "briefcase")
	require.NoError(t, err)
	newLink(t, links, work.ID, "jira")
	newLink(t, links, "", "loose")

	data, err := NewTransferService(src).Export(ctx)
	require.NoError(t, err)
	assert.Len(t, data.Categories, 2)
	assert.Len(t, data.Links, 2)
	assert.False(t, data.ExportedAt.IsZero())

	dst := newRepo(t)
	require.NoError(t, NewTransferService(dst).Import(ctx, data))

	dstCats := NewCategoryService(dst, dst)
	list, err := dstCats.ListCategories(ctx, true)
	require.NoError(t, err)
	require.Len(t, list, 2, "the imported sink merges into the local one")
	assert.Equal(t, "work", list[0].Slug)
	assert.Equal(t, []string{"jira"}, linkTitles(list[0].Links))
	assert.True(t, list[1].IsSink())
	assert.Equal(t, []string{"loose"}, linkTitles(list[1].Links))
}

func TestImportRejectsDanglingLinks(t *testing.T) {
	repo := newRepo(t)
	s := NewTransferService(repo)
	ctx := context.Background()

	err := s.Import(ctx, &domain.Export{Links: []domain.Link{
		{ID: "l1", CategoryID: "ghost", Title: "x", URL: "https://example.com"},
	}})
	assert.ErrorIs(t, err, domain.ErrValidation)

	err = s.Import(ctx, &domain.Export{Categories: []domain.Category{{ID: "c1", Name: "Bad", Slug: "Bad Slug"}}})
	assert.ErrorIs(t, err, domain.ErrValidation)

	assert.ErrorIs(t, s.Import(ctx, nil), domain.ErrValidation)
}

func TestImportKeepsSinkSlug(t *testing.T) {
	repo := newRepo(t)
	cats := NewCategoryService(repo, repo)
	links := NewLinkService(repo, repo)
	ctx := context.Background()

	sink, err := cats.GetCategoryBySlug(ctx, domain.SinkSlug)
	require.NoError(t, err)

	err = NewTransferService(repo).Import(ctx, &domain.Export{Categories: []domain.Category{
		{ID: sink.ID, Name: "Gone", Slug: "gone"},
	}})
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.ErrorIs(t, err, domain.ErrSinkCategory)

	still, err := cats.GetCategoryBySlug(ctx, domain.SinkSlug)
	require.NoError(t, err)
	assert.Equal(t, sink.ID, still.ID)

	link := newLink(t, links, "", "loose")
	assert.Equal(t, sink.ID, link.CategoryID)
}

func TestSiteConfigService(t *testing.T) {
	repo := newRepo(t)
	s := NewSiteConfigService(repo)
	ctx := context.Background()

	cfg, err := s.GetSiteConfig(ctx)
	require.NoError(t, err)
	assert.Empty(t, cfg)

	cfg, err = s.UpdateSiteConfig(ctx, domain.SiteConfig{domain.ConfigSiteTitle: "HKun Links", domain.ConfigLogoURL: ""})
	require.NoError(t, err)
	assert.Equal(t, "HKun Links", cfg[domain.ConfigSiteTitle])
	assert.Contains(t, cfg, domain.ConfigLogoURL)

	_, err = s.UpdateSiteConfig(ctx, domain.SiteConfig{" ": "x"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = s.UpdateSiteConfig(ctx, nil)
	assert.ErrorIs(t, err, domain.ErrValidation)
}
