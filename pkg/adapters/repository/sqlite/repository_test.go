package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hkunkun/hkun-links/pkg/core/domain"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository("file:" + uuid.NewString() + "?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func seedCategory(t *testing.T, repo *SQLiteRepository, slug string, order int) *domain.Category {
	t.Helper()
	now := time.Now()
	c := &domain.Category{Name: slug, Slug: slug, Icon: "folder", SortOrder: order, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, repo.CreateCategory(context.Background(), c))
	return c
}

func seedLink(t *testing.T, repo *SQLiteRepository, categoryID, title string, order int) *domain.Link {
	t.Helper()
	now := time.Now()
	l := &domain.Link{CategoryID: categoryID, Title: title, URL: "https://example.com/" + title,
		Tags: []string{"go"}, SortOrder: order, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, repo.CreateLink(context.Background(), l))
	return l
}

func titles(links []domain.Link) []string {
	out := make([]string, len(links))
	for i, l := range links {
		out[i] = l.Title
	}
	return out
}

func TestMigrateSeedsSink(t *testing.T) {
	repo := newTestRepo(t)
	sink, err := repo.GetCategoryBySlug(context.Background(), domain.SinkSlug)
	require.NoError(t, err)
	require.NotNil(t, sink)
	assert.True(t, sink.IsSink())
	assert.False(t, sink.CreatedAt.IsZero())
}

func TestListCategoriesPutsSinkLast(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	seedCategory(t, repo, "work", 1)
	seedCategory(t, repo, "fun", 0)

	categories, err := repo.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, categories, 3)
	assert.Equal(t, "fun", categories[0].Slug)
	assert.Equal(t, "work", categories[1].Slug)
	assert.Equal(t, domain.SinkSlug, categories[2].Slug)

	next, err := repo.NextCategoryOrder(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, next)
}

func TestSinkOrderStaysUnique(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	sinkOrder := func() int {
		t.Helper()
		sink, err := repo.GetCategoryBySlug(ctx, domain.SinkSlug)
		require.NoError(t, err)
		return sink.SortOrder
	}
	assert.Equal(t, 0, sinkOrder(), "alone it starts the sequence")

	a := seedCategory(t, repo, "a", 0)
	b := seedCategory(t, repo, "b", 1)
	assert.Equal(t, 2, sinkOrder())

	require.NoError(t, repo.ReorderCategories(ctx, []domain.Position{
		{ID: b.ID, SortOrder: 0},
		{ID: a.ID, SortOrder: 1},
	}, time.Now()))
	assert.Equal(t, 2, sinkOrder())

	_, err := repo.DeleteCategoryMovingLinks(ctx, b.ID, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 2, sinkOrder())

	seen := map[int]string{}
	categories, err := repo.ListCategories(ctx)
	require.NoError(t, err)
	for _, c := range categories {
		prev, dup := seen[c.SortOrder]
		assert.False(t, dup, "%s shares sort_order %d with %s", c.Slug, c.SortOrder, prev)
		seen[c.SortOrder] = c.Slug
	}
}

func TestDeleteCategoryMovesLinksToSink(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	sink, err := repo.GetCategoryBySlug(ctx, domain.SinkSlug)
	require.NoError(t, err)

	seedLink(t, repo, sink.ID, "already-there", 0)
	doomed := seedCategory(t, repo, "doomed", 0)
	seedLink(t, repo, doomed.ID, "second", 1)
	seedLink(t, repo, doomed.ID, "first", 0)

	got, err := repo.DeleteCategoryMovingLinks(ctx, doomed.ID, time.Now())
	require.NoError(t, err)
	assert.Equal(t, sink.ID, got.ID)

	deleted, err := repo.GetCategory(ctx, doomed.ID)
	require.NoError(t, err)
	assert.Nil(t, deleted)

	links, err := repo.CategoryLinks(ctx, sink.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"already-there", "first", "second"}, titles(links))
	for i, l := range links {
		assert.Equal(t, i, l.SortOrder)
	}

	_, err = repo.DeleteCategoryMovingLinks(ctx, sink.ID, time.Now())
	assert.ErrorIs(t, err, domain.ErrSinkCategory)

	_, err = repo.DeleteCategoryMovingLinks(ctx, "missing", time.Now())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestReorderLinksIsAtomic(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	cat := seedCategory(t, repo, "cat", 0)
	other := seedCategory(t, repo, "other", 1)
	a := seedLink(t, repo, cat.ID, "a", 0)
	b := seedLink(t, repo, cat.ID, "b", 1)
	stranger := seedLink(t, repo, other.ID, "x", 0)

	err := repo.ReorderLinks(ctx, cat.ID, []domain.Position{
		{ID: b.ID, SortOrder: 0},
		{ID: stranger.ID, SortOrder: 1},
	}, time.Now())
	assert.ErrorIs(t, err, domain.ErrNotFound)

	links, err := repo.CategoryLinks(ctx, cat.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, titles(links), "failed batch must roll back")

	require.NoError(t, repo.ReorderLinks(ctx, cat.ID, []domain.Position{
		{ID: b.ID, SortOrder: 0},
		{ID: a.ID, SortOrder: 1},
	}, time.Now()))
	links, err = repo.CategoryLinks(ctx, cat.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, titles(links))
}

func TestLinkCRUD(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	cat := seedCategory(t, repo, "cat", 0)
	l := seedLink(t, repo, cat.ID, "golang", 0)

	got, err := repo.GetLink(ctx, l.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, []string{"go"}, got.Tags)
	assert.Nil(t, got.Description)
	assert.False(t, got.IsFavorite)

	desc := "The Go site"
	got.Description = &desc
	got.IsFavorite = true
	got.UpdatedAt = time.Now()
	require.NoError(t, repo.UpdateLink(ctx, got))

	fav := true
	links, err := repo.ListLinks(ctx, domain.LinkFilter{Favorite: &fav, Search: "Go site"})
	require.NoError(t, err)
	require.Len(t, links, 1)
	assert.Equal(t, "The Go site", *links[0].Description)

	count, err := repo.CountLinks(ctx, domain.LinkFilter{Tag: "go"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	n, err := repo.DeleteLinks(ctx, []string{l.ID, "missing"}, time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	got, err = repo.GetLink(ctx, l.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestClickStats(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	cat := seedCategory(t, repo, "cat", 0)
	l := seedLink(t, repo, cat.ID, "a", 0)
	seedLink(t, repo, cat.ID, "b", 1)

	ref := "https://news.example.com"
	ua := "curl/8.0"
	yesterday := time.Now().Add(-24 * time.Hour)
	for i, at := range []time.Time{time.Now(), time.Now(), yesterday} {
		ev := &domain.ClickEvent{LinkID: l.ID, ClickedAt: at, UserAgent: &ua}
		if i == 0 {
			ev.Referrer = &ref
		}
		require.NoError(t, repo.RecordClick(ctx, ev))
	}

	stats, err := repo.GetLinkStats(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.TotalClicks)
	assert.Equal(t, int64(1), stats.Referrers[ref])
	assert.Equal(t, int64(2), stats.Referrers["Direct"])
	assert.Len(t, stats.DailyClicks, 2)

	uas, err := repo.UserAgentCounts(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"curl/8.0": 3}, uas)

	total, err := repo.CountClicks(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)

	since := time.Now().Add(-time.Hour)
	recent, err := repo.CountClicks(ctx, &since)
	require.NoError(t, err)
	assert.Equal(t, int64(2), recent)

	top, err := repo.TopLinks(ctx, 5)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "a", top[0].Title)
	assert.Equal(t, int64(3), top[0].Clicks)
}

func TestSiteConfigUpsert(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.UpsertSiteConfig(ctx, domain.SiteConfig{domain.ConfigSiteTitle: "Links"}))
	require.NoError(t, repo.UpsertSiteConfig(ctx, domain.SiteConfig{
		domain.ConfigSiteTitle: "My Links",
		domain.ConfigLogoURL:   "/logo.png",
	}))

	cfg, err := repo.GetSiteConfig(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.SiteConfig{"site_title": "My Links", "logo_url": "/logo.png"}, cfg)
}

func TestDumpRestore(t *testing.T) {
	src := newTestRepo(t)
	ctx := context.Background()
	cat := seedCategory(t, src, "cat", 0)
	seedLink(t, src, cat.ID, "a", 0)

	categories, links, err := src.Dump(ctx)
	require.NoError(t, err)
	assert.Len(t, categories, 2)
	require.Len(t, links, 1)

	dst := newTestRepo(t)
	var portable []domain.Category
	for _, c := range categories {
		if !c.IsSink() {
			portable = append(portable, c)
		}
	}
	require.NoError(t, dst.Restore(ctx, portable, links))
	require.NoError(t, dst.Restore(ctx, portable, links), "restore must be an upsert")

	got, err := dst.CategoryLinks(ctx, cat.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, titles(got))
}

func TestSearchMatchesWildcardsLiterally(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	cat := seedCategory(t, repo, "cat", 0)
	seedLink(t, repo, cat.ID, "100%_done", 0)
	seedLink(t, repo, cat.ID, "1000 done", 1)
	seedLink(t, repo, cat.ID, `back\slash`, 2)

	for _, tt := range []struct {
		query string
		want  []string
	}{
		{"0%", []string{"100%_done"}},
		{"%_d", []string{"100%_done"}},
		{"_", []string{"100%_done"}},
		{`\s`, []string{`back\slash`}},
		{"done", []string{"100%_done", "1000 done"}},
	} {
		got, err := repo.ListLinks(ctx, domain.LinkFilter{Search: tt.query, SortByOrder: true})
		require.NoError(t, err)
		assert.Equal(t, tt.want, titles(got), "query %q", tt.query)
	}
}

func TestUnreadableTagsFailTheRead(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	cat := seedCategory(t, repo, "cat", 0)
	l := seedLink(t, repo, cat.ID, "a", 0)

	_, err := repo.db.ExecContext(ctx, `UPDATE links SET tags = 'not json' WHERE id = ?`, l.ID)
	require.NoError(t, err)

	_, err = repo.GetLink(ctx, l.ID)
	assert.ErrorContains(t, err, "decode tags")
}
