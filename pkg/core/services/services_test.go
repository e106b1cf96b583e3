package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/hkunkun/hkun-links/pkg/adapters/repository/sqlite"
	"github.com/hkunkun/hkun-links/pkg/core/domain"
)

func newRepo(t *testing.T) *sqlite.SQLiteRepository {
	t.Helper()
	repo, err := sqlite.NewSQLiteRepository("file:" + uuid.NewString() + "?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func str(s string) *string { return &s }

func newLink(t *testing.T, s *LinkService, categoryID, title string) *domain.Link {
	t.Helper()
	l, err := s.CreateLink(context.Background(), domain.LinkInput{
		CategoryID: str(categoryID),
		Title:      str(title),
		URL:        str("https://example.com/" + title),
	})
	require.NoError(t, err)
	return l
}

func linkTitles(links []domain.Link) []string {
	out := make([]string, len(links))
	for i, l := range links {
		out[i] = l.Title
	}
	return out
}
