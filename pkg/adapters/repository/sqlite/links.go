package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hkunkun/hkun-links/pkg/core/domain"
)

const linkColumns = `id, category_id, title, description, url, thumbnail_url, favicon_url, tags,
	sort_order, is_favorite, created_at, updated_at, deleted_at`

func scanLink(row rowScanner, extra ...any) (*domain.Link, error) {
	var l domain.Link
	var description, thumbnail, favicon sql.NullString
	var tagsJSON []byte

	dest := []any{
		&l.ID, &l.CategoryID, &l.Title, &description, &l.URL, &thumbnail, &favicon, &tagsJSON,
		&l.SortOrder, &l.IsFavorite, scanTime(&l.CreatedAt), scanTime(&l.UpdatedAt), scanNullTime(&l.DeletedAt),
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}

	l.Description = nullString(description)
	l.ThumbnailURL = nullString(thumbnail)
	l.FaviconURL = nullString(favicon)
	if len(tagsJSON) > 0 {
		if err := json.Unmarshal(tagsJSON, &l.Tags); err != nil {
			return nil, fmt.Errorf("link %s: decode tags: %w", l.ID, err)
		}
	}
	return &l, nil
}

func collectLinks(rows *sql.Rows) ([]domain.Link, error) {
	defer rows.Close()
	links := []domain.Link{}
	for rows.Next() {
		l, err := scanLink(rows)
		if err != nil {
			return nil, err
		}
		links = append(links, *l)
	}
	return links, rows.Err()
}

// marshalTags stores tags as JSON text so json_each can read them.
func marshalTags(tags []string) (any, error) {
	if tags == nil {
		return nil, nil
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (r *SQLiteRepository) CreateLink(ctx context.Context, link *domain.Link) error {
	if link.ID == "" {
		link.ID = uuid.NewString()
	}
	tagsJSON, err := marshalTags(link.Tags)
	if err != nil {
		return err
	}

	query := `INSERT INTO links (id, category_id, title, description, url, thumbnail_url, favicon_url, tags,
			  sort_order, is_favorite, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, query, link.ID, link.CategoryID, link.Title, link.Description, link.URL,
		link.ThumbnailURL, link.FaviconURL, tagsJSON, link.SortOrder, link.IsFavorite,
		formatTime(link.CreatedAt), formatTime(link.UpdatedAt))
	return err
}

func (r *SQLiteRepository) GetLink(ctx context.Context, id string) (*domain.Link, error) {
	query := `SELECT ` + linkColumns + ` FROM links WHERE id = ? AND deleted_at IS NULL`
	l, err := scanLink(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return l, err
}

func (r *SQLiteRepository) UpdateLink(ctx context.Context, link *domain.Link) error {
	tagsJSON, err := marshalTags(link.Tags)
	if err != nil {
		return err
	}

	query := `UPDATE links SET category_id = ?, title = ?, description = ?, url = ?, thumbnail_url = ?,
			  favicon_url = ?, tags = ?, sort_order = ?, is_favorite = ?, updated_at = ?
			  WHERE id = ? AND deleted_at IS NULL`
	res, err := r.db.ExecContext(ctx, query, link.CategoryID, link.Title, link.Description, link.URL,
		link.ThumbnailURL, link.FaviconURL, tagsJSON, link.SortOrder, link.IsFavorite,
		formatTime(link.UpdatedAt), link.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) DeleteLinks(ctx context.Context, ids []string, at time.Time) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	args := []any{formatTime(at)}
	for _, id := range ids {
		args = append(args, id)
	}

	query := `UPDATE links SET deleted_at = ? WHERE deleted_at IS NULL AND id IN (` + placeholders(len(ids)) + `)`
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// likeEscaper makes search input match literally inside a LIKE pattern.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func linkWhere(filter domain.LinkFilter) (string, []any) {
	where := ` WHERE deleted_at IS NULL`
	args := []any{}

	if filter.CategoryID != "" {
		where += ` AND category_id = ?`
		args = append(args, filter.CategoryID)
	}
	if filter.Search != "" {
		pattern := "%" + likeEscaper.Replace(filter.Search) + "%"
		where += ` AND (title LIKE ? ESCAPE '\' OR description LIKE ? ESCAPE '\')`
		args = append(args, pattern, pattern)
	}
	if filter.Tag != "" {
		where += ` AND EXISTS (SELECT 1 FROM json_each(links.tags) WHERE value = ?)`
		args = append(args, filter.Tag)
	}
	if filter.Favorite != nil {
		where += ` AND is_favorite = ?`
		args = append(args, *filter.Favorite)
	}
	return where, args
}

func (r *SQLiteRepository) ListLinks(ctx context.Context, filter domain.LinkFilter) ([]domain.Link, error) {
	where, args := linkWhere(filter)
	query := `SELECT ` + linkColumns + ` FROM links` + where

	if filter.SortByOrder {
		query += ` ORDER BY sort_order ASC, created_at ASC`
	} else {
		query += ` ORDER BY created_at DESC, rowid DESC`
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = -1 // no limit in SQLite
	}
	query += ` LIMIT ? OFFSET ?`
	args = append(args, limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return collectLinks(rows)
}

func (r *SQLiteRepository) CountLinks(ctx context.Context, filter domain.LinkFilter) (int64, error) {
	where, args := linkWhere(filter)
	var count int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM links`+where, args...).Scan(&count)
	return count, err
}

func (r *SQLiteRepository) CategoryLinks(ctx context.Context, categoryID string) ([]domain.Link, error) {
	return r.ListLinks(ctx, domain.LinkFilter{CategoryID: categoryID, SortByOrder: true})
}

func (r *SQLiteRepository) NextLinkOrder(ctx context.Context, categoryID string) (int, error) {
	var next int
	err := r.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(sort_order), -1) + 1 FROM links
		WHERE category_id = ? AND deleted_at IS NULL`, categoryID).Scan(&next)
	return next, err
}

// ReorderLinks writes every position in one transaction. Rows outside the
// category are never touched.
func (r *SQLiteRepository) ReorderLinks(ctx context.Context, categoryID string, positions []domain.Position, at time.Time) error {
	if len(positions) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	err = writePositions(ctx, tx,
		`UPDATE links SET sort_order = ?, updated_at = ? WHERE id = ? AND category_id = ? AND deleted_at IS NULL`,
		positions, at, categoryID)
	if err != nil {
		return err
	}
	return tx.Commit()
}
