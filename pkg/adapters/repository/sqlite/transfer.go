package sqlite

import (
	"context"

	"github.com/hkunkun/hkun-links/pkg/core/domain"
)

// Dump returns every category and live link ordered by sort_order.
func (r *SQLiteRepository) Dump(ctx context.Context) ([]domain.Category, []domain.Link, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+categoryColumns+` FROM categories ORDER BY sort_order ASC, created_at ASC`)
	if err != nil {
		return nil, nil, err
	}
	categories := []domain.Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			rows.Close()
			return nil, nil, err
		}
		categories = append(categories, *c)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	links, err := r.ListLinks(ctx, domain.LinkFilter{SortByOrder: true})
	if err != nil {
		return nil, nil, err
	}
	return categories, links, nil
}

// Restore upserts categories first, then links, in one transaction.
func (r *SQLiteRepository) Restore(ctx context.Context, categories []domain.Category, links []domain.Link) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, c := range categories {
		_, err := tx.ExecContext(ctx, `INSERT INTO categories (`+categoryColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET name = excluded.name, slug = excluded.slug, icon = excluded.icon,
			sort_order = excluded.sort_order, updated_at = excluded.updated_at`,
			c.ID, c.Name, c.Slug, c.Icon, c.SortOrder, formatTime(c.CreatedAt), formatTime(c.UpdatedAt))
		if err != nil {
			return err
		}
	}
	if err := settleSink(ctx, tx); err != nil {
		return err
	}

	for _, l := range links {
		tagsJSON, err := marshalTags(l.Tags)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `INSERT INTO links (id, category_id, title, description, url, thumbnail_url,
			favicon_url, tags, sort_order, is_favorite, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET category_id = excluded.category_id, title = excluded.title,
			description = excluded.description, url = excluded.url, thumbnail_url = excluded.thumbnail_url,
			favicon_url = excluded.favicon_url, tags = excluded.tags, sort_order = excluded.sort_order,
			is_favorite = excluded.is_favorite, updated_at = excluded.updated_at, deleted_at = NULL`,
			l.ID, l.CategoryID, l.Title, l.Description, l.URL, l.ThumbnailURL, l.FaviconURL, tagsJSON,
			l.SortOrder, l.IsFavorite, formatTime(l.CreatedAt), formatTime(l.UpdatedAt))
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}
