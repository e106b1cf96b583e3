package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hkunkun/hkun-links/pkg/core/domain"
)

const categoryColumns = `id, name, slug, icon, sort_order, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCategory(row rowScanner) (*domain.Category, error) {
	var c domain.Category
	err := row.Scan(&c.ID, &c.Name, &c.Slug, &c.Icon, &c.SortOrder, scanTime(&c.CreatedAt), scanTime(&c.UpdatedAt))
	if err != nil {
		return nil, err
	}
	return &c, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// settleSink puts the sink right after the highest user category so every
// sort_order in the table stays unique.
func settleSink(ctx context.Context, db execer) error {
	_, err := db.ExecContext(ctx, `UPDATE categories
		SET sort_order = (SELECT COALESCE(MAX(sort_order), -1) + 1 FROM categories WHERE slug != ?)
		WHERE slug = ?`, domain.SinkSlug, domain.SinkSlug)
	return err
}

func (r *SQLiteRepository) CreateCategory(ctx context.Context, category *domain.Category) error {
	if category.ID == "" {
		category.ID = uuid.NewString()
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `INSERT INTO categories (` + categoryColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err = tx.ExecContext(ctx, query, category.ID, category.Name, category.Slug, category.Icon,
		category.SortOrder, formatTime(category.CreatedAt), formatTime(category.UpdatedAt))
	if err != nil {
		return err
	}
	if !category.IsSink() {
		if err := settleSink(ctx, tx); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *SQLiteRepository) GetCategory(ctx context.Context, id string) (*domain.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE id = ?`
	c, err := scanCategory(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return c, err
}

func (r *SQLiteRepository) GetCategoryBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE slug = ?`
	c, err := scanCategory(r.db.QueryRowContext(ctx, query, slug))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return c, err
}

func (r *SQLiteRepository) UpdateCategory(ctx context.Context, category *domain.Category) error {
	query := `UPDATE categories SET name = ?, slug = ?, icon = ?, updated_at = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query, category.Name, category.Slug, category.Icon, formatTime(category.UpdatedAt), category.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListCategories orders by sort_order and always puts the sink last.
func (r *SQLiteRepository) ListCategories(ctx context.Context) ([]domain.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories
			  ORDER BY (slug = ?) ASC, sort_order ASC, created_at ASC`
	rows, err := r.db.QueryContext(ctx, query, domain.SinkSlug)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []domain.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, *c)
	}
	return categories, rows.Err()
}

func (r *SQLiteRepository) NextCategoryOrder(ctx context.Context) (int, error) {
	var next int
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(sort_order), -1) + 1 FROM categories WHERE slug != ?`, domain.SinkSlug).Scan(&next)
	return next, err
}

func (r *SQLiteRepository) DeleteCategoryMovingLinks(ctx context.Context, id string, at time.Time) (*domain.Category, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	now := formatTime(at)

	// 1. Make sure the sink exists
	_, err = tx.ExecContext(ctx, `INSERT OR IGNORE INTO categories (`+categoryColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		uuid.NewString(), "Uncategorized", domain.SinkSlug, "inbox", 0, now, now)
	if err != nil {
		return nil, err
	}
	if err := settleSink(ctx, tx); err != nil {
		return nil, err
	}
	sink, err := scanCategory(tx.QueryRowContext(ctx, `SELECT `+categoryColumns+` FROM categories WHERE slug = ?`, domain.SinkSlug))
	if err != nil {
		return nil, fmt.Errorf("load sink: %w", err)
	}
	if sink.ID == id {
		return nil, domain.ErrSinkCategory
	}

	// 2. Append live links to the end of the sink, keeping their order
	var next int
	err = tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(sort_order), -1) + 1 FROM links
		WHERE category_id = ? AND deleted_at IS NULL`, sink.ID).Scan(&next)
	if err != nil {
		return nil, err
	}

	rows, err := tx.QueryContext(ctx, `SELECT id FROM links WHERE category_id = ? AND deleted_at IS NULL
		ORDER BY sort_order ASC, created_at ASC`, id)
	if err != nil {
		return nil, err
	}
	var moving []string
	for rows.Next() {
		var linkID string
		if err := rows.Scan(&linkID); err != nil {
			rows.Close()
			return nil, err
		}
		moving = append(moving, linkID)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i, linkID := range moving {
		_, err := tx.ExecContext(ctx, `UPDATE links SET category_id = ?, sort_order = ?, updated_at = ? WHERE id = ?`,
			sink.ID, next+i, now, linkID)
		if err != nil {
			return nil, err
		}
	}

	// Soft-deleted links keep a valid parent too
	if _, err := tx.ExecContext(ctx, `UPDATE links SET category_id = ? WHERE category_id = ?`, sink.ID, id); err != nil {
		return nil, err
	}

	// 3. Delete the category
	res, err := tx.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, domain.ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return sink, nil
}

// ReorderCategories writes every position in one transaction and moves the
// sink behind the last of them.
func (r *SQLiteRepository) ReorderCategories(ctx context.Context, positions []domain.Position, at time.Time) error {
	if len(positions) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	err = writePositions(ctx, tx, `UPDATE categories SET sort_order = ?, updated_at = ? WHERE id = ? AND slug != ?`,
		positions, at, domain.SinkSlug)
	if err != nil {
		return err
	}
	if err := settleSink(ctx, tx); err != nil {
		return err
	}
	return tx.Commit()
}

func writePositions(ctx context.Context, tx *sql.Tx, query string, positions []domain.Position, at time.Time, extra ...any) error {
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := formatTime(at)
	for _, p := range positions {
		args := append([]any{p.SortOrder, now, p.ID}, extra...)
		res, err := stmt.ExecContext(ctx, args...)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("%w: %s", domain.ErrNotFound, p.ID)
		}
	}
	return nil
}
