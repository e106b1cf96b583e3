package sqlite

import (
	"context"

	"github.com/hkunkun/hkun-links/pkg/core/domain"
)

func (r *SQLiteRepository) GetSiteConfig(ctx context.Context) (domain.SiteConfig, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT key, value FROM site_config`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cfg := domain.SiteConfig{}
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		cfg[key] = value
	}
	return cfg, rows.Err()
}

func (r *SQLiteRepository) UpsertSiteConfig(ctx context.Context, values domain.SiteConfig) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for key, value := range values {
		_, err := tx.ExecContext(ctx, `INSERT INTO site_config (key, value) VALUES (?, ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}
