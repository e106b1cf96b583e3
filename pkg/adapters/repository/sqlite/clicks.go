package sqlite

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/hkunkun/hkun-links/pkg/core/domain"
)

func (r *SQLiteRepository) RecordClick(ctx context.Context, event *domain.ClickEvent) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	query := `INSERT INTO click_events (id, link_id, clicked_at, referrer, user_agent, country, ip_hash)
			  VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query, event.ID, event.LinkID, formatTime(event.ClickedAt),
		event.Referrer, event.UserAgent, event.Country, event.IPHash)
	return err
}

func (r *SQLiteRepository) GetLinkStats(ctx context.Context, linkID string) (*domain.LinkStats, error) {
	stats := &domain.LinkStats{
		Referrers:   make(map[string]int64),
		Browsers:    make(map[string]int64),
		Devices:     make(map[string]int64),
		DailyClicks: []domain.DailyClick{},
	}

	// Total Clicks
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM click_events WHERE link_id = ?`, linkID).Scan(&stats.TotalClicks)
	if err != nil {
		return nil, err
	}

	// Referrers
	rows, err := r.db.QueryContext(ctx, `SELECT COALESCE(referrer, ''), COUNT(*) AS c FROM click_events
		WHERE link_id = ? GROUP BY COALESCE(referrer, '') ORDER BY c DESC LIMIT 10`, linkID)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var ref string
		var count int64
		if err := rows.Scan(&ref, &count); err != nil {
			rows.Close()
			return nil, err
		}
		if ref == "" {
			ref = "Direct"
		}
		stats.Referrers[ref] = count
	}
	rows.Close()

	// Daily Clicks (Last 30 days)
	rows2, err := r.db.QueryContext(ctx, `
		SELECT strftime('%Y-%m-%d', clicked_at) AS date, COUNT(*)
		FROM click_events
		WHERE link_id = ?
		GROUP BY date
		ORDER BY date DESC
		LIMIT 30`, linkID)
	if err != nil {
		return nil, err
	}
	defer rows2.Close()
	for rows2.Next() {
		var dc domain.DailyClick
		if err := rows2.Scan(&dc.Date, &dc.Count); err != nil {
			return nil, err
		}
		stats.DailyClicks = append(stats.DailyClicks, dc)
	}

	return stats, rows2.Err()
}

func (r *SQLiteRepository) UserAgentCounts(ctx context.Context, linkID string) (map[string]int64, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT COALESCE(user_agent, ''), COUNT(*) FROM click_events
		WHERE link_id = ? GROUP BY COALESCE(user_agent, '')`, linkID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := map[string]int64{}
	for rows.Next() {
		var ua string
		var count int64
		if err := rows.Scan(&ua, &count); err != nil {
			return nil, err
		}
		counts[ua] = count
	}
	return counts, rows.Err()
}

// CountClicks counts all click events, or those at or after since.
func (r *SQLiteRepository) CountClicks(ctx context.Context, since *time.Time) (int64, error) {
	var count int64
	var err error
	if since == nil {
		err = r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM click_events`).Scan(&count)
	} else {
		err = r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM click_events WHERE clicked_at >= ?`, formatTime(*since)).Scan(&count)
	}
	return count, err
}

func (r *SQLiteRepository) CountCategories(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM categories`).Scan(&count)
	return count, err
}

func (r *SQLiteRepository) RecentLinks(ctx context.Context, limit int) ([]domain.Link, error) {
	return r.ListLinks(ctx, domain.LinkFilter{Limit: limit})
}

func (r *SQLiteRepository) TopLinks(ctx context.Context, limit int) ([]domain.Link, error) {
	query := `SELECT ` + linkColumns + `,
			  (SELECT COUNT(*) FROM click_events c WHERE c.link_id = links.id) AS click_count
			  FROM links
			  WHERE deleted_at IS NULL
			  ORDER BY click_count DESC, sort_order ASC
			  LIMIT ?`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	links := []domain.Link{}
	for rows.Next() {
		var clicks int64
		l, err := scanLink(rows, &clicks)
		if err != nil {
			return nil, err
		}
		l.Clicks = clicks
		links = append(links, *l)
	}
	return links, rows.Err()
}
