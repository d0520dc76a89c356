package sqlite

import (
	"context"
	"fmt"

	"github.com/rs/xid"

	"github.com/sakif/health-diary/internal/model"
	"github.com/sakif/health-diary/internal/repository"
)

var _ repository.RecommendationRepository = (*DB)(nil)

// SaveRecommendation stores r with a fresh xid and the current time.
func (db *DB) SaveRecommendation(ctx context.Context, r *model.Recommendation) error {
	r.ID = xid.New().String()
	r.CreatedAt = model.NewTimestamp(db.now())

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO recommendations (id, user_id, recommendation, created_at)
		 VALUES (?, ?, ?, ?)`,
		r.ID, r.UserID, r.Recommendation, formatTime(r.CreatedAt.Time),
	)
	if err != nil {
		return fmt.Errorf("sqlite: saving recommendation for %s: %w", r.UserID, err)
	}
	return nil
}

// ListRecommendations returns up to opts.Limit items (default 5), newest first.
func (db *DB) ListRecommendations(ctx context.Context, userID string, opts repository.ListOptions) ([]model.Recommendation, error) {
	limit, offset := pageBounds(opts.Limit, opts.Offset, 5)

	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, user_id, recommendation, created_at
		 FROM recommendations
		 WHERE user_id = ?
		 ORDER BY created_at DESC, id DESC
		 LIMIT ? OFFSET ?`,
		userID, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing recommendations of %s: %w", userID, err)
	}
	defer rows.Close()

	recs := make([]model.Recommendation, 0, limit)
	for rows.Next() {
		var (
			r       model.Recommendation
			created string
		)
		if err := rows.Scan(&r.ID, &r.UserID, &r.Recommendation, &created); err != nil {
			return nil, fmt.Errorf("sqlite: scanning recommendation row: %w", err)
		}
		t, err := parseTime(created)
		if err != nil {
			return nil, fmt.Errorf("sqlite: parsing recommendation time: %w", err)
		}
		r.CreatedAt = model.NewTimestamp(t)
		recs = append(recs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating recommendation rows: %w", err)
	}
	return recs, nil
}
