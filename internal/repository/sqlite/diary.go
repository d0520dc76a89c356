package sqlite

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/xid"

	"github.com/sakif/health-diary/internal/model"
	"github.com/sakif/health-diary/internal/repository"
)

var _ repository.DiaryRepository = (*DB)(nil)

// AddEntry stores e with a fresh xid and the current time.
// The caller's struct is updated in place.
func (db *DB) AddEntry(ctx context.Context, e *model.DiaryEntry) error {
	e.ID = xid.New().String()
	created := model.NewTimestamp(db.now())
	e.CreatedAt = &created

	meals, err := encodeList(e.Meals)
	if err != nil {
		return fmt.Errorf("sqlite: encoding meals: %w", err)
	}
	conditions, err := encodeList(e.Conditions)
	if err != nil {
		return fmt.Errorf("sqlite: encoding conditions: %w", err)
	}
	activities, err := encodeList(e.Activities)
	if err != nil {
		return fmt.Errorf("sqlite: encoding activities: %w", err)
	}
	extra := "{}"
	if len(e.Extra) > 0 {
		b, err := json.Marshal(e.Extra)
		if err != nil {
			return fmt.Errorf("sqlite: encoding extra fields: %w", err)
		}
		extra = string(b)
	}

	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO diary_entries (id, user_id, date, meals, conditions, activities, notes, extra, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID,
		e.UserID,
		e.Date,
		meals,
		conditions,
		activities,
		e.Notes,
		extra,
		formatTime(created.Time),
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting diary entry for %s: %w", e.UserID, err)
	}
	return nil
}

// ListEntries returns up to opts.Limit entries (default 10), newest first.
func (db *DB) ListEntries(ctx context.Context, userID string, opts repository.ListOptions) ([]model.DiaryEntry, error) {
	limit, offset := pageBounds(opts.Limit, opts.Offset, 10)

	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, user_id, date, meals, conditions, activities, notes, extra, created_at
		 FROM diary_entries
		 WHERE user_id = ?
		 ORDER BY created_at DESC, id DESC
		 LIMIT ? OFFSET ?`,
		userID, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing diary of %s: %w", userID, err)
	}
	defer rows.Close()

	entries := make([]model.DiaryEntry, 0, limit)
	for rows.Next() {
		var (
			e                                    model.DiaryEntry
			meals, conditions, activities, extra string
			created                              string
		)
		if err := rows.Scan(&e.ID, &e.UserID, &e.Date, &meals, &conditions, &activities, &e.Notes, &extra, &created); err != nil {
			return nil, fmt.Errorf("sqlite: scanning diary row: %w", err)
		}
		if err := decodeEntry(&e, meals, conditions, activities, extra, created); err != nil {
			return nil, fmt.Errorf("sqlite: decoding diary entry %s: %w", e.ID, err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating diary rows: %w", err)
	}
	return entries, nil
}

func decodeEntry(e *model.DiaryEntry, meals, conditions, activities, extra, created string) error {
	if err := json.Unmarshal([]byte(meals), &e.Meals); err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(conditions), &e.Conditions); err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(activities), &e.Activities); err != nil {
		return err
	}
	if extra != "" && extra != "{}" {
		if err := json.Unmarshal([]byte(extra), &e.Extra); err != nil {
			return err
		}
	}
	t, err := parseTime(created)
	if err != nil {
		return err
	}
	ts := model.NewTimestamp(t)
	e.CreatedAt = &ts
	return nil
}
