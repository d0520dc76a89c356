package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/sakif/health-diary/internal/apperror"
	"github.com/sakif/health-diary/internal/model"
	"github.com/sakif/health-diary/internal/repository"
)

// compile-time check that *DB implements repository.UserRepository
var _ repository.UserRepository = (*DB)(nil)

// CreateUser inserts a new profile. The id is the one the user chose, so a
// taken id is a conflict rather than something we can work around.
func (db *DB) CreateUser(ctx context.Context, p *model.Profile) error {
	var exists int
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE user_id = ?`, p.UserID,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("sqlite: looking up user %s: %w", p.UserID, err)
	}
	if exists > 0 {
		return apperror.Conflict("Username already exists")
	}

	allergies, conditions, err := encodeProfileLists(p)
	if err != nil {
		return err
	}

	now := formatTime(db.now())
	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO users (user_id, age, gender, weight, height, allergies, medical_conditions, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.UserID,
		p.Age,
		string(p.Gender),
		nullFloat(p.Weight),
		nullFloat(p.Height),
		allergies,
		conditions,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting user %s: %w", p.UserID, err)
	}
	return nil
}

// GetUser returns the stored profile, or apperror.ErrNotFound.
func (db *DB) GetUser(ctx context.Context, userID string) (*model.Profile, error) {
	var (
		p                     model.Profile
		gender                string
		weight, height        sql.NullFloat64
		allergies, conditions string
	)
	err := db.conn.QueryRowContext(ctx,
		`SELECT user_id, age, gender, weight, height, allergies, medical_conditions
		 FROM users WHERE user_id = ?`,
		userID,
	).Scan(&p.UserID, &p.Age, &gender, &weight, &height, &allergies, &conditions)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFoundMessage("User not found")
		}
		return nil, fmt.Errorf("sqlite: getting user %s: %w", userID, err)
	}

	p.Gender = model.Gender(gender)
	p.Weight = floatPtr(weight)
	p.Height = floatPtr(height)
	if err := json.Unmarshal([]byte(allergies), &p.Allergies); err != nil {
		return nil, fmt.Errorf("sqlite: decoding allergies of %s: %w", userID, err)
	}
	if err := json.Unmarshal([]byte(conditions), &p.MedicalConditions); err != nil {
		return nil, fmt.Errorf("sqlite: decoding medical conditions of %s: %w", userID, err)
	}
	return &p, nil
}

// UpdateUser overwrites every field but the id.
func (db *DB) UpdateUser(ctx context.Context, p *model.Profile) error {
	allergies, conditions, err := encodeProfileLists(p)
	if err != nil {
		return err
	}

	result, err := db.conn.ExecContext(ctx,
		`UPDATE users
		 SET age = ?, gender = ?, weight = ?, height = ?, allergies = ?, medical_conditions = ?, updated_at = ?
		 WHERE user_id = ?`,
		p.Age,
		string(p.Gender),
		nullFloat(p.Weight),
		nullFloat(p.Height),
		allergies,
		conditions,
		formatTime(db.now()),
		p.UserID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating user %s: %w", p.UserID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFoundMessage("User not found")
	}
	return nil
}

// DeleteUser removes the user and everything they own in one transaction.
// The child rows are deleted explicitly; the foreign key pragma is per
// connection and cannot be relied on across the pool.
func (db *DB) DeleteUser(ctx context.Context, userID string) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: starting delete of %s: %w", userID, err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after Commit

	for _, q := range []string{
		`DELETE FROM diary_entries WHERE user_id = ?`,
		`DELETE FROM recommendations WHERE user_id = ?`,
	} {
		if _, err := tx.ExecContext(ctx, q, userID); err != nil {
			return fmt.Errorf("sqlite: deleting data of %s: %w", userID, err)
		}
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM users WHERE user_id = ?`, userID)
	if err != nil {
		return fmt.Errorf("sqlite: deleting user %s: %w", userID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFoundMessage("User not found")
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing delete of %s: %w", userID, err)
	}
	return nil
}

func encodeProfileLists(p *model.Profile) (string, string, error) {
	allergies, err := encodeList(p.Allergies)
	if err != nil {
		return "", "", fmt.Errorf("sqlite: encoding allergies: %w", err)
	}
	conditions, err := encodeList(p.MedicalConditions)
	if err != nil {
		return "", "", fmt.Errorf("sqlite: encoding medical conditions: %w", err)
	}
	return allergies, conditions, nil
}

// encodeList stores nil as [] so every read returns a non-nil slice.
func encodeList[T any](items []T) (string, error) {
	if items == nil {
		items = []T{}
	}
	b, err := json.Marshal(items)
	return string(b), err
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

func floatPtr(n sql.NullFloat64) *float64 {
	if !n.Valid {
		return nil
	}
	v := n.Float64
	return &v
}
