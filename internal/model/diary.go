package model

import (
	"encoding/json"
)

// MinSeverity and MaxSeverity bound ConditionRecord.Severity (inclusive).
const (
	MinSeverity = 1
	MaxSeverity = 10
)

// ConditionRecord is a single symptom observation inside a diary entry.
// Timestamp is stamped when the entry is assembled for submission and is
// never edited by the user.
type ConditionRecord struct {
	Condition string    `json:"condition"`
	Severity  int       `json:"severity"`
	Notes     string    `json:"notes"`
	Timestamp Timestamp `json:"timestamp"`
}

// DiaryEntry is one dated record of meals, conditions, activities and notes.
//
// ID, UserID and CreatedAt are assigned by the collaborator. A payload built
// on the client leaves them empty and `omitempty` keeps them off the wire.
//
// WHY SLICES AND NOT SETS?
// Meals and activities are shown in the order they were typed, so order is
// part of the data. Conditions is a slice of records for the same reason.
type DiaryEntry struct {
	ID         string            `json:"_id,omitempty"`
	UserID     string            `json:"user_id,omitempty"`
	Date       string            `json:"date"` // YYYY-MM-DD
	Meals      []string          `json:"meals"`
	Conditions []ConditionRecord `json:"conditions"`
	Activities []string          `json:"activities"`
	Notes      string            `json:"notes"`
	CreatedAt  *Timestamp        `json:"created_at,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

var diaryEntryFields = []string{"_id", "user_id", "date", "meals", "conditions", "activities", "notes", "created_at"}

// MarshalJSON emits the modelled fields followed by any opaque ones.
func (e DiaryEntry) MarshalJSON() ([]byte, error) {
	type plain DiaryEntry
	return marshalWithExtra(plain(e), e.Extra)
}

// UnmarshalJSON decodes the modelled fields and keeps everything else in Extra.
func (e *DiaryEntry) UnmarshalJSON(data []byte) error {
	type plain DiaryEntry
	var decoded plain
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	extra, err := splitExtra(data, diaryEntryFields)
	if err != nil {
		return err
	}
	*e = DiaryEntry(decoded)
	e.Extra = extra
	return nil
}
