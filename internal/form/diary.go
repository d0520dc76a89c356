package form

import (
	"strings"
	"time"

	"github.com/sakif/health-diary/internal/apperror"
	"github.com/sakif/health-diary/internal/model"
)

// DateLayout is the calendar-date form used for diary entries.
const DateLayout = "2006-01-02"

// DefaultSeverity is where the severity slider starts.
const DefaultSeverity = 5

// DiaryDraft is the text buffer behind the "add diary entry" form.
// The form offers one condition per submission; Condition is its name.
type DiaryDraft struct {
	Date       string
	Meals      string
	Condition  string
	Severity   int
	Activities string
	Notes      string
}

// NewDiaryDraft returns a blank draft dated today (UTC).
func NewDiaryDraft(now time.Time) DiaryDraft {
	return DiaryDraft{
		Date:     now.UTC().Format(DateLayout),
		Severity: DefaultSeverity,
	}
}

// Entry assembles the payload for submission. now stamps the condition
// record. A blank condition name yields an empty conditions list.
func (d DiaryDraft) Entry(now time.Time) (model.DiaryEntry, error) {
	date := strings.TrimSpace(d.Date)
	if _, err := time.Parse(DateLayout, date); err != nil {
		return model.DiaryEntry{}, apperror.ValidationFailed("date", "Date must be in YYYY-MM-DD form")
	}

	conditions := []model.ConditionRecord{}
	if name := strings.TrimSpace(d.Condition); name != "" {
		if d.Severity < model.MinSeverity || d.Severity > model.MaxSeverity {
			return model.DiaryEntry{}, apperror.ValidationFailed("severity", "Severity must be between 1 and 10")
		}
		conditions = append(conditions, model.ConditionRecord{
			Condition: name,
			Severity:  d.Severity,
			Notes:     d.Notes,
			Timestamp: model.NewTimestamp(now),
		})
	}

	return model.DiaryEntry{
		Date:       date,
		Meals:      ParseList(d.Meals),
		Conditions: conditions,
		Activities: ParseList(d.Activities),
		Notes:      d.Notes,
	}, nil
}
