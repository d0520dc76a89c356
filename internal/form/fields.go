package form

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sakif/health-diary/internal/apperror"
	"github.com/sakif/health-diary/internal/model"
)

// Set assigns one profile field by its wire name. It only stores text;
// parsing happens when the draft is submitted.
func (d *ProfileDraft) Set(field, value string) error {
	switch strings.ToLower(field) {
	case "user_id", "username":
		d.UserID = value
	case "age":
		d.Age = value
	case "gender":
		d.Gender = strings.ToLower(strings.TrimSpace(value))
	case "weight":
		d.Weight = value
	case "height":
		d.Height = value
	case "allergies":
		d.Allergies = value
	case "medical_conditions", "conditions":
		d.MedicalConditions = value
	default:
		return apperror.ValidationFailed(field, fmt.Sprintf("unknown profile field %q", field))
	}
	return nil
}

// ProfileFields lists the names accepted by ProfileDraft.Set.
var ProfileFields = []string{"user_id", "age", "gender", "weight", "height", "allergies", "medical_conditions"}

// Set assigns one diary field by name. Severity is the only numeric field
// and is range checked here so the slider can never hold a bad value.
func (d *DiaryDraft) Set(field, value string) error {
	switch strings.ToLower(field) {
	case "date":
		d.Date = value
	case "meals":
		d.Meals = value
	case "condition", "conditions":
		d.Condition = value
	case "severity":
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil || n < model.MinSeverity || n > model.MaxSeverity {
			return apperror.ValidationFailed("severity", "Severity must be between 1 and 10")
		}
		d.Severity = n
	case "activities":
		d.Activities = value
	case "notes":
		d.Notes = value
	default:
		return apperror.ValidationFailed(field, fmt.Sprintf("unknown diary field %q", field))
	}
	return nil
}

// DiaryFields lists the names accepted by DiaryDraft.Set.
var DiaryFields = []string{"date", "meals", "condition", "severity", "activities", "notes"}
