package form

import (
	"strconv"
	"strings"

	"github.com/sakif/health-diary/internal/apperror"
	"github.com/sakif/health-diary/internal/model"
)

// ProfileDraft is the text buffer behind the register form and the
// profile-edit form. Every field holds exactly what the user typed.
type ProfileDraft struct {
	UserID            string
	Age               string
	Gender            string
	Weight            string
	Height            string
	Allergies         string
	MedicalConditions string
}

// NewProfileDraft returns an empty draft. Gender starts on the first choice
// offered by the form.
func NewProfileDraft() ProfileDraft {
	return ProfileDraft{Gender: string(model.GenderMale)}
}

// ProfileDraftFrom seeds a draft from a stored profile, joining list fields
// into their comma-separated display form.
func ProfileDraftFrom(p *model.Profile) ProfileDraft {
	if p == nil {
		return NewProfileDraft()
	}
	d := ProfileDraft{
		UserID:            p.UserID,
		Age:               strconv.Itoa(p.Age),
		Gender:            string(p.Gender),
		Weight:            FormatDecimal(p.Weight),
		Height:            FormatDecimal(p.Height),
		Allergies:         SerializeList(p.Allergies),
		MedicalConditions: SerializeList(p.MedicalConditions),
	}
	if d.Gender == "" {
		d.Gender = string(model.GenderMale)
	}
	return d
}

// Profile normalizes a registration draft. user_id and age are required.
func (d ProfileDraft) Profile() (*model.Profile, error) {
	userID := strings.TrimSpace(d.UserID)
	if userID == "" || strings.TrimSpace(d.Age) == "" {
		return nil, apperror.ValidationFailed("user_id", "Please fill in username and age")
	}
	return d.ProfileFor(userID)
}

// ProfileFor normalizes an edit draft for an existing user. userID comes from
// the session, not from the draft, because it is immutable once registered.
func (d ProfileDraft) ProfileFor(userID string) (*model.Profile, error) {
	age, err := ParseAge(d.Age)
	if err != nil {
		return nil, err
	}
	gender, err := model.ParseGender(strings.TrimSpace(d.Gender))
	if err != nil {
		return nil, apperror.ValidationFailed("gender", "Gender must be one of male, female, other")
	}

	return &model.Profile{
		UserID:            userID,
		Age:               age,
		Gender:            gender,
		Weight:            ParseDecimal(d.Weight),
		Height:            ParseDecimal(d.Height),
		Allergies:         ParseList(d.Allergies),
		MedicalConditions: ParseList(d.MedicalConditions),
	}, nil
}
