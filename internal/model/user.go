// Package model defines the data exchanged with the collaborator: profiles,
// diary entries and recommendations, plus the lenient timestamp they share.
package model

import (
	"encoding/json"
	"fmt"
)

// Gender is the self-reported gender stored on a profile.
//
// WHY A NAMED STRING TYPE?
// A plain string would accept anything. A named type lets us attach Valid()
// and gives the compiler a chance to catch a height accidentally passed as
// a gender. On the wire it is still just "male", "female" or "other".
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

// Genders lists the accepted values in display order.
var Genders = []Gender{GenderMale, GenderFemale, GenderOther}

// Valid reports whether g is one of the known genders.
func (g Gender) Valid() bool {
	switch g {
	case GenderMale, GenderFemale, GenderOther:
		return true
	}
	return false
}

// ParseGender converts free text into a Gender.
func ParseGender(s string) (Gender, error) {
	g := Gender(s)
	if !g.Valid() {
		return "", fmt.Errorf("unknown gender %q", s)
	}
	return g, nil
}

// Profile is a registered user's health profile.
//
// IDENTITY:
// UserID is chosen by the user at registration and never changes afterwards.
// It is the key for every other request (login, diary, recommendations).
//
// WHY *float64 FOR WEIGHT AND HEIGHT?
// Both are optional. A nil pointer marshals to JSON null, which is how the
// collaborator distinguishes "not provided" from a real measurement. Using
// 0 as "absent" would make an explicit zero indistinguishable from a blank field.
//
// OPAQUE FIELDS:
// The collaborator may send fields we don't model (a database "_id", audit
// timestamps, ...). They are kept in Extra and written back out by MarshalJSON,
// so a profile that round-trips through this process loses nothing.
type Profile struct {
	UserID            string   `json:"user_id"`
	Age               int      `json:"age"`
	Gender            Gender   `json:"gender"`
	Weight            *float64 `json:"weight"` // kilograms
	Height            *float64 `json:"height"` // centimeters
	Allergies         []string `json:"allergies"`
	MedicalConditions []string `json:"medical_conditions"`

	Extra map[string]json.RawMessage `json:"-"`
}

var profileFields = []string{"user_id", "age", "gender", "weight", "height", "allergies", "medical_conditions"}

// MarshalJSON emits the modelled fields followed by any opaque ones.
func (p Profile) MarshalJSON() ([]byte, error) {
	type plain Profile
	return marshalWithExtra(plain(p), p.Extra)
}

// UnmarshalJSON decodes the modelled fields and keeps everything else in Extra.
func (p *Profile) UnmarshalJSON(data []byte) error {
	type plain Profile
	var decoded plain
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	extra, err := splitExtra(data, profileFields)
	if err != nil {
		return err
	}
	*p = Profile(decoded)
	p.Extra = extra
	return nil
}

// Clone returns a deep copy so callers can hand out snapshots without
// sharing slices or pointers with the owner.
func (p *Profile) Clone() *Profile {
	if p == nil {
		return nil
	}
	c := *p
	c.Weight = cloneFloat(p.Weight)
	c.Height = cloneFloat(p.Height)
	c.Allergies = cloneStrings(p.Allergies)
	c.MedicalConditions = cloneStrings(p.MedicalConditions)
	if p.Extra != nil {
		c.Extra = make(map[string]json.RawMessage, len(p.Extra))
		for k, v := range p.Extra {
			c.Extra[k] = v
		}
	}
	return &c
}

// Merge overlays the modelled fields of update onto a copy of p.
// UserID and the opaque fields of p are kept: an update never renames a
// user and never drops data we did not understand.
func (p *Profile) Merge(update *Profile) *Profile {
	merged := p.Clone()
	if update == nil {
		return merged
	}
	u := update.Clone()
	merged.Age = u.Age
	merged.Gender = u.Gender
	merged.Weight = u.Weight
	merged.Height = u.Height
	merged.Allergies = u.Allergies
	merged.MedicalConditions = u.MedicalConditions
	return merged
}

func cloneFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}
