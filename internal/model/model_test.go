package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfile_UnmarshalKeepsOpaqueFields(t *testing.T) {
	raw := `{"_id":"65a1","user_id":"alice","age":30,"gender":"female","weight":null,"height":170.5,
		"allergies":["peanuts","dairy"],"medical_conditions":[],"plan":{"tier":"free"}}`

	var p Profile
	require.NoError(t, json.Unmarshal([]byte(raw), &p))

	assert.Equal(t, "alice", p.UserID)
	assert.Equal(t, 30, p.Age)
	assert.Equal(t, GenderFemale, p.Gender)
	assert.Nil(t, p.Weight)
	require.NotNil(t, p.Height)
	assert.InDelta(t, 170.5, *p.Height, 1e-9)
	assert.Equal(t, []string{"peanuts", "dairy"}, p.Allergies)
	assert.Len(t, p.Extra, 2)
	assert.JSONEq(t, `"65a1"`, string(p.Extra["_id"]))

	out, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{"_id":"65a1","user_id":"alice","age":30,"gender":"female","weight":null,"height":170.5,
		"allergies":["peanuts","dairy"],"medical_conditions":[],"plan":{"tier":"free"}}`, string(out))
}

func TestProfile_MarshalWithoutExtra(t *testing.T) {
	p := Profile{UserID: "bob", Age: 41, Gender: GenderMale}

	out, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{"user_id":"bob","age":41,"gender":"male","weight":null,"height":null,
		"allergies":null,"medical_conditions":null}`, string(out))
}

func TestProfile_MergeKeepsIdentityAndOpaqueFields(t *testing.T) {
	w := 80.0
	current := &Profile{
		UserID:    "alice",
		Age:       30,
		Gender:    GenderFemale,
		Allergies: []string{"peanuts"},
		Extra:     map[string]json.RawMessage{"_id": json.RawMessage(`"65a1"`)},
	}
	update := &Profile{UserID: "mallory", Age: 31, Gender: GenderOther, Weight: &w}

	merged := current.Merge(update)

	assert.Equal(t, "alice", merged.UserID)
	assert.Equal(t, 31, merged.Age)
	assert.Equal(t, GenderOther, merged.Gender)
	require.NotNil(t, merged.Weight)
	assert.Equal(t, 80.0, *merged.Weight)
	assert.Nil(t, merged.Allergies)
	assert.Contains(t, merged.Extra, "_id")

	// the source profile is untouched
	assert.Equal(t, 30, current.Age)
	*merged.Weight = 1
	assert.Equal(t, 80.0, w)
}

func TestDiaryEntry_RoundTrip(t *testing.T) {
	raw := `{"_id":"e1","user_id":"alice","date":"2024-01-15","meals":["oatmeal"],
		"conditions":[{"condition":"headache","severity":7,"notes":"","timestamp":"2024-01-15T08:30:00.123456"}],
		"activities":[],"notes":"ok","created_at":"2024-01-15T08:30:01","mood":"fine"}`

	var e DiaryEntry
	require.NoError(t, json.Unmarshal([]byte(raw), &e))

	assert.Equal(t, "e1", e.ID)
	assert.Equal(t, "alice", e.UserID)
	require.Len(t, e.Conditions, 1)
	assert.Equal(t, 7, e.Conditions[0].Severity)
	assert.Equal(t, time.Date(2024, 1, 15, 8, 30, 0, 123456000, time.UTC), e.Conditions[0].Timestamp.Time)
	require.NotNil(t, e.CreatedAt)
	assert.Equal(t, map[string]json.RawMessage{"mood": json.RawMessage(`"fine"`)}, e.Extra)

	out, err := json.Marshal(e)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"mood":"fine"`)
	assert.Contains(t, string(out), `"timestamp":"2024-01-15T08:30:00.123456Z"`)
}

func TestDiaryEntry_PayloadOmitsServerFields(t *testing.T) {
	e := DiaryEntry{Date: "2024-01-15", Meals: []string{}, Conditions: []ConditionRecord{}, Activities: []string{}}

	out, err := json.Marshal(e)
	require.NoError(t, err)
	assert.JSONEq(t, `{"date":"2024-01-15","meals":[],"conditions":[],"activities":[],"notes":""}`, string(out))
}

func TestTimestamp_Unmarshal(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    time.Time
		wantErr bool
	}{
		{name: "rfc3339 with zone", in: `"2024-01-15T10:00:00+02:00"`, want: time.Date(2024, 1, 15, 8, 0, 0, 0, time.UTC)},
		{name: "naive with fraction", in: `"2024-01-15T10:00:00.5"`, want: time.Date(2024, 1, 15, 10, 0, 0, 500000000, time.UTC)},
		{name: "space separated", in: `"2024-01-15 10:00:00"`, want: time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)},
		{name: "null", in: `null`},
		{name: "garbage", in: `"yesterday"`, wantErr: true},
		{name: "number", in: `12`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ts Timestamp
			err := json.Unmarshal([]byte(tt.in), &ts)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(ts.Time), "got %v, want %v", ts.Time, tt.want)
		})
	}
}

func TestParseGender(t *testing.T) {
	for _, g := range Genders {
		got, err := ParseGender(string(g))
		require.NoError(t, err)
		assert.Equal(t, g, got)
	}
	_, err := ParseGender("Male")
	assert.Error(t, err)
}
