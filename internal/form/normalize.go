// Package form turns free-text form fields into domain values and back.
//
// Everything here is pure and synchronous: no I/O, no clocks read behind the
// caller's back (the submission instant is passed in), and no panics for any
// input string. A value that cannot be parsed comes back as an absent value
// (optional fields) or as an apperror.ErrValidation (required fields).
package form

import (
	"math"
	"strconv"
	"strings"

	"github.com/sakif/health-diary/internal/apperror"
)

// ListSeparator is what SerializeList puts between items.
const ListSeparator = ", "

// ParseList splits a comma-separated field into trimmed, non-empty items,
// keeping the order they were typed in. It never returns nil, so an empty
// field encodes as [] rather than null.
//
//	"oatmeal, ,salad  " → ["oatmeal", "salad"]
func ParseList(raw string) []string {
	items := []string{}
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			items = append(items, part)
		}
	}
	return items
}

// SerializeList is the display form of a list field, the inverse of ParseList
// for any list ParseList can produce.
func SerializeList(items []string) string {
	return strings.Join(items, ListSeparator)
}

// ParseAge converts the age field. Age is required: blank, non-numeric and
// non-positive input are validation failures, never a silent 0.
func ParseAge(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, apperror.ValidationFailed("age", "Age is required")
	}
	age, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperror.ValidationFailed("age", "Age must be a whole number")
	}
	if age <= 0 {
		return 0, apperror.ValidationFailed("age", "Age must be a positive whole number")
	}
	return age, nil
}

// ParseDecimal converts an optional measurement. Blank, unparseable and
// non-positive input all mean "not provided" and come back as nil.
func ParseDecimal(raw string) *float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return nil
	}
	return &v
}

// FormatDecimal is the display form of an optional measurement.
func FormatDecimal(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
