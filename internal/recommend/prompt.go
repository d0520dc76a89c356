// Package recommend turns a profile and recent diary entries into advice.
//
// THREE STEPS:
//   - BuildPrompt writes the profile and diary into a prompt that asks for a
//     JSON answer with menu, exercise, insights and recommendations keys.
//   - a Generator (Gemini in production) answers it.
//   - Format renders that JSON as sectioned plain text. Answers that are not
//     the JSON we asked for are kept as they are.
package recommend

import (
	"context"
	"fmt"
	"strings"

	"github.com/sakif/health-diary/internal/form"
	"github.com/sakif/health-diary/internal/model"
)

// RecentEntries is how many diary entries go into a prompt.
const RecentEntries = 7

// Generator produces text for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// BuildPrompt renders profile and entries (newest first) into a prompt.
func BuildPrompt(p *model.Profile, entries []model.DiaryEntry) string {
	var b strings.Builder

	b.WriteString("User Profile:\n")
	fmt.Fprintf(&b, "- Age: %d\n", p.Age)
	fmt.Fprintf(&b, "- Gender: %s\n", p.Gender)
	fmt.Fprintf(&b, "- Weight: %s kg\n", orUnknown(form.FormatDecimal(p.Weight)))
	fmt.Fprintf(&b, "- Height: %s cm\n", orUnknown(form.FormatDecimal(p.Height)))
	fmt.Fprintf(&b, "- Allergies: %s\n", strings.Join(p.Allergies, ", "))
	fmt.Fprintf(&b, "- Medical Conditions: %s\n", strings.Join(p.MedicalConditions, ", "))

	fmt.Fprintf(&b, "\nRecent Health Data (Last %d days):\n", RecentEntries)
	for _, e := range entries {
		fmt.Fprintf(&b, "\nDate: %s\n", e.Date)
		fmt.Fprintf(&b, "Meals: %s\n", strings.Join(e.Meals, ", "))
		b.WriteString("Health Conditions:\n")
		for _, c := range e.Conditions {
			fmt.Fprintf(&b, "  - %s (Severity: %d/10)\n", c.Condition, c.Severity)
		}
		fmt.Fprintf(&b, "Activities: %s\n", strings.Join(e.Activities, ", "))
	}

	b.WriteString(`
Based on this health data, please provide:
1. Daily menu recommendations (breakfast, lunch, dinner, snacks)
2. Physical activity suggestions
3. Health insights and patterns you notice
4. Specific recommendations to address recurring health issues

Format the response in JSON with these keys: menu, exercise, insights, recommendations`)

	return b.String()
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
