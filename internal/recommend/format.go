package recommend

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"unicode"
)

var rule = strings.Repeat("=", 60)

// StripFences removes markdown code fences around a model answer.
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "```json\n", "")
	s = strings.ReplaceAll(s, "```\n", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}

// Format renders a JSON answer as sectioned text. raw is returned unchanged
// when it is not a JSON object.
func Format(raw string) string {
	fields, err := decodeObject([]byte(StripFences(raw)))
	if err != nil {
		return raw
	}

	var parts []string
	if menu, ok := fields.get("menu"); ok {
		parts = append(parts, rule, "📋 DAILY MENU PLAN", rule)
		parts = append(parts, formatMenu(menu)...)
	}
	if exercise, ok := fields.get("exercise"); ok {
		parts = append(parts, "\n"+rule, "💪 EXERCISE RECOMMENDATIONS", rule)
		parts = append(parts, formatExercise(exercise)...)
	}
	if insights, ok := fields.get("insights"); ok {
		parts = append(parts, "\n"+rule, "💡 HEALTH INSIGHTS", rule)
		parts = append(parts, formatNumbered(insights, "finding", "explanation", "Insight")...)
	}
	if recs, ok := fields.get("recommendations"); ok {
		parts = append(parts, "\n"+rule, "⚠️ ACTION RECOMMENDATIONS", rule)
		parts = append(parts, formatNumbered(recs, "area", "suggestion", "Recommendation")...)
	}
	return strings.Join(parts, "\n")
}

func formatMenu(raw json.RawMessage) []string {
	menu, err := decodeObject(raw)
	if err != nil {
		return []string{text(raw)}
	}
	var out []string
	for _, meal := range []struct{ key, label string }{
		{"breakfast", "☕ Breakfast:"},
		{"lunch", "☀️ Lunch:"},
		{"dinner", "🌙 Dinner:"},
	} {
		if v, ok := menu.get(meal.key); ok {
			out = append(out, "\n"+meal.label+"\n"+text(v))
		}
	}
	if snacks, ok := menu.get("snacks"); ok {
		out = append(out, "\n🍎 Snacks:")
		var list []json.RawMessage
		if json.Unmarshal(snacks, &list) == nil {
			for _, s := range list {
				out = append(out, "  • "+text(s))
			}
		} else {
			out = append(out, "  "+text(snacks))
		}
	}
	return out
}

func formatExercise(raw json.RawMessage) []string {
	obj, err := decodeObject(raw)
	if err != nil {
		return []string{text(raw)}
	}
	var out []string
	for _, f := range obj {
		out = append(out, "\n"+titleCase(strings.ReplaceAll(f.key, "_", " "))+":", text(f.value))
	}
	return out
}

// formatNumbered renders a list as "1. ...". Object items show their
// titleKey as the heading and bodyKey indented below it.
func formatNumbered(raw json.RawMessage, titleKey, bodyKey, fallback string) []string {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return []string{text(raw)}
	}
	var out []string
	for i, item := range items {
		n := i + 1
		obj, err := decodeObject(item)
		if err != nil {
			out = append(out, fmt.Sprintf("\n%d. %s", n, text(item)))
			continue
		}
		title := fmt.Sprintf("%s %d", fallback, n)
		if v, ok := obj.get(titleKey); ok {
			title = text(v)
		}
		body := ""
		if v, ok := obj.get(bodyKey); ok {
			body = text(v)
		}
		out = append(out, fmt.Sprintf("\n%d. %s", n, title), "   "+body)
	}
	return out
}

type field struct {
	key   string
	value json.RawMessage
}

// object keeps the key order of the JSON it was decoded from.
type object []field

func (o object) get(key string) (json.RawMessage, bool) {
	for _, f := range o {
		if f.key == key {
			return f.value, true
		}
	}
	return nil, false
}

func decodeObject(data []byte) (object, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("not a JSON object")
	}

	var obj object
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected key token %v", tok)
		}
		var v json.RawMessage
		if err := dec.Decode(&v); err != nil {
			return nil, err
		}
		obj = append(obj, field{key: key, value: v})
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, fmt.Errorf("trailing data after JSON object")
	}
	return obj, nil
}

// text renders a JSON value for display: strings unquoted, everything else
// as compact JSON.
func text(raw json.RawMessage) string {
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	var buf bytes.Buffer
	if json.Compact(&buf, raw) == nil {
		return buf.String()
	}
	return string(raw)
}

// titleCase upper-cases the first letter of each word and lower-cases the rest.
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r := []rune(strings.ToLower(w))
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
