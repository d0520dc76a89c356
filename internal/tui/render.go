package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/sakif/health-diary/internal/form"
	"github.com/sakif/health-diary/internal/model"
	"github.com/sakif/health-diary/internal/view"
)

var (
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	tabStyle       = lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("245"))
	activeTabStyle = lipgloss.NewStyle().Padding(0, 1).Bold(true).Foreground(lipgloss.Color("231")).Background(lipgloss.Color("25"))
	labelStyle     = lipgloss.NewStyle().Width(20).Foreground(lipgloss.Color("245"))
	faintStyle     = lipgloss.NewStyle().Faint(true)
	busyStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	successStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	entryStyle     = lipgloss.NewStyle().BorderStyle(lipgloss.NormalBorder()).BorderLeft(true).BorderForeground(lipgloss.Color("240")).PaddingLeft(1)
)

func (m *Model) render() string {
	s := m.state
	var b strings.Builder

	b.WriteString(titleStyle.Render("Health Diary"))
	b.WriteString(faintStyle.Render("  " + m.endpoint))
	b.WriteString("\n\n")

	if s.Phase == view.PhaseAnonymous {
		b.WriteString(renderAnonymous(s))
	} else {
		b.WriteString(renderTabs(s))
		b.WriteString("\n\n")
		switch s.Panel {
		case view.PanelProfile:
			b.WriteString(renderProfile(s))
		case view.PanelDiary:
			b.WriteString(renderDiary(s))
		case view.PanelRecommendations:
			b.WriteString(m.renderRecommendations())
		}
	}

	if busy := busyLine(s); busy != "" {
		b.WriteString("\n")
		b.WriteString(busyStyle.Render(busy))
	}
	if n := renderNotice(s.Notice); n != "" {
		b.WriteString("\n")
		b.WriteString(n)
	}
	if m.showHelp {
		b.WriteString("\n\n")
		b.WriteString(faintStyle.Render(helpText(s)))
	}
	b.WriteString("\n")
	return b.String()
}

func renderAnonymous(s view.State) string {
	var b strings.Builder
	if s.Mode == view.ModeLogin {
		b.WriteString(titleStyle.Render("Login"))
		b.WriteString("\n")
		b.WriteString(field("Username", s.LoginUsername))
		b.WriteString("\n")
		b.WriteString(faintStyle.Render("login <username> · register · help"))
		return b.String()
	}

	b.WriteString(titleStyle.Render("Register"))
	b.WriteString("\n")
	b.WriteString(renderProfileDraft(s.Register))
	b.WriteString("\n")
	b.WriteString(faintStyle.Render("set <field> <value> · register (submit) · login (back)"))
	return b.String()
}

func renderTabs(s view.State) string {
	tabs := make([]string, 0, len(view.Panels))
	for _, p := range view.Panels {
		style := tabStyle
		if p == s.Panel {
			style = activeTabStyle
		}
		tabs = append(tabs, style.Render(p.String()))
	}
	user := ""
	if s.User != nil {
		user = faintStyle.Render("  signed in as " + s.User.UserID)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...) + user
}

func renderProfile(s view.State) string {
	if s.Edit == view.EditEditing {
		return titleStyle.Render("Edit profile") + "\n" +
			renderProfileDraft(s.Profile) + "\n" +
			faintStyle.Render("set <field> <value> · save · cancel")
	}

	p := s.User
	if p == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString(field("Username", p.UserID))
	b.WriteString(field("Age", fmt.Sprint(p.Age)))
	b.WriteString(field("Gender", string(p.Gender)))
	b.WriteString(field("Weight (kg)", orDash(form.FormatDecimal(p.Weight))))
	b.WriteString(field("Height (cm)", orDash(form.FormatDecimal(p.Height))))
	b.WriteString(field("Allergies", orDash(form.SerializeList(p.Allergies))))
	b.WriteString(field("Medical conditions", orDash(form.SerializeList(p.MedicalConditions))))
	b.WriteString("\n")
	b.WriteString(faintStyle.Render("edit · diary · recommend · logout"))
	return b.String()
}

func renderProfileDraft(d form.ProfileDraft) string {
	var b strings.Builder
	b.WriteString(field("user_id", d.UserID))
	b.WriteString(field("age", d.Age))
	b.WriteString(field("gender", d.Gender))
	b.WriteString(field("weight", d.Weight))
	b.WriteString(field("height", d.Height))
	b.WriteString(field("allergies", d.Allergies))
	b.WriteString(field("medical_conditions", d.MedicalConditions))
	return b.String()
}

func renderDiary(s view.State) string {
	var b strings.Builder
	d := s.Diary
	b.WriteString(titleStyle.Render("New entry"))
	b.WriteString("\n")
	b.WriteString(field("date", d.Date))
	b.WriteString(field("meals", d.Meals))
	b.WriteString(field("condition", d.Condition))
	b.WriteString(field("severity", fmt.Sprintf("%d/10", d.Severity)))
	b.WriteString(field("activities", d.Activities))
	b.WriteString(field("notes", d.Notes))
	b.WriteString(faintStyle.Render("set <field> <value> · add"))
	b.WriteString("\n\n")

	b.WriteString(titleStyle.Render(fmt.Sprintf("Entries (%d)", len(s.Entries))))
	b.WriteString("\n")
	if len(s.Entries) == 0 {
		b.WriteString(faintStyle.Render("No diary entries yet."))
		return b.String()
	}
	for _, e := range s.Entries {
		b.WriteString(entryStyle.Render(renderEntry(e)))
		b.WriteString("\n")
	}
	return b.String()
}

func renderEntry(e model.DiaryEntry) string {
	lines := []string{lipgloss.NewStyle().Bold(true).Render(e.Date)}
	if len(e.Meals) > 0 {
		lines = append(lines, "Meals: "+strings.Join(e.Meals, ", "))
	}
	if len(e.Conditions) > 0 {
		conds := make([]string, 0, len(e.Conditions))
		for _, c := range e.Conditions {
			conds = append(conds, fmt.Sprintf("%s (%d/10)", c.Condition, c.Severity))
		}
		lines = append(lines, "Conditions: "+strings.Join(conds, ", "))
	}
	if len(e.Activities) > 0 {
		lines = append(lines, "Activities: "+strings.Join(e.Activities, ", "))
	}
	if e.Notes != "" {
		lines = append(lines, "Notes: "+e.Notes)
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderRecommendations() string {
	s := m.state
	var b strings.Builder
	b.WriteString(titleStyle.Render("Recommendations"))
	b.WriteString("\n")
	if s.Recommendation == "" {
		b.WriteString(faintStyle.Render("Nothing generated yet. Type recommend."))
	} else {
		width := m.width - 2
		if width < 20 {
			width = 80
		}
		b.WriteString(lipgloss.NewStyle().Width(width).Render(s.Recommendation))
	}

	if m.recsShown {
		b.WriteString("\n\n")
		b.WriteString(titleStyle.Render("History"))
		b.WriteString("\n")
		if len(m.pastRecs) == 0 {
			b.WriteString(faintStyle.Render("No earlier recommendations."))
		}
		for _, r := range m.pastRecs {
			b.WriteString(entryStyle.Render(faintStyle.Render(r.CreatedAt.Format("2006-01-02 15:04")) + "\n" + r.Recommendation))
			b.WriteString("\n")
		}
	}
	return b.String()
}

func renderNotice(n view.Notice) string {
	switch n.Kind {
	case view.NoticeSuccess:
		return successStyle.Render(n.Text)
	case view.NoticeError:
		return errorStyle.Render(n.Text)
	}
	return ""
}

func busyLine(s view.State) string {
	var names []string
	for a := view.ActionLogin; a <= view.ActionRecommend; a++ {
		if s.Busy(a) {
			names = append(names, a.String())
		}
	}
	if len(names) == 0 {
		return ""
	}
	return "working: " + strings.Join(names, ", ") + " …"
}

func helpText(s view.State) string {
	if s.Phase == view.PhaseAnonymous {
		return strings.Join([]string{
			"login <username>      log in",
			"register              open the registration form (again to submit)",
			"set <field> <value>   fields: " + strings.Join(form.ProfileFields, ", "),
			"quit                  leave",
		}, "\n")
	}
	return strings.Join([]string{
		"profile | diary | recommendations   switch panel",
		"edit · save · cancel                edit the profile",
		"set <field> <value>                 profile: " + strings.Join(form.ProfileFields, ", "),
		"                                    diary: " + strings.Join(form.DiaryFields, ", "),
		"add                                 submit the diary entry",
		"recommend · history                 generate advice / show past advice",
		"logout · quit",
	}, "\n")
}

func field(label, value string) string {
	return labelStyle.Render(label) + value + "\n"
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
