package ui

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/travel-assistant/concierge/internal/adminapi"
	"github.com/travel-assistant/concierge/internal/form"
	"github.com/travel-assistant/concierge/internal/workspace"
)

// field is one text input of a form modal. Key is the draft's json field
// name, used to place validation messages.
type field struct {
	Key   string
	Label string
	Hint  string
	Value string
}

// formModal edits a draft through a form session. bind pushes the input
// values into the session; submit runs it.
type formModal struct {
	id         int
	title      string
	fields     []field
	inputs     []textinput.Model
	focus      int
	submitting bool
	general    string
	fieldErrs  map[string]string

	bind   func(values []string) error
	submit func(ctx context.Context) error
	cancel func()
}

func newFormModal(title string, fields []field) *formModal {
	m := &formModal{title: title, fields: fields, fieldErrs: map[string]string{}}
	for i, f := range fields {
		in := textinput.New()
		in.Prompt = ""
		in.Placeholder = f.Hint
		in.CharLimit = 512
		in.Width = 40
		in.SetValue(f.Value)
		if i == 0 {
			in.Focus()
		}
		m.inputs = append(m.inputs, in)
	}
	return m
}

func (m *formModal) values() []string {
	out := make([]string, len(m.inputs))
	for i, in := range m.inputs {
		out[i] = in.Value()
	}
	return out
}

func (m *formModal) setFocus(i int) tea.Cmd {
	if len(m.inputs) == 0 {
		return nil
	}
	i = (i + len(m.inputs)) % len(m.inputs)
	m.inputs[m.focus].Blur()
	m.focus = i
	return m.inputs[i].Focus()
}

// formResultMsg carries the outcome of a submit started by modal id.
type formResultMsg struct {
	id  int
	err error
}

// handleKey routes a key to the modal. It returns a command and whether
// the modal was dismissed.
func (m *formModal) handleKey(ctx context.Context, msg tea.KeyMsg, keys keyMap) (tea.Cmd, bool) {
	switch {
	case key.Matches(msg, keys.Cancel):
		if m.cancel != nil {
			m.cancel()
		}
		return nil, true
	case m.submitting:
		return nil, false
	case key.Matches(msg, keys.Confirm):
		return m.start(ctx), false
	case key.Matches(msg, keys.NextField):
		return m.setFocus(m.focus + 1), false
	case key.Matches(msg, keys.PrevField):
		return m.setFocus(m.focus - 1), false
	}
	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return cmd, false
}

// start binds the inputs and launches the submit.
func (m *formModal) start(ctx context.Context) tea.Cmd {
	m.general = ""
	m.fieldErrs = map[string]string{}
	if err := m.bind(m.values()); err != nil {
		m.showError(err)
		return nil
	}
	m.submitting = true
	id, submit := m.id, m.submit
	return func() tea.Msg {
		return formResultMsg{id: id, err: submit(ctx)}
	}
}

// finish applies a submit outcome. It reports whether the modal is done.
func (m *formModal) finish(err error) bool {
	m.submitting = false
	if err == nil {
		return true
	}
	m.showError(err)
	return false
}

func (m *formModal) showError(err error) {
	var verr *form.ValidationError
	if errors.As(err, &verr) {
		for _, fe := range verr.Errors {
			name := fe.Field
			if i := strings.IndexByte(name, '['); i > 0 {
				name = name[:i]
			}
			if m.hasField(name) {
				m.fieldErrs[name] = fe.Message
			} else {
				m.general = fe.Field + " " + fe.Message
			}
		}
		return
	}
	var ferr *fieldParseError
	if errors.As(err, &ferr) {
		m.fieldErrs[ferr.key] = ferr.message
		return
	}
	m.general = adminapi.Message(err)
}

func (m *formModal) hasField(key string) bool {
	for _, f := range m.fields {
		if f.Key == key {
			return true
		}
	}
	return false
}

func (m *formModal) view(theme Theme, width, height int) string {
	styles := theme.Styles()
	var b strings.Builder
	b.WriteString(styles.Text.Bold(true).Render(m.title))
	b.WriteString("\n\n")
	for i, f := range m.fields {
		label := styles.MutedText
		if i == m.focus {
			label = styles.AccentText
		}
		b.WriteString(label.Render(f.Label))
		b.WriteString("\n")
		b.WriteString(m.inputs[i].View())
		b.WriteString("\n")
		if msg := m.fieldErrs[f.Key]; msg != "" {
			b.WriteString(styles.DangerText.Render(f.Label + " " + msg))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	switch {
	case m.submitting:
		b.WriteString(styles.WarningText.Render("Saving..."))
	case m.general != "":
		b.WriteString(styles.DangerText.Render(m.general))
	default:
		b.WriteString(styles.FaintText.Render("enter save · tab next field · esc cancel"))
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
		styles.Modal.Width(52).Render(b.String()))
}

// fieldParseError rejects an input that cannot be converted into the
// draft's field type.
type fieldParseError struct {
	key     string
	message string
}

func (e *fieldParseError) Error() string { return e.key + " " + e.message }

func nameModal(title string, s *form.Session[workspace.NameDraft]) *formModal {
	m := newFormModal(title, []field{
		{Key: "name", Label: "Name", Hint: "e.g. Street Food", Value: s.Draft().Name},
	})
	m.bind = func(v []string) error {
		return s.SetDraft(workspace.NameDraft{Name: v[0]})
	}
	m.submit = s.Submit
	m.cancel = s.Close
	return m
}

func planModal(title string, s *form.Session[workspace.PlanDraft]) *formModal {
	m := newFormModal(title, planFields(s.Draft()))
	m.bind = func(v []string) error {
		d, err := planDraftFromFields(v)
		if err != nil {
			return err
		}
		return s.SetDraft(d)
	}
	m.submit = s.Submit
	m.cancel = s.Close
	return m
}

func profileModal(s *form.Session[workspace.ProfileDraft]) *formModal {
	d := s.Draft()
	m := newFormModal("Edit profile", []field{
		{Key: "full_name", Label: "Full name", Value: d.FullName},
		{Key: "email", Label: "Email", Value: d.Email},
		{Key: "image", Label: "Avatar image", Hint: "path to a local file (optional)", Value: d.ImagePath},
	})
	m.bind = func(v []string) error {
		return s.SetDraft(workspace.ProfileDraft{
			FullName:  v[0],
			Email:     strings.TrimSpace(v[1]),
			ImagePath: strings.TrimSpace(v[2]),
		})
	}
	m.submit = s.Submit
	m.cancel = s.Close
	return m
}

func planFields(d workspace.PlanDraft) []field {
	price := ""
	if d.Price != 0 || d.Name != "" {
		price = strconv.FormatFloat(d.Price, 'f', -1, 64)
	}
	duration := ""
	if d.DurationDays > 0 {
		duration = strconv.Itoa(d.DurationDays)
	}
	limit := ""
	if d.ItineraryLimit != nil {
		limit = strconv.Itoa(*d.ItineraryLimit)
	}
	return []field{
		{Key: "plan_name", Label: "Plan name", Value: d.Name},
		{Key: "price", Label: "Price", Hint: "0 for free", Value: price},
		{Key: "duration", Label: "Duration (days)", Value: duration},
		{Key: "itinerary_limit", Label: "Itinerary limit", Hint: "blank for unlimited", Value: limit},
		{Key: "features", Label: "Features", Hint: "comma separated, up to 10", Value: strings.Join(d.Features, ", ")},
	}
}

// planDraftFromFields converts the plan inputs into a draft. Blank price
// and duration become zero and are left for validation to judge.
func planDraftFromFields(v []string) (workspace.PlanDraft, error) {
	var d workspace.PlanDraft
	d.Name = v[0]
	if s := strings.TrimSpace(v[1]); s != "" {
		price, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return d, &fieldParseError{key: "price", message: "must be a number"}
		}
		d.Price = price
	}
	if s := strings.TrimSpace(v[2]); s != "" {
		days, err := strconv.Atoi(s)
		if err != nil {
			return d, &fieldParseError{key: "duration", message: "must be a whole number of days"}
		}
		d.DurationDays = days
	}
	if s := strings.TrimSpace(v[3]); s != "" && !strings.EqualFold(s, "unlimited") {
		limit, err := strconv.Atoi(s)
		if err != nil {
			return d, &fieldParseError{key: "itinerary_limit", message: "must be a whole number or blank"}
		}
		d.ItineraryLimit = &limit
	}
	for _, f := range strings.Split(v[4], ",") {
		if f = strings.TrimSpace(f); f != "" {
			d.Features = append(d.Features, f)
		}
	}
	return d, nil
}
