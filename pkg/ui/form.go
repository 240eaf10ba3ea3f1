package ui

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rescp17/stageCatalog/internal/style"
	"github.com/rescp17/stageCatalog/pkg/catalog"
)

type formField struct {
	name        string
	label       string
	placeholder string
}

var formFields = []formField{
	{"title", "Title", "Tosca"},
	{"date", "Date", "July 4"},
	{"time", "Time", "19:00"},
	{"cover", "Cover", "tosca.jpg"},
	{"composer", "Composer", "Puccini"},
	{"type", "Type", "opera"},
}

const typeField = 5

// formModel is the add-event form. Its contents survive a failed
// submission so the user can fix them and retry.
type formModel struct {
	inputs []textinput.Model
	focus  int
	errs   map[string]string
}

func newFormModel() formModel {
	inputs := make([]textinput.Model, len(formFields))
	for i, f := range formFields {
		ti := textinput.New()
		ti.Placeholder = f.placeholder
		ti.Prompt = ""
		ti.CharLimit = 64
		ti.Width = 32
		inputs[i] = ti
	}
	inputs[typeField].SetValue(string(catalog.KindOpera))
	return formModel{inputs: inputs, errs: map[string]string{}}
}

// open focuses the first field with a problem, or the title.
func (f *formModel) open() tea.Cmd {
	target := 0
	for i, field := range formFields {
		if _, bad := f.errs[field.name]; bad {
			target = i
			break
		}
	}
	return f.setFocus(target)
}

func (f *formModel) setFocus(i int) tea.Cmd {
	n := len(f.inputs)
	f.focus = ((i % n) + n) % n
	for j := range f.inputs {
		f.inputs[j].Blur()
	}
	return f.inputs[f.focus].Focus()
}

func (f *formModel) next() tea.Cmd { return f.setFocus(f.focus + 1) }
func (f *formModel) prev() tea.Cmd { return f.setFocus(f.focus - 1) }

// cycleType flips the type field between the two kinds.
func (f *formModel) cycleType() {
	ti := &f.inputs[typeField]
	if catalog.Kind(strings.TrimSpace(ti.Value())) == catalog.KindOpera {
		ti.SetValue(string(catalog.KindBallet))
	} else {
		ti.SetValue(string(catalog.KindOpera))
	}
	ti.CursorEnd()
}

func (f formModel) onTypeField() bool { return f.focus == typeField }

func (f formModel) candidate() catalog.Candidate {
	v := func(i int) string { return strings.TrimSpace(f.inputs[i].Value()) }
	return catalog.Candidate{
		Title:    v(0),
		Date:     v(1),
		Time:     v(2),
		Cover:    v(3),
		Composer: v(4),
		Type:     catalog.Kind(v(typeField)),
	}
}

// setErrors shows the field violations carried by err. It reports whether
// err was a validation error.
func (f *formModel) setErrors(err error) bool {
	f.errs = map[string]string{}
	var verr *catalog.ValidationError
	if !errors.As(err, &verr) {
		return false
	}
	for _, fe := range verr.Fields {
		f.errs[fe.Field] = fe.Message
	}
	return true
}

func (f formModel) update(msg tea.Msg) (formModel, tea.Cmd) {
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return f, cmd
}

func (f formModel) view() string {
	var b strings.Builder
	b.WriteString(style.TitleStyle.Render("New event") + "\n\n")
	for i, field := range formFields {
		label := style.LabelStyle.Render(field.label)
		if i == f.focus {
			label = style.FocusedLabelStyle.Render(field.label)
		}
		b.WriteString(label + f.inputs[i].View() + "\n")
		if msg, bad := f.errs[field.name]; bad {
			b.WriteString(style.FieldErrorStyle.Render(msg) + "\n")
		}
	}
	return style.FormStyle.Render(strings.TrimRight(b.String(), "\n"))
}
