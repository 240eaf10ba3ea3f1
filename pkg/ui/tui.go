package ui

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	appevents "github.com/rescp17/stageCatalog/internal/app_events"
	catalogevents "github.com/rescp17/stageCatalog/internal/app_events/catalog"
	"github.com/rescp17/stageCatalog/internal/style"
	"github.com/rescp17/stageCatalog/pkg/catalog"
	"github.com/rescp17/stageCatalog/pkg/concurrency"
)

// AppController defines the contract between the UI and the browser's
// application logic. The caller runs the controller; the UI only talks to it.
type AppController interface {
	// UIMessages returns a read-only channel for receiving messages from the backend to the UI.
	UIMessages() <-chan tea.Msg

	// AppEvents returns a write-only channel for the UI to send events to the backend.
	AppEvents() chan<- appevents.AppEvent
}

type screen int

const (
	browsing screen = iota
	adding
)

type model struct {
	appController AppController
	source        string

	screen  screen
	keys    keyMap
	help    help.Model
	spinner spinner.Model
	table   table.Model
	form    formModel

	filter     catalog.Filter
	events     []catalog.Event
	loading    bool
	submitting bool
	status     string
	err        error
}

var columns = []table.Column{
	{Title: "Title", Width: 24},
	{Title: "Date", Width: 12},
	{Title: "Time", Width: 6},
	{Title: "Composer", Width: 18},
	{Title: "Type", Width: 7},
	{Title: "Cover", Width: 18},
}

// InitialModel creates the browser TUI. source names the catalog store in
// the header.
func InitialModel(controller AppController, source string) model {
	t := table.New(
		table.WithColumns(columns),
		table.WithRows([]table.Row{}),
		table.WithFocused(true),
		table.WithHeight(10),
	)
	t.SetStyles(style.NewTableStyles())

	return model{
		appController: controller,
		source:        source,
		keys:          defaultKeyMap(),
		help:          help.New(),
		spinner:       style.NewSpinner(),
		table:         t,
		form:          newFormModel(),
		filter:        catalog.FilterAll,
		loading:       true,
	}
}

// listenForAppMessages is a command that listens for messages from the app controller.
func (m model) listenForAppMessages() tea.Cmd {
	return func() tea.Msg {
		return <-m.appController.UIMessages()
	}
}

// sendAppEvent hands event to the app controller off the update loop.
func (m model) sendAppEvent(event appevents.AppEvent) tea.Cmd {
	return func() tea.Msg {
		m.appController.AppEvents() <- event
		return nil
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.listenForAppMessages())
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if cmd, processed := m.handleAppMessage(msg); processed {
		return m, cmd
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		if h := msg.Height - 10; h > 3 {
			m.table.SetHeight(h)
		}
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.screen == adding {
			return m.updateForm(msg)
		}
		return m.updateBrowsing(msg)
	}
	return m, nil
}

func (m *model) handleAppMessage(msg tea.Msg) (tea.Cmd, bool) {
	switch msg := msg.(type) {
	case catalogevents.StateChangedMsg:
		m.filter = msg.CurrentFilter
		m.events = msg.Events
		m.updateEventTable()
		return m.listenForAppMessages(), true
	case catalogevents.FetchStartedMsg:
		m.loading = true
		return m.listenForAppMessages(), true
	case catalogevents.FetchFinishedMsg:
		m.loading = msg.Pending > 0
		if msg.Err != nil {
			m.err = fmt.Errorf("could not load %s events: %w", msg.Filter, msg.Err)
		} else if msg.Filter == m.filter {
			m.err = nil
		}
		return m.listenForAppMessages(), true
	case catalogevents.SubmitSucceededMsg:
		m.submitting = false
		m.form = newFormModel()
		m.screen = browsing
		m.err = nil
		m.status = fmt.Sprintf("Added %s", msg.Event.Title)
		return m.listenForAppMessages(), true
	case catalogevents.SubmitFailedMsg:
		if errors.Is(msg.Err, concurrency.ErrBusy) {
			m.status = "Still saving the previous event..."
			return m.listenForAppMessages(), true
		}
		m.submitting = false
		if m.form.setErrors(msg.Err) {
			m.err = nil
			return tea.Batch(m.form.open(), m.listenForAppMessages()), true
		}
		m.err = fmt.Errorf("could not add event: %w", msg.Err)
		return m.listenForAppMessages(), true
	case appevents.AppErrorMsg:
		m.err = fmt.Errorf("%s: %w", msg.Op, msg.Err)
		return m.listenForAppMessages(), true
	}
	return nil, false
}

func (m *model) updateEventTable() {
	rows := make([]table.Row, 0, len(m.events))
	for _, e := range m.events {
		rows = append(rows, table.Row{e.Title, e.Date, e.Time, e.Composer, string(e.Type), e.Cover})
	}
	m.table.SetRows(rows)
	if c := m.table.Cursor(); c >= len(rows) && len(rows) > 0 {
		m.table.SetCursor(len(rows) - 1)
	}
}

func (m model) selectFilter(f catalog.Filter) (tea.Model, tea.Cmd) {
	if f == m.filter {
		return m, nil
	}
	slog.Debug("Filter selected", "filter", f)
	m.status = ""
	return m, m.sendAppEvent(catalogevents.FilterSelected{Value: f})
}

func (m model) updateBrowsing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.NextFilter):
		return m.selectFilter(m.filter.Next())
	case key.Matches(msg, m.keys.All):
		return m.selectFilter(catalog.FilterAll)
	case key.Matches(msg, m.keys.Opera):
		return m.selectFilter(catalog.FilterOpera)
	case key.Matches(msg, m.keys.Ballet):
		return m.selectFilter(catalog.FilterBallet)
	case key.Matches(msg, m.keys.Refresh):
		m.status = ""
		return m, m.sendAppEvent(catalogevents.RefreshRequested{})
	case key.Matches(msg, m.keys.Add):
		m.screen = adding
		m.status = ""
		return m, m.form.open()
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Close):
		m.screen = browsing
		return m, nil
	case key.Matches(msg, m.keys.Submit):
		if m.submitting {
			return m, nil
		}
		m.submitting = true
		m.status = ""
		return m, m.sendAppEvent(catalogevents.SubmitRequested{Candidate: m.form.candidate()})
	case key.Matches(msg, m.keys.NextField):
		return m, m.form.next()
	case key.Matches(msg, m.keys.PrevField):
		return m, m.form.prev()
	case m.form.onTypeField() && key.Matches(msg, m.keys.CycleType):
		m.form.cycleType()
		return m, nil
	}

	var cmd tea.Cmd
	m.form, cmd = m.form.update(msg)
	return m, cmd
}

func (m model) View() string {
	var b strings.Builder
	header := style.TitleStyle.Render("Stage Catalog")
	if m.source != "" {
		header += "  " + style.HighlightFontStyle.Render(m.source)
	}
	b.WriteString(header + "\n\n")
	b.WriteString(m.tabsView() + "\n\n")

	switch m.screen {
	case adding:
		b.WriteString(m.form.view() + "\n")
		if m.submitting {
			b.WriteString(fmt.Sprintf("%s Saving...\n", m.spinner.View()))
		}
	default:
		if len(m.events) == 0 && !m.loading {
			b.WriteString(fmt.Sprintf("No %s events.\n", m.filterLabel()))
		} else {
			b.WriteString(style.BaseStyle.Render(m.table.View()) + "\n")
		}
		if m.loading {
			b.WriteString(fmt.Sprintf("%s Loading %s events...\n", m.spinner.View(), m.filterLabel()))
		}
	}

	b.WriteString(m.statusView())
	b.WriteString("\n" + m.helpView())
	return style.DocStyle.Render(b.String())
}

func (m model) filterLabel() string {
	if m.filter == catalog.FilterAll {
		return "upcoming"
	}
	return string(m.filter)
}

func (m model) tabsView() string {
	tabs := make([]string, 0, len(catalog.Filters))
	for i, f := range catalog.Filters {
		label := fmt.Sprintf("%d %s", i+1, f)
		if f == m.filter {
			tabs = append(tabs, style.ActiveTabStyle.Render(label))
		} else {
			tabs = append(tabs, style.InactiveTabStyle.Render(label))
		}
	}
	return strings.Join(tabs, " ")
}

func (m model) statusView() string {
	switch {
	case m.err != nil:
		return style.ErrorStyle.Render("Error: "+m.err.Error()) + "\n"
	case m.status != "":
		return style.SuccessStyle.Render(m.status) + "\n"
	}
	return ""
}

func (m model) helpView() string {
	if m.screen == adding {
		return style.HelpStyle.Render(m.help.View(formKeys{m.keys}))
	}
	return style.HelpStyle.Render(m.help.View(browseKeys{m.keys}))
}
