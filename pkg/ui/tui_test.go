package ui

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appevents "github.com/rescp17/stageCatalog/internal/app_events"
	catalogevents "github.com/rescp17/stageCatalog/internal/app_events/catalog"
	"github.com/rescp17/stageCatalog/pkg/catalog"
)

type fakeController struct {
	ui     chan tea.Msg
	events chan appevents.AppEvent
}

func newFakeController() *fakeController {
	return &fakeController{
		ui:     make(chan tea.Msg, 4),
		events: make(chan appevents.AppEvent, 4),
	}
}

func (f *fakeController) UIMessages() <-chan tea.Msg            { return f.ui }
func (f *fakeController) AppEvents() chan<- appevents.AppEvent { return f.events }

func update(t *testing.T, m model, msg tea.Msg) (model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(model)
	require.True(t, ok)
	return nm, cmd
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// sentEvent runs cmd and returns the event it handed to the controller.
func sentEvent(t *testing.T, f *fakeController, cmd tea.Cmd) appevents.AppEvent {
	t.Helper()
	require.NotNil(t, cmd)
	cmd()
	select {
	case e := <-f.events:
		return e
	default:
		t.Fatal("no event was sent to the app")
		return nil
	}
}

var events = []catalog.Event{
	{ID: "1", Title: "Tosca", Date: "July 4", Time: "19:00", Cover: "tosca.jpg", Composer: "Puccini", Type: catalog.KindOpera},
	{ID: "2", Title: "Giselle", Date: "July 6", Time: "20:00", Cover: "giselle.jpg", Composer: "Adam", Type: catalog.KindBallet},
}

func TestStateChangedFillsTable(t *testing.T) {
	m := InitialModel(newFakeController(), "")
	m, cmd := update(t, m, catalogevents.StateChangedMsg{Events: events, CurrentFilter: catalog.FilterAll})

	assert.NotNil(t, cmd, "the model keeps listening for app messages")
	rows := m.table.Rows()
	require.Len(t, rows, 2)
	assert.Equal(t, "Tosca", rows[0][0])
	assert.Equal(t, "ballet", rows[1][4])
	assert.Contains(t, m.View(), "Giselle")
}

func TestFilterKeysSendSelection(t *testing.T) {
	f := newFakeController()
	m := InitialModel(f, "")

	_, cmd := update(t, m, runes("3"))
	assert.Equal(t, catalogevents.FilterSelected{Value: catalog.FilterBallet}, sentEvent(t, f, cmd))

	_, cmd = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, catalogevents.FilterSelected{Value: catalog.FilterOpera}, sentEvent(t, f, cmd))

	_, cmd = update(t, m, runes("1"))
	assert.Nil(t, cmd, "selecting the live filter again does nothing")
}

func TestRefreshKey(t *testing.T) {
	f := newFakeController()
	m := InitialModel(f, "")
	_, cmd := update(t, m, runes("r"))
	assert.Equal(t, catalogevents.RefreshRequested{}, sentEvent(t, f, cmd))
}

func TestAddFormSubmitsCandidate(t *testing.T) {
	f := newFakeController()
	m := InitialModel(f, "")

	m, _ = update(t, m, runes("a"))
	require.Equal(t, adding, m.screen)

	m, _ = update(t, m, runes("Carmen"))
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRight})

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.True(t, m.submitting)
	req, ok := sentEvent(t, f, cmd).(catalogevents.SubmitRequested)
	require.True(t, ok)
	assert.Equal(t, "Carmen", req.Candidate.Title)
	assert.Equal(t, catalog.KindBallet, req.Candidate.Type)

	_, cmd = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd, "no second submission while one is in flight")
}

func TestQuitKeyTypesIntoForm(t *testing.T) {
	m := InitialModel(newFakeController(), "")
	m, _ = update(t, m, runes("a"))
	m, _ = update(t, m, runes("q"))

	assert.Equal(t, adding, m.screen)
	assert.Equal(t, "q", m.form.candidate().Title)
}

func TestFailedSubmissionKeepsForm(t *testing.T) {
	m := InitialModel(newFakeController(), "")
	m, _ = update(t, m, runes("a"))
	m, _ = update(t, m, runes("Carmen"))
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	verr := catalog.Candidate{Title: "Carmen", Type: catalog.KindOpera}.Validate()
	require.Error(t, verr)
	m, _ = update(t, m, catalogevents.SubmitFailedMsg{Err: verr})

	assert.False(t, m.submitting)
	assert.Equal(t, adding, m.screen)
	assert.Equal(t, "Carmen", m.form.candidate().Title)
	assert.Equal(t, 1, m.form.focus, "focus moves to the first bad field")
	assert.Contains(t, m.View(), "Date is required")

	m, _ = update(t, m, catalogevents.SubmitFailedMsg{Err: errors.New("connection refused")})
	assert.Equal(t, "Carmen", m.form.candidate().Title)
	assert.Contains(t, m.View(), "connection refused")
}

func TestSuccessfulSubmissionClosesForm(t *testing.T) {
	m := InitialModel(newFakeController(), "")
	m, _ = update(t, m, runes("a"))
	m, _ = update(t, m, runes("Carmen"))
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	m, _ = update(t, m, catalogevents.SubmitSucceededMsg{Event: catalog.Event{ID: "42", Title: "Carmen"}})

	assert.Equal(t, browsing, m.screen)
	assert.False(t, m.submitting)
	assert.Empty(t, m.form.candidate().Title)
	assert.Contains(t, m.View(), "Added Carmen")
}

func TestEscClosesForm(t *testing.T) {
	m := InitialModel(newFakeController(), "")
	m, _ = update(t, m, runes("a"))
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, browsing, m.screen)
}

func TestFetchErrorShownInStatusLine(t *testing.T) {
	m := InitialModel(newFakeController(), "")
	m, _ = update(t, m, catalogevents.FetchStartedMsg{Filter: catalog.FilterAll, Pending: 1})
	assert.True(t, m.loading)

	m, _ = update(t, m, catalogevents.FetchFinishedMsg{Filter: catalog.FilterAll, Err: errors.New("timeout")})
	assert.False(t, m.loading)
	assert.Contains(t, m.View(), "could not load all events: timeout")

	m, _ = update(t, m, catalogevents.FetchFinishedMsg{Filter: catalog.FilterAll})
	assert.NotContains(t, m.View(), "timeout")
}
