package catalog

import (
	appevents "github.com/rescp17/stageCatalog/internal/app_events"
	"github.com/rescp17/stageCatalog/pkg/catalog"
)

// --- Actions (state transitions) ---

// SetFilter changes which kind of events is shown. It does not fetch anything
// by itself; the fetch coordinator reacts to the new filter.
type SetFilter struct {
	appevents.Transition
	Value catalog.Filter
}

// SetEvents replaces the whole event list with the store's answer.
type SetEvents struct {
	appevents.Transition
	List []catalog.Event
}

// AddEvent appends one event echoed back by the store after a submission.
type AddEvent struct {
	appevents.Transition
	Item catalog.Event
}

var (
	_ appevents.Action = SetFilter{}
	_ appevents.Action = SetEvents{}
	_ appevents.Action = AddEvent{}
)

// --- App Events (from TUI to App) ---

// FilterSelected asks the app to switch the visible kind of events.
type FilterSelected struct {
	appevents.Event
	Value catalog.Filter
}

// RefreshRequested asks the app to query the store again for the live filter.
type RefreshRequested struct {
	appevents.Event
}

// SubmitRequested carries the add form's contents.
type SubmitRequested struct {
	appevents.Event
	Candidate catalog.Candidate
}

var (
	_ appevents.AppEvent = FilterSelected{}
	_ appevents.AppEvent = RefreshRequested{}
	_ appevents.AppEvent = SubmitRequested{}
)

// --- UI Messages (from App to TUI) ---

// StateChangedMsg carries the state produced by the latest transition.
type StateChangedMsg struct {
	appevents.UIMessage
	Events        []catalog.Event
	CurrentFilter catalog.Filter
}

// FetchStartedMsg is sent when the coordinator issues a query. Pending counts
// the queries still unresolved, this one included.
type FetchStartedMsg struct {
	appevents.UIMessage
	Filter  catalog.Filter
	Pending int
}

// FetchFinishedMsg is sent when a query resolves, whatever its outcome. Err is
// set only when the query failed while it was still current.
type FetchFinishedMsg struct {
	appevents.UIMessage
	Filter  catalog.Filter
	Pending int
	Err     error
}

// SubmitSucceededMsg is sent once the store has echoed a new event.
type SubmitSucceededMsg struct {
	appevents.UIMessage
	Event catalog.Event
}

// SubmitFailedMsg is sent when a submission was rejected or could not reach the store.
type SubmitFailedMsg struct {
	appevents.UIMessage
	Err error
}

var (
	_ appevents.AppUIMessage = StateChangedMsg{}
	_ appevents.AppUIMessage = FetchStartedMsg{}
	_ appevents.AppUIMessage = FetchFinishedMsg{}
	_ appevents.AppUIMessage = SubmitSucceededMsg{}
	_ appevents.AppUIMessage = SubmitFailedMsg{}
	_ appevents.AppUIMessage = appevents.AppErrorMsg{}
)
