package appevents

// Action is a marker interface for requests to transform application state.
// It uses an unexported method so that only types embedding Transition can
// satisfy it, which keeps the set of actions closed to this module.
type Action interface {
	isAction()
}

// Transition is embedded in every action type to satisfy the Action interface.
type Transition struct{}

// isAction is the marker method that makes a struct an Action.
func (Transition) isAction() {}

// AppEvent is a marker interface for requests sent from the TUI to the App.
type AppEvent interface {
	isAppEvent()
}

// Event is a base struct that can be embedded in other types to implement the AppEvent interface.
type Event struct{}

func (Event) isAppEvent() {}

// AppUIMessage is a marker interface for messages sent from the App's logic controller to the TUI.
type AppUIMessage interface {
	isUIMessage()
}

// UIMessage is a base struct that can be embedded in other types to implement the AppUIMessage interface.
type UIMessage struct{}

func (UIMessage) isUIMessage() {}

// For messages from the App to the TUI
type AppErrorMsg struct {
	UIMessage
	Op  string
	Err error
}
