package app

import (
	appevents "github.com/rescp17/stageCatalog/internal/app_events"
	catalogevents "github.com/rescp17/stageCatalog/internal/app_events/catalog"
	"github.com/rescp17/stageCatalog/pkg/catalog"
)

// State is the single application state shared by every view.
// A State value is never modified in place: Reduce always builds a new one,
// so a State obtained from the store may be read freely but must not be mutated.
type State struct {
	Events        []catalog.Event // in the order the store returned them
	CurrentFilter catalog.Filter
}

// InitialState returns the state a session starts with: no events, showing all kinds.
func InitialState() State {
	return State{
		Events:        []catalog.Event{},
		CurrentFilter: catalog.FilterAll,
	}
}

// SelectFilter is the read projection of the filter currently shown.
func SelectFilter(s State) catalog.Filter {
	return s.CurrentFilter
}

// Reduce returns the state that results from applying action to state.
// It has no side effects, never panics and leaves its input untouched.
// Unknown actions, and filters outside the closed set, yield state unchanged.
func Reduce(state State, action appevents.Action) State {
	switch a := action.(type) {
	case catalogevents.SetFilter:
		if !a.Value.Valid() {
			return state
		}
		state.CurrentFilter = a.Value
		return state

	case catalogevents.SetEvents:
		state.Events = cloneEvents(a.List)
		return state

	case catalogevents.AddEvent:
		events := make([]catalog.Event, len(state.Events), len(state.Events)+1)
		copy(events, state.Events)
		state.Events = append(events, a.Item)
		return state

	case *catalogevents.SetFilter:
		if a != nil {
			return Reduce(state, *a)
		}
	case *catalogevents.SetEvents:
		if a != nil {
			return Reduce(state, *a)
		}
	case *catalogevents.AddEvent:
		if a != nil {
			return Reduce(state, *a)
		}
	}
	return state
}

func cloneEvents(list []catalog.Event) []catalog.Event {
	if list == nil {
		return nil
	}
	out := make([]catalog.Event, len(list))
	copy(out, list)
	return out
}
