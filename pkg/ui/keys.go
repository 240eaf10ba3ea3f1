package ui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	NextFilter key.Binding
	All        key.Binding
	Opera      key.Binding
	Ballet     key.Binding
	Up         key.Binding
	Down       key.Binding
	Add        key.Binding
	Refresh    key.Binding
	Help       key.Binding
	Quit       key.Binding

	// Add form
	Submit    key.Binding
	Close     key.Binding
	NextField key.Binding
	PrevField key.Binding
	CycleType key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		NextFilter: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next filter")),
		All:        key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "all")),
		Opera:      key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "opera")),
		Ballet:     key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "ballet")),
		Up:         key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:       key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Add:        key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add event")),
		Refresh:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Help:       key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more")),
		Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),

		Submit:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "submit")),
		Close:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close")),
		NextField: key.NewBinding(key.WithKeys("tab", "down"), key.WithHelp("tab", "next field")),
		PrevField: key.NewBinding(key.WithKeys("shift+tab", "up"), key.WithHelp("shift+tab", "previous field")),
		CycleType: key.NewBinding(key.WithKeys("left", "right"), key.WithHelp("←/→", "opera/ballet")),
	}
}

// browseKeys is the help shown over the event table.
type browseKeys struct{ keyMap }

func (k browseKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.NextFilter, k.Add, k.Refresh, k.Help, k.Quit}
}

func (k browseKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.NextFilter, k.All, k.Opera, k.Ballet},
		{k.Up, k.Down},
		{k.Add, k.Refresh, k.Help, k.Quit},
	}
}

// formKeys is the help shown under the add form.
type formKeys struct{ keyMap }

func (k formKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Submit, k.NextField, k.PrevField, k.CycleType, k.Close}
}

func (k formKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}
