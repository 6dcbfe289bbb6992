package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all keyboard bindings for the console.
type keyMap struct {
	// Global
	Quit       key.Binding
	Help       key.Binding
	CycleTheme key.Binding
	Tab        key.Binding
	ShiftTab   key.Binding
	Refresh    key.Binding
	Profile    key.Binding

	// View switching
	ViewDashboard key.Binding
	ViewUsers     key.Binding
	ViewInterests key.Binding
	ViewEvents    key.Binding
	ViewPlans     key.Binding
	ViewTerms     key.Binding
	ViewLogs      key.Binding

	// Navigation
	Up     key.Binding
	Down   key.Binding
	Top    key.Binding
	Bottom key.Binding

	// List actions
	Search      key.Binding
	CycleFilter key.Binding
	Toggle      key.Binding
	New         key.Binding
	Edit        key.Binding
	Delete      key.Binding
	ConfirmYes  key.Binding

	// Forms and prompts
	Confirm   key.Binding
	Cancel    key.Binding
	NextField key.Binding
	PrevField key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "q"),
			key.WithHelp("q", "Quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "Toggle help"),
		),
		CycleTheme: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "Cycle theme"),
		),
		Tab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "Next view"),
		),
		ShiftTab: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "Previous view"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "Refresh / retry"),
		),
		Profile: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "Edit profile"),
		),

		ViewDashboard: key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "Dashboard")),
		ViewUsers:     key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "Users")),
		ViewInterests: key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "Interests")),
		ViewEvents:    key.NewBinding(key.WithKeys("4"), key.WithHelp("4", "Events")),
		ViewPlans:     key.NewBinding(key.WithKeys("5"), key.WithHelp("5", "Plans")),
		ViewTerms:     key.NewBinding(key.WithKeys("6"), key.WithHelp("6", "Terms")),
		ViewLogs:      key.NewBinding(key.WithKeys("7"), key.WithHelp("7", "Logs")),

		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/up", "Move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/down", "Move down"),
		),
		Top: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "Go to top"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "Go to bottom"),
		),

		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "Search"),
		),
		CycleFilter: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "Cycle status / level filter"),
		),
		Toggle: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "Toggle status"),
		),
		New: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "New"),
		),
		Edit: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "Edit"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "Delete"),
		),
		ConfirmYes: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "Confirm delete"),
		),

		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "Confirm / submit"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "Cancel"),
		),
		NextField: key.NewBinding(
			key.WithKeys("tab", "down"),
			key.WithHelp("tab", "Next field"),
		),
		PrevField: key.NewBinding(
			key.WithKeys("shift+tab", "up"),
			key.WithHelp("shift+tab", "Previous field"),
		),
	}
}

// ShortHelp returns key bindings for the footer.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Tab, k.Search, k.New, k.Edit, k.Toggle, k.Delete, k.Refresh, k.Help, k.Quit}
}

// FullHelp returns key bindings for the help overlay, one column per group.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.ViewDashboard, k.ViewUsers, k.ViewInterests, k.ViewEvents, k.ViewPlans, k.ViewTerms, k.ViewLogs, k.Tab},
		{k.Up, k.Down, k.Top, k.Bottom, k.Search, k.CycleFilter},
		{k.New, k.Edit, k.Toggle, k.Delete, k.ConfirmYes, k.Refresh},
		{k.Profile, k.CycleTheme, k.Help, k.Quit},
	}
}
