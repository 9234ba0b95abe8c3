package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the dashboard.
type keyMap struct {
	up       key.Binding
	down     key.Binding
	toggle   key.Binding
	status   key.Binding
	raise    key.Binding
	lower    key.Binding
	edit     key.Binding
	remove   key.Binding
	add      key.Binding
	cycle    key.Binding
	art      key.Binding
	yes      key.Binding
	no       key.Binding
	save     key.Binding
	back     key.Binding
	refresh  key.Binding
	logout   key.Binding
	showHelp key.Binding
	quit     key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		toggle:   key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "expand")),
		status:   key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "next status")),
		raise:    key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "raise priority")),
		lower:    key.NewBinding(key.WithKeys("-", "_"), key.WithHelp("-", "lower priority")),
		edit:     key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
		remove:   key.NewBinding(key.WithKeys("x", "delete"), key.WithHelp("x", "delete")),
		add:      key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add task")),
		cycle:    key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "priority")),
		art:      key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "open cover art")),
		yes:      key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "yes")),
		no:       key.NewBinding(key.WithKeys("n", "esc"), key.WithHelp("n", "no")),
		save:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "save")),
		back:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		refresh:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		logout:   key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "logout")),
		showHelp: key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.toggle, k.status, k.add, k.showHelp, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.toggle},
		{k.status, k.raise, k.lower},
		{k.edit, k.remove, k.add},
		{k.art, k.refresh, k.logout},
		{k.showHelp, k.quit},
	}
}
