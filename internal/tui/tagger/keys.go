package tagger

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	up             key.Binding
	down           key.Binding
	toggle         key.Binding
	expand         key.Binding
	collapse       key.Binding
	toggleExpand   key.Binding
	selectAll      key.Binding
	unselectAll    key.Binding
	togglePreview  key.Binding
	nextFocus      key.Binding
	prevFocus      key.Binding
	nextSuggestion key.Binding
	prevSuggestion key.Binding
	accept         key.Binding
	dismiss        key.Binding
	submit         key.Binding
	quit           key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		toggle: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "select"),
		),
		expand: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "expand"),
		),
		collapse: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "collapse"),
		),
		toggleExpand: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("↵", "expand/collapse"),
		),
		selectAll: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "select all"),
		),
		unselectAll: key.NewBinding(
			key.WithKeys("A"),
			key.WithHelp("A", "unselect all"),
		),
		togglePreview: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "toggle preview"),
		),
		nextFocus: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next field"),
		),
		prevFocus: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "previous field"),
		),
		nextSuggestion: key.NewBinding(
			key.WithKeys("ctrl+n", "down"),
			key.WithHelp("ctrl+n", "next suggestion"),
		),
		prevSuggestion: key.NewBinding(
			key.WithKeys("ctrl+p", "up"),
			key.WithHelp("ctrl+p", "previous suggestion"),
		),
		accept: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("↵", "use suggestion"),
		),
		dismiss: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "close"),
		),
		submit: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "save"),
		),
		quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
	}
}
