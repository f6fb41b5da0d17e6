package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	up      key.Binding
	down    key.Binding
	enter   key.Binding
	esc     key.Binding
	quit    key.Binding
	newItem key.Binding
	addCard key.Binding
	delete  key.Binding
	sync    key.Binding
	resync  key.Binding
	copy    key.Binding
}

var keys = keyMap{
	up:      key.NewBinding(key.WithKeys("up", "k")),
	down:    key.NewBinding(key.WithKeys("down", "j")),
	enter:   key.NewBinding(key.WithKeys("enter")),
	esc:     key.NewBinding(key.WithKeys("esc")),
	quit:    key.NewBinding(key.WithKeys("q", "ctrl+c")),
	newItem: key.NewBinding(key.WithKeys("n")),
	addCard: key.NewBinding(key.WithKeys("a")),
	delete:  key.NewBinding(key.WithKeys("d")),
	sync:    key.NewBinding(key.WithKeys("s")),
	resync:  key.NewBinding(key.WithKeys("r")),
	copy:    key.NewBinding(key.WithKeys("c")),
}
