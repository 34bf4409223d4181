package main

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
)

type keyMap struct {
	UpDown    key.Binding
	Select    key.Binding
	SelectAll key.Binding
	Details   key.Binding
	Days      key.Binding
	History   key.Binding
	Billing   key.Binding
	Pay       key.Binding
	Filter    key.Binding
	Sort      key.Binding
	SortDir   key.Binding
	PrevNext  key.Binding
	Reload    key.Binding
	Quit      key.Binding
	Confirm   key.Binding
	Cancel    key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		UpDown:    key.NewBinding(key.WithKeys("up", "down", "j", "k"), key.WithHelp("j/k", "navigate")),
		Select:    key.NewBinding(key.WithKeys(" ", "space"), key.WithHelp("space", "select")),
		SelectAll: key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "select all")),
		Details:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "details")),
		Days:      key.NewBinding(key.WithKeys("+", "-", "0", "1", "2", "3", "4", "5"), key.WithHelp("+/-/0-5", "days")),
		History:   key.NewBinding(key.WithKeys("J", "K"), key.WithHelp("J/K", "history row")),
		Billing:   key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "billing acct")),
		Pay:       key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "pay")),
		Filter:    key.NewBinding(key.WithKeys("f", "/"), key.WithHelp("f", "filter")),
		Sort:      key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sort")),
		SortDir:   key.NewBinding(key.WithKeys("S"), key.WithHelp("S", "sort dir")),
		PrevNext:  key.NewBinding(key.WithKeys("[", "]"), key.WithHelp("[/]", "page")),
		Reload:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Confirm:   key.NewBinding(key.WithKeys("enter", "y"), key.WithHelp("enter", "confirm")),
		Cancel:    key.NewBinding(key.WithKeys("esc", "n"), key.WithHelp("esc", "cancel")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.UpDown, k.Select, k.Details, k.Days, k.Pay, k.Filter, k.PrevNext, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.UpDown, k.Select, k.SelectAll, k.Details, k.History},
		{k.Days, k.Billing, k.Pay, k.Filter, k.Sort, k.SortDir},
		{k.PrevNext, k.Reload, k.Quit},
	}
}

type confirmKeyMap struct {
	keyMap
}

func (k confirmKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Confirm, k.Cancel}
}

func renderHelp(bindings []key.Binding) string {
	parts := make([]string, 0, len(bindings))
	for _, binding := range bindings {
		help := binding.Help()
		if help.Key == "" && help.Desc == "" {
			continue
		}
		parts = append(parts, boldKey(help.Key)+" "+help.Desc)
	}
	return strings.Join(parts, "  ")
}

func boldKey(text string) string {
	if text == "" {
		return ""
	}
	return "\x1b[1m" + text + "\x1b[22m"
}
