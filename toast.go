package main

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/bookingdesk/payperiod/internal/workperiods"
)

// toastLifetime is how long a toast stays in the status area.
const toastLifetime = 5 * time.Second

type activeToast struct {
	toast   workperiods.Toast
	expires time.Time
}

// pushToast appends a toast and schedules the prune tick that retires it.
func (m *model) pushToast(t workperiods.Toast) tea.Cmd {
	m.toasts = append(m.toasts, activeToast{
		toast:   t,
		expires: time.Now().Add(toastLifetime),
	})
	return tea.Tick(toastLifetime, func(at time.Time) tea.Msg {
		return toastTickMsg{at: at}
	})
}

// pruneToasts drops every toast that expired at or before now.
func (m *model) pruneToasts(now time.Time) {
	kept := m.toasts[:0]
	for _, t := range m.toasts {
		if t.expires.After(now) {
			kept = append(kept, t)
		}
	}
	m.toasts = kept
}

// latestToast returns the toast to show in the status bar, newest first.
func (m *model) latestToast() (workperiods.Toast, bool) {
	if len(m.toasts) == 0 {
		return workperiods.Toast{}, false
	}
	return m.toasts[len(m.toasts)-1].toast, true
}
