package main

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"

	"github.com/bookingdesk/payperiod/internal/workperiods"
)

// uiMode is the input focus of the console.
type uiMode int

const (
	modeTable uiMode = iota
	modeHistory
	modeFilter
	modeConfirmPay
)

type model struct {
	store *workperiods.Store
	snap  workperiods.State

	mode          uiMode
	cursor        int
	topIndex      int
	historyCursor int

	width  int
	height int

	spinner     spinner.Model
	filterInput textinput.Model
	toasts      []activeToast
	keys        keyMap
	confirmKeys confirmKeyMap
	dateFormat  string
	status      string
}

// coreEventMsg wraps a store event for the update loop.
type coreEventMsg struct {
	event workperiods.Event
}

// paymentsDoneMsg reports that a payment run returned.
type paymentsDoneMsg struct {
	err error
}

// toastTickMsg prunes expired toasts.
type toastTickMsg struct {
	at time.Time
}

func newModel(store *workperiods.Store, dateFormat string) model {
	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = lipgloss.NewStyle().Foreground(colorAccent)

	input := textinput.New()
	input.Prompt = "filter> "
	input.PromptStyle = promptStyle
	input.Placeholder = "handle:<text> date:<yyyy-mm-dd> status:<pending,paid,...> sort:<field> [asc|desc]"
	input.CharLimit = 120

	return model{
		store:       store,
		snap:        store.Snapshot(),
		spinner:     sp,
		filterInput: input,
		keys:        newKeyMap(),
		confirmKeys: confirmKeyMap{keyMap: newKeyMap()},
		dateFormat:  dateFormat,
	}
}

// currentPeriod returns the row under the cursor, nil when the page is empty.
func (m *model) currentPeriod() *workperiods.Period {
	if m.cursor < 0 || m.cursor >= len(m.snap.Periods) {
		return nil
	}
	return &m.snap.Periods[m.cursor]
}

// currentDetails returns the expanded detail panel of the cursor row, nil
// when collapsed.
func (m *model) currentDetails() *workperiods.Details {
	p := m.currentPeriod()
	if p == nil {
		return nil
	}
	d, ok := m.snap.Details[p.ID]
	if !ok {
		return nil
	}
	return d
}

func (m *model) visibleRows() int {
	if m.height == 0 {
		return 10
	}
	// header + column row + status + footer + pagination line
	available := m.height - 6
	if d := m.currentDetails(); d != nil {
		available -= detailHeight(d)
	}
	if available < 3 {
		available = 3
	}
	return available
}

func (m *model) ensureCursorInWindow() {
	if m.cursor < 0 {
		m.cursor = 0
	}
	if m.cursor >= len(m.snap.Periods) && len(m.snap.Periods) > 0 {
		m.cursor = len(m.snap.Periods) - 1
	}
	visible := m.visibleRows()
	if visible <= 0 {
		return
	}
	if m.cursor < m.topIndex {
		m.topIndex = m.cursor
	} else if m.cursor >= m.topIndex+visible {
		m.topIndex = m.cursor - visible + 1
	}
	maxTop := len(m.snap.Periods) - visible
	if maxTop < 0 {
		maxTop = 0
	}
	if m.topIndex > maxTop {
		m.topIndex = maxTop
	}
	if m.topIndex < 0 {
		m.topIndex = 0
	}
}
