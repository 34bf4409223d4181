package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/bookingdesk/payperiod/internal/workperiods"
)

func (m model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		func() tea.Msg {
			m.store.LoadPage(1)
			return nil
		},
	)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case coreEventMsg:
		switch ev := msg.event.(type) {
		case workperiods.Updated:
			m.snap = m.store.Snapshot()
			m.ensureCursorInWindow()
			m.clampHistoryCursor()
			return m, nil
		case workperiods.ToastEvent:
			return m, m.pushToast(ev.Toast)
		}
		return m, nil

	case paymentsDoneMsg:
		// Outcome toasts arrive through the sink; only unexpected refusals
		// need surfacing here.
		if msg.err == workperiods.ErrPaymentsInProgress {
			m.status = "A payment run is already in progress."
		}
		return m, nil

	case toastTickMsg:
		m.pruneToasts(msg.at)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ensureCursorInWindow()
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case modeFilter:
			return m.updateFilter(msg)
		case modeConfirmPay:
			return m.updateConfirmPay(msg)
		case modeHistory:
			return m.updateHistory(msg)
		default:
			return m.updateTable(msg)
		}
	}

	return m, nil
}

func (m model) updateTable(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		m.store.Close()
		return m, tea.Quit

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
			m.ensureCursorInWindow()
		}
		return m, nil
	case "down", "j":
		if m.cursor < len(m.snap.Periods)-1 {
			m.cursor++
			m.ensureCursorInWindow()
		}
		return m, nil

	case " ", "space":
		if p := m.currentPeriod(); p != nil {
			m.store.ToggleSelect(p.ID)
		}
		return m, nil
	case "a":
		m.store.ToggleSelectAll()
		return m, nil

	case "enter":
		if p := m.currentPeriod(); p != nil {
			m.store.ToggleDetails(p.ID, nil)
		}
		return m, nil

	case "+", "=":
		if p := m.currentPeriod(); p != nil {
			m.store.SetWorkingDays(p.ID, p.DaysWorked+1)
		}
		return m, nil
	case "-":
		if p := m.currentPeriod(); p != nil {
			m.store.SetWorkingDays(p.ID, p.DaysWorked-1)
		}
		return m, nil
	case "0", "1", "2", "3", "4", "5":
		if p := m.currentPeriod(); p != nil {
			m.store.SetWorkingDays(p.ID, int(msg.String()[0]-'0'))
		}
		return m, nil

	case "J", "K":
		if d := m.currentDetails(); d != nil && len(d.Periods) > 0 {
			m.mode = modeHistory
			m.historyCursor = 0
		}
		return m, nil

	case "b":
		m.cycleBillingAccount()
		return m, nil

	case "p":
		if m.paySelectionCount() == 0 {
			m.status = "Nothing selected."
			return m, nil
		}
		m.mode = modeConfirmPay
		return m, nil

	case "f", "/":
		m.mode = modeFilter
		m.filterInput.SetValue(filterPromptValue(m.snap.Filters, m.snap.Sorting))
		m.filterInput.CursorEnd()
		m.filterInput.Focus()
		return m, nil

	case "s":
		m.store.SetSorting(workperiods.Sorting{
			Criteria: nextSortCriteria(m.snap.Sorting.Criteria),
			Order:    m.snap.Sorting.Order,
		})
		return m, nil
	case "S":
		order := workperiods.SortAsc
		if m.snap.Sorting.Order == workperiods.SortAsc {
			order = workperiods.SortDesc
		}
		m.store.SetSorting(workperiods.Sorting{Criteria: m.snap.Sorting.Criteria, Order: order})
		return m, nil

	case "[":
		if m.snap.Pagination.PageNumber > 1 {
			m.store.LoadPage(m.snap.Pagination.PageNumber - 1)
		}
		return m, nil
	case "]":
		if m.snap.Pagination.PageNumber < m.snap.Pagination.PageCount {
			m.store.LoadPage(m.snap.Pagination.PageNumber + 1)
		}
		return m, nil

	case "r":
		m.store.LoadPage(0)
		return m, nil
	}
	return m, nil
}

func (m model) updateHistory(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	d := m.currentDetails()
	if d == nil {
		m.mode = modeTable
		return m, nil
	}
	switch msg.String() {
	case "ctrl+c":
		m.store.Close()
		return m, tea.Quit
	case "esc", "q":
		m.mode = modeTable
		return m, nil
	case "up", "k", "K":
		if m.historyCursor > 0 {
			m.historyCursor--
		}
		return m, nil
	case "down", "j", "J":
		if m.historyCursor < len(d.Periods)-1 {
			m.historyCursor++
		}
		return m, nil
	case "+", "=":
		if row := m.currentHistoryRow(d); row != nil {
			m.store.SetHistoryWorkingDays(d.PeriodID, row.ID, row.DaysWorked+1)
		}
		return m, nil
	case "-":
		if row := m.currentHistoryRow(d); row != nil {
			m.store.SetHistoryWorkingDays(d.PeriodID, row.ID, row.DaysWorked-1)
		}
		return m, nil
	case "0", "1", "2", "3", "4", "5":
		if row := m.currentHistoryRow(d); row != nil {
			m.store.SetHistoryWorkingDays(d.PeriodID, row.ID, int(msg.String()[0]-'0'))
		}
		return m, nil
	}
	return m, nil
}

func (m *model) currentHistoryRow(d *workperiods.Details) *workperiods.Period {
	if m.historyCursor < 0 || m.historyCursor >= len(d.Periods) {
		return nil
	}
	return &d.Periods[m.historyCursor]
}

func (m *model) clampHistoryCursor() {
	d := m.currentDetails()
	if d == nil {
		if m.mode == modeHistory {
			m.mode = modeTable
		}
		return
	}
	if m.historyCursor >= len(d.Periods) {
		m.historyCursor = len(d.Periods) - 1
	}
	if m.historyCursor < 0 {
		m.historyCursor = 0
	}
}

func (m model) updateConfirmPay(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "y":
		m.mode = modeTable
		store := m.store
		return m, func() tea.Msg {
			return paymentsDoneMsg{err: store.ProcessPayments()}
		}
	case "esc", "n", "q":
		m.mode = modeTable
		return m, nil
	case "ctrl+c":
		m.store.Close()
		return m, tea.Quit
	}
	return m, nil
}

func (m model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m.store.Close()
		return m, tea.Quit
	case "esc":
		m.mode = modeTable
		m.filterInput.Blur()
		return m, nil
	case "enter":
		filters, sorting, warnings := parseFilterPrompt(m.filterInput.Value(), m.snap.Filters, m.snap.Sorting)
		m.mode = modeTable
		m.filterInput.Blur()
		m.status = strings.Join(warnings, " ")
		if sorting != m.snap.Sorting {
			m.store.SetSorting(sorting)
		}
		m.store.SetFilters(filters)
		return m, nil
	}
	var cmd tea.Cmd
	m.filterInput, cmd = m.filterInput.Update(msg)
	return m, cmd
}

// paySelectionCount is what the confirmation dialog reports: the whole
// filtered set when select-all spans pages, otherwise the explicit selection.
func (m *model) paySelectionCount() int {
	if m.snap.SelectAll && m.snap.Pagination.TotalCount > m.snap.Pagination.PageSize {
		return m.snap.Pagination.TotalCount
	}
	return len(m.snap.SelectedIDs())
}

func (m *model) cycleBillingAccount() {
	p := m.currentPeriod()
	d := m.currentDetails()
	if p == nil || d == nil || len(d.BillingAccounts) == 0 {
		return
	}
	next := d.BillingAccounts[0].Value
	for i, opt := range d.BillingAccounts {
		if opt.Value == d.BillingAccountID {
			next = d.BillingAccounts[(i+1)%len(d.BillingAccounts)].Value
			break
		}
	}
	m.store.SetBillingAccount(p.ID, p.RBID, next)
}

func nextSortCriteria(current workperiods.SortBy) workperiods.SortBy {
	cycle := workperiods.SortCycle()
	for i, c := range cycle {
		if c == current {
			return cycle[(i+1)%len(cycle)]
		}
	}
	return cycle[0]
}

// filterPromptValue renders the active filters back into prompt syntax so
// editing starts from the current state.
func filterPromptValue(f workperiods.Filters, s workperiods.Sorting) string {
	var parts []string
	if f.UserHandle != "" {
		parts = append(parts, "handle:"+f.UserHandle)
	}
	if !f.StartDate.IsZero() {
		parts = append(parts, "date:"+f.StartDate.Format(workperiods.DateFormatAPI))
	}
	var statuses []string
	for _, status := range workperiods.Statuses() {
		if f.PaymentStatuses[status] {
			statuses = append(statuses, string(status))
		}
	}
	if len(statuses) > 0 {
		parts = append(parts, "status:"+strings.Join(statuses, ","))
	}
	parts = append(parts, "sort:"+string(s.Criteria), string(s.Order))
	return strings.Join(parts, " ")
}

// parseFilterPrompt applies the prompt tokens on top of the current filters
// and sorting. Unknown or misspelled status and sort tokens get a
// did-you-mean correction; tokens that cannot be resolved are reported as
// warnings and skipped. A bare token filters by user handle.
func parseFilterPrompt(input string, base workperiods.Filters, sorting workperiods.Sorting) (workperiods.Filters, workperiods.Sorting, []string) {
	filters := workperiods.Filters{
		StartDate:       base.StartDate,
		PaymentStatuses: make(map[workperiods.Status]bool),
	}
	var warnings []string

	for _, token := range strings.Fields(input) {
		key, value, hasKey := strings.Cut(token, ":")
		if !hasKey {
			switch strings.ToLower(token) {
			case "asc":
				sorting.Order = workperiods.SortAsc
			case "desc":
				sorting.Order = workperiods.SortDesc
			default:
				filters.UserHandle = token
			}
			continue
		}
		switch strings.ToLower(key) {
		case "handle", "user":
			filters.UserHandle = value
		case "date", "week":
			t, err := time.Parse(workperiods.DateFormatAPI, value)
			if err != nil {
				warnings = append(warnings, fmt.Sprintf("bad date %q (want yyyy-mm-dd)", value))
				continue
			}
			filters.StartDate = workperiods.WeekStart(t)
		case "status":
			for _, raw := range strings.Split(value, ",") {
				if raw == "" {
					continue
				}
				status, ok := workperiods.SuggestStatus(raw)
				if !ok {
					warnings = append(warnings, fmt.Sprintf("unknown status %q", raw))
					continue
				}
				if string(status) != strings.ToLower(raw) {
					warnings = append(warnings, fmt.Sprintf("%q taken as %q", raw, status))
				}
				filters.PaymentStatuses[status] = true
			}
		case "sort":
			criteria, ok := workperiods.SuggestSort(value)
			if !ok {
				warnings = append(warnings, fmt.Sprintf("unknown sort field %q", value))
				continue
			}
			if string(criteria) != value {
				warnings = append(warnings, fmt.Sprintf("%q taken as %q", value, criteria))
			}
			sorting.Criteria = criteria
		case "order", "dir":
			switch strings.ToLower(value) {
			case "asc":
				sorting.Order = workperiods.SortAsc
			case "desc":
				sorting.Order = workperiods.SortDesc
			default:
				warnings = append(warnings, fmt.Sprintf("unknown sort order %q", value))
			}
		default:
			warnings = append(warnings, fmt.Sprintf("unknown token %q", token))
		}
	}

	return filters, sorting, warnings
}
