package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/bookingdesk/payperiod/internal/workperiods"
)

func (m model) View() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderTable())
	b.WriteString("\n")
	b.WriteString(m.renderPagination())

	body := b.String()
	statusLine := m.renderStatus()
	footer := m.renderFooter()

	if m.mode == modeConfirmPay {
		return m.composeConfirm(body, statusLine, footer)
	}
	return m.placeWithFooter(body, statusLine, footer)
}

func (m model) renderHeader() string {
	title := titleStyle.Render("Pay Periods")
	format := m.dateFormat
	if format == "" {
		format = workperiods.DateFormatAPI
	}
	week := m.snap.Filters.StartDate.Format(format)
	parts := []string{fmt.Sprintf("week of %s", week)}
	if m.snap.Filters.UserHandle != "" {
		parts = append(parts, "handle "+m.snap.Filters.UserHandle)
	}
	var statuses []string
	for _, status := range workperiods.Statuses() {
		if m.snap.Filters.PaymentStatuses[status] {
			statuses = append(statuses, status.Label())
		}
	}
	if len(statuses) > 0 {
		parts = append(parts, strings.Join(statuses, "/"))
	}
	parts = append(parts, fmt.Sprintf("sort %s %s", m.snap.Sorting.Criteria, m.snap.Sorting.Order))

	line := title + "  " + dimStyle.Render(strings.Join(parts, " · "))
	if m.snap.Loading {
		line += "  " + m.spinner.View()
	}
	if m.snap.IsProcessing {
		line += "  " + promptStyle.Render("processing payments "+m.spinner.View())
	}
	return line
}

func (m model) renderTable() string {
	width := m.tableWidth()
	handleWidth := 18
	dateWidth := 11
	rateWidth := 9
	daysWidth := 6
	statusWidth := 12
	totalWidth := 10

	header := fmt.Sprintf("      %-*s  %-*s  %-*s  %*s  %-*s  %-*s  %*s",
		handleWidth, "Handle",
		dateWidth, "Start",
		dateWidth, "End",
		rateWidth, "Rate",
		daysWidth, "Days",
		statusWidth, "Status",
		totalWidth, "Total")
	lines := []string{headerRowStyle.Render(padRight(header, width))}

	if len(m.snap.Periods) == 0 {
		empty := "  No work periods match the current filters."
		if m.snap.Loading {
			empty = "  Loading work periods..."
		}
		lines = append(lines, dimStyle.Render(empty))
		return strings.Join(lines, "\n")
	}

	visible := m.visibleRows()
	end := m.topIndex + visible
	if end > len(m.snap.Periods) {
		end = len(m.snap.Periods)
	}
	for i := m.topIndex; i < end; i++ {
		p := m.snap.Periods[i]
		lines = append(lines, m.renderRow(p, i, handleWidth, dateWidth, rateWidth, daysWidth, statusWidth, totalWidth))
		if i == m.cursor {
			if d, ok := m.snap.Details[p.ID]; ok {
				lines = append(lines, m.renderDetails(d))
			}
		}
	}
	return strings.Join(lines, "\n")
}

func (m model) renderRow(p workperiods.Period, index, handleWidth, dateWidth, rateWidth, daysWidth, statusWidth, totalWidth int) string {
	prefix := "  "
	if index == m.cursor && m.mode != modeHistory {
		prefix = "> "
	}
	check := "[ ]"
	if m.snap.Selected[p.ID] {
		check = "[x]"
	}
	days := fmt.Sprintf("%d/%d", p.DaysWorked, workperiods.MaxWorkingDays)
	line := fmt.Sprintf("%s %-*s  %-*s  %-*s  %*.2f  %-*s  %-*s  %*.2f",
		check,
		handleWidth, truncate(p.UserHandle, handleWidth),
		dateWidth, p.StartDate,
		dateWidth, p.EndDate,
		rateWidth, p.WeeklyRate,
		daysWidth, days,
		statusWidth, p.PaymentStatus.Label(),
		totalWidth, p.PaymentTotal)

	style := lipgloss.NewStyle()
	if failed, ok := m.snap.Highlight[p.ID]; ok {
		if failed {
			style = failedStyle
		} else {
			style = paidStyle
		}
	} else if m.snap.Selected[p.ID] {
		style = selectedStyle
	} else if p.PaymentStatus == workperiods.StatusPaid {
		style = dimStyle
	}
	rendered := style.Render(line)
	if index == m.cursor && m.mode != modeHistory {
		return cursorStyle.Render(prefix) + rendered
	}
	return prefix + rendered
}

func (m model) renderDetails(d *workperiods.Details) string {
	var lines []string

	job := d.JobName
	switch {
	case d.JobNameLoading:
		job = "loading " + m.spinner.View()
	case d.JobNameError != "":
		job = failedStyle.Render("error: " + d.JobNameError)
	}
	lines = append(lines, "Job: "+job)

	switch {
	case d.BillingAccountsLoading:
		lines = append(lines, "Billing account: loading "+m.spinner.View())
	case d.BillingAccountsError != "":
		lines = append(lines, "Billing account: "+failedStyle.Render("error: "+d.BillingAccountsError))
	case len(d.BillingAccounts) == 0:
		lines = append(lines, dimStyle.Render("Billing account: none available"))
	default:
		label := fmt.Sprintf("(%d)", d.BillingAccountID)
		for _, opt := range d.BillingAccounts {
			if opt.Value == d.BillingAccountID {
				label = opt.Label
				break
			}
		}
		lines = append(lines, fmt.Sprintf("Billing account: %s  %s", label, dimStyle.Render("b to cycle")))
	}

	switch {
	case d.PeriodsLoading:
		lines = append(lines, "History: loading "+m.spinner.View())
	case d.PeriodsError != "":
		lines = append(lines, "History: "+failedStyle.Render("error: "+d.PeriodsError))
	default:
		for i, row := range d.Periods {
			prefix := "  "
			if m.mode == modeHistory && i == m.historyCursor {
				prefix = cursorStyle.Render("> ")
			}
			entry := fmt.Sprintf("%s %s  %d/%d days  %-12s %8.2f",
				row.StartDate, row.EndDate, row.DaysWorked, workperiods.MaxWorkingDays,
				row.PaymentStatus.Label(), row.PaymentTotal)
			if row.PaymentStatus == workperiods.StatusPaid {
				entry = dimStyle.Render(entry)
			}
			if row.LastError != "" {
				entry += "  " + failedStyle.Render(row.LastError)
			}
			lines = append(lines, prefix+entry)
		}
	}

	return detailBoxStyle.Render(strings.Join(lines, "\n"))
}

// detailHeight is the vertical space the expanded panel takes, used by the
// scroll window math.
func detailHeight(d *workperiods.Details) int {
	lines := 3
	if !d.PeriodsLoading && d.PeriodsError == "" {
		lines += len(d.Periods) - 1
		if lines < 3 {
			lines = 3
		}
	}
	frame := detailBoxStyle.GetVerticalFrameSize()
	return lines + frame
}

func (m model) renderPagination() string {
	pg := m.snap.Pagination
	selected := len(m.snap.SelectedIDs())
	line := fmt.Sprintf("Page %d/%d · %d periods · %d selected",
		pg.PageNumber, max(pg.PageCount, 1), pg.TotalCount, selected)
	if m.snap.SelectAll {
		line += " (all matching)"
	}
	return dimStyle.Render(line)
}

func (m model) renderStatus() string {
	if m.mode == modeFilter {
		return statusBarStyle.Render(padRight(m.filterInput.View(), m.contentWidth()))
	}
	text := m.status
	style := statusBarStyle
	if toast, ok := m.latestToast(); ok {
		text = toast.Message
		if len(toast.Failed) > 0 {
			text += fmt.Sprintf(" (%d failed, highlighted)", len(toast.Failed))
		}
		style = style.Foreground(toastColor(toast.Kind))
	} else if m.snap.LoadError != "" {
		text = "Load failed: " + m.snap.LoadError
		style = style.Foreground(colorError)
	}
	return style.Render(padRight(text, m.contentWidth()))
}

func (m model) renderFooter() string {
	var help string
	switch m.mode {
	case modeConfirmPay:
		help = renderHelp(m.confirmKeys.ShortHelp())
	case modeHistory:
		help = renderHelp([]key.Binding{m.keys.History, m.keys.Days, m.keys.Cancel, m.keys.Quit})
	default:
		help = renderHelp(m.keys.ShortHelp())
	}
	if m.width == 0 {
		return footerStyle.Render(help)
	}
	flat := strings.ReplaceAll(help, "\n", " ")
	return footerStyle.Render(padRight(flat, m.width))
}

func (m model) composeConfirm(body, statusLine, footer string) string {
	baseView := m.placeWithFooter(body, statusLine, footer)
	count := m.paySelectionCount()
	prompt := fmt.Sprintf("Schedule payments for %d work periods?", count)
	if m.snap.SelectAll && m.snap.Pagination.TotalCount > m.snap.Pagination.PageSize {
		prompt += "\n" + dimStyle.Render("Every period matching the filters will be paid.")
	}
	prompt += "\n\n" + renderHelp(m.confirmKeys.ShortHelp())
	modal := detailBoxStyle.Render(prompt)

	if m.height == 0 || m.width == 0 {
		return baseView + "\n\n" + modal
	}
	lines := splitLines(modal)
	modalWidth := maxLineWidth(lines)
	x := (m.width - modalWidth) / 2
	if x < 0 {
		x = 0
	}
	y := (m.height - 2 - len(lines)) / 2
	if y < 0 {
		y = 0
	}
	return overlayAt(baseView, modal, x, y, m.width, m.height-2)
}

func (m model) placeWithFooter(body, statusLine, footer string) string {
	if m.height == 0 {
		return body + "\n\n" + statusLine + "\n" + footer
	}
	contentHeight := m.height - 2
	if contentHeight < 1 {
		contentHeight = 1
	}
	if lipgloss.Height(body) >= contentHeight {
		return body + "\n" + statusLine + "\n" + footer
	}
	main := lipgloss.Place(m.width, contentHeight, lipgloss.Left, lipgloss.Top, body)
	return main + "\n" + statusLine + "\n" + footer
}

func (m model) tableWidth() int {
	if m.width == 0 {
		return 100
	}
	return m.width
}

func (m model) contentWidth() int {
	if m.width == 0 {
		return 100
	}
	return m.width
}
