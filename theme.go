package main

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/bookingdesk/payperiod/internal/workperiods"
)

// ---------------------------------------------------------------------------
// Catppuccin Mocha palette — true-color hex values
// https://catppuccin.com/palette
// ---------------------------------------------------------------------------

const (
	colorPink     lipgloss.Color = "#f5c2e7"
	colorMauve    lipgloss.Color = "#cba6f7"
	colorRed      lipgloss.Color = "#f38ba8"
	colorPeach    lipgloss.Color = "#fab387"
	colorYellow   lipgloss.Color = "#f9e2af"
	colorGreen    lipgloss.Color = "#a6e3a1"
	colorTeal     lipgloss.Color = "#94e2d5"
	colorBlue     lipgloss.Color = "#89b4fa"
	colorLavender lipgloss.Color = "#b4befe"

	colorText     lipgloss.Color = "#cdd6f4"
	colorSubtext0 lipgloss.Color = "#a6adc8"
	colorOverlay1 lipgloss.Color = "#7f849c"
	colorOverlay0 lipgloss.Color = "#6c7086"
	colorSurface1 lipgloss.Color = "#45475a"
	colorSurface0 lipgloss.Color = "#313244"
	colorBase     lipgloss.Color = "#1e1e2e"
)

// ---------------------------------------------------------------------------
// Semantic color aliases
// ---------------------------------------------------------------------------

const (
	colorAccent  = colorPink
	colorFocus   = colorLavender
	colorSuccess = colorGreen
	colorError   = colorRed
	colorWarning = colorYellow
	colorInfo    = colorTeal
)

var (
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	headerRowStyle = lipgloss.NewStyle().Bold(true).Foreground(colorSubtext0)
	cursorStyle    = lipgloss.NewStyle().Foreground(colorFocus).Bold(true)
	selectedStyle  = lipgloss.NewStyle().Foreground(colorTeal)
	failedStyle    = lipgloss.NewStyle().Foreground(colorError)
	paidStyle      = lipgloss.NewStyle().Foreground(colorSuccess)
	dimStyle       = lipgloss.NewStyle().Foreground(colorOverlay1)
	statusBarStyle = lipgloss.NewStyle().Foreground(colorText).Background(colorSurface0).Padding(0, 2)
	footerStyle    = lipgloss.NewStyle().Foreground(colorText).Background(colorSurface1).Padding(0, 2)
	detailBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorOverlay0).Padding(0, 1)
	promptStyle    = lipgloss.NewStyle().Foreground(colorMauve)
)

// toastColor picks the status-bar foreground for a toast kind.
func toastColor(kind workperiods.ToastKind) lipgloss.Color {
	switch kind {
	case workperiods.ToastSuccess:
		return colorSuccess
	case workperiods.ToastWarning:
		return colorWarning
	case workperiods.ToastError:
		return colorError
	default:
		return colorInfo
	}
}
