package main

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

func splitLines(s string) []string {
	if s == "" {
		return []string{""}
	}
	return strings.Split(s, "\n")
}

func maxLineWidth(lines []string) int {
	max := 0
	for _, line := range lines {
		if w := lipgloss.Width(line); w > max {
			max = w
		}
	}
	return max
}

func padRight(s string, width int) string {
	if width <= 0 {
		return s
	}
	w := lipgloss.Width(s)
	if w >= width {
		return s
	}
	return s + strings.Repeat(" ", width-w)
}

func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width <= 1 {
		return string(runes[:width])
	}
	return string(runes[:width-1]) + "…"
}

func cutPlain(s string, left, right int) string {
	if right <= left {
		return ""
	}
	runes := []rune(s)
	if left < 0 {
		left = 0
	}
	if right > len(runes) {
		right = len(runes)
	}
	if left > len(runes) {
		return ""
	}
	return string(runes[left:right])
}

// overlayAt paints overlay onto base at (x, y), padding rows to width so the
// modal sits on an opaque rectangle.
func overlayAt(base, overlay string, x, y, width, height int) string {
	baseLines := splitLines(base)
	overlayLines := splitLines(overlay)
	overlayWidth := maxLineWidth(overlayLines)
	for i, line := range overlayLines {
		row := y + i
		if row < 0 || row >= len(baseLines) || row >= height {
			continue
		}
		target := padRight(baseLines[row], width)
		left := cutPlain(target, 0, x)
		right := ""
		if width > 0 {
			right = cutPlain(target, x+overlayWidth, width)
		}
		overlayLine := padRight(line, overlayWidth)
		baseLines[row] = left + overlayLine + right
	}
	return strings.Join(baseLines, "\n")
}
