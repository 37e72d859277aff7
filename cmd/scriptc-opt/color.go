package main

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	labelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#87CEEB"))

	phiStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#DDA0DD"))

	branchStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFD700"))

	locStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))

	callStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	matchStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

// highlight colors printed IR one line at a time by the kind of line.
func highlight(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if style, ok := lineStyle(line); ok {
			lines[i] = style.Render(line)
		}
	}
	return strings.Join(lines, "\n")
}

func lineStyle(line string) (lipgloss.Style, bool) {
	trimmed := strings.TrimSpace(line)
	switch {
	case trimmed == "":
		return lipgloss.Style{}, false
	case strings.HasPrefix(line, "entry "), !strings.HasPrefix(line, " ") && strings.HasSuffix(trimmed, ":"):
		return labelStyle, true
	case strings.HasPrefix(trimmed, ".loc "):
		return locStyle, true
	case strings.Contains(trimmed, " = phi "):
		return phiStyle, true
	case strings.HasPrefix(trimmed, "br "), strings.HasPrefix(trimmed, "if "):
		return branchStyle, true
	case strings.HasPrefix(trimmed, "call "), strings.Contains(trimmed, " = call "):
		return callStyle, true
	}
	return lipgloss.Style{}, false
}
