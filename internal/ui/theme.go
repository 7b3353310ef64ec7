// Package ui holds the terminal styles used by the lifebot CLI.
package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const (
	IconBot   = "🤖"
	IconInfo  = "ℹ️"
	IconWarn  = "⚠️"
	IconError = "🧨"
)

var (
	cPrimary = lipgloss.Color("63")  // blue
	cAccent  = lipgloss.Color("205") // magenta
	cGood    = lipgloss.Color("42")  // green
	cWarn    = lipgloss.Color("214") // orange
	cBad     = lipgloss.Color("196") // red
	cMuted   = lipgloss.Color("244") // gray
	cGold    = lipgloss.Color("220") // gold
)

var (
	Title  = lipgloss.NewStyle().Bold(true).Foreground(cAccent)
	Prompt = lipgloss.NewStyle().Bold(true).Foreground(cPrimary)
	Muted  = lipgloss.NewStyle().Foreground(cMuted)
	Good   = lipgloss.NewStyle().Foreground(cGood)
	Warn   = lipgloss.NewStyle().Bold(true).Foreground(cWarn)
	Bad    = lipgloss.NewStyle().Bold(true).Foreground(cBad)
	Gold   = lipgloss.NewStyle().Bold(true).Foreground(cGold)

	Panel = lipgloss.NewStyle().BorderStyle(lipgloss.RoundedBorder()).BorderForeground(cMuted).Padding(0, 1)
)

// Heading renders a title line with an optional icon.
func Heading(icon, title string) string {
	icon = strings.TrimSpace(icon)
	if icon != "" {
		icon += " "
	}
	return Title.Render(icon + title)
}

// Reply styles a bot message line by line. Level-up and achievement lines
// are highlighted, failures are shown in red.
func Reply(message string, success bool) string {
	lines := strings.Split(message, "\n")
	for i, line := range lines {
		lines[i] = styleLine(line, success)
	}
	return strings.Join(lines, "\n")
}

func styleLine(line string, success bool) string {
	trimmed := strings.TrimSpace(line)
	switch {
	case trimmed == "":
		return line
	case strings.HasPrefix(trimmed, "🎉"), strings.HasPrefix(trimmed, "🏆"):
		return Gold.Render(line)
	case strings.HasPrefix(trimmed, "⚠️"):
		return Warn.Render(line)
	case strings.HasPrefix(trimmed, "+") && strings.HasSuffix(trimmed, "XP"):
		return Good.Render(line)
	case !success && strings.Contains(trimmed, "실패"):
		return Bad.Render(line)
	default:
		return line
	}
}

// Error renders an error line for the CLI.
func Error(err error) string {
	return Bad.Render(IconError + " " + err.Error())
}
