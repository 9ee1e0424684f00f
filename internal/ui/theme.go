package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// TaskPoints theme (CLI + TUI).
// Kept intentionally small: reusable styles and a few emojis.

const (
	IconDay     = "📅"
	IconSleep   = "😴"
	IconWork    = "💼"
	IconMeals   = "🍽️"
	IconMood    = "🙂"
	IconHabit   = "🔁"
	IconVice    = "🚫"
	IconFlex    = "💪"
	IconGame    = "🎮"
	IconTask    = "📝"
	IconInertia = "🌀"
	IconTrophy  = "🏆"
	IconInfo    = "ℹ️"
	IconWarn    = "⚠️"
	IconError   = "🧨"
	IconBox     = "📦"
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
	Title = lipgloss.NewStyle().Bold(true).Foreground(cAccent)
	H2    = lipgloss.NewStyle().Bold(true).Foreground(cPrimary)
	Muted = lipgloss.NewStyle().Foreground(cMuted)
	Key   = lipgloss.NewStyle().Bold(true).Foreground(cPrimary)
	Good  = lipgloss.NewStyle().Bold(true).Foreground(cGood)
	Warn  = lipgloss.NewStyle().Bold(true).Foreground(cWarn)
	Bad   = lipgloss.NewStyle().Bold(true).Foreground(cBad)
	Gold  = lipgloss.NewStyle().Bold(true).Foreground(cGold)
	Dim   = lipgloss.NewStyle().Foreground(cMuted)

	Panel       = lipgloss.NewStyle().BorderStyle(lipgloss.RoundedBorder()).BorderForeground(cMuted).Padding(0, 1)
	SelectedRow = lipgloss.NewStyle().Bold(true).Foreground(cGold).Background(cPrimary)
)

// categoryIcons maps day-snapshot category labels to their icon.
var categoryIcons = map[string]string{
	"Sleep":    IconSleep,
	"Work":     IconWork,
	"Calories": IconMeals,
	"Mood":     IconMood,
	"Habits":   IconHabit,
	"Vices":    IconVice,
	"Flex":     IconFlex,
	"Game":     IconGame,
	"Tasks":    IconTask,
	"Inertia":  IconInertia,
}

func CategoryIcon(label string) string {
	if icon, ok := categoryIcons[label]; ok {
		return icon
	}
	return IconTask
}

func Heading(icon string, title string) string {
	icon = strings.TrimSpace(icon)
	if icon != "" {
		icon += " "
	}
	return Title.Render(icon + title)
}

func LabelValue(label string, value any) string {
	return fmt.Sprintf("%s %v", Key.Render(label+":"), value)
}

// Points renders a signed total with color by sign.
func Points(v float64) string {
	s := fmt.Sprintf("%+.2f", v)
	switch {
	case v > 0:
		return Good.Render(s)
	case v < 0:
		return Bad.Render(s)
	default:
		return Muted.Render(s)
	}
}

// RecordText renders a win/loss/tie record.
func RecordText(wins, losses, ties int) string {
	return fmt.Sprintf("%s-%s-%s",
		Good.Render(fmt.Sprint(wins)),
		Bad.Render(fmt.Sprint(losses)),
		Muted.Render(fmt.Sprint(ties)))
}
