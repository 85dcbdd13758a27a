package viewer

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/zjrosen/twinview/internal/log"
)

var (
	textMutedColor = lipgloss.AdaptiveColor{Light: "#888888", Dark: "#696969"}
	accentColor    = lipgloss.AdaptiveColor{Light: "#1E66F5", Dark: "#89B4FA"}
	successColor   = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}
	warningColor   = lipgloss.AdaptiveColor{Light: "#DF8E1D", Dark: "#FECA57"}
	errorColor     = lipgloss.AdaptiveColor{Light: "#FF6B6B", Dark: "#FF8787"}
	borderColor    = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#696969"}

	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(accentColor)
	mutedStyle = lipgloss.NewStyle().Foreground(textMutedColor)
	keyStyle   = lipgloss.NewStyle().Bold(true).Foreground(accentColor)
	errorStyle = lipgloss.NewStyle().Foreground(errorColor)

	stateStyles = map[string]lipgloss.Style{
		"idle":       lipgloss.NewStyle().Foreground(successColor),
		"navigating": lipgloss.NewStyle().Foreground(accentColor),
		"recovering": lipgloss.NewStyle().Foreground(warningColor),
	}

	paneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(borderColor).
			Padding(0, 1)
)

func logStyle(level log.Level) lipgloss.Style {
	switch level {
	case log.LevelError:
		return errorStyle
	case log.LevelWarn:
		return lipgloss.NewStyle().Foreground(warningColor)
	default:
		return mutedStyle
	}
}
