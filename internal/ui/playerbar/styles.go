package playerbar

import "github.com/charmbracelet/lipgloss"

const (
	playSymbol    = "▶"
	pauseSymbol   = "⏸"
	loadingSymbol = "…"
	stopSymbol    = "■"
)

var (
	colorMuted  = lipgloss.Color("240")
	colorAccent = lipgloss.Color("39")
	colorText   = lipgloss.Color("252")
	colorError  = lipgloss.Color("203")
)

func barStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(colorMuted)
}

func titleStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(colorText).Bold(true)
}

func artistStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(colorMuted)
}

func metaStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(colorMuted).Italic(true)
}

func progressBarFilled() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(colorAccent)
}

func progressBarEmpty() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(colorMuted)
}

func progressTimeStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(colorText)
}

func errorStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(colorError)
}
