package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/ashureev/agentchat/internal/transcript"
)

type styles struct {
	header  lipgloss.Style
	empty   lipgloss.Style
	bubbles map[transcript.Style]lipgloss.Style
	label   lipgloss.Style
	option  lipgloss.Style
	cursor  lipgloss.Style
	alert   lipgloss.Style
	help    lipgloss.Style
}

func defaultStyles() styles {
	bubble := lipgloss.NewStyle().Padding(0, 1)
	bubbles := map[transcript.Style]lipgloss.Style{
		transcript.StylePrimary: bubble.Background(lipgloss.Color("27")).Foreground(lipgloss.Color("15")),
		transcript.StyleNeutral: bubble.Background(lipgloss.Color("236")).Foreground(lipgloss.Color("252")),
		transcript.StyleMuted:   bubble.Italic(true).Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240")).Foreground(lipgloss.Color("245")),
	}
	return styles{
		header:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		empty:   lipgloss.NewStyle().Faint(true).Italic(true),
		bubbles: bubbles,
		label:   lipgloss.NewStyle().Bold(true),
		option:  lipgloss.NewStyle().PaddingLeft(2),
		cursor:  lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true),
		alert:   lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		help:    lipgloss.NewStyle().Faint(true),
	}
}
