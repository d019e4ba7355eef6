package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ashureev/agentchat/internal/transcript"
)

func (m Model) View() string {
	if !m.ready {
		return "\n  Initializing..."
	}

	sessionID := m.view.SessionID
	if sessionID == "" {
		sessionID = "Loading..."
	}

	var b strings.Builder
	b.WriteString(m.styles.header.Render("Session ID: " + sessionID))
	b.WriteString("\n\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	if m.alert != "" {
		b.WriteString(m.styles.alert.Render(m.alert))
	}
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(m.styles.help.Render(m.helpLine()))
	return b.String()
}

func (m Model) helpLine() string {
	switch {
	case m.selection != nil && !m.view.Loading:
		if m.control.Multiple {
			return "↑/↓ move • space toggle • enter submit • esc quit"
		}
		return "↑/↓ move • enter choose • esc quit"
	case m.control != nil && !m.view.Loading:
		return "enter submit • esc quit"
	default:
		return "enter send • pgup/pgdn scroll • esc quit"
	}
}

// renderTranscript draws the history, the loading row and the pending field.
func (m Model) renderTranscript() string {
	width := max(m.viewport.Width, 1)
	bubbles := transcript.Render(m.view.History)

	var rows []string
	if len(bubbles) == 0 {
		rows = append(rows, m.styles.empty.Render(transcript.EmptyPlaceholder))
	}
	for _, bubble := range bubbles {
		rows = append(rows, m.renderBubble(bubble, width))
	}
	if m.busy || m.view.Loading {
		rows = append(rows, m.spinner.View()+" Thinking...")
	} else if m.control != nil {
		rows = append(rows, m.renderField())
	}
	return strings.Join(rows, "\n\n")
}

func (m Model) renderBubble(bubble transcript.Bubble, width int) string {
	st := m.styles.bubbles[bubble.Style]
	limit := max(width*3/4, 10)
	if lipgloss.Width(bubble.Text) > limit {
		st = st.Width(limit)
	}
	pos := lipgloss.Left
	if bubble.Align == transcript.AlignRight {
		pos = lipgloss.Right
	}
	return lipgloss.PlaceHorizontal(width, pos, st.Render(bubble.Text))
}

func (m Model) renderField() string {
	var b strings.Builder
	if m.control.Label != "" {
		b.WriteString(m.styles.label.Render(m.control.Label))
	}
	if m.selection == nil {
		return b.String()
	}

	for i, option := range m.selection.Options() {
		mark := "( )"
		if m.control.Multiple {
			mark = "[ ]"
		}
		if m.selection.Selected(option) {
			mark = "(•)"
			if m.control.Multiple {
				mark = "[x]"
			}
		}
		line := mark + " " + option
		if i == m.cursor {
			line = m.styles.cursor.Render("› " + line)
		} else {
			line = "  " + line
		}
		b.WriteString("\n")
		b.WriteString(m.styles.option.Render(line))
	}
	return b.String()
}
