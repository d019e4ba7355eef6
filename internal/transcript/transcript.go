// Package transcript renders chat history into display bubbles.
package transcript

import (
	"bytes"
	"html"
	"html/template"
	"log/slog"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"

	"github.com/ashureev/agentchat/internal/domain"
)

// EmptyPlaceholder is shown when there is no history yet.
const EmptyPlaceholder = "Start a conversation with the AI agent"

// Align is the side of the conversation a bubble sits on.
type Align string

const (
	AlignLeft  Align = "left"
	AlignRight Align = "right"
)

// Style names the visual treatment of a bubble.
type Style string

const (
	StylePrimary Style = "primary"
	StyleNeutral Style = "neutral"
	StyleMuted   Style = "muted"
)

// Bubble is one rendered chat entry.
type Bubble struct {
	ID    string        `json:"id"`
	Role  string        `json:"role"`
	Align Align         `json:"align"`
	Style Style         `json:"style"`
	Text  string        `json:"text"`
	HTML  template.HTML `json:"html"`
}

var (
	markdown = goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(gmhtml.WithHardWraps()),
	)
	sanitizer = bluemonday.UGCPolicy()
)

// Render projects the local history into bubbles in order. User and form
// responses sit on the right, agent replies on the left. Agent replies are
// rendered as sanitized Markdown; everything else is escaped text. Entries
// of an unknown type are logged and skipped.
func Render(history []domain.LocalMessage) []Bubble {
	out := make([]Bubble, 0, len(history))
	for _, m := range history {
		b := Bubble{ID: m.ID, Role: string(m.Type), Text: m.Content}
		switch m.Type {
		case domain.LocalUser:
			b.Align, b.Style = AlignRight, StylePrimary
			b.HTML = plain(m.Content)
		case domain.LocalFormResponse:
			b.Align, b.Style = AlignRight, StyleMuted
			b.HTML = plain(m.Content)
		case domain.LocalAI:
			b.Align, b.Style = AlignLeft, StyleNeutral
			b.HTML = Markdown(m.Content)
		default:
			slog.Warn("Skipping history entry of unknown type", "id", m.ID, "type", string(m.Type))
			continue
		}
		out = append(out, b)
	}
	return out
}

// RenderServer renders a raw server message list. Tool messages and agent
// turns without content are skipped.
func RenderServer(messages []domain.ConversationMessage) []Bubble {
	out := make([]Bubble, 0, len(messages))
	for _, m := range messages {
		switch m.Type() {
		case domain.MessageHuman:
			out = append(out, Bubble{
				ID:    m.MessageID(),
				Role:  string(domain.MessageHuman),
				Align: AlignRight,
				Style: StylePrimary,
				Text:  m.Text(),
				HTML:  plain(m.Text()),
			})
		case domain.MessageAI:
			if m.Text() == "" {
				continue
			}
			out = append(out, Bubble{
				ID:    m.MessageID(),
				Role:  string(domain.MessageAI),
				Align: AlignLeft,
				Style: StyleNeutral,
				Text:  m.Text(),
				HTML:  Markdown(m.Text()),
			})
		}
	}
	return out
}

// Markdown converts src to sanitized HTML. Conversion errors fall back to
// escaped text.
func Markdown(src string) template.HTML {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(src), &buf); err != nil {
		return plain(src)
	}
	return template.HTML(sanitizer.SanitizeBytes(buf.Bytes()))
}

func plain(s string) template.HTML {
	escaped := html.EscapeString(s)
	return template.HTML(strings.ReplaceAll(escaped, "\n", "<br>"))
}
