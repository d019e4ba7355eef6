package web

import (
	"bytes"
	"fmt"
	"html/template"
	"io"

	"github.com/ashureev/agentchat/internal/chat"
	"github.com/ashureev/agentchat/internal/transcript"
	"github.com/ashureev/agentchat/internal/widget"
	assets "github.com/ashureev/agentchat/web"
)

// messagesData feeds the "messages" fragment.
type messagesData struct {
	Bubbles []transcript.Bubble
	Empty   string
	Loading bool
	Control *widget.Control
}

type pageData struct {
	Title      string
	SocketPath string
	View       chat.View
	Messages   messagesData
}

// renderer executes the embedded templates.
type renderer struct {
	tmpl *template.Template
}

func newRenderer() (*renderer, error) {
	tmpl, err := assets.Templates(template.FuncMap{})
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &renderer{tmpl: tmpl}, nil
}

// messagesFor builds the fragment data for v. The field form is only offered
// while no request is in flight.
func messagesFor(v chat.View) (messagesData, error) {
	data := messagesData{
		Bubbles: transcript.Render(v.History),
		Empty:   transcript.EmptyPlaceholder,
		Loading: v.Loading,
	}
	if v.Field != nil && !v.Loading {
		ctl, err := widget.For(v.Field)
		if err != nil {
			return messagesData{}, err
		}
		data.Control = &ctl
	}
	return data, nil
}

func (r *renderer) page(w io.Writer, v chat.View, socketPath string) error {
	msgs, err := messagesFor(v)
	if err != nil {
		return err
	}
	return r.tmpl.ExecuteTemplate(w, "page", pageData{
		Title:      "Agent Chat",
		SocketPath: socketPath,
		View:       v,
		Messages:   msgs,
	})
}

func (r *renderer) messages(v chat.View) (string, error) {
	msgs, err := messagesFor(v)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, "messages", msgs); err != nil {
		return "", fmt.Errorf("render messages: %w", err)
	}
	return buf.String(), nil
}
