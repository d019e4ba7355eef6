package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"slices"
	"sync"

	"github.com/coder/websocket"

	"github.com/ashureev/agentchat/internal/chat"
	"github.com/ashureev/agentchat/internal/session"
)

// clientEvent is a message from the page.
type clientEvent struct {
	Type   string   `json:"type"`
	Text   string   `json:"text,omitempty"`
	Values []string `json:"values,omitempty"`
}

// viewEvent carries a rendered view to the page.
type viewEvent struct {
	Type         string     `json:"type"`
	State        chat.State `json:"state"`
	SessionID    string     `json:"session_id"`
	MessagesHTML string     `json:"messages_html"`
	InputEnabled bool       `json:"input_enabled"`
	Placeholder  string     `json:"placeholder"`
	Loading      bool       `json:"loading"`
}

type alertEvent struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// chatConn pushes controller updates to one websocket.
type chatConn struct {
	s   *Server
	ws  *websocket.Conn
	ctx context.Context
}

func (c *chatConn) writeJSON(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.ws.Write(c.ctx, websocket.MessageText, data)
}

func (c *chatConn) sendView(v chat.View) {
	html, err := c.s.render.messages(v)
	if err != nil {
		c.s.logger.Error("Failed to render chat view", "error", err, "session_id", v.SessionID)
		return
	}
	err = c.writeJSON(viewEvent{
		Type:         "view",
		State:        v.State,
		SessionID:    v.SessionID,
		MessagesHTML: html,
		InputEnabled: v.InputEnabled,
		Placeholder:  v.Placeholder,
		Loading:      v.Loading,
	})
	if err != nil && c.ctx.Err() == nil {
		c.s.logger.Debug("Failed to send view", "error", err, "session_id", v.SessionID)
	}
}

func (c *chatConn) sendScroll() {
	if err := c.writeJSON(map[string]string{"type": "scroll"}); err != nil && c.ctx.Err() == nil {
		c.s.logger.Debug("Failed to send scroll", "error", err)
	}
}

func (c *chatConn) sendAlert(message string) {
	if err := c.writeJSON(alertEvent{Type: "alert", Message: message}); err != nil && c.ctx.Err() == nil {
		c.s.logger.Debug("Failed to send alert", "error", err)
	}
}

// ChatSocket upgrades to a websocket and runs one conversation for the life
// of the connection. Reloading the page starts a new session.
func (s *Server) ChatSocket(w http.ResponseWriter, r *http.Request) {
	ip := session.IPFromRequest(r)
	s.logger.Info("Chat websocket connection request", "ip", ip)

	if !s.checkOrigin(r) {
		http.Error(w, "origin not allowed", http.StatusForbidden)
		return
	}

	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		s.logger.Error("Failed to accept websocket", "error", err, "ip", ip)
		return
	}
	defer func() {
		if closeErr := ws.Close(websocket.StatusNormalClosure, "session ended"); closeErr != nil {
			s.logger.Debug("Failed to close websocket", "error", closeErr)
		}
	}()
	ws.SetReadLimit(s.cfg.MaxRequestBodySize)

	// r.Context() outlives a hijacked connection; agent calls use ctx.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	conn := &chatConn{s: s, ws: ws, ctx: ctx}
	ctrl := chat.NewController(s.backend, chat.Options{
		Logger:          s.logger,
		ConversationLog: s.convlog,
		Channel:         "ws",
		OnChange:        conn.sendView,
		OnScroll:        conn.sendScroll,
	})
	sessionID := ctrl.Start()
	s.logger.Info("Chat session connected", "session_id", sessionID, "ip", ip)

	var inflight sync.WaitGroup
	defer inflight.Wait()
	defer cancel()

	for {
		_, message, err := ws.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) != -1 || errors.Is(err, context.Canceled) {
				s.logger.Debug("Chat websocket closed by client", "session_id", sessionID)
			} else {
				s.logger.Warn("Chat websocket read error", "error", err, "session_id", sessionID)
			}
			return
		}

		var ev clientEvent
		if err := json.Unmarshal(message, &ev); err != nil {
			s.logger.Debug("Ignoring malformed chat event", "error", err, "session_id", sessionID)
			continue
		}

		switch ev.Type {
		case "send":
			inflight.Add(1)
			go func(text string) {
				defer inflight.Done()
				conn.report(ctrl, ctrl.SubmitText(ctx, text))
			}(ev.Text)
		case "field":
			inflight.Add(1)
			go func(values []string) {
				defer inflight.Done()
				conn.report(ctrl, ctrl.SubmitFieldValues(ctx, values))
			}(slices.Clone(ev.Values))
		case "ping":
			if err := conn.writeJSON(map[string]string{"type": "pong"}); err != nil {
				s.logger.Debug("Failed to send pong", "error", err)
			}
		default:
			s.logger.Debug("Unknown chat event", "type", ev.Type, "session_id", sessionID)
		}
	}
}

// report turns a submission error into an alert. Failure notices are shown
// once and then cleared.
func (c *chatConn) report(ctrl *chat.Controller, err error) {
	if err == nil || c.ctx.Err() != nil {
		return
	}
	notice := ctrl.Snapshot().Notice
	c.sendAlert(chat.Describe(err, notice))
	if notice != "" {
		ctrl.DismissNotice()
	}
}

func (s *Server) checkOrigin(r *http.Request) bool {
	if s.cfg.IsDevelopment {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" || slices.Contains(s.cfg.AllowedOrigins, "*") {
		return true
	}
	if slices.Contains(s.cfg.AllowedOrigins, origin) {
		return true
	}
	if origin == "http://"+r.Host || origin == "https://"+r.Host {
		return true
	}
	s.logger.Warn("Chat websocket origin rejected", "origin", origin, "allowed", s.cfg.AllowedOrigins)
	return false
}
