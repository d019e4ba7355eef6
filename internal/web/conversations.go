package web

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/ashureev/agentchat/internal/chat"
	"github.com/ashureev/agentchat/internal/domain"
	"github.com/ashureev/agentchat/internal/session"
	"github.com/ashureev/agentchat/internal/transcript"
	"github.com/ashureev/agentchat/internal/widget"
)

// conversationResponse is the JSON form of a controller snapshot.
type conversationResponse struct {
	chat.View
	Messages []transcript.Bubble `json:"messages"`
	Control  *widget.Control     `json:"control,omitempty"`
}

type messageRequest struct {
	Text string `json:"text"`
}

type fieldRequest struct {
	Values []string `json:"values"`
}

type serverMessagesResponse struct {
	SessionID string                       `json:"session_id"`
	Messages  []transcript.Bubble          `json:"messages"`
	Raw       []domain.ConversationMessage `json:"raw"`
}

func (s *Server) conversationJSON(v chat.View) (conversationResponse, error) {
	msgs, err := messagesFor(v)
	if err != nil {
		return conversationResponse{}, err
	}
	return conversationResponse{View: v, Messages: msgs.Bubbles, Control: msgs.Control}, nil
}

func (s *Server) writeConversation(w http.ResponseWriter, status int, v chat.View) {
	resp, err := s.conversationJSON(v)
	if err != nil {
		s.logger.Error("Failed to build conversation response", "error", err, "session_id", v.SessionID)
		Error(w, http.StatusInternalServerError, "failed to render conversation")
		return
	}
	JSON(w, status, resp)
}

// controller resolves the conversation named in the URL or writes a 404.
func (s *Server) controller(w http.ResponseWriter, r *http.Request) *chat.Controller {
	id := session.IDFromContext(r.Context())
	c := s.registry.Get(id)
	if c == nil {
		Error(w, http.StatusNotFound, "conversation not found")
		return nil
	}
	return c
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxRequestBodySize)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxBytes *http.MaxBytesError
		switch {
		case errors.As(err, &maxBytes):
			Error(w, http.StatusRequestEntityTooLarge, "request body too large")
		case errors.Is(err, io.EOF):
			Error(w, http.StatusBadRequest, "request body is required")
		default:
			Error(w, http.StatusBadRequest, "invalid request body")
		}
		return false
	}
	return true
}

// CreateConversation starts and registers a new conversation.
func (s *Server) CreateConversation(w http.ResponseWriter, _ *http.Request) {
	c := chat.NewController(s.backend, chat.Options{
		Logger:          s.logger,
		ConversationLog: s.convlog,
		Channel:         "api",
	})
	c.Start()
	if err := s.registry.Register(c); err != nil {
		s.logger.Error("Failed to register conversation", "session_id", c.SessionID(), "error", err)
		Error(w, http.StatusInternalServerError, "failed to create conversation")
		return
	}
	s.writeConversation(w, http.StatusCreated, c.Snapshot())
}

// GetConversation returns the conversation snapshot.
func (s *Server) GetConversation(w http.ResponseWriter, r *http.Request) {
	c := s.controller(w, r)
	if c == nil {
		return
	}
	s.writeConversation(w, http.StatusOK, c.Snapshot())
}

// DeleteConversation drops the conversation from the registry.
func (s *Server) DeleteConversation(w http.ResponseWriter, r *http.Request) {
	if !s.registry.Unregister(session.IDFromContext(r.Context())) {
		Error(w, http.StatusNotFound, "conversation not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PostMessage sends free text and returns the resulting snapshot.
func (s *Server) PostMessage(w http.ResponseWriter, r *http.Request) {
	c := s.controller(w, r)
	if c == nil {
		return
	}
	var req messageRequest
	if !s.decode(w, r, &req) {
		return
	}
	s.finish(w, c, c.SubmitText(r.Context(), req.Text))
}

// PostField answers the pending field and returns the resulting snapshot.
func (s *Server) PostField(w http.ResponseWriter, r *http.Request) {
	c := s.controller(w, r)
	if c == nil {
		return
	}
	var req fieldRequest
	if !s.decode(w, r, &req) {
		return
	}
	s.finish(w, c, c.SubmitFieldValues(r.Context(), req.Values))
}

// GetServerMessages returns the raw server message list of the last
// response, for inspection only.
func (s *Server) GetServerMessages(w http.ResponseWriter, r *http.Request) {
	c := s.controller(w, r)
	if c == nil {
		return
	}
	raw := c.ServerMessages()
	if raw == nil {
		raw = []domain.ConversationMessage{}
	}
	JSON(w, http.StatusOK, serverMessagesResponse{
		SessionID: c.SessionID(),
		Messages:  transcript.RenderServer(raw),
		Raw:       raw,
	})
}

// finish writes the snapshot after a submission, or the mapped error. Failure
// notices are reported once and then cleared.
func (s *Server) finish(w http.ResponseWriter, c *chat.Controller, err error) {
	if err == nil {
		s.writeConversation(w, http.StatusOK, c.Snapshot())
		return
	}
	notice := c.Snapshot().Notice
	if notice != "" {
		c.DismissNotice()
	}
	Error(w, statusFor(err), chat.Describe(err, notice))
}
