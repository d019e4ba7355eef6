// Package chat holds the per-conversation session controller.
//
// A Controller owns one session id, the optimistic local history shown to the
// user, the last server message list and the pending interrupt. It allows a
// single backend request at a time; callers that submit while a request is in
// flight get ErrBusy instead of being queued.
package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/ashureev/agentchat/internal/agentapi"
	"github.com/ashureev/agentchat/internal/convlog"
	"github.com/ashureev/agentchat/internal/domain"
	"github.com/ashureev/agentchat/internal/session"
	"github.com/ashureev/agentchat/internal/widget"
)

// Options configures a Controller. Zero values get sensible defaults.
type Options struct {
	Logger          *slog.Logger
	ConversationLog convlog.Logger
	// Channel tags conversation log events, e.g. "ws" or "api".
	Channel string

	// OnChange receives a snapshot after every state or history change.
	OnChange func(View)
	// OnScroll fires when the history, the pending field or the loading
	// indicator changed, i.e. whenever the view should follow the bottom.
	OnScroll func()

	Clock func() time.Time
	NewID func() string
}

// View is an immutable snapshot of a controller.
type View struct {
	State        State                 `json:"state"`
	SessionID    string                `json:"session_id"`
	History      []domain.LocalMessage `json:"history"`
	Field        domain.Field          `json:"field,omitempty"`
	InterruptID  string                `json:"interrupt_id,omitempty"`
	Loading      bool                  `json:"loading"`
	InputEnabled bool                  `json:"input_enabled"`
	Placeholder  string                `json:"placeholder"`
	Notice       string                `json:"notice,omitempty"`
}

// Controller drives one conversation against a Backend.
type Controller struct {
	backend agentapi.Backend
	logger  *slog.Logger
	convlog convlog.Logger
	channel string

	onChange func(View)
	onScroll func()
	now      func() time.Time
	newID    func() string

	// notifyMu serializes observer calls so they see snapshots in order.
	notifyMu sync.Mutex

	mu         sync.Mutex
	state      State
	sessionID  string
	history    []domain.LocalMessage
	server     []domain.ConversationMessage
	interrupt  *domain.Interrupt
	notice     string
	lastActive time.Time
}

// NewController returns a controller in the awaiting-session state. Call
// Start before submitting anything.
func NewController(backend agentapi.Backend, opts Options) *Controller {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.ConversationLog == nil {
		opts.ConversationLog = convlog.Nop()
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = session.NewID
	}

	c := &Controller{
		backend:  backend,
		logger:   opts.Logger,
		convlog:  opts.ConversationLog,
		channel:  opts.Channel,
		onChange: opts.OnChange,
		onScroll: opts.OnScroll,
		now:      opts.Clock,
		newID:    opts.NewID,
		state:    StateAwaitingSession,
	}
	c.lastActive = c.now()
	return c
}

// Start generates the session id and makes the controller interactive. It is
// a no-op once a session exists.
func (c *Controller) Start() string {
	c.mu.Lock()
	if c.state != StateAwaitingSession {
		id := c.sessionID
		c.mu.Unlock()
		return id
	}
	c.sessionID = c.newID()
	c.state = StateIdle
	c.lastActive = c.now()
	id := c.sessionID
	c.mu.Unlock()

	c.logger.Info("Chat session started", "session_id", id, "channel", c.channel)
	c.notify(false)
	return id
}

// SubmitText sends a free-text message. Blank input is ignored without error.
// The user message is appended to the history before the request fires.
func (c *Controller) SubmitText(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	c.mu.Lock()
	switch c.state {
	case StateAwaitingSession:
		c.mu.Unlock()
		return ErrSessionNotReady
	case StateSending, StateResuming:
		c.mu.Unlock()
		return ErrBusy
	case StateInterrupted:
		c.mu.Unlock()
		return ErrAwaitingField
	}
	c.appendLocked(domain.LocalUser, text)
	c.state = StateSending
	c.notice = ""
	sessionID := c.sessionID
	c.mu.Unlock()

	c.logEvent(convlog.Inbound, convlog.EventUserMessage, text, nil)
	c.notify(true)

	resp, err := c.backend.SendChatMessage(ctx, text, sessionID)
	if err != nil {
		return c.fail(err, NoticeSendFailed)
	}
	c.resolve(resp)
	return nil
}

// SubmitField answers the pending interrupt with value. The formatted answer
// is appended to the history and the field is withdrawn before the request
// fires. On failure the field is not restored.
func (c *Controller) SubmitField(ctx context.Context, value domain.InputField) error {
	if value == nil {
		return ErrFieldMismatch
	}

	c.mu.Lock()
	switch c.state {
	case StateInterrupted:
	case StateSending, StateResuming:
		c.mu.Unlock()
		return ErrBusy
	default:
		c.mu.Unlock()
		return ErrNoInterrupt
	}
	field := c.interrupt.Value.Field
	if value.Type() != field.Type() {
		c.mu.Unlock()
		return fmt.Errorf("%w: expected %s, got %s", ErrFieldMismatch, field.Type(), value.Type())
	}
	display, err := widget.DisplayValue(value)
	if err != nil {
		c.mu.Unlock()
		return err
	}
	c.appendLocked(domain.LocalFormResponse, display)
	c.interrupt = nil
	c.state = StateResuming
	c.notice = ""
	sessionID := c.sessionID
	c.mu.Unlock()

	c.logEvent(convlog.Inbound, convlog.EventFieldResponse, display, map[string]any{
		"field_id":   value.FieldID(),
		"field_type": string(value.Type()),
	})
	c.notify(true)

	resp, err := c.backend.ResumeWithField(ctx, value, sessionID)
	if err != nil {
		return c.fail(err, NoticeSubmitFailed)
	}
	c.resolve(resp)
	return nil
}

// SubmitFieldValues validates raw control values against the pending field
// and submits the resulting answer. Validation errors come from the widget
// package and leave the controller untouched.
func (c *Controller) SubmitFieldValues(ctx context.Context, raw []string) error {
	c.mu.Lock()
	var field domain.Field
	switch c.state {
	case StateInterrupted:
		field = c.interrupt.Value.Field
	case StateSending, StateResuming:
		c.mu.Unlock()
		return ErrBusy
	default:
		c.mu.Unlock()
		return ErrNoInterrupt
	}
	c.mu.Unlock()

	value, err := widget.Build(field, raw)
	if err != nil {
		return err
	}
	return c.SubmitField(ctx, value)
}

// resolve merges a successful response into the controller.
func (c *Controller) resolve(resp *domain.ConversationResponse) {
	c.mu.Lock()
	c.server = resp.Messages
	c.lastActive = c.now()

	var (
		eventType string
		content   string
		meta      map[string]any
	)
	if intr, ok := resp.PendingInterrupt(); ok {
		c.interrupt = &intr
		content = intr.Value.Field.FieldDescription()
		c.appendLocked(domain.LocalAI, content)
		c.state = StateInterrupted
		eventType = convlog.EventFieldRequest
		meta = map[string]any{
			"interrupt_id": intr.ID,
			"field_id":     intr.Value.Field.FieldID(),
			"field_type":   string(intr.Value.Field.Type()),
		}
	} else {
		c.interrupt = nil
		if text, ok := resp.LastAIContent(); ok {
			content = text
			c.appendLocked(domain.LocalAI, content)
			eventType = convlog.EventAIMessage
		}
		c.state = StateIdle
	}
	sessionID := c.sessionID
	c.mu.Unlock()

	if eventType != "" {
		c.logEvent(convlog.Outbound, eventType, content, meta)
	}
	c.logger.Debug("Agent response merged",
		"session_id", sessionID,
		"messages", len(resp.Messages),
		"interrupts", len(resp.Interrupts))
	c.notify(true)
}

// fail records a failed request and returns err unchanged.
func (c *Controller) fail(err error, notice string) error {
	c.mu.Lock()
	c.state = StateIdle
	c.interrupt = nil
	c.notice = notice
	c.lastActive = c.now()
	sessionID := c.sessionID
	c.mu.Unlock()

	attrs := []any{"session_id", sessionID, "error", err}
	var statusErr *agentapi.StatusError
	if errors.As(err, &statusErr) {
		attrs = append(attrs, "status", statusErr.StatusCode)
	}
	c.logger.Error(notice, attrs...)
	c.logEvent(convlog.Outbound, convlog.EventTransportError, err.Error(), nil)
	c.notify(true)
	return err
}

// appendLocked adds a local history entry. c.mu must be held.
func (c *Controller) appendLocked(kind domain.LocalMessageType, content string) {
	now := c.now()
	c.history = append(c.history, domain.LocalMessage{
		ID:        c.newID(),
		Type:      kind,
		Content:   content,
		Timestamp: now,
	})
	c.lastActive = now
}

func (c *Controller) notify(scroll bool) {
	if c.onChange == nil && c.onScroll == nil {
		return
	}
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()
	if c.onChange != nil {
		c.onChange(c.Snapshot())
	}
	if scroll && c.onScroll != nil {
		c.onScroll()
	}
}

func (c *Controller) logEvent(direction, eventType, content string, meta map[string]any) {
	c.convlog.Log(convlog.Event{
		SessionID:  c.SessionID(),
		Channel:    c.channel,
		Direction:  direction,
		EventType:  eventType,
		ContentRaw: content,
		Meta:       meta,
	})
}

// Snapshot returns the current view.
func (c *Controller) Snapshot() View {
	c.mu.Lock()
	defer c.mu.Unlock()

	v := View{
		State:        c.state,
		SessionID:    c.sessionID,
		History:      slices.Clone(c.history),
		Loading:      c.state.Loading(),
		InputEnabled: c.state == StateIdle,
		Placeholder:  placeholderFor(c.state),
		Notice:       c.notice,
	}
	if c.interrupt != nil {
		v.Field = c.interrupt.Value.Field
		v.InterruptID = c.interrupt.ID
	}
	return v
}

// ServerMessages returns the message list from the last successful response.
// It is kept apart from the local history and never shown in the chat view.
func (c *Controller) ServerMessages() []domain.ConversationMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.server)
}

// SessionID returns the session id, or "" before Start.
func (c *Controller) SessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessionID
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// LastActive returns the time of the last submission or response.
func (c *Controller) LastActive() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastActive
}

// DismissNotice clears the failure notice.
func (c *Controller) DismissNotice() {
	c.mu.Lock()
	if c.notice == "" {
		c.mu.Unlock()
		return
	}
	c.notice = ""
	c.mu.Unlock()
	c.notify(false)
}
