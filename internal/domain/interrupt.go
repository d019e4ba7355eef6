package domain

import (
	"encoding/json"
	"fmt"
)

// RequestTypeField is the only human-input request kind the client renders.
const RequestTypeField = "field"

// FieldInputRequest is the payload of an interrupt: one field to answer.
type FieldInputRequest struct {
	ID    string `json:"id"`
	Type  string `json:"type"`
	Field Field  `json:"field"`
}

// UnmarshalJSON decodes the request and its tagged field. Request kinds other
// than "field" are rejected.
func (r *FieldInputRequest) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID    string          `json:"id"`
		Type  string          `json:"type"`
		Field json.RawMessage `json:"field"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode field input request: %w", err)
	}
	if raw.Type != RequestTypeField {
		return fmt.Errorf("%w: input request %q", ErrUnknownTag, raw.Type)
	}

	field, err := DecodeField(raw.Field)
	if err != nil {
		return err
	}

	r.ID = raw.ID
	r.Type = raw.Type
	r.Field = field
	return nil
}

// Interrupt is a pause marker: the backend is blocked until the field in
// Value is answered.
type Interrupt struct {
	Value FieldInputRequest `json:"value"`
	ID    string            `json:"id"`
}

// ConversationResponse is the body returned by both agent endpoints.
type ConversationResponse struct {
	Messages   []ConversationMessage `json:"messages"`
	Interrupts []Interrupt           `json:"__interrupt__,omitempty"`
}

// UnmarshalJSON decodes the tagged message list and any interrupts. Other
// graph state keys in the body are ignored.
func (r *ConversationResponse) UnmarshalJSON(data []byte) error {
	var raw struct {
		Messages   []json.RawMessage `json:"messages"`
		Interrupts []Interrupt       `json:"__interrupt__"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	messages := make([]ConversationMessage, 0, len(raw.Messages))
	for i, m := range raw.Messages {
		msg, err := DecodeMessage(m)
		if err != nil {
			return fmt.Errorf("messages[%d]: %w", i, err)
		}
		messages = append(messages, msg)
	}

	r.Messages = messages
	r.Interrupts = raw.Interrupts
	return nil
}

// PendingInterrupt returns the first interrupt, if any. Later entries are
// never surfaced.
func (r *ConversationResponse) PendingInterrupt() (Interrupt, bool) {
	if len(r.Interrupts) == 0 {
		return Interrupt{}, false
	}
	return r.Interrupts[0], true
}

// LastAIContent returns the content of the last ai message with non-empty
// content.
func (r *ConversationResponse) LastAIContent() (string, bool) {
	for i := len(r.Messages) - 1; i >= 0; i-- {
		m := r.Messages[i]
		if m.Type() == MessageAI && m.Text() != "" {
			return m.Text(), true
		}
	}
	return "", false
}
