// Package domain contains the wire and display types shared by the chat
// client: server conversation messages, interrupt field descriptors, field
// answers and the locally held display history.
package domain

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrUnknownTag is returned when a tagged payload carries a type tag that is
// not part of the agent API contract.
var ErrUnknownTag = errors.New("unknown type tag")

// MessageType tags a server conversation message.
type MessageType string

const (
	MessageHuman MessageType = "human"
	MessageAI    MessageType = "ai"
	MessageTool  MessageType = "tool"
)

// ConversationMessage is one entry of the authoritative message list returned
// by the agent backend. Implemented by *HumanMessage, *AIMessage and
// *ToolMessage only.
type ConversationMessage interface {
	Type() MessageType
	MessageID() string
	Text() string
	isConversationMessage()
}

// BaseMessage holds the fields common to every message variant.
type BaseMessage struct {
	Content          string         `json:"content"`
	ID               string         `json:"id"`
	Name             *string        `json:"name"`
	AdditionalKwargs map[string]any `json:"additional_kwargs,omitempty"`
	ResponseMetadata map[string]any `json:"response_metadata,omitempty"`
}

// MessageID returns the backend-assigned message id.
func (m BaseMessage) MessageID() string { return m.ID }

// Text returns the message content.
func (m BaseMessage) Text() string { return m.Content }

// HumanMessage is a user turn as recorded by the backend.
type HumanMessage struct {
	BaseMessage
}

// ToolCall is a tool invocation requested by the model.
type ToolCall struct {
	Name string         `json:"name"`
	Args map[string]any `json:"args"`
	ID   string         `json:"id"`
	Type string         `json:"type"`
}

// AIMessage is a model turn. Tool-calling turns usually have empty content.
type AIMessage struct {
	BaseMessage
	ToolCalls        []ToolCall        `json:"tool_calls"`
	InvalidToolCalls []json.RawMessage `json:"invalid_tool_calls,omitempty"`
	UsageMetadata    map[string]any    `json:"usage_metadata,omitempty"`
}

// ToolMessage carries a tool result correlated to an AIMessage tool call.
type ToolMessage struct {
	BaseMessage
	ToolCallID string          `json:"tool_call_id"`
	Artifact   json.RawMessage `json:"artifact,omitempty"`
	Status     string          `json:"status,omitempty"`
}

func (*HumanMessage) Type() MessageType { return MessageHuman }
func (*AIMessage) Type() MessageType    { return MessageAI }
func (*ToolMessage) Type() MessageType  { return MessageTool }

func (*HumanMessage) isConversationMessage() {}
func (*AIMessage) isConversationMessage()    {}
func (*ToolMessage) isConversationMessage()  {}

// MarshalJSON writes the message with its type tag.
func (m *HumanMessage) MarshalJSON() ([]byte, error) {
	type alias HumanMessage
	return json.Marshal(struct {
		Type MessageType `json:"type"`
		*alias
	}{MessageHuman, (*alias)(m)})
}

// MarshalJSON writes the message with its type tag.
func (m *AIMessage) MarshalJSON() ([]byte, error) {
	type alias AIMessage
	return json.Marshal(struct {
		Type MessageType `json:"type"`
		*alias
	}{MessageAI, (*alias)(m)})
}

// MarshalJSON writes the message with its type tag.
func (m *ToolMessage) MarshalJSON() ([]byte, error) {
	type alias ToolMessage
	return json.Marshal(struct {
		Type MessageType `json:"type"`
		*alias
	}{MessageTool, (*alias)(m)})
}

type typeTag struct {
	Type string `json:"type"`
}

// DecodeMessage decodes a single tagged conversation message.
func DecodeMessage(raw json.RawMessage) (ConversationMessage, error) {
	var tag typeTag
	if err := json.Unmarshal(raw, &tag); err != nil {
		return nil, fmt.Errorf("decode message tag: %w", err)
	}

	var msg ConversationMessage
	switch MessageType(tag.Type) {
	case MessageHuman:
		msg = &HumanMessage{}
	case MessageAI:
		msg = &AIMessage{}
	case MessageTool:
		msg = &ToolMessage{}
	default:
		return nil, fmt.Errorf("%w: message %q", ErrUnknownTag, tag.Type)
	}

	if err := json.Unmarshal(raw, msg); err != nil {
		return nil, fmt.Errorf("decode %s message: %w", tag.Type, err)
	}
	return msg, nil
}
