package domain

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

const responseWithInterrupt = `{
  "messages": [
    {"type": "human", "content": "book a flight", "id": "m1", "name": null,
     "additional_kwargs": {}, "response_metadata": {}},
    {"type": "ai", "content": "", "id": "m2", "name": null,
     "additional_kwargs": {"refusal": null}, "response_metadata": {},
     "tool_calls": [{"name": "ask_class", "args": {"question": "Class?"}, "id": "call_1", "type": "tool_call"}],
     "invalid_tool_calls": []}
  ],
  "__interrupt__": [
    {"id": "int-1", "value": {"id": "req-1", "type": "field",
      "field": {"id": "f1", "type": "radio", "description": "Which class?", "options": ["Economy", "Business"]}}},
    {"id": "int-2", "value": {"id": "req-2", "type": "field",
      "field": {"id": "f2", "type": "number", "description": "How many?"}}}
  ]
}`

func TestConversationResponseDecodesInterrupt(t *testing.T) {
	t.Parallel()

	var resp ConversationResponse
	if err := json.Unmarshal([]byte(responseWithInterrupt), &resp); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if len(resp.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(resp.Messages))
	}
	ai, ok := resp.Messages[1].(*AIMessage)
	if !ok {
		t.Fatalf("expected *AIMessage, got %T", resp.Messages[1])
	}
	if len(ai.ToolCalls) != 1 || ai.ToolCalls[0].Name != "ask_class" {
		t.Fatalf("unexpected tool calls: %+v", ai.ToolCalls)
	}

	it, ok := resp.PendingInterrupt()
	if !ok {
		t.Fatal("expected a pending interrupt")
	}
	if it.ID != "int-1" {
		t.Fatalf("expected first interrupt, got %q", it.ID)
	}
	radio, ok := it.Value.Field.(*RadioField)
	if !ok {
		t.Fatalf("expected *RadioField, got %T", it.Value.Field)
	}
	if radio.FieldDescription() != "Which class?" || len(radio.Options) != 2 {
		t.Fatalf("unexpected radio field: %+v", radio)
	}

	if _, ok := resp.LastAIContent(); ok {
		t.Fatal("content-less ai message must not count as last ai content")
	}
}

func TestConversationResponseLastAIContent(t *testing.T) {
	t.Parallel()

	body := `{"messages": [
		{"type": "ai", "content": "first", "id": "a1", "name": null},
		{"type": "tool", "content": "42", "id": "t1", "name": "ask_number", "tool_call_id": "call_1", "status": "success"},
		{"type": "ai", "content": "Hi there", "id": "a2", "name": null},
		{"type": "ai", "content": "", "id": "a3", "name": null}
	]}`

	var resp ConversationResponse
	if err := json.Unmarshal([]byte(body), &resp); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	got, ok := resp.LastAIContent()
	if !ok || got != "Hi there" {
		t.Fatalf("expected %q, got %q (ok=%v)", "Hi there", got, ok)
	}
	if _, ok := resp.PendingInterrupt(); ok {
		t.Fatal("expected no interrupt")
	}
	tool, ok := resp.Messages[1].(*ToolMessage)
	if !ok || tool.ToolCallID != "call_1" {
		t.Fatalf("unexpected tool message: %#v", resp.Messages[1])
	}
}

func TestConversationResponseRejectsUnknownTags(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
	}{
		{"message", `{"messages": [{"type": "system", "content": "x", "id": "s1"}]}`},
		{"field", `{"messages": [], "__interrupt__": [{"id": "i", "value": {"id": "r", "type": "field", "field": {"id": "f", "type": "slider"}}}]}`},
		{"request", `{"messages": [], "__interrupt__": [{"id": "i", "value": {"id": "r", "type": "form", "field": {"id": "f", "type": "text"}}}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var resp ConversationResponse
			err := json.Unmarshal([]byte(tt.body), &resp)
			if !errors.Is(err, ErrUnknownTag) {
				t.Fatalf("expected ErrUnknownTag, got %v", err)
			}
		})
	}
}

func TestInputFieldPayloads(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input InputField
		want  string
	}{
		{"checkbox", &CheckboxInput{ID: "f1", Values: []string{"A", "B"}}, `{"type":"checkbox","id":"f1","values":["A","B"]}`},
		{"checkbox empty", &CheckboxInput{ID: "f1"}, `{"type":"checkbox","id":"f1","values":[]}`},
		{"radio", &RadioInput{ID: "f2", Value: "Business"}, `{"type":"radio","id":"f2","value":"Business"}`},
		{"number", &NumberInput{ID: "f3", Value: 42.5}, `{"type":"number","id":"f3","value":42.5}`},
		{"date", &DateInput{ID: "f4", Value: "2025-01-31"}, `{"type":"date","id":"f4","value":"2025-01-31"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			data, err := json.Marshal(tt.input)
			if err != nil {
				t.Fatalf("marshal failed: %v", err)
			}
			if string(data) != tt.want {
				t.Fatalf("payload mismatch:\n got %s\nwant %s", data, tt.want)
			}
		})
	}
}

func TestFieldMarshalIncludesTag(t *testing.T) {
	t.Parallel()

	field := &TextField{BaseField: BaseField{ID: "name", Description: "Your name"}, Placeholder: "Jane", MaxLength: 40}
	data, err := json.Marshal(field)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if !strings.Contains(string(data), `"type":"text"`) || !strings.Contains(string(data), `"max_length":40`) {
		t.Fatalf("unexpected field json: %s", data)
	}

	decoded, err := DecodeField(data)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	text, ok := decoded.(*TextField)
	if !ok || text.Placeholder != "Jane" {
		t.Fatalf("unexpected decoded field: %#v", decoded)
	}
}
