package chat

import (
	"fmt"
	"testing"

	"github.com/ashureev/agentchat/internal/agentapi"
	"github.com/ashureev/agentchat/internal/widget"
)

func TestDescribe(t *testing.T) {
	t.Parallel()

	statusErr := &agentapi.StatusError{Op: "Failed to send chat message", StatusCode: 502, StatusText: "Bad Gateway"}

	tests := []struct {
		name   string
		err    error
		notice string
		want   string
	}{
		{"notice wins for backend errors", statusErr, NoticeSendFailed, NoticeSendFailed},
		{"status text without notice", statusErr, "", "Failed to send chat message: Bad Gateway"},
		{"guard keeps its text", ErrAwaitingField, NoticeSendFailed, ErrAwaitingField.Error()},
		{"wrapped guard", fmt.Errorf("%w: radio", ErrFieldMismatch), "", "answer does not match the requested field: radio"},
		{"validation keeps its text", widget.ErrRequired, NoticeSubmitFailed, widget.ErrRequired.Error()},
		{"unknown error", fmt.Errorf("boom"), "", "agent request failed"},
	}

	for _, tt := range tests {
		if got := Describe(tt.err, tt.notice); got != tt.want {
			t.Errorf("%s: Describe() = %q, want %q", tt.name, got, tt.want)
		}
	}
}
