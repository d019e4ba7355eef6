package agentapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ashureev/agentchat/internal/domain"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(srv.URL+"/", nil)
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	return client
}

func TestSendChatMessagePostsQuery(t *testing.T) {
	t.Parallel()

	var gotBody map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != ChatPath {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected application/json, got %q", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"messages":[{"type":"human","content":"hello","id":"1","name":null},{"type":"ai","content":"Hi there","id":"2","name":null}]}`))
	})

	resp, err := client.SendChatMessage(context.Background(), "hello", "s1")
	if err != nil {
		t.Fatalf("SendChatMessage failed: %v", err)
	}

	if gotBody["query"] != "hello" || gotBody["session_id"] != "s1" {
		t.Fatalf("unexpected request body: %v", gotBody)
	}
	if content, ok := resp.LastAIContent(); !ok || content != "Hi there" {
		t.Fatalf("unexpected response: %q %v", content, ok)
	}
}

func TestResumeWithFieldPostsTypedValue(t *testing.T) {
	t.Parallel()

	var gotBody struct {
		Field     map[string]any `json:"field"`
		SessionID string         `json:"session_id"`
	}
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != ResumeFieldPath {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_, _ = w.Write([]byte(`{"messages":[]}`))
	})

	_, err := client.ResumeWithField(context.Background(), &domain.RadioInput{ID: "f1", Value: "Business"}, "s1")
	if err != nil {
		t.Fatalf("ResumeWithField failed: %v", err)
	}

	if gotBody.SessionID != "s1" {
		t.Fatalf("expected session s1, got %q", gotBody.SessionID)
	}
	if gotBody.Field["type"] != "radio" || gotBody.Field["value"] != "Business" || gotBody.Field["id"] != "f1" {
		t.Fatalf("unexpected field payload: %v", gotBody.Field)
	}
}

func TestNon2xxIsTransportError(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"detail":"boom"}`, http.StatusBadGateway)
	})

	_, err := client.SendChatMessage(context.Background(), "hello", "s1")
	if !errors.Is(err, ErrTransport) {
		t.Fatalf("expected ErrTransport, got %v", err)
	}
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected *StatusError, got %T", err)
	}
	if statusErr.StatusCode != http.StatusBadGateway || statusErr.StatusText != "Bad Gateway" {
		t.Fatalf("unexpected status error: %+v", statusErr)
	}
	if !strings.Contains(err.Error(), "Failed to send chat message") {
		t.Fatalf("unexpected message: %v", err)
	}
}

func TestMalformedBodyIsNotTransportError(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"messages": [`))
	})

	_, err := client.SendChatMessage(context.Background(), "hello", "s1")
	if err == nil {
		t.Fatal("expected decode error")
	}
	if errors.Is(err, ErrTransport) {
		t.Fatalf("decode failure must not be classified as transport: %v", err)
	}
}

func TestNetworkFailureIsTransportError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	client, err := NewClient(url, nil)
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	_, err = client.SendChatMessage(context.Background(), "hello", "s1")
	if !errors.Is(err, ErrTransport) {
		t.Fatalf("expected ErrTransport, got %v", err)
	}
}

func TestEmptySessionNeverSends(t *testing.T) {
	t.Parallel()

	called := false
	client := newTestClient(t, func(http.ResponseWriter, *http.Request) { called = true })

	if _, err := client.SendChatMessage(context.Background(), "hello", ""); err == nil {
		t.Fatal("expected error for empty session")
	}
	if called {
		t.Fatal("request must not fire without a session id")
	}
}

func TestNewClientRejectsBadURL(t *testing.T) {
	t.Parallel()

	if _, err := NewClient("ftp://example.com", nil); err == nil {
		t.Fatal("expected error for non-http scheme")
	}
}
