package agentapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/ashureev/agentchat/internal/domain"
)

const (
	// ChatPath is the endpoint for new user queries.
	ChatPath = "/agent/simple/chat"
	// ResumeFieldPath is the endpoint for interrupt answers.
	ResumeFieldPath = "/agent/simple/chat/resume/field"
)

var (
	// ErrTransport marks HTTP and network failures. It is never returned for
	// malformed response bodies.
	ErrTransport = errors.New("agent transport failure")

	errMissingSession = errors.New("session id is required")
)

// StatusError is returned when the backend answers with a non-2xx status.
type StatusError struct {
	Op         string
	StatusCode int
	StatusText string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.StatusText)
}

// Unwrap makes errors.Is(err, ErrTransport) hold.
func (e *StatusError) Unwrap() error {
	return ErrTransport
}

type chatInput struct {
	Query     string `json:"query"`
	SessionID string `json:"session_id"`
}

type chatFieldInput struct {
	Field     domain.InputField `json:"field"`
	SessionID string            `json:"session_id"`
}

// Client talks to the agent backend over HTTP+JSON. It never retries and
// sets no timeout of its own; cancellation comes from the caller's context.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

// NewClient creates a client for the backend rooted at baseURL.
func NewClient(baseURL string, logger *slog.Logger) (*Client, error) {
	return NewClientWithHTTP(baseURL, &http.Client{}, logger)
}

// NewClientWithHTTP creates a client that sends requests through hc.
func NewClientWithHTTP(baseURL string, hc *http.Client, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if hc == nil {
		hc = &http.Client{}
	}

	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse agent base url %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("agent base url %q must be http or https", baseURL)
	}

	return &Client{
		baseURL: strings.TrimRight(u.String(), "/"),
		http:    hc,
		logger:  logger,
	}, nil
}

// BaseURL returns the normalized backend root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// SendChatMessage posts a user query tied to sessionID.
func (c *Client) SendChatMessage(ctx context.Context, query, sessionID string) (*domain.ConversationResponse, error) {
	if sessionID == "" {
		return nil, errMissingSession
	}
	return c.post(ctx, "Failed to send chat message", ChatPath, chatInput{
		Query:     query,
		SessionID: sessionID,
	})
}

// ResumeWithField posts the answer to the session's pending interrupt.
func (c *Client) ResumeWithField(ctx context.Context, field domain.InputField, sessionID string) (*domain.ConversationResponse, error) {
	if sessionID == "" {
		return nil, errMissingSession
	}
	if field == nil {
		return nil, errors.New("field value is required")
	}
	return c.post(ctx, "Failed to resume chat", ResumeFieldPath, chatFieldInput{
		Field:     field,
		SessionID: sessionID,
	})
}

func (c *Client) post(ctx context.Context, op, path string, body any) (*domain.ConversationResponse, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	c.logger.Debug("Agent request", "path", path, "bytes", len(payload))

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, ErrTransport, err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			c.logger.Debug("failed to close agent response body", "error", closeErr)
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused; the body is not parsed.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		c.logger.Warn("Agent request failed", "path", path, "status", resp.StatusCode)
		return nil, &StatusError{
			Op:         op,
			StatusCode: resp.StatusCode,
			StatusText: statusText(resp),
		}
	}

	var out domain.ConversationResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode agent response: %w", err)
	}
	return &out, nil
}

// statusText returns the reason phrase without the numeric code.
func statusText(resp *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	return text
}
