// Package agentapi is the HTTP transport to the external agent backend.
package agentapi

import (
	"context"

	"github.com/ashureev/agentchat/internal/domain"
)

// Backend defines the two calls a chat controller makes to the agent.
// This interface is implemented by the HTTP client.
type Backend interface {
	// SendChatMessage posts a new user query for the session.
	SendChatMessage(ctx context.Context, query, sessionID string) (*domain.ConversationResponse, error)

	// ResumeWithField posts the answer to the pending interrupt.
	ResumeWithField(ctx context.Context, field domain.InputField, sessionID string) (*domain.ConversationResponse, error)
}

// Ensure Client implements Backend.
var _ Backend = (*Client)(nil)
