package domain

import "time"

// LocalMessageType tags a display-only history entry.
type LocalMessageType string

const (
	LocalUser         LocalMessageType = "user"
	LocalAI           LocalMessageType = "ai"
	LocalFormResponse LocalMessageType = "form-response"
)

// LocalMessage is one optimistic, client-side chat bubble. The local history
// only grows and is never reconciled with the server message list.
type LocalMessage struct {
	ID        string           `json:"id"`
	Type      LocalMessageType `json:"type"`
	Content   string           `json:"content"`
	Timestamp time.Time        `json:"timestamp"`
}
