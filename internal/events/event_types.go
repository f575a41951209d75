package events

import (
	"time"

	"github.com/audioforge/studio/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventUserRegistered      EventType = "user.registered"
	EventGenerationCompleted EventType = "generation.completed"
	EventHistoryDeleted      EventType = "history.deleted"
)

// AllTypes lists every event type, in publication order of the user journey.
var AllTypes = []EventType{EventUserRegistered, EventGenerationCompleted, EventHistoryDeleted}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	UserID    string    `json:"user_id"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

// UserRegisteredPayload payload.
type UserRegisteredPayload struct {
	Email string `json:"email"`
}

// GenerationCompletedPayload payload.
type GenerationCompletedPayload struct {
	AudioID   string             `json:"audio_id"`
	Service   domain.ServiceType `json:"service"`
	AudioURL  string             `json:"audio_url"`
	BlobName  string             `json:"blob_name,omitempty"`
	HistoryID string             `json:"history_id,omitempty"`
}

// HistoryDeletedPayload payload.
type HistoryDeletedPayload struct {
	HistoryID   string `json:"history_id"`
	BlobName    string `json:"blob_name,omitempty"`
	BlobDeleted bool   `json:"blob_deleted"`
}
