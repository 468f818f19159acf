package events

import (
	"time"

	"github.com/cura-agent/roster-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventRosterEntryCreated EventType = "roster_entry_created"
	EventRosterEntryUpdated EventType = "roster_entry_updated"
	EventRosterEntryDeleted EventType = "roster_entry_deleted"
	EventRosterNotice       EventType = "roster_notice"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string          `json:"id"`
	Type      EventType       `json:"type"`
	Category  domain.Category `json:"category"`
	EntryID   string          `json:"entry_id,omitempty"`
	AccountID string          `json:"account_id,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   interface{}     `json:"payload"`
}

// RosterEntryPayload carries the entry state after a create or update.
type RosterEntryPayload struct {
	Entry domain.RosterEntry `json:"entry"`
}

// RosterEntryDeletedPayload payload.
type RosterEntryDeletedPayload struct {
	EntryID string `json:"entry_id"`
}

// RosterNoticePayload mirrors a toast shown to the user.
type RosterNoticePayload struct {
	Level   domain.NotificationLevel `json:"level"`
	Message string                   `json:"message"`
}
