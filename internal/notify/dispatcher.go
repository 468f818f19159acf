package notify

import (
	"context"

	"github.com/google/uuid"

	"github.com/cura-agent/roster-service/internal/domain"
	"github.com/cura-agent/roster-service/internal/events"
)

// DispatcherSink republishes notices as in-process events.
type DispatcherSink struct {
	dispatcher events.Dispatcher
}

// NewDispatcherSink constructs a DispatcherSink.
func NewDispatcherSink(dispatcher events.Dispatcher) *DispatcherSink {
	return &DispatcherSink{dispatcher: dispatcher}
}

// Notify publishes an EventRosterNotice.
func (s *DispatcherSink) Notify(ctx context.Context, n domain.Notification) error {
	return s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventRosterNotice,
		Category:  n.Category,
		AccountID: recipient(ctx, n),
		Timestamp: n.At,
		Payload:   events.RosterNoticePayload{Level: n.Level, Message: n.Message},
	})
}
