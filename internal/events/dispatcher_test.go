package events_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cura-agent/roster-service/internal/events"
)

func TestDispatcherRunsEveryHandler(t *testing.T) {
	d := events.NewInMemoryDispatcher()

	var calls []string
	d.Subscribe(events.EventRosterEntryCreated, func(context.Context, events.Event) error {
		calls = append(calls, "first")
		return errors.New("boom")
	})
	d.Subscribe(events.EventRosterEntryCreated, func(_ context.Context, e events.Event) error {
		calls = append(calls, "second:"+e.EntryID)
		return nil
	})
	d.Subscribe(events.EventRosterEntryDeleted, func(context.Context, events.Event) error {
		calls = append(calls, "deleted")
		return nil
	})

	err := d.Publish(context.Background(), events.Event{Type: events.EventRosterEntryCreated, EntryID: "doc-1"})
	require.EqualError(t, err, "boom")
	assert.Equal(t, []string{"first", "second:doc-1"}, calls)
}

func TestDispatcherWithoutListeners(t *testing.T) {
	d := events.NewInMemoryDispatcher()
	assert.NoError(t, d.Publish(context.Background(), events.Event{Type: events.EventRosterNotice}))
}
