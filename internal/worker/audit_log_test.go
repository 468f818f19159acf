package worker_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/cura-agent/roster-service/internal/domain"
	"github.com/cura-agent/roster-service/internal/events"
	"github.com/cura-agent/roster-service/internal/notify"
	"github.com/cura-agent/roster-service/internal/worker"
)

func TestAuditLog_RecordsChangesAndNotices(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	dispatcher := events.NewInMemoryDispatcher()
	worker.NewAuditLog(zap.New(core)).Register(dispatcher)

	ctx := context.Background()
	require.NoError(t, dispatcher.Publish(ctx, rosterEvent(events.EventRosterEntryUpdated, "doc-2")))

	sink := notify.NewDispatcherSink(dispatcher)
	notice := domain.Notification{Level: domain.LevelError, Message: "Failed to delete doctor: roster entry not found", Category: domain.CategoryDoctor}
	require.NoError(t, sink.Notify(notify.WithRecipient(ctx, "acc-4"), notice))

	entries := logs.AllUntimed()
	require.Len(t, entries, 2)

	assert.Equal(t, "roster_entry_updated", entries[0].Message)
	assert.Equal(t, "doc-2", entries[0].ContextMap()["entry_id"])

	assert.Equal(t, "roster_notice", entries[1].Message)
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	fields := entries[1].ContextMap()
	assert.Equal(t, "acc-4", fields["account_id"])
	assert.Equal(t, "error", fields["level"])
	assert.Equal(t, notice.Message, fields["message"])
}

func TestAuditLog_NilDispatcher(t *testing.T) {
	assert.NotPanics(t, func() { worker.NewAuditLog(nil).Register(nil) })
}

func TestEventForwarder_DoesNotForwardNotices(t *testing.T) {
	writer := &recordingWriter{}
	dispatcher := events.NewInMemoryDispatcher()
	fwd := worker.NewEventForwarder(writer, zap.NewNop(), 4)
	fwd.Register(dispatcher)
	fwd.Start(context.Background())

	require.NoError(t, dispatcher.Publish(context.Background(), rosterEvent(events.EventRosterNotice, "")))
	require.NoError(t, fwd.Stop())
	assert.Empty(t, writer.messages())
}
