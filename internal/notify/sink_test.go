package notify_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/cura-agent/roster-service/internal/domain"
	"github.com/cura-agent/roster-service/internal/events"
	"github.com/cura-agent/roster-service/internal/notify"
	"github.com/cura-agent/roster-service/internal/observability"
	"github.com/cura-agent/roster-service/internal/roster"
)

type sinkFunc func(context.Context, domain.Notification) error

func (f sinkFunc) Notify(ctx context.Context, n domain.Notification) error { return f(ctx, n) }

type fakeWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

func notice(level domain.NotificationLevel, msg string) domain.Notification {
	return domain.Notification{
		Level:    level,
		Message:  msg,
		Category: domain.CategoryDoctor,
		At:       time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func TestLogSink(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	sink := notify.NewLogSink(zap.New(core))

	ctx := notify.WithRecipient(context.Background(), "acc-1")
	require.NoError(t, sink.Notify(ctx, notice(domain.LevelSuccess, "Doctor added successfully")))
	require.NoError(t, sink.Notify(ctx, notice(domain.LevelError, "Failed to delete doctor: roster entry not found")))

	entries := logs.AllUntimed()
	require.Len(t, entries, 2)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, "Doctor added successfully", entries[0].Message)
	assert.Equal(t, "acc-1", entries[0].ContextMap()["account_id"])
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
}

func TestFanoutRunsAllSinksAndJoinsErrors(t *testing.T) {
	metrics := observability.NewMetrics()
	var delivered []string
	ok := sinkFunc(func(_ context.Context, n domain.Notification) error {
		delivered = append(delivered, n.Message)
		return nil
	})
	broken := sinkFunc(func(context.Context, domain.Notification) error {
		return errors.New("down")
	})

	fanout := notify.NewFanout(metrics,
		notify.Named{Name: "broken", Sink: broken},
		notify.Named{Name: "skipped", Sink: nil},
		notify.Named{Name: "ok", Sink: ok},
	)

	err := fanout.Notify(context.Background(), notice(domain.LevelSuccess, "hi"))
	require.EqualError(t, err, "broken: down")
	assert.Equal(t, []string{"hi"}, delivered)
	assert.Equal(t, int64(1), metrics.Snapshot().Notifications["ok|success"])
	assert.Zero(t, metrics.Snapshot().Notifications["broken|success"])
}

func TestKafkaSink(t *testing.T) {
	w := &fakeWriter{}
	sink := notify.NewKafkaSink(w, time.Second)

	ctx := notify.WithRecipient(context.Background(), "acc-7")
	require.NoError(t, sink.Notify(ctx, notice(domain.LevelSuccess, "Doctor updated successfully")))
	require.Len(t, w.msgs, 1)
	assert.Equal(t, "doctor", string(w.msgs[0].Key))

	var got domain.Notification
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &got))
	assert.Equal(t, "acc-7", got.AccountID)
	assert.Equal(t, "Doctor updated successfully", got.Message)

	w.err = errors.New("no brokers")
	err := sink.Notify(ctx, notice(domain.LevelSuccess, "x"))
	assert.ErrorContains(t, err, "write kafka message: no brokers")
}

// stalledWriter blocks until the caller's context is done, like a writer
// whose brokers never answer.
type stalledWriter struct{}

func (stalledWriter) WriteMessages(ctx context.Context, _ ...kafka.Message) error {
	<-ctx.Done()
	return ctx.Err()
}

func (stalledWriter) Close() error { return nil }

func TestKafkaSinkWriteIsBounded(t *testing.T) {
	sink := notify.NewKafkaSink(stalledWriter{}, 20*time.Millisecond)

	start := time.Now()
	err := sink.Notify(context.Background(), notice(domain.LevelSuccess, "Doctor added successfully"))
	elapsed := time.Since(start)

	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, elapsed, time.Second)
}

func TestFanoutReturnsWhenKafkaStalls(t *testing.T) {
	var delivered int
	fanout := notify.NewFanout(observability.NewMetrics(),
		notify.Named{Name: "kafka", Sink: notify.NewKafkaSink(stalledWriter{}, 20*time.Millisecond)},
		notify.Named{Name: "log", Sink: sinkFunc(func(context.Context, domain.Notification) error {
			delivered++
			return nil
		})},
	)

	done := make(chan error, 1)
	go func() { done <- fanout.Notify(context.Background(), notice(domain.LevelSuccess, "hi")) }()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Equal(t, 1, delivered)
	case <-time.After(2 * time.Second):
		t.Fatal("fanout blocked on a stalled kafka writer")
	}
}

func TestKafkaWriterFlushesEachMessage(t *testing.T) {
	w := notify.NewKafkaWriter(zap.NewNop(), []string{"localhost:9092"}, "roster-notifications")
	assert.Equal(t, 1, w.BatchSize)
	assert.LessOrEqual(t, w.BatchTimeout, 50*time.Millisecond)
	assert.Positive(t, w.WriteTimeout)
	assert.Positive(t, w.MaxAttempts)
	assert.False(t, w.Async)

	async := notify.NewAsyncKafkaWriter(zap.NewNop(), []string{"localhost:9092"}, "roster-notifications")
	assert.True(t, async.Async)
	assert.NotNil(t, async.Completion)
	assert.Equal(t, 1, async.BatchSize)
}

func TestSinksPlugIntoStore(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	fanout := notify.NewFanout(observability.NewMetrics(), notify.Named{Name: "log", Sink: notify.NewLogSink(zap.New(core))})
	store := roster.New(domain.CategoryNurse, nil, roster.WithSink(fanout))

	_, err := store.Create(notify.WithRecipient(context.Background(), "acc-3"), domain.RosterEntry{FirstName: "Salma", Role: domain.RoleNurse})
	require.NoError(t, err)

	entries := logs.AllUntimed()
	require.Len(t, entries, 1)
	assert.Equal(t, "Nurse added successfully", entries[0].Message)
	assert.Equal(t, "acc-3", entries[0].ContextMap()["account_id"])
}

func TestDispatcherSink(t *testing.T) {
	d := events.NewInMemoryDispatcher()
	var got events.Event
	d.Subscribe(events.EventRosterNotice, func(_ context.Context, e events.Event) error {
		got = e
		return nil
	})

	sink := notify.NewDispatcherSink(d)
	require.NoError(t, sink.Notify(notify.WithRecipient(context.Background(), "acc-2"), notice(domain.LevelError, "Failed")))

	assert.NotEmpty(t, got.ID)
	assert.Equal(t, domain.CategoryDoctor, got.Category)
	assert.Equal(t, "acc-2", got.AccountID)
	assert.Equal(t, events.RosterNoticePayload{Level: domain.LevelError, Message: "Failed"}, got.Payload)
}

func TestFeedKey(t *testing.T) {
	assert.Equal(t, "notifications:acc-1", notify.FeedKey("acc-1"))
	assert.Equal(t, "notifications:anonymous", notify.FeedKey(""))
}

func TestFeedSinkWithoutClient(t *testing.T) {
	sink := notify.NewFeedSink(nil, 0, time.Minute)
	assert.Error(t, sink.Notify(context.Background(), notice(domain.LevelSuccess, "x")))
	_, err := sink.Recent(context.Background(), "acc", 5)
	assert.Error(t, err)
}
