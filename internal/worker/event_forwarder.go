package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/cura-agent/roster-service/internal/events"
	"github.com/cura-agent/roster-service/internal/notify"
)

// ErrQueueFull is returned by the dispatcher handler when the forwarder
// cannot accept another event.
var ErrQueueFull = errors.New("event forwarder queue full")

// rosterEvents are the event types the forwarder ships to Kafka.
var rosterEvents = []events.EventType{
	events.EventRosterEntryCreated,
	events.EventRosterEntryUpdated,
	events.EventRosterEntryDeleted,
}

// EventForwarder moves roster change events off the request path and writes
// them to Kafka from a single background goroutine.
type EventForwarder struct {
	writer notify.MessageWriter
	logger *zap.Logger
	queue  chan events.Event

	mu      sync.Mutex
	started bool
	stopped bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewEventForwarder builds a forwarder with a queue of size buffer.
func NewEventForwarder(writer notify.MessageWriter, logger *zap.Logger, buffer int) *EventForwarder {
	if buffer <= 0 {
		buffer = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventForwarder{
		writer: writer,
		logger: logger.Named("event_forwarder"),
		queue:  make(chan events.Event, buffer),
	}
}

// Register subscribes the forwarder to roster change events. Notices are
// already published by notify.KafkaSink and are not forwarded.
func (f *EventForwarder) Register(dispatcher events.Dispatcher) {
	if dispatcher == nil {
		return
	}
	for _, t := range rosterEvents {
		dispatcher.Subscribe(t, f.enqueue)
	}
}

// Start launches the writer goroutine. It returns after the goroutine is running.
func (f *EventForwarder) Start(ctx context.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.started {
		return
	}
	f.started = true

	ctx, f.cancel = context.WithCancel(ctx)
	f.wg.Add(1)
	go f.run(ctx)
}

// Stop drains queued events, waits for the writer goroutine and closes the writer.
func (f *EventForwarder) Stop() error {
	f.mu.Lock()
	if f.stopped {
		f.mu.Unlock()
		return nil
	}
	f.stopped = true
	close(f.queue)
	started := f.started
	f.mu.Unlock()

	if started {
		f.wg.Wait()
		f.cancel()
	}
	return f.writer.Close()
}

func (f *EventForwarder) enqueue(_ context.Context, event events.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.stopped {
		return nil
	}
	select {
	case f.queue <- event:
		return nil
	default:
		f.logger.Warn("dropping roster event", zap.String("event_id", event.ID), zap.String("type", string(event.Type)))
		return ErrQueueFull
	}
}

func (f *EventForwarder) run(ctx context.Context) {
	defer f.wg.Done()
	for event := range f.queue {
		if err := f.write(ctx, event); err != nil {
			f.logger.Error("forward roster event", zap.String("event_id", event.ID), zap.Error(err))
		}
	}
}

func (f *EventForwarder) write(ctx context.Context, event events.Event) error {
	raw, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	return f.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(string(event.Category) + "/" + event.EntryID),
		Value: raw,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
		},
	})
}
