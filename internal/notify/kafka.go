package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/cura-agent/roster-service/internal/domain"
)

// MessageWriter is the subset of *kafka.Writer the sinks need.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

const (
	writerBatchTimeout = 10 * time.Millisecond
	writerWriteTimeout = 5 * time.Second
	writerMaxAttempts  = 3

	// DefaultNoticeTimeout bounds a single KafkaSink write.
	DefaultNoticeTimeout = 500 * time.Millisecond
)

// NewKafkaWriter builds a synchronous writer for topic that flushes every
// message without waiting for a batch to fill.
func NewKafkaWriter(logger *zap.Logger, brokers []string, topic string) *kafka.Writer {
	l := logger.With(zap.String("topic", topic))
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		BatchSize:              1,
		BatchTimeout:           writerBatchTimeout,
		WriteTimeout:           writerWriteTimeout,
		MaxAttempts:            writerMaxAttempts,
		Logger:                 kafka.LoggerFunc(l.Sugar().Debugf),
		ErrorLogger:            kafka.LoggerFunc(l.Sugar().Errorf),
		AllowAutoTopicCreation: true,
	}
}

// NewAsyncKafkaWriter is NewKafkaWriter with Async set: WriteMessages returns
// once the message is queued and delivery failures are logged.
func NewAsyncKafkaWriter(logger *zap.Logger, brokers []string, topic string) *kafka.Writer {
	w := NewKafkaWriter(logger, brokers, topic)
	w.Async = true
	l := logger.With(zap.String("topic", topic))
	w.Completion = func(msgs []kafka.Message, err error) {
		if err != nil {
			l.Warn("kafka delivery failed", zap.Int("messages", len(msgs)), zap.Error(err))
		}
	}
	return w
}

// KafkaSink publishes notices so other services can react to roster changes.
type KafkaSink struct {
	writer  MessageWriter
	timeout time.Duration
}

// NewKafkaSink constructs a KafkaSink. Each write is cut off after timeout;
// a non-positive timeout means DefaultNoticeTimeout.
func NewKafkaSink(writer MessageWriter, timeout time.Duration) *KafkaSink {
	if timeout <= 0 {
		timeout = DefaultNoticeTimeout
	}
	return &KafkaSink{writer: writer, timeout: timeout}
}

// Notify writes n keyed by its category.
func (s *KafkaSink) Notify(ctx context.Context, n domain.Notification) error {
	n.AccountID = recipient(ctx, n)
	raw, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(n.Category),
		Value: raw,
	}); err != nil {
		return fmt.Errorf("write kafka message: %w", err)
	}
	return nil
}

// Close closes the underlying writer.
func (s *KafkaSink) Close() error {
	return s.writer.Close()
}
