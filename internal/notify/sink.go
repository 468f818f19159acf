// Package notify delivers roster notices to the places the admin panel and
// other services read them from.
package notify

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/cura-agent/roster-service/internal/domain"
	"github.com/cura-agent/roster-service/internal/observability"
	"github.com/cura-agent/roster-service/internal/roster"
)

// Sink receives a notice. A returned error means the notice was not delivered.
// It is the store's sink type, so every sink here plugs into a roster.Store.
type Sink = roster.Sink

type recipientKey struct{}

// WithRecipient tags ctx with the account that should see notices raised
// while handling it.
func WithRecipient(ctx context.Context, accountID string) context.Context {
	return context.WithValue(ctx, recipientKey{}, accountID)
}

// RecipientFrom returns the account set by WithRecipient.
func RecipientFrom(ctx context.Context) string {
	id, _ := ctx.Value(recipientKey{}).(string)
	return id
}

func recipient(ctx context.Context, n domain.Notification) string {
	if n.AccountID != "" {
		return n.AccountID
	}
	return RecipientFrom(ctx)
}

// LogSink writes notices to the structured log.
type LogSink struct {
	logger *zap.Logger
}

// NewLogSink constructs a LogSink.
func NewLogSink(logger *zap.Logger) *LogSink {
	return &LogSink{logger: logger}
}

// Notify logs n at info or warn level.
func (s *LogSink) Notify(ctx context.Context, n domain.Notification) error {
	fields := []zap.Field{
		zap.String("category", string(n.Category)),
		zap.String("level", string(n.Level)),
		zap.String("account_id", recipient(ctx, n)),
	}
	if n.Level == domain.LevelError {
		s.logger.Warn(n.Message, fields...)
		return nil
	}
	s.logger.Info(n.Message, fields...)
	return nil
}

// Named pairs a sink with the label used in logs and metrics.
type Named struct {
	Name string
	Sink Sink
}

// Fanout delivers every notice to all sinks.
type Fanout struct {
	sinks   []Named
	metrics *observability.Metrics
}

// NewFanout builds a Fanout. Nil sinks are skipped.
func NewFanout(metrics *observability.Metrics, sinks ...Named) *Fanout {
	f := &Fanout{metrics: metrics}
	for _, s := range sinks {
		if s.Sink != nil {
			f.sinks = append(f.sinks, s)
		}
	}
	return f
}

// Notify runs every sink, then returns their joined failures.
func (f *Fanout) Notify(ctx context.Context, n domain.Notification) error {
	var errs []error
	for _, s := range f.sinks {
		if err := s.Sink.Notify(ctx, n); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", s.Name, err))
			continue
		}
		f.metrics.RecordNotification(s.Name, string(n.Level))
	}
	return errors.Join(errs...)
}
