package worker

import (
	"context"

	"go.uber.org/zap"

	"github.com/cura-agent/roster-service/internal/domain"
	"github.com/cura-agent/roster-service/internal/events"
)

// AuditLog writes every roster event, notices included, to the structured log.
type AuditLog struct {
	logger *zap.Logger
}

// NewAuditLog constructs an AuditLog.
func NewAuditLog(logger *zap.Logger) *AuditLog {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditLog{logger: logger.Named("audit")}
}

// Register subscribes the audit log to roster changes and notices.
func (a *AuditLog) Register(dispatcher events.Dispatcher) {
	if dispatcher == nil {
		return
	}
	for _, t := range rosterEvents {
		dispatcher.Subscribe(t, a.logChange)
	}
	dispatcher.Subscribe(events.EventRosterNotice, a.logNotice)
}

func (a *AuditLog) logChange(_ context.Context, event events.Event) error {
	a.logger.Info(string(event.Type),
		zap.String("category", string(event.Category)),
		zap.String("entry_id", event.EntryID),
		zap.String("account_id", event.AccountID))
	return nil
}

func (a *AuditLog) logNotice(_ context.Context, event events.Event) error {
	fields := []zap.Field{
		zap.String("category", string(event.Category)),
		zap.String("account_id", event.AccountID),
	}
	payload, ok := event.Payload.(events.RosterNoticePayload)
	if !ok {
		a.logger.Info(string(event.Type), fields...)
		return nil
	}
	fields = append(fields, zap.String("level", string(payload.Level)), zap.String("message", payload.Message))
	if payload.Level == domain.LevelError {
		a.logger.Warn(string(event.Type), fields...)
		return nil
	}
	a.logger.Info(string(event.Type), fields...)
	return nil
}
