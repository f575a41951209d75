package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/audioforge/studio/internal/events"
)

// AuditService writes an audit log line for every domain event.
type AuditService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewAuditService creates the service.
func NewAuditService(dispatcher events.Dispatcher, logger *zap.Logger) *AuditService {
	return &AuditService{
		dispatcher: dispatcher,
		logger:     nopIfNil(logger).Named("audit"),
	}
}

// RegisterHandlers subscribes to events.
func (a *AuditService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	a.dispatcher.Subscribe(events.EventUserRegistered, a.handleUserRegistered)
	a.dispatcher.Subscribe(events.EventGenerationCompleted, a.handleGenerationCompleted)
	a.dispatcher.Subscribe(events.EventHistoryDeleted, a.handleHistoryDeleted)
}

func (a *AuditService) handleUserRegistered(_ context.Context, event events.Event) error {
	a.logger.Info("UserRegistered", a.common(event)...)
	return nil
}

func (a *AuditService) handleGenerationCompleted(_ context.Context, event events.Event) error {
	fields := a.common(event)
	if p, ok := event.Payload.(events.GenerationCompletedPayload); ok {
		fields = append(fields,
			zap.String("audio_id", p.AudioID),
			zap.String("service", string(p.Service)),
			zap.String("history_id", p.HistoryID))
	}
	a.logger.Info("GenerationCompleted", fields...)
	return nil
}

func (a *AuditService) handleHistoryDeleted(_ context.Context, event events.Event) error {
	fields := a.common(event)
	p, ok := event.Payload.(events.HistoryDeletedPayload)
	if !ok {
		a.logger.Info("HistoryDeleted", fields...)
		return nil
	}
	fields = append(fields, zap.String("history_id", p.HistoryID), zap.String("blob_name", p.BlobName))
	if p.BlobName != "" && !p.BlobDeleted {
		a.logger.Warn("HistoryDeleted with orphaned blob", fields...)
		return nil
	}
	a.logger.Info("HistoryDeleted", fields...)
	return nil
}

func (a *AuditService) common(event events.Event) []zap.Field {
	return []zap.Field{
		zap.String("event_id", event.ID),
		zap.String("user_id", event.UserID),
		zap.Time("at", event.Timestamp),
	}
}
