package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/storefront/internal/events"
	"github.com/spec-kit/storefront/internal/observability"
)

// AuditService records authentication events in the log and in the metrics counters.
type AuditService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	metrics    *observability.Metrics
}

// NewAuditService creates the service.
func NewAuditService(dispatcher events.Dispatcher, logger *zap.Logger, metrics *observability.Metrics) *AuditService {
	return &AuditService{
		dispatcher: dispatcher,
		logger:     logger,
		metrics:    metrics,
	}
}

// RegisterHandlers subscribes to events.
func (a *AuditService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	a.dispatcher.Subscribe(events.EventUserRegistered, a.handleSessionOpened)
	a.dispatcher.Subscribe(events.EventUserLoggedIn, a.handleSessionOpened)
	a.dispatcher.Subscribe(events.EventAdminLoggedIn, a.handleSessionOpened)
	a.dispatcher.Subscribe(events.EventSessionRefreshed, a.handleSessionOpened)
	a.dispatcher.Subscribe(events.EventLoginFailed, a.handleLoginFailed)
	a.dispatcher.Subscribe(events.EventRefreshRejected, a.handleRefreshRejected)
}

func (a *AuditService) handleSessionOpened(_ context.Context, event events.Event) error {
	a.metrics.RecordAuthEvent(string(event.Type))
	a.logger.Info("auth event",
		zap.String("event", string(event.Type)),
		zap.String("event_id", event.ID),
		zap.String("subject", event.Subject),
		zap.String("principal", string(event.Principal)))
	return nil
}

func (a *AuditService) handleLoginFailed(_ context.Context, event events.Event) error {
	a.metrics.RecordAuthEvent(string(event.Type))
	fields := []zap.Field{zap.String("event_id", event.ID)}
	if payload, ok := event.Payload.(events.LoginFailedPayload); ok {
		fields = append(fields, zap.String("email", payload.Email), zap.Bool("admin", payload.Admin))
	}
	a.logger.Warn("login failed", fields...)
	return nil
}

func (a *AuditService) handleRefreshRejected(_ context.Context, event events.Event) error {
	a.metrics.RecordAuthEvent(string(event.Type))
	fields := []zap.Field{zap.String("event_id", event.ID)}
	if payload, ok := event.Payload.(events.RefreshRejectedPayload); ok {
		fields = append(fields, zap.String("reason", payload.Reason))
	}
	a.logger.Warn("refresh rejected", fields...)
	return nil
}
