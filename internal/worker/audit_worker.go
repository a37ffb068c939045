package worker

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/civic-legal-service/internal/events"
)

// StartAuditWorker subscribes an audit-log handler to every auth event.
// Audit entries are structured log lines; a later iteration can swap the
// handler for a persistent sink without touching publishers.
func StartAuditWorker(dispatcher events.Dispatcher, logger *zap.Logger) {
	if dispatcher == nil {
		return
	}

	audit := logger.Named("audit")
	handler := func(_ context.Context, event events.Event) error {
		audit.Info("auth event",
			zap.String("event", string(event.Type)),
			zap.String("user_id", event.UserID),
			zap.String("email", event.Email),
			zap.String("provider", event.Provider),
			zap.Time("occurred_at", event.OccurredAt),
		)
		return nil
	}

	for _, eventType := range []events.EventType{
		events.EventUserRegistered,
		events.EventUserLoggedIn,
		events.EventUserLoggedOut,
		events.EventTokenRevoked,
	} {
		dispatcher.Subscribe(eventType, handler)
	}
}
