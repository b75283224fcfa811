package cmd

import (
	"context"

	"github.com/frahmantamala/guard-deployment/internal/core/events"
	"github.com/frahmantamala/guard-deployment/pkg/logger"
)

var loggedEventTypes = []string{
	events.EventTypeDeploymentCreated,
	events.EventTypeDeploymentTransferred,
	events.EventTypeDeploymentEnded,
	events.EventTypeGuardTerminated,
	events.EventTypeLeaveApproved,
	events.EventTypeLeaveCancelled,
	events.EventTypeRotationAssigned,
}

// registerEventHandlers subscribes the notification handlers. Ledger changes
// commit before publishing, so nothing here may mutate the store.
func registerEventHandlers(deps *Dependencies) {
	for _, eventType := range loggedEventTypes {
		deps.Bus.Subscribe(eventType, func(ctx context.Context, event events.Event) error {
			logger.FromOr(ctx, deps.Logger).Info("ledger event",
				"event_id", event.EventID(),
				"event_type", event.EventType(),
				"payload", event.Payload())
			return nil
		})
	}
}
