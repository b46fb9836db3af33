// api/rbac/subscriptions.go
package rbac

import (
	"context"

	"go.uber.org/zap"

	logger "github.com/supplysight/sentinel/logging"
	"github.com/supplysight/sentinel/util"
)

// SubscribeInvalidations wires the evaluator to the directory mutation
// events so cached permission sets are dropped as soon as an assignment
// changes. The services additionally invalidate inline before returning to
// their callers; the bus subscription covers out-of-band mutators.
func (e *Evaluator) SubscribeInvalidations(bus *util.EventBus) {
	userHandler := func(ctx context.Context, event util.Event) error {
		userID, ok := event.Payload.(string)
		if !ok {
			logger.Warn("Unexpected payload on user event", zap.String("eventType", event.Type))
			return nil
		}
		e.InvalidateCache(userID)
		return nil
	}
	bus.Subscribe(util.EventUserUpdated, userHandler)
	bus.Subscribe(util.EventUserDeleted, userHandler)

	personaHandler := func(ctx context.Context, event util.Event) error {
		personaID, ok := event.Payload.(string)
		if !ok {
			logger.Warn("Unexpected payload on persona event", zap.String("eventType", event.Type))
			return nil
		}
		e.InvalidatePersona(ctx, personaID)
		return nil
	}
	bus.Subscribe(util.EventPersonaUpdated, personaHandler)
	bus.Subscribe(util.EventPersonaDeleted, personaHandler)
}
