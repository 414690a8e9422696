package event

import "github.com/solace-ai/solace/internal/logging"

// Notifier emits processing events toward the analytics/automation pipeline.
// Emission is fire-and-forget with at-most-once semantics: failures are
// logged and swallowed, never propagated to a caller.
type Notifier struct {
	bus *Bus
}

// NewNotifier creates a notifier publishing on bus.
func NewNotifier(bus *Bus) *Notifier {
	return &Notifier{bus: bus}
}

// Send publishes the event asynchronously. It never blocks the caller and
// never returns an error.
func (n *Notifier) Send(eventType Type, data any) {
	if n == nil || n.bus == nil {
		return
	}

	defer func() {
		if r := recover(); r != nil {
			logging.Warn().
				Str("event", string(eventType)).
				Any("panic", r).
				Msg("event emission failed")
		}
	}()

	n.bus.Publish(Event{Type: eventType, Data: data})
	logging.Debug().Str("event", string(eventType)).Msg("event emitted")
}
