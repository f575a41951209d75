package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
)

// NATSForwarder republishes dispatched events on NATS subjects named
// "<prefix>.<event type>".
type NATSForwarder struct {
	conn   *nats.Conn
	prefix string
}

// NewNATSForwarder builds a forwarder on an established connection.
func NewNATSForwarder(conn *nats.Conn, prefix string) *NATSForwarder {
	return &NATSForwarder{conn: conn, prefix: prefix}
}

// Subject returns the NATS subject used for eventType.
func (f *NATSForwarder) Subject(eventType EventType) string {
	if f.prefix == "" {
		return string(eventType)
	}
	return f.prefix + "." + string(eventType)
}

// Register subscribes the forwarder to every event type.
func (f *NATSForwarder) Register(dispatcher Dispatcher) {
	for _, eventType := range AllTypes {
		dispatcher.Subscribe(eventType, f.Forward)
	}
}

// Forward publishes event as JSON.
func (f *NATSForwarder) Forward(_ context.Context, event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event %s: %w", event.ID, err)
	}
	if err := f.conn.Publish(f.Subject(event.Type), data); err != nil {
		return fmt.Errorf("publish event %s: %w", event.ID, err)
	}
	return nil
}
