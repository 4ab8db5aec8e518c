package splitter

import (
	"context"
	"fmt"
)

// Event is a change notification emitted by a contract.
type Event struct {
	// Emitter is the address of the contract that emitted the event.
	Emitter Address
	Name    string
	Attrs   []Attr
}

// Attr is a single key-value attribute of an event.
type Attr struct {
	Key   string
	Value string
}

// NewEvent returns an event with attributes created from given key-value
// pairs. Values are formatted using fmt.Sprint.
func NewEvent(emitter Address, name string, keyvals ...interface{}) Event {
	if len(keyvals)%2 != 0 {
		keyvals = append(keyvals, "")
	}
	attrs := make([]Attr, 0, len(keyvals)/2)
	for i := 0; i < len(keyvals); i += 2 {
		attrs = append(attrs, Attr{
			Key:   fmt.Sprint(keyvals[i]),
			Value: fmt.Sprint(keyvals[i+1]),
		})
	}
	return Event{Emitter: emitter, Name: name, Attrs: attrs}
}

// Attr returns the value of the first attribute with given key.
func (e Event) Attr(key string) (string, bool) {
	for _, a := range e.Attrs {
		if a.Key == key {
			return a.Value, true
		}
	}
	return "", false
}

// EventLog collects events emitted during a single invocation. It is not
// safe for concurrent use.
type EventLog struct {
	events []Event
}

// Append adds events to the log.
func (l *EventLog) Append(events ...Event) {
	l.events = append(l.events, events...)
}

// Events returns all collected events in emission order.
func (l *EventLog) Events() []Event {
	return l.events
}

// WithEventLog sets the log that collects all events emitted using the
// returned context.
func WithEventLog(ctx context.Context, l *EventLog) context.Context {
	return context.WithValue(ctx, contextKeyEvents, l)
}

// GetEventLog returns the currently set event log.
func GetEventLog(ctx context.Context) (*EventLog, bool) {
	l, ok := ctx.Value(contextKeyEvents).(*EventLog)
	return l, ok
}

// EmitEvent appends an event to the log set in the context. Events emitted
// without a log are dropped.
func EmitEvent(ctx context.Context, e Event) {
	if l, ok := GetEventLog(ctx); ok {
		l.Append(e)
	}
}
