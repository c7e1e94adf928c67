// Package events builds domain-event payloads and fans them out to
// in-process subscribers. Delivery to external systems (webhooks, brokers)
// belongs to a collaborator behind the Dispatcher interface; this package
// is only responsible for payload shape.
package events

import (
	"time"
)

// Event types emitted by the core.
const (
	TypeOperationStarted   = "operation.started"
	TypeOperationPaused    = "operation.paused"
	TypeOperationResumed   = "operation.resumed"
	TypeOperationCompleted = "operation.completed"
	TypeQuantityReported   = "production.quantity_reported"
	TypeScrapRecorded      = "production.scrap_recorded"
	TypeIssueCreated       = "issue.created"
	TypeJobCreated         = "job.created"
)

// Event is the payload handed to dispatchers. Data carries the
// type-specific body; Context carries optional correlation metadata
// (request id, triggering user).
type Event struct {
	EventType  string            `json:"event_type"`
	TenantID   string            `json:"tenant_id"`
	OccurredAt time.Time         `json:"occurred_at"`
	Data       map[string]any    `json:"data"`
	Context    map[string]string `json:"context,omitempty"`
}

// Dispatcher receives fully-built event payloads. Implementations must not
// block the caller; the core does not retry or guarantee delivery.
type Dispatcher interface {
	Dispatch(event Event)
}

// NopDispatcher drops every event. Used in tests and when no dispatcher is
// configured.
type NopDispatcher struct{}

func (NopDispatcher) Dispatch(Event) {}

// New builds an event stamped with the current time.
func New(eventType, tenantID string, data map[string]any) Event {
	return Event{
		EventType:  eventType,
		TenantID:   tenantID,
		OccurredAt: time.Now().UTC(),
		Data:       data,
	}
}

// WithContext attaches correlation metadata and returns the event.
func (e Event) WithContext(key, value string) Event {
	if e.Context == nil {
		e.Context = make(map[string]string)
	}
	e.Context[key] = value
	return e
}
