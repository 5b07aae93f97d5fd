package events

import "time"

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "QUERY_COMPLETED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent is a generic Event implementation used when reconstructing
// events from the wire.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// QueryCompletedEvent is published once per finished background query job.
// TaskId doubles as the notification channel id for waiting clients.
type QueryCompletedEvent struct {
	TaskId     string
	Query      string
	Result     map[string]interface{}
	OccurredAt time.Time
}

func (e QueryCompletedEvent) EventType() string {
	return "QUERY_COMPLETED"
}

func (e QueryCompletedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"task_id": e.TaskId,
		"query":   e.Query,
		"result":  e.Result,
	}
}

func (e QueryCompletedEvent) Timestamp() time.Time {
	return e.OccurredAt
}
