package events

import "time"

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "UPLOAD_COMPLETED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent is the generic Event implementation carried over the bus.
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

// Upload lifecycle event codes.
const (
	UploadStarted   = "UPLOAD_STARTED"
	UploadCompleted = "UPLOAD_COMPLETED"
	UploadPartial   = "UPLOAD_PARTIAL"
	UploadFailed    = "UPLOAD_FAILED"
	StoreDeleted    = "STORE_DELETED"
)

// NewUploadEvent builds an upload lifecycle event. data may be nil.
func NewUploadEvent(eventType, jobID, userID string, data map[string]interface{}) BaseEvent {
	payload := map[string]interface{}{
		"job_id":  jobID,
		"user_id": userID,
	}
	for k, v := range data {
		payload[k] = v
	}
	return BaseEvent{
		Type:       eventType,
		Data:       payload,
		OccurredAt: time.Now(),
	}
}
