package events

import (
	"encoding/json"
	"time"
)

// EventKind names what happened to an owner's records.
type EventKind string

const (
	RecordCreated EventKind = "record.created"
	RecordUpdated EventKind = "record.updated"
	RecordDeleted EventKind = "record.deleted"
	RecordsReset  EventKind = "records.reset"
)

// RecordEvent is the lightweight mutation notice published after every
// write. Consumers that need the full record fetch it themselves; the
// event only identifies it.
type RecordEvent struct {
	Kind      EventKind `json:"kind"`
	RecordID  string    `json:"record_id,omitempty"`
	OwnerID   string    `json:"owner_id"`
	Title     string    `json:"title,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func NewRecordEvent(kind EventKind, recordID, ownerID, title string) *RecordEvent {
	return &RecordEvent{
		Kind:      kind,
		RecordID:  recordID,
		OwnerID:   ownerID,
		Title:     title,
		Timestamp: time.Now(),
	}
}

func (e *RecordEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

func RecordEventFromJSON(data []byte) (*RecordEvent, error) {
	var e RecordEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return &e, nil
}
