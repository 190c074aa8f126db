package worker

import (
	"testing"

	"masarify/internal/events"
)

func TestMessage(t *testing.T) {
	tests := []struct {
		name  string
		event *events.RecordEvent
		want  string
	}{
		{"created", events.NewRecordEvent(events.RecordCreated, "r1", "u1", "Coffee"), `Added "Coffee"`},
		{"updated", events.NewRecordEvent(events.RecordUpdated, "r1", "u1", "Coffee"), `Updated "Coffee"`},
		{"deleted with title", events.NewRecordEvent(events.RecordDeleted, "r1", "u1", "Coffee"), `Deleted "Coffee"`},
		{"deleted without title", events.NewRecordEvent(events.RecordDeleted, "r1", "u1", ""), "Deleted a record"},
		{"reset", events.NewRecordEvent(events.RecordsReset, "", "u1", ""), "All records were deleted"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Message(tt.event)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Message() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMessageUnknownKind(t *testing.T) {
	if _, err := Message(&events.RecordEvent{Kind: "record.exploded"}); err == nil {
		t.Fatal("expected error for unknown kind")
	}
}

func TestHandleEventRejectsUnknownKind(t *testing.T) {
	n := NewNotifier(nil)
	if err := n.HandleEvent(&events.RecordEvent{Kind: "nope"}); err == nil {
		t.Fatal("expected error for unknown kind")
	}
	if err := n.HandleEvent(events.NewRecordEvent(events.RecordCreated, "r1", "u1", "Coffee")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
