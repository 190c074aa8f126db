// Package worker turns record mutation events into user-facing
// notifications. The current sink is the structured log; the consume
// loop and message contract are the part that matters.
package worker

import (
	"fmt"
	"time"

	"masarify/internal/events"
	applog "masarify/internal/log"
)

// Notifier handles consumed record events.
type Notifier struct {
	logger *applog.Logger
}

func NewNotifier(logger *applog.Logger) *Notifier {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &Notifier{logger: logger.WithComponent(applog.ComponentWorker)}
}

// HandleEvent processes one mutation event. Unknown kinds are an error
// so the delivery is requeued once a consumer that understands them
// ships.
func (n *Notifier) HandleEvent(event *events.RecordEvent) error {
	message, err := Message(event)
	if err != nil {
		return err
	}

	n.logger.Info("Notification",
		applog.FieldEventKind, string(event.Kind),
		applog.FieldOwnerID, event.OwnerID,
		applog.FieldRecordID, event.RecordID,
		"message", message,
		"lag_ms", time.Since(event.Timestamp).Milliseconds())

	return nil
}

// Message renders the notification text for one event.
func Message(event *events.RecordEvent) (string, error) {
	switch event.Kind {
	case events.RecordCreated:
		return fmt.Sprintf("Added %q", event.Title), nil
	case events.RecordUpdated:
		return fmt.Sprintf("Updated %q", event.Title), nil
	case events.RecordDeleted:
		if event.Title == "" {
			return "Deleted a record", nil
		}
		return fmt.Sprintf("Deleted %q", event.Title), nil
	case events.RecordsReset:
		return "All records were deleted", nil
	default:
		return "", fmt.Errorf("unknown event kind %q", event.Kind)
	}
}
