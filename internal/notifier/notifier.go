package notifier

import (
	"context"

	"github.com/pfrederiksen/ai-events/internal/event"
)

// Notifier defines the interface for posting event notifications
type Notifier interface {
	// Notify posts notifications for the given events
	Notify(ctx context.Context, events []event.CanonicalRecord) error
}
