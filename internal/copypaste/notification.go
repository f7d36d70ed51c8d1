package copypaste

import (
	"github.com/zjrosen/gridclip/internal/grid"
	"github.com/zjrosen/gridclip/internal/pubsub"
)

// Notification is the payload of every event the Manager publishes. The
// event type says which gesture outcome it describes.
type Notification struct {
	// Ranges are the copied ranges, or the single destination of a paste.
	Ranges []grid.Range
	// CommandID identifies the paste command, when there is one.
	CommandID string
	// Err is set on ValidationErrorEvent.
	Err error
	// Details is a user-facing description of Err, or DetailsDeclined on a
	// paste the command handler did not execute.
	Details string
}

// DetailsDeclined marks a PasteCancelledEvent raised because the command
// handler did not execute the paste, as opposed to an undo.
const DetailsDeclined = "declined"

// Message renders a one-line status for hosts.
func Message(event pubsub.Event[Notification]) string {
	n := event.Payload
	switch event.Type {
	case pubsub.CopyEvent:
		return "copied " + describe(n.Ranges)
	case pubsub.CopyCancelledEvent:
		return "copy cancelled"
	case pubsub.PasteAppliedEvent:
		return "pasted into " + describe(n.Ranges)
	case pubsub.PasteCancelledEvent:
		if n.Details == DetailsDeclined {
			return "paste declined " + describe(n.Ranges)
		}
		return "paste reverted " + describe(n.Ranges)
	case pubsub.ValidationErrorEvent:
		return "error: " + n.Details
	default:
		return string(event.Type)
	}
}

func describe(ranges []grid.Range) string {
	switch len(ranges) {
	case 0:
		return "nothing"
	case 1:
		return ranges[0].String()
	default:
		return ranges[0].String() + " and more"
	}
}
