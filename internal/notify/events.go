package notify

import "encoding/json"

type EventType string

const (
	EventInvitationAccepted   EventType = "invitation_accepted"
	EventConnectionTerminated EventType = "connection_terminated"
)

// Event is a server-to-client push message. Clients never send anything
// back on the socket.
type Event struct {
	Type    EventType       `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// NewEvent builds an event, marshaling the payload. Marshal failures are
// programmer errors on our own types, so they panic.
func NewEvent(eventType EventType, payload interface{}) Event {
	data, err := json.Marshal(payload)
	if err != nil {
		panic(err)
	}
	return Event{Type: eventType, Payload: data}
}
