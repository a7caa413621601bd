package answer

import "github.com/poiesic/recallit/retrieval"

// EventType tags one of the four stream event kinds.
type EventType string

const (
	// EventSources lists the captures grounding the answer. Always the
	// first event, emitted exactly once, possibly with an empty list.
	EventSources EventType = "sources"

	// EventDelta carries one incremental answer fragment. Concatenation
	// order equals emission order.
	EventDelta EventType = "delta"

	// EventDone terminates a successful stream.
	EventDone EventType = "done"

	// EventError terminates a failed stream with a reason.
	EventError EventType = "error"
)

// Event is one element of the answer stream.
type Event struct {
	Type    EventType             `json:"type"`
	Sources []retrieval.SourceRef `json:"sources,omitempty"`
	Delta   string                `json:"delta,omitempty"`
	Error   string                `json:"error,omitempty"`
}

// Terminal reports whether the event closes the stream.
func (e Event) Terminal() bool {
	return e.Type == EventDone || e.Type == EventError
}
