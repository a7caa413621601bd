package answer

import (
	"context"

	"github.com/poiesic/recallit/retrieval"
)

// stream is the single send-path for answer events. It enforces the
// event contract: no event before sources, no event after a terminal,
// and the channel closed exactly once after the terminal event.
type stream struct {
	ctx      context.Context
	events   chan Event
	finished bool
}

func newStream(ctx context.Context) *stream {
	return &stream{
		ctx:    ctx,
		events: make(chan Event),
	}
}

// send delivers one event unless the stream is already terminated or
// the consumer's context is done. Terminal events close the channel.
func (s *stream) send(event Event) {
	if s.finished {
		return
	}

	select {
	case s.events <- event:
	case <-s.ctx.Done():
		s.finished = true
		close(s.events)
		return
	}

	if event.Terminal() {
		s.finished = true
		close(s.events)
	}
}

func (s *stream) sources(refs []retrieval.SourceRef) {
	if refs == nil {
		refs = []retrieval.SourceRef{}
	}
	s.send(Event{Type: EventSources, Sources: refs})
}

func (s *stream) delta(fragment string) {
	s.send(Event{Type: EventDelta, Delta: fragment})
}

func (s *stream) done() {
	s.send(Event{Type: EventDone})
}

// fail emits the terminal error event. A failure before the sources
// event short-circuits straight to error.
func (s *stream) fail(reason string) {
	s.send(Event{Type: EventError, Error: reason})
}
