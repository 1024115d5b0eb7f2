// Package stream implements the fenced-JSON transcoder shared by the three
// chat flavors. It turns a raw LLM token stream into a typed event protocol:
// prose passes through as text events, fenced ```json blocks are buffered,
// parsed, and re-emitted as structured events.
package stream

import (
	"github.com/dmaguire/folio/backend/pkg/model/content"
	"github.com/dmaguire/folio/backend/pkg/model/interview"
	"github.com/dmaguire/folio/backend/pkg/model/resume"
)

// EventType discriminates the protocol event union.
type EventType string

const (
	EventText EventType = "text"
	EventDone EventType = "done"
	EventErr  EventType = "error"

	// Content-builder flavor.
	EventContentDraft EventType = "content_draft"
	EventContentReady EventType = "content_ready"

	// Practice flavor.
	EventFeedbackComplete EventType = "feedback_complete"

	// Resume flavor. resume_update is provisional and replaced by later
	// updates or the final resume_complete.
	EventResumeUpdate   EventType = "resume_update"
	EventResumeComplete EventType = "resume_complete"
)

// Event is one frame of the server-to-client protocol. Exactly one of the
// payload fields is set, matching Type.
type Event struct {
	Type     EventType           `json:"type"`
	Content  string              `json:"content,omitempty"`
	Message  string              `json:"message,omitempty"`
	Pending  *content.Pending    `json:"pending,omitempty"`
	Feedback *interview.Feedback `json:"feedback,omitempty"`
	Resume   *resume.Generated   `json:"resume,omitempty"`
}

// Text wraps a prose chunk.
func Text(s string) Event {
	return Event{Type: EventText, Content: s}
}

// Error wraps a terminal failure message.
func Error(message string) Event {
	return Event{Type: EventErr, Message: message}
}

// Done is the terminal success event.
func Done() Event {
	return Event{Type: EventDone}
}

// Terminal reports whether the event ends the stream.
func (e Event) Terminal() bool {
	return e.Type == EventDone || e.Type == EventErr
}
