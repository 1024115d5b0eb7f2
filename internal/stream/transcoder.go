package stream

import (
	"encoding/json"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmaguire/folio/backend/pkg/model/content"
	"github.com/dmaguire/folio/backend/pkg/model/interview"
	"github.com/dmaguire/folio/backend/pkg/model/resume"
)

const (
	openMarker  = "```json"
	closeMarker = "```"
)

var (
	fencedBlockRE = regexp.MustCompile("(?s)```json\\s*(.*?)```")
	openBlockRE   = regexp.MustCompile("(?s)```json\\s*(.*)$")
)

// Transcoder folds raw text increments from the upstream completion into
// protocol events. One instance serves one request; it is not safe for
// concurrent use and does not need to be.
type Transcoder struct {
	flavor Flavor

	inFence     bool
	fence       strings.Builder
	raw         strings.Builder
	structured  bool
	lastPartial int

	now   func() time.Time
	newID func() string
}

// New returns a transcoder in the passthrough state.
func New(flavor Flavor) *Transcoder {
	return &Transcoder{
		flavor: flavor,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// Feed processes one upstream increment and returns the events it produced,
// in order. Prose outside fences becomes text events; fence contents are
// buffered until the closing marker arrives.
func (t *Transcoder) Feed(chunk string) []Event {
	if chunk == "" {
		return nil
	}
	t.raw.WriteString(chunk)

	var events []Event
	rest := chunk
	for rest != "" {
		if !t.inFence {
			idx := strings.Index(rest, openMarker)
			if idx < 0 {
				events = append(events, Text(rest))
				rest = ""
				break
			}
			// The newline adjoining the marker belongs to the fence
			// markup, not the prose.
			if pre := strings.TrimSuffix(rest[:idx], "\n"); pre != "" {
				events = append(events, Text(pre))
			}
			rest = strings.TrimPrefix(rest[idx+len(openMarker):], "\n")
			t.inFence = true
			t.fence.Reset()
			t.lastPartial = 0
			continue
		}

		idx := strings.Index(rest, closeMarker)
		if idx < 0 {
			t.fence.WriteString(rest)
			rest = ""
			break
		}
		t.fence.WriteString(rest[:idx])
		if ev, ok := t.classify(t.fence.String()); ok {
			events = append(events, ev)
			t.structured = true
		}
		t.inFence = false
		rest = strings.TrimPrefix(rest[idx+len(closeMarker):], "\n")
		if !t.flavor.SurfaceTrailing {
			rest = ""
		}
	}

	if ev, ok := t.tryPartial(); ok {
		events = append(events, ev)
	}
	return events
}

// Finish runs the end-of-stream fallback scan and terminates the protocol.
// If the incremental path never produced a structured event (a fence split
// across increments in a way the per-chunk detection missed), the entire
// accumulated text is scanned once for a fenced block and the usual
// parse-and-classify step is attempted on it.
func (t *Transcoder) Finish() []Event {
	var events []Event
	if !t.structured {
		if body, ok := t.scanAccumulated(); ok {
			if ev, classified := t.classify(body); classified {
				events = append(events, ev)
				t.structured = true
			}
		}
	}
	return append(events, Done())
}

func (t *Transcoder) scanAccumulated() (string, bool) {
	full := t.raw.String()
	if m := fencedBlockRE.FindStringSubmatch(full); m != nil {
		return m[1], true
	}
	if m := openBlockRE.FindStringSubmatch(full); m != nil {
		return m[1], true
	}
	return "", false
}

// classify parses a completed fence buffer and maps it to a structured
// event. Malformed or unrecognized blocks are dropped without an event;
// garbled model output must never break the prose experience.
func (t *Transcoder) classify(body string) (Event, bool) {
	body = strings.TrimSpace(body)
	if body == "" {
		return Event{}, false
	}

	if t.flavor.Discriminator != "" {
		return t.classifyByAction(body)
	}

	switch t.flavor.Implicit {
	case EventFeedbackComplete:
		var fb interview.Feedback
		if err := json.Unmarshal([]byte(body), &fb); err != nil {
			return Event{}, false
		}
		return Event{Type: EventFeedbackComplete, Feedback: &fb}, true
	case EventResumeComplete:
		var r resume.Generated
		if err := json.Unmarshal([]byte(body), &r); err != nil {
			return Event{}, false
		}
		return Event{Type: EventResumeComplete, Resume: &r}, true
	}
	return Event{}, false
}

func (t *Transcoder) classifyByAction(body string) (Event, bool) {
	var block struct {
		Action  string          `json:"action"`
		Content json.RawMessage `json:"content"`
	}
	if err := json.Unmarshal([]byte(body), &block); err != nil {
		return Event{}, false
	}
	eventType, ok := t.flavor.Actions[block.Action]
	if !ok {
		return Event{}, false
	}

	var item content.Pending
	if err := json.Unmarshal(block.Content, &item); err != nil {
		return Event{}, false
	}
	if !item.Type.Valid() {
		return Event{}, false
	}
	if item.ID == "" {
		item.ID = t.newID()
	}
	if item.Status == "" {
		if eventType == EventContentReady {
			item.Status = content.StatusReady
		} else {
			item.Status = content.StatusDraft
		}
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = t.now()
	}
	return Event{Type: eventType, Pending: &item}, true
}

// tryPartial speculatively parses an unfinished fence buffer by appending
// synthetic closers, so the client can render a resume while the model is
// still writing it. Best effort: every failure path returns no event.
func (t *Transcoder) tryPartial() (Event, bool) {
	cfg := t.flavor.Partial
	if !t.inFence || !cfg.enabled() {
		return Event{}, false
	}
	size := t.fence.Len()
	if size < cfg.MinBuffer || size-t.lastPartial < cfg.Stride && t.lastPartial != 0 {
		return Event{}, false
	}
	t.lastPartial = size

	completed := completeJSON(t.fence.String())
	var probe map[string]json.RawMessage
	if err := json.Unmarshal([]byte(completed), &probe); err != nil {
		return Event{}, false
	}
	recognized := false
	for _, key := range cfg.Keys {
		if _, ok := probe[key]; ok {
			recognized = true
			break
		}
	}
	if !recognized {
		return Event{}, false
	}

	var r resume.Generated
	if err := json.Unmarshal([]byte(completed), &r); err != nil || r.Empty() {
		return Event{}, false
	}
	return Event{Type: cfg.Event, Resume: &r}, true
}

// completeJSON appends the closers an unfinished JSON document is missing:
// an open string literal is terminated, a dangling comma or colon is
// neutralized, and unbalanced braces/brackets are closed in reverse order.
func completeJSON(s string) string {
	var stack []byte
	inString, escaped := false, false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			if escaped {
				escaped = false
				continue
			}
			switch c {
			case '\\':
				escaped = true
			case '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			stack = append(stack, '}')
		case '[':
			stack = append(stack, ']')
		case '}', ']':
			if len(stack) > 0 && stack[len(stack)-1] == c {
				stack = stack[:len(stack)-1]
			}
		}
	}

	out := s
	if inString {
		out += `"`
	}
	out = strings.TrimRight(out, " \t\r\n")
	if strings.HasSuffix(out, ",") {
		out = out[:len(out)-1]
	}
	if strings.HasSuffix(out, ":") {
		out += " null"
	}
	for i := len(stack) - 1; i >= 0; i-- {
		out += string(stack[i])
	}
	return out
}
