package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/go-chi/chi/v5"

	"github.com/dmaguire/folio/backend/pkg/model/chat"
	"github.com/dmaguire/folio/backend/pkg/model/profile"
	"github.com/dmaguire/folio/backend/internal/service/ai"
	"github.com/dmaguire/folio/backend/internal/stream"
)

type fakeStreamer struct {
	chunks     []string
	connectErr error
	midErr     error
	gotTurns   []chat.Turn
}

func (f *fakeStreamer) Stream(_ context.Context, _ stream.Flavor, _ *profile.Snapshot, turns []chat.Turn, _ ai.PromptOptions) (*schema.StreamReader[*schema.Message], error) {
	f.gotTurns = turns
	if f.connectErr != nil {
		return nil, f.connectErr
	}

	reader, writer := schema.Pipe[*schema.Message](len(f.chunks) + 1)
	go func() {
		defer writer.Close()
		for _, chunk := range f.chunks {
			writer.Send(schema.AssistantMessage(chunk, nil), nil)
		}
		if f.midErr != nil {
			writer.Send(nil, f.midErr)
		}
	}()
	return reader, nil
}

func setupRouter(streamer Streamer) *chi.Mux {
	r := chi.NewRouter()
	New(streamer, nil).RegisterRoutes(r)
	return r
}

func postChat(t *testing.T, r http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func decodeFrames(t *testing.T, body string) []stream.Event {
	t.Helper()
	var events []stream.Event
	for _, line := range strings.Split(body, "\n") {
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		var ev stream.Event
		if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &ev); err != nil {
			t.Fatalf("bad frame %q: %v", line, err)
		}
		events = append(events, ev)
	}
	return events
}

func TestChatMissingMessages(t *testing.T) {
	r := setupRouter(&fakeStreamer{})
	resp := postChat(t, r, "/chat/content-builder", map[string]any{"messages": []any{}})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestChatWithoutAIService(t *testing.T) {
	r := chi.NewRouter()
	New(nil, nil).RegisterRoutes(r)
	resp := postChat(t, r, "/chat/practice", map[string]any{
		"messages": []chat.Turn{{Role: chat.RoleUser, Content: "hi"}},
	})
	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", resp.Code)
	}
}

func TestChatUpstreamConnectFailure(t *testing.T) {
	r := setupRouter(&fakeStreamer{connectErr: errors.New("auth rejected")})
	resp := postChat(t, r, "/chat/resume", map[string]any{
		"messages": []chat.Turn{{Role: chat.RoleUser, Content: "make me a resume"}},
	})
	if resp.Code != http.StatusBadGateway {
		t.Fatalf("expected 502 before any SSE frame, got %d", resp.Code)
	}
	if ct := resp.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Fatalf("expected json error body, got %s", ct)
	}
}

func TestChatStreamsTranscodedEvents(t *testing.T) {
	streamer := &fakeStreamer{chunks: []string{
		"Got it! Adding Python and React.\n\n```json\n",
		`{"action":"content_ready","content":{"id":"tech-python-1","type":"technology","status":"ready","data":{"name":"Python"}}}`,
		"\n```\nAdded!",
	}}
	r := setupRouter(streamer)

	resp := postChat(t, r, "/chat/content-builder", map[string]any{
		"messages": []chat.Turn{{Role: chat.RoleUser, Content: "I know Python and React"}},
	})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if ct := resp.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("expected event-stream, got %s", ct)
	}
	if cc := resp.Header().Get("Cache-Control"); cc != "no-cache" {
		t.Fatalf("expected no-cache, got %s", cc)
	}

	events := decodeFrames(t, resp.Body.String())
	var prose strings.Builder
	ready, done := 0, 0
	for _, ev := range events {
		switch ev.Type {
		case stream.EventText:
			prose.WriteString(ev.Content)
		case stream.EventContentReady:
			ready++
			if ev.Pending == nil || ev.Pending.ID != "tech-python-1" {
				t.Fatalf("pending payload mismatch: %+v", ev.Pending)
			}
		case stream.EventDone:
			done++
		}
	}
	if prose.String() != "Got it! Adding Python and React.\nAdded!" {
		t.Fatalf("prose mismatch: %q", prose.String())
	}
	if ready != 1 || done != 1 {
		t.Fatalf("expected 1 ready and 1 done, got %d/%d", ready, done)
	}
	if events[len(events)-1].Type != stream.EventDone {
		t.Fatal("done must be the final frame")
	}
	if len(streamer.gotTurns) != 1 || streamer.gotTurns[0].Content != "I know Python and React" {
		t.Fatalf("turns not forwarded: %+v", streamer.gotTurns)
	}
}

func TestChatMidStreamErrorEndsWithoutDone(t *testing.T) {
	streamer := &fakeStreamer{
		chunks: []string{"Let me think"},
		midErr: errors.New("connection reset"),
	}
	r := setupRouter(streamer)

	resp := postChat(t, r, "/chat/practice", map[string]any{
		"messages": []chat.Turn{{Role: chat.RoleUser, Content: "my answer"}},
	})

	events := decodeFrames(t, resp.Body.String())
	if len(events) == 0 {
		t.Fatal("expected frames before the failure")
	}
	last := events[len(events)-1]
	if last.Type != stream.EventErr {
		t.Fatalf("expected terminal error event, got %s", last.Type)
	}
	for _, ev := range events {
		if ev.Type == stream.EventDone {
			t.Fatal("done must not follow an error")
		}
	}
}
