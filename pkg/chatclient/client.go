// Package chatclient is the Go client for the flavored chat streams. It
// mirrors the browser front-end: it posts a conversation, folds the SSE
// event protocol into local state, and persists that state facet by facet
// through a pluggable Store.
package chatclient

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmaguire/folio/backend/pkg/model/chat"
	"github.com/dmaguire/folio/backend/pkg/model/content"
	"github.com/dmaguire/folio/backend/internal/stream"
)

const ssePrefix = "data: "

// Config configures a Client.
type Config struct {
	// BaseURL is the backend origin, e.g. "http://localhost:8080".
	BaseURL string
	// Flavor is one of the registered chat flavors: "content-builder",
	// "practice" or "resume".
	Flavor string
	// PersistKey prefixes every store key, isolating sessions that share
	// a store. Defaults to the flavor name.
	PersistKey string
	// Store receives the persisted facets. Defaults to a MemoryStore.
	Store Store
	// HTTPClient defaults to http.DefaultClient.
	HTTPClient *http.Client
}

// Client folds chat stream events into State. All methods are safe for
// concurrent use; at most one chat request is in flight, and starting a new
// one cancels its predecessor.
type Client struct {
	baseURL string
	flavor  stream.Flavor
	prefix  string
	http    *http.Client
	store   Store

	mu     sync.Mutex
	state  State
	gen    int
	cancel context.CancelFunc

	newID func() string
	now   func() time.Time
}

// New validates cfg, hydrates any persisted session from the store, and
// returns the client.
func New(cfg Config) (*Client, error) {
	flavor, ok := stream.Flavors[cfg.Flavor]
	if !ok {
		return nil, fmt.Errorf("unknown chat flavor %q", cfg.Flavor)
	}
	if cfg.BaseURL == "" {
		return nil, errors.New("base URL is required")
	}

	c := &Client{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		flavor:  flavor,
		prefix:  cfg.PersistKey,
		http:    cfg.HTTPClient,
		store:   cfg.Store,
		newID:   uuid.NewString,
		now:     time.Now,
	}
	if c.prefix == "" {
		c.prefix = flavor.Name
	}
	if c.http == nil {
		c.http = http.DefaultClient
	}
	if c.store == nil {
		c.store = NewMemoryStore()
	}
	c.hydrate()
	return c, nil
}

// State returns a copy of the current state.
func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

// SendMessage appends the user turn, posts the conversation to the backend,
// and folds the streamed events into state until the stream ends. Starting a
// new SendMessage cancels an in-flight one; the cancelled call returns nil
// and stops mutating state.
func (c *Client) SendMessage(ctx context.Context, text string) error {
	c.mu.Lock()
	c.gen++
	gen := c.gen
	if c.cancel != nil {
		c.cancel()
	}
	runCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	defer cancel()

	now := c.now()
	userMsg := chat.Message{ID: c.newID(), Role: chat.RoleUser, Content: text, CreatedAt: now}
	assistantID := c.newID()
	c.state.Messages = append(c.state.Messages, userMsg,
		chat.Message{ID: assistantID, Role: chat.RoleAssistant, CreatedAt: now})
	c.state.Loading = true
	c.state.LastError = ""
	c.persistMessages()

	body := requestBody{
		QuestionID:     c.state.CurrentQuestion,
		TargetRole:     c.state.TargetRole,
		TargetCompany:  c.state.TargetCompany,
		JobDescription: c.state.JobDescription,
	}
	for _, m := range c.state.Messages {
		if m.ID == assistantID {
			continue
		}
		body.Messages = append(body.Messages, chat.Turn{Role: m.Role, Content: m.Content})
	}
	c.mu.Unlock()

	err := c.run(runCtx, gen, assistantID, body)
	c.finishRun(gen)
	if runCtx.Err() != nil && ctx.Err() == nil {
		// Superseded by a newer SendMessage; not a failure.
		return nil
	}
	return err
}

// requestBody matches the backend's chat request shape.
type requestBody struct {
	Messages       []chat.Turn `json:"messages"`
	QuestionID     string      `json:"questionId,omitempty"`
	TargetRole     string      `json:"targetRole,omitempty"`
	TargetCompany  string      `json:"targetCompany,omitempty"`
	JobDescription string      `json:"jobDescription,omitempty"`
}

func (c *Client) run(ctx context.Context, gen int, assistantID string, body requestBody) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/api/chat/"+c.flavor.Name, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.recordFailure(gen, assistantID, "request failed")
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg := decodeErrorBody(resp)
		c.recordFailure(gen, assistantID, msg)
		return fmt.Errorf("chat request failed: %s", msg)
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, ssePrefix) {
			continue
		}
		var ev stream.Event
		if err := json.Unmarshal([]byte(line[len(ssePrefix):]), &ev); err != nil {
			// Malformed frame; skip rather than kill the session.
			continue
		}
		c.apply(gen, assistantID, ev)
		if ev.Terminal() {
			return nil
		}
	}
	if err := scanner.Err(); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		c.recordFailure(gen, assistantID, "stream interrupted")
		return err
	}
	// Stream closed without a terminal event.
	c.recordFailure(gen, assistantID, "stream ended unexpectedly")
	return errors.New("stream ended without terminal event")
}

// apply folds one event into state. Events from a superseded request are
// dropped so a cancelled stream never mutates state after its successor
// starts.
func (c *Client) apply(gen int, assistantID string, ev stream.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return
	}

	switch ev.Type {
	case stream.EventText:
		for i := range c.state.Messages {
			if c.state.Messages[i].ID == assistantID {
				c.state.Messages[i].Content += ev.Content
				break
			}
		}
		c.persistMessages()

	case stream.EventContentDraft, stream.EventContentReady:
		if ev.Pending == nil {
			return
		}
		c.upsertPending(*ev.Pending)
		if ev.Type == stream.EventContentReady {
			c.state.CurrentContentType = ev.Pending.Type
		}
		c.persistPending()

	case stream.EventFeedbackComplete:
		if ev.Feedback == nil {
			return
		}
		fb := *ev.Feedback
		c.state.Feedback = &fb
		c.persistFeedback()

	case stream.EventResumeUpdate, stream.EventResumeComplete:
		if ev.Resume == nil {
			return
		}
		r := *ev.Resume
		c.state.Resume = &r
		c.state.ResumeProvisional = ev.Type == stream.EventResumeUpdate
		c.persistResume()

	case stream.EventErr:
		c.state.LastError = ev.Message
		c.state.Loading = false
		c.dropEmptyAssistant(assistantID)
		c.persistMessages()

	case stream.EventDone:
		c.state.Loading = false
	}
}

// upsertPending replaces the item with a matching ID or appends a new one.
func (c *Client) upsertPending(item content.Pending) {
	for i := range c.state.Pending {
		if c.state.Pending[i].ID == item.ID {
			c.state.Pending[i] = item
			return
		}
	}
	c.state.Pending = append(c.state.Pending, item)
}

func (c *Client) dropEmptyAssistant(assistantID string) {
	for i := range c.state.Messages {
		if c.state.Messages[i].ID == assistantID && c.state.Messages[i].Content == "" {
			c.state.Messages = append(c.state.Messages[:i], c.state.Messages[i+1:]...)
			return
		}
	}
}

func (c *Client) recordFailure(gen int, assistantID, msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return
	}
	c.state.LastError = msg
	c.dropEmptyAssistant(assistantID)
	c.persistMessages()
}

func (c *Client) finishRun(gen int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return
	}
	c.state.Loading = false
	c.cancel = nil
}

// SaveContent posts a staged item to the CMS save endpoint. On success the
// item moves from Pending to Saved carrying the CMS record ID; on failure it
// stays in Pending with StatusError and the failure message. Items in the
// error state can be saved again, so a transient CMS failure is retryable.
func (c *Client) SaveContent(ctx context.Context, id string) error {
	c.mu.Lock()
	var item *content.Pending
	for i := range c.state.Pending {
		if c.state.Pending[i].ID == id {
			item = &c.state.Pending[i]
			break
		}
	}
	if item == nil {
		c.mu.Unlock()
		return fmt.Errorf("no pending item %q", id)
	}
	if item.Status != content.StatusReady && item.Status != content.StatusError {
		c.mu.Unlock()
		return fmt.Errorf("item %q is %s, not ready", id, item.Status)
	}
	snapshot := *item
	c.mu.Unlock()

	payload, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/api/content/save", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.markSaveFailed(id, "save request failed")
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		msg := decodeErrorBody(resp)
		c.markSaveFailed(id, msg)
		return fmt.Errorf("save failed: %s", msg)
	}

	var result struct {
		CMSID string `json:"cmsId"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		c.markSaveFailed(id, "unreadable save response")
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.state.Pending {
		if c.state.Pending[i].ID != id {
			continue
		}
		saved := content.Saved{Pending: c.state.Pending[i], CMSID: result.CMSID, SavedAt: c.now()}
		saved.Status = content.StatusSaved
		saved.Error = ""
		c.state.Pending = append(c.state.Pending[:i], c.state.Pending[i+1:]...)
		c.state.Saved = append(c.state.Saved, saved)
		break
	}
	c.persistPending()
	c.persistSaved()
	return nil
}

func (c *Client) markSaveFailed(id, msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.state.Pending {
		if c.state.Pending[i].ID == id {
			c.state.Pending[i].Status = content.StatusError
			c.state.Pending[i].Error = msg
			break
		}
	}
	c.persistPending()
}

// DiscardContent removes a staged item without saving it.
func (c *Client) DiscardContent(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.state.Pending {
		if c.state.Pending[i].ID == id {
			c.state.Pending = append(c.state.Pending[:i], c.state.Pending[i+1:]...)
			break
		}
	}
	c.persistPending()
}

// ClearAllPending drops every staged item.
func (c *Client) ClearAllPending() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Pending = nil
	c.persistPending()
}

// ClearChat cancels any in-flight request and resets the conversation while
// keeping saved items.
func (c *Client) ClearChat() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.state.Messages = nil
	c.state.Pending = nil
	c.state.Feedback = nil
	c.state.Resume = nil
	c.state.ResumeProvisional = false
	c.state.Loading = false
	c.state.LastError = ""
	c.persistMessages()
	c.persistPending()
	c.persistFeedback()
	c.persistResume()
}

// SetCurrentQuestion records the interview question the next practice turn
// answers.
func (c *Client) SetCurrentQuestion(question string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.CurrentQuestion = question
	c.state.Feedback = nil
	c.persistFeedback()
	c.persistStrings()
}

// SetGeneratedQuestions stores a generated question list.
func (c *Client) SetGeneratedQuestions(questions []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.GeneratedQuestions = append([]string(nil), questions...)
	c.persistStrings()
}

// SetResumeTarget records the role, company and job description the resume
// flavor tailors toward.
func (c *Client) SetResumeTarget(role, company, jobDescription string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.TargetRole = role
	c.state.TargetCompany = company
	c.state.JobDescription = jobDescription
	c.persistStrings()
}

// GenerateQuestions asks the backend for targeted interview questions and
// stores the result.
func (c *Client) GenerateQuestions(ctx context.Context, role, jobDescription string, count int) ([]string, error) {
	payload, err := json.Marshal(map[string]any{
		"targetRole":     role,
		"jobDescription": jobDescription,
		"count":          count,
	})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/api/practice/questions", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("question generation failed: %s", decodeErrorBody(resp))
	}

	var result struct {
		Questions []string `json:"questions"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.state.GeneratedQuestions = result.Questions
	c.persistStrings()
	c.mu.Unlock()
	return result.Questions, nil
}

func decodeErrorBody(resp *http.Response) string {
	var body struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil && body.Error != "" {
		return body.Error
	}
	return resp.Status
}
