package chatclient

import (
	"encoding/json"

	"github.com/dmaguire/folio/backend/pkg/model/chat"
	"github.com/dmaguire/folio/backend/pkg/model/content"
	"github.com/dmaguire/folio/backend/pkg/model/interview"
	"github.com/dmaguire/folio/backend/pkg/model/resume"
)

// State is the reducer's view of a conversation. Mutation happens only
// inside Client under its lock; callers receive copies.
type State struct {
	Messages []chat.Message
	Pending  []content.Pending
	Saved    []content.Saved

	Feedback          *interview.Feedback
	Resume            *resume.Generated
	ResumeProvisional bool

	CurrentContentType content.Type
	CurrentQuestion    string
	GeneratedQuestions []string
	JobDescription     string
	TargetRole         string
	TargetCompany      string

	Loading   bool
	LastError string
}

// clone returns a copy safe to hand to callers while the client keeps
// mutating its own state.
func (s State) clone() State {
	out := s
	out.Messages = append([]chat.Message(nil), s.Messages...)
	out.Pending = append([]content.Pending(nil), s.Pending...)
	out.Saved = append([]content.Saved(nil), s.Saved...)
	out.GeneratedQuestions = append([]string(nil), s.GeneratedQuestions...)
	if s.Feedback != nil {
		fb := *s.Feedback
		out.Feedback = &fb
	}
	if s.Resume != nil {
		r := *s.Resume
		out.Resume = &r
	}
	return out
}

// Facet keys under the client's persist prefix. Each facet is stored and
// hydrated independently so a failed write never corrupts the others.
const (
	facetMessages           = "messages"
	facetPending            = "pending"
	facetSaved              = "saved"
	facetFeedback           = "feedback"
	facetResume             = "resume"
	facetCurrentQuestion    = "currentQuestion"
	facetGeneratedQuestions = "generatedQuestions"
	facetJobDescription     = "jobDescription"
	facetTargetRole         = "targetRole"
	facetTargetCompany      = "targetCompany"
)

func (c *Client) key(facet string) string {
	return c.prefix + "-" + facet
}

// persistFacet writes value under the facet key, or deletes the key when the
// facet is empty so an abandoned session leaves nothing behind.
func (c *Client) persistFacet(facet string, value any, empty bool) {
	if empty {
		c.store.Delete(c.key(facet))
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	c.store.Set(c.key(facet), data)
}

func (c *Client) persistMessages() {
	c.persistFacet(facetMessages, c.state.Messages, len(c.state.Messages) == 0)
}

func (c *Client) persistPending() {
	c.persistFacet(facetPending, c.state.Pending, len(c.state.Pending) == 0)
}

func (c *Client) persistSaved() {
	c.persistFacet(facetSaved, c.state.Saved, len(c.state.Saved) == 0)
}

func (c *Client) persistFeedback() {
	c.persistFacet(facetFeedback, c.state.Feedback, c.state.Feedback == nil)
}

func (c *Client) persistResume() {
	c.persistFacet(facetResume, c.state.Resume, c.state.Resume == nil)
}

func (c *Client) persistStrings() {
	c.persistFacet(facetCurrentQuestion, c.state.CurrentQuestion, c.state.CurrentQuestion == "")
	c.persistFacet(facetGeneratedQuestions, c.state.GeneratedQuestions, len(c.state.GeneratedQuestions) == 0)
	c.persistFacet(facetJobDescription, c.state.JobDescription, c.state.JobDescription == "")
	c.persistFacet(facetTargetRole, c.state.TargetRole, c.state.TargetRole == "")
	c.persistFacet(facetTargetCompany, c.state.TargetCompany, c.state.TargetCompany == "")
}

// hydrate loads every facet present in the store. Unreadable facets are
// skipped; a corrupt entry costs that facet, not the session.
func (c *Client) hydrate() {
	loadFacet(c, facetMessages, &c.state.Messages)
	loadFacet(c, facetPending, &c.state.Pending)
	loadFacet(c, facetSaved, &c.state.Saved)
	loadFacet(c, facetFeedback, &c.state.Feedback)
	loadFacet(c, facetResume, &c.state.Resume)
	loadFacet(c, facetCurrentQuestion, &c.state.CurrentQuestion)
	loadFacet(c, facetGeneratedQuestions, &c.state.GeneratedQuestions)
	loadFacet(c, facetJobDescription, &c.state.JobDescription)
	loadFacet(c, facetTargetRole, &c.state.TargetRole)
	loadFacet(c, facetTargetCompany, &c.state.TargetCompany)
}

func loadFacet[T any](c *Client, facet string, dst *T) {
	data, ok := c.store.Get(c.key(facet))
	if !ok {
		return
	}
	var value T
	if err := json.Unmarshal(data, &value); err != nil {
		return
	}
	*dst = value
}
