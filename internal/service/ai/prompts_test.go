package ai

import (
	"strings"
	"testing"

	"github.com/dmaguire/folio/backend/pkg/model/profile"
	"github.com/dmaguire/folio/backend/internal/stream"
)

func sampleSnapshot() *profile.Snapshot {
	return &profile.Snapshot{
		Positions: []profile.Position{{
			Title:   "Staff Engineer",
			Company: "Acme",
			Summary: "Owned the streaming platform.",
		}},
		Skills:       []profile.Skill{{Name: "Go"}, {Name: "Distributed systems"}},
		Technologies: []profile.Technology{{Name: "Postgres"}},
	}
}

func TestContentBuilderPromptMentionsProtocol(t *testing.T) {
	got := systemPrompt(stream.ContentBuilder, sampleSnapshot(), PromptOptions{})
	for _, want := range []string{"content_ready", "content_draft", "```json", "Staff Engineer at Acme", "Go, Distributed systems"} {
		if !strings.Contains(got, want) {
			t.Fatalf("prompt missing %q", want)
		}
	}
}

func TestPracticePromptCarriesQuestionID(t *testing.T) {
	got := systemPrompt(stream.Practice, nil, PromptOptions{QuestionID: "q-12"})
	if !strings.Contains(got, "q-12") {
		t.Fatal("prompt missing question id")
	}
	if !strings.Contains(got, "overallScore") {
		t.Fatal("prompt missing scorecard shape")
	}
}

func TestResumePromptCarriesTargeting(t *testing.T) {
	got := systemPrompt(stream.ResumeGen, sampleSnapshot(), PromptOptions{
		TargetRole:     "Platform Engineer",
		TargetCompany:  "Initech",
		JobDescription: "Build streaming pipelines in Go.",
	})
	for _, want := range []string{"Platform Engineer", "Initech", "streaming pipelines"} {
		if !strings.Contains(got, want) {
			t.Fatalf("prompt missing %q", want)
		}
	}
}

func TestNilSnapshotRendersNoProfile(t *testing.T) {
	got := profileSection(nil)
	if got != "" {
		t.Fatalf("expected empty section, got %q", got)
	}
}

func TestParseQuestionsForms(t *testing.T) {
	arr, err := parseQuestions(`["a?","b?"]`)
	if err != nil || len(arr) != 2 {
		t.Fatalf("bare array: %v %v", arr, err)
	}

	arr, err = parseQuestions("```json\n{\"questions\":[\"a?\"]}\n```")
	if err != nil || len(arr) != 1 {
		t.Fatalf("wrapped object: %v %v", arr, err)
	}

	if _, err = parseQuestions("no json here"); err == nil {
		t.Fatal("expected error for prose-only response")
	}
}
