// Package ai wraps the upstream chat-completion model behind the three
// flavored prompt builders.
package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/dmaguire/folio/backend/internal/config"
	"github.com/dmaguire/folio/backend/pkg/model/chat"
	"github.com/dmaguire/folio/backend/pkg/model/profile"
	"github.com/dmaguire/folio/backend/internal/stream"
)

// PromptOptions carries the flavor-specific request fields into the prompt
// builders.
type PromptOptions struct {
	QuestionID     string
	TargetRole     string
	TargetCompany  string
	JobDescription string
}

// Service encapsulates the chat-completion chain.
type Service struct {
	chatModel model.ChatModel
	cfg       config.AIConfig
	chain     compose.Runnable[map[string]any, *schema.Message]
}

// NewService compiles the prompt/model chain.
func NewService(ctx context.Context, cfg config.AIConfig) (*Service, error) {
	chatModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.MessagesPlaceholder("history", true),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile chat chain: %w", err)
	}

	return &Service{
		chatModel: chatModel,
		cfg:       cfg,
		chain:     runnable,
	}, nil
}

// Stream opens a streaming completion for one flavored chat request. The
// final turn is the query; everything before it becomes model history.
func (s *Service) Stream(ctx context.Context, flavor stream.Flavor, snapshot *profile.Snapshot, turns []chat.Turn, opts PromptOptions) (*schema.StreamReader[*schema.Message], error) {
	if len(turns) == 0 {
		return nil, fmt.Errorf("no messages to send")
	}

	input := map[string]any{
		"system":  systemPrompt(flavor, snapshot, opts),
		"history": historyMessages(turns[:len(turns)-1]),
		"query":   turns[len(turns)-1].Content,
	}

	reader, err := s.chain.Stream(ctx, input,
		compose.WithChatModelOption(model.WithMaxTokens(flavor.MaxTokens)))
	if err != nil {
		return nil, fmt.Errorf("failed to stream completion: %w", err)
	}
	return reader, nil
}

// GenerateQuestions asks the model for practice interview questions as a
// plain JSON array, non-streaming.
func (s *Service) GenerateQuestions(ctx context.Context, snapshot *profile.Snapshot, targetRole, jobDescription string, count int) ([]string, error) {
	if count <= 0 {
		count = 5
	}

	input := map[string]any{
		"system":  questionPrompt(snapshot, targetRole, jobDescription, count),
		"history": []*schema.Message(nil),
		"query":   fmt.Sprintf("Generate %d interview questions.", count),
	}

	response, err := s.chain.Invoke(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to generate questions: %w", err)
	}

	questions, err := parseQuestions(response.Content)
	if err != nil {
		return nil, err
	}
	log.Printf("[ai] generated %d practice questions for role=%q", len(questions), targetRole)
	return questions, nil
}

func historyMessages(turns []chat.Turn) []*schema.Message {
	const historyLimit = 20

	if len(turns) == 0 {
		return nil
	}

	startIdx := 0
	if len(turns) > historyLimit {
		startIdx = len(turns) - historyLimit
	}

	history := make([]*schema.Message, 0, len(turns)-startIdx)
	for _, turn := range turns[startIdx:] {
		switch turn.Role {
		case chat.RoleUser:
			history = append(history, schema.UserMessage(turn.Content))
		case chat.RoleAssistant:
			history = append(history, schema.AssistantMessage(turn.Content, nil))
		}
	}
	return history
}

// parseQuestions accepts either a bare JSON array or a {"questions": [...]}
// wrapper, with or without markdown fences around it.
func parseQuestions(raw string) ([]string, error) {
	cleaned := cleanJSONBlock(raw)

	var questions []string
	if err := json.Unmarshal([]byte(cleaned), &questions); err == nil {
		return questions, nil
	}

	var wrapper struct {
		Questions []string `json:"questions"`
	}
	if err := json.Unmarshal([]byte(cleaned), &wrapper); err == nil && len(wrapper.Questions) > 0 {
		return wrapper.Questions, nil
	}
	return nil, fmt.Errorf("model returned no parsable question list")
}

// cleanJSONBlock strips markdown code fences the model wraps around JSON
// even when told not to.
func cleanJSONBlock(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}
