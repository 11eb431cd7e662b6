package server

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	openai "github.com/sashabaranov/go-openai"
)

const DefaultSystemPrompt = "You are a friendly customer support assistant. Answer briefly and ask for details such as an order id when you need them."

// OpenAIResponder answers with a chat completion over the client's recent
// context.
type OpenAIResponder struct {
	client       *openai.Client
	model        string
	systemPrompt string
}

var _ Responder = (*OpenAIResponder)(nil)

type OpenAIOption func(*OpenAIResponder)

func WithSystemPrompt(prompt string) OpenAIOption {
	return func(r *OpenAIResponder) {
		r.systemPrompt = prompt
	}
}

// NewOpenAIResponder builds a responder for apiKey. An empty baseURL uses the
// OpenAI API.
func NewOpenAIResponder(apiKey, baseURL, model string, options ...OpenAIOption) (*OpenAIResponder, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("openai responder: missing api key")
	}
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	ret := &OpenAIResponder{
		client:       openai.NewClientWithConfig(config),
		model:        model,
		systemPrompt: DefaultSystemPrompt,
	}
	for _, o := range options {
		o(ret)
	}
	return ret, nil
}

func (r *OpenAIResponder) Respond(ctx context.Context, message string, history []Message) (string, error) {
	resp, err := r.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    r.model,
		Messages: r.messages(message, history),
	})
	if err != nil {
		return "", errors.Wrap(err, "chat completion")
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", errors.New("chat completion: empty response")
	}
	return resp.Choices[0].Message.Content, nil
}

func (r *OpenAIResponder) messages(message string, history []Message) []openai.ChatCompletionMessage {
	ret := make([]openai.ChatCompletionMessage, 0, len(history)+2)
	if r.systemPrompt != "" {
		ret = append(ret, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: r.systemPrompt})
	}
	for _, m := range history {
		role := openai.ChatMessageRoleUser
		if m.Role == RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		ret = append(ret, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}
	if len(history) == 0 || history[len(history)-1].Content != message {
		ret = append(ret, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: message})
	}
	return ret
}
