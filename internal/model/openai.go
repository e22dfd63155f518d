package model

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

const defaultOpenAIModel = "gpt-4o-mini"

// OpenAI calls the chat completion API. The fixed prompt becomes the system message and
// the media plus user text form the user message.
type OpenAI struct {
	client *openai.Client
	model  string
}

type openAISettings struct {
	model   string
	baseURL string
}

// OpenAIOption configures NewOpenAI.
type OpenAIOption func(*openAISettings)

// WithOpenAIModel sets the chat model name.
func WithOpenAIModel(model string) OpenAIOption {
	return func(s *openAISettings) {
		if model != "" {
			s.model = model
		}
	}
}

// WithOpenAIBaseURL changes the API base URL (including the /v1 suffix).
func WithOpenAIBaseURL(base string) OpenAIOption {
	return func(s *openAISettings) {
		s.baseURL = base
	}
}

// NewOpenAI constructs an OpenAI-backed Generator.
func NewOpenAI(apiKey string, opts ...OpenAIOption) *OpenAI {
	settings := &openAISettings{model: defaultOpenAIModel}
	for _, opt := range opts {
		opt(settings)
	}

	cfg := openai.DefaultConfig(apiKey)
	if settings.baseURL != "" {
		cfg.BaseURL = settings.baseURL
	}
	return &OpenAI{client: openai.NewClientWithConfig(cfg), model: settings.model}
}

func (o *OpenAI) Generate(ctx context.Context, req Request) (string, error) {
	if err := req.validate(); err != nil {
		return "", err
	}

	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: req.Prompt},
	}

	userText := strings.TrimSpace(req.UserText)
	switch {
	case req.Media != nil:
		parts := []openai.ChatMessagePart{{
			Type: openai.ChatMessagePartTypeImageURL,
			ImageURL: &openai.ChatMessageImageURL{
				URL:    dataURL(req.Media),
				Detail: openai.ImageURLDetailAuto,
			},
		}}
		if userText != "" {
			parts = append(parts, openai.ChatMessagePart{Type: openai.ChatMessagePartTypeText, Text: userText})
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, MultiContent: parts})
	case userText != "":
		messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: userText})
	}

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    o.model,
		Messages: messages,
	})
	if err != nil {
		return "", fmt.Errorf("openai: chat completion: %w", err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", ErrEmptyResponse
	}
	return resp.Choices[0].Message.Content, nil
}

func dataURL(m *Media) string {
	return "data:" + m.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(m.Data)
}
