package model

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"
)

const defaultGeminiModel = "gemini-1.5-flash"

// Gemini calls the Gemini API through the genai SDK.
type Gemini struct {
	client *genai.Client
	model  string
}

type geminiSettings struct {
	model      string
	baseURL    string
	httpClient *http.Client
}

// GeminiOption configures NewGemini.
type GeminiOption func(*geminiSettings)

// WithGeminiModel sets the target model name.
func WithGeminiModel(model string) GeminiOption {
	return func(s *geminiSettings) {
		if model != "" {
			s.model = model
		}
	}
}

// WithGeminiBaseURL changes the API base URL. Primarily intended for testing.
func WithGeminiBaseURL(base string) GeminiOption {
	return func(s *geminiSettings) {
		s.baseURL = base
	}
}

// WithGeminiHTTPClient assigns a custom HTTP client.
func WithGeminiHTTPClient(client *http.Client) GeminiOption {
	return func(s *geminiSettings) {
		if client != nil {
			s.httpClient = client
		}
	}
}

// NewGemini constructs a Gemini-backed Generator.
func NewGemini(ctx context.Context, apiKey string, opts ...GeminiOption) (*Gemini, error) {
	if apiKey == "" {
		return nil, errors.New("gemini: API key not provided; set GOOGLE_API_KEY")
	}

	settings := &geminiSettings{model: defaultGeminiModel}
	for _, opt := range opts {
		opt(settings)
	}

	cc := &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: settings.httpClient,
	}
	if settings.baseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: settings.baseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	return &Gemini{client: client, model: settings.model}, nil
}

// Generate sends the prompt, the media and the user text as parts of a single user turn.
func (g *Gemini) Generate(ctx context.Context, req Request) (string, error) {
	if err := req.validate(); err != nil {
		return "", err
	}

	parts := []*genai.Part{{Text: req.Prompt}}
	if req.Media != nil {
		parts = append(parts, &genai.Part{
			InlineData: &genai.Blob{
				Data:     req.Media.Data,
				MIMEType: req.Media.MIMEType,
			},
		})
	}
	if strings.TrimSpace(req.UserText) != "" {
		parts = append(parts, &genai.Part{Text: req.UserText})
	}

	contents := []*genai.Content{{Role: "user", Parts: parts}}
	result, err := g.client.Models.GenerateContent(ctx, g.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("gemini: generate content: %w", err)
	}

	text := result.Text()
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}
