// Package model is the boundary to the hosted generative model. Callers hand it a
// prompt, optional media and optional user text and get free text back.
package model

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/Skufu/GoMedic/internal/config"
)

var (
	// ErrEmptyPrompt is returned when a request carries no prompt text.
	ErrEmptyPrompt = errors.New("model: prompt must not be empty")
	// ErrEmptyResponse is returned when the backend answered without any text.
	ErrEmptyResponse = errors.New("model: response contained no text")
)

// Media is an inline binary attachment such as an uploaded scan.
type Media struct {
	MIMEType string
	Data     []byte
}

// Request is one call to the model: the fixed prompt, then the media, then the user's text.
type Request struct {
	Prompt   string
	Media    *Media
	UserText string
}

func (r Request) validate() error {
	if strings.TrimSpace(r.Prompt) == "" {
		return ErrEmptyPrompt
	}
	if r.Media != nil {
		if r.Media.MIMEType == "" {
			return errors.New("model: media missing mime type")
		}
		if len(r.Media.Data) == 0 {
			return errors.New("model: media missing data")
		}
	}
	return nil
}

// Generator produces free text for a request.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// Func adapts a plain function to Generator.
type Func func(ctx context.Context, req Request) (string, error)

func (f Func) Generate(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}

type timeoutGenerator struct {
	next    Generator
	timeout time.Duration
}

// WithTimeout bounds every call to next. A non-positive timeout returns next unchanged.
func WithTimeout(next Generator, timeout time.Duration) Generator {
	if timeout <= 0 {
		return next
	}
	return &timeoutGenerator{next: next, timeout: timeout}
}

func (g *timeoutGenerator) Generate(ctx context.Context, req Request) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()
	return g.next.Generate(ctx, req)
}

// New builds the backend selected by cfg.ModelProvider.
func New(ctx context.Context, cfg *config.Config) (Generator, error) {
	var (
		gen Generator
		err error
	)
	switch cfg.ModelProvider {
	case config.ProviderGemini:
		gen, err = NewGemini(ctx, cfg.GeminiAPIKey, WithGeminiModel(cfg.GeminiModel))
	case config.ProviderOpenAI:
		gen = NewOpenAI(cfg.OpenAIAPIKey, WithOpenAIModel(cfg.OpenAIModel))
	case config.ProviderMock:
		log.Println("model: MODEL_PROVIDER=mock, using canned responses")
		gen = NewMock()
	default:
		err = fmt.Errorf("model: unknown provider %q", cfg.ModelProvider)
	}
	if err != nil {
		return nil, err
	}
	return WithTimeout(gen, cfg.ModelTimeout), nil
}
