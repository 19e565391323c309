// Package gemini implements domain.ChatProvider on top of the Gemini API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

const (
	DefaultModel           = "gemini-2.5-flash"
	defaultMaxOutputTokens = 1000
	defaultTemperature     = 0.7
)

// Config configures a Provider. BaseURL is only set in tests.
type Config struct {
	APIKey  string
	Model   string
	BaseURL string
}

// Provider answers a single question with a system instruction.
type Provider struct {
	client *genai.Client
	model  string
	config *genai.GenerateContentConfig
}

// New creates a Provider backed by the Gemini Developer API.
func New(ctx context.Context, cfg Config) (*Provider, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini: api key is required")
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      cfg.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{BaseURL: cfg.BaseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}

	return &Provider{
		client: client,
		model:  model,
		config: &genai.GenerateContentConfig{
			MaxOutputTokens: defaultMaxOutputTokens,
			Temperature:     genai.Ptr[float32](defaultTemperature),
		},
	}, nil
}

// Complete sends question with systemPrompt as the system instruction and
// returns the concatenated text of the first candidate.
func (p *Provider) Complete(ctx context.Context, systemPrompt, question string) (string, error) {
	config := *p.config
	config.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: systemPrompt}}}

	resp, err := p.client.Models.GenerateContent(ctx, p.model, genai.Text(question), &config)
	if err != nil {
		return "", fmt.Errorf("gemini: generate content: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errors.New("gemini: empty response")
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part.Text != "" && !part.Thought {
			b.WriteString(part.Text)
		}
	}
	if b.Len() == 0 {
		return "", errors.New("gemini: response has no text")
	}
	return b.String(), nil
}
