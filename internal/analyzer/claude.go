package analyzer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// ClaudeProvider calls the Anthropic Messages API.
type ClaudeProvider struct {
	client    *anthropic.Client
	model     string
	maxTokens int64
}

// NewClaudeProvider builds a Claude provider. An empty apiKey yields an
// unconfigured provider.
func NewClaudeProvider(apiKey, model, baseURL string, maxTokens int, timeout time.Duration) *ClaudeProvider {
	p := &ClaudeProvider{model: model, maxTokens: int64(maxTokens)}
	if apiKey == "" {
		return p
	}
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	if timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(timeout))
	}
	client := anthropic.NewClient(opts...)
	p.client = &client
	return p
}

func (p *ClaudeProvider) Name() string { return "Claude" }

func (p *ClaudeProvider) Configured() bool { return p.client != nil }

func (p *ClaudeProvider) Generate(ctx context.Context, system, prompt string) (string, error) {
	if p.client == nil {
		return "", ErrNotConfigured
	}
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: p.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}

	resp, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("claude messages: %w", err)
	}
	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	return strings.TrimSpace(text.String()), nil
}
