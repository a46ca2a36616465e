// File: internal/services/llm/openai_provider.go
package llm

import (
	"context"
	"errors"
	"net/http"

	openai "github.com/sashabaranov/go-openai"

	"github.com/citizenslab/citizens-chat/internal/services/prompt"
)

// OpenAIProvider is the hosted chat-completion variant. It sends the prompt
// as structured (role, content) turns to an OpenAI-compatible API.
type OpenAIProvider struct {
	config *Config
	client *openai.Client
}

func NewOpenAIProvider(config *Config) *OpenAIProvider {
	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}

	return &OpenAIProvider{
		config: config,
		client: openai.NewClientWithConfig(clientConfig),
	}
}

func (p *OpenAIProvider) Generate(ctx context.Context, pr prompt.Prompt, opts Options) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(pr.Turns))
	for _, turn := range pr.Turns {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    turn.Role,
			Content: turn.Content,
		})
	}

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       p.config.Model,
		Messages:    messages,
		MaxTokens:   opts.MaxTokens,
		Temperature: opts.Temperature,
	})
	if err != nil {
		return "", p.classifyError(err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", NewGenerationError(ErrKindMalformedResponse, BackendChatAPI, "empty completion response", nil)
	}

	return ExtractReply(resp.Choices[0].Message.Content), nil
}

func (p *OpenAIProvider) classifyError(err error) *GenerationError {
	if genErr := wrapContextError(BackendChatAPI, err); genErr != nil {
		return genErr
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return NewGenerationError(ErrKindAuthFailure, BackendChatAPI, "authentication rejected", err)
		case http.StatusTooManyRequests:
			return NewGenerationError(ErrKindRateLimited, BackendChatAPI, "rate limited", err)
		}
	}

	return NewGenerationError(ErrKindBackendUnavailable, BackendChatAPI, "completion request failed", err)
}
