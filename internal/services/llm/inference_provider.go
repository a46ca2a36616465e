// File: internal/services/llm/inference_provider.go
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/citizenslab/citizens-chat/internal/services/prompt"
)

// InferenceProvider is the hosted single-model variant. The prompt is
// flattened to a display string and posted to a text-generation inference
// endpoint. Cold starts surface as 503 and are retried with a delay.
type InferenceProvider struct {
	config *Config
	client *http.Client
}

type inferenceRequest struct {
	Inputs     string              `json:"inputs"`
	Parameters inferenceParameters `json:"parameters"`
}

type inferenceParameters struct {
	MaxNewTokens   int     `json:"max_new_tokens,omitempty"`
	Temperature    float32 `json:"temperature,omitempty"`
	ReturnFullText bool    `json:"return_full_text"`
}

type inferenceResult struct {
	GeneratedText string `json:"generated_text"`
}

func NewInferenceProvider(config *Config) *InferenceProvider {
	return &InferenceProvider{
		config: config,
		client: &http.Client{Timeout: config.Timeout},
	}
}

func (p *InferenceProvider) Generate(ctx context.Context, pr prompt.Prompt, opts Options) (string, error) {
	payload, err := json.Marshal(inferenceRequest{
		Inputs: pr.Flatten(),
		Parameters: inferenceParameters{
			MaxNewTokens: opts.MaxTokens,
			Temperature:  opts.Temperature,
		},
	})
	if err != nil {
		return "", NewGenerationError(ErrKindMalformedResponse, BackendInferenceAPI, "failed to encode request", err)
	}

	var lastErr *GenerationError
	for attempt := 1; attempt <= p.config.MaxRetries; attempt++ {
		text, genErr := p.doRequest(ctx, payload)
		if genErr == nil {
			return text, nil
		}
		lastErr = genErr

		// Only cold starts are worth retrying; everything else fails as-is.
		if genErr.Kind != ErrKindBackendUnavailable || attempt == p.config.MaxRetries {
			return "", genErr
		}

		select {
		case <-time.After(p.config.RetryDelay):
		case <-ctx.Done():
			return "", NewGenerationError(ErrKindTimeout, BackendInferenceAPI, "generation timed out", ctx.Err())
		}
	}
	return "", lastErr
}

func (p *InferenceProvider) doRequest(ctx context.Context, payload []byte) (string, *GenerationError) {
	url := fmt.Sprintf("%s/models/%s", strings.TrimRight(p.config.BaseURL, "/"), p.config.Model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", NewGenerationError(ErrKindBackendUnavailable, BackendInferenceAPI, "failed to create request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.config.APIKey)

	resp, err := p.client.Do(req)
	if err != nil {
		if genErr := wrapContextError(BackendInferenceAPI, err); genErr != nil {
			return "", genErr
		}
		return "", NewGenerationError(ErrKindBackendUnavailable, BackendInferenceAPI, "request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", NewGenerationError(ErrKindMalformedResponse, BackendInferenceAPI, "failed to read response", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return "", NewGenerationError(ErrKindAuthFailure, BackendInferenceAPI, "authentication rejected", nil)
	case resp.StatusCode == http.StatusTooManyRequests:
		return "", NewGenerationError(ErrKindRateLimited, BackendInferenceAPI, "rate limited", nil)
	case resp.StatusCode == http.StatusServiceUnavailable:
		// Model cold start; the caller retries after RetryDelay.
		return "", NewGenerationError(ErrKindBackendUnavailable, BackendInferenceAPI, "model is loading", nil)
	case resp.StatusCode != http.StatusOK:
		return "", NewGenerationError(ErrKindBackendUnavailable, BackendInferenceAPI,
			fmt.Sprintf("unexpected status %d", resp.StatusCode), nil)
	}

	var results []inferenceResult
	if err := json.Unmarshal(body, &results); err != nil || len(results) == 0 {
		return "", NewGenerationError(ErrKindMalformedResponse, BackendInferenceAPI, "unexpected response shape", err)
	}

	return ExtractReply(results[0].GeneratedText), nil
}
