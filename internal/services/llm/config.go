// File: internal/services/llm/config.go
package llm

import (
	"fmt"
	"time"
)

// Backend kinds selectable at process start. Exactly one is active per
// deployment; callers only ever see the Generator interface.
const (
	BackendChatAPI      = "chat_api"      // hosted OpenAI-compatible chat completions
	BackendInferenceAPI = "inference_api" // hosted single-model inference endpoint
	BackendLocal        = "local"         // in-process engine, loaded once
)

type Config struct {
	// Backend selection
	Backend string
	Model   string

	// Hosted backends
	APIKey  string
	BaseURL string

	// Local backend: the inference command to run, e.g. "llama-cli -m model.gguf"
	LocalCommand string

	// Generation parameters
	MaxTokens   int
	Temperature float32

	// Performance
	Timeout    time.Duration
	MaxRetries int
	RetryDelay time.Duration
}

func (c *Config) Validate() error {
	switch c.Backend {
	case BackendChatAPI, BackendInferenceAPI:
		if c.APIKey == "" {
			return fmt.Errorf("LLM_API_KEY is required for backend %q", c.Backend)
		}
		if c.Model == "" {
			return fmt.Errorf("LLM_MODEL is required for backend %q", c.Backend)
		}
	case BackendLocal:
		if c.LocalCommand == "" {
			return fmt.Errorf("LLM_LOCAL_COMMAND is required for backend %q", c.Backend)
		}
	default:
		return fmt.Errorf("unknown backend %q", c.Backend)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.MaxRetries < 1 {
		return fmt.Errorf("max retries must be at least 1")
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("temperature must be in [0, 2]")
	}
	return nil
}

func DefaultConfig() *Config {
	return &Config{
		Backend:     BackendChatAPI,
		Timeout:     60 * time.Second,
		MaxRetries:  3,
		RetryDelay:  2 * time.Second,
		MaxTokens:   512,
		Temperature: 0.7,
	}
}
