// File: internal/services/llm/factory.go
package llm

import "fmt"

// New selects the configured backend variant. Called exactly once at process
// start; the returned Generator is shared by all concurrent turns.
func New(config *Config) (Generator, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid llm config: %w", err)
	}

	switch config.Backend {
	case BackendChatAPI:
		return NewOpenAIProvider(config), nil
	case BackendInferenceAPI:
		return NewInferenceProvider(config), nil
	case BackendLocal:
		return NewLocalProvider(config), nil
	}
	return nil, fmt.Errorf("unknown backend %q", config.Backend)
}
