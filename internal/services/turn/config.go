// File: internal/services/turn/config.go
package turn

import (
	"fmt"
	"time"
)

type Config struct {
	// GenerationTimeout bounds every backend call. The per-conversation lock
	// is held for at most this window plus two store writes.
	GenerationTimeout time.Duration

	// Generation parameters forwarded to the backend.
	MaxTokens   int
	Temperature float32

	// SystemInstruction is prepended to prompts when history has no system turn.
	SystemInstruction string
}

func (c *Config) Validate() error {
	if c.GenerationTimeout <= 0 {
		return fmt.Errorf("generation timeout must be positive")
	}
	if c.MaxTokens <= 0 {
		return fmt.Errorf("max tokens must be positive")
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("temperature must be in [0, 2]")
	}
	return nil
}

func DefaultConfig() *Config {
	return &Config{
		GenerationTimeout: 60 * time.Second,
		MaxTokens:         512,
		Temperature:       0.7,
		SystemInstruction: "You are a helpful assistant.",
	}
}
